package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/shopping-list/internal/list"
	"github.com/frahmantamala/shopping-list/internal/listitem"
	"github.com/frahmantamala/shopping-list/internal/metrics"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var (
	_ list.Recorder     = (*metrics.Metrics)(nil)
	_ listitem.Recorder = (*metrics.Metrics)(nil)
)

var _ = Describe("Metrics", func() {
	var (
		reg *prometheus.Registry
		m   *metrics.Metrics
	)

	BeforeEach(func() {
		reg = prometheus.NewRegistry()
		m = metrics.New(reg, reg)
	})

	It("counts domain events", func() {
		m.ListCreated("permanent")
		m.ListCreated("permanent")
		m.ListCreated("oneTime")
		m.ListShared(2)
		m.ShoppingCompleted("permanent", 3)
		m.ItemChecked(true)
		m.ItemChecked(false)
		m.ReminderSent()

		Expect(testutil.ToFloat64(m.ListsCreated.WithLabelValues("permanent"))).To(Equal(2.0))
		Expect(testutil.ToFloat64(m.ListsCreated.WithLabelValues("oneTime"))).To(Equal(1.0))
		Expect(testutil.ToFloat64(m.ListShares)).To(Equal(2.0))
		Expect(testutil.ToFloat64(m.Completions.WithLabelValues("permanent"))).To(Equal(1.0))
		Expect(testutil.ToFloat64(m.ItemsReset)).To(Equal(3.0))
		Expect(testutil.ToFloat64(m.ItemChecks.WithLabelValues("checked"))).To(Equal(1.0))
		Expect(testutil.ToFloat64(m.ItemChecks.WithLabelValues("unchecked"))).To(Equal(1.0))
		Expect(testutil.ToFloat64(m.RemindersSent)).To(Equal(1.0))
	})

	It("labels HTTP metrics with the route pattern", func() {
		router := chi.NewRouter()
		router.Use(m.Middleware)
		router.Get("/lists/{listID}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		for _, id := range []string{"a", "b"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lists/"+id, nil))
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		}

		Expect(testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/lists/{listID}", "404"))).To(Equal(2.0))
	})

	It("serves the registry", func() {
		m.ListCreated("oneTime")

		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		body, err := io.ReadAll(rec.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(ContainSubstring(`shopping_lists_created_total{type="oneTime"} 1`))
	})
})
