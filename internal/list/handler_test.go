package list_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	errors "github.com/frahmantamala/shopping-list/internal"
	"github.com/frahmantamala/shopping-list/internal/auth"
	"github.com/frahmantamala/shopping-list/internal/list"
	"github.com/frahmantamala/shopping-list/internal/transport"
	"github.com/frahmantamala/shopping-list/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// asUser stands in for the auth middleware: the X-User header becomes the principal.
func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-User"); id != "" {
			r = r.WithContext(auth.ContextWithPrincipal(r.Context(), &auth.Principal{ID: id}))
		}
		next.ServeHTTP(w, r)
	})
}

type errorBody struct {
	Error struct {
		Type string `json:"type"`
		Code string `json:"code"`
	} `json:"error"`
}

var _ = Describe("List Handler Integration", func() {
	var (
		env    *testEnv
		router chi.Router
	)

	BeforeEach(func() {
		env = newTestEnv()
		handler := list.NewHandler(transport.NewBaseHandler(logger.Discard()), env.lists)

		router = chi.NewRouter()
		router.Use(asUser)
		router.Post("/lists", handler.CreateList)
		router.Get("/lists", handler.GetLists)
		router.Get("/lists/shared", handler.GetSharedLists)
		router.Get("/lists/{listID}", handler.GetList)
		router.Delete("/lists/{listID}", handler.DeleteList)
		router.Post("/lists/{listID}/share", handler.Share)
		router.Delete("/lists/{listID}/share/{userID}", handler.Unshare)
		router.Post("/lists/{listID}/complete", handler.CompleteShopping)
	})

	do := func(method, path, user string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		if user != "" {
			req.Header.Set("X-User", user)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decodeError := func(w *httptest.ResponseRecorder) errorBody {
		var body errorBody
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body
	}

	It("should create a list owned by the caller", func() {
		w := do(http.MethodPost, "/lists", "u1", map[string]interface{}{"name": "Groceries", "type": "permanent"})

		Expect(w.Code).To(Equal(http.StatusCreated))
		var created list.List
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.OwnerID).To(Equal("u1"))
		Expect(created.Status).To(Equal(list.StatusActive))
	})

	It("should reject a request without a principal", func() {
		w := do(http.MethodGet, "/lists", "", nil)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should reject malformed JSON with a validation error", func() {
		req := httptest.NewRequest(http.MethodPost, "/lists", bytes.NewBufferString("{"))
		req.Header.Set("X-User", "u1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decodeError(w).Error.Type).To(Equal(string(errors.ErrorTypeValidation)))
	})

	It("should hide a list from users it is not shared with", func() {
		l := env.createList("u1", list.TypeOneTime)

		w := do(http.MethodGet, "/lists/"+l.ID, "u2", nil)

		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(decodeError(w).Error.Code).To(Equal(string(errors.ErrCodeNoAccess)))
	})

	It("should return 404 for an unknown list", func() {
		w := do(http.MethodGet, "/lists/missing", "u1", nil)

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(decodeError(w).Error.Code).To(Equal(string(errors.ErrCodeListNotFound)))
	})

	It("should share, list as shared and unshare", func() {
		l := env.createList("u1", list.TypePermanent)

		w := do(http.MethodPost, "/lists/"+l.ID+"/share", "u1", map[string]interface{}{
			"users": []map[string]string{{"userId": "u2", "permission": "edit"}},
		})
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(http.MethodGet, "/lists/shared", "u2", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var shared list.ListsResponse
		Expect(json.NewDecoder(w.Body).Decode(&shared)).To(Succeed())
		Expect(shared.Count).To(Equal(1))

		w = do(http.MethodDelete, "/lists/"+l.ID+"/share/u2", "u1", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(http.MethodGet, "/lists/"+l.ID, "u2", nil)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should refuse sharing by an editor", func() {
		l := env.createList("u1", list.TypePermanent)
		env.share(l.ID, "u1", "u2", list.PermissionEdit)

		w := do(http.MethodPost, "/lists/"+l.ID+"/share", "u2", map[string]interface{}{
			"users": []map[string]string{{"userId": "u3"}},
		})

		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(decodeError(w).Error.Code).To(Equal(string(errors.ErrCodeInsufficientPermission)))
	})

	It("should complete a permanent list and report the reset", func() {
		l := env.createList("u1", list.TypePermanent)
		item := env.addItem(l.ID, "u1", "Milk", "dairy")
		checked := true
		_, err := env.items.ToggleCheck(context.Background(), l.ID, item.ID, "u1", &checked)
		Expect(err).NotTo(HaveOccurred())

		w := do(http.MethodPost, "/lists/"+l.ID+"/complete", "u1", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp list.CompleteResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.ItemsCount).To(Equal(int64(1)))
		Expect(resp.ResetCount).To(Equal(int64(1)))
		Expect(resp.List.Status).To(Equal(list.StatusCompleted))
	})

	It("should only let the owner delete", func() {
		l := env.createList("u1", list.TypeOneTime)
		env.share(l.ID, "u1", "u2", list.PermissionAdmin)

		Expect(do(http.MethodDelete, "/lists/"+l.ID, "u2", nil).Code).To(Equal(http.StatusForbidden))
		Expect(do(http.MethodDelete, "/lists/"+l.ID, "u1", nil).Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/lists/"+l.ID, "u1", nil).Code).To(Equal(http.StatusNotFound))
	})
})
