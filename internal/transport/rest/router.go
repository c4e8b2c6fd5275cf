package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/shopping-list/internal/auth"
	"github.com/frahmantamala/shopping-list/internal/catalog"
	"github.com/frahmantamala/shopping-list/internal/list"
	"github.com/frahmantamala/shopping-list/internal/listitem"
	"github.com/frahmantamala/shopping-list/internal/metrics"
	"github.com/frahmantamala/shopping-list/internal/notification"
	"github.com/frahmantamala/shopping-list/internal/realtime"
	"github.com/frahmantamala/shopping-list/internal/transport/middleware"
	"github.com/frahmantamala/shopping-list/internal/transport/swagger"
	"github.com/frahmantamala/shopping-list/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers bundles everything mounted by RegisterAllRoutes. Nil handlers are
// skipped so tests can mount a subset.
type Handlers struct {
	Health       *HealthHandler
	Auth         *auth.Handler
	User         *user.Handler
	List         *list.Handler
	Item         *listitem.Handler
	Catalog      *catalog.Handler
	Notification *notification.Handler
	Realtime     *realtime.Handler
	Metrics      *metrics.Metrics
	MetricsPath  string
	OpenAPI      []byte
}

type RouterConfig struct {
	AllowedOrigins string
	RequestLogging bool
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, cfg RouterConfig, logger *slog.Logger) {
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RecoveryMiddleware(logger))
	if h.Metrics != nil {
		router.Use(h.Metrics.Middleware)
	}
	if cfg.RequestLogging {
		router.Use(middleware.LoggingMiddleware(logger))
	}

	if h.OpenAPI != nil {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(h.OpenAPI)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}
	if h.Metrics != nil {
		path := h.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, h.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		if h.Catalog != nil {
			r.Get("/categories", h.Catalog.GetCategories)
			r.Get("/categories/{code}/subcategories", h.Catalog.GetSubcategories)
		}

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", h.Auth.Register)
			ar.Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.With(h.Auth.AuthMiddleware).Post("/logout", h.Auth.Logout)
			ar.With(h.Auth.AuthMiddleware).Get("/me", h.Auth.Me)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.Realtime != nil {
				pr.Get("/ws", h.Realtime.Connect)
			}

			if h.User != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Get("/me", h.User.GetCurrentUser)
					ur.Put("/me", h.User.UpdateProfile)
					ur.Put("/me/preferences", h.User.UpdatePreferences)
					ur.Get("/search", h.User.SearchUsers)
					ur.Get("/contacts", h.User.GetContacts)
					ur.Post("/contacts", h.User.AddContact)
					ur.Delete("/contacts/{userID}", h.User.RemoveContact)
				})
			}

			if h.List != nil {
				pr.Route("/lists", func(lr chi.Router) {
					lr.Post("/", h.List.CreateList)
					lr.Get("/", h.List.GetLists)
					lr.Get("/shared", h.List.GetSharedLists)

					lr.Route("/{listID}", func(one chi.Router) {
						one.Get("/", h.List.GetList)
						one.Put("/", h.List.UpdateList)
						one.Delete("/", h.List.DeleteList)
						one.Patch("/status", h.List.UpdateStatus)
						one.Post("/share", h.List.Share)
						one.Delete("/share/{userID}", h.List.Unshare)
						one.Post("/complete", h.List.CompleteShopping)

						if h.Item != nil {
							one.Get("/items", h.Item.GetItems)
							one.Post("/items", h.Item.AddItem)
							one.Put("/items/{itemID}", h.Item.UpdateItem)
							one.Delete("/items/{itemID}", h.Item.DeleteItem)
							one.Patch("/items/{itemID}/toggle", h.Item.ToggleCheck)
						}
					})
				})
			}

			if h.Catalog != nil {
				pr.Route("/products", func(cr chi.Router) {
					cr.Get("/", h.Catalog.Search)
					cr.Post("/", h.Catalog.CreateProduct)
					cr.Get("/barcode/{code}", h.Catalog.GetProductByBarcode)
					cr.Get("/{productID}", h.Catalog.GetProduct)
					cr.Patch("/{productID}/price", h.Catalog.UpdatePrice)
				})
			}

			if h.Notification != nil {
				pr.Route("/notifications", func(nr chi.Router) {
					nr.Get("/", h.Notification.GetNotifications)
					nr.Patch("/read-all", h.Notification.MarkAllRead)
					nr.Patch("/{notificationID}/read", h.Notification.MarkRead)
					nr.Delete("/{notificationID}", h.Notification.DeleteNotification)
				})
			}
		})
	})
}
