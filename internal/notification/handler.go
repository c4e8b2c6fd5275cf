package notification

import (
	"net/http"

	"github.com/frahmantamala/shopping-list/internal/auth"
	"github.com/frahmantamala/shopping-list/internal/transport"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := ListQuery{
		UnreadOnly: r.URL.Query().Get("unreadOnly") == "true",
		Page:       transport.QueryInt(r, "page", 1, 0),
		Limit:      transport.QueryInt(r, "limit", DefaultPageSize, MaxPageSize),
	}

	resp, err := h.Service.List(r.Context(), user.ID, q)
	if err != nil {
		h.Logger.Error("GetNotifications: failed to list notifications", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "notificationID")
	n, err := h.Service.MarkRead(r.Context(), id, user.ID)
	if err != nil {
		h.Logger.Warn("MarkRead: failed to mark notification", "error", err, "notification_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	updated, err := h.Service.MarkAllRead(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "notificationID")
	if err := h.Service.Delete(r.Context(), id, user.ID); err != nil {
		h.Logger.Warn("DeleteNotification: failed to delete notification", "error", err, "notification_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
