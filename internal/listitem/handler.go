package listitem

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

func (h *Handler) GetItems(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.Service.GetItems(r.Context(), chi.URLParam(r, "listID"), user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ItemsResponse{Items: items, Count: len(items)})
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto AddItemDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	item, err := h.Service.AddItem(r.Context(), chi.URLParam(r, "listID"), user.ID, dto)
	if err != nil {
		h.Logger.Warn("AddItem: failed to add item", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpdateItemDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	item, err := h.Service.UpdateItem(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "itemID"), user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Service.DeleteItem(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "itemID"), user.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleCheck accepts an empty body, which flips the current state.
func (h *Handler) ToggleCheck(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ToggleCheckDTO
	if r.ContentLength != 0 {
		if !h.DecodeJSON(w, r, &dto) {
			return
		}
	}

	item, err := h.Service.ToggleCheck(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "itemID"), user.ID, dto.IsChecked)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, item)
}
