package user

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

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	p, err := h.Service.GetProfile(r.Context(), user.ID)
	if err != nil {
		h.Logger.Error("GetCurrentUser: failed to load profile", "user_id", user.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpdateProfileDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	p, err := h.Service.UpdateProfile(r.Context(), user.ID, dto)
	if err != nil {
		h.Logger.Warn("UpdateProfile: failed to update profile", "user_id", user.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpdatePreferencesDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	prefs, err := h.Service.UpdatePreferences(r.Context(), user.ID, dto)
	if err != nil {
		h.Logger.Warn("UpdatePreferences: failed to update preferences", "user_id", user.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, prefs)
}

func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	users, err := h.Service.Search(r.Context(), user.ID, r.URL.Query().Get("q"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, UsersResponse{Users: users, Count: len(users)})
}

func (h *Handler) GetContacts(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	contacts, err := h.Service.Contacts(r.Context(), user.ID)
	if err != nil {
		h.Logger.Error("GetContacts: failed to list contacts", "user_id", user.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, UsersResponse{Users: contacts, Count: len(contacts)})
}

func (h *Handler) AddContact(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto AddContactDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	contact, err := h.Service.AddContact(r.Context(), user.ID, dto)
	if err != nil {
		h.Logger.Warn("AddContact: failed to add contact", "user_id", user.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, contact)
}

func (h *Handler) RemoveContact(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	contactID := chi.URLParam(r, "userID")
	if err := h.Service.RemoveContact(r.Context(), user.ID, contactID); err != nil {
		h.Logger.Warn("RemoveContact: failed to remove contact", "user_id", user.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
