package catalog

import (
	"net/http"

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

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := SearchQuery{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
		Page:     transport.QueryInt(r, "page", 1, 0),
		Limit:    transport.QueryInt(r, "limit", DefaultSearchLimit, MaxSearchLimit),
	}

	result, err := h.Service.Search(r.Context(), q)
	if err != nil {
		h.Logger.Error("Search: catalog search failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) GetProductByBarcode(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetProductByBarcode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var dto CreateProductDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	p, err := h.Service.CreateProduct(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("CreateProduct: failed to create product", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	var dto UpdatePriceDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	p, updated, err := h.Service.UpdatePrice(r.Context(), chi.URLParam(r, "productID"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"product": p,
		"updated": updated,
	})
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Service.GetCategories(r.Context())
	if err != nil {
		h.Logger.Error("GetCategories: failed to get categories", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CategoriesResponse{Categories: cats, Count: len(cats)})
}

func (h *Handler) GetSubcategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Service.GetSubcategories(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, CategoriesResponse{Categories: cats, Count: len(cats)})
}
