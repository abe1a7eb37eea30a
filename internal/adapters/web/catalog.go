package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lpg-console/internal/app"
	"lpg-console/internal/core"
)

// listWarehouses handles GET /api/warehouses.
func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListWarehouses(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// createWarehouse handles POST /api/warehouses.
func (h *Handler) createWarehouse(w http.ResponseWriter, r *http.Request) {
	auth, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req app.CreateWarehouseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	wh, err := h.svc.CreateWarehouse(r.Context(), auth, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wh)
}

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// createProduct handles POST /api/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	auth, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req app.CreateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), auth, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// setProductStatus handles POST /api/products/{id}/status.
func (h *Handler) setProductStatus(w http.ResponseWriter, r *http.Request) {
	auth, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Status core.ProductStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.SetProductStatus(r.Context(), auth, id, req.Status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
