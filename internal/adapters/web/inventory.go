package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lpg-console/internal/app"
)

// productBalances handles GET /api/inventory/balances?product_id=N.
func (h *Handler) productBalances(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(r.URL.Query().Get("product_id"))
	if err != nil || productID < 1 {
		writeError(w, r, "product_id query parameter is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.ProductBalances(r.Context(), productID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// warehouseBalances handles GET /api/inventory/warehouse/{id}.
func (h *Handler) warehouseBalances(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid warehouse id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.WarehouseBalances(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// adjustStock handles POST /api/inventory/adjust.
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	auth, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req app.AdjustStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.AdjustStock(r.Context(), auth, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// transferStock handles POST /api/inventory/transfer.
func (h *Handler) transferStock(w http.ResponseWriter, r *http.Request) {
	auth, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req app.TransferStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.TransferStock(r.Context(), auth, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
