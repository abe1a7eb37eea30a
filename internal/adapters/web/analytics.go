package web

import (
	"net/http"
	"strconv"
	"time"
)

// usageReport handles GET /api/analytics/usage?product_id=N[&as_of=YYYY-MM-DD].
// The as_of parameter exists for reproducible reports; it defaults to today.
func (h *Handler) usageReport(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(r.URL.Query().Get("product_id"))
	if err != nil || productID < 1 {
		writeError(w, r, "product_id query parameter is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, r, "as_of must be YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		asOf = parsed
	}

	report := h.svc.UsageReport(r.Context(), productID, asOf)
	writeJSON(w, http.StatusOK, report)
}
