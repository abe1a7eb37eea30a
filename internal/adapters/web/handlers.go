package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lpg-console/internal/app"
	"lpg-console/internal/core"
)

const maxRequestBody = 1 << 20 // 1 MiB

// Handler exposes the application service over HTTP.
type Handler struct {
	svc            app.ApplicationService
	notifier       *core.ChangeNotifier
	logger         *slog.Logger
	jwtSecret      string
	allowedOrigins string
}

// NewHandler builds the HTTP handler. notifier may be nil, in which case the
// event stream endpoint reports 503.
func NewHandler(svc app.ApplicationService, notifier *core.ChangeNotifier, logger *slog.Logger, jwtSecret, allowedOrigins string) *Handler {
	return &Handler{
		svc:            svc,
		notifier:       notifier,
		logger:         logger,
		jwtSecret:      jwtSecret,
		allowedOrigins: allowedOrigins,
	}
}

// Routes assembles the chi router with middleware and all API endpoints.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger(h.logger))
	r.Use(Recoverer(h.logger))
	r.Use(CORS(h.allowedOrigins))
	r.Use(RequestBodyLimit(maxRequestBody))

	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/api/auth/me", h.me)

		r.Get("/api/warehouses", h.listWarehouses)
		r.Post("/api/warehouses", h.createWarehouse)

		r.Get("/api/products", h.listProducts)
		r.Post("/api/products", h.createProduct)
		r.Post("/api/products/{id}/status", h.setProductStatus)

		r.Get("/api/inventory/balances", h.productBalances)
		r.Get("/api/inventory/warehouse/{id}", h.warehouseBalances)
		r.Post("/api/inventory/adjust", h.adjustStock)
		r.Post("/api/inventory/transfer", h.transferStock)

		r.Get("/api/analytics/usage", h.usageReport)
		r.Get("/api/stream", h.stream)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON decodes the request body into v, writing an error response and
// returning false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// requireActor returns the authenticated actor or writes a 401 and returns
// false. Routes behind RequireAuth always have one; this guards direct use
// of handlers in tests.
func requireActor(w http.ResponseWriter, r *http.Request) (core.AuthContext, bool) {
	auth := authFromContext(r.Context())
	if auth == nil {
		writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
		return core.AuthContext{}, false
	}
	return *auth, true
}
