// Package handler provides the HTTP and live-channel handlers of the storefront.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/aura-storefront/internal/cart"
	"github.com/vyrodovalexey/aura-storefront/internal/model"
	"github.com/vyrodovalexey/aura-storefront/internal/view"
)

// Version is the application version.
const Version = "1.0.0"

// CartService is the cart controller as seen by the handlers.
type CartService interface {
	cart.Adder
	Dispatch(ctx context.Context, a cart.Action) view.State
	Clear(ctx context.Context) view.State
	Checkout(ctx context.Context, opener cart.LinkOpener) (string, bool)
	OpenDrawer()
	CloseDrawer()
	Snapshot(ctx context.Context) view.State
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HealthCheck handles GET /health requests.
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.NewSuccessResponse(HealthResponse{
		Status:  "healthy",
		Version: Version,
	}), nil)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil && logger != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error envelope with the given status code.
func writeError(w http.ResponseWriter, status int, message string, logger *zap.Logger) {
	writeJSON(w, status, model.NewErrorResponse[any](message), logger)
}

// returnPath reads the "return" form value and keeps it only when it is a
// local absolute path.
func returnPath(r *http.Request) string {
	p := r.FormValue("return")
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, `\`) {
		return "/"
	}
	return p
}

// redirectBack answers a form post with 303 See Other to the page it came from.
func redirectBack(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}
