package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/aura-storefront/internal/cart"
	"github.com/vyrodovalexey/aura-storefront/internal/model"
	"github.com/vyrodovalexey/aura-storefront/internal/view"
)

// CartLine is one cart row in API responses.
type CartLine struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// CartResponse is the cart as seen by API clients.
type CartResponse struct {
	Items            []CartLine `json:"items"`
	Empty            bool       `json:"empty"`
	Total            string     `json:"total"`
	Count            int        `json:"count"`
	CheckoutDisabled bool       `json:"checkout_disabled"`
	DrawerOpen       bool       `json:"drawer_open"`
}

// CheckoutResponse carries the checkout deep link. Available is false for
// an empty cart.
type CheckoutResponse struct {
	Available bool   `json:"available"`
	URL       string `json:"url,omitempty"`
}

// NewCartResponse converts a rendered cart state into its API form.
func NewCartResponse(state view.State) CartResponse {
	lines := make([]CartLine, 0, len(state.Items))
	for _, row := range state.Items {
		lines = append(lines, CartLine{
			Index:     row.Index,
			Name:      row.Name,
			Image:     row.Image,
			UnitPrice: row.UnitPrice,
			Quantity:  row.Quantity,
		})
	}
	return CartResponse{
		Items:            lines,
		Empty:            state.Empty,
		Total:            state.Total,
		Count:            state.Count,
		CheckoutDisabled: state.CheckoutDisabled,
		DrawerOpen:       state.DrawerOpen,
	}
}

// CartAPIHandler handles the JSON cart API.
type CartAPIHandler struct {
	cart   CartService
	logger *zap.Logger
}

// NewCartAPIHandler creates a new CartAPIHandler instance.
func NewCartAPIHandler(svc CartService, logger *zap.Logger) *CartAPIHandler {
	return &CartAPIHandler{
		cart:   svc,
		logger: logger,
	}
}

// RegisterRoutes registers the cart API routes with the router.
func (h *CartAPIHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/cart", h.GetCart).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/cart", h.ClearCart).Methods(http.MethodDelete)
	router.HandleFunc("/api/v1/cart/items", h.AddItem).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/cart/items/{index}/inc", h.IncrementItem).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/cart/items/{index}/dec", h.DecrementItem).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/cart/items/{index}", h.RemoveItem).Methods(http.MethodDelete)
	router.HandleFunc("/api/v1/cart/checkout", h.Checkout).Methods(http.MethodPost)
}

// GetCart handles GET /api/v1/cart requests.
func (h *CartAPIHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, http.StatusOK, h.cart.Snapshot(r.Context()))
}

// AddItem handles POST /api/v1/cart/items requests.
func (h *CartAPIHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var input model.Product
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	if err := input.Validate(); err != nil {
		h.logger.Warn("validation failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	h.cart.AddToCart(r.Context(), input)
	h.writeCart(w, http.StatusCreated, h.cart.Snapshot(r.Context()))
}

// IncrementItem handles POST /api/v1/cart/items/{index}/inc requests.
func (h *CartAPIHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, cart.OpIncrement)
}

// DecrementItem handles POST /api/v1/cart/items/{index}/dec requests.
func (h *CartAPIHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, cart.OpDecrement)
}

// RemoveItem handles DELETE /api/v1/cart/items/{index} requests.
func (h *CartAPIHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, cart.OpRemove)
}

// ClearCart handles DELETE /api/v1/cart requests.
func (h *CartAPIHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, http.StatusOK, h.cart.Clear(r.Context()))
}

// Checkout handles POST /api/v1/cart/checkout requests. The link is
// returned to the caller rather than opened.
func (h *CartAPIHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	link, ok := h.cart.Checkout(r.Context(), nil)
	writeJSON(w, http.StatusOK, model.NewSuccessResponse(CheckoutResponse{
		Available: ok,
		URL:       link,
	}), h.logger)
}

// dispatch applies op to the row named by the {index} path variable. The
// optional "name" query parameter guards against stale indexes.
func (h *CartAPIHandler) dispatch(w http.ResponseWriter, r *http.Request, op cart.Op) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item index", h.logger)
		return
	}

	state := h.cart.Dispatch(r.Context(), cart.Action{
		Op:    op,
		Index: index,
		Name:  r.URL.Query().Get("name"),
	})
	h.writeCart(w, http.StatusOK, state)
}

func (h *CartAPIHandler) writeCart(w http.ResponseWriter, status int, state view.State) {
	writeJSON(w, status, model.NewSuccessResponse(NewCartResponse(state)), h.logger)
}
