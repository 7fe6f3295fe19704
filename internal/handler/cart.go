package handler

import (
	"context"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/vyrodovalexey/aura-storefront/internal/cart"
	"github.com/vyrodovalexey/aura-storefront/internal/model"
)

// CartFormHandler serves the cart controls as plain HTML form posts, so the
// drawer works without the live channel.
type CartFormHandler struct {
	cart   CartService
	logger *zap.Logger
}

// NewCartFormHandler creates a new CartFormHandler instance.
func NewCartFormHandler(svc CartService, logger *zap.Logger) *CartFormHandler {
	return &CartFormHandler{
		cart:   svc,
		logger: logger,
	}
}

// RegisterRoutes registers the cart form routes with the router.
func (h *CartFormHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/cart/add", h.Add).Methods(http.MethodPost)
	router.HandleFunc("/cart/action", h.Action).Methods(http.MethodPost)
	router.HandleFunc("/cart/clear", h.Clear).Methods(http.MethodPost)
	router.HandleFunc("/cart/checkout", h.Checkout).Methods(http.MethodPost)
	router.HandleFunc("/cart/open", h.Open).Methods(http.MethodPost)
	router.HandleFunc("/cart/close", h.Close).Methods(http.MethodPost)
	router.HandleFunc("/cart/fragment", h.Fragment).Methods(http.MethodGet)
}

// Add handles POST /cart/add from a product card.
func (h *CartFormHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	price, err := decimal.NewFromString(strings.TrimSpace(r.PostFormValue("price")))
	if err != nil {
		h.logger.Warn("invalid product price", zap.String("price", r.PostFormValue("price")))
		http.Error(w, "invalid price", http.StatusBadRequest)
		return
	}

	h.cart.AddToCart(r.Context(), model.Product{
		Name:  r.PostFormValue("name"),
		Price: price,
		Image: r.PostFormValue("image"),
	})
	redirectBack(w, r)
}

// Action handles POST /cart/action from a row control. Undecodable or
// stale actions leave the cart unchanged.
func (h *CartFormHandler) Action(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	action, err := cart.ParseAction(r.PostFormValue("action"))
	if err != nil {
		h.logger.Debug("ignoring cart action", zap.Error(err))
		redirectBack(w, r)
		return
	}

	h.cart.Dispatch(r.Context(), action)
	redirectBack(w, r)
}

// Clear handles POST /cart/clear.
func (h *CartFormHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear(r.Context())
	redirectBack(w, r)
}

// Checkout handles POST /cart/checkout. The form targets a new browsing
// context, which is redirected to the deep link.
func (h *CartFormHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	redirect := cart.LinkOpenerFunc(func(_ context.Context, link string) {
		http.Redirect(w, r, link, http.StatusSeeOther)
	})
	if _, ok := h.cart.Checkout(r.Context(), redirect); !ok {
		redirectBack(w, r)
	}
}

// Open handles POST /cart/open.
func (h *CartFormHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.cart.OpenDrawer()
	redirectBack(w, r)
}

// Close handles POST /cart/close.
func (h *CartFormHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.cart.CloseDrawer()
	redirectBack(w, r)
}

// Fragment handles GET /cart/fragment and returns the rendered item list.
func (h *CartFormHandler) Fragment(w http.ResponseWriter, r *http.Request) {
	state := h.cart.Snapshot(r.Context())
	body := []byte(state.HTML)
	etag := fragmentETag(body)

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("failed to write cart fragment", zap.Error(err))
	}
}

// fragmentETag returns a strong entity tag for body.
func fragmentETag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
