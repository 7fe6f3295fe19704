package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/aura-storefront/internal/catalog"
	"github.com/vyrodovalexey/aura-storefront/internal/contact"
	"github.com/vyrodovalexey/aura-storefront/internal/view"
)

// CatalogSource provides the remote catalog grid.
type CatalogSource interface {
	Fetch(ctx context.Context) ([]catalog.Entry, error)
}

// ContactSender delivers contact form submissions.
type ContactSender interface {
	Submit(ctx context.Context, form contact.Form) contact.Status
}

// PageRenderer renders full storefront pages.
type PageRenderer interface {
	RenderPage(w io.Writer, page view.Page) error
}

// StorefrontHandler serves the storefront pages.
type StorefrontHandler struct {
	cart      CartService
	pages     PageRenderer
	catalog   CatalogSource
	contact   ContactSender
	featured  []view.Card
	storeName string
	logger    *zap.Logger
	now       func() time.Time
}

// StorefrontOptions configures a StorefrontHandler.
type StorefrontOptions struct {
	StoreName string
	Featured  []catalog.Featured
	Catalog   CatalogSource
	Contact   ContactSender
}

// NewStorefrontHandler creates a new StorefrontHandler instance.
func NewStorefrontHandler(svc CartService, pages PageRenderer, opts StorefrontOptions, logger *zap.Logger) *StorefrontHandler {
	featured := make([]view.Card, 0, len(opts.Featured))
	for _, f := range opts.Featured {
		featured = append(featured, view.Card{
			Name:        f.Name,
			Price:       f.Price,
			Image:       f.Image,
			Description: f.DescriptionHTML(),
		})
	}

	sender := opts.Contact
	if sender == nil {
		sender = contact.NewSubmitter("", 0, logger)
	}

	return &StorefrontHandler{
		cart:      svc,
		pages:     pages,
		catalog:   opts.Catalog,
		contact:   sender,
		featured:  featured,
		storeName: opts.StoreName,
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterRoutes registers the page routes with the router.
func (h *StorefrontHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Home).Methods(http.MethodGet)
	router.HandleFunc("/productos", h.Catalog).Methods(http.MethodGet)
	router.HandleFunc("/contacto", h.Contact).Methods(http.MethodGet)
	router.HandleFunc("/contacto", h.SubmitContact).Methods(http.MethodPost)
}

// Home handles GET / and lists the featured products.
func (h *StorefrontHandler) Home(w http.ResponseWriter, r *http.Request) {
	page := h.page(r, view.PageHome, "Inicio")
	page.Featured = h.featured
	h.render(w, http.StatusOK, page)
}

// Catalog handles GET /productos and renders the remote catalog grid.
func (h *StorefrontHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	page := h.page(r, view.PageCatalog, "Productos")
	page.Grid = h.grid(r.Context())
	h.render(w, http.StatusOK, page)
}

// Contact handles GET /contacto.
func (h *StorefrontHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, h.page(r, view.PageContact, "Contacto"))
}

// SubmitContact handles POST /contacto. A delivered message clears the form.
func (h *StorefrontHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := contact.FormFromValues(r.PostForm).Normalize()
	status := h.contact.Submit(r.Context(), form)

	page := h.page(r, view.PageContact, "Contacto")
	page.Contact = view.ContactForm{
		StatusText:  status.Text,
		StatusClass: status.Class,
	}
	if !status.OK() {
		page.Contact.Nombre = form.Nombre
		page.Contact.Email = form.Email
		page.Contact.Asunto = form.Asunto
		page.Contact.Mensaje = form.Mensaje
	}
	h.render(w, http.StatusOK, page)
}

func (h *StorefrontHandler) grid(ctx context.Context) view.Grid {
	if h.catalog == nil {
		return view.Grid{State: view.GridError}
	}

	entries, err := h.catalog.Fetch(ctx)
	if err != nil {
		h.logger.Warn("failed to load catalog", zap.Error(err))
		return view.Grid{State: view.GridError}
	}

	cards := make([]view.Card, 0, len(entries))
	for _, e := range entries {
		p := e.Product()
		cards = append(cards, view.Card{
			Name:        p.Name,
			Price:       p.Price,
			Image:       p.Image,
			Description: e.DescriptionHTML(),
		})
	}
	return view.Grid{State: view.GridReady, Cards: cards}
}

func (h *StorefrontHandler) page(r *http.Request, name, title string) view.Page {
	return view.Page{
		Name:      name,
		Title:     title,
		StoreName: h.storeName,
		Path:      r.URL.Path,
		Year:      h.now().Year(),
		Cart:      h.cart.Snapshot(r.Context()),
	}
}

func (h *StorefrontHandler) render(w http.ResponseWriter, status int, page view.Page) {
	var buf bytes.Buffer
	if err := h.pages.RenderPage(&buf, page); err != nil {
		h.logger.Error("failed to render page", zap.String("page", page.Name), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("failed to write page", zap.Error(err))
	}
}
