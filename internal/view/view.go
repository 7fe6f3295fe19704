// Package view renders the cart drawer and storefront pages.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"sync"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/aura-storefront/internal/model"
	"github.com/vyrodovalexey/aura-storefront/internal/money"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// EmptyMessage is shown in place of the item list when the cart is empty.
const EmptyMessage = "Tu carrito está vacío."

// Publisher receives live updates produced by the view.
type Publisher interface {
	Publish(msg model.LiveMessage)
}

type nopPublisher struct{}

func (nopPublisher) Publish(model.LiveMessage) {}

// Row is one rendered cart line. Index is the position the row was
// rendered at; controls submit it back together with Name.
type Row struct {
	Index     int
	Name      string
	Image     string
	UnitPrice string
	Quantity  int
}

// State is the projection of a cart into the drawer.
type State struct {
	Items            []Row         `json:"-"`
	Empty            bool          `json:"empty"`
	Total            string        `json:"total"`
	Count            int           `json:"count"`
	CheckoutDisabled bool          `json:"checkout_disabled"`
	DrawerOpen       bool          `json:"drawer_open"`
	HTML             template.HTML `json:"html"`
}

// View renders cart state and tracks drawer visibility. It never holds
// cart contents between calls.
type View struct {
	mu         sync.Mutex
	drawerOpen bool

	formatter *money.Formatter
	templates *template.Template
	publisher Publisher
	logger    *zap.Logger
}

// New creates a View. A nil publisher discards live updates.
func New(formatter *money.Formatter, publisher Publisher, logger *zap.Logger) (*View, error) {
	if formatter == nil {
		formatter = money.Default()
	}
	if publisher == nil {
		publisher = nopPublisher{}
	}

	tmpl, err := template.New("view").Funcs(template.FuncMap{
		"money":        formatter.Format,
		"card":         placeCard,
		"emptyMessage": func() string { return EmptyMessage },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &View{
		formatter: formatter,
		templates: tmpl,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// SetPublisher replaces the live update publisher.
func (v *View) SetPublisher(p Publisher) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if p == nil {
		p = nopPublisher{}
	}
	v.publisher = p
}

// Render projects cart into a State. Equal carts render byte-identical HTML.
func (v *View) Render(cart model.Cart) (State, error) {
	state := State{
		Items:            make([]Row, 0, len(cart)),
		Empty:            cart.Empty(),
		Total:            v.formatter.Format(cart.Total()),
		Count:            cart.Units(),
		CheckoutDisabled: cart.Empty(),
		DrawerOpen:       v.DrawerOpen(),
	}

	for i, item := range cart {
		state.Items = append(state.Items, Row{
			Index:     i,
			Name:      item.Name,
			Image:     item.Image,
			UnitPrice: v.formatter.Format(item.Price),
			Quantity:  item.Quantity,
		})
	}

	var buf bytes.Buffer
	if err := v.templates.ExecuteTemplate(&buf, "cart_items", state); err != nil {
		return State{}, fmt.Errorf("render cart: %w", err)
	}
	state.HTML = template.HTML(buf.String()) //nolint:gosec // produced by html/template

	return state, nil
}

// Refresh renders cart and publishes the result to live clients.
func (v *View) Refresh(cart model.Cart) State {
	state, err := v.Render(cart)
	if err != nil {
		v.logger.Error("failed to render cart", zap.Error(err))
		return state
	}

	count := state.Count
	disabled := state.CheckoutDisabled
	v.currentPublisher().Publish(model.LiveMessage{
		Type:     model.LiveTypeCart,
		HTML:     string(state.HTML),
		Total:    state.Total,
		Count:    &count,
		Disabled: &disabled,
	})

	return state
}

// Open shows the drawer. Cart content is not re-rendered.
func (v *View) Open() {
	v.setDrawer(true)
}

// Close hides the drawer. Cart content is not re-rendered.
func (v *View) Close() {
	v.setDrawer(false)
}

// DrawerOpen reports whether the drawer is visible.
func (v *View) DrawerOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.drawerOpen
}

func (v *View) setDrawer(open bool) {
	v.mu.Lock()
	v.drawerOpen = open
	publisher := v.publisher
	v.mu.Unlock()

	publisher.Publish(model.NewDrawerMessage(open))
}

func (v *View) currentPublisher() Publisher {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.publisher
}

// RenderPage writes a full storefront page.
func (v *View) RenderPage(w io.Writer, page Page) error {
	if err := v.templates.ExecuteTemplate(w, "layout", page); err != nil {
		return fmt.Errorf("render page %s: %w", page.Name, err)
	}
	return nil
}

// Static returns the embedded static assets (stylesheet, live script).
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
