// Package cart implements the cart controller: every user action against
// the cart runs here as one load, mutate, save and render step.
package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/aura-storefront/internal/model"
	"github.com/vyrodovalexey/aura-storefront/internal/view"
)

// Operation names used in logs and metrics.
const (
	opAdd       = "add"
	opIncrement = "increment"
	opDecrement = "decrement"
	opRemove    = "remove"
	opClear     = "clear"
	opCheckout  = "checkout"
)

// Repository loads and saves the persisted cart.
type Repository interface {
	Load(ctx context.Context) model.Cart
	Save(ctx context.Context, cart model.Cart) error
}

// Renderer projects carts into view state and owns drawer visibility.
type Renderer interface {
	Render(cart model.Cart) (view.State, error)
	Refresh(cart model.Cart) view.State
	Open()
	Close()
}

// LinkBuilder derives the checkout deep link from a cart.
type LinkBuilder interface {
	Link(cart model.Cart) (string, bool)
}

// LinkOpener opens a link in a new browsing context.
type LinkOpener interface {
	OpenLink(ctx context.Context, url string)
}

// LinkOpenerFunc adapts a function to LinkOpener.
type LinkOpenerFunc func(ctx context.Context, url string)

// OpenLink calls f.
func (f LinkOpenerFunc) OpenLink(ctx context.Context, url string) {
	f(ctx, url)
}

// Adder is the add-to-cart entry point handed to product producers.
type Adder interface {
	AddToCart(ctx context.Context, p model.Product)
}

// Controller serializes cart operations. Each operation reads the cart
// from the repository, so no copy outlives a call.
type Controller struct {
	mu     sync.Mutex
	repo   Repository
	view   Renderer
	links  LinkBuilder
	logger *zap.Logger
}

// NewController creates a new Controller instance.
func NewController(repo Repository, renderer Renderer, links LinkBuilder, logger *zap.Logger) *Controller {
	return &Controller{
		repo:   repo,
		view:   renderer,
		links:  links,
		logger: logger,
	}
}

// AddToCart implements Adder.
func (c *Controller) AddToCart(ctx context.Context, p model.Product) {
	c.Add(ctx, p)
}

// Add merges p into the cart by name, or appends it with quantity 1, and
// opens the drawer. Invalid products are dropped.
func (c *Controller) Add(ctx context.Context, p model.Product) view.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := p.Validate(); err != nil {
		c.logger.Warn("dropping invalid product", zap.String("name", p.Name), zap.Error(err))
		cartOperationsTotal.WithLabelValues(opAdd, outcomeInvalid).Inc()
		return c.render(c.repo.Load(ctx))
	}

	cart := c.repo.Load(ctx)
	if i := cart.IndexOf(p.Name); i >= 0 {
		cart[i].Quantity++
	} else {
		cart = append(cart, model.CartItem{
			Name:     p.Name,
			Price:    p.Price,
			Image:    p.Image,
			Quantity: 1,
		})
	}

	state := c.commit(ctx, opAdd, cart)
	c.view.Open()
	state.DrawerOpen = true
	return state
}

// Increment raises the quantity of the item at index by one.
func (c *Controller) Increment(ctx context.Context, index int) view.State {
	return c.Dispatch(ctx, Action{Op: OpIncrement, Index: index})
}

// Decrement lowers the quantity of the item at index by one, never below 1.
func (c *Controller) Decrement(ctx context.Context, index int) view.State {
	return c.Dispatch(ctx, Action{Op: OpDecrement, Index: index})
}

// Remove deletes the item at index.
func (c *Controller) Remove(ctx context.Context, index int) view.State {
	return c.Dispatch(ctx, Action{Op: OpRemove, Index: index})
}

// Dispatch applies a row action. Out-of-range indexes, and actions whose
// Name no longer matches the item at Index, are no-ops.
func (c *Controller) Dispatch(ctx context.Context, a Action) view.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	op := operationName(a.Op)
	cart := c.repo.Load(ctx)

	if !cart.InRange(a.Index) || (a.Name != "" && cart[a.Index].Name != a.Name) {
		c.logger.Debug("ignoring stale cart action",
			zap.String("action", a.String()),
			zap.Int("items", len(cart)),
		)
		cartOperationsTotal.WithLabelValues(op, outcomeNoop).Inc()
		return c.render(cart)
	}

	switch a.Op {
	case OpIncrement:
		cart[a.Index].Quantity++
	case OpDecrement:
		cart[a.Index].Quantity = max(model.MinQuantity, cart[a.Index].Quantity-1)
	case OpRemove:
		cart = append(cart[:a.Index], cart[a.Index+1:]...)
	default:
		cartOperationsTotal.WithLabelValues(op, outcomeInvalid).Inc()
		return c.render(cart)
	}

	return c.commit(ctx, op, cart)
}

// Clear empties the cart.
func (c *Controller) Clear(ctx context.Context) view.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.commit(ctx, opClear, model.Cart{})
}

// Checkout hands the deep link for the current cart to opener. With an
// empty cart nothing is opened and ok is false.
func (c *Controller) Checkout(ctx context.Context, opener LinkOpener) (link string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	link, ok = c.links.Link(c.repo.Load(ctx))
	if !ok {
		c.logger.Debug("checkout ignored for empty cart")
		cartOperationsTotal.WithLabelValues(opCheckout, outcomeNoop).Inc()
		return "", false
	}

	cartOperationsTotal.WithLabelValues(opCheckout, outcomeApplied).Inc()
	if opener == nil {
		c.logger.Debug("checkout link built")
		return link, true
	}

	opener.OpenLink(ctx, link)
	cartCheckoutLinksTotal.Inc()
	c.logger.Info("checkout link opened")

	return link, true
}

// OpenDrawer shows the cart drawer.
func (c *Controller) OpenDrawer() {
	c.view.Open()
}

// CloseDrawer hides the cart drawer.
func (c *Controller) CloseDrawer() {
	c.view.Close()
}

// Snapshot renders the current persisted cart without publishing it.
func (c *Controller) Snapshot(ctx context.Context) view.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.render(c.repo.Load(ctx))
}

// commit saves cart, then re-reads and refreshes the view from what was
// persisted. A failed save is logged; the gesture itself never fails.
func (c *Controller) commit(ctx context.Context, op string, cart model.Cart) view.State {
	outcome := outcomeApplied
	if err := c.repo.Save(ctx, cart); err != nil {
		outcome = outcomeSaveFailed
		c.logger.Error("failed to save cart", zap.String("operation", op), zap.Error(err))
	}
	cartOperationsTotal.WithLabelValues(op, outcome).Inc()

	return c.view.Refresh(c.repo.Load(ctx))
}

func (c *Controller) render(cart model.Cart) view.State {
	state, err := c.view.Render(cart)
	if err != nil {
		c.logger.Error("failed to render cart", zap.Error(err))
	}
	return state
}

func operationName(op Op) string {
	switch op {
	case OpIncrement:
		return opIncrement
	case OpDecrement:
		return opDecrement
	case OpRemove:
		return opRemove
	default:
		return string(op)
	}
}
