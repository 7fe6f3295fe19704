package cart

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/aura-storefront/internal/checkout"
	"github.com/vyrodovalexey/aura-storefront/internal/model"
	"github.com/vyrodovalexey/aura-storefront/internal/store"
	"github.com/vyrodovalexey/aura-storefront/internal/view"
)

type cartTestContext struct {
	ctrl   *Controller
	store  *store.CartStore
	view   *view.View
	state  view.State
	opener *recordingOpener
}

func (c *cartTestContext) reset() error {
	logger := zap.NewNop()
	v, err := view.New(nil, nil, logger)
	if err != nil {
		return err
	}
	c.store = store.NewCartStore(store.NewMemoryBackend(), "", logger)
	c.view = v
	c.ctrl = NewController(c.store, v, checkout.NewBuilder("", "", nil), logger)
	c.opener = &recordingOpener{}
	c.state = view.State{}
	return nil
}

func (c *cartTestContext) anEmptyCart() error {
	return c.store.Save(context.Background(), model.Cart{})
}

func (c *cartTestContext) theCartHolds(name string, price, quantity int) error {
	ctx := context.Background()
	cart := c.store.Load(ctx)
	cart = append(cart, model.CartItem{Name: name, Price: decimal.NewFromInt(int64(price)), Quantity: quantity})
	return c.store.Save(ctx, cart)
}

func (c *cartTestContext) iAdd(name string, price int) error {
	c.state = c.ctrl.Add(context.Background(), model.Product{Name: name, Price: decimal.NewFromInt(int64(price))})
	return nil
}

func (c *cartTestContext) iIncrementItem(index int) error {
	c.state = c.ctrl.Increment(context.Background(), index)
	return nil
}

func (c *cartTestContext) iDecrementItem(index int) error {
	c.state = c.ctrl.Decrement(context.Background(), index)
	return nil
}

func (c *cartTestContext) iRemoveItem(index int) error {
	c.state = c.ctrl.Remove(context.Background(), index)
	return nil
}

func (c *cartTestContext) iClearTheCart() error {
	c.state = c.ctrl.Clear(context.Background())
	return nil
}

func (c *cartTestContext) iCheckOut() error {
	c.ctrl.Checkout(context.Background(), c.opener)
	return nil
}

func (c *cartTestContext) theCartHasItems(n int) error {
	if got := len(c.store.Load(context.Background())); got != n {
		return fmt.Errorf("expected %d items, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) itemIsWithQuantity(index int, name string, quantity int) error {
	cart := c.store.Load(context.Background())
	if !cart.InRange(index) {
		return fmt.Errorf("no item at index %d", index)
	}
	if cart[index].Name != name || cart[index].Quantity != quantity {
		return fmt.Errorf("expected %s x%d at %d, got %s x%d", name, quantity, index, cart[index].Name, cart[index].Quantity)
	}
	return nil
}

func (c *cartTestContext) theDrawerIsOpen() error {
	if !c.view.DrawerOpen() || !c.state.DrawerOpen {
		return fmt.Errorf("expected the drawer to be open")
	}
	return nil
}

func (c *cartTestContext) theTotalReads(total string) error {
	if c.state.Total != total {
		return fmt.Errorf("expected total %q, got %q", total, c.state.Total)
	}
	return nil
}

func (c *cartTestContext) theCountBadgeReads(n int) error {
	if c.state.Count != n {
		return fmt.Errorf("expected count %d, got %d", n, c.state.Count)
	}
	return nil
}

func (c *cartTestContext) checkoutIsDisabled() error {
	if !c.state.CheckoutDisabled {
		return fmt.Errorf("expected checkout to be disabled")
	}
	return nil
}

func (c *cartTestContext) noLinkWasOpened() error {
	if len(c.opener.links) != 0 {
		return fmt.Errorf("expected no link, got %v", c.opener.links)
	}
	return nil
}

func (c *cartTestContext) aLinkWasOpenedStartingWith(prefix string) error {
	if len(c.opener.links) != 1 {
		return fmt.Errorf("expected one link, got %v", c.opener.links)
	}
	if !strings.HasPrefix(c.opener.links[0], prefix) {
		return fmt.Errorf("expected link to start with %q, got %q", prefix, c.opener.links[0])
	}
	return nil
}

func (c *cartTestContext) theOpenedLinkContains(fragment string) error {
	if len(c.opener.links) != 1 {
		return fmt.Errorf("expected one link, got %v", c.opener.links)
	}
	if !strings.Contains(c.opener.links[0], fragment) {
		return fmt.Errorf("expected link to contain %q, got %q", fragment, c.opener.links[0])
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, tc.reset()
	})

	// Given steps
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)
	ctx.Step(`^the cart holds "([^"]*)" priced (\d+) with quantity (\d+)$`, tc.theCartHolds)

	// When steps
	ctx.Step(`^I add "([^"]*)" priced (\d+)$`, tc.iAdd)
	ctx.Step(`^I increment item (\d+)$`, tc.iIncrementItem)
	ctx.Step(`^I decrement item (\d+)$`, tc.iDecrementItem)
	ctx.Step(`^I remove item (\d+)$`, tc.iRemoveItem)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)
	ctx.Step(`^I check out$`, tc.iCheckOut)

	// Then steps
	ctx.Step(`^the cart has (\d+) items?$`, tc.theCartHasItems)
	ctx.Step(`^item (\d+) is "([^"]*)" with quantity (\d+)$`, tc.itemIsWithQuantity)
	ctx.Step(`^the drawer is open$`, tc.theDrawerIsOpen)
	ctx.Step(`^the total reads "([^"]*)"$`, tc.theTotalReads)
	ctx.Step(`^the count badge reads (\d+)$`, tc.theCountBadgeReads)
	ctx.Step(`^checkout is disabled$`, tc.checkoutIsDisabled)
	ctx.Step(`^no link was opened$`, tc.noLinkWasOpened)
	ctx.Step(`^a link was opened starting with "([^"]*)"$`, tc.aLinkWasOpenedStartingWith)
	ctx.Step(`^the opened link contains "([^"]*)"$`, tc.theOpenedLinkContains)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
