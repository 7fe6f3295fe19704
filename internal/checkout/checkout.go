// Package checkout builds the order summary handed to the seller's
// messaging deep link.
package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vyrodovalexey/aura-storefront/internal/model"
	"github.com/vyrodovalexey/aura-storefront/internal/money"
)

// Defaults for the deep link.
const (
	DefaultEndpoint  = "https://wa.me/%s?text=%s"
	DefaultRecipient = "5491157804951"
	DefaultStoreName = "Tienda Aura"
)

const closing = "¿Me ayudás a coordinar el pedido? 🙂"

// Builder derives the checkout message and deep link from a cart.
// It has no side effects.
type Builder struct {
	endpoint  string
	recipient string
	storeName string
	formatter *money.Formatter
}

// NewBuilder creates a Builder. Empty arguments select the defaults.
func NewBuilder(recipient, storeName string, formatter *money.Formatter) *Builder {
	if recipient == "" {
		recipient = DefaultRecipient
	}
	if storeName == "" {
		storeName = DefaultStoreName
	}
	if formatter == nil {
		formatter = money.Default()
	}
	return &Builder{
		endpoint:  DefaultEndpoint,
		recipient: recipient,
		storeName: storeName,
		formatter: formatter,
	}
}

// Message returns the line-oriented order summary for cart.
func (b *Builder) Message(cart model.Cart) string {
	lines := make([]string, 0, len(cart)+6)
	lines = append(lines,
		fmt.Sprintf("Hola, quiero seguir esta compra con un vendedor de %s:", b.storeName),
		"",
	)
	for _, item := range cart {
		lines = append(lines, fmt.Sprintf("• %s x%d = %s", item.Name, item.Quantity, b.formatter.Format(item.LineTotal())))
	}
	lines = append(lines,
		"",
		"Total estimado: "+b.formatter.Format(cart.Total()),
		"",
		closing,
	)
	return strings.Join(lines, "\n")
}

// Link returns the deep link for cart. It reports false, and no link, when
// the cart is empty.
func (b *Builder) Link(cart model.Cart) (string, bool) {
	if cart.Empty() {
		return "", false
	}
	return fmt.Sprintf(b.endpoint, url.PathEscape(b.recipient), EncodeComponent(b.Message(cart))), true
}

// EncodeComponent percent-encodes s for use as a query parameter value,
// with spaces as %20.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
