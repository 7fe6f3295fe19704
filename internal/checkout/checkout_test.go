package checkout

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/aura-storefront/internal/model"
	"github.com/vyrodovalexey/aura-storefront/internal/money"
)

func shirtCart() model.Cart {
	return model.Cart{{Name: "Shirt", Price: decimal.NewFromInt(100), Image: "s.jpg", Quantity: 2}}
}

func TestBuilder_Message_Shape(t *testing.T) {
	t.Parallel()

	b := NewBuilder("", "", nil)

	msg := b.Message(shirtCart())

	lines := strings.Split(msg, "\n")
	require.Equal(t, []string{
		"Hola, quiero seguir esta compra con un vendedor de Tienda Aura:",
		"",
		"• Shirt x2 = $200",
		"",
		"Total estimado: $200",
		"",
		"¿Me ayudás a coordinar el pedido? 🙂",
	}, lines)
}

func TestBuilder_Message_MultipleItems(t *testing.T) {
	t.Parallel()

	b := NewBuilder("", "Mi Tienda", money.Default())
	cart := model.Cart{
		{Name: "A", Price: decimal.NewFromInt(100), Quantity: 2},
		{Name: "B", Price: decimal.NewFromInt(50), Quantity: 1},
	}

	msg := b.Message(cart)

	assert.Contains(t, msg, "vendedor de Mi Tienda:")
	assert.Contains(t, msg, "• A x2 = $200\n• B x1 = $50")
	assert.Contains(t, msg, "Total estimado: $250")
}

func TestBuilder_Link(t *testing.T) {
	t.Parallel()

	b := NewBuilder("5491100000000", "", nil)

	link, ok := b.Link(shirtCart())

	require.True(t, ok)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/5491100000000?text="))
	assert.NotContains(t, link, "+")
	assert.NotContains(t, link, " ")

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, b.Message(shirtCart()), parsed.Query().Get("text"))
}

func TestBuilder_Link_EmptyCart(t *testing.T) {
	t.Parallel()

	b := NewBuilder("", "", nil)

	link, ok := b.Link(model.Cart{})

	assert.False(t, ok)
	assert.Empty(t, link)
}

func TestEncodeComponent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a%20b%2Bc%0A%E2%80%A2", EncodeComponent("a b+c\n•"))
}
