// Package model defines data structures used throughout the application.
package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Validation errors for Product and Cart.
var (
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrNameTooLong       = errors.New("name cannot exceed 255 characters")
	ErrNegativePrice     = errors.New("price cannot be negative")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrDuplicateCartItem = errors.New("cart contains duplicate item names")
)

// Validation constants.
const (
	MaxNameLength = 255
	MinQuantity   = 1
)

// Product is the input accepted by the add-to-cart entry point.
type Product struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

// Validate checks if the Product has valid field values.
func (p Product) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}

	if len(p.Name) > MaxNameLength {
		return ErrNameTooLong
	}

	if p.Price.IsNegative() {
		return ErrNegativePrice
	}

	return nil
}

// CartItem is one line of the cart. Name is the dedup key.
type CartItem struct {
	Name     string
	Price    decimal.Decimal
	Image    string
	Quantity int
}

// LineTotal returns price times quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the ordered sequence of items, in order of first add.
type Cart []CartItem

// Empty reports whether the cart has no items.
func (c Cart) Empty() bool {
	return len(c) == 0
}

// Total returns the sum of price times quantity over all items.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Units returns the sum of quantities over all items.
func (c Cart) Units() int {
	units := 0
	for _, item := range c {
		units += item.Quantity
	}
	return units
}

// IndexOf returns the position of the item with the given name, or -1.
func (c Cart) IndexOf(name string) int {
	for i, item := range c {
		if item.Name == name {
			return i
		}
	}
	return -1
}

// InRange reports whether index addresses an item of the cart.
func (c Cart) InRange(index int) bool {
	return index >= 0 && index < len(c)
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Validate checks the cart invariants: unique names, quantity >= 1,
// non-negative prices.
func (c Cart) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for _, item := range c {
		if item.Name == "" {
			return ErrEmptyName
		}
		if item.Quantity < MinQuantity {
			return ErrInvalidQuantity
		}
		if item.Price.IsNegative() {
			return ErrNegativePrice
		}
		if _, dup := seen[item.Name]; dup {
			return ErrDuplicateCartItem
		}
		seen[item.Name] = struct{}{}
	}
	return nil
}
