package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/aura-storefront/internal/model"
)

// DefaultCartKey is the key the cart is persisted under.
const DefaultCartKey = "auraCart"

// cartRecord is the persisted shape of one cart item. Img and Qty are the
// field names written by the first version of the storefront and are only
// read.
type cartRecord struct {
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Image    string      `json:"image,omitempty"`
	Quantity int         `json:"quantity,omitempty"`
	Img      string      `json:"img,omitempty"`
	Qty      int         `json:"qty,omitempty"`
}

// CartStore is the only component that reads or writes the persisted cart.
type CartStore struct {
	backend Backend
	key     string
	logger  *zap.Logger
}

// NewCartStore creates a CartStore over backend. An empty key selects
// DefaultCartKey.
func NewCartStore(backend Backend, key string, logger *zap.Logger) *CartStore {
	if key == "" {
		key = DefaultCartKey
	}
	return &CartStore{
		backend: backend,
		key:     key,
		logger:  logger,
	}
}

// Key returns the storage key of the cart.
func (s *CartStore) Key() string {
	return s.key
}

// Load returns the persisted cart. Absent, unreadable or malformed data
// yields an empty cart; Load never fails.
func (s *CartStore) Load(ctx context.Context) model.Cart {
	data, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("cart read failed, using empty cart", zap.String("key", s.key), zap.Error(err))
		}
		return model.Cart{}
	}

	cart, err := DecodeCart(data)
	if err != nil {
		s.logger.Debug("persisted cart is malformed, using empty cart", zap.String("key", s.key), zap.Error(err))
		return model.Cart{}
	}

	return cart
}

// Save serializes the full cart and overwrites the persisted value.
func (s *CartStore) Save(ctx context.Context, cart model.Cart) error {
	data, err := EncodeCart(cart)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	if err := s.backend.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	return nil
}

// EncodeCart serializes cart into its persisted JSON form.
func EncodeCart(cart model.Cart) ([]byte, error) {
	records := make([]cartRecord, 0, len(cart))
	for _, item := range cart {
		records = append(records, cartRecord{
			Name:     item.Name,
			Price:    json.Number(item.Price.String()),
			Image:    item.Image,
			Quantity: item.Quantity,
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}

	return data, nil
}

// DecodeCart parses the persisted JSON form. A JSON null decodes to an
// empty cart; any record that breaks a cart invariant makes the whole
// value malformed.
func DecodeCart(data []byte) (model.Cart, error) {
	var records []cartRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	cart := make(model.Cart, 0, len(records))
	for _, rec := range records {
		price, err := decimal.NewFromString(rec.Price.String())
		if err != nil {
			return nil, fmt.Errorf("decode cart: price of %q: %w", rec.Name, err)
		}

		image := rec.Image
		if image == "" {
			image = rec.Img
		}

		quantity := rec.Quantity
		if quantity == 0 {
			quantity = rec.Qty
		}

		cart = append(cart, model.CartItem{
			Name:     rec.Name,
			Price:    price,
			Image:    image,
			Quantity: quantity,
		})
	}

	if err := cart.Validate(); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	return cart, nil
}
