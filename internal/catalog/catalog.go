// Package catalog loads the products offered by the storefront: the remote
// catalog grid and the featured products on the home page.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/aura-storefront/internal/model"
)

// Default client settings.
const (
	DefaultBaseURL = "https://fakestoreapi.com"
	DefaultLimit   = 12
	DefaultTimeout = 10 * time.Second
)

// ErrUnavailable is returned when the remote catalog cannot be read.
var ErrUnavailable = errors.New("catalog unavailable")

var (
	titlePolicy       = bluemonday.StrictPolicy()
	descriptionPolicy = newDescriptionPolicy()
)

func newDescriptionPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// Entry is one product as returned by the remote catalog.
type Entry struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
}

// Product maps the entry to the product handed to the cart.
func (e Entry) Product() model.Product {
	return model.Product{
		Name:  CleanTitle(e.Title),
		Price: e.Price,
		Image: strings.TrimSpace(e.Image),
	}
}

// DescriptionHTML renders the description as sanitized Markdown.
func (e Entry) DescriptionHTML() template.HTML {
	return RenderDescription(e.Description)
}

// CleanTitle strips markup from a product title and collapses whitespace.
func CleanTitle(title string) string {
	text := html.UnescapeString(titlePolicy.Sanitize(title))
	return strings.Join(strings.Fields(text), " ")
}

// RenderDescription converts Markdown to HTML safe to embed in a page.
func RenderDescription(markdown string) template.HTML {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(markdown)) //nolint:gosec // escaped above
	}
	return template.HTML(descriptionPolicy.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitized by bluemonday
}

// Client reads the remote product catalog.
type Client struct {
	http    *http.Client
	baseURL string
	limit   int
	logger  *zap.Logger
}

// NewClient creates a catalog client. Zero values select the defaults.
func NewClient(baseURL string, limit int, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		limit:   limit,
		logger:  logger,
	}
}

// Fetch returns up to limit products. Entries that do not form a valid
// product are skipped.
func (c *Client) Fetch(ctx context.Context) ([]Entry, error) {
	endpoint, err := url.JoinPath(strings.TrimRight(strings.TrimSpace(c.baseURL), "/"), "products")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	q := req.URL.Query()
	q.Set("limit", strconv.Itoa(c.limit))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload []Entry
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrUnavailable, err)
	}

	entries := make([]Entry, 0, len(payload))
	for _, e := range payload {
		if err := e.Product().Validate(); err != nil {
			c.logger.Debug("skipping catalog entry", zap.Int("id", e.ID), zap.Error(err))
			continue
		}
		entries = append(entries, e)
		if len(entries) == c.limit {
			break
		}
	}

	c.logger.Debug("catalog fetched", zap.Int("entries", len(entries)))
	return entries, nil
}
