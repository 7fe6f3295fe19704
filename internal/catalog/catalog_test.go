package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/aura-storefront/internal/model"
)

const catalogPayload = `[
  {"id": 1, "title": "Fjallraven Backpack", "price": 109.95, "image": "https://img/1.jpg",
   "description": "Your **perfect** pack", "category": "men's clothing"},
  {"id": 2, "title": "<b>Slim</b>  Fit   Tee", "price": 22.3, "image": "https://img/2.jpg",
   "description": "", "category": "men's clothing"},
  {"id": 3, "title": "", "price": 5, "image": "https://img/3.jpg"},
  {"id": 4, "title": "Refund", "price": -1, "image": "https://img/4.jpg"}
]`

func newCatalogServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "12", r.URL.Query().Get("limit"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Fetch(t *testing.T) {
	t.Parallel()

	srv := newCatalogServer(t, http.StatusOK, catalogPayload)
	client := NewClient(srv.URL, 0, 0, zap.NewNop())

	entries, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2, "invalid entries are skipped")

	first := entries[0].Product()
	assert.Equal(t, "Fjallraven Backpack", first.Name)
	assert.True(t, decimal.RequireFromString("109.95").Equal(first.Price))
	assert.Equal(t, "https://img/1.jpg", first.Image)

	assert.Equal(t, "Slim Fit Tee", entries[1].Product().Name)
}

func TestClient_Fetch_RespectsLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(catalogPayload))
	}))
	t.Cleanup(srv.Close)

	entries, err := NewClient(srv.URL, 1, time.Second, zap.NewNop()).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestClient_Fetch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
		{name: "not found", status: http.StatusNotFound, body: `[]`},
		{name: "malformed json", status: http.StatusOK, body: `{"not": "a list"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newCatalogServer(t, tt.status, tt.body)
			_, err := NewClient(srv.URL, 0, 0, zap.NewNop()).Fetch(context.Background())
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestClient_Fetch_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, 0, time.Second, zap.NewNop()).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_Fetch_CanceledContext(t *testing.T) {
	t.Parallel()

	srv := newCatalogServer(t, http.StatusOK, catalogPayload)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL, 0, 0, zap.NewNop()).Fetch(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCleanTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "Plain", want: "Plain"},
		{in: "<script>alert(1)</script>Tee", want: "Tee"},
		{in: "Tom &amp; Jerry", want: "Tom & Jerry"},
		{in: "  many   spaces ", want: "many spaces"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanTitle(tt.in), tt.in)
	}
}

func TestRenderDescription(t *testing.T) {
	t.Parallel()

	assert.Empty(t, RenderDescription("   "))
	assert.Equal(t, "<p>Your <strong>perfect</strong> pack</p>\n", string(RenderDescription("Your **perfect** pack")))

	unsafe := string(RenderDescription(`hi <script>alert(1)</script> [x](javascript:alert(1))`))
	assert.NotContains(t, unsafe, "<script>")
	assert.NotContains(t, unsafe, "javascript:")
}

func TestLoadFeatured_Default(t *testing.T) {
	t.Parallel()

	featured, err := LoadFeatured("")
	require.NoError(t, err)
	require.NotEmpty(t, featured)

	for _, f := range featured {
		assert.NoError(t, f.Product().Validate(), f.Name)
		assert.NotEmpty(t, f.Image, f.Name)
	}
	assert.Equal(t, "Remera Aura Essential", featured[0].Name)
	assert.True(t, decimal.NewFromInt(18500).Equal(featured[0].Price))
	assert.Contains(t, string(featured[0].DescriptionHTML()), "<strong>regular</strong>")
}

func TestLoadFeatured_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "featured.yaml")
	require.NoError(t, os.WriteFile(path, []byte("products:\n  - name: Taza\n    price: 10.5\n    image: t.jpg\n"), 0o600))

	featured, err := LoadFeatured(path)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "Taza", featured[0].Product().Name)
	assert.True(t, decimal.RequireFromString("10.5").Equal(featured[0].Price))
}

func TestLoadFeatured_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadFeatured(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	tests := map[string]string{
		"bad yaml":       "products: [",
		"bad price":      "products:\n  - name: A\n    price: abc\n",
		"empty name":     "products:\n  - name: ''\n    price: 1\n",
		"negative price": "products:\n  - name: A\n    price: -3\n",
	}
	for name, doc := range tests {
		_, err := ParseFeatured([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestValidation_ReportsProductErrors(t *testing.T) {
	t.Parallel()

	longName := strings.Repeat("a", model.MaxNameLength+1)
	payload := `[{"id": 1, "title": "` + longName + `", "price": 3},
	             {"id": 2, "title": "Gorra", "price": 7}]`
	srv := newCatalogServer(t, http.StatusOK, payload)

	entries, err := NewClient(srv.URL, 0, 0, zap.NewNop()).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Gorra", entries[0].Product().Name)

	_, err = ParseFeatured([]byte("products:\n  - name: A\n    price: -3\n"))
	assert.ErrorIs(t, err, model.ErrNegativePrice)

	_, err = ParseFeatured([]byte("products:\n  - name: ''\n    price: 1\n"))
	assert.ErrorIs(t, err, model.ErrEmptyName)
}
