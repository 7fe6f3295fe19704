package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/aura-storefront/internal/cart"
	"github.com/vyrodovalexey/aura-storefront/internal/catalog"
	"github.com/vyrodovalexey/aura-storefront/internal/checkout"
	"github.com/vyrodovalexey/aura-storefront/internal/config"
	"github.com/vyrodovalexey/aura-storefront/internal/handler"
	"github.com/vyrodovalexey/aura-storefront/internal/model"
	"github.com/vyrodovalexey/aura-storefront/internal/store"
	"github.com/vyrodovalexey/aura-storefront/internal/view"
)

func testConfig(metrics bool) *config.Config {
	return &config.Config{
		ServerPort:      0,
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
		MetricsEnabled:  metrics,
		StorageBackend:  config.StorageMemory,
		CartKey:         config.DefaultCartKey,
		StoreName:       "Tienda Aura",
		CatalogTimeout:  time.Second,
	}
}

// newTestServer wires a server over an in-memory cart the way main does.
func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	logger := zap.NewNop()
	v, err := view.New(nil, nil, logger)
	if err != nil {
		t.Fatalf("view.New() unexpected error: %v", err)
	}
	cs := store.NewCartStore(store.NewMemoryBackend(), cfg.CartKey, logger)
	ctrl := cart.NewController(cs, v, checkout.NewBuilder("", cfg.StoreName, nil), logger)
	live := handler.NewLiveHandler(ctrl, logger)
	v.SetPublisher(live)

	featured, err := catalog.LoadFeatured("")
	if err != nil {
		t.Fatalf("LoadFeatured() unexpected error: %v", err)
	}

	return New(cfg, logger, Deps{
		Cart:  ctrl,
		Pages: v,
		Live:  live,
		Storefront: handler.StorefrontOptions{
			StoreName: cfg.StoreName,
			Featured:  featured,
		},
	})
}

func serve(s *Server, method, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if method == http.MethodPost && body != "" && !strings.HasPrefix(body, "{") {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func TestNew(t *testing.T) {
	// Arrange & Act
	s := newTestServer(t, testConfig(true))

	// Assert
	if s.httpServer == nil || s.router == nil || s.live == nil {
		t.Fatalf("server not fully initialized: %+v", s)
	}
	if s.httpServer.Addr != ":0" {
		t.Errorf("Addr = %s, want :0", s.httpServer.Addr)
	}
	if s.httpServer.ReadHeaderTimeout != 5*time.Second {
		t.Errorf("ReadHeaderTimeout = %v, want 5s", s.httpServer.ReadHeaderTimeout)
	}
	if s.httpServer.WriteTimeout <= time.Second {
		t.Errorf("WriteTimeout = %v, want more than the catalog timeout", s.httpServer.WriteTimeout)
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		enabled    bool
		wantStatus int
	}{
		{name: "enabled", enabled: true, wantStatus: http.StatusOK},
		{name: "disabled", enabled: false, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			s := newTestServer(t, testConfig(tt.enabled))

			// Act
			rr := serve(s, http.MethodGet, "/metrics", "")

			// Assert
			if rr.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_HealthEndpoint(t *testing.T) {
	// Arrange
	s := newTestServer(t, testConfig(false))

	// Act
	rr := serve(s, http.MethodGet, "/health", "")

	// Assert
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
	var resp model.APIResponse[handler.HealthResponse]
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resp.Data.Status != "healthy" {
		t.Errorf("Status = %s, want healthy", resp.Data.Status)
	}
}

func TestServer_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "home", method: http.MethodGet, path: "/", wantStatus: http.StatusOK},
		{name: "catalog", method: http.MethodGet, path: "/productos", wantStatus: http.StatusOK},
		{name: "contact", method: http.MethodGet, path: "/contacto", wantStatus: http.StatusOK},
		{name: "stylesheet", method: http.MethodGet, path: "/static/styles.css", wantStatus: http.StatusOK},
		{name: "live script", method: http.MethodGet, path: "/static/live.js", wantStatus: http.StatusOK},
		{name: "fragment", method: http.MethodGet, path: "/cart/fragment", wantStatus: http.StatusOK},
		{name: "api cart", method: http.MethodGet, path: "/api/v1/cart", wantStatus: http.StatusOK},
		{name: "form add", method: http.MethodPost, path: "/cart/add", body: "name=Remera&price=100", wantStatus: http.StatusSeeOther},
		{name: "api add", method: http.MethodPost, path: "/api/v1/cart/items", body: `{"name":"Remera","price":100}`, wantStatus: http.StatusCreated},
		{name: "unknown", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			s := newTestServer(t, testConfig(false))

			// Act
			rr := serve(s, tt.method, tt.path, tt.body)

			// Assert
			if rr.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_MiddlewareApplied(t *testing.T) {
	// Arrange
	s := newTestServer(t, testConfig(true))

	// Act
	rr := serve(s, http.MethodGet, "/", "")

	// Assert
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header should be set")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers should be set")
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	// Arrange
	s := newTestServer(t, testConfig(false))
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart/items", nil)
	req.Header.Set("Origin", "https://aura.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()

	// Act
	s.Router().ServeHTTP(rr, req)

	// Assert
	if rr.Code != http.StatusNoContent {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://aura.example" {
		t.Errorf("Allow-Origin = %s", rr.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestServer_FormAndAPIShareCart(t *testing.T) {
	// Arrange
	s := newTestServer(t, testConfig(false))
	form := url.Values{"name": {"Remera"}, "price": {"100"}, "return": {"/"}}

	// Act
	serve(s, http.MethodPost, "/cart/add", form.Encode())
	rr := serve(s, http.MethodGet, "/api/v1/cart", "")

	// Assert
	var resp model.APIResponse[handler.CartResponse]
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(resp.Data.Items) != 1 || resp.Data.Items[0].Name != "Remera" {
		t.Errorf("Items = %+v, want the form-added item", resp.Data.Items)
	}
}

func TestServer_LiveEndpoint(t *testing.T) {
	// Arrange
	s := newTestServer(t, testConfig(false))
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	// Act
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)

	// Assert
	if err != nil {
		t.Fatalf("Failed to connect through the middleware chain: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Errorf("Status = %d, want %d", resp.StatusCode, http.StatusSwitchingProtocols)
	}
	var msg model.LiveMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() unexpected error: %v", err)
	}
	if msg.Type != model.LiveTypeCart {
		t.Errorf("Type = %s, want %s", msg.Type, model.LiveTypeCart)
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	// Arrange
	s := newTestServer(t, testConfig(false))
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()
	time.Sleep(100 * time.Millisecond)

	// Act
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)

	// Assert
	if err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	select {
	case startErr := <-errCh:
		if startErr != nil {
			t.Errorf("Start() error = %v", startErr)
		}
	case <-time.After(2 * time.Second):
		t.Error("Start() did not return after shutdown")
	}
}
