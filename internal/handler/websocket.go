package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/aura-storefront/internal/cart"
	"github.com/vyrodovalexey/aura-storefront/internal/model"
	"github.com/vyrodovalexey/aura-storefront/internal/view"
)

// WebSocket configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufferSize = 32
)

var liveClientsConnected = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "cart_live_clients",
		Help: "Number of connected live cart clients",
	},
)

// liveClient is one browser connected to the live channel.
type liveClient struct {
	conn   *websocket.Conn
	send   chan model.LiveMessage
	cancel context.CancelFunc
}

// enqueue queues msg for the client. A client that cannot keep up misses
// the message; the next cart message carries the full state again.
func (c *liveClient) enqueue(msg model.LiveMessage) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// LiveHandler is the live cart channel. It publishes view updates to every
// connected browser and turns browser gestures into cart operations.
type LiveHandler struct {
	upgrader websocket.Upgrader
	cart     CartService
	logger   *zap.Logger
	mu       sync.RWMutex
	clients  map[*liveClient]struct{}
}

// NewLiveHandler creates a new LiveHandler instance.
func NewLiveHandler(svc CartService, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		cart:    svc,
		logger:  logger,
		clients: make(map[*liveClient]struct{}),
	}
}

// RegisterRoutes registers the live channel route with the router.
func (h *LiveHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws", h.HandleWebSocket).Methods(http.MethodGet)
}

// Publish implements view.Publisher and fans msg out to every client.
func (h *LiveHandler) Publish(msg model.LiveMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !c.enqueue(msg) {
			h.logger.Debug("live client send buffer full, dropping message",
				zap.String("type", msg.Type),
				zap.String("remote_addr", c.conn.RemoteAddr().String()),
			)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *LiveHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket handles live channel connection requests. A new client
// first receives the current cart and drawer state.
//
//nolint:contextcheck // intentional: WebSocket connections outlive the HTTP request context
func (h *LiveHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	// The request context ends when this handler returns; the socket lives on.
	ctx, cancel := context.WithCancel(context.Background())
	client := &liveClient{
		conn:   conn,
		send:   make(chan model.LiveMessage, sendBufferSize),
		cancel: cancel,
	}

	state := h.cart.Snapshot(ctx)
	client.enqueue(cartMessage(state))
	client.enqueue(model.NewDrawerMessage(state.DrawerOpen))

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	liveClientsConnected.Inc()

	h.logger.Info("live client connected", zap.String("remote_addr", conn.RemoteAddr().String()))

	go h.writePump(ctx, client)
	go h.readPump(ctx, client)
}

// readPump decodes every gesture sent by one browser.
func (h *LiveHandler) readPump(ctx context.Context, c *liveClient) {
	defer func() {
		c.cancel()
		h.removeClient(c)
		if err := c.conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.Error("failed to set read deadline", zap.Error(err))
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg model.LiveMessage
			if err := c.conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Warn("websocket read error", zap.Error(err))
				}
				return
			}
			h.handleMessage(ctx, c, msg)
		}
	}
}

// handleMessage applies one browser gesture.
func (h *LiveHandler) handleMessage(ctx context.Context, c *liveClient, msg model.LiveMessage) {
	h.logger.Debug("received live message", zap.String("type", msg.Type), zap.String("action", msg.Action))

	if msg.Type == model.LiveTypePing {
		c.enqueue(model.NewPongMessage())
		return
	}

	switch msg.Type {
	case model.LiveTypeAction:
		action, err := cart.ParseAction(msg.Action)
		if err != nil {
			c.enqueue(model.NewErrorMessage(err.Error()))
			return
		}
		h.cart.Dispatch(ctx, action)
	case model.LiveTypeOpen:
		h.cart.OpenDrawer()
	case model.LiveTypeClose:
		h.cart.CloseDrawer()
	case model.LiveTypeClear:
		h.cart.Clear(ctx)
	case model.LiveTypeCheckout:
		h.cart.Checkout(ctx, cart.LinkOpenerFunc(func(_ context.Context, url string) {
			c.enqueue(model.NewOpenLinkMessage(url))
		}))
	default:
		c.enqueue(model.NewErrorMessage("unknown message type: " + msg.Type))
	}
}

// writePump delivers queued messages and keeps the connection alive.
func (h *LiveHandler) writePump(ctx context.Context, c *liveClient) {
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.sendCloseMessage(c.conn)
			return
		case msg := <-c.send:
			if err := h.sendMessage(c.conn, msg); err != nil {
				h.logger.Debug("failed to send live message", zap.Error(err))
				c.cancel()
				return
			}
		case <-pingTicker.C:
			if err := h.sendPing(c.conn); err != nil {
				h.logger.Debug("failed to send ping", zap.Error(err))
				c.cancel()
				return
			}
		}
	}
}

// sendMessage writes one JSON message to the connection.
func (h *LiveHandler) sendMessage(conn *websocket.Conn, msg model.LiveMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

// sendPing sends a ping message to the connection.
func (h *LiveHandler) sendPing(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.PingMessage, nil)
}

// sendCloseMessage sends a close message to the connection.
func (h *LiveHandler) sendCloseMessage(conn *websocket.Conn) {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		h.logger.Debug("failed to set write deadline for close", zap.Error(err))
		return
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutting down")
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		h.logger.Debug("failed to send close message", zap.Error(err))
	}
}

// removeClient removes a client from the clients map.
func (h *LiveHandler) removeClient(c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.clients[c]; exists {
		c.cancel()
		delete(h.clients, c)
		liveClientsConnected.Dec()
		h.logger.Info("live client disconnected", zap.String("remote_addr", c.conn.RemoteAddr().String()))
	}
}

// CloseAllConnections closes all active live connections.
func (h *LiveHandler) CloseAllConnections() {
	h.mu.Lock()
	clients := make([]*liveClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	// Cancel all contexts first - this will trigger writePump to send close messages
	for _, c := range clients {
		c.cancel()
	}

	// Give writePump goroutines time to send close messages
	time.Sleep(100 * time.Millisecond)

	h.mu.Lock()
	for c := range h.clients {
		if err := c.conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
		delete(h.clients, c)
		liveClientsConnected.Dec()
	}
	h.mu.Unlock()

	h.logger.Info("all live connections closed")
}

// cartMessage converts a rendered state into a cart live message.
func cartMessage(state view.State) model.LiveMessage {
	count := state.Count
	disabled := state.CheckoutDisabled
	return model.LiveMessage{
		Type:     model.LiveTypeCart,
		HTML:     string(state.HTML),
		Total:    state.Total,
		Count:    &count,
		Disabled: &disabled,
	}
}
