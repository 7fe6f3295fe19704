package model

import "time"

// APIResponse is a generic wrapper for API responses.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewSuccessResponse creates a successful API response.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error API response.
func NewErrorResponse[T any](errMsg string) APIResponse[T] {
	return APIResponse[T]{
		Success: false,
		Error:   errMsg,
	}
}

// ErrorResponse represents an error response structure.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// LiveMessage is a message exchanged over the live cart channel.
// Server to browser: cart, drawer, open_link, pong, error.
// Browser to server: action, open, close, clear, checkout, ping.
type LiveMessage struct {
	Type      string     `json:"type"`
	HTML      string     `json:"html,omitempty"`
	Total     string     `json:"total,omitempty"`
	Count     *int       `json:"count,omitempty"`
	Disabled  *bool      `json:"checkout_disabled,omitempty"`
	Open      *bool      `json:"open,omitempty"`
	URL       string     `json:"url,omitempty"`
	Action    string     `json:"action,omitempty"`
	Error     string     `json:"error,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Live message types.
const (
	LiveTypeCart     = "cart"
	LiveTypeDrawer   = "drawer"
	LiveTypeOpenLink = "open_link"
	LiveTypeAction   = "action"
	LiveTypeOpen     = "open"
	LiveTypeClose    = "close"
	LiveTypeClear    = "clear"
	LiveTypeCheckout = "checkout"
	LiveTypePing     = "ping"
	LiveTypePong     = "pong"
	LiveTypeError    = "error"
)

// NewDrawerMessage creates a drawer visibility message.
func NewDrawerMessage(open bool) LiveMessage {
	return LiveMessage{
		Type: LiveTypeDrawer,
		Open: &open,
	}
}

// NewOpenLinkMessage creates a message asking the browser to open url
// in a new browsing context.
func NewOpenLinkMessage(url string) LiveMessage {
	return LiveMessage{
		Type: LiveTypeOpenLink,
		URL:  url,
	}
}

// NewPongMessage creates a pong reply stamped with the current time.
func NewPongMessage() LiveMessage {
	now := time.Now().UTC()
	return LiveMessage{
		Type:      LiveTypePong,
		Timestamp: &now,
	}
}

// NewErrorMessage creates a live channel error message.
func NewErrorMessage(msg string) LiveMessage {
	return LiveMessage{
		Type:  LiveTypeError,
		Error: msg,
	}
}
