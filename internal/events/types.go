// Package events provides the in-process event bus feeding the SSE stream.
package events

import (
	"time"
)

// EventType represents different event types
type EventType string

const (
	PriceUpdated      EventType = "PRICE_UPDATED"
	OrderSubmitted    EventType = "ORDER_SUBMITTED"
	OrderRejected     EventType = "ORDER_REJECTED"
	RegistryRefreshed EventType = "REGISTRY_REFRESHED"
	FeedStateChanged  EventType = "FEED_STATE_CHANGED"
	ErrorOccurred     EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// PriceUpdatedData is the payload for PriceUpdated events.
type PriceUpdatedData struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// OrderSubmittedData is the payload for OrderSubmitted events.
type OrderSubmittedData struct {
	ClientRef string  `json:"client_ref"`
	OrderType string  `json:"order_type"`
	Symbol    string  `json:"symbol"`
	Quantity  float64 `json:"quantity"`
}

// FeedStateChangedData is the payload for FeedStateChanged events.
type FeedStateChangedData struct {
	Connected bool `json:"connected"`
}
