package amqp

import (
	"encoding/json"
	"time"
)

// CatalogRefreshMessage asks the worker to re-collect issuer card data.
// An empty Source means every configured source.
type CatalogRefreshMessage struct {
	Source      string    `json:"source,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewCatalogRefreshMessage creates a refresh request for one source, or
// all sources when source is empty.
func NewCatalogRefreshMessage(source string) *CatalogRefreshMessage {
	return &CatalogRefreshMessage{
		Source:      source,
		RequestedAt: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CatalogRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CatalogRefreshMessageFromJSON creates a message from JSON bytes
func CatalogRefreshMessageFromJSON(data []byte) (*CatalogRefreshMessage, error) {
	var msg CatalogRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
