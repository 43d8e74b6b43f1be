package events

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/rocketshoes-cart/internal/cart"
)

const (
	EnvelopeVersion      = 1
	EventTypeCartUpdated = "cart.updated"
)

// Envelope is the stable payload published for every committed cart.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// CartUpdated is the data of a cart.updated event.
type CartUpdated struct {
	StorageKey string          `json:"storageKey"`
	Items      []cart.LineItem `json:"items"`
	ItemCount  int             `json:"itemCount"`
}
