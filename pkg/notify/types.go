package notify

import (
	"context"

	"github.com/pricewatch/pricewatch/pkg/model"
)

// Message carries everything a channel needs to render an alert.
type Message struct {
	Event        model.AlertKind `json:"event"`
	ItemID       string          `json:"item_id"`
	Title        string          `json:"title"`
	Platform     model.Platform  `json:"platform"`
	ProductURL   string          `json:"product_url"`
	CurrentPrice float64         `json:"current_price"`
	TargetPrice  float64         `json:"target_price"`
	OldPrice     float64         `json:"old_price"`
	Currency     string          `json:"currency"`
	Body         string          `json:"body"`
}

// Channel delivers rendered alerts to one destination type.
type Channel interface {
	// Name returns the channel identifier.
	Name() model.Channel

	// Send delivers a message to a single recipient. Implementations
	// must be safe for concurrent use.
	Send(ctx context.Context, recipient string, msg Message) error
}
