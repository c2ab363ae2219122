// Package events publishes domain events after committed writes.
// Publishing is best-effort: the database is the source of truth.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Routing keys.
const (
	OrderCreated = "order.created"
	OrderUpdated = "order.updated"
	OrderDeleted = "order.deleted"
	DebtAdjusted = "debt.adjusted"
)

// Envelope is the JSON body of every published message.
type Envelope struct {
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

type OrderEvent struct {
	OrderID      int             `json:"order_id"`
	ClientID     *int            `json:"client_id,omitempty"`
	Status       string          `json:"status"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	ItemsUpdated bool            `json:"items_updated,omitempty"`
	ActorID      int             `json:"actor_id"`
}

type DebtEvent struct {
	UserID   int             `json:"user_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Type     string          `json:"type"`
	ActorID  int             `json:"actor_id"`
}

// Publisher sends an event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}
