package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// MessagePublisher is the subset of *nats.Conn the relay needs.
type MessagePublisher interface {
	PublishMsg(m *nats.Msg) error
}

// Envelope is the JSON body relayed for every event.
type Envelope struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	ProductID  uuid.UUID `json:"product_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    Event     `json:"payload"`
}

// NATSRelay mirrors domain events onto NATS subjects <prefix>.<kind>.
type NATSRelay struct {
	conn   MessagePublisher
	prefix string
}

func NewNATSRelay(conn MessagePublisher, prefix string) *NATSRelay {
	return &NATSRelay{conn: conn, prefix: prefix}
}

// Subject returns the subject an event of kind k is published to.
func (r *NATSRelay) Subject(k Kind) string {
	if r.prefix == "" {
		return string(k)
	}
	return r.prefix + "." + string(k)
}

// Handle is a bus Handler.
func (r *NATSRelay) Handle(ctx context.Context, e Event) error {
	env := Envelope{
		ID:         uuid.New(),
		Kind:       e.Kind(),
		ProductID:  e.ProductID(),
		OccurredAt: e.OccurredAt(),
		Payload:    e,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", e.Kind(), err)
	}

	msg := nats.NewMsg(r.Subject(e.Kind()))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, env.ID.String())
	msg.Header.Set("Content-Type", "application/json")

	if err := r.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish %s to nats: %w", e.Kind(), err)
	}
	return nil
}
