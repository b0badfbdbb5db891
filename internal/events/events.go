// Package events announces ledger changes to other processes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Type names what happened to a transaction.
type Type string

const (
	TransactionCreated Type = "transaction.created"
	TransactionUpdated Type = "transaction.updated"
	TransactionDeleted Type = "transaction.deleted"
)

// Event is the message body published after a successful mutation.
type Event struct {
	Event         Type      `json:"event"`
	TransactionID uint      `json:"transaction_id"`
	UserID        uint      `json:"user_id"`
	At            time.Time `json:"at"`
}

// New stamps an event with the current time.
func New(typ Type, transactionID, userID uint) Event {
	return Event{Event: typ, TransactionID: transactionID, UserID: userID, At: time.Now().UTC()}
}

// Decode parses a message body and rejects unknown event types.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	switch e.Event {
	case TransactionCreated, TransactionUpdated, TransactionDeleted:
		return e, nil
	default:
		return Event{}, fmt.Errorf("unknown event type %q", e.Event)
	}
}

// Publisher sends events somewhere.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop discards every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
