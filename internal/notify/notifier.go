// Package notify sends best-effort order notifications to customers.
// Failures are logged, never surfaced to the API caller.
package notify

import (
	"context"
	"log"
)

// Event carries everything a notification template needs; it is a snapshot,
// not a reference back into the store.
type Event struct {
	OrderID       string
	OrderNumber   string
	CustomerName  string
	CustomerEmail string
	Status        string
	TotalAmount   string
}

type Notifier interface {
	OrderPlaced(ctx context.Context, ev Event) error
	OrderStatusChanged(ctx context.Context, ev Event) error
}

// LogNotifier is the default sink when no email sender is configured.
type LogNotifier struct{}

func (LogNotifier) OrderPlaced(_ context.Context, ev Event) error {
	log.Printf("[notify] order placed %s (%s) total=%s customer=%s", ev.OrderNumber, ev.OrderID, ev.TotalAmount, ev.CustomerEmail)
	return nil
}

func (LogNotifier) OrderStatusChanged(_ context.Context, ev Event) error {
	log.Printf("[notify] order %s status=%s customer=%s", ev.OrderNumber, ev.Status, ev.CustomerEmail)
	return nil
}
