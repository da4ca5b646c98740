package main

import (
	"context"
	"log"
	"time"

	"github.com/quickmart/quickmart/internal/httpx"
	"github.com/quickmart/quickmart/internal/notify"
	"github.com/quickmart/quickmart/internal/order"
)

func eventFor(o *order.Order) notify.Event {
	return notify.Event{
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Status:        string(o.Status),
		TotalAmount:   o.TotalAmount,
	}
}

// fireNotify runs a notification off the request path; the HTTP response
// never waits on (or fails because of) the mail provider. The request id is
// captured before the request context dies so failures can be traced back.
func fireNotify(reqCtx context.Context, fn func(context.Context, notify.Event) error, ev notify.Event) {
	rid := httpx.RequestIDFrom(reqCtx)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := fn(ctx, ev); err != nil {
			log.Printf("[notify] rid=%s order %s: %v", rid, ev.OrderNumber, err)
		}
	}()
}
