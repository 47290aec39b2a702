// Package notify delivers fire-and-forget markdown notifications. Delivery
// failures are for the caller to log; they never block or fail reconciliation.
package notify

import "context"

// Notifier posts a markdown message to the notification sink.
type Notifier interface {
	Post(ctx context.Context, markdown string) error
}

// Noop discards every message. Used when the sink is not configured and in
// tests.
type Noop struct{}

func (Noop) Post(context.Context, string) error { return nil }
