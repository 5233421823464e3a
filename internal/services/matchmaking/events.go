package matchmaking

import "context"

type EventKind string

const (
	EventMatched             EventKind = "matched"
	EventPartnerDisconnected EventKind = "partner_disconnected"
	EventWaiting             EventKind = "waiting"
	EventCancelled           EventKind = "cancelled"
)

type Event struct {
	Kind      EventKind
	PartnerID int64
	// Filters is set on EventWaiting when the search was constrained.
	Filters Filters
	// WasPaired distinguishes leaving a chat from abandoning a search on
	// EventCancelled.
	WasPaired bool
}

// Notifier delivers engine events to users. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, userID int64, event Event) error
}

type NotifierFunc func(ctx context.Context, userID int64, event Event) error

func (f NotifierFunc) Notify(ctx context.Context, userID int64, event Event) error {
	return f(ctx, userID, event)
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, int64, Event) error { return nil }
