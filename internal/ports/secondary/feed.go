package secondary

import "context"

// Table names of the rows the change feed reports on.
const (
	TableMemberships = "memberships"
	TableRooms       = "rooms"
	TableMatches     = "matches"
)

// Change event types. EventAny is only meaningful in a Binding.
const (
	EventAny    = "*"
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Binding selects row changes on one table: an event-type filter plus a
// column-equality filter (column = value).
type Binding struct {
	Table  string
	Event  string // EventAny, EventInsert, EventUpdate or EventDelete
	Column string
	Value  string
}

// Change is a single row-change notification.
type Change struct {
	Table string
	Event string
	Row   map[string]string // Column values of the row after the change (before, for deletes)
}

// ChangeHandler receives row changes. Handlers run on the transport's delivery goroutine
// and must not block.
type ChangeHandler func(Change)

// Subscription is a live push subscription. Close releases it; closing twice is a no-op.
type Subscription interface {
	Close() error
}

// ChangeFeed defines the secondary port for push notifications of row changes.
type ChangeFeed interface {
	// Subscribe opens a named channel delivering every change matching any of the bindings.
	Subscribe(ctx context.Context, name string, bindings []Binding, handler ChangeHandler) (Subscription, error)
}

// ChangePublisher defines the secondary port for announcing row changes to subscribers.
type ChangePublisher interface {
	Publish(ctx context.Context, change Change) error
}

// Matches reports whether a change satisfies a binding.
func (b Binding) Matches(c Change) bool {
	if b.Table != c.Table {
		return false
	}
	if b.Event != EventAny && b.Event != c.Event {
		return false
	}
	if b.Column == "" {
		return true
	}
	return c.Row[b.Column] == b.Value
}
