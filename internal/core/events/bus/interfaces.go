package bus

import "time"

// EventBus is a thread-safe, in-process pub/sub bus. Handlers subscribe by
// Event.Type() and are called synchronously in the publisher's goroutine,
// so they must return quickly or hand the event off.
type EventBus interface {
	// Publish delivers the event to every active subscriber of its type.
	// Handler errors are joined and returned.
	Publish(event Event) error
	// Subscribe registers a handler for one event type.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the subscription. A nil subscription is ignored.
	Unsubscribe(Subscription) error
	// Subscribers reports how many handlers listen to eventType.
	Subscribers(eventType string) int
}

// Event types emitted by the simulator.
const (
	EventGoalScored         = "goal.scored"
	EventClientConnected    = "robot.client.connected"
	EventClientDisconnected = "robot.client.disconnected"
)

// Event is an immutable message transported by the bus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	EventHandler func(event Event) error
)

// Subscription is a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}
