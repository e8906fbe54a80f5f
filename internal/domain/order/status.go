package order

import "fmt"

// Status is an order's position in its fulfillment lifecycle.
type Status string

const (
	// StatusCreated is the initial state, set exclusively by checkout.
	StatusCreated Status = "created"
	// StatusPaid means the payment was captured.
	StatusPaid Status = "paid"
	// StatusShipped means the order left the warehouse.
	StatusShipped Status = "shipped"
	// StatusDelivered is terminal.
	StatusDelivered Status = "delivered"
	// StatusCanceled is terminal, reachable from created or paid.
	StatusCanceled Status = "canceled"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCanceled
}

// Event is a lifecycle trigger applied to an order.
type Event string

const (
	EventPay     Event = "pay"
	EventShip    Event = "ship"
	EventDeliver Event = "deliver"
	EventCancel  Event = "cancel"
)

// ParseEvent validates an event name from the wire.
func ParseEvent(s string) (Event, error) {
	switch Event(s) {
	case EventPay, EventShip, EventDeliver, EventCancel:
		return Event(s), nil
	default:
		return "", fmt.Errorf("unknown order event %q", s)
	}
}

// TransitionError reports an event that is not legal in the current state.
type TransitionError struct {
	From  Status
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot apply event %q to order in state %q", e.Event, e.From)
}

// transitions is the full order lifecycle:
// created -> paid -> shipped -> delivered, with cancel allowed from
// created or paid.
var transitions = map[Status]map[Event]Status{
	StatusCreated: {
		EventPay:    StatusPaid,
		EventCancel: StatusCanceled,
	},
	StatusPaid: {
		EventShip:   StatusShipped,
		EventCancel: StatusCanceled,
	},
	StatusShipped: {
		EventDeliver: StatusDelivered,
	},
}

// Transition applies an event to a status and returns the new status, or a
// TransitionError if the event is not legal in that state. Illegal moves are
// caught here, structurally, rather than by ad hoc field checks at call
// sites.
func Transition(s Status, e Event) (Status, error) {
	if next, ok := transitions[s][e]; ok {
		return next, nil
	}
	return "", &TransitionError{From: s, Event: e}
}

// PaymentStatus is a payment record's capture state.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Capture resolves a pending payment to completed or failed. Payments are
// single-shot: a resolved payment cannot be captured again.
func (s PaymentStatus) Capture(ok bool) (PaymentStatus, error) {
	if s != PaymentPending {
		return "", fmt.Errorf("payment already resolved to %q", s)
	}
	if ok {
		return PaymentCompleted, nil
	}
	return PaymentFailed, nil
}
