package order

import (
	"context"

	"github.com/go-faster/errors"
)

// Service covers order management after checkout: reads, lifecycle
// transitions, and payment capture results. Checkout itself never touches an
// existing order; all forward movement goes through here.
type Service struct {
	orders Repository
}

// NewService creates an order management Service.
func NewService(orders Repository) *Service {
	return &Service{orders: orders}
}

// Get returns one order with its items and payment record.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListByUser returns a user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// Advance applies a lifecycle event to an order. The transition function
// rejects illegal moves; the compare-and-set update rejects racing ones.
func (s *Service) Advance(ctx context.Context, id string, e Event) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}

	next, err := Transition(o.Status, e)
	if err != nil {
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, id, o.Status, next); err != nil {
		return nil, errors.Wrap(err, "update status")
	}

	o.Status = next
	return o, nil
}

// RecordCapture records the outcome of an external payment capture: the
// payment moves from pending to completed or failed, and a completed capture
// also advances the order to paid.
func (s *Service) RecordCapture(ctx context.Context, orderID string, ok bool) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	if o.Payment == nil {
		return nil, errors.New("order has no payment record")
	}

	next, err := o.Payment.Status.Capture(ok)
	if err != nil {
		return nil, err
	}

	if err := s.orders.UpdatePaymentStatus(ctx, orderID, o.Payment.Status, next); err != nil {
		return nil, errors.Wrap(err, "update payment status")
	}
	o.Payment.Status = next

	if ok {
		status, err := Transition(o.Status, EventPay)
		if err != nil {
			return nil, err
		}
		if err := s.orders.UpdateStatus(ctx, orderID, o.Status, status); err != nil {
			return nil, errors.Wrap(err, "update status")
		}
		o.Status = status
	}

	return o, nil
}
