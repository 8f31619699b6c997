package models

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// transitions is the adjacency table enforced in strict mode. Cancelled and
// refunded are side exits from every non-terminal state; delivered,
// cancelled and refunded have no exits.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusProcessing, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded},
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusRefunded
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusUpdate is one administrative status change.
type StatusUpdate struct {
	Status             OrderStatus
	ActorID            int64
	At                 time.Time
	CancellationReason string
	Tracking           *Tracking
	PaymentStatus      PaymentStatus
	// Strict rejects moves that are not in the adjacency table.
	Strict bool
}

// ApplyStatus writes the new status and its side effects. shippedAt and
// deliveredAt are stamped on first entry only; every cancellation restamps
// cancelledAt and cancelledBy.
func (o *Order) ApplyStatus(u StatusUpdate) error {
	if !u.Status.Valid() {
		return &ValidationError{
			Message: "Validation errors",
			Fields:  []FieldError{{Field: "status", Message: "Invalid status"}},
		}
	}
	if u.PaymentStatus != "" && !u.PaymentStatus.Valid() {
		return &ValidationError{
			Message: "Validation errors",
			Fields:  []FieldError{{Field: "paymentStatus", Message: "Invalid payment status"}},
		}
	}
	if u.Strict && !CanTransition(o.Status, u.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, u.Status)
	}

	at := u.At.UTC()
	o.Status = u.Status

	switch u.Status {
	case OrderStatusShipped:
		if o.ShippedAt == nil {
			o.ShippedAt = &at
		}
	case OrderStatusDelivered:
		if o.DeliveredAt == nil {
			o.DeliveredAt = &at
		}
	case OrderStatusCancelled:
		actor := u.ActorID
		o.CancelledAt = &at
		o.CancelledBy = &actor
		if u.CancellationReason != "" {
			o.CancellationReason = u.CancellationReason
		}
	}

	if !u.Tracking.Empty() {
		tr := *u.Tracking
		o.Tracking = &tr
	}
	if u.PaymentStatus != "" {
		o.PaymentStatus = u.PaymentStatus
	}

	return nil
}
