package trading

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a requested trade action, not yet acknowledged by any backend.
// It is a value object: identity appears only with the OrderAck returned by
// a successful submission, and a submitted Order is never mutated —
// resubmission takes a fresh value.
type Order struct {
	Symbol      string
	Side        OrderSide
	Quantity    decimal.Decimal
	Type        OrderType
	TimeInForce OrderTimeInForce

	// LimitPrice is required exactly when Type.RequiresLimitPrice.
	LimitPrice *decimal.Decimal

	// StopPrice is required exactly when Type.RequiresStopPrice.
	StopPrice *decimal.Decimal

	// ClientOrderID is an optional idempotency token, honored only by
	// backends reporting Capabilities.IdempotentOrders.
	ClientOrderID ClientOrderID
}

// Validate checks the contract-level order invariants. It never touches the
// network; a failure here means the backend was not contacted.
func (o *Order) Validate() error {
	if o.Symbol == "" {
		return &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if o.Quantity.Sign() <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive, got " + o.Quantity.String()}
	}
	if o.Type.RequiresLimitPrice() && o.LimitPrice == nil {
		return &ValidationError{Field: "limitPrice", Reason: "required for " + o.Type.String() + " orders"}
	}
	if !o.Type.RequiresLimitPrice() && o.LimitPrice != nil {
		return &ValidationError{Field: "limitPrice", Reason: "not allowed for " + o.Type.String() + " orders"}
	}
	if o.Type.RequiresStopPrice() && o.StopPrice == nil {
		return &ValidationError{Field: "stopPrice", Reason: "required for " + o.Type.String() + " orders"}
	}
	if !o.Type.RequiresStopPrice() && o.StopPrice != nil {
		return &ValidationError{Field: "stopPrice", Reason: "not allowed for " + o.Type.String() + " orders"}
	}
	if o.LimitPrice != nil && o.LimitPrice.Sign() <= 0 {
		return &ValidationError{Field: "limitPrice", Reason: "must be positive, got " + o.LimitPrice.String()}
	}
	if o.StopPrice != nil && o.StopPrice.Sign() <= 0 {
		return &ValidationError{Field: "stopPrice", Reason: "must be positive, got " + o.StopPrice.String()}
	}
	return o.ClientOrderID.Validate()
}

// OrderAck is the broker's reply to an accepted submission. It is owned by
// the caller once returned and never mutated by the client.
type OrderAck struct {
	// OrderID is the backend-assigned order identifier, never empty on a
	// successful submission.
	OrderID string

	// ClientOrderID echoes the token the order carried, when any.
	ClientOrderID ClientOrderID

	Symbol         string
	Status         OrderStatus
	FilledQuantity decimal.Decimal
	SubmittedAt    time.Time
}
