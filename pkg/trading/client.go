package trading

import "context"

// TradingClient is the unified surface over one configured backend. Exactly
// one Config is bound to an instance for its lifetime. Implementations are
// safe for concurrent use: any number of calls may be outstanding against the
// same instance.
type TradingClient interface {
	// CreateOrder validates the order against the contract invariants and
	// submits it. On success a real order exists at the broker; the call is
	// NOT idempotent and is never retried automatically. Callers that need a
	// safe retry must set Order.ClientOrderID on a backend reporting
	// Capabilities.IdempotentOrders.
	CreateOrder(ctx context.Context, order Order) (*OrderAck, error)

	// GetAsset looks up instrument metadata. Read-only, safe to retry.
	// The returned Asset carries the backend's canonical symbol form, which
	// is used for all subsequent order and subscription calls in the session.
	GetAsset(ctx context.Context, symbol string) (*Asset, error)

	// SubscribeToData registers interest in one symbol's live updates.
	// Subscribing twice to the same symbol yields two handles multiplexed
	// over one underlying stream connection.
	SubscribeToData(ctx context.Context, symbol string) (*Subscription, error)

	// Capabilities reports what the configured backend supports.
	Capabilities() Capabilities

	Close() error
}

// Capabilities are per-backend feature flags the contract cannot assume
// uniformly across brokers.
type Capabilities struct {
	// IdempotentOrders is set when the backend deduplicates submissions by
	// client order id.
	IdempotentOrders bool

	// FractionalOrders is set when the backend accepts non-integer
	// quantities for fractionable assets.
	FractionalOrders bool
}
