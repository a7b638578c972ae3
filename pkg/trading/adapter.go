package trading

import "context"

// Adapter translates the unified contract into one broker's wire protocol.
// An adapter owns its connection and session resources exclusively and maps
// every provider error response onto the trading error taxonomy. Adapters
// never retry on their own: retry policy lives with the caller for
// order/asset calls and with the subscription engine for streams.
type Adapter interface {
	// SubmitOrder sends an already-validated order to the broker.
	SubmitOrder(ctx context.Context, order Order) (*OrderAck, error)

	// LookupAsset fetches instrument metadata for one symbol.
	LookupAsset(ctx context.Context, symbol string) (*Asset, error)

	// OpenStream dials a fresh market-data connection and completes the
	// broker handshake. Reconnection is the subscription engine's concern:
	// a failed stream is closed and a new one opened.
	OpenStream(ctx context.Context) (Stream, error)

	Capabilities() Capabilities

	Close() error
}

// Stream is one live market-data connection.
type Stream interface {
	// SendSubscriptions sends the full subscribed-symbol set in one batch.
	// Resending an already-subscribed symbol must be tolerated as a no-op.
	SendSubscriptions(ctx context.Context, symbols []string) error

	// NextMessage blocks until the next market-data update arrives, skipping
	// any control frames. A nil Update is never returned with a nil error.
	NextMessage(ctx context.Context) (*Update, error)

	// Close tears the connection down and unblocks a pending NextMessage.
	Close() error
}
