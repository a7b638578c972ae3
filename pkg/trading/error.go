package trading

// The error taxonomy every backend adapter maps its provider responses onto.
// Every public operation returns a success value or exactly one error of
// these kinds; nothing is swallowed, and only the subscription engine ever
// retries (TransportError, within its backoff budget).

// ConfigError reports malformed or incomplete configuration. Detected at
// construction and fatal to that construction attempt.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Field + ": " + e.Reason
}

// ValidationError reports caller input that violates the data model.
// Raised before any network call; retrying without fixing the input
// reproduces the same error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + e.Field + ": " + e.Reason
}

// NotFoundError reports a lookup target unknown to the backend. Terminal.
type NotFoundError struct {
	Symbol string
}

func (e *NotFoundError) Error() string {
	return "symbol not found: " + e.Symbol
}

// TransportError reports a connectivity, timeout or protocol-level I/O
// failure. The subscription engine retries these with backoff; order and
// asset calls surface them untouched because a retry could resubmit an
// order that already reached the broker.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "transport failure: " + e.Op
	}
	return "transport failure: " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BackendError reports a request the broker accepted for processing and then
// rejected. Kind lets callers decide whether a later retry can succeed.
type BackendError struct {
	Kind    BackendKind
	Code    string
	Message string
}

func (e *BackendError) Error() string {
	if e.Code != "" {
		return "backend rejected request (" + e.Kind.String() + ") [" + e.Code + "]: " + e.Message
	}
	return "backend rejected request (" + e.Kind.String() + "): " + e.Message
}

// Retryable reports whether retrying the same request later can succeed.
func (e *BackendError) Retryable() bool {
	return e.Kind == BackendKindMarketClosed
}

type BackendKind uint8

const (
	BackendKindUnknown BackendKind = iota
	BackendKindInsufficientFunds
	BackendKindMarketClosed
	BackendKindUnknownSymbol
	BackendKindNotTradable
	BackendKindDuplicateOrder

	backendKindUnknownStr           = "unknown"
	backendKindInsufficientFundsStr = "insufficientFunds"
	backendKindMarketClosedStr      = "marketClosed"
	backendKindUnknownSymbolStr     = "unknownSymbol"
	backendKindNotTradableStr       = "notTradable"
	backendKindDuplicateOrderStr    = "duplicateOrder"
)

func (k BackendKind) String() string {
	switch k {
	case BackendKindInsufficientFunds:
		return backendKindInsufficientFundsStr
	case BackendKindMarketClosed:
		return backendKindMarketClosedStr
	case BackendKindUnknownSymbol:
		return backendKindUnknownSymbolStr
	case BackendKindNotTradable:
		return backendKindNotTradableStr
	case BackendKindDuplicateOrder:
		return backendKindDuplicateOrderStr
	}
	return backendKindUnknownStr
}
