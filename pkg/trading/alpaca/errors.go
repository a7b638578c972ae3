package alpaca

import (
	"strconv"
	"strings"

	"github.com/danmandel/trading-client/pkg/trading"
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Alpaca rejection codes that map cleanly onto a kind. Anything else falls
// back to message matching, and then to the unknown kind.
var kindByCode = map[int]trading.BackendKind{
	40310000: trading.BackendKindInsufficientFunds,
	40410000: trading.BackendKindUnknownSymbol,
}

func parseAPIError(status int, body []byte) error {
	var wire apiError
	if err := json.Unmarshal(body, &wire); err != nil || wire.Message == "" {
		return &trading.BackendError{
			Kind:    trading.BackendKindUnknown,
			Code:    strconv.Itoa(status),
			Message: "http status " + strconv.Itoa(status) + ": " + string(body),
		}
	}

	kind, ok := kindByCode[wire.Code]
	if !ok {
		kind = kindFromMessage(wire.Message)
	}
	return &trading.BackendError{
		Kind:    kind,
		Code:    strconv.Itoa(wire.Code),
		Message: wire.Message,
	}
}

func kindFromMessage(message string) trading.BackendKind {
	lowered := strings.ToLower(message)
	switch {
	case strings.Contains(lowered, "insufficient"):
		return trading.BackendKindInsufficientFunds
	case strings.Contains(lowered, "market is closed"), strings.Contains(lowered, "not open"):
		return trading.BackendKindMarketClosed
	case strings.Contains(lowered, "could not find asset"), strings.Contains(lowered, "unknown symbol"):
		return trading.BackendKindUnknownSymbol
	case strings.Contains(lowered, "not tradable"), strings.Contains(lowered, "not active"):
		return trading.BackendKindNotTradable
	case strings.Contains(lowered, "client_order_id must be unique"), strings.Contains(lowered, "duplicate"):
		return trading.BackendKindDuplicateOrder
	}
	return trading.BackendKindUnknown
}
