package alpaca

import (
	"errors"
	"testing"

	"gotest.tools/assert"

	"github.com/danmandel/trading-client/pkg/trading"
)

func TestParseAPIError(t *testing.T) {

	t.Run("known code", func(t *testing.T) {
		err := parseAPIError(403, []byte(`{"code":40310000,"message":"some new wording"}`))
		var backendErr *trading.BackendError
		assert.Assert(t, errors.As(err, &backendErr))
		assert.Equal(t, backendErr.Kind, trading.BackendKindInsufficientFunds)
		assert.Equal(t, backendErr.Code, "40310000")
	})

	t.Run("message fallback", func(t *testing.T) {
		for message, kind := range map[string]trading.BackendKind{
			"insufficient buying power":        trading.BackendKindInsufficientFunds,
			"market is closed":                 trading.BackendKindMarketClosed,
			"could not find asset XYZ":         trading.BackendKindUnknownSymbol,
			"asset AAPL is not tradable":       trading.BackendKindNotTradable,
			"client_order_id must be unique":   trading.BackendKindDuplicateOrder,
			"something else entirely happened": trading.BackendKindUnknown,
		} {
			err := parseAPIError(422, []byte(`{"code":42210000,"message":"`+message+`"}`))
			var backendErr *trading.BackendError
			assert.Assert(t, errors.As(err, &backendErr))
			assert.Equal(t, backendErr.Kind, kind, message)
		}
	})

	t.Run("unparseable body", func(t *testing.T) {
		err := parseAPIError(502, []byte(`<html>bad gateway</html>`))
		var backendErr *trading.BackendError
		assert.Assert(t, errors.As(err, &backendErr))
		assert.Equal(t, backendErr.Kind, trading.BackendKindUnknown)
		assert.Equal(t, backendErr.Code, "502")
	})
}
