package trading_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gotest.tools/assert"

	"github.com/danmandel/trading-client/pkg/trading"
)

func decimalPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func validOrder() trading.Order {
	return trading.Order{
		Symbol:      "AAPL",
		Side:        trading.OrderSideBuy,
		Quantity:    decimal.NewFromInt(10),
		Type:        trading.OrderTypeMarket,
		TimeInForce: trading.OrderTimeInForceGTC,
	}
}

func TestOrder_Validate(t *testing.T) {

	t.Run("market ok", func(t *testing.T) {
		order := validOrder()
		assert.NilError(t, order.Validate())
	})

	t.Run("limit ok", func(t *testing.T) {
		order := validOrder()
		order.Type = trading.OrderTypeLimit
		order.LimitPrice = decimalPtr("187.20")
		assert.NilError(t, order.Validate())
	})

	t.Run("stop limit ok", func(t *testing.T) {
		order := validOrder()
		order.Type = trading.OrderTypeStopLimit
		order.LimitPrice = decimalPtr("187.20")
		order.StopPrice = decimalPtr("185.00")
		assert.NilError(t, order.Validate())
	})

	t.Run("empty symbol", func(t *testing.T) {
		order := validOrder()
		order.Symbol = ""
		assert.ErrorContains(t, order.Validate(), "symbol")
	})

	t.Run("zero quantity", func(t *testing.T) {
		order := validOrder()
		order.Quantity = decimal.Zero
		assert.ErrorContains(t, order.Validate(), "quantity")
	})

	t.Run("negative quantity", func(t *testing.T) {
		order := validOrder()
		order.Quantity = decimal.NewFromInt(-5)
		assert.ErrorContains(t, order.Validate(), "quantity")
	})

	t.Run("limit without price", func(t *testing.T) {
		order := validOrder()
		order.Type = trading.OrderTypeLimit
		assert.ErrorContains(t, order.Validate(), "limitPrice")
	})

	t.Run("market with limit price", func(t *testing.T) {
		order := validOrder()
		order.LimitPrice = decimalPtr("187.20")
		assert.ErrorContains(t, order.Validate(), "limitPrice")
	})

	t.Run("stop without stop price", func(t *testing.T) {
		order := validOrder()
		order.Type = trading.OrderTypeStop
		assert.ErrorContains(t, order.Validate(), "stopPrice")
	})

	t.Run("stop limit missing stop price", func(t *testing.T) {
		order := validOrder()
		order.Type = trading.OrderTypeStopLimit
		order.LimitPrice = decimalPtr("187.20")
		assert.ErrorContains(t, order.Validate(), "stopPrice")
	})

	t.Run("negative limit price", func(t *testing.T) {
		order := validOrder()
		order.Type = trading.OrderTypeLimit
		order.LimitPrice = decimalPtr("-1")
		assert.ErrorContains(t, order.Validate(), "limitPrice")
	})

	t.Run("oversized client order id", func(t *testing.T) {
		order := validOrder()
		order.ClientOrderID = trading.ClientOrderID(strings.Repeat("x", 49))
		assert.ErrorContains(t, order.Validate(), "clientOrderId")
	})
}

func TestClientOrderIDGenerate(t *testing.T) {
	seen := make(map[trading.ClientOrderID]bool)
	for i := 0; i < 100; i++ {
		id := trading.ClientOrderIDGenerate()
		assert.NilError(t, id.Validate())
		assert.Equal(t, len(id), 32)
		assert.Assert(t, !seen[id], "generated ids must not repeat")
		seen[id] = true
	}
}
