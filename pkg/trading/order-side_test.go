package trading_test

import (
	"encoding/json"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"gotest.tools/assert"

	"github.com/danmandel/trading-client/pkg/trading"
)

type testOrderDataSide struct {
	Side trading.OrderSide `json:"side"`
}

const (
	testOrderDataSideBuy  = `{"side":"buy"}`
	testOrderDataSideSell = `{"side":"sell"}`
)

func TestOrderSide_MarshalJSON(t *testing.T) {
	val, err := json.Marshal(&testOrderDataSide{trading.OrderSideBuy})
	assert.NilError(t, err)
	assert.Equal(t, string(val), testOrderDataSideBuy, "std json buy")

	val, err = jsoniter.Marshal(&testOrderDataSide{trading.OrderSideBuy})
	assert.NilError(t, err)
	assert.Equal(t, string(val), testOrderDataSideBuy, "jsoniter json buy")

	val, err = json.Marshal(&testOrderDataSide{trading.OrderSideSell})
	assert.NilError(t, err)
	assert.Equal(t, string(val), testOrderDataSideSell, "std json sell")

	_, err = json.Marshal(&testOrderDataSide{trading.OrderSide(8)})
	assert.ErrorContains(t, err, `invalid order side json conversion: 8`)
}

func TestOrderSide_UnmarshalJSON(t *testing.T) {
	var obj testOrderDataSide

	err := json.Unmarshal([]byte(testOrderDataSideSell), &obj)
	assert.NilError(t, err)
	assert.Equal(t, obj.Side, trading.OrderSideSell, "std json sell")

	err = jsoniter.Unmarshal([]byte(testOrderDataSideBuy), &obj)
	assert.NilError(t, err)
	assert.Equal(t, obj.Side, trading.OrderSideBuy, "jsoniter json buy")

	err = json.Unmarshal([]byte(`{"side":"newSide"}`), &obj)
	assert.Error(t, err, `unsupported order side: "newSide"`)
}

func TestOrderSide_String(t *testing.T) {
	assert.Equal(t, trading.OrderSideBuy.String(), "buy")
	assert.Equal(t, trading.OrderSideSell.String(), "sell")

	side, err := trading.OrderSideStrToType("sell")
	assert.NilError(t, err)
	assert.Equal(t, side, trading.OrderSideSell)

	_, err = trading.OrderSideStrToType("hold")
	assert.Error(t, err, "unsupported order side: hold")
}
