package alpaca

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/danmandel/trading-client/pkg/trading"
)

// Everything in this file mirrors the Alpaca v2 wire format. Conversions to
// and from the uniform model live next to the structs they belong to.

type orderRequest struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"time_in_force"`
	LimitPrice    string `json:"limit_price,omitempty"`
	StopPrice     string `json:"stop_price,omitempty"`
	ClientOrderID string `json:"client_order_id,omitempty"`
}

func newOrderRequest(order trading.Order) orderRequest {
	req := orderRequest{
		Symbol:        order.Symbol,
		Qty:           order.Quantity.String(),
		Side:          sideToWire(order.Side),
		Type:          typeToWire(order.Type),
		TimeInForce:   tifToWire(order.TimeInForce),
		ClientOrderID: string(order.ClientOrderID),
	}
	if order.LimitPrice != nil {
		req.LimitPrice = order.LimitPrice.String()
	}
	if order.StopPrice != nil {
		req.StopPrice = order.StopPrice.String()
	}
	return req
}

type orderResponse struct {
	ID            string `json:"id"`
	ClientOrderID string `json:"client_order_id"`
	Symbol        string `json:"symbol"`
	Status        string `json:"status"`
	FilledQty     string `json:"filled_qty"`
	SubmittedAt   string `json:"submitted_at"`
}

func (r orderResponse) toAck() (*trading.OrderAck, error) {
	status, ok := statusFromWire[r.Status]
	if !ok {
		return nil, errors.New("unexpected order status " + r.Status)
	}

	filled := decimal.Zero
	if r.FilledQty != "" {
		parsed, err := decimal.NewFromString(r.FilledQty)
		if err != nil {
			return nil, errors.WithMessage(err, "parse filled_qty")
		}
		filled = parsed
	}

	submitted, err := time.Parse(time.RFC3339Nano, r.SubmittedAt)
	if err != nil {
		return nil, errors.WithMessage(err, "parse submitted_at")
	}

	return &trading.OrderAck{
		OrderID:        r.ID,
		ClientOrderID:  trading.ClientOrderID(r.ClientOrderID),
		Symbol:         r.Symbol,
		Status:         status,
		FilledQuantity: filled,
		SubmittedAt:    submitted,
	}, nil
}

type assetResponse struct {
	Symbol       string `json:"symbol"`
	Exchange     string `json:"exchange"`
	Class        string `json:"class"`
	Status       string `json:"status"`
	Tradable     bool   `json:"tradable"`
	Fractionable bool   `json:"fractionable"`
}

func (r assetResponse) toAsset() *trading.Asset {
	class := trading.AssetClassEquity
	if r.Class == "crypto" {
		class = trading.AssetClassCrypto
	}
	status := trading.AssetStatusInactive
	if r.Status == "active" {
		status = trading.AssetStatusActive
	}
	return &trading.Asset{
		Symbol:       r.Symbol,
		Exchange:     r.Exchange,
		Class:        class,
		Status:       status,
		Tradable:     r.Tradable,
		Fractionable: r.Fractionable,
	}
}

var statusFromWire = map[string]trading.OrderStatus{
	"accepted":         trading.OrderStatusAccepted,
	"pending_new":      trading.OrderStatusAccepted,
	"new":              trading.OrderStatusNew,
	"partially_filled": trading.OrderStatusPartiallyFilled,
	"filled":           trading.OrderStatusFilled,
	"canceled":         trading.OrderStatusCanceled,
	"rejected":         trading.OrderStatusRejected,
	"expired":          trading.OrderStatusExpired,
}

func sideToWire(side trading.OrderSide) string {
	if side == trading.OrderSideSell {
		return "sell"
	}
	return "buy"
}

func typeToWire(orderType trading.OrderType) string {
	switch orderType {
	case trading.OrderTypeLimit:
		return "limit"
	case trading.OrderTypeStop:
		return "stop"
	case trading.OrderTypeStopLimit:
		return "stop_limit"
	}
	return "market"
}

func tifToWire(tif trading.OrderTimeInForce) string {
	switch tif {
	case trading.OrderTimeInForceIOC:
		return "ioc"
	case trading.OrderTimeInForceFOK:
		return "fok"
	case trading.OrderTimeInForceDay:
		return "day"
	}
	return "gtc"
}
