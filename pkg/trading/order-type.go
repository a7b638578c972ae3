package trading

import (
	"bytes"
	"errors"
	"strconv"
)

type OrderType uint8

const (
	OrderTypeMarket OrderType = iota
	OrderTypeLimit
	OrderTypeStop
	OrderTypeStopLimit

	orderTypeMarketStr    = "market"
	orderTypeLimitStr     = "limit"
	orderTypeStopStr      = "stop"
	orderTypeStopLimitStr = "stopLimit"
)

var (
	orderTypeMarketByte    = []byte(`"market"`)
	orderTypeLimitByte     = []byte(`"limit"`)
	orderTypeStopByte      = []byte(`"stop"`)
	orderTypeStopLimitByte = []byte(`"stopLimit"`)
)

// RequiresLimitPrice reports whether an order of this type must carry a
// limit price.
func (ot OrderType) RequiresLimitPrice() bool {
	return ot == OrderTypeLimit || ot == OrderTypeStopLimit
}

// RequiresStopPrice reports whether an order of this type must carry a
// stop price.
func (ot OrderType) RequiresStopPrice() bool {
	return ot == OrderTypeStop || ot == OrderTypeStopLimit
}

func (ot OrderType) String() string {
	switch ot {
	case OrderTypeMarket:
		return orderTypeMarketStr
	case OrderTypeLimit:
		return orderTypeLimitStr
	case OrderTypeStop:
		return orderTypeStopStr
	case OrderTypeStopLimit:
		return orderTypeStopLimitStr
	}
	panic("invalid order type string conversion" + strconv.Itoa(int(ot)))
}

func (ot OrderType) MarshalJSON() ([]byte, error) {
	switch ot {
	case OrderTypeMarket:
		return orderTypeMarketByte, nil
	case OrderTypeLimit:
		return orderTypeLimitByte, nil
	case OrderTypeStop:
		return orderTypeStopByte, nil
	case OrderTypeStopLimit:
		return orderTypeStopLimitByte, nil
	}
	return nil, errors.New("invalid order type json conversion: " + strconv.Itoa(int(ot)))
}

func (ot *OrderType) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, orderTypeMarketByte) {
		*ot = OrderTypeMarket
		return nil
	}

	if bytes.Equal(data, orderTypeLimitByte) {
		*ot = OrderTypeLimit
		return nil
	}

	if bytes.Equal(data, orderTypeStopByte) {
		*ot = OrderTypeStop
		return nil
	}

	if bytes.Equal(data, orderTypeStopLimitByte) {
		*ot = OrderTypeStopLimit
		return nil
	}

	return errors.New("unsupported order type: " + string(data))
}

func OrderTypeStrToType(value string) (OrderType, error) {
	switch value {
	case orderTypeMarketStr:
		return OrderTypeMarket, nil
	case orderTypeLimitStr:
		return OrderTypeLimit, nil
	case orderTypeStopStr:
		return OrderTypeStop, nil
	case orderTypeStopLimitStr:
		return OrderTypeStopLimit, nil
	}
	return 0, errors.New("unsupported order type: " + value)
}
