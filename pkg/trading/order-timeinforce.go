package trading

import (
	"bytes"
	"errors"
	"strconv"
)

type OrderTimeInForce uint8

const (
	OrderTimeInForceGTC OrderTimeInForce = iota // good till cancel
	OrderTimeInForceIOC                         // immediate or cancel. may partially fill, remainder expires
	OrderTimeInForceFOK                         // fill or kill. fully filled or expired
	OrderTimeInForceDay                         // expires with the trading day

	orderTimeInForceGTCstr = "GTC"
	orderTimeInForceIOCstr = "IOC"
	orderTimeInForceFOKstr = "FOK"
	orderTimeInForceDayStr = "Day"
)

var (
	orderTimeInForceGTCbytes = []byte(`"GTC"`)
	orderTimeInForceIOCbytes = []byte(`"IOC"`)
	orderTimeInForceFOKbytes = []byte(`"FOK"`)
	orderTimeInForceDayBytes = []byte(`"Day"`)
)

func (tif OrderTimeInForce) String() string {
	switch tif {
	case OrderTimeInForceGTC:
		return orderTimeInForceGTCstr
	case OrderTimeInForceIOC:
		return orderTimeInForceIOCstr
	case OrderTimeInForceFOK:
		return orderTimeInForceFOKstr
	case OrderTimeInForceDay:
		return orderTimeInForceDayStr
	}
	panic("invalid order timeInForce string conversion" + strconv.Itoa(int(tif)))
}

func (tif OrderTimeInForce) MarshalJSON() ([]byte, error) {
	switch tif {
	case OrderTimeInForceGTC:
		return orderTimeInForceGTCbytes, nil
	case OrderTimeInForceIOC:
		return orderTimeInForceIOCbytes, nil
	case OrderTimeInForceFOK:
		return orderTimeInForceFOKbytes, nil
	case OrderTimeInForceDay:
		return orderTimeInForceDayBytes, nil
	}
	return nil, errors.New("invalid order timeInForce json conversion: " + strconv.Itoa(int(tif)))
}

func (tif *OrderTimeInForce) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, orderTimeInForceGTCbytes) {
		*tif = OrderTimeInForceGTC
		return nil
	}

	if bytes.Equal(data, orderTimeInForceIOCbytes) {
		*tif = OrderTimeInForceIOC
		return nil
	}

	if bytes.Equal(data, orderTimeInForceFOKbytes) {
		*tif = OrderTimeInForceFOK
		return nil
	}

	if bytes.Equal(data, orderTimeInForceDayBytes) {
		*tif = OrderTimeInForceDay
		return nil
	}

	return errors.New("unsupported order timeInForce: " + string(data))
}

func OrderTimeInForceStrToType(value string) (OrderTimeInForce, error) {
	switch value {
	case orderTimeInForceGTCstr:
		return OrderTimeInForceGTC, nil
	case orderTimeInForceIOCstr:
		return OrderTimeInForceIOC, nil
	case orderTimeInForceFOKstr:
		return OrderTimeInForceFOK, nil
	case orderTimeInForceDayStr:
		return OrderTimeInForceDay, nil
	}
	return 0, errors.New("unsupported order timeInForce: " + value)
}
