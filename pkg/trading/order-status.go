package trading

import (
	"bytes"
	"errors"
	"strconv"
)

type OrderStatus uint8

const (
	OrderStatusAccepted OrderStatus = iota
	OrderStatusNew
	OrderStatusPartiallyFilled
	OrderStatusFilled
	OrderStatusCanceled
	OrderStatusRejected
	OrderStatusExpired

	orderStatusAcceptedStr        = "accepted"
	orderStatusNewStr             = "new"
	orderStatusPartiallyFilledStr = "partiallyFilled"
	orderStatusFilledStr          = "filled"
	orderStatusCanceledStr        = "canceled"
	orderStatusRejectedStr        = "rejected"
	orderStatusExpiredStr         = "expired"
)

var (
	orderStatusAcceptedBytes        = []byte(`"accepted"`)
	orderStatusNewBytes             = []byte(`"new"`)
	orderStatusPartiallyFilledBytes = []byte(`"partiallyFilled"`)
	orderStatusFilledBytes          = []byte(`"filled"`)
	orderStatusCanceledBytes        = []byte(`"canceled"`)
	orderStatusRejectedBytes        = []byte(`"rejected"`)
	orderStatusExpiredBytes         = []byte(`"expired"`)
)

func (os OrderStatus) String() string {
	switch os {
	case OrderStatusAccepted:
		return orderStatusAcceptedStr
	case OrderStatusNew:
		return orderStatusNewStr
	case OrderStatusPartiallyFilled:
		return orderStatusPartiallyFilledStr
	case OrderStatusFilled:
		return orderStatusFilledStr
	case OrderStatusCanceled:
		return orderStatusCanceledStr
	case OrderStatusRejected:
		return orderStatusRejectedStr
	case OrderStatusExpired:
		return orderStatusExpiredStr
	}
	panic("invalid order status string conversion" + strconv.Itoa(int(os)))
}

func (os OrderStatus) MarshalJSON() ([]byte, error) {
	switch os {
	case OrderStatusAccepted:
		return orderStatusAcceptedBytes, nil
	case OrderStatusNew:
		return orderStatusNewBytes, nil
	case OrderStatusPartiallyFilled:
		return orderStatusPartiallyFilledBytes, nil
	case OrderStatusFilled:
		return orderStatusFilledBytes, nil
	case OrderStatusCanceled:
		return orderStatusCanceledBytes, nil
	case OrderStatusRejected:
		return orderStatusRejectedBytes, nil
	case OrderStatusExpired:
		return orderStatusExpiredBytes, nil
	}
	return nil, errors.New("invalid order status json conversion: " + strconv.Itoa(int(os)))
}

func (os *OrderStatus) UnmarshalJSON(data []byte) error {
	for status, repr := range orderStatusUnmapping {
		if bytes.Equal(data, repr) {
			*os = status
			return nil
		}
	}
	return errors.New("unsupported order status: " + string(data))
}

var orderStatusUnmapping = map[OrderStatus][]byte{
	OrderStatusAccepted:        orderStatusAcceptedBytes,
	OrderStatusNew:             orderStatusNewBytes,
	OrderStatusPartiallyFilled: orderStatusPartiallyFilledBytes,
	OrderStatusFilled:          orderStatusFilledBytes,
	OrderStatusCanceled:        orderStatusCanceledBytes,
	OrderStatusRejected:        orderStatusRejectedBytes,
	OrderStatusExpired:         orderStatusExpiredBytes,
}

func OrderStatusStrToType(value string) (OrderStatus, error) {
	switch value {
	case orderStatusAcceptedStr:
		return OrderStatusAccepted, nil
	case orderStatusNewStr:
		return OrderStatusNew, nil
	case orderStatusPartiallyFilledStr:
		return OrderStatusPartiallyFilled, nil
	case orderStatusFilledStr:
		return OrderStatusFilled, nil
	case orderStatusCanceledStr:
		return OrderStatusCanceled, nil
	case orderStatusRejectedStr:
		return OrderStatusRejected, nil
	case orderStatusExpiredStr:
		return OrderStatusExpired, nil
	}
	return 0, errors.New("unsupported order status: " + value)
}
