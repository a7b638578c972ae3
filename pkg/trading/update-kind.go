package trading

import (
	"bytes"
	"errors"
	"strconv"
)

type UpdateKind uint8

const (
	UpdateKindTrade UpdateKind = iota
	UpdateKindQuote
	UpdateKindBar

	updateKindTradeStr = "trade"
	updateKindQuoteStr = "quote"
	updateKindBarStr   = "bar"
)

var (
	updateKindTradeByte = []byte(`"trade"`)
	updateKindQuoteByte = []byte(`"quote"`)
	updateKindBarByte   = []byte(`"bar"`)
)

func (uk UpdateKind) String() string {
	switch uk {
	case UpdateKindTrade:
		return updateKindTradeStr
	case UpdateKindQuote:
		return updateKindQuoteStr
	case UpdateKindBar:
		return updateKindBarStr
	}
	panic("invalid update kind string conversion" + strconv.Itoa(int(uk)))
}

func (uk UpdateKind) MarshalJSON() ([]byte, error) {
	switch uk {
	case UpdateKindTrade:
		return updateKindTradeByte, nil
	case UpdateKindQuote:
		return updateKindQuoteByte, nil
	case UpdateKindBar:
		return updateKindBarByte, nil
	}
	return nil, errors.New("invalid update kind json conversion: " + strconv.Itoa(int(uk)))
}

func (uk *UpdateKind) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, updateKindTradeByte) {
		*uk = UpdateKindTrade
		return nil
	}

	if bytes.Equal(data, updateKindQuoteByte) {
		*uk = UpdateKindQuote
		return nil
	}

	if bytes.Equal(data, updateKindBarByte) {
		*uk = UpdateKindBar
		return nil
	}

	return errors.New("unsupported update kind: " + string(data))
}
