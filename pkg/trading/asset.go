package trading

import (
	"bytes"
	"errors"
	"strconv"
)

// Asset describes one tradable instrument. It is a snapshot: once returned
// from a lookup it never updates, and Symbol carries the backend's canonical
// form.
type Asset struct {
	Symbol       string
	Exchange     string
	Class        AssetClass
	Status       AssetStatus
	Tradable     bool
	Fractionable bool
}

type AssetClass uint8

const (
	AssetClassEquity AssetClass = iota
	AssetClassCrypto

	assetClassEquityStr = "equity"
	assetClassCryptoStr = "crypto"
)

var (
	assetClassEquityByte = []byte(`"equity"`)
	assetClassCryptoByte = []byte(`"crypto"`)
)

func (ac AssetClass) String() string {
	switch ac {
	case AssetClassEquity:
		return assetClassEquityStr
	case AssetClassCrypto:
		return assetClassCryptoStr
	}
	panic("invalid asset class string conversion" + strconv.Itoa(int(ac)))
}

func (ac AssetClass) MarshalJSON() ([]byte, error) {
	switch ac {
	case AssetClassEquity:
		return assetClassEquityByte, nil
	case AssetClassCrypto:
		return assetClassCryptoByte, nil
	}
	return nil, errors.New("invalid asset class json conversion: " + strconv.Itoa(int(ac)))
}

func (ac *AssetClass) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, assetClassEquityByte) {
		*ac = AssetClassEquity
		return nil
	}

	if bytes.Equal(data, assetClassCryptoByte) {
		*ac = AssetClassCrypto
		return nil
	}

	return errors.New("unsupported asset class: " + string(data))
}

func AssetClassStrToType(value string) (AssetClass, error) {
	switch value {
	case assetClassEquityStr:
		return AssetClassEquity, nil
	case assetClassCryptoStr:
		return AssetClassCrypto, nil
	}
	return 0, errors.New("unsupported asset class: " + value)
}

type AssetStatus uint8

const (
	AssetStatusActive AssetStatus = iota
	AssetStatusInactive

	assetStatusActiveStr   = "active"
	assetStatusInactiveStr = "inactive"
)

var (
	assetStatusActiveByte   = []byte(`"active"`)
	assetStatusInactiveByte = []byte(`"inactive"`)
)

func (as AssetStatus) String() string {
	switch as {
	case AssetStatusActive:
		return assetStatusActiveStr
	case AssetStatusInactive:
		return assetStatusInactiveStr
	}
	panic("invalid asset status string conversion" + strconv.Itoa(int(as)))
}

func (as AssetStatus) MarshalJSON() ([]byte, error) {
	switch as {
	case AssetStatusActive:
		return assetStatusActiveByte, nil
	case AssetStatusInactive:
		return assetStatusInactiveByte, nil
	}
	return nil, errors.New("invalid asset status json conversion: " + strconv.Itoa(int(as)))
}

func (as *AssetStatus) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, assetStatusActiveByte) {
		*as = AssetStatusActive
		return nil
	}

	if bytes.Equal(data, assetStatusInactiveByte) {
		*as = AssetStatusInactive
		return nil
	}

	return errors.New("unsupported asset status: " + string(data))
}

func AssetStatusStrToType(value string) (AssetStatus, error) {
	switch value {
	case assetStatusActiveStr:
		return AssetStatusActive, nil
	case assetStatusInactiveStr:
		return AssetStatusInactive, nil
	}
	return 0, errors.New("unsupported asset status: " + value)
}
