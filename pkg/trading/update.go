package trading

import (
	"time"

	"github.com/shopspring/decimal"
)

// Update is one inbound market-data event for a subscribed symbol. Which
// fields are populated depends on Kind; the engine delivers updates in the
// order the backend produced them and never coalesces.
type Update struct {
	Kind   UpdateKind
	Symbol string

	// trade fields
	Price decimal.Decimal
	Size  decimal.Decimal

	// quote fields
	BidPrice decimal.Decimal
	BidSize  decimal.Decimal
	AskPrice decimal.Decimal
	AskSize  decimal.Decimal

	// bar fields
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal

	Timestamp time.Time
}
