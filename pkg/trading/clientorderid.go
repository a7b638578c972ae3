package trading

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// ClientOrderID is a caller-supplied idempotency token for order submission.
// A backend reporting Capabilities.IdempotentOrders treats a resubmission
// carrying the same token as a duplicate of the first order rather than a
// second order.
type ClientOrderID string

const clientOrderIDMaxLen = 48

func (id ClientOrderID) Validate() error {
	if len(id) > clientOrderIDMaxLen {
		return &ValidationError{Field: "clientOrderId", Reason: "longer than 48 characters: " + string(id)}
	}
	return nil
}

// ClientOrderIDGenerate returns a fresh random token.
func ClientOrderIDGenerate() ClientOrderID {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(errors.New("fail get random for generate client order id: " + err.Error()))
	}
	return ClientOrderID(hex.EncodeToString(b))
}
