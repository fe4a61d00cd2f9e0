package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementDirection indicates whether a movement flows into or out of the cashbox.
type MovementDirection string

const (
	In  MovementDirection = "IN"
	Out MovementDirection = "OUT"
)

// Reference types linking a movement back to the operation that produced it.
const (
	ReferenceTypeConversion = "currency_conversion"
)

// Movement is a single immutable, signed, single-currency ledger entry.
// Amount is always the non-negative magnitude; the sign lives in Direction.
// Corrections are modeled as new offsetting movements, never updates.
type Movement struct {
	MovementID   string            `json:"movementID"`
	MovementDate time.Time         `json:"movementDate"`
	Direction    MovementDirection `json:"direction"`
	Category     string            `json:"category"`
	CurrencyCode CurrencyCode      `json:"currencyCode"`
	Amount       decimal.Decimal   `json:"amount"`
	Description  string            `json:"description"`

	// Set when the movement is one leg of a conversion: the counterpart
	// currency and amount, and a link to the paired movement.
	RelatedCurrency *CurrencyCode    `json:"relatedCurrency,omitempty"`
	RelatedAmount   *decimal.Decimal `json:"relatedAmount,omitempty"`
	ReferenceType   *string          `json:"referenceType,omitempty"`
	ReferenceID     *string          `json:"referenceID,omitempty"`

	AuditFields
}

// SignedAmount returns the movement's contribution to its currency balance.
func (m Movement) SignedAmount() decimal.Decimal {
	if m.Direction == Out {
		return m.Amount.Neg()
	}
	return m.Amount
}
