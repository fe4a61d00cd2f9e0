package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
)

// RecordMovementRequest defines the payload for a manual cash movement.
// Amount is signed: positive flows in, negative flows out.
type RecordMovementRequest struct {
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3,cashbox_currency"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Category     string          `json:"category" binding:"required"`
	Description  string          `json:"description"`
	MovementDate *time.Time      `json:"movementDate"`
}

// ListMovementsParams holds query parameters for listing movements.
type ListMovementsParams struct {
	CurrencyCode *string `form:"currency"`
	Limit        int     `form:"limit"`
	NextToken    *string `form:"nextToken"`
}

// MovementResponse is the API representation of a ledger movement.
type MovementResponse struct {
	MovementID      string           `json:"movementID"`
	MovementDate    time.Time        `json:"movementDate"`
	Direction       string           `json:"direction"`
	Category        string           `json:"category"`
	CurrencyCode    string           `json:"currencyCode"`
	Amount          decimal.Decimal  `json:"amount"`
	Description     string           `json:"description"`
	RelatedCurrency *string          `json:"relatedCurrency,omitempty"`
	RelatedAmount   *decimal.Decimal `json:"relatedAmount,omitempty"`
	ReferenceType   *string          `json:"referenceType,omitempty"`
	ReferenceID     *string          `json:"referenceID,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	CreatedBy       string           `json:"createdBy"`
}

// ListMovementsResponse is a page of movements plus the next-page token.
type ListMovementsResponse struct {
	Movements []MovementResponse `json:"movements"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ToMovementResponse maps a domain movement to its API representation.
func ToMovementResponse(m *domain.Movement) MovementResponse {
	resp := MovementResponse{
		MovementID:    m.MovementID,
		MovementDate:  m.MovementDate,
		Direction:     string(m.Direction),
		Category:      m.Category,
		CurrencyCode:  string(m.CurrencyCode),
		Amount:        m.Amount,
		Description:   m.Description,
		RelatedAmount: m.RelatedAmount,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
	}
	if m.RelatedCurrency != nil {
		rc := string(*m.RelatedCurrency)
		resp.RelatedCurrency = &rc
	}
	return resp
}

// ToMovementResponses maps a slice of domain movements.
func ToMovementResponses(movements []domain.Movement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return out
}
