package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
)

// ConvertRequest defines the payload for executing a currency conversion.
type ConvertRequest struct {
	FromCurrencyCode string          `json:"fromCurrencyCode" binding:"required,len=3,cashbox_currency"`
	ToCurrencyCode   string          `json:"toCurrencyCode" binding:"required,len=3,cashbox_currency"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	Description      string          `json:"description"`
}

// PreviewConversionParams holds query parameters for a conversion preview.
type PreviewConversionParams struct {
	FromCurrencyCode string          `form:"from" binding:"required,len=3,cashbox_currency"`
	ToCurrencyCode   string          `form:"to" binding:"required,len=3,cashbox_currency"`
	Amount           decimal.Decimal `form:"amount" binding:"required"`
}

// ConversionPreviewResponse is the API representation of a preview.
// ConvertedAmount is rounded to the display precision; the same rounding is
// applied by the execute path so the two always agree.
type ConversionPreviewResponse struct {
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Amount           decimal.Decimal `json:"amount"`
	Rate             decimal.Decimal `json:"rate"`
	RateStatus       string          `json:"rateStatus"`
	ConvertedAmount  decimal.Decimal `json:"convertedAmount"`
	FromBalance      decimal.Decimal `json:"fromBalance"`
	ToBalance        decimal.Decimal `json:"toBalance"`
	FromBalanceAfter decimal.Decimal `json:"fromBalanceAfter"`
	ToBalanceAfter   decimal.Decimal `json:"toBalanceAfter"`
}

// ConversionResponse is the API representation of an executed conversion.
type ConversionResponse struct {
	ConversionID     string          `json:"conversionID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	OriginalAmount   decimal.Decimal `json:"originalAmount"`
	ConvertedAmount  decimal.Decimal `json:"convertedAmount"`
	Rate             decimal.Decimal `json:"rate"`
	RateStatus       string          `json:"rateStatus"`
	DebitMovementID  string          `json:"debitMovementID"`
	CreditMovementID string          `json:"creditMovementID"`
	Description      string          `json:"description"`
	ConvertedAt      time.Time       `json:"convertedAt"`
}

// ConversionSummaryResponse aggregates conversions per pair within a window.
type ConversionSummaryResponse struct {
	WindowDays int                         `json:"windowDays"`
	Pairs      []ConversionPairSummaryItem `json:"pairs"`
}

// ConversionPairSummaryItem is one (from, to) row of the summary.
type ConversionPairSummaryItem struct {
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Count            int64           `json:"count"`
	TotalOriginal    decimal.Decimal `json:"totalOriginal"`
	TotalConverted   decimal.Decimal `json:"totalConverted"`
	AverageRate      decimal.Decimal `json:"averageRate"`
}

// ToConversionResponse maps a domain conversion record to its API representation.
func ToConversionResponse(r *domain.ConversionRecord) ConversionResponse {
	return ConversionResponse{
		ConversionID:     r.ConversionID,
		FromCurrencyCode: string(r.FromCurrencyCode),
		ToCurrencyCode:   string(r.ToCurrencyCode),
		OriginalAmount:   r.OriginalAmount,
		ConvertedAmount:  r.ConvertedAmount,
		Rate:             r.Rate,
		RateStatus:       string(r.RateStatus),
		DebitMovementID:  r.DebitMovementID,
		CreditMovementID: r.CreditMovementID,
		Description:      r.Description,
		ConvertedAt:      r.ConvertedAt,
	}
}

// ToConversionResponses maps a slice of domain conversion records.
func ToConversionResponses(records []domain.ConversionRecord) []ConversionResponse {
	out := make([]ConversionResponse, len(records))
	for i := range records {
		out[i] = ToConversionResponse(&records[i])
	}
	return out
}

// ToConversionPreviewResponse maps a domain preview to its API representation.
func ToConversionPreviewResponse(p *domain.ConversionPreview) ConversionPreviewResponse {
	return ConversionPreviewResponse{
		FromCurrencyCode: string(p.FromCurrencyCode),
		ToCurrencyCode:   string(p.ToCurrencyCode),
		Amount:           p.Amount,
		Rate:             p.Rate,
		RateStatus:       string(p.RateStatus),
		ConvertedAmount:  p.ConvertedAmount,
		FromBalance:      p.FromBalance,
		ToBalance:        p.ToBalance,
		FromBalanceAfter: p.FromBalanceAfter,
		ToBalanceAfter:   p.ToBalanceAfter,
	}
}

// ToConversionSummaryResponse maps pair summaries into the windowed response.
func ToConversionSummaryResponse(windowDays int, pairs []domain.ConversionPairSummary) ConversionSummaryResponse {
	items := make([]ConversionPairSummaryItem, len(pairs))
	for i, p := range pairs {
		items[i] = ConversionPairSummaryItem{
			FromCurrencyCode: string(p.FromCurrencyCode),
			ToCurrencyCode:   string(p.ToCurrencyCode),
			Count:            p.Count,
			TotalOriginal:    p.TotalOriginal,
			TotalConverted:   p.TotalConverted,
			AverageRate:      p.AverageRate,
		}
	}
	return ConversionSummaryResponse{WindowDays: windowDays, Pairs: items}
}
