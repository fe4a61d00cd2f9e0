package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
)

// CreateRateRequest defines the payload for recording an exchange rate.
type CreateRateRequest struct {
	FromCurrencyCode string          `json:"fromCurrencyCode" binding:"required,len=3,alpha"`
	ToCurrencyCode   string          `json:"toCurrencyCode" binding:"required,len=3,alpha"`
	Rate             decimal.Decimal `json:"rate" binding:"required"`
	DateEffective    time.Time       `json:"dateEffective" binding:"required"`
}

// AutoUpdateRatesRequest defines a batch of rates pushed by the external
// scheduled updater. Each entry is recorded with source auto_update.
type AutoUpdateRatesRequest struct {
	Rates []CreateRateRequest `json:"rates" binding:"required,min=1,dive"`
}

// RateResponse is the API representation of a stored rate record.
type RateResponse struct {
	RateID           string          `json:"rateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	Source           string          `json:"source"`
	DateEffective    time.Time       `json:"dateEffective"`
	LastUpdatedAt    time.Time       `json:"lastUpdatedAt"`
}

// RateResolutionResponse is the API representation of a resolved rate,
// including its provenance.
type RateResolutionResponse struct {
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	Status           string          `json:"status"`
	LastUpdatedAt    time.Time       `json:"lastUpdatedAt"`
}

// ToRateResponse maps a domain rate record to its API representation.
func ToRateResponse(r *domain.RateRecord) RateResponse {
	return RateResponse{
		RateID:           r.RateID,
		FromCurrencyCode: string(r.FromCurrencyCode),
		ToCurrencyCode:   string(r.ToCurrencyCode),
		Rate:             r.Rate,
		Source:           string(r.Source),
		DateEffective:    r.DateEffective,
		LastUpdatedAt:    r.LastUpdatedAt,
	}
}

// ToRateResponses maps a slice of domain rate records.
func ToRateResponses(rates []domain.RateRecord) []RateResponse {
	out := make([]RateResponse, len(rates))
	for i := range rates {
		out[i] = ToRateResponse(&rates[i])
	}
	return out
}

// ToRateResolutionResponse maps a domain rate resolution to its API representation.
func ToRateResolutionResponse(r *domain.RateResolution) RateResolutionResponse {
	return RateResolutionResponse{
		FromCurrencyCode: string(r.FromCurrencyCode),
		ToCurrencyCode:   string(r.ToCurrencyCode),
		Rate:             r.Rate,
		Status:           string(r.Status),
		LastUpdatedAt:    r.LastUpdatedAt,
	}
}
