package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionRecord is the audit row written atomically with the two
// movements of a successful conversion.
type ConversionRecord struct {
	ConversionID     string          `json:"conversionID"`
	FromCurrencyCode CurrencyCode    `json:"fromCurrencyCode"`
	ToCurrencyCode   CurrencyCode    `json:"toCurrencyCode"`
	OriginalAmount   decimal.Decimal `json:"originalAmount"`
	ConvertedAmount  decimal.Decimal `json:"convertedAmount"`
	Rate             decimal.Decimal `json:"rate"`
	RateStatus       RateStatus      `json:"rateStatus"`
	DebitMovementID  string          `json:"debitMovementID"`
	CreditMovementID string          `json:"creditMovementID"`
	Description      string          `json:"description"`
	ConvertedAt      time.Time       `json:"convertedAt"`
	CreatedBy        string          `json:"createdBy"`
}

// ConversionPreview is the read-only dry run of a conversion: the same rate
// and arithmetic as the execute path, plus current and hypothetical
// post-conversion balances.
type ConversionPreview struct {
	FromCurrencyCode CurrencyCode    `json:"fromCurrencyCode"`
	ToCurrencyCode   CurrencyCode    `json:"toCurrencyCode"`
	Amount           decimal.Decimal `json:"amount"`
	Rate             decimal.Decimal `json:"rate"`
	RateStatus       RateStatus      `json:"rateStatus"`
	ConvertedAmount  decimal.Decimal `json:"convertedAmount"`
	FromBalance      decimal.Decimal `json:"fromBalance"`
	ToBalance        decimal.Decimal `json:"toBalance"`
	FromBalanceAfter decimal.Decimal `json:"fromBalanceAfter"`
	ToBalanceAfter   decimal.Decimal `json:"toBalanceAfter"`
}

// ConversionPairSummary aggregates conversions for one directional pair
// within a reporting window.
type ConversionPairSummary struct {
	FromCurrencyCode CurrencyCode    `json:"fromCurrencyCode"`
	ToCurrencyCode   CurrencyCode    `json:"toCurrencyCode"`
	Count            int64           `json:"count"`
	TotalOriginal    decimal.Decimal `json:"totalOriginal"`
	TotalConverted   decimal.Decimal `json:"totalConverted"`
	AverageRate      decimal.Decimal `json:"averageRate"`
}
