package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSource records how a rate entered the store.
type RateSource string

const (
	RateSourceManual        RateSource = "manual"
	RateSourceSystemDefault RateSource = "system_default"
	RateSourceAutoUpdate    RateSource = "auto_update"
)

// RateStatus records the provenance of a resolved rate.
type RateStatus string

const (
	RateStatusIdentity RateStatus = "identity"
	RateStatusDirect   RateStatus = "direct"
	RateStatusInverse  RateStatus = "inverse"
	RateStatusCrossRMB RateStatus = "cross_rmb"
	RateStatusDefault  RateStatus = "default"
)

// RateRecord is the stored exchange rate for a directional currency pair.
// The latest record per pair (by LastUpdatedAt) is the current rate; older
// records are retained in an append-only history table.
// Invariant: Rate > 0, enforced at the store write boundary.
type RateRecord struct {
	RateID           string          `json:"rateID"`
	FromCurrencyCode CurrencyCode    `json:"fromCurrencyCode"`
	ToCurrencyCode   CurrencyCode    `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	Source           RateSource      `json:"source"`
	DateEffective    time.Time       `json:"dateEffective"`
	AuditFields
}

// RateResolution is the result of resolving a rate between two currencies,
// including where the rate came from.
type RateResolution struct {
	FromCurrencyCode CurrencyCode    `json:"fromCurrencyCode"`
	ToCurrencyCode   CurrencyCode    `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	Status           RateStatus      `json:"status"`
	LastUpdatedAt    time.Time       `json:"lastUpdatedAt"`
}
