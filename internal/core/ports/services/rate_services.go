package services

import (
	"context"

	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
	"github.com/ymalhaj/cashbox_ledger_app/internal/dto"
)

// RateSvcFacade provides rate resolution and rate store management.
type RateSvcFacade interface {
	// Resolve returns a rate for (from, to) with provenance, following the
	// fixed resolution order: identity, direct, inverse, cross through the
	// base currency, static default.
	Resolve(ctx context.Context, from, to domain.CurrencyCode) (*domain.RateResolution, error)

	// CreateRate records a rate with the given source, superseding the
	// current rate for its pair.
	CreateRate(ctx context.Context, req dto.CreateRateRequest, source domain.RateSource, actorID string) (*domain.RateRecord, error)

	// ApplyAutoUpdate records a batch of rates pushed by the external
	// scheduled updater, each with source auto_update. Returns the records
	// created.
	ApplyAutoUpdate(ctx context.Context, req dto.AutoUpdateRatesRequest, actorID string) ([]domain.RateRecord, error)

	// SeedDefaultRates inserts the static fallback rates for pairs that have
	// no stored rate yet, with source system_default. Idempotent.
	SeedDefaultRates(ctx context.Context, actorID string) error

	// GetLatestRate retrieves the stored current rate for an exact pair.
	GetLatestRate(ctx context.Context, from, to domain.CurrencyCode) (*domain.RateRecord, error)

	// ListLatestRates retrieves the current rate of every recorded pair.
	ListLatestRates(ctx context.Context) ([]domain.RateRecord, error)

	// ListRateHistory retrieves the append-only rate history for a pair,
	// most recent first.
	ListRateHistory(ctx context.Context, from, to domain.CurrencyCode, limit int) ([]domain.RateRecord, error)
}
