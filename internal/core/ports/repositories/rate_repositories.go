package repositories

import (
	"context"

	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
)

// RateReader defines read operations over the rate store.
type RateReader interface {
	// FindLatestRate retrieves the most recently updated rate for the exact
	// directional pair (from, to). Returns apperrors.ErrNotFound if the pair
	// has never been recorded.
	FindLatestRate(ctx context.Context, from, to domain.CurrencyCode) (*domain.RateRecord, error)

	// ListLatestRates retrieves the current rate of every recorded pair.
	ListLatestRates(ctx context.Context) ([]domain.RateRecord, error)

	// ListRateHistory retrieves the append-only history for a pair, most
	// recent first, capped at limit.
	ListRateHistory(ctx context.Context, from, to domain.CurrencyCode, limit int) ([]domain.RateRecord, error)
}

// RateWriter defines write operations over the rate store.
type RateWriter interface {
	// SaveRate upserts the latest rate for the record's pair and appends the
	// record to the immutable history log, in one transaction.
	SaveRate(ctx context.Context, rate domain.RateRecord) error
}

// RateRepositoryFacade combines all rate store operations.
type RateRepositoryFacade interface {
	RateReader
	RateWriter
}
