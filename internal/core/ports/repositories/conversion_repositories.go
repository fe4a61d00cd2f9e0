package repositories

import (
	"context"
	"time"

	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
)

// ConversionWriter persists the paired debit/credit movements and the audit
// record of a conversion.
type ConversionWriter interface {
	// SaveConversion writes the debit movement, the credit movement and the
	// conversion record inside a single database transaction. It locks the
	// affected currency rows, recomputes the source balance inside the
	// transaction and re-checks funds before writing, so two concurrent
	// conversions cannot both pass the balance check against a stale sum.
	// On any failure nothing is committed.
	SaveConversion(ctx context.Context, debit, credit domain.Movement, record domain.ConversionRecord) error
}

// ConversionReader defines the read-only audit queries.
type ConversionReader interface {
	// ListConversions retrieves conversion records, most recent first.
	ListConversions(ctx context.Context, limit int) ([]domain.ConversionRecord, error)

	// SummarizeConversions aggregates conversions converted at or after
	// since, grouped by directional pair.
	SummarizeConversions(ctx context.Context, since time.Time) ([]domain.ConversionPairSummary, error)
}

// ConversionRepositoryFacade combines conversion write and audit operations.
type ConversionRepositoryFacade interface {
	ConversionWriter
	ConversionReader
}
