package services

import (
	"context"

	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
	"github.com/ymalhaj/cashbox_ledger_app/internal/dto"
)

// ConversionSvcFacade orchestrates currency conversions and their audit views.
type ConversionSvcFacade interface {
	// Preview computes the conversion read-only: same rate resolution and
	// arithmetic as Convert, no writes.
	Preview(ctx context.Context, req dto.PreviewConversionParams) (*domain.ConversionPreview, error)

	// Convert validates, resolves the rate and atomically writes the paired
	// debit/credit movements plus one audit record.
	Convert(ctx context.Context, req dto.ConvertRequest, actorID string) (*domain.ConversionRecord, error)

	// History returns conversion records, most recent first.
	History(ctx context.Context, limit int) ([]domain.ConversionRecord, error)

	// Summary aggregates conversions per pair within the last windowDays.
	Summary(ctx context.Context, windowDays int) ([]domain.ConversionPairSummary, error)
}
