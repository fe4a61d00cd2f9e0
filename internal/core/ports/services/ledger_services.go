package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
	"github.com/ymalhaj/cashbox_ledger_app/internal/dto"
)

// LedgerSvcFacade provides movement recording and derived balance reads.
type LedgerSvcFacade interface {
	// RecordMovement appends a single movement. The request amount is
	// signed; the service splits it into direction and magnitude.
	RecordMovement(ctx context.Context, req dto.RecordMovementRequest, actorID string) (*domain.Movement, error)

	// Balance returns the derived balance of one currency.
	Balance(ctx context.Context, currency domain.CurrencyCode) (decimal.Decimal, error)

	// AllBalances returns the derived balance of every supported currency.
	AllBalances(ctx context.Context) (map[domain.CurrencyCode]decimal.Decimal, error)

	// ListMovements returns a token-paginated movement history, newest first.
	ListMovements(ctx context.Context, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error)
}
