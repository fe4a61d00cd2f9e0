package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
)

// MovementReader defines read operations over the movement ledger.
// Balances are read-time aggregates over the full movement history; no
// stored balance column is ever trusted as ground truth.
type MovementReader interface {
	// SumBalance computes balance(currency) = sum of IN magnitudes minus sum
	// of OUT magnitudes over all movements of that currency.
	SumBalance(ctx context.Context, currency domain.CurrencyCode) (decimal.Decimal, error)

	// SumAllBalances computes the balance of every supported currency.
	SumAllBalances(ctx context.Context) (map[domain.CurrencyCode]decimal.Decimal, error)

	// ListMovements retrieves a token-paginated list of movements, newest
	// first, optionally filtered to one currency. Returns the movements and
	// a token for the next page.
	ListMovements(ctx context.Context, currency *domain.CurrencyCode, limit int, nextToken *string) ([]domain.Movement, *string, error)
}

// MovementWriter defines write operations over the movement ledger.
type MovementWriter interface {
	// SaveMovement appends a single movement row. Movements are immutable;
	// there is deliberately no update or delete operation.
	SaveMovement(ctx context.Context, movement domain.Movement) error
}

// MovementRepositoryFacade combines all movement ledger operations.
type MovementRepositoryFacade interface {
	MovementReader
	MovementWriter
}
