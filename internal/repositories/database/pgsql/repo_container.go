package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/ymalhaj/cashbox_ledger_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every PostgreSQL repository onto one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	rateRepo := newPgxRateRepository(dbPool)
	movementRepo := newPgxMovementRepository(dbPool)
	conversionRepo := newPgxConversionRepository(dbPool)

	return portsrepo.RepositoryProvider{
		RateRepo:       rateRepo,
		MovementRepo:   movementRepo,
		ConversionRepo: conversionRepo,
	}
}
