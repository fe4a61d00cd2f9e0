package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ymalhaj/cashbox_ledger_app/internal/apperrors"
	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
	portsrepo "github.com/ymalhaj/cashbox_ledger_app/internal/core/ports/repositories"
)

// PgxRateRepository implements the rate store on PostgreSQL. The
// exchange_rates table holds the latest rate per directional pair (upsert);
// exchange_rate_history is append-only and retains every write.
type PgxRateRepository struct {
	BaseRepository
}

// newPgxRateRepository creates a new repository for exchange rate data.
func newPgxRateRepository(pool *pgxpool.Pool) portsrepo.RateRepositoryFacade {
	return &PgxRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.RateRepositoryFacade = (*PgxRateRepository)(nil)

// SaveRate upserts the latest rate for the pair and appends to the history
// log within one transaction.
func (r *PgxRateRepository) SaveRate(ctx context.Context, rate domain.RateRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	upsertQuery := `
		INSERT INTO exchange_rates (
			rate_id, from_currency_code, to_currency_code, rate, source, date_effective,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (from_currency_code, to_currency_code) DO UPDATE SET
			rate_id = EXCLUDED.rate_id,
			rate = EXCLUDED.rate,
			source = EXCLUDED.source,
			date_effective = EXCLUDED.date_effective,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err = tx.Exec(ctx, upsertQuery,
		rate.RateID,
		rate.FromCurrencyCode,
		rate.ToCurrencyCode,
		rate.Rate,
		rate.Source,
		rate.DateEffective,
		rate.CreatedAt,
		rate.CreatedBy,
		rate.LastUpdatedAt,
		rate.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to upsert exchange rate "+string(rate.FromCurrencyCode)+"/"+string(rate.ToCurrencyCode), err)
	}

	historyQuery := `
		INSERT INTO exchange_rate_history (
			rate_id, from_currency_code, to_currency_code, rate, source, date_effective,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, historyQuery,
		rate.RateID,
		rate.FromCurrencyCode,
		rate.ToCurrencyCode,
		rate.Rate,
		rate.Source,
		rate.DateEffective,
		rate.CreatedAt,
		rate.CreatedBy,
		rate.LastUpdatedAt,
		rate.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to append exchange rate history", err)
	}

	return r.Commit(ctx, tx)
}

const rateColumns = `
	rate_id, from_currency_code, to_currency_code, rate, source, date_effective,
	created_at, created_by, last_updated_at, last_updated_by`

func scanRateRecord(row pgx.Row) (*domain.RateRecord, error) {
	var rec domain.RateRecord
	err := row.Scan(
		&rec.RateID,
		&rec.FromCurrencyCode,
		&rec.ToCurrencyCode,
		&rec.Rate,
		&rec.Source,
		&rec.DateEffective,
		&rec.CreatedAt,
		&rec.CreatedBy,
		&rec.LastUpdatedAt,
		&rec.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindLatestRate retrieves the current rate for the exact directional pair.
func (r *PgxRateRepository) FindLatestRate(ctx context.Context, from, to domain.CurrencyCode) (*domain.RateRecord, error) {
	query := `SELECT` + rateColumns + `
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2;
	`
	rec, err := scanRateRecord(r.Pool.QueryRow(ctx, query, from, to))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("exchange rate not found for pair " + string(from) + "/" + string(to))
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange rate", err)
	}
	return rec, nil
}

// ListLatestRates retrieves the current rate of every recorded pair.
func (r *PgxRateRepository) ListLatestRates(ctx context.Context) ([]domain.RateRecord, error) {
	query := `SELECT` + rateColumns + `
		FROM exchange_rates
		ORDER BY from_currency_code, to_currency_code;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list exchange rates", err)
	}
	defer rows.Close()

	rates := []domain.RateRecord{}
	for rows.Next() {
		rec, err := scanRateRecord(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan exchange rate row", err)
		}
		rates = append(rates, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating exchange rate rows", err)
	}

	return rates, nil
}

// ListRateHistory retrieves the append-only history for a pair, most recent
// first.
func (r *PgxRateRepository) ListRateHistory(ctx context.Context, from, to domain.CurrencyCode, limit int) ([]domain.RateRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT` + rateColumns + `
		FROM exchange_rate_history
		WHERE from_currency_code = $1 AND to_currency_code = $2
		ORDER BY last_updated_at DESC
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query exchange rate history", err)
	}
	defer rows.Close()

	rates := []domain.RateRecord{}
	for rows.Next() {
		rec, err := scanRateRecord(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan exchange rate history row", err)
		}
		rates = append(rates, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating exchange rate history rows", err)
	}

	return rates, nil
}
