package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/ymalhaj/cashbox_ledger_app/internal/apperrors"
	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
	portsrepo "github.com/ymalhaj/cashbox_ledger_app/internal/core/ports/repositories"
)

// PgxConversionRepository implements the atomic conversion write and the
// conversion audit reads on PostgreSQL.
type PgxConversionRepository struct {
	BaseRepository
}

// newPgxConversionRepository creates a new repository for conversion data.
func newPgxConversionRepository(pool *pgxpool.Pool) portsrepo.ConversionRepositoryFacade {
	return &PgxConversionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ConversionRepositoryFacade = (*PgxConversionRepository)(nil)

func sumBalanceTx(ctx context.Context, tx pgx.Tx, currency domain.CurrencyCode) (decimal.Decimal, error) {
	var balance decimal.Decimal
	if err := tx.QueryRow(ctx, sumBalanceQuery, currency).Scan(&balance); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum balance for "+string(currency), err)
	}
	return balance, nil
}

// SaveConversion persists the debit movement, the credit movement and the
// conversion record in one transaction. Both currency rows are locked up
// front (in lexical order, so two opposing conversions cannot deadlock), then
// the source balance is recomputed under the lock and the funds check is
// repeated; a concurrent conversion that drained the balance after the
// caller's read is rejected here with ErrInsufficientBalance. Either all
// three rows land or none do.
func (r *PgxConversionRepository) SaveConversion(ctx context.Context, debit, credit domain.Movement, record domain.ConversionRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := lockCurrencyRows(ctx, tx, []domain.CurrencyCode{debit.CurrencyCode, credit.CurrencyCode}); err != nil {
		return err
	}

	available, err := sumBalanceTx(ctx, tx, debit.CurrencyCode)
	if err != nil {
		return err
	}
	if available.LessThan(debit.Amount) {
		return apperrors.NewInsufficientBalanceError(string(debit.CurrencyCode), debit.Amount, available)
	}

	batch := &pgx.Batch{}
	batch.Queue(movementInsertQuery, movementInsertArgs(debit)...)
	batch.Queue(movementInsertQuery, movementInsertArgs(credit)...)
	batch.Queue(`
		INSERT INTO conversions (
			conversion_id, from_currency_code, to_currency_code,
			original_amount, converted_amount, rate, rate_status,
			debit_movement_id, credit_movement_id, description, converted_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`,
		record.ConversionID,
		record.FromCurrencyCode,
		record.ToCurrencyCode,
		record.OriginalAmount,
		record.ConvertedAmount,
		record.Rate,
		record.RateStatus,
		record.DebitMovementID,
		record.CreditMovementID,
		record.Description,
		record.ConvertedAt,
		record.CreatedBy,
	)

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, execErr := br.Exec(); execErr != nil {
			br.Close()
			return apperrors.NewAppError(500, "failed to persist conversion "+record.ConversionID, execErr)
		}
	}
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to close conversion batch", err)
	}

	if err := applyCachedBalanceTx(ctx, tx, debit.CurrencyCode, debit.SignedAmount(), record.CreatedBy); err != nil {
		return err
	}
	if err := applyCachedBalanceTx(ctx, tx, credit.CurrencyCode, credit.SignedAmount(), record.CreatedBy); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

const conversionColumns = `
	conversion_id, from_currency_code, to_currency_code,
	original_amount, converted_amount, rate, rate_status,
	debit_movement_id, credit_movement_id, description, converted_at, created_by`

func scanConversionRecord(row pgx.Row) (*domain.ConversionRecord, error) {
	var rec domain.ConversionRecord
	err := row.Scan(
		&rec.ConversionID,
		&rec.FromCurrencyCode,
		&rec.ToCurrencyCode,
		&rec.OriginalAmount,
		&rec.ConvertedAmount,
		&rec.Rate,
		&rec.RateStatus,
		&rec.DebitMovementID,
		&rec.CreditMovementID,
		&rec.Description,
		&rec.ConvertedAt,
		&rec.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListConversions retrieves conversion records, most recent first.
func (r *PgxConversionRepository) ListConversions(ctx context.Context, limit int) ([]domain.ConversionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT` + conversionColumns + `
		FROM conversions
		ORDER BY converted_at DESC
		LIMIT $1;
	`
	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query conversions", err)
	}
	defer rows.Close()

	records := []domain.ConversionRecord{}
	for rows.Next() {
		rec, err := scanConversionRecord(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan conversion row", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating conversion rows", err)
	}

	return records, nil
}

// SummarizeConversions aggregates conversions per directional pair since the
// given instant: count, totals of both legs and the average applied rate.
func (r *PgxConversionRepository) SummarizeConversions(ctx context.Context, since time.Time) ([]domain.ConversionPairSummary, error) {
	query := `
		SELECT from_currency_code, to_currency_code,
		       COUNT(*),
		       COALESCE(SUM(original_amount), 0),
		       COALESCE(SUM(converted_amount), 0),
		       COALESCE(AVG(rate), 0)
		FROM conversions
		WHERE converted_at >= $1
		GROUP BY from_currency_code, to_currency_code
		ORDER BY from_currency_code, to_currency_code;
	`
	rows, err := r.Pool.Query(ctx, query, since)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to summarize conversions", err)
	}
	defer rows.Close()

	summaries := []domain.ConversionPairSummary{}
	for rows.Next() {
		var s domain.ConversionPairSummary
		err := rows.Scan(
			&s.FromCurrencyCode,
			&s.ToCurrencyCode,
			&s.Count,
			&s.TotalOriginal,
			&s.TotalConverted,
			&s.AverageRate,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan conversion summary row", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating conversion summary rows", err)
	}

	return summaries, nil
}
