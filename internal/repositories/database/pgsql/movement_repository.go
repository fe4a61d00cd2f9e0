package pgsql

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/ymalhaj/cashbox_ledger_app/internal/apperrors"
	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
	portsrepo "github.com/ymalhaj/cashbox_ledger_app/internal/core/ports/repositories"
	"github.com/ymalhaj/cashbox_ledger_app/internal/utils/pagination"
)

// PgxMovementRepository implements the movement ledger on PostgreSQL.
// Movements are append-only rows of (currency, magnitude); balances are
// SUM aggregates over them. The cashbox_currencies table carries a cached
// balance maintained in the same transaction as each write, used for row
// locking and diagnostics only, never as the source of truth for reads.
type PgxMovementRepository struct {
	BaseRepository
}

// newPgxMovementRepository creates a new repository for movement data.
func newPgxMovementRepository(pool *pgxpool.Pool) portsrepo.MovementRepositoryFacade {
	return &PgxMovementRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.MovementRepositoryFacade = (*PgxMovementRepository)(nil)

const movementInsertQuery = `
	INSERT INTO movements (
		movement_id, movement_date, direction, category, currency_code, amount, description,
		related_currency, related_amount, reference_type, reference_id,
		created_at, created_by, last_updated_at, last_updated_by
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
`

func movementInsertArgs(m domain.Movement) []interface{} {
	return []interface{}{
		m.MovementID,
		m.MovementDate,
		m.Direction,
		m.Category,
		m.CurrencyCode,
		m.Amount,
		m.Description,
		m.RelatedCurrency,
		m.RelatedAmount,
		m.ReferenceType,
		m.ReferenceID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	}
}

// lockCurrencyRows locks the cashbox_currencies rows for the given codes,
// in lexical order so concurrent writers cannot deadlock. Fails with
// ErrUnsupportedCurrency when a code has no row.
func lockCurrencyRows(ctx context.Context, tx pgx.Tx, codes []domain.CurrencyCode) error {
	query := `
		SELECT currency_code FROM cashbox_currencies
		WHERE currency_code = ANY($1)
		ORDER BY currency_code
		FOR UPDATE;
	`
	asStrings := make([]string, len(codes))
	for i, c := range codes {
		asStrings[i] = string(c)
	}

	rows, err := tx.Query(ctx, query, asStrings)
	if err != nil {
		return apperrors.NewAppError(500, "failed to lock currency rows", err)
	}
	defer rows.Close()

	locked := 0
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return apperrors.NewAppError(500, "failed to scan locked currency row", err)
		}
		locked++
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewAppError(500, "error iterating locked currency rows", err)
	}

	seen := make(map[domain.CurrencyCode]struct{}, len(codes))
	for _, c := range codes {
		seen[c] = struct{}{}
	}
	if locked != len(seen) {
		return apperrors.NewAppError(400, "unknown currency in lock set", apperrors.ErrUnsupportedCurrency)
	}
	return nil
}

// applyCachedBalanceTx folds a signed delta into the cached balance column.
// The cache is an optimization maintained transactionally with the movement
// write; reads of record always go through sumBalanceTx.
func applyCachedBalanceTx(ctx context.Context, tx pgx.Tx, currency domain.CurrencyCode, delta decimal.Decimal, actorID string) error {
	query := `
		UPDATE cashbox_currencies
		SET cached_balance = cached_balance + $2,
		    last_updated_at = now(),
		    last_updated_by = $3
		WHERE currency_code = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, currency, delta, actorID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update cached balance for "+string(currency), err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewAppError(400, "unknown currency "+string(currency), apperrors.ErrUnsupportedCurrency)
	}
	return nil
}

const sumBalanceQuery = `
	SELECT COALESCE(SUM(CASE WHEN direction = 'IN' THEN amount ELSE -amount END), 0)
	FROM movements
	WHERE currency_code = $1;
`

// SaveMovement appends one movement and folds its delta into the cached
// balance, inside a single transaction.
func (r *PgxMovementRepository) SaveMovement(ctx context.Context, movement domain.Movement) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := lockCurrencyRows(ctx, tx, []domain.CurrencyCode{movement.CurrencyCode}); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, movementInsertQuery, movementInsertArgs(movement)...); err != nil {
		return apperrors.NewAppError(500, "failed to insert movement "+movement.MovementID, err)
	}

	if err := applyCachedBalanceTx(ctx, tx, movement.CurrencyCode, movement.SignedAmount(), movement.CreatedBy); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// SumBalance computes the derived balance of one currency.
func (r *PgxMovementRepository) SumBalance(ctx context.Context, currency domain.CurrencyCode) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.Pool.QueryRow(ctx, sumBalanceQuery, currency).Scan(&balance)
	if err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to sum balance for "+string(currency), err)
	}
	return balance, nil
}

// SumAllBalances computes the derived balance of every currency with at
// least one movement.
func (r *PgxMovementRepository) SumAllBalances(ctx context.Context) (map[domain.CurrencyCode]decimal.Decimal, error) {
	query := `
		SELECT currency_code,
		       COALESCE(SUM(CASE WHEN direction = 'IN' THEN amount ELSE -amount END), 0)
		FROM movements
		GROUP BY currency_code;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to sum balances", err)
	}
	defer rows.Close()

	balances := make(map[domain.CurrencyCode]decimal.Decimal)
	for rows.Next() {
		var code domain.CurrencyCode
		var balance decimal.Decimal
		if err := rows.Scan(&code, &balance); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan balance row", err)
		}
		balances[code] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating balance rows", err)
	}

	return balances, nil
}

func scanMovement(rows pgx.Rows) (domain.Movement, error) {
	var m domain.Movement
	var relatedCurrency sql.NullString
	var referenceType sql.NullString
	var referenceID sql.NullString

	err := rows.Scan(
		&m.MovementID,
		&m.MovementDate,
		&m.Direction,
		&m.Category,
		&m.CurrencyCode,
		&m.Amount,
		&m.Description,
		&relatedCurrency,
		&m.RelatedAmount,
		&referenceType,
		&referenceID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Movement{}, err
	}

	if relatedCurrency.Valid {
		rc := domain.CurrencyCode(relatedCurrency.String)
		m.RelatedCurrency = &rc
	}
	if referenceType.Valid {
		m.ReferenceType = &referenceType.String
	}
	if referenceID.Valid {
		m.ReferenceID = &referenceID.String
	}
	return m, nil
}

// ListMovements retrieves a token-paginated list of movements, newest first,
// optionally filtered to one currency. The cursor is (movement_date,
// created_at), which is stable because movements are immutable.
func (r *PgxMovementRepository) ListMovements(ctx context.Context, currency *domain.CurrencyCode, limit int, nextToken *string) ([]domain.Movement, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT movement_id, movement_date, direction, category, currency_code, amount, description,
		       related_currency, related_amount, reference_type, reference_id,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM movements
	`
	filterClause := `WHERE 1=1`
	args := []interface{}{}

	if currency != nil {
		args = append(args, *currency)
		filterClause += ` AND currency_code = $` + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		filterClause += ` AND (movement_date, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	orderByClause := `ORDER BY movement_date DESC, created_at DESC`
	args = append(args, fetchLimit)
	query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query movements", err)
	}
	defer rows.Close()

	movements := make([]domain.Movement, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanMovement(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan movement row", scanErr)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating movement rows", err)
	}

	var nextTokenVal *string
	if len(movements) > limit {
		last := movements[limit-1]
		token := pagination.EncodeToken(last.MovementDate, last.CreatedAt)
		nextTokenVal = &token
		movements = movements[:limit]
	}

	return movements, nextTokenVal, nil
}
