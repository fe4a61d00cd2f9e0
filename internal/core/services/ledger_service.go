package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ymalhaj/cashbox_ledger_app/internal/apperrors"
	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
	portsrepo "github.com/ymalhaj/cashbox_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/ymalhaj/cashbox_ledger_app/internal/core/ports/services"
	"github.com/ymalhaj/cashbox_ledger_app/internal/dto"
	"github.com/ymalhaj/cashbox_ledger_app/internal/middleware"
)

// ledgerService provides movement recording and derived balance reads.
// Balances are never read from a stored column; every read is a sum over the
// movement history.
type ledgerService struct {
	movementRepo portsrepo.MovementRepositoryFacade
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(movementRepo portsrepo.MovementRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{movementRepo: movementRepo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// RecordMovement appends a single movement to the ledger. The request amount
// is signed; negative amounts become OUT movements with positive magnitude.
func (s *ledgerService) RecordMovement(ctx context.Context, req dto.RecordMovementRequest, actorID string) (*domain.Movement, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	currency := domain.CurrencyCode(req.CurrencyCode)
	if !currency.IsSupported() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrency, currency)
	}
	if req.Amount.IsZero() {
		return nil, fmt.Errorf("%w: movement amount cannot be zero", apperrors.ErrInvalidAmount)
	}

	direction := domain.In
	magnitude := req.Amount
	if req.Amount.IsNegative() {
		direction = domain.Out
		magnitude = req.Amount.Neg()
	}

	now := time.Now().UTC()
	movementDate := now
	if req.MovementDate != nil {
		movementDate = *req.MovementDate
	}

	movement := domain.Movement{
		MovementID:   uuid.NewString(),
		MovementDate: movementDate,
		Direction:    direction,
		Category:     req.Category,
		CurrencyCode: currency,
		Amount:       magnitude,
		Description:  req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.movementRepo.SaveMovement(ctx, movement); err != nil {
		logger.Error("Failed to save movement", slog.String("error", err.Error()),
			slog.String("currency", string(currency)))
		return nil, fmt.Errorf("failed to save movement: %w", err)
	}

	logger.Info("Movement recorded", slog.String("movement_id", movement.MovementID),
		slog.String("currency", string(currency)), slog.String("direction", string(direction)),
		slog.String("amount", magnitude.String()))
	return &movement, nil
}

// Balance returns the derived balance of one currency.
func (s *ledgerService) Balance(ctx context.Context, currency domain.CurrencyCode) (decimal.Decimal, error) {
	if !currency.IsSupported() {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrency, currency)
	}

	balance, err := s.movementRepo.SumBalance(ctx, currency)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance for %s: %w", currency, err)
	}
	return balance, nil
}

// AllBalances returns the derived balance of every supported currency.
// Currencies with no movements report zero.
func (s *ledgerService) AllBalances(ctx context.Context) (map[domain.CurrencyCode]decimal.Decimal, error) {
	balances, err := s.movementRepo.SumAllBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balances: %w", err)
	}

	for _, code := range domain.SupportedCurrencies {
		if _, ok := balances[code]; !ok {
			balances[code] = decimal.Zero
		}
	}
	return balances, nil
}

// ListMovements returns a token-paginated movement history, newest first.
func (s *ledgerService) ListMovements(ctx context.Context, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var currency *domain.CurrencyCode
	if params.CurrencyCode != nil && *params.CurrencyCode != "" {
		code := domain.CurrencyCode(*params.CurrencyCode)
		if !code.IsSupported() {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrency, code)
		}
		currency = &code
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	movements, nextToken, err := s.movementRepo.ListMovements(ctx, currency, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list movements from repository", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve movements: %w", err)
	}

	resp := &dto.ListMovementsResponse{
		Movements: dto.ToMovementResponses(movements),
		NextToken: nextToken,
	}

	logger.Debug("Movements listed", slog.Int("count", len(movements)))
	return resp, nil
}
