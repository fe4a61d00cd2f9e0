package services

import (
	"context"
	"errors"
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

// conversionService orchestrates currency conversions: validation, rate
// resolution and the atomic paired debit/credit write, plus the read-only
// audit views.
type conversionService struct {
	rateSvc        portssvc.RateSvcFacade
	movementRepo   portsrepo.MovementReader
	conversionRepo portsrepo.ConversionRepositoryFacade
	txTimeout      time.Duration
}

// NewConversionService creates a new conversion service. txTimeout bounds
// the conversion transaction; zero disables the bound.
func NewConversionService(
	rateSvc portssvc.RateSvcFacade,
	movementRepo portsrepo.MovementReader,
	conversionRepo portsrepo.ConversionRepositoryFacade,
	txTimeout time.Duration,
) portssvc.ConversionSvcFacade {
	return &conversionService{
		rateSvc:        rateSvc,
		movementRepo:   movementRepo,
		conversionRepo: conversionRepo,
		txTimeout:      txTimeout,
	}
}

var _ portssvc.ConversionSvcFacade = (*conversionService)(nil)

// computeConversion is the single arithmetic path shared by Preview and
// Convert: resolve the rate, multiply, round the result to the display
// precision. Keeping preview and execute on this one path is what makes
// their results identical absent an intervening rate update.
func (s *conversionService) computeConversion(ctx context.Context, from, to domain.CurrencyCode, amount decimal.Decimal) (*domain.RateResolution, decimal.Decimal, error) {
	resolution, err := s.rateSvc.Resolve(ctx, from, to)
	if err != nil {
		return nil, decimal.Zero, err
	}
	converted := amount.Mul(resolution.Rate).Round(domain.DisplayPrecision)
	return resolution, converted, nil
}

// checkPreconditions validates a conversion request in the fixed order:
// supported currencies, positive amount, distinct currencies. It has no side
// effects; the first failure wins.
func (s *conversionService) checkPreconditions(from, to domain.CurrencyCode, amount decimal.Decimal) error {
	if !from.IsSupported() {
		return fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrency, from)
	}
	if !to.IsSupported() {
		return fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrency, to)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: conversion amount must be positive, got %s", apperrors.ErrInvalidAmount, amount.String())
	}
	if from == to {
		return fmt.Errorf("%w: %s", apperrors.ErrSameCurrency, from)
	}
	return nil
}

// Preview computes the conversion without writing anything. It reports the
// current balances and what they would become; a preview of an unaffordable
// conversion succeeds and simply shows a negative hypothetical balance.
func (s *conversionService) Preview(ctx context.Context, req dto.PreviewConversionParams) (*domain.ConversionPreview, error) {
	from := domain.CurrencyCode(req.FromCurrencyCode)
	to := domain.CurrencyCode(req.ToCurrencyCode)

	if err := s.checkPreconditions(from, to, req.Amount); err != nil {
		return nil, err
	}

	resolution, converted, err := s.computeConversion(ctx, from, to, req.Amount)
	if err != nil {
		return nil, err
	}

	fromBalance, err := s.movementRepo.SumBalance(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance for %s: %w", from, err)
	}
	toBalance, err := s.movementRepo.SumBalance(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance for %s: %w", to, err)
	}

	return &domain.ConversionPreview{
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Amount:           req.Amount,
		Rate:             resolution.Rate,
		RateStatus:       resolution.Status,
		ConvertedAmount:  converted,
		FromBalance:      fromBalance,
		ToBalance:        toBalance,
		FromBalanceAfter: fromBalance.Sub(req.Amount),
		ToBalanceAfter:   toBalance.Add(converted),
	}, nil
}

// Convert validates, resolves the rate and writes the debit movement, the
// credit movement and the audit record inside one database transaction. All
// precondition failures are detected before any write; persistence failures
// roll back in full and surface as ErrConversionFailed.
func (s *conversionService) Convert(ctx context.Context, req dto.ConvertRequest, actorID string) (*domain.ConversionRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	from := domain.CurrencyCode(req.FromCurrencyCode)
	to := domain.CurrencyCode(req.ToCurrencyCode)

	if err := s.checkPreconditions(from, to, req.Amount); err != nil {
		return nil, err
	}

	// First-pass funds check, before anything is resolved or written. The
	// repository repeats this check inside the transaction after locking the
	// currency rows, which is what actually closes the check-then-act race;
	// this read just rejects the obvious cases without opening a transaction.
	available, err := s.movementRepo.SumBalance(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance for %s: %w", from, err)
	}
	if available.LessThan(req.Amount) {
		return nil, apperrors.NewInsufficientBalanceError(string(from), req.Amount, available)
	}

	resolution, converted, err := s.computeConversion(ctx, from, to, req.Amount)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	debitID := uuid.NewString()
	creditID := uuid.NewString()
	referenceType := domain.ReferenceTypeConversion

	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}

	debit := domain.Movement{
		MovementID:      debitID,
		MovementDate:    now,
		Direction:       domain.Out,
		Category:        domain.ReferenceTypeConversion,
		CurrencyCode:    from,
		Amount:          req.Amount,
		Description:     req.Description,
		RelatedCurrency: &to,
		RelatedAmount:   &converted,
		ReferenceType:   &referenceType,
		AuditFields:     audit,
	}

	credit := domain.Movement{
		MovementID:      creditID,
		MovementDate:    now,
		Direction:       domain.In,
		Category:        domain.ReferenceTypeConversion,
		CurrencyCode:    to,
		Amount:          converted,
		Description:     req.Description,
		RelatedCurrency: &from,
		RelatedAmount:   &req.Amount,
		ReferenceType:   &referenceType,
		ReferenceID:     &debitID,
		AuditFields:     audit,
	}

	record := domain.ConversionRecord{
		ConversionID:     uuid.NewString(),
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		OriginalAmount:   req.Amount,
		ConvertedAmount:  converted,
		Rate:             resolution.Rate,
		RateStatus:       resolution.Status,
		DebitMovementID:  debitID,
		CreditMovementID: creditID,
		Description:      req.Description,
		ConvertedAt:      now,
		CreatedBy:        actorID,
	}

	txCtx := ctx
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	if err := s.conversionRepo.SaveConversion(txCtx, debit, credit, record); err != nil {
		// The in-transaction funds re-check can still fail when a concurrent
		// conversion drained the balance between our read and the lock.
		if errors.Is(err, apperrors.ErrInsufficientBalance) {
			logger.Warn("Conversion rejected by in-transaction balance check",
				slog.String("from", string(from)), slog.String("amount", req.Amount.String()))
			return nil, err
		}
		logger.Error("Conversion transaction failed", slog.String("error", err.Error()),
			slog.String("from", string(from)), slog.String("to", string(to)))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConversionFailed, err)
	}

	logger.Info("Conversion executed",
		slog.String("conversion_id", record.ConversionID),
		slog.String("from", string(from)), slog.String("to", string(to)),
		slog.String("amount", req.Amount.String()),
		slog.String("converted", converted.String()),
		slog.String("rate", resolution.Rate.String()),
		slog.String("rate_status", string(resolution.Status)))
	return &record, nil
}

// History returns conversion records, most recent first.
func (s *conversionService) History(ctx context.Context, limit int) ([]domain.ConversionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	records, err := s.conversionRepo.ListConversions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve conversion history: %w", err)
	}
	return records, nil
}

// Summary aggregates conversions per pair within the last windowDays.
func (s *conversionService) Summary(ctx context.Context, windowDays int) ([]domain.ConversionPairSummary, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	summaries, err := s.conversionRepo.SummarizeConversions(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize conversions: %w", err)
	}
	return summaries, nil
}
