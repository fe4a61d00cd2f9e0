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

// defaultRates is the static fallback table, keyed by directional pair.
// Used when no stored rate (direct, inverse or cross) can be found.
var defaultRates = map[domain.CurrencyCode]map[domain.CurrencyCode]decimal.Decimal{
	domain.USD: {
		domain.RMB: decimal.RequireFromString("7.20"),
	},
	domain.AED: {
		domain.RMB: decimal.RequireFromString("1.96"),
	},
	domain.SDG: {
		domain.RMB: decimal.RequireFromString("0.012"),
	},
	domain.RMB: {
		domain.USD: decimal.RequireFromString("0.1389"),
		domain.AED: decimal.RequireFromString("0.51"),
		domain.SDG: decimal.RequireFromString("83.33"),
	},
}

// rateService resolves exchange rates and manages the rate store.
type rateService struct {
	rateRepo       portsrepo.RateRepositoryFacade
	strictFallback bool
}

// NewRateService creates a new rate service. When strictFallback is true,
// resolving a pair absent from both the store and the default table fails
// with ErrRateUnresolvable instead of silently falling back to parity.
func NewRateService(rateRepo portsrepo.RateRepositoryFacade, strictFallback bool) portssvc.RateSvcFacade {
	return &rateService{
		rateRepo:       rateRepo,
		strictFallback: strictFallback,
	}
}

var _ portssvc.RateSvcFacade = (*rateService)(nil)

// Resolve returns a rate for (from, to) with provenance.
// Resolution order, first match wins: identity, direct, inverse, cross
// through the base currency (exactly one hop), static default table.
func (s *rateService) Resolve(ctx context.Context, from, to domain.CurrencyCode) (*domain.RateResolution, error) {
	if !from.IsSupported() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrency, from)
	}
	if !to.IsSupported() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrency, to)
	}

	if from == to {
		return &domain.RateResolution{
			FromCurrencyCode: from,
			ToCurrencyCode:   to,
			Rate:             decimal.NewFromInt(1),
			Status:           domain.RateStatusIdentity,
			LastUpdatedAt:    time.Now().UTC(),
		}, nil
	}

	res, err := s.resolveStored(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}

	return s.resolveDefault(ctx, from, to)
}

// resolveStored tries the direct, inverse and single-hop cross lookups.
// Returns (nil, nil) when nothing is stored for the pair, so the caller can
// fall through to the default table.
func (s *rateService) resolveStored(ctx context.Context, from, to domain.CurrencyCode) (*domain.RateResolution, error) {
	res, err := s.resolveLeg(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}

	// Cross-rate composition applies only when neither side is the base
	// currency; the two legs are themselves direct-or-inverse lookups, so
	// depth is bounded to one hop by construction.
	if from == domain.BaseCurrency || to == domain.BaseCurrency {
		return nil, nil
	}

	toBase, err := s.resolveLeg(ctx, from, domain.BaseCurrency)
	if err != nil {
		return nil, err
	}
	fromBase, err := s.resolveLeg(ctx, domain.BaseCurrency, to)
	if err != nil {
		return nil, err
	}
	if toBase == nil || fromBase == nil {
		return nil, nil
	}

	lastUpdated := toBase.LastUpdatedAt
	if fromBase.LastUpdatedAt.Before(lastUpdated) {
		lastUpdated = fromBase.LastUpdatedAt
	}

	return &domain.RateResolution{
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Rate:             toBase.Rate.Mul(fromBase.Rate),
		Status:           domain.RateStatusCrossRMB,
		LastUpdatedAt:    lastUpdated,
	}, nil
}

// resolveLeg performs the direct-then-inverse stored lookup for one pair.
// Returns (nil, nil) when neither direction is stored.
func (s *rateService) resolveLeg(ctx context.Context, from, to domain.CurrencyCode) (*domain.RateResolution, error) {
	direct, err := s.rateRepo.FindLatestRate(ctx, from, to)
	if err == nil {
		return &domain.RateResolution{
			FromCurrencyCode: from,
			ToCurrencyCode:   to,
			Rate:             direct.Rate,
			Status:           domain.RateStatusDirect,
			LastUpdatedAt:    direct.LastUpdatedAt,
		}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up rate %s/%s: %w", from, to, err)
	}

	inverse, err := s.rateRepo.FindLatestRate(ctx, to, from)
	if err == nil {
		// Stored rates are strictly positive (enforced at the write
		// boundary), so the division is safe.
		return &domain.RateResolution{
			FromCurrencyCode: from,
			ToCurrencyCode:   to,
			Rate:             decimal.NewFromInt(1).Div(inverse.Rate),
			Status:           domain.RateStatusInverse,
			LastUpdatedAt:    inverse.LastUpdatedAt,
		}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up rate %s/%s: %w", to, from, err)
	}

	return nil, nil
}

// resolveDefault consults the static fallback table, then applies the
// configured unknown-pair policy.
func (s *rateService) resolveDefault(ctx context.Context, from, to domain.CurrencyCode) (*domain.RateResolution, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if rate, ok := defaultRates[from][to]; ok {
		return &domain.RateResolution{
			FromCurrencyCode: from,
			ToCurrencyCode:   to,
			Rate:             rate,
			Status:           domain.RateStatusDefault,
			LastUpdatedAt:    time.Now().UTC(),
		}, nil
	}

	if s.strictFallback {
		logger.Warn("No rate resolvable for pair under strict fallback policy",
			slog.String("from", string(from)), slog.String("to", string(to)))
		return nil, fmt.Errorf("%w: no rate for %s/%s", apperrors.ErrRateUnresolvable, from, to)
	}

	logger.Warn("Falling back to parity rate for unknown pair",
		slog.String("from", string(from)), slog.String("to", string(to)))
	return &domain.RateResolution{
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Rate:             decimal.NewFromInt(1),
		Status:           domain.RateStatusDefault,
		LastUpdatedAt:    time.Now().UTC(),
	}, nil
}

// CreateRate records a rate with the given source.
func (s *rateService) CreateRate(ctx context.Context, req dto.CreateRateRequest, source domain.RateSource, actorID string) (*domain.RateRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	from := domain.CurrencyCode(req.FromCurrencyCode)
	to := domain.CurrencyCode(req.ToCurrencyCode)

	if !from.IsSupported() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrency, from)
	}
	if !to.IsSupported() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrency, to)
	}
	if from == to {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}
	// The rate > 0 invariant is enforced here, at the write boundary, so the
	// resolver never has to guard against dividing by a stored zero.
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	record := domain.RateRecord{
		RateID:           uuid.NewString(),
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Rate:             req.Rate,
		Source:           source,
		DateEffective:    req.DateEffective,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.rateRepo.SaveRate(ctx, record); err != nil {
		logger.Error("Failed to save exchange rate", slog.String("error", err.Error()),
			slog.String("from", string(from)), slog.String("to", string(to)))
		return nil, fmt.Errorf("failed to save exchange rate: %w", err)
	}

	logger.Info("Exchange rate recorded", slog.String("rate_id", record.RateID),
		slog.String("from", string(from)), slog.String("to", string(to)),
		slog.String("source", string(source)))
	return &record, nil
}

// ApplyAutoUpdate records a batch of rates with source auto_update.
func (s *rateService) ApplyAutoUpdate(ctx context.Context, req dto.AutoUpdateRatesRequest, actorID string) ([]domain.RateRecord, error) {
	records := make([]domain.RateRecord, 0, len(req.Rates))
	for _, rateReq := range req.Rates {
		record, err := s.CreateRate(ctx, rateReq, domain.RateSourceAutoUpdate, actorID)
		if err != nil {
			return nil, fmt.Errorf("auto update failed for %s/%s: %w", rateReq.FromCurrencyCode, rateReq.ToCurrencyCode, err)
		}
		records = append(records, *record)
	}
	return records, nil
}

// SeedDefaultRates inserts the static fallback table for pairs with no
// stored rate yet. Pairs that already have a rate are left untouched.
func (s *rateService) SeedDefaultRates(ctx context.Context, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()
	seeded := 0

	for from, targets := range defaultRates {
		for to, rate := range targets {
			_, err := s.rateRepo.FindLatestRate(ctx, from, to)
			if err == nil {
				continue
			}
			if !errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("failed to check existing rate %s/%s: %w", from, to, err)
			}

			record := domain.RateRecord{
				RateID:           uuid.NewString(),
				FromCurrencyCode: from,
				ToCurrencyCode:   to,
				Rate:             rate,
				Source:           domain.RateSourceSystemDefault,
				DateEffective:    now.Truncate(24 * time.Hour),
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     actorID,
					LastUpdatedAt: now,
					LastUpdatedBy: actorID,
				},
			}
			if err := s.rateRepo.SaveRate(ctx, record); err != nil {
				return fmt.Errorf("failed to seed default rate %s/%s: %w", from, to, err)
			}
			seeded++
		}
	}

	if seeded > 0 {
		logger.Info("Seeded default exchange rates", slog.Int("count", seeded))
	}
	return nil
}

// GetLatestRate retrieves the stored current rate for an exact pair.
func (s *rateService) GetLatestRate(ctx context.Context, from, to domain.CurrencyCode) (*domain.RateRecord, error) {
	if !from.IsSupported() || !to.IsSupported() {
		return nil, fmt.Errorf("%w: %s/%s", apperrors.ErrUnsupportedCurrency, from, to)
	}

	rate, err := s.rateRepo.FindLatestRate(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}
	return rate, nil
}

// ListLatestRates retrieves the current rate of every recorded pair.
func (s *rateService) ListLatestRates(ctx context.Context) ([]domain.RateRecord, error) {
	rates, err := s.rateRepo.ListLatestRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	return rates, nil
}

// ListRateHistory retrieves the append-only history for a pair, most recent
// first.
func (s *rateService) ListRateHistory(ctx context.Context, from, to domain.CurrencyCode, limit int) ([]domain.RateRecord, error) {
	if !from.IsSupported() || !to.IsSupported() {
		return nil, fmt.Errorf("%w: %s/%s", apperrors.ErrUnsupportedCurrency, from, to)
	}

	rates, err := s.rateRepo.ListRateHistory(ctx, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rate history: %w", err)
	}
	return rates, nil
}
