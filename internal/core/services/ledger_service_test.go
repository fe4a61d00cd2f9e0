package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/ymalhaj/cashbox_ledger_app/internal/apperrors"
	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
	portssvc "github.com/ymalhaj/cashbox_ledger_app/internal/core/ports/services"
	"github.com/ymalhaj/cashbox_ledger_app/internal/core/services"
	"github.com/ymalhaj/cashbox_ledger_app/internal/dto"
)

// --- Mock MovementRepository ---
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) SaveMovement(ctx context.Context, movement domain.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) SumBalance(ctx context.Context, currency domain.CurrencyCode) (decimal.Decimal, error) {
	args := m.Called(ctx, currency)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMovementRepository) SumAllBalances(ctx context.Context) (map[domain.CurrencyCode]decimal.Decimal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.CurrencyCode]decimal.Decimal), args.Error(1)
}

func (m *MockMovementRepository) ListMovements(ctx context.Context, currency *domain.CurrencyCode, limit int, nextToken *string) ([]domain.Movement, *string, error) {
	args := m.Called(ctx, currency, limit, nextToken)
	var movements []domain.Movement
	if args.Get(0) != nil {
		movements = args.Get(0).([]domain.Movement)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return movements, token, args.Error(2)
}

// --- Test Suite ---
type LedgerServiceTestSuite struct {
	suite.Suite
	mockMovementRepo *MockMovementRepository
	service          portssvc.LedgerSvcFacade
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockMovementRepo = new(MockMovementRepository)
	suite.service = services.NewLedgerService(suite.mockMovementRepo)
}

// --- RecordMovement ---

func (suite *LedgerServiceTestSuite) TestRecordMovement_PositiveAmountIsIn() {
	var saved domain.Movement
	suite.mockMovementRepo.On("SaveMovement", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Movement) }).
		Return(nil)

	req := dto.RecordMovementRequest{
		CurrencyCode: "USD",
		Amount:       decimal.RequireFromString("250.50"),
		Category:     "deposit",
		Description:  "cash intake",
	}

	movement, err := suite.service.RecordMovement(context.Background(), req, "actor-1")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.In, saved.Direction)
	assert.True(suite.T(), saved.Amount.Equal(decimal.RequireFromString("250.50")))
	assert.Equal(suite.T(), "actor-1", saved.CreatedBy)
	assert.NotEmpty(suite.T(), movement.MovementID)
}

func (suite *LedgerServiceTestSuite) TestRecordMovement_NegativeAmountIsOutWithPositiveMagnitude() {
	var saved domain.Movement
	suite.mockMovementRepo.On("SaveMovement", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Movement) }).
		Return(nil)

	req := dto.RecordMovementRequest{
		CurrencyCode: "SDG",
		Amount:       decimal.RequireFromString("-75"),
		Category:     "expense",
	}

	_, err := suite.service.RecordMovement(context.Background(), req, "actor-1")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), domain.Out, saved.Direction)
	// The stored magnitude is always positive; the sign lives in direction.
	assert.True(suite.T(), saved.Amount.Equal(decimal.NewFromInt(75)))
	assert.True(suite.T(), saved.SignedAmount().Equal(decimal.NewFromInt(-75)))
}

func (suite *LedgerServiceTestSuite) TestRecordMovement_ZeroAmountRejected() {
	req := dto.RecordMovementRequest{CurrencyCode: "USD", Amount: decimal.Zero, Category: "deposit"}

	movement, err := suite.service.RecordMovement(context.Background(), req, "actor-1")

	assert.Nil(suite.T(), movement)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidAmount)
	suite.mockMovementRepo.AssertNotCalled(suite.T(), "SaveMovement", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestRecordMovement_UnsupportedCurrencyRejected() {
	req := dto.RecordMovementRequest{CurrencyCode: "EUR", Amount: decimal.NewFromInt(10), Category: "deposit"}

	movement, err := suite.service.RecordMovement(context.Background(), req, "actor-1")

	assert.Nil(suite.T(), movement)
	assert.ErrorIs(suite.T(), err, apperrors.ErrUnsupportedCurrency)
}

func (suite *LedgerServiceTestSuite) TestRecordMovement_ExplicitMovementDateKept() {
	var saved domain.Movement
	suite.mockMovementRepo.On("SaveMovement", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Movement) }).
		Return(nil)

	backdated := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	req := dto.RecordMovementRequest{
		CurrencyCode: "AED",
		Amount:       decimal.NewFromInt(40),
		Category:     "deposit",
		MovementDate: &backdated,
	}

	_, err := suite.service.RecordMovement(context.Background(), req, "actor-1")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), backdated, saved.MovementDate)
}

// --- Balances ---

func (suite *LedgerServiceTestSuite) TestBalance_UnsupportedCurrencyRejected() {
	_, err := suite.service.Balance(context.Background(), "BTC")

	assert.ErrorIs(suite.T(), err, apperrors.ErrUnsupportedCurrency)
	suite.mockMovementRepo.AssertNotCalled(suite.T(), "SumBalance", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestAllBalances_ZeroFillsQuietCurrencies() {
	suite.mockMovementRepo.On("SumAllBalances", mock.Anything).
		Return(map[domain.CurrencyCode]decimal.Decimal{
			domain.USD: decimal.NewFromInt(120),
		}, nil)

	balances, err := suite.service.AllBalances(context.Background())

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), balances, len(domain.SupportedCurrencies))
	assert.True(suite.T(), balances[domain.USD].Equal(decimal.NewFromInt(120)))
	assert.True(suite.T(), balances[domain.RMB].IsZero())
	assert.True(suite.T(), balances[domain.SDG].IsZero())
	assert.True(suite.T(), balances[domain.AED].IsZero())
}

// --- ListMovements ---

func (suite *LedgerServiceTestSuite) TestListMovements_UnsupportedFilterRejected() {
	filter := "EUR"
	_, err := suite.service.ListMovements(context.Background(), dto.ListMovementsParams{CurrencyCode: &filter})

	assert.ErrorIs(suite.T(), err, apperrors.ErrUnsupportedCurrency)
}

func (suite *LedgerServiceTestSuite) TestListMovements_DefaultLimitAndTokenPassthrough() {
	nextToken := "page-2-token"
	suite.mockMovementRepo.On("ListMovements", mock.Anything, (*domain.CurrencyCode)(nil), 20, (*string)(nil)).
		Return([]domain.Movement{}, &nextToken, nil)

	resp, err := suite.service.ListMovements(context.Background(), dto.ListMovementsParams{})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), &nextToken, resp.NextToken)
	suite.mockMovementRepo.AssertExpectations(suite.T())
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
