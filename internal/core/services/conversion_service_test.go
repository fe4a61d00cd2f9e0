package services_test

import (
	"context"
	"errors"
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

// --- Mock RateService ---
type MockRateService struct {
	mock.Mock
}

func (m *MockRateService) Resolve(ctx context.Context, from, to domain.CurrencyCode) (*domain.RateResolution, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateResolution), args.Error(1)
}

func (m *MockRateService) CreateRate(ctx context.Context, req dto.CreateRateRequest, source domain.RateSource, actorID string) (*domain.RateRecord, error) {
	args := m.Called(ctx, req, source, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateRecord), args.Error(1)
}

func (m *MockRateService) ApplyAutoUpdate(ctx context.Context, req dto.AutoUpdateRatesRequest, actorID string) ([]domain.RateRecord, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateRecord), args.Error(1)
}

func (m *MockRateService) SeedDefaultRates(ctx context.Context, actorID string) error {
	args := m.Called(ctx, actorID)
	return args.Error(0)
}

func (m *MockRateService) GetLatestRate(ctx context.Context, from, to domain.CurrencyCode) (*domain.RateRecord, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateRecord), args.Error(1)
}

func (m *MockRateService) ListLatestRates(ctx context.Context) ([]domain.RateRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateRecord), args.Error(1)
}

func (m *MockRateService) ListRateHistory(ctx context.Context, from, to domain.CurrencyCode, limit int) ([]domain.RateRecord, error) {
	args := m.Called(ctx, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateRecord), args.Error(1)
}

// --- Mock MovementReader ---
type MockMovementReader struct {
	mock.Mock
}

func (m *MockMovementReader) SumBalance(ctx context.Context, currency domain.CurrencyCode) (decimal.Decimal, error) {
	args := m.Called(ctx, currency)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockMovementReader) SumAllBalances(ctx context.Context) (map[domain.CurrencyCode]decimal.Decimal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.CurrencyCode]decimal.Decimal), args.Error(1)
}

func (m *MockMovementReader) ListMovements(ctx context.Context, currency *domain.CurrencyCode, limit int, nextToken *string) ([]domain.Movement, *string, error) {
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

// --- Mock ConversionRepository ---
type MockConversionRepository struct {
	mock.Mock
}

func (m *MockConversionRepository) SaveConversion(ctx context.Context, debit, credit domain.Movement, record domain.ConversionRecord) error {
	args := m.Called(ctx, debit, credit, record)
	return args.Error(0)
}

func (m *MockConversionRepository) ListConversions(ctx context.Context, limit int) ([]domain.ConversionRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConversionRecord), args.Error(1)
}

func (m *MockConversionRepository) SummarizeConversions(ctx context.Context, since time.Time) ([]domain.ConversionPairSummary, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConversionPairSummary), args.Error(1)
}

// --- Test Suite ---
type ConversionServiceTestSuite struct {
	suite.Suite
	mockRateSvc        *MockRateService
	mockMovementReader *MockMovementReader
	mockConversionRepo *MockConversionRepository
	service            portssvc.ConversionSvcFacade
}

func (suite *ConversionServiceTestSuite) SetupTest() {
	suite.mockRateSvc = new(MockRateService)
	suite.mockMovementReader = new(MockMovementReader)
	suite.mockConversionRepo = new(MockConversionRepository)
	suite.service = services.NewConversionService(suite.mockRateSvc, suite.mockMovementReader, suite.mockConversionRepo, 0)
}

func usdToRmbResolution(rate string) *domain.RateResolution {
	return &domain.RateResolution{
		FromCurrencyCode: domain.USD,
		ToCurrencyCode:   domain.RMB,
		Rate:             decimal.RequireFromString(rate),
		Status:           domain.RateStatusDirect,
		LastUpdatedAt:    time.Now().UTC(),
	}
}

// --- Preconditions ---

func (suite *ConversionServiceTestSuite) TestConvert_UnsupportedCurrencyRejected() {
	req := dto.ConvertRequest{FromCurrencyCode: "EUR", ToCurrencyCode: "RMB", Amount: decimal.NewFromInt(10)}

	record, err := suite.service.Convert(context.Background(), req, "actor-1")

	assert.Nil(suite.T(), record)
	assert.ErrorIs(suite.T(), err, apperrors.ErrUnsupportedCurrency)
	suite.mockConversionRepo.AssertNotCalled(suite.T(), "SaveConversion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ConversionServiceTestSuite) TestConvert_NonPositiveAmountRejected() {
	for _, amount := range []int64{0, -5} {
		req := dto.ConvertRequest{FromCurrencyCode: "USD", ToCurrencyCode: "RMB", Amount: decimal.NewFromInt(amount)}

		record, err := suite.service.Convert(context.Background(), req, "actor-1")

		assert.Nil(suite.T(), record)
		assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidAmount)
	}
}

func (suite *ConversionServiceTestSuite) TestConvert_SameCurrencyRejected() {
	req := dto.ConvertRequest{FromCurrencyCode: "USD", ToCurrencyCode: "USD", Amount: decimal.NewFromInt(10)}

	record, err := suite.service.Convert(context.Background(), req, "actor-1")

	assert.Nil(suite.T(), record)
	assert.ErrorIs(suite.T(), err, apperrors.ErrSameCurrency)
}

func (suite *ConversionServiceTestSuite) TestConvert_InvalidAmountWinsOverSameCurrency() {
	// Precondition order is fixed: the amount check runs before the
	// same-currency check.
	req := dto.ConvertRequest{FromCurrencyCode: "USD", ToCurrencyCode: "USD", Amount: decimal.NewFromInt(-1)}

	_, err := suite.service.Convert(context.Background(), req, "actor-1")

	assert.ErrorIs(suite.T(), err, apperrors.ErrInvalidAmount)
}

// --- Funds checks ---

func (suite *ConversionServiceTestSuite) TestConvert_InsufficientBalanceNoWrites() {
	suite.mockMovementReader.On("SumBalance", mock.Anything, domain.USD).
		Return(decimal.NewFromInt(50), nil)

	req := dto.ConvertRequest{FromCurrencyCode: "USD", ToCurrencyCode: "RMB", Amount: decimal.NewFromInt(100)}

	record, err := suite.service.Convert(context.Background(), req, "actor-1")

	assert.Nil(suite.T(), record)
	assert.ErrorIs(suite.T(), err, apperrors.ErrInsufficientBalance)

	var balErr *apperrors.InsufficientBalanceError
	assert.ErrorAs(suite.T(), err, &balErr)
	assert.Equal(suite.T(), "USD", balErr.Currency)
	assert.True(suite.T(), balErr.Available.Equal(decimal.NewFromInt(50)))

	suite.mockRateSvc.AssertNotCalled(suite.T(), "Resolve", mock.Anything, mock.Anything, mock.Anything)
	suite.mockConversionRepo.AssertNotCalled(suite.T(), "SaveConversion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ConversionServiceTestSuite) TestConvert_InTransactionRecheckPropagated() {
	suite.mockMovementReader.On("SumBalance", mock.Anything, domain.USD).
		Return(decimal.NewFromInt(1000), nil)
	suite.mockRateSvc.On("Resolve", mock.Anything, domain.USD, domain.RMB).
		Return(usdToRmbResolution("7.25"), nil)
	raceErr := apperrors.NewInsufficientBalanceError("USD", decimal.NewFromInt(100), decimal.NewFromInt(10))
	suite.mockConversionRepo.On("SaveConversion", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(raceErr)

	req := dto.ConvertRequest{FromCurrencyCode: "USD", ToCurrencyCode: "RMB", Amount: decimal.NewFromInt(100)}

	record, err := suite.service.Convert(context.Background(), req, "actor-1")

	assert.Nil(suite.T(), record)
	// The repository's re-check failure must surface as an insufficient
	// balance rejection, not as a generic conversion failure.
	assert.ErrorIs(suite.T(), err, apperrors.ErrInsufficientBalance)
	assert.NotErrorIs(suite.T(), err, apperrors.ErrConversionFailed)
}

// --- Execution ---

func (suite *ConversionServiceTestSuite) TestConvert_WorkedExample() {
	// USD_RMB = 7.25; converting 100 USD must debit 100 USD and credit
	// exactly 725.00 RMB.
	suite.mockMovementReader.On("SumBalance", mock.Anything, domain.USD).
		Return(decimal.NewFromInt(500), nil)
	suite.mockRateSvc.On("Resolve", mock.Anything, domain.USD, domain.RMB).
		Return(usdToRmbResolution("7.25"), nil)

	var savedDebit, savedCredit domain.Movement
	var savedRecord domain.ConversionRecord
	suite.mockConversionRepo.On("SaveConversion", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			savedDebit = args.Get(1).(domain.Movement)
			savedCredit = args.Get(2).(domain.Movement)
			savedRecord = args.Get(3).(domain.ConversionRecord)
		}).
		Return(nil)

	req := dto.ConvertRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "RMB",
		Amount:           decimal.NewFromInt(100),
		Description:      "travel cash",
	}

	record, err := suite.service.Convert(context.Background(), req, "actor-1")

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), record.ConvertedAmount.Equal(decimal.RequireFromString("725.00")))
	assert.Equal(suite.T(), domain.RateStatusDirect, record.RateStatus)

	// Debit leg: OUT of the source currency, original magnitude.
	assert.Equal(suite.T(), domain.Out, savedDebit.Direction)
	assert.Equal(suite.T(), domain.USD, savedDebit.CurrencyCode)
	assert.True(suite.T(), savedDebit.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(suite.T(), domain.RMB, *savedDebit.RelatedCurrency)

	// Credit leg: IN to the target currency, converted magnitude, linked back
	// to the debit movement.
	assert.Equal(suite.T(), domain.In, savedCredit.Direction)
	assert.Equal(suite.T(), domain.RMB, savedCredit.CurrencyCode)
	assert.True(suite.T(), savedCredit.Amount.Equal(decimal.RequireFromString("725.00")))
	assert.Equal(suite.T(), savedDebit.MovementID, *savedCredit.ReferenceID)

	// Audit record ties both movement IDs together.
	assert.Equal(suite.T(), savedDebit.MovementID, savedRecord.DebitMovementID)
	assert.Equal(suite.T(), savedCredit.MovementID, savedRecord.CreditMovementID)
	assert.Equal(suite.T(), "actor-1", savedRecord.CreatedBy)
}

func (suite *ConversionServiceTestSuite) TestConvert_RepositoryFailureWrapped() {
	suite.mockMovementReader.On("SumBalance", mock.Anything, domain.USD).
		Return(decimal.NewFromInt(500), nil)
	suite.mockRateSvc.On("Resolve", mock.Anything, domain.USD, domain.RMB).
		Return(usdToRmbResolution("7.25"), nil)
	suite.mockConversionRepo.On("SaveConversion", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection reset"))

	req := dto.ConvertRequest{FromCurrencyCode: "USD", ToCurrencyCode: "RMB", Amount: decimal.NewFromInt(100)}

	record, err := suite.service.Convert(context.Background(), req, "actor-1")

	assert.Nil(suite.T(), record)
	assert.ErrorIs(suite.T(), err, apperrors.ErrConversionFailed)
}

// --- Preview ---

func (suite *ConversionServiceTestSuite) TestPreview_MatchesConvertArithmetic() {
	resolution := usdToRmbResolution("7.25")
	suite.mockRateSvc.On("Resolve", mock.Anything, domain.USD, domain.RMB).Return(resolution, nil)
	suite.mockMovementReader.On("SumBalance", mock.Anything, domain.USD).Return(decimal.NewFromInt(500), nil)
	suite.mockMovementReader.On("SumBalance", mock.Anything, domain.RMB).Return(decimal.NewFromInt(200), nil)

	var savedCredit domain.Movement
	suite.mockConversionRepo.On("SaveConversion", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { savedCredit = args.Get(2).(domain.Movement) }).
		Return(nil)

	amount := decimal.RequireFromString("33.33")

	preview, err := suite.service.Preview(context.Background(), dto.PreviewConversionParams{
		FromCurrencyCode: "USD", ToCurrencyCode: "RMB", Amount: amount,
	})
	assert.NoError(suite.T(), err)

	record, err := suite.service.Convert(context.Background(), dto.ConvertRequest{
		FromCurrencyCode: "USD", ToCurrencyCode: "RMB", Amount: amount,
	}, "actor-1")
	assert.NoError(suite.T(), err)

	// Preview and execution share one arithmetic path; with an unchanged rate
	// their results are identical.
	assert.True(suite.T(), preview.ConvertedAmount.Equal(record.ConvertedAmount))
	assert.True(suite.T(), preview.ConvertedAmount.Equal(savedCredit.Amount))
}

func (suite *ConversionServiceTestSuite) TestPreview_ShowsNegativeHypotheticalBalance() {
	suite.mockRateSvc.On("Resolve", mock.Anything, domain.USD, domain.RMB).
		Return(usdToRmbResolution("7.25"), nil)
	suite.mockMovementReader.On("SumBalance", mock.Anything, domain.USD).Return(decimal.NewFromInt(10), nil)
	suite.mockMovementReader.On("SumBalance", mock.Anything, domain.RMB).Return(decimal.Zero, nil)

	preview, err := suite.service.Preview(context.Background(), dto.PreviewConversionParams{
		FromCurrencyCode: "USD", ToCurrencyCode: "RMB", Amount: decimal.NewFromInt(100),
	})

	// Previewing an unaffordable conversion is not an error; it reports what
	// the balances would become.
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), preview.FromBalanceAfter.IsNegative())
	suite.mockConversionRepo.AssertNotCalled(suite.T(), "SaveConversion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Audit views ---

func (suite *ConversionServiceTestSuite) TestHistory_DefaultLimit() {
	suite.mockConversionRepo.On("ListConversions", mock.Anything, 50).
		Return([]domain.ConversionRecord{}, nil)

	_, err := suite.service.History(context.Background(), 0)

	assert.NoError(suite.T(), err)
	suite.mockConversionRepo.AssertExpectations(suite.T())
}

func (suite *ConversionServiceTestSuite) TestSummary_DefaultWindow() {
	suite.mockConversionRepo.On("SummarizeConversions", mock.Anything, mock.MatchedBy(func(since time.Time) bool {
		expected := time.Now().UTC().AddDate(0, 0, -30)
		return since.Sub(expected).Abs() < time.Minute
	})).Return([]domain.ConversionPairSummary{}, nil)

	_, err := suite.service.Summary(context.Background(), 0)

	assert.NoError(suite.T(), err)
	suite.mockConversionRepo.AssertExpectations(suite.T())
}

func TestConversionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ConversionServiceTestSuite))
}
