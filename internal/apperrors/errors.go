package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the caller is not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidAmount indicates a conversion or movement amount that is zero or negative.
var ErrInvalidAmount = errors.New("amount must be positive")

// ErrSameCurrency indicates a conversion where source and target currency are identical.
var ErrSameCurrency = errors.New("from and to currency cannot be the same")

// ErrInsufficientBalance indicates the source currency balance cannot cover the requested amount.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrUnsupportedCurrency indicates a currency code outside the fixed cashbox set.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// ErrRateUnresolvable indicates no rate could be resolved for a pair under strict fallback policy.
var ErrRateUnresolvable = errors.New("exchange rate unresolvable")

// ErrConversionFailed indicates a persistence failure during the conversion transaction.
// The transaction is rolled back in full before this is returned.
var ErrConversionFailed = errors.New("conversion failed")

// InsufficientBalanceError carries the context needed to render a specific
// message: which currency, what was requested and what is actually available.
// It unwraps to ErrInsufficientBalance.
type InsufficientBalanceError struct {
	Currency  string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: requested %s, available %s",
		e.Currency, e.Requested.String(), e.Available.String())
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// NewInsufficientBalanceError creates an InsufficientBalanceError for the given currency.
func NewInsufficientBalanceError(currency string, requested, available decimal.Decimal) *InsufficientBalanceError {
	return &InsufficientBalanceError{Currency: currency, Requested: requested, Available: available}
}
