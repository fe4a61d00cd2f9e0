package domain

// CurrencyCode identifies one of the currencies handled by the cashbox.
// The set is closed: adding a currency means extending SupportedCurrencies
// and the default rate table, nothing else (movements are stored as
// (currency, magnitude) rows, not one column per currency).
type CurrencyCode string

const (
	RMB CurrencyCode = "RMB"
	USD CurrencyCode = "USD"
	SDG CurrencyCode = "SDG"
	AED CurrencyCode = "AED"
)

// BaseCurrency is the pivot used for cross-rate composition.
const BaseCurrency = RMB

// SupportedCurrencies is the ordered, closed set of cashbox currencies.
var SupportedCurrencies = []CurrencyCode{RMB, USD, SDG, AED}

// IsSupported reports whether code belongs to the cashbox currency set.
func (c CurrencyCode) IsSupported() bool {
	for _, sc := range SupportedCurrencies {
		if c == sc {
			return true
		}
	}
	return false
}

// DisplayPrecision is the number of decimal places used when rounding
// amounts for display. Stored and intermediate values are never rounded.
const DisplayPrecision = 2
