package dto

import (
	"github.com/shopspring/decimal"
	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
)

// BalanceResponse reports the derived balance of a single currency.
type BalanceResponse struct {
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
}

// AllBalancesResponse reports the derived balance of every supported
// currency, in the fixed currency order.
type AllBalancesResponse struct {
	Balances []BalanceResponse `json:"balances"`
}

// ToAllBalancesResponse maps the balance map into the ordered response.
func ToAllBalancesResponse(balances map[domain.CurrencyCode]decimal.Decimal) AllBalancesResponse {
	out := AllBalancesResponse{Balances: make([]BalanceResponse, 0, len(domain.SupportedCurrencies))}
	for _, code := range domain.SupportedCurrencies {
		bal, ok := balances[code]
		if !ok {
			bal = decimal.Zero
		}
		out.Balances = append(out.Balances, BalanceResponse{CurrencyCode: string(code), Balance: bal})
	}
	return out
}
