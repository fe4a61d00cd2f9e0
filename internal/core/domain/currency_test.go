package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrencyCodeIsSupported(t *testing.T) {
	for _, code := range SupportedCurrencies {
		assert.True(t, code.IsSupported(), "%s should be supported", code)
	}

	assert.False(t, CurrencyCode("EUR").IsSupported())
	assert.False(t, CurrencyCode("rmb").IsSupported(), "codes are case sensitive")
	assert.False(t, CurrencyCode("").IsSupported())
}

func TestBaseCurrencyIsSupported(t *testing.T) {
	assert.True(t, BaseCurrency.IsSupported())
	assert.Equal(t, RMB, BaseCurrency)
}
