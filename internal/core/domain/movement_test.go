package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMovementSignedAmount(t *testing.T) {
	in := Movement{Direction: In, Amount: decimal.RequireFromString("120.50")}
	out := Movement{Direction: Out, Amount: decimal.RequireFromString("120.50")}

	assert.True(t, in.SignedAmount().Equal(decimal.RequireFromString("120.50")))
	assert.True(t, out.SignedAmount().Equal(decimal.RequireFromString("-120.50")))

	// A pairwise IN/OUT of the same magnitude nets to zero.
	assert.True(t, in.SignedAmount().Add(out.SignedAmount()).IsZero())
}
