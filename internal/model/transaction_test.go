package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_AmountIsAJSONNumber(t *testing.T) {
	b, err := json.Marshal(&Transaction{ID: "txn_1", Amount: decimal.RequireFromString("-12.50")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"amount":-12.5`)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.IsType(t, float64(0), raw["amount"])
}

func TestTransaction_DecodesQuotedAndBareAmounts(t *testing.T) {
	for _, in := range []string{`{"amount":-3.25}`, `{"amount":"-3.25"}`} {
		var tx Transaction
		require.NoError(t, json.Unmarshal([]byte(in), &tx), in)
		assert.True(t, tx.Amount.Equal(decimal.RequireFromString("-3.25")), in)
	}
}
