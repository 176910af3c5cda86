package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTokenSymbol(t *testing.T) {
	t.Parallel()

	tests := []struct {
		symbol     string
		normalized string
	}{
		{
			symbol:     "USDC.E",
			normalized: "USDC",
		},
		{
			symbol:     "USDbC",
			normalized: "USDC",
		},
		{
			symbol:     "SFL",
			normalized: "SFL",
		},
		{
			symbol:     "matic",
			normalized: "MATIC",
		},
		{
			symbol:     "weth",
			normalized: "ETH",
		},
		{
			symbol:     "DAI.B",
			normalized: "DAI",
		},
	}

	for _, tc := range tests {
		t.Run(tc.symbol, func(t *testing.T) {
			normalized := NormalizeTokenSymbol(tc.symbol)
			assert.Equal(t, tc.normalized, normalized)
		})
	}
}

func TestSafeGasCalc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		gasUsed  string
		gasPrice string
		expected float64
	}{
		{name: "simple transfer at 1 gwei", gasUsed: "21000", gasPrice: "1000000000", expected: 0.000021},
		{name: "empty gas used", gasUsed: "", gasPrice: "1000000000", expected: 0},
		{name: "empty gas price", gasUsed: "21000", gasPrice: "", expected: 0},
		{name: "non numeric", gasUsed: "abc", gasPrice: "1000000000", expected: 0},
		{name: "negative", gasUsed: "-5", gasPrice: "1000000000", expected: 0},
		{name: "hex operands", gasUsed: "0x5208", gasPrice: "0x3b9aca00", expected: 0.000021},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() { SafeGasCalc(tc.gasUsed, tc.gasPrice) })
			assert.InDelta(t, tc.expected, SafeGasCalc(tc.gasUsed, tc.gasPrice), 1e-12)
		})
	}
}

func TestGasCostWeiDoesNotOverflow(t *testing.T) {
	// Both operands exceed uint64; the product must stay exact.
	cost := GasCostWei("100000000000000000000", "300000000000000000000")
	expected, ok := new(big.Int).SetString("30000000000000000000000000000000000000000", 10)
	require.True(t, ok)
	assert.Equal(t, 0, expected.Cmp(cost))
}

func TestToUnits(t *testing.T) {
	assert.Equal(t, "1.5", ToUnits("1500000", 6).String())
	assert.Equal(t, "2", ToUnits("2000000000000000000", DefaultDecimals).String())
	assert.Equal(t, "2", ToUnits("2000000000000000000", -1).String())
	assert.True(t, ToUnits("garbage", 6).IsZero())
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.2346, Round(1.23456, 4))
	assert.Equal(t, 10.01, Round(10.005, 2))
}
