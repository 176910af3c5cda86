package token

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultDecimals applies when a transfer does not report its token decimals.
const DefaultDecimals = 18

// NativeDecimals is the decimals of the chain's native asset (wei -> ETH).
const NativeDecimals = 18

// NormalizeTokenSymbol normalizes token symbols
// like "USDC.E" or "USDbC" to their canonical equivalents (e.g., "USDC").
func NormalizeTokenSymbol(symbol string) string {
	upper := strings.ToUpper(strings.TrimSpace(symbol))
	switch upper {
	case "USDC.E", "USDBC":
		return "USDC"
	case "WETH":
		return "ETH"
	default:
		return strings.Split(upper, ".")[0]
	}
}

// ParseAmount parses a non-negative integer amount. Decimal strings and
// 0x-prefixed hex are accepted; anything else reports false.
func ParseAmount(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
		if s == "" {
			return nil, false
		}
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok || v.Sign() < 0 {
		return nil, false
	}
	return v, true
}

// GasCostWei returns gasUsed * gasPrice. Unparseable operands yield zero.
func GasCostWei(gasUsed, gasPrice string) *big.Int {
	used, ok := ParseAmount(gasUsed)
	if !ok {
		return new(big.Int)
	}
	price, ok := ParseAmount(gasPrice)
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Mul(used, price)
}

// SafeGasCalc returns the gas cost in native units (ETH). It never panics:
// empty or non-numeric inputs cost 0.
func SafeGasCalc(gasUsed, gasPrice string) float64 {
	return WeiToEther(GasCostWei(gasUsed, gasPrice)).InexactFloat64()
}

// WeiToEther converts a wei amount into an exact decimal ether amount.
func WeiToEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -NativeDecimals)
}

// ToUnits converts a raw integer amount into token units (value / 10^decimals).
func ToUnits(value string, decimals int) decimal.Decimal {
	v, ok := ParseAmount(value)
	if !ok {
		return decimal.Zero
	}
	if decimals < 0 {
		decimals = DefaultDecimals
	}
	return decimal.NewFromBigInt(v, -int32(decimals))
}

// Round rounds a display value half away from zero.
func Round(f float64, places int32) float64 {
	return decimal.NewFromFloat(f).Round(places).InexactFloat64()
}
