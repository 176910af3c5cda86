package wrapped

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/estensen/wallet-wrapped/internal/models"
	"github.com/estensen/wallet-wrapped/internal/protocol"
	"github.com/estensen/wallet-wrapped/internal/token"
)

// L1CostPerTxUSD is the assumed mainnet fee of an average transaction.
const L1CostPerTxUSD = 2.5

type gasSummary struct {
	spentETH  float64
	spentUSD  float64
	l1CostUSD float64
	savedUSD  float64
}

func computeGas(txs []models.CanonicalTransaction, ethPriceUSD float64) gasSummary {
	wei := new(big.Int)
	for _, txn := range txs {
		wei.Add(wei, token.GasCostWei(txn.GasUsed, txn.GasPrice))
	}
	spent := token.WeiToEther(wei)
	spentUSD := spent.Mul(decimal.NewFromFloat(ethPriceUSD))
	l1Cost := decimal.NewFromFloat(L1CostPerTxUSD).Mul(decimal.NewFromInt(int64(len(txs))))

	saved := l1Cost.Sub(spentUSD)
	if saved.IsNegative() {
		saved = decimal.Zero
	}

	return gasSummary{
		spentETH:  spent.Round(6).InexactFloat64(),
		spentUSD:  spentUSD.Round(2).InexactFloat64(),
		l1CostUSD: l1Cost.Round(2).InexactFloat64(),
		savedUSD:  saved.Round(2).InexactFloat64(),
	}
}

type equivalent struct {
	priceUSD float64
	singular string
	plural   string
}

// Largest first.
var equivalents = []equivalent{
	{priceUSD: 1200, singular: "round-trip flight", plural: "round-trip flights"},
	{priceUSD: 60, singular: "nice dinner", plural: "nice dinners"},
	{priceUSD: 15, singular: "movie ticket", plural: "movie tickets"},
	{priceUSD: 5, singular: "coffee", plural: "coffees"},
}

func gasSavedEquivalent(savedUSD float64) string {
	if savedUSD <= 0 {
		return notAvail
	}
	for _, eq := range equivalents {
		if savedUSD < eq.priceUSD {
			continue
		}
		n := int(savedUSD / eq.priceUSD)
		if n == 1 {
			return "1 " + eq.singular
		}
		return fmt.Sprintf("%d %s", n, eq.plural)
	}
	return "less than a coffee"
}

// luckyTransaction is the cheapest transaction; the first one wins a tie.
func luckyTransaction(txs []models.CanonicalTransaction) *models.TxPointer {
	var (
		lucky    *models.CanonicalTransaction
		cheapest *big.Int
	)
	for i := range txs {
		cost := token.GasCostWei(txs[i].GasUsed, txs[i].GasPrice)
		if cheapest == nil || cost.Cmp(cheapest) < 0 {
			lucky, cheapest = &txs[i], cost
		}
	}
	if lucky == nil {
		return nil
	}
	return pointer(*lucky)
}

type volumeSummary struct {
	totalUSD float64
	swapUSD  float64
}

// computeVolume values native transfers at the ETH price and stablecoin
// transfers at one dollar. A swap paid in ETH is not counted again through
// its stablecoin leg.
func computeVolume(txs []models.CanonicalTransaction, transfers []models.TokenTransfer, ethPriceUSD float64, w window) volumeSummary {
	price := decimal.NewFromFloat(ethPriceUSD)
	total, swap := decimal.Zero, decimal.Zero

	swaps := make(map[string]struct{})
	nativePriced := make(map[string]struct{})
	for _, txn := range txs {
		hash := strings.ToLower(txn.Hash)
		isSwap := protocol.Is(txn.To, protocol.CategoryDEX)
		if isSwap {
			swaps[hash] = struct{}{}
		}

		value := token.ToUnits(txn.Value, token.NativeDecimals)
		if !value.IsPositive() {
			continue
		}
		usd := value.Mul(price)
		total = total.Add(usd)
		if isSwap {
			swap = swap.Add(usd)
		}
		nativePriced[hash] = struct{}{}
	}

	for _, transfer := range transfers {
		if !w.contains(transfer.TimestampSeconds) || !protocol.IsStablecoin(transfer.ContractAddress) {
			continue
		}
		hash := strings.ToLower(transfer.Hash)
		if _, ok := nativePriced[hash]; ok {
			continue
		}
		decimals := token.DefaultDecimals
		if transfer.Decimals != nil {
			decimals = *transfer.Decimals
		}
		usd := token.ToUnits(transfer.Value, decimals)
		total = total.Add(usd)
		if _, ok := swaps[hash]; ok {
			swap = swap.Add(usd)
		}
	}

	return volumeSummary{
		totalUSD: total.Round(2).InexactFloat64(),
		swapUSD:  swap.Round(2).InexactFloat64(),
	}
}
