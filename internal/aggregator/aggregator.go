package aggregator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/estensen/wallet-wrapped/internal/models"
	"github.com/estensen/wallet-wrapped/internal/parser"
	"github.com/estensen/wallet-wrapped/internal/protocol"
	"github.com/estensen/wallet-wrapped/internal/token"
)

var ErrPriceNotFound = errors.New("price not found")

type Aggregator interface {
	Aggregate(transactions []models.CanonicalTransaction, tokenTransfers []models.TokenTransfer, nftTransfers []models.NFTTransfer, prices map[string]float64, opts Options) models.WalletStatistics
}

// Options carries the wallet context and authoritative values from dedicated
// lookups. Overrides are used verbatim when set.
type Options struct {
	Address string
	// Now anchors the empty-wallet first date and the wallet age.
	Now                 time.Time
	TxCountOverride     *int
	FirstTxDateOverride *time.Time
	DisplayName         string
	BalanceETH          float64
}

type SimpleAggregator struct{}

func NewAggregator() *SimpleAggregator {
	return &SimpleAggregator{}
}

// Aggregate derives wallet statistics from the canonical streams. Prices are
// USD per token unit keyed by lower-case contract address or symbol; a nil
// map sums raw token amounts instead.
func (a *SimpleAggregator) Aggregate(transactions []models.CanonicalTransaction, tokenTransfers []models.TokenTransfer, nftTransfers []models.NFTTransfer, prices map[string]float64, opts Options) models.WalletStatistics {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	stats := models.WalletStatistics{
		Address:     opts.Address,
		DisplayName: opts.DisplayName,
		BalanceETH:  opts.BalanceETH,
	}

	if len(transactions) == 0 && len(tokenTransfers) == 0 {
		stats.FirstTxDate = now
		return stats
	}

	counterparties := make(map[string]struct{})
	for _, txn := range transactions {
		to := strings.ToLower(txn.To)
		if to != "" {
			counterparties[to] = struct{}{}
		}
		if p, ok := protocol.Lookup(to); ok {
			switch p.Category {
			case protocol.CategoryDEX:
				stats.HasDEXActivity = true
			case protocol.CategoryLending:
				stats.HasLendingActivity = true
			case protocol.CategoryBridge:
				stats.BridgeTransactions++
			}
		}
	}
	stats.UniqueProtocols = len(counterparties)

	stats.GasSpentETH = a.gasSpent(transactions).Round(4).InexactFloat64()
	stats.TotalVolumeUSD = token.Round(a.tokenVolume(tokenTransfers, prices), 2)
	stats.DistinctTokens = distinctContracts(tokenTransfers)
	stats.NFTMints = countMints(nftTransfers, opts.Address)
	stats.HasNFTActivity = len(nftTransfers) > 0

	timestamps := activityTimestamps(transactions, tokenTransfers)
	stats.UniqueDays = uniqueDays(timestamps)

	switch {
	case opts.FirstTxDateOverride != nil:
		stats.FirstTxDate = opts.FirstTxDateOverride.UTC()
	case len(timestamps) > 0:
		stats.FirstTxDate = time.Unix(timestamps[0], 0).UTC()
	default:
		stats.FirstTxDate = now
	}
	if age := now.Sub(stats.FirstTxDate); age > 0 {
		stats.WalletAgeDays = int(age.Hours() / 24)
	}

	if opts.TxCountOverride != nil {
		stats.TotalTransactions = *opts.TxCountOverride
	} else {
		// Token transfers of an already counted transaction are counted again.
		stats.TotalTransactions = len(transactions) + len(tokenTransfers)
	}

	return stats
}

// gasSpent sums gasUsed*gasPrice in wei and converts to ETH once at the end.
func (a *SimpleAggregator) gasSpent(transactions []models.CanonicalTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range transactions {
		total = total.Add(decimal.NewFromBigInt(token.GasCostWei(txn.GasUsed, txn.GasPrice), 0))
	}
	return total.Shift(-token.NativeDecimals)
}

func (a *SimpleAggregator) tokenVolume(transfers []models.TokenTransfer, prices map[string]float64) float64 {
	volume := decimal.Zero
	for _, transfer := range transfers {
		decimals := token.DefaultDecimals
		if transfer.Decimals != nil {
			decimals = *transfer.Decimals
		}
		amount := token.ToUnits(transfer.Value, decimals)

		if prices == nil {
			volume = volume.Add(amount)
			continue
		}

		priceUSD, err := a.getPriceUSD(transfer.ContractAddress, transfer.Symbol, prices)
		if err != nil {
			log.Debug().Err(err).Str("hash", transfer.Hash).Msg("skipping unpriced token transfer")
			continue
		}
		volume = volume.Add(amount.Mul(decimal.NewFromFloat(priceUSD)))
	}
	return volume.InexactFloat64()
}

// getPriceUSD resolves a price by contract, then by normalized symbol.
// Stablecoins without a quote are valued at one dollar.
func (a *SimpleAggregator) getPriceUSD(contract, symbol string, prices map[string]float64) (float64, error) {
	if priceUSD, found := prices[strings.ToLower(contract)]; found {
		return priceUSD, nil
	}
	if symbol != "" {
		if priceUSD, found := prices[token.NormalizeTokenSymbol(symbol)]; found {
			return priceUSD, nil
		}
	}
	if protocol.IsStablecoin(contract) {
		return 1, nil
	}
	return 0, fmt.Errorf("%w: contract %s (symbol %q)", ErrPriceNotFound, contract, symbol)
}

func distinctContracts(transfers []models.TokenTransfer) int {
	contracts := make(map[string]struct{})
	for _, transfer := range transfers {
		if transfer.ContractAddress != "" {
			contracts[strings.ToLower(transfer.ContractAddress)] = struct{}{}
		}
	}
	return len(contracts)
}

// countMints counts NFTs minted to the wallet. Without an address every
// mint in the stream counts.
func countMints(transfers []models.NFTTransfer, address string) int {
	mints := 0
	for _, transfer := range transfers {
		if !protocol.IsZeroAddress(transfer.From) {
			continue
		}
		if address == "" || strings.EqualFold(transfer.To, address) {
			mints++
		}
	}
	return mints
}

// activityTimestamps returns the valid timestamps of the merged
// transaction and token-transfer streams, sorted ascending.
func activityTimestamps(transactions []models.CanonicalTransaction, transfers []models.TokenTransfer) []int64 {
	timestamps := make([]int64, 0, len(transactions)+len(transfers))
	for _, txn := range transactions {
		if parser.IsValidTimestamp(txn.TimestampSeconds) {
			timestamps = append(timestamps, txn.TimestampSeconds)
		}
	}
	for _, transfer := range transfers {
		if parser.IsValidTimestamp(transfer.TimestampSeconds) {
			timestamps = append(timestamps, transfer.TimestampSeconds)
		}
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })
	return timestamps
}

func uniqueDays(timestamps []int64) int {
	days := make(map[string]struct{})
	for _, ts := range timestamps {
		days[time.Unix(ts, 0).UTC().Format("2006-01-02")] = struct{}{}
	}
	return len(days)
}
