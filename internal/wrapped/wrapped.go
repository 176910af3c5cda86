// Package wrapped computes the year-in-review summary for a wallet.
package wrapped

import (
	"sort"
	"strings"
	"time"

	"github.com/estensen/wallet-wrapped/internal/models"
	"github.com/estensen/wallet-wrapped/internal/parser"
	"github.com/estensen/wallet-wrapped/internal/protocol"
	"github.com/estensen/wallet-wrapped/internal/token"
)

const (
	dateLayout = "2006-01-02"
	notAvail   = "N/A"
)

// OGCutoff is the instant a wallet's first transaction must predate to be OG.
var OGCutoff = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Social carries signals resolved outside the wallet's own history.
type Social struct {
	HasFarcaster bool
	Followers    int
}

type Input struct {
	Address        string
	Year           int
	Transactions   []models.CanonicalTransaction
	TokenTransfers []models.TokenTransfer
	NFTTransfers   []models.NFTTransfer
	DisplayName    string
	ETHPriceUSD    float64
	// Now closes the year window. When zero the whole year is used.
	Now    time.Time
	Social Social
	// FirstActivity is the indexer's oldest transaction date. It wins over
	// the loaded history when older, since that history may be truncated.
	FirstActivity *time.Time
}

// window is the inclusive [start, end] range of the reviewed year.
type window struct {
	start time.Time
	end   time.Time
}

func (w window) contains(ts int64) bool {
	return parser.IsValidTimestamp(ts) && ts >= w.start.Unix() && ts <= w.end.Unix()
}

func newWindow(year int, now time.Time) window {
	if year == 0 {
		year = now.Year()
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	if now.IsZero() {
		now = start.AddDate(1, 0, 0).Add(-time.Second)
	}
	return window{start: start, end: now.UTC()}
}

// Compute derives the wrapped metrics. It reads no clock and performs no I/O,
// so identical input always yields identical output.
func Compute(in Input) models.WrappedMetrics {
	w := newWindow(in.Year, in.Now)

	out := models.WrappedMetrics{
		Address:     in.Address,
		DisplayName: in.DisplayName,
		Year:        w.start.Year(),
	}

	all := sortedValid(in.Transactions)
	yearTxs := make([]models.CanonicalTransaction, 0, len(all))
	for _, txn := range all {
		if w.contains(txn.TimestampSeconds) {
			yearTxs = append(yearTxs, txn)
		}
	}

	out.TotalTransactions = len(yearTxs)
	var first time.Time
	if len(all) > 0 {
		out.FirstEverTransaction = pointer(all[0])
		first = time.Unix(all[0].TimestampSeconds, 0).UTC()
	}
	if in.FirstActivity != nil && (first.IsZero() || in.FirstActivity.Before(first)) {
		first = in.FirstActivity.UTC()
	}
	if !first.IsZero() {
		out.IsOG = first.Before(OGCutoff)
		if age := w.end.Sub(first); age > 0 {
			out.WalletAgeDays = int(age.Hours() / 24)
		}
	}
	if len(yearTxs) > 0 {
		out.FirstTransactionOfYear = pointer(yearTxs[0])
	}

	days := activeDays(yearTxs)
	out.UniqueDaysActive = len(days)
	out.LongestStreak = longestStreak(days)
	out.CurrentStreak = currentStreak(days, w.end)

	out.MostActiveMonth = modal(yearTxs, func(t time.Time) string { return t.Month().String() })
	out.MostActiveDayOfWeek = modal(yearTxs, func(t time.Time) string { return t.Weekday().String() })
	out.MostActiveTimeOfDay = modal(yearTxs, func(t time.Time) string { return timeOfDay(t.Hour()) })
	out.BusiestDay = busiestDay(yearTxs)

	usage := protocolUsage(yearTxs)
	out.UniqueProtocols = len(usage.counts)
	out.FavoriteProtocol = usage.favorite()
	out.ProtocolBreakdown = usage.breakdown(topProtocols)

	nfts := classifyNFTs(in.Address, in.Transactions, in.NFTTransfers, w)
	out.NFTsMinted = nfts.minted
	out.NFTsReceived = nfts.received

	gas := computeGas(yearTxs, in.ETHPriceUSD)
	out.GasSpentETH = gas.spentETH
	out.GasSpentUSD = gas.spentUSD
	out.EstimatedL1CostUSD = gas.l1CostUSD
	out.GasSavedUSD = gas.savedUSD
	out.GasSavedEquivalent = gasSavedEquivalent(gas.savedUSD)
	out.LuckyTransaction = luckyTransaction(yearTxs)

	vol := computeVolume(yearTxs, in.TokenTransfers, in.ETHPriceUSD, w)
	out.TotalVolumeUSD = vol.totalUSD
	out.SwapVolumeUSD = vol.swapUSD

	signals := tribeSignals{
		swapVolumeUSD:  vol.swapUSD,
		swapCount:      usage.categoryCounts[protocol.CategoryDEX],
		nftsMinted:     nfts.minted,
		nftsReceived:   nfts.received,
		isOG:           out.IsOG,
		walletAgeDays:  out.WalletAgeDays,
		protocols:      out.UniqueProtocols,
		longestStreak:  out.LongestStreak,
		social:         in.Social,
		socialTxCount:  usage.categoryCounts[protocol.CategorySocial],
		lendingTxCount: usage.categoryCounts[protocol.CategoryLending],
	}
	out.TribeScores = scoreTribes(signals)
	out.Tribe = pickTribe(out.TribeScores)
	out.Badges = evaluateBadges(out)

	return out
}

// sortedValid returns the transactions with a valid timestamp, oldest first.
// Input order breaks ties so the result is stable.
func sortedValid(txs []models.CanonicalTransaction) []models.CanonicalTransaction {
	valid := make([]models.CanonicalTransaction, 0, len(txs))
	for _, txn := range txs {
		if parser.IsValidTimestamp(txn.TimestampSeconds) {
			valid = append(valid, txn)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].TimestampSeconds < valid[j].TimestampSeconds
	})
	return valid
}

func pointer(txn models.CanonicalTransaction) *models.TxPointer {
	ts := time.Unix(txn.TimestampSeconds, 0).UTC()
	return &models.TxPointer{
		Hash:      txn.Hash,
		Timestamp: ts,
		Date:      ts.Format(dateLayout),
		GasCost:   token.SafeGasCalc(txn.GasUsed, txn.GasPrice),
	}
}

func hashSet(txs []models.CanonicalTransaction) map[string]struct{} {
	set := make(map[string]struct{}, len(txs))
	for _, txn := range txs {
		if txn.Hash != "" {
			set[strings.ToLower(txn.Hash)] = struct{}{}
		}
	}
	return set
}
