package wrapped

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estensen/wallet-wrapped/internal/models"
)

const (
	wallet    = "0x1111111111111111111111111111111111111111"
	stranger  = "0x2222222222222222222222222222222222222222"
	uniswap   = "0x2626664c2603336e57b271c5c0b26f421741e481"
	aave      = "0xa238dd80c259a72e81d7e4664a9801593f98d1c5"
	bridge    = "0x4200000000000000000000000000000000000010"
	zora      = "0x777777c338d93e2c7adf08d102d45ca7cc4ed021"
	usdc      = "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"
	randomNFT = "0x3333333333333333333333333333333333333333"
)

func at(t *testing.T, value string) int64 {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts.Unix()
}

func tx(t *testing.T, hash, when, to string) models.CanonicalTransaction {
	return models.CanonicalTransaction{
		Hash:             hash,
		TimestampSeconds: at(t, when),
		From:             wallet,
		To:               to,
		Value:            "0",
		GasUsed:          "21000",
		GasPrice:         "1000000000",
	}
}

func endOfYear() time.Time {
	return time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
}

func TestComputeEndToEnd(t *testing.T) {
	in := Input{
		Address: wallet,
		Year:    2025,
		Transactions: []models.CanonicalTransaction{
			tx(t, "0x456def", "2025-02-20T08:30:00Z", stranger),
			tx(t, "0x123abc", "2025-01-15T12:00:00Z", stranger),
		},
		ETHPriceUSD: 2000,
		Now:         endOfYear(),
	}

	m := Compute(in)

	assert.Equal(t, 2025, m.Year)
	assert.Equal(t, 2, m.TotalTransactions)
	assert.Equal(t, 2, m.UniqueDaysActive)
	require.NotNil(t, m.FirstEverTransaction)
	assert.Equal(t, "0x123abc", m.FirstEverTransaction.Hash)
	assert.Equal(t, "2025-01-15", m.FirstEverTransaction.Date)
	assert.True(t, m.FirstEverTransaction.Timestamp.Equal(time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)))
	require.NotNil(t, m.FirstTransactionOfYear)
	assert.Equal(t, "0x123abc", m.FirstTransactionOfYear.Hash)

	assert.Equal(t, 1, m.LongestStreak)
	assert.Equal(t, 0, m.CurrentStreak)
	assert.Equal(t, "January", m.MostActiveMonth)
	assert.Equal(t, "Wednesday", m.MostActiveDayOfWeek)
	assert.Equal(t, "Afternoon", m.MostActiveTimeOfDay)
	assert.False(t, m.IsOG)
	assert.Equal(t, 349, m.WalletAgeDays)
}

func TestComputeEmptyInput(t *testing.T) {
	m := Compute(Input{Address: wallet, Year: 2025, Now: endOfYear()})

	assert.Zero(t, m.TotalTransactions)
	assert.Zero(t, m.UniqueDaysActive)
	assert.Nil(t, m.FirstEverTransaction)
	assert.Nil(t, m.FirstTransactionOfYear)
	assert.Nil(t, m.LuckyTransaction)
	assert.Nil(t, m.BusiestDay)
	assert.Equal(t, notAvail, m.MostActiveMonth)
	assert.Equal(t, notAvail, m.MostActiveDayOfWeek)
	assert.Equal(t, notAvail, m.MostActiveTimeOfDay)
	assert.Equal(t, notAvail, m.FavoriteProtocol)
	assert.Equal(t, notAvail, m.GasSavedEquivalent)
	assert.NotNil(t, m.ProtocolBreakdown)
	assert.Empty(t, m.ProtocolBreakdown)
	assert.Equal(t, TribeNewcomer, m.Tribe.ID)
	require.Len(t, m.Badges, len(badgeDefs))
	for _, b := range m.Badges {
		assert.False(t, b.Earned, b.ID)
	}
}

func TestComputeYearWindow(t *testing.T) {
	now := time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)
	txs := []models.CanonicalTransaction{
		tx(t, "0xold", "2023-11-02T10:00:00Z", stranger),
		tx(t, "0xlastyear", "2024-12-31T23:59:59Z", stranger),
		tx(t, "0xstart", "2025-01-01T00:00:00Z", stranger),
		tx(t, "0xfuture", "2025-07-01T00:00:00Z", stranger),
		{Hash: "0xzero", TimestampSeconds: 0},
		{Hash: "0xneg", TimestampSeconds: -1},
	}

	m := Compute(Input{Address: wallet, Year: 2025, Transactions: txs, Now: now})

	assert.Equal(t, 1, m.TotalTransactions)
	require.NotNil(t, m.FirstTransactionOfYear)
	assert.Equal(t, "0xstart", m.FirstTransactionOfYear.Hash)
	require.NotNil(t, m.FirstEverTransaction)
	assert.Equal(t, "0xold", m.FirstEverTransaction.Hash)
	assert.True(t, m.IsOG)
}

func TestComputeWholeYearWhenNowIsZero(t *testing.T) {
	txs := []models.CanonicalTransaction{
		tx(t, "0xa", "2025-12-31T23:00:00Z", stranger),
		tx(t, "0xb", "2026-01-01T00:00:00Z", stranger),
	}

	m := Compute(Input{Address: wallet, Year: 2025, Transactions: txs})
	assert.Equal(t, 1, m.TotalTransactions)
}

func TestStreaks(t *testing.T) {
	var txs []models.CanonicalTransaction
	for i, day := range []string{"2025-03-01", "2025-03-02", "2025-03-02", "2025-03-03", "2025-03-10", "2025-03-11"} {
		txs = append(txs, tx(t, fmt.Sprintf("0x%d", i), day+"T10:00:00Z", stranger))
	}

	tests := []struct {
		name    string
		now     time.Time
		longest int
		current int
	}{
		{name: "active today", now: time.Date(2025, time.March, 11, 18, 0, 0, 0, time.UTC), longest: 3, current: 2},
		{name: "active yesterday", now: time.Date(2025, time.March, 12, 1, 0, 0, 0, time.UTC), longest: 3, current: 2},
		{name: "broken", now: time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC), longest: 3, current: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := Compute(Input{Address: wallet, Year: 2025, Transactions: txs, Now: tc.now})
			assert.Equal(t, tc.longest, m.LongestStreak)
			assert.Equal(t, tc.current, m.CurrentStreak)
			assert.Equal(t, 5, m.UniqueDaysActive)
			require.NotNil(t, m.BusiestDay)
			assert.Equal(t, models.DayCount{Date: "2025-03-02", Count: 2}, *m.BusiestDay)
		})
	}
}

func TestTimeOfDay(t *testing.T) {
	tests := map[int]string{
		0: "Night", 4: "Night", 5: "Morning", 11: "Morning", 12: "Afternoon",
		16: "Afternoon", 17: "Evening", 20: "Evening", 21: "Night", 23: "Night",
	}
	for hour, expected := range tests {
		assert.Equal(t, expected, timeOfDay(hour), "hour %d", hour)
	}
}

func TestNFTScamFilter(t *testing.T) {
	txs := []models.CanonicalTransaction{tx(t, "0xaaa", "2025-04-01T10:00:00Z", randomNFT)}
	nft := func(hash, from, to, contract string) models.NFTTransfer {
		return models.NFTTransfer{
			Hash:             hash,
			TimestampSeconds: at(t, "2025-04-01T10:00:00Z"),
			From:             from,
			To:               to,
			ContractAddress:  contract,
		}
	}
	zero := "0x0000000000000000000000000000000000000000"

	transfers := []models.NFTTransfer{
		nft("0xaaa", zero, wallet, randomNFT),     // own mint
		nft("0xbbb", zero, wallet, randomNFT),     // unsolicited airdrop
		nft("0xccc", zero, wallet, zora),          // sponsored marketplace mint
		nft("0xAAA", stranger, wallet, randomNFT), // bought
		nft("0xddd", stranger, wallet, randomNFT), // spam
		nft("0xaaa", zero, stranger, randomNFT),   // someone else's
	}

	m := Compute(Input{Address: wallet, Year: 2025, Transactions: txs, NFTTransfers: transfers, Now: endOfYear()})
	assert.Equal(t, 2, m.NFTsMinted)
	assert.Equal(t, 1, m.NFTsReceived)

	onlyScam := Compute(Input{Address: wallet, Year: 2025, Transactions: txs, NFTTransfers: transfers[1:2], Now: endOfYear()})
	assert.Zero(t, onlyScam.NFTsMinted)
	assert.Zero(t, onlyScam.NFTsReceived)
}

func TestProtocolBreakdown(t *testing.T) {
	txs := []models.CanonicalTransaction{
		tx(t, "0x1", "2025-05-01T10:00:00Z", uniswap),
		tx(t, "0x2", "2025-05-01T11:00:00Z", aave),
		tx(t, "0x3", "2025-05-02T10:00:00Z", uniswap),
		tx(t, "0x4", "2025-05-03T10:00:00Z", bridge),
		tx(t, "0x5", "2025-05-04T10:00:00Z", uniswap),
		tx(t, "0x6", "2025-05-05T10:00:00Z", stranger),
	}

	m := Compute(Input{Address: wallet, Year: 2025, Transactions: txs, Now: endOfYear()})

	assert.Equal(t, 3, m.UniqueProtocols)
	assert.Equal(t, "Uniswap", m.FavoriteProtocol)
	assert.Equal(t, []models.ProtocolShare{
		{Name: "Uniswap", Count: 3, Percentage: 60},
		{Name: "Aave", Count: 1, Percentage: 20},
		{Name: "Base Bridge", Count: 1, Percentage: 20},
	}, m.ProtocolBreakdown)
}

func TestGasSavings(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		gasPrice   string
		spentETH   float64
		spentUSD   float64
		l1CostUSD  float64
		savedUSD   float64
		equivalent string
		gasSaver   bool
	}{
		{
			name: "two cheap transactions", count: 2, gasPrice: "1000000000",
			spentETH: 0.000042, spentUSD: 0.08, l1CostUSD: 5, savedUSD: 4.92,
			equivalent: "less than a coffee",
		},
		{
			name: "hundred cheap transactions", count: 100, gasPrice: "1000000000",
			spentETH: 0.0021, spentUSD: 4.2, l1CostUSD: 250, savedUSD: 245.8,
			equivalent: "4 nice dinners", gasSaver: true,
		},
		{
			name: "more expensive than mainnet", count: 1, gasPrice: "1000000000000",
			spentETH: 0.021, spentUSD: 42, l1CostUSD: 2.5, savedUSD: 0,
			equivalent: notAvail,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var txs []models.CanonicalTransaction
			for i := 0; i < tc.count; i++ {
				txn := tx(t, fmt.Sprintf("0x%d", i), "2025-06-01T10:00:00Z", stranger)
				txn.GasPrice = tc.gasPrice
				txs = append(txs, txn)
			}

			m := Compute(Input{Address: wallet, Year: 2025, Transactions: txs, ETHPriceUSD: 2000, Now: endOfYear()})

			assert.InDelta(t, tc.spentETH, m.GasSpentETH, 1e-9)
			assert.InDelta(t, tc.spentUSD, m.GasSpentUSD, 1e-9)
			assert.InDelta(t, tc.l1CostUSD, m.EstimatedL1CostUSD, 1e-9)
			assert.InDelta(t, tc.savedUSD, m.GasSavedUSD, 1e-9)
			assert.GreaterOrEqual(t, m.GasSavedUSD, 0.0)
			assert.Equal(t, tc.equivalent, m.GasSavedEquivalent)
			assert.Equal(t, tc.gasSaver, badge(t, m, "gas-saver").Earned)
		})
	}
}

func TestGasSavedEquivalent(t *testing.T) {
	assert.Equal(t, notAvail, gasSavedEquivalent(0))
	assert.Equal(t, "less than a coffee", gasSavedEquivalent(4.99))
	assert.Equal(t, "1 coffee", gasSavedEquivalent(5))
	assert.Equal(t, "2 movie tickets", gasSavedEquivalent(30))
	assert.Equal(t, "1 round-trip flight", gasSavedEquivalent(1500))
}

func TestLuckyTransaction(t *testing.T) {
	a := tx(t, "0xa", "2025-01-02T10:00:00Z", stranger)
	a.GasPrice = "3000000000"
	b := tx(t, "0xb", "2025-01-03T10:00:00Z", stranger)
	c := tx(t, "0xc", "2025-01-04T10:00:00Z", stranger)
	garbage := tx(t, "0xd", "2025-01-05T10:00:00Z", stranger)
	garbage.GasUsed = "not-a-number"

	m := Compute(Input{Address: wallet, Year: 2025, Transactions: []models.CanonicalTransaction{a, b, c}, Now: endOfYear()})
	require.NotNil(t, m.LuckyTransaction)
	assert.Equal(t, "0xb", m.LuckyTransaction.Hash)
	assert.InDelta(t, 0.000021, m.LuckyTransaction.GasCost, 1e-12)

	withGarbage := Compute(Input{Address: wallet, Year: 2025, Transactions: []models.CanonicalTransaction{a, b, garbage}, Now: endOfYear()})
	require.NotNil(t, withGarbage.LuckyTransaction)
	assert.Equal(t, "0xd", withGarbage.LuckyTransaction.Hash)
}

func TestVolume(t *testing.T) {
	swapETH := tx(t, "0xa1", "2025-08-01T10:00:00Z", uniswap)
	swapETH.Value = "1000000000000000000"
	swapUSDC := tx(t, "0xb1", "2025-08-02T10:00:00Z", uniswap)

	six := 6
	transfer := func(hash, contract, value string) models.TokenTransfer {
		return models.TokenTransfer{
			Hash:             hash,
			TimestampSeconds: at(t, "2025-08-02T10:00:00Z"),
			From:             wallet,
			To:               stranger,
			ContractAddress:  contract,
			Value:            value,
			Decimals:         &six,
		}
	}
	transfers := []models.TokenTransfer{
		transfer("0xa1", usdc, "2000000000"),
		transfer("0xb1", usdc, "500000000"),
		transfer("0xc1", usdc, "100000000"),
		transfer("0xc2", randomNFT, "999000000"),
	}

	m := Compute(Input{
		Address:        wallet,
		Year:           2025,
		Transactions:   []models.CanonicalTransaction{swapETH, swapUSDC},
		TokenTransfers: transfers,
		ETHPriceUSD:    2000,
		Now:            endOfYear(),
	})

	assert.InDelta(t, 2600, m.TotalVolumeUSD, 1e-9)
	assert.InDelta(t, 2500, m.SwapVolumeUSD, 1e-9)
	assert.Equal(t, 60, m.TribeScores[TribeDegen])
	assert.Equal(t, TribeDegen, m.Tribe.ID)
}

func TestScoreTribes(t *testing.T) {
	tests := []struct {
		name     string
		signals  tribeSignals
		expected string
		scores   map[string]int
	}{
		{
			name:     "nothing scores",
			signals:  tribeSignals{},
			expected: TribeNewcomer,
		},
		{
			name:     "farcaster user",
			signals:  tribeSignals{social: Social{HasFarcaster: true}, socialTxCount: 10},
			expected: TribeSocialite,
			scores:   map[string]int{TribeSocialite: 60},
		},
		{
			name:     "og with bonus",
			signals:  tribeSignals{isOG: true, walletAgeDays: 800, longestStreak: 30},
			expected: TribeOG,
			scores:   map[string]int{TribeOG: 90, TribeGrinder: 80},
		},
		{
			name:     "tie goes to the earlier tribe",
			signals:  tribeSignals{swapVolumeUSD: 100, nftsReceived: 1},
			expected: TribeDegen,
			scores:   map[string]int{TribeDegen: 40, TribeCollector: 40},
		},
		{
			name:     "collector mint bonus",
			signals:  tribeSignals{nftsMinted: 25, nftsReceived: 30, swapVolumeUSD: 50000},
			expected: TribeCollector,
			scores:   map[string]int{TribeCollector: 100, TribeDegen: 80},
		},
		{
			name:     "farmer",
			signals:  tribeSignals{lendingTxCount: 20, protocols: 6},
			expected: TribeFarmer,
			scores:   map[string]int{TribeFarmer: 80, TribeExplorer: 60},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			scores := scoreTribes(tc.signals)
			assert.Len(t, scores, len(tribeOrder))
			for id, expected := range tc.scores {
				assert.Equal(t, expected, scores[id], id)
			}
			assert.Equal(t, tc.expected, pickTribe(scores).ID)
		})
	}
}

func TestTribeInfo(t *testing.T) {
	for _, id := range append(tribeOrder, TribeNewcomer) {
		tribe, ok := TribeInfo(id)
		require.True(t, ok, id)
		assert.Equal(t, id, tribe.ID)
		assert.NotEmpty(t, tribe.Name)
	}
}

func TestBadges(t *testing.T) {
	m := models.WrappedMetrics{
		IsOG:            true,
		LongestStreak:   7,
		UniqueProtocols: 4,
		NFTsMinted:      5,
		TotalVolumeUSD:  10000,
		DisplayName:     "alice.base.eth",
	}

	earned := map[string]bool{}
	for _, b := range evaluateBadges(m) {
		earned[b.ID] = b.Earned
	}
	assert.Equal(t, map[string]bool{
		"og":                true,
		"streak-master":     true,
		"protocol-explorer": false,
		"nft-minter":        true,
		"gas-saver":         false,
		"whale":             true,
		"named":             true,
	}, earned)
}

func TestComputeIsIdempotent(t *testing.T) {
	in := Input{
		Address: wallet,
		Year:    2025,
		Transactions: []models.CanonicalTransaction{
			tx(t, "0x1", "2025-05-01T10:00:00Z", uniswap),
			tx(t, "0x2", "2025-05-02T22:00:00Z", aave),
		},
		ETHPriceUSD: 3100,
		Now:         endOfYear(),
	}
	assert.Equal(t, Compute(in), Compute(in))
}

func badge(t *testing.T, m models.WrappedMetrics, id string) models.Badge {
	t.Helper()
	for _, b := range m.Badges {
		if b.ID == id {
			return b
		}
	}
	t.Fatalf("badge %s not found", id)
	return models.Badge{}
}
