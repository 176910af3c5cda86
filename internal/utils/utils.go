package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/estensen/wallet-wrapped/internal/models"
	"github.com/estensen/wallet-wrapped/internal/pipeline"
)

const dateLayout = "2006-01-02"

// ShortAddress abbreviates an address to its first six and last four characters.
func ShortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// Label prefers the display name over the address.
func Label(address, displayName string) string {
	if displayName != "" {
		return displayName
	}
	return ShortAddress(address)
}

func FormatUSD(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func formatPointer(p *models.TxPointer) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("%s (%s)", p.Date, ShortAddress(p.Hash))
}

func check(done bool) string {
	if done {
		return "x"
	}
	return " "
}

// DisplayStats prints wallet statistics and the quest checklist as tables.
func DisplayStats(w io.Writer, r pipeline.StatsResult) {
	s := r.Stats
	fmt.Fprintf(w, "Wallet stats for %s:\n", Label(s.Address, s.DisplayName))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Transactions", s.TotalTransactions},
		{"Unique days", s.UniqueDays},
		{"Unique protocols", s.UniqueProtocols},
		{"Distinct tokens", s.DistinctTokens},
		{"Volume", FormatUSD(s.TotalVolumeUSD)},
		{"Gas spent (ETH)", fmt.Sprintf("%.4f", s.GasSpentETH)},
		{"NFT mints", s.NFTMints},
		{"Bridge transactions", s.BridgeTransactions},
		{"First transaction", s.FirstTxDate.Format(dateLayout)},
		{"Wallet age (days)", s.WalletAgeDays},
		{"Percentile", fmt.Sprintf("%d (%s)", r.Percentile, r.Tier)},
	})
	t.Render()

	fmt.Fprintf(w, "Score: %d (level %d, %d/%d requirements)\n",
		r.Score.Total, r.Score.Level, r.Score.CompletedRequirements, r.Score.TotalRequirements)

	checklist := table.NewWriter()
	checklist.SetOutputMirror(w)
	checklist.AppendHeader(table.Row{"Level", "Requirement", "Done"})
	for _, item := range r.Score.Checklist {
		checklist.AppendRow(table.Row{item.Level, item.Description, check(item.Completed)})
	}
	checklist.Render()
}

// DisplayWrapped prints the year in review as tables.
func DisplayWrapped(w io.Writer, r pipeline.WrappedReport) {
	m := r.Metrics
	fmt.Fprintf(w, "%d Wrapped for %s: %s %s\n", m.Year, Label(m.Address, m.DisplayName), m.Tribe.Emoji, m.Tribe.Name)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Transactions", m.TotalTransactions},
		{"Days active", m.UniqueDaysActive},
		{"Longest streak", m.LongestStreak},
		{"Current streak", m.CurrentStreak},
		{"First transaction ever", formatPointer(m.FirstEverTransaction)},
		{"First transaction of the year", formatPointer(m.FirstTransactionOfYear)},
		{"Most active month", m.MostActiveMonth},
		{"Most active day", m.MostActiveDayOfWeek},
		{"Most active time", m.MostActiveTimeOfDay},
		{"Favorite protocol", m.FavoriteProtocol},
		{"NFTs minted / received", fmt.Sprintf("%d / %d", m.NFTsMinted, m.NFTsReceived)},
		{"Volume", FormatUSD(m.TotalVolumeUSD)},
		{"Gas spent", FormatUSD(m.GasSpentUSD)},
		{"Gas saved vs mainnet", fmt.Sprintf("%s (%s)", FormatUSD(m.GasSavedUSD), m.GasSavedEquivalent)},
		{"Lucky transaction", formatPointer(m.LuckyTransaction)},
		{"Percentile", fmt.Sprintf("%d (%s)", r.Percentile, r.Tier)},
	})
	t.Render()

	if len(m.ProtocolBreakdown) > 0 {
		protocols := table.NewWriter()
		protocols.SetOutputMirror(w)
		protocols.AppendHeader(table.Row{"Protocol", "Transactions", "Share"})
		for _, p := range m.ProtocolBreakdown {
			protocols.AppendRow(table.Row{p.Name, p.Count, fmt.Sprintf("%d%%", p.Percentage)})
		}
		protocols.Render()
	}

	earned := make([]string, 0, len(m.Badges))
	for _, b := range m.Badges {
		if b.Earned {
			earned = append(earned, b.Name)
		}
	}
	if len(earned) == 0 {
		earned = append(earned, "none yet")
	}
	fmt.Fprintf(w, "Badges: %s\n", strings.Join(earned, ", "))
}
