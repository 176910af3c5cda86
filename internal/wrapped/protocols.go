package wrapped

import (
	"math"
	"sort"

	"github.com/estensen/wallet-wrapped/internal/models"
	"github.com/estensen/wallet-wrapped/internal/protocol"
)

const topProtocols = 5

type usage struct {
	counts         map[string]int
	order          []string
	matched        int
	categoryCounts map[protocol.Category]int
}

// protocolUsage counts transactions sent to a known protocol contract.
func protocolUsage(txs []models.CanonicalTransaction) usage {
	u := usage{
		counts:         make(map[string]int),
		categoryCounts: make(map[protocol.Category]int),
	}
	for _, txn := range txs {
		p, ok := protocol.Lookup(txn.To)
		if !ok {
			continue
		}
		if _, seen := u.counts[p.Name]; !seen {
			u.order = append(u.order, p.Name)
		}
		u.counts[p.Name]++
		u.categoryCounts[p.Category]++
		u.matched++
	}
	return u
}

func (u usage) favorite() string {
	best, bestCount := notAvail, 0
	for _, name := range u.order {
		if u.counts[name] > bestCount {
			best, bestCount = name, u.counts[name]
		}
	}
	return best
}

// breakdown returns the top n protocols by count with their share of all
// matched transactions, rounded to whole percent.
func (u usage) breakdown(n int) []models.ProtocolShare {
	shares := make([]models.ProtocolShare, 0, len(u.order))
	if u.matched == 0 {
		return shares
	}
	for _, name := range u.order {
		count := u.counts[name]
		shares = append(shares, models.ProtocolShare{
			Name:       name,
			Count:      count,
			Percentage: int(math.Round(100 * float64(count) / float64(u.matched))),
		})
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].Count > shares[j].Count })
	if len(shares) > n {
		shares = shares[:n]
	}
	return shares
}
