package rank

import (
	"context"

	"github.com/rs/zerolog/log"
)

type band struct {
	min        int
	percentile int
}

// Bands are ordered from the highest threshold down; the first match wins.
var txCountBands = []band{
	{min: 2000, percentile: 99},
	{min: 1000, percentile: 95},
	{min: 500, percentile: 90},
	{min: 250, percentile: 80},
	{min: 100, percentile: 70},
	{min: 50, percentile: 60},
	{min: 20, percentile: 45},
	{min: 10, percentile: 30},
	{min: 1, percentile: 20},
}

var scoreBands = []band{
	{min: 90, percentile: 99},
	{min: 80, percentile: 95},
	{min: 70, percentile: 90},
	{min: 60, percentile: 80},
	{min: 50, percentile: 70},
	{min: 40, percentile: 60},
	{min: 30, percentile: 50},
	{min: 20, percentile: 35},
	{min: 10, percentile: 20},
}

// floorPercentile is reported for wallets below every band.
const floorPercentile = 10

func lookupBand(bands []band, value int) int {
	for _, b := range bands {
		if value >= b.min {
			return b.percentile
		}
	}
	return floorPercentile
}

// PercentileFromTxCount maps a transaction count to a 0-100 percentile.
func PercentileFromTxCount(count int) int {
	return lookupBand(txCountBands, count)
}

// PercentileFromScore maps a score to a 0-100 percentile. Scores above 100
// are read on the 0-1000 scale.
func PercentileFromScore(score int) int {
	if score > 100 {
		score /= 10
	}
	return lookupBand(scoreBands, score)
}

// Tier names the band a percentile falls into.
func Tier(percentile int) string {
	switch {
	case percentile >= 99:
		return "Top 1%"
	case percentile >= 95:
		return "Top 5%"
	case percentile >= 90:
		return "Top 10%"
	case percentile >= 75:
		return "Top 25%"
	case percentile >= 50:
		return "Top 50%"
	default:
		return "Rising"
	}
}

// Lookup is an external analytics source ranking an in-year transaction
// count against other wallets of the same year. ok reports whether it had
// an answer.
type Lookup interface {
	PercentileForTxCount(ctx context.Context, year, count int) (percentile int, ok bool, err error)
}

type Estimator struct {
	Lookup Lookup
}

func NewEstimator(lookup Lookup) *Estimator {
	return &Estimator{Lookup: lookup}
}

// FromTxCount ranks the transaction count of one year. The external lookup
// is used verbatim; the local table serves when it is absent, fails or has
// no answer.
func (e *Estimator) FromTxCount(ctx context.Context, year, count int) int {
	if e != nil && e.Lookup != nil {
		percentile, ok, err := e.Lookup.PercentileForTxCount(ctx, year, count)
		switch {
		case err != nil:
			log.Warn().Err(err).Int("year", year).Int("txCount", count).Msg("percentile lookup failed, using local estimate")
		case ok:
			return percentile
		}
	}
	return PercentileFromTxCount(count)
}
