package database

import (
	"context"
	"fmt"
	"math"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/estensen/wallet-wrapped/internal/models"
)

// DefaultMinPopulation is the number of distinct wallets required before
// stored snapshots are trusted over the fixed percentile table.
const DefaultMinPopulation = 100

// PercentileLookup ranks an in-year transaction count against the latest
// snapshot of every wallet for the same year.
type PercentileLookup struct {
	Conn          clickhouse.Conn
	MinPopulation uint64
}

func NewPercentileLookup(conn clickhouse.Conn) *PercentileLookup {
	return &PercentileLookup{Conn: conn, MinPopulation: DefaultMinPopulation}
}

const percentileQuery = `
	SELECT
		countIf(total_transactions < ?) AS below,
		count() AS total
	FROM (
		SELECT address, argMax(total_transactions, computed_at) AS total_transactions
		FROM wrapped_snapshots
		WHERE year = ?
		GROUP BY address
	)
	`

// PercentileForTxCount reports ok=false while the population is too small.
func (p *PercentileLookup) PercentileForTxCount(ctx context.Context, year, count int) (int, bool, error) {
	if count < 0 {
		count = 0
	}
	if year < 0 || year > math.MaxUint16 {
		return 0, false, nil
	}

	var below, total uint64
	if err := p.Conn.QueryRow(ctx, percentileQuery, uint64(count), uint16(year)).Scan(&below, &total); err != nil {
		return 0, false, fmt.Errorf("error querying percentile: %w", err)
	}
	if total == 0 || total < p.MinPopulation {
		return 0, false, nil
	}
	return int(100 * below / total), true, nil
}

// FetchSnapshots returns every stored snapshot of an address.
func FetchSnapshots(ctx context.Context, conn clickhouse.Conn, address string) ([]models.WrappedSnapshot, error) {
	var snapshots []models.WrappedSnapshot
	query := `
        SELECT *
        FROM wrapped_snapshots
        WHERE address = ?
        ORDER BY computed_at DESC
        `

	if err := conn.Select(ctx, &snapshots, query, address); err != nil {
		return nil, fmt.Errorf("error executing query '%s': %w", query, err)
	}
	return snapshots, nil
}
