package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Addr     []string
	Database string
	Username string
	Password string
}

// NewClickHouseConnection opens and pings a ClickHouse connection.
func NewClickHouseConnection(ctx context.Context, cfg Config) (clickhouse.Conn, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: cfg.Addr,
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ClickHouse ping failed: %w", err)
	}

	log.Info().Strs("addr", cfg.Addr).Str("database", cfg.Database).Msg("connected to ClickHouse")
	return conn, nil
}

const createSnapshotsTable = `
	CREATE TABLE IF NOT EXISTS wrapped_snapshots (
		run_id             String,
		address            String,
		year               UInt16,
		computed_at        DateTime,
		total_transactions UInt64,
		unique_days_active UInt32,
		longest_streak     UInt32,
		tribe_id           LowCardinality(String),
		gas_saved_usd      Float64,
		total_volume_usd   Float64
	) ENGINE = ReplacingMergeTree(computed_at)
	ORDER BY (year, address)
	`

// EnsureSchema creates the tables the service writes to.
func EnsureSchema(ctx context.Context, conn clickhouse.Conn) error {
	if err := conn.Exec(ctx, createSnapshotsTable); err != nil {
		return fmt.Errorf("error creating wrapped_snapshots: %w", err)
	}
	return nil
}
