package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/estensen/wallet-wrapped/internal/models"
)

// SnapshotLoader loads wrapped snapshots into ClickHouse.
type SnapshotLoader struct {
	Conn clickhouse.Conn
}

func NewSnapshotLoader(conn clickhouse.Conn) *SnapshotLoader {
	return &SnapshotLoader{
		Conn: conn,
	}
}

// Load inserts snapshots in a single batch.
func (l *SnapshotLoader) Load(ctx context.Context, snapshots []models.WrappedSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	batch, err := l.Conn.PrepareBatch(ctx, "INSERT INTO wrapped_snapshots")
	if err != nil {
		return fmt.Errorf("error preparing ClickHouse batch: %w", err)
	}

	for _, snapshot := range snapshots {
		if err := batch.AppendStruct(&snapshot); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("error appending to ClickHouse batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("error sending batch to ClickHouse: %w", err)
	}
	return nil
}

// History returns the stored snapshots of an address, newest first.
func (l *SnapshotLoader) History(ctx context.Context, address string) ([]models.WrappedSnapshot, error) {
	snapshots, err := FetchSnapshots(ctx, l.Conn, strings.ToLower(address))
	if err != nil {
		return nil, err
	}
	if snapshots == nil {
		snapshots = []models.WrappedSnapshot{}
	}
	return snapshots, nil
}
