package database

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/estensen/wallet-wrapped/internal/models"
	"github.com/estensen/wallet-wrapped/internal/storage"
)

type Loader interface {
	Load(ctx context.Context, snapshots []models.WrappedSnapshot) error
}

// SnapshotJob persists a wrapped run: a summary row in ClickHouse and the
// full report in object storage. Either sink may be nil.
type SnapshotJob struct {
	Loader  Loader
	Storage storage.Storage
	nowFn   func() time.Time
}

func NewSnapshotJob(loader Loader, storage storage.Storage) *SnapshotJob {
	return &SnapshotJob{
		Loader:  loader,
		Storage: storage,
		nowFn:   time.Now,
	}
}

// SaveWrapped stores the summary row and uploads the CSV and JSON reports.
func (j *SnapshotJob) SaveWrapped(ctx context.Context, runID string, m models.WrappedMetrics) error {
	if j.Loader != nil {
		if err := j.Loader.Load(ctx, []models.WrappedSnapshot{NewSnapshot(runID, m, j.nowFn())}); err != nil {
			return fmt.Errorf("error storing snapshot: %w", err)
		}
	}

	if j.Storage != nil {
		if err := j.storeReports(ctx, runID, m); err != nil {
			return fmt.Errorf("error storing reports: %w", err)
		}
	}

	log.Debug().Str("runID", runID).Str("address", m.Address).Int("year", m.Year).Msg("wrapped snapshot saved")
	return nil
}

func (j *SnapshotJob) storeReports(ctx context.Context, runID string, m models.WrappedMetrics) error {
	csvBody, err := storage.WrappedCSV(m)
	if err != nil {
		return err
	}
	jsonBody, err := storage.WrappedJSON(m)
	if err != nil {
		return err
	}

	reports := []struct {
		ext         string
		body        []byte
		contentType string
	}{
		{ext: "csv", body: csvBody, contentType: storage.ContentTypeCSV},
		{ext: "json", body: jsonBody, contentType: storage.ContentTypeJSON},
	}
	for _, r := range reports {
		name := storage.ReportObjectName(m.Address, m.Year, runID, r.ext)
		if err := j.Storage.UploadFile(ctx, name, bytes.NewReader(r.body), int64(len(r.body)), r.contentType); err != nil {
			return err
		}
	}
	return nil
}

// NewSnapshot summarises a wrapped result as a ClickHouse row.
func NewSnapshot(runID string, m models.WrappedMetrics, computedAt time.Time) models.WrappedSnapshot {
	return models.WrappedSnapshot{
		RunID:             runID,
		Address:           strings.ToLower(m.Address),
		Year:              uint16(m.Year),
		ComputedAt:        computedAt.UTC(),
		TotalTransactions: uint64(max(m.TotalTransactions, 0)),
		UniqueDaysActive:  uint32(max(m.UniqueDaysActive, 0)),
		LongestStreak:     uint32(max(m.LongestStreak, 0)),
		TribeID:           m.Tribe.ID,
		GasSavedUSD:       m.GasSavedUSD,
		TotalVolumeUSD:    m.TotalVolumeUSD,
	}
}
