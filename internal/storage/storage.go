package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/estensen/wallet-wrapped/internal/models"
)

const (
	ContentTypeCSV  = "text/csv"
	ContentTypeJSON = "application/json"
)

// Storage is an interface for uploading files.
type Storage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
}

// ReportObjectName places reports under wrapped/<year>/<address>/<run>.<ext>.
func ReportObjectName(address string, year int, runID, ext string) string {
	return fmt.Sprintf("wrapped/%d/%s/%s.%s", year, strings.ToLower(address), runID, ext)
}

// WrappedCSV renders a wrapped summary as metric,value rows.
func WrappedCSV(m models.WrappedMetrics) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	rows := [][]string{
		{"metric", "value"},
		{"address", m.Address},
		{"year", strconv.Itoa(m.Year)},
		{"total_transactions", strconv.Itoa(m.TotalTransactions)},
		{"unique_days_active", strconv.Itoa(m.UniqueDaysActive)},
		{"longest_streak", strconv.Itoa(m.LongestStreak)},
		{"current_streak", strconv.Itoa(m.CurrentStreak)},
		{"most_active_month", m.MostActiveMonth},
		{"most_active_day", m.MostActiveDayOfWeek},
		{"most_active_time", m.MostActiveTimeOfDay},
		{"unique_protocols", strconv.Itoa(m.UniqueProtocols)},
		{"favorite_protocol", m.FavoriteProtocol},
		{"nfts_minted", strconv.Itoa(m.NFTsMinted)},
		{"nfts_received", strconv.Itoa(m.NFTsReceived)},
		{"total_volume_usd", formatUSD(m.TotalVolumeUSD)},
		{"gas_spent_eth", strconv.FormatFloat(m.GasSpentETH, 'f', 6, 64)},
		{"gas_saved_usd", formatUSD(m.GasSavedUSD)},
		{"tribe", m.Tribe.ID},
	}
	for _, p := range m.ProtocolBreakdown {
		rows = append(rows, []string{"protocol:" + p.Name, strconv.Itoa(p.Count)})
	}
	for _, b := range m.Badges {
		rows = append(rows, []string{"badge:" + b.ID, strconv.FormatBool(b.Earned)})
	}

	if err := writer.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("error writing CSV records: %w", err)
	}
	return buf.Bytes(), nil
}

func WrappedJSON(m models.WrappedMetrics) ([]byte, error) {
	body, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding wrapped report: %w", err)
	}
	return body, nil
}

func formatUSD(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
