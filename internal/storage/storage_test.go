package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estensen/wallet-wrapped/internal/models"
)

func sampleMetrics() models.WrappedMetrics {
	return models.WrappedMetrics{
		Address:             "0x1111111111111111111111111111111111111111",
		Year:                2025,
		TotalTransactions:   42,
		UniqueDaysActive:    17,
		LongestStreak:       5,
		MostActiveMonth:     "March",
		MostActiveDayOfWeek: "Friday",
		MostActiveTimeOfDay: "Evening",
		FavoriteProtocol:    "Aerodrome",
		TotalVolumeUSD:      1234.5,
		GasSpentETH:         0.0021,
		GasSavedUSD:         99.9,
		Tribe:               models.Tribe{ID: "degen"},
		ProtocolBreakdown:   []models.ProtocolShare{{Name: "Aerodrome", Count: 12, Percentage: 100}},
		Badges:              []models.Badge{{ID: "named", Earned: false}},
	}
}

func TestReportObjectName(t *testing.T) {
	assert.Equal(t, "wrapped/2025/0xabc/run-1.csv", ReportObjectName("0xABC", 2025, "run-1", "csv"))
}

func TestWrappedCSV(t *testing.T) {
	body, err := WrappedCSV(sampleMetrics())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, []string{"metric", "value"}, records[0])

	values := make(map[string]string, len(records))
	for _, r := range records[1:] {
		require.Len(t, r, 2)
		values[r[0]] = r[1]
	}
	assert.Equal(t, "42", values["total_transactions"])
	assert.Equal(t, "1234.50", values["total_volume_usd"])
	assert.Equal(t, "0.002100", values["gas_spent_eth"])
	assert.Equal(t, "degen", values["tribe"])
	assert.Equal(t, "12", values["protocol:Aerodrome"])
	assert.Equal(t, "false", values["badge:named"])
}

func TestWrappedJSON(t *testing.T) {
	body, err := WrappedJSON(sampleMetrics())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "Aerodrome", decoded["favoriteProtocol"])
	assert.EqualValues(t, 42, decoded["totalTransactions"])
}
