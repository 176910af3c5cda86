package parser

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/estensen/wallet-wrapped/internal/metrics"
	"github.com/estensen/wallet-wrapped/internal/models"
)

type Parser interface {
	ParseCSV(filePath string) ([]models.CanonicalTransaction, error)
}

type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// csvHeaderAliases maps block-explorer export headers onto normalizer keys.
var csvHeaderAliases = map[string]string{
	"txhash":            "hash",
	"transaction hash":  "hash",
	"unixtimestamp":     "timestamp",
	"datetime (utc)":    "block_time",
	"gasused":           "gas_used",
	"gasprice":          "gas_price",
	"effectivegasprice": "gas_price",
	"contractaddress":   "contract_address",
	"value (wei)":       "value",
}

// ParseCSV reads a block-explorer CSV export. The header row names the fields.
func (p *CSVParser) ParseCSV(filePath string) ([]models.CanonicalTransaction, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []models.CanonicalTransaction{}, nil
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(name))
		if alias, ok := csvHeaderAliases[key]; ok {
			key = alias
		}
		header[i] = key
	}

	records := make([]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]any, len(header))
		for i, cell := range row {
			if i < len(header) && cell != "" {
				rec[header[i]] = cell
			}
		}
		records = append(records, rec)
	}
	return Normalize(records), nil
}

// NormalizeJSON decodes a raw provider response and normalizes it. Only
// undecodable JSON is an error; an unrecognized shape yields no records.
func NormalizeJSON(body []byte) ([]models.CanonicalTransaction, error) {
	payload, err := decode(body)
	if err != nil {
		return nil, err
	}
	return Normalize(payload), nil
}

func decode(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("error decoding provider payload: %w", err)
	}
	return payload, nil
}

// Normalize maps any supported upstream payload into canonical transactions.
func Normalize(payload any) []models.CanonicalTransaction {
	envelope, records := DetectEnvelope(payload)
	transactions := make([]models.CanonicalTransaction, 0, len(records))
	if envelope == EnvelopeUnknown {
		return transactions
	}
	metrics.NormalizerRecordsTotal.WithLabelValues(envelope.String()).Add(float64(len(records)))

	for i, raw := range records {
		rec, ok := raw.(map[string]any)
		if !ok {
			log.Warn().Int("index", i).Str("envelope", envelope.String()).Msgf("skipping non-object record of type %T", raw)
			metrics.NormalizerMalformedRecords.WithLabelValues("record").Inc()
			continue
		}
		transactions = append(transactions, ParseRecord(rec))
	}
	return transactions
}

// ParseRecord normalizes a single raw transaction object. It never fails:
// fields that cannot be read fall back to their defaults.
func ParseRecord(rec map[string]any) models.CanonicalTransaction {
	txn := models.CanonicalTransaction{
		Hash:     stringOr(rec, hashFields, ""),
		From:     stringOr(rec, fromFields, ""),
		To:       stringOr(rec, toFields, ""),
		Value:    stringOr(rec, valueFields, defaultValue),
		GasUsed:  stringOr(rec, gasUsedFields, defaultGasUsed),
		GasPrice: stringOr(rec, gasPriceFields, defaultGasPrice),
	}
	txn.TimestampSeconds = recordTimestamp(rec, txn.Hash)
	return txn
}

func recordTimestamp(rec map[string]any, hash string) int64 {
	raw, ok := firstRaw(rec, timestampFields)
	if !ok {
		return 0
	}
	ts, err := ParseTimestamp(raw)
	if err != nil {
		log.Warn().Err(err).Str("hash", hash).Msg("timestamp unreadable, defaulting to 0")
		metrics.NormalizerMalformedRecords.WithLabelValues("timestamp").Inc()
		return 0
	}
	return ts
}
