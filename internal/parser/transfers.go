package parser

import (
	"github.com/rs/zerolog/log"

	"github.com/estensen/wallet-wrapped/internal/metrics"
	"github.com/estensen/wallet-wrapped/internal/models"
)

// NormalizeTokenTransfers maps a token-transfer payload, wrapped in any of
// the supported envelopes, into canonical token transfers.
func NormalizeTokenTransfers(payload any) []models.TokenTransfer {
	records := objectRecords(payload)
	transfers := make([]models.TokenTransfer, 0, len(records))
	for _, rec := range records {
		transfer := models.TokenTransfer{
			Hash:            stringOr(rec, transferHashFields, ""),
			From:            stringOr(rec, fromFields, ""),
			To:              stringOr(rec, toFields, ""),
			ContractAddress: stringOr(rec, contractFields, ""),
			Value:           stringOr(rec, transferValueField, defaultValue),
			Symbol:          stringOr(rec, symbolFields, ""),
		}
		if decimals, ok := intField(rec, decimalsFields); ok {
			transfer.Decimals = decimals
		}
		transfer.TimestampSeconds = recordTimestamp(rec, transfer.Hash)
		transfers = append(transfers, transfer)
	}
	return transfers
}

// NormalizeNFTTransfers maps an NFT-transfer payload into canonical NFT transfers.
func NormalizeNFTTransfers(payload any) []models.NFTTransfer {
	records := objectRecords(payload)
	transfers := make([]models.NFTTransfer, 0, len(records))
	for _, rec := range records {
		transfer := models.NFTTransfer{
			Hash:            stringOr(rec, transferHashFields, ""),
			From:            stringOr(rec, fromFields, ""),
			To:              stringOr(rec, toFields, ""),
			ContractAddress: stringOr(rec, contractFields, ""),
			TokenID:         stringOr(rec, tokenIDFields, ""),
		}
		transfer.TimestampSeconds = recordTimestamp(rec, transfer.Hash)
		transfers = append(transfers, transfer)
	}
	return transfers
}

// NormalizeTokenTransfersJSON decodes and normalizes a token-transfer response.
func NormalizeTokenTransfersJSON(body []byte) ([]models.TokenTransfer, error) {
	payload, err := decode(body)
	if err != nil {
		return nil, err
	}
	return NormalizeTokenTransfers(payload), nil
}

// NormalizeNFTTransfersJSON decodes and normalizes an NFT-transfer response.
func NormalizeNFTTransfersJSON(body []byte) ([]models.NFTTransfer, error) {
	payload, err := decode(body)
	if err != nil {
		return nil, err
	}
	return NormalizeNFTTransfers(payload), nil
}

func objectRecords(payload any) []map[string]any {
	envelope, records := DetectEnvelope(payload)
	if envelope == EnvelopeUnknown {
		return nil
	}
	objects := make([]map[string]any, 0, len(records))
	for i, raw := range records {
		rec, ok := raw.(map[string]any)
		if !ok {
			log.Warn().Int("index", i).Msgf("skipping non-object transfer of type %T", raw)
			metrics.NormalizerMalformedRecords.WithLabelValues("record").Inc()
			continue
		}
		objects = append(objects, rec)
	}
	return objects
}
