package parser

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Field names in priority order. Providers disagree on naming, so the first
// present key wins.
var (
	hashFields      = []string{"transaction_hash", "transaction_id", "hash", "tx_hash"}
	fromFields      = []string{"from_address", "from"}
	toFields        = []string{"to_address", "to"}
	valueFields     = []string{"value"}
	gasUsedFields   = []string{"gas_used", "gasUsed", "gas", "gas_spent"}
	gasPriceFields  = []string{"gas_price", "gasPrice", "effectiveGasPrice"}
	timestampFields = []string{"block_timestamp", "timestamp", "timeStamp", "block_time", "block_signed_at"}

	transferHashFields = []string{"transaction_hash", "tx_hash", "hash"}
	contractFields     = []string{"contract_address", "contractAddress", "token_address", "token"}
	transferValueField = []string{"value", "total.value"}
	decimalsFields     = []string{"token_decimals", "tokenDecimal", "decimals", "total.decimals", "token.decimals"}
	symbolFields       = []string{"token_symbol", "tokenSymbol", "token.symbol"}
	tokenIDFields      = []string{"token_id", "tokenID", "tokenId", "total.token_id"}
)

const (
	defaultValue    = "0"
	defaultGasUsed  = "21000"
	defaultGasPrice = "1000000"
)

// lookup resolves a key, following dotted paths into nested objects.
func lookup(rec map[string]any, key string) (any, bool) {
	if v, ok := rec[key]; ok {
		return v, v != nil
	}
	head, rest, nested := strings.Cut(key, ".")
	if !nested {
		return nil, false
	}
	child, ok := rec[head].(map[string]any)
	if !ok {
		return nil, false
	}
	return lookup(child, rest)
}

// firstRaw returns the first non-nil value among keys.
func firstRaw(rec map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		if v, ok := lookup(rec, key); ok {
			return v, true
		}
	}
	return nil, false
}

// firstString returns the first key whose value can be rendered as a string.
func firstString(rec map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		v, ok := lookup(rec, key)
		if !ok {
			continue
		}
		if s, ok := stringify(v); ok {
			return s, true
		}
	}
	return "", false
}

func stringOr(rec map[string]any, keys []string, def string) string {
	if s, ok := firstString(rec, keys); ok {
		return s
	}
	return def
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int:
		return strconv.Itoa(t), true
	case map[string]any:
		// Address objects, e.g. {"hash": "0x..", "is_contract": false}.
		for _, key := range []string{"hash", "address", "address_hash"} {
			if s, ok := t[key].(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

func intField(rec map[string]any, keys []string) (*int, bool) {
	s, ok := firstString(rec, keys)
	if !ok {
		return nil, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, false
	}
	return &n, true
}
