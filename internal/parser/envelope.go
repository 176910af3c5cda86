package parser

// Envelope identifies how an upstream payload wraps its records.
type Envelope int

const (
	EnvelopeUnknown Envelope = iota
	EnvelopeDirectArray
	EnvelopeTransactions
	EnvelopeData
	EnvelopeItems
	EnvelopeResults
	EnvelopeRecords
)

func (e Envelope) String() string {
	switch e {
	case EnvelopeDirectArray:
		return "direct_array"
	case EnvelopeTransactions:
		return "transactions"
	case EnvelopeData:
		return "data"
	case EnvelopeItems:
		return "items"
	case EnvelopeResults:
		return "results"
	case EnvelopeRecords:
		return "records"
	default:
		return "unknown"
	}
}

// DetectEnvelope resolves a decoded payload into one of the supported
// envelope shapes and returns the records it wraps. Unrecognized input,
// including nil, yields EnvelopeUnknown and no records.
func DetectEnvelope(payload any) (Envelope, []any) {
	switch v := payload.(type) {
	case []any:
		return EnvelopeDirectArray, v
	case []map[string]any:
		records := make([]any, len(v))
		for i, rec := range v {
			records[i] = rec
		}
		return EnvelopeDirectArray, records
	case map[string]any:
		return detectObject(v)
	}
	return EnvelopeUnknown, nil
}

func detectObject(obj map[string]any) (Envelope, []any) {
	if records, ok := obj["transactions"].([]any); ok {
		return EnvelopeTransactions, records
	}

	switch data := obj["data"].(type) {
	case []any:
		return EnvelopeData, data
	case map[string]any:
		if records, ok := data["transactions"].([]any); ok {
			return EnvelopeData, records
		}
		if records, ok := data["items"].([]any); ok {
			return EnvelopeData, records
		}
	}

	if records, ok := obj["items"].([]any); ok {
		return EnvelopeItems, records
	}
	if records, ok := obj["results"].([]any); ok {
		return EnvelopeResults, records
	}
	if records, ok := obj["records"].([]any); ok {
		return EnvelopeRecords, records
	}
	return EnvelopeUnknown, nil
}
