package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingTimestamp     = errors.New("timestamp field not present")
	ErrUnparseableTimestamp = errors.New("unparseable timestamp")
)

// millisecondThreshold separates Unix seconds from Unix milliseconds.
const millisecondThreshold = 1e12

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z0700",
}

var genericLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
}

// ParseTimestamp converts a raw upstream timestamp into Unix seconds.
// Digit-only strings and JSON numbers above 1e12 are read as milliseconds.
// On error the returned value is 0, which callers treat as "no valid date".
func ParseTimestamp(raw any) (int64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, ErrMissingTimestamp
	case string:
		return parseTimestampString(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return fromUnixNumber(n), nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrUnparseableTimestamp, v.String())
		}
		return fromUnixFloat(f)
	case float64:
		return fromUnixFloat(v)
	case int64:
		return fromUnixNumber(v), nil
	case int:
		return fromUnixNumber(int64(v)), nil
	}
	return 0, fmt.Errorf("%w: unsupported type %T", ErrUnparseableTimestamp, raw)
}

func parseTimestampString(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnparseableTimestamp, err)
		}
		return fromUnixNumber(n), nil
	}

	layouts := genericLayouts
	if strings.Contains(s, "T") {
		// RFC 1123 dates also contain a T ("GMT"), so ISO layouts only go first.
		layouts = append(append([]string{}, isoLayouts...), genericLayouts...)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnparseableTimestamp, s)
}

func fromUnixNumber(n int64) int64 {
	if n > millisecondThreshold {
		return n / 1000
	}
	return n
}

func fromUnixFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: non-finite number", ErrUnparseableTimestamp)
	}
	if f > millisecondThreshold {
		f /= 1000
	}
	return int64(math.Floor(f)), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsValidTimestamp reports whether ts is a usable date. Zero means the
// record had no parseable timestamp and is never read as the Unix epoch.
func IsValidTimestamp(ts int64) bool {
	return ts > 0
}
