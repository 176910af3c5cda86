package wrapped

import (
	"time"

	"github.com/estensen/wallet-wrapped/internal/models"
)

// activeDays returns the distinct UTC calendar days of txs, ascending.
// txs must already be sorted by timestamp.
func activeDays(txs []models.CanonicalTransaction) []time.Time {
	var days []time.Time
	for _, txn := range txs {
		day := truncateDay(time.Unix(txn.TimestampSeconds, 0))
		if n := len(days); n == 0 || !days[n-1].Equal(day) {
			days = append(days, day)
		}
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nextDay(a, b time.Time) bool {
	return a.AddDate(0, 0, 1).Equal(b)
}

func longestStreak(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if nextDay(days[i-1], days[i]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// currentStreak counts back from the latest active day, which must be
// today or yesterday relative to now.
func currentStreak(days []time.Time, now time.Time) int {
	if len(days) == 0 {
		return 0
	}
	today := truncateDay(now)
	last := days[len(days)-1]
	if !last.Equal(today) && !nextDay(last, today) {
		return 0
	}
	streak := 1
	for i := len(days) - 1; i > 0; i-- {
		if !nextDay(days[i-1], days[i]) {
			break
		}
		streak++
	}
	return streak
}

// modal returns the most frequent bucket. Ties go to the bucket that was
// seen first in txs order.
func modal(txs []models.CanonicalTransaction, bucket func(time.Time) string) string {
	counts := make(map[string]int)
	var order []string
	for _, txn := range txs {
		key := bucket(time.Unix(txn.TimestampSeconds, 0).UTC())
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	best, bestCount := notAvail, 0
	for _, key := range order {
		if counts[key] > bestCount {
			best, bestCount = key, counts[key]
		}
	}
	return best
}

func timeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "Morning"
	case hour >= 12 && hour < 17:
		return "Afternoon"
	case hour >= 17 && hour < 21:
		return "Evening"
	default:
		return "Night"
	}
}

func busiestDay(txs []models.CanonicalTransaction) *models.DayCount {
	counts := make(map[string]int)
	var busiest *models.DayCount
	for _, txn := range txs {
		date := time.Unix(txn.TimestampSeconds, 0).UTC().Format(dateLayout)
		counts[date]++
		if busiest == nil || counts[date] > busiest.Count {
			busiest = &models.DayCount{Date: date, Count: counts[date]}
		}
	}
	return busiest
}
