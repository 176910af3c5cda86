package score

import "github.com/estensen/wallet-wrapped/internal/models"

// Score evaluates every requirement of every level against stats.
// Total is floor(100 * completed / total) over the flattened list.
func Score(stats models.WalletStatistics) models.ScoreBreakdown {
	return evaluate(Levels, stats)
}

func evaluate(levels []Level, stats models.WalletStatistics) models.ScoreBreakdown {
	var breakdown models.ScoreBreakdown
	levelOpen := true

	for _, level := range levels {
		if len(level.Requirements) == 0 {
			continue
		}
		levelDone := true
		for _, req := range level.Requirements {
			completed := req.Check(stats)
			breakdown.Checklist = append(breakdown.Checklist, models.ChecklistItem{
				Level:       level.Number,
				ID:          req.ID,
				Description: req.Description,
				Completed:   completed,
			})
			breakdown.TotalRequirements++
			if completed {
				breakdown.CompletedRequirements++
			} else {
				levelDone = false
			}
		}
		// Level reached is the last one completed without a gap before it.
		if levelOpen && levelDone {
			breakdown.Level = level.Number
		} else {
			levelOpen = false
		}
	}

	if breakdown.TotalRequirements > 0 {
		breakdown.Total = 100 * breakdown.CompletedRequirements / breakdown.TotalRequirements
	}
	return breakdown
}
