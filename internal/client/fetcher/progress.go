package fetcher

import "github.com/dmitrijs2005/corral/internal/client/models"

// Monotonic filters the events of one channel attempt so that observers see
// states and percentages that never go backwards. Repeated events are
// dropped.
func Monotonic(next models.ProgressFunc) models.ProgressFunc {
	var (
		last models.Progress
		seen bool
	)
	return func(p models.Progress) {
		if seen {
			if p.State < last.State || p == last {
				return
			}
			if p.State == last.State && p.PercentKnown && last.PercentKnown && p.Percent < last.Percent {
				return
			}
		}
		seen = true
		last = p
		next(p)
	}
}
