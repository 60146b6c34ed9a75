package stage

import "github.com/phaseline/phaseline/internal/domain/activity"

// AggregateProgress returns the stage progress derived from its activities:
// the mean of their progress values truncated toward zero (integer
// division). An empty slice yields 0, so an empty stage never auto-completes.
func AggregateProgress(activities []activity.Activity) int {
	if len(activities) == 0 {
		return 0
	}
	var total int
	for i := range activities {
		total += activities[i].Progress
	}
	return total / len(activities)
}
