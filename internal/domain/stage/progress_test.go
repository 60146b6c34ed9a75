package stage

import (
	"testing"

	"github.com/phaseline/phaseline/internal/domain/activity"
)

func activitiesWithProgress(values ...int) []activity.Activity {
	out := make([]activity.Activity, len(values))
	for i, v := range values {
		out[i] = activity.Activity{ID: int64(i + 1), Progress: v}
	}
	return out
}

func TestAggregateProgress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		activities []activity.Activity
		want       int
	}{
		{
			name:       "no activities yields zero",
			activities: nil,
			want:       0,
		},
		{
			name:       "single activity",
			activities: activitiesWithProgress(42),
			want:       42,
		},
		{
			name:       "exact mean",
			activities: activitiesWithProgress(50, 100),
			want:       75,
		},
		{
			name:       "mean truncates toward zero",
			activities: activitiesWithProgress(33, 33, 34),
			want:       33,
		},
		{
			name:       "99.66 truncates to 99 not 100",
			activities: activitiesWithProgress(100, 100, 99),
			want:       99,
		},
		{
			name:       "all complete",
			activities: activitiesWithProgress(100, 100, 100),
			want:       100,
		},
		{
			name:       "all zero",
			activities: activitiesWithProgress(0, 0, 0, 0),
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := AggregateProgress(tt.activities); got != tt.want {
				t.Errorf("AggregateProgress() = %d, want %d", got, tt.want)
			}
		})
	}
}
