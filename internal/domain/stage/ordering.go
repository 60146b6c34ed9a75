package stage

// Resequence relocates the stage with movingID inside the ordered slice and
// renumbers the whole sequence 1..N. newOrder is clamped to the valid range,
// so moving past either end lands on the first or last position. The input
// slice must already be sorted by Order; it is modified in place and
// returned.
//
// Resequence is pure bookkeeping: persisting the renumbered stages without
// transiently violating the per-project order uniqueness constraint is the
// caller's problem (see StageService.Move).
func Resequence(stages []Stage, movingID int64, newOrder int) []Stage {
	idx := -1
	for i := range stages {
		if stages[i].ID == movingID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return renumber(stages)
	}

	moving := stages[idx]
	rest := append(stages[:idx], stages[idx+1:]...)

	target := clamp(newOrder-1, 0, len(rest))
	rest = append(rest, Stage{})
	copy(rest[target+1:], rest[target:])
	rest[target] = moving

	return renumber(rest)
}

func renumber(stages []Stage) []Stage {
	for i := range stages {
		stages[i].Order = i + 1
	}
	return stages
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
