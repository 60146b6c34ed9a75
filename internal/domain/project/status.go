package project

// Status is the closed lifecycle state of a Project. The original system
// stored this as free text; the closed enum removes invalid-string states.
type Status string

const (
	// StatusInProgress is the active state. Only active projects accept
	// stage starts.
	StatusInProgress Status = "in_progress"
	// StatusCompleted is set automatically when every stage is terminal and
	// reverted automatically when a non-terminal stage appears.
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusClosed    Status = "closed"
)

// IsValid returns true if the status is one of the defined constants.
func (s Status) IsValid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusCancelled, StatusClosed:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}
