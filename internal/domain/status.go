package domain

// ReadingStatus is one user's status for one book. The set is closed;
// anything else is rejected before it reaches storage.
type ReadingStatus string

const (
	StatusPlanning  ReadingStatus = "planning"
	StatusReading   ReadingStatus = "reading"
	StatusFinished  ReadingStatus = "finished"
	StatusCancelled ReadingStatus = "cancelled"
)

// AllStatuses lists the valid statuses in display order.
var AllStatuses = []ReadingStatus{
	StatusReading,
	StatusFinished,
	StatusPlanning,
	StatusCancelled,
}

// Valid reports whether s is one of the four known statuses.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusPlanning, StatusReading, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// Label returns the user-facing label for the status, including its emoji.
func (s ReadingStatus) Label() string {
	switch s {
	case StatusPlanning:
		return "📋 Planning"
	case StatusReading:
		return "📖 Reading"
	case StatusFinished:
		return "✅ Finished"
	case StatusCancelled:
		return "❌ Cancelled"
	}
	return string(s)
}

// ParseStatusLabel maps a display label back to its stored status.
// The second return is false for anything outside the closed set.
func ParseStatusLabel(label string) (ReadingStatus, bool) {
	for _, s := range AllStatuses {
		if label == s.Label() {
			return s, true
		}
	}
	return "", false
}
