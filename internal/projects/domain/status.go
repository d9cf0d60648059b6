package domain

// Status is the bid state of a project. Transitions are unconstrained.
type Status string

const (
	StatusPending Status = "pending"
	StatusAwarded Status = "awarded"
	StatusDead    Status = "dead"
)

// AllStatuses lists every status; tests use it to keep StatusTone exhaustive.
var AllStatuses = []Status{StatusPending, StatusAwarded, StatusDead}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAwarded, StatusDead:
		return true
	}
	return false
}

// StatusTone maps a status to its display tone tag.
func StatusTone(s Status) string {
	switch s {
	case StatusPending:
		return "warning"
	case StatusAwarded:
		return "success"
	case StatusDead:
		return "danger"
	default:
		return "neutral"
	}
}
