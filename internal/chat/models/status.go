package models

// MessageStatus moves forward only: sent < delivered < read.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

func (s MessageStatus) Rank() int {
	switch s {
	case StatusSent:
		return 0
	case StatusDelivered:
		return 1
	case StatusRead:
		return 2
	default:
		return -1
	}
}

func (s MessageStatus) Valid() bool {
	return s.Rank() >= 0
}

// CanAdvanceTo reports whether moving from s to next is a forward step.
// Skipping delivered (sent -> read) is allowed; staying put is not a step.
func (s MessageStatus) CanAdvanceTo(next MessageStatus) bool {
	return s.Valid() && next.Valid() && next.Rank() > s.Rank()
}

// StatusesBefore lists every status that may still advance to target.
func StatusesBefore(target MessageStatus) []string {
	var out []string
	for _, s := range []MessageStatus{StatusSent, StatusDelivered, StatusRead} {
		if s.CanAdvanceTo(target) {
			out = append(out, string(s))
		}
	}
	return out
}
