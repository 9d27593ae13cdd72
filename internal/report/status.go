package report

import "strings"

// Status represents the lifecycle of one unit of pipeline work, whether that
// unit is an archive being extracted or a file being converted.
type Status string

const (
	StatusPending       Status = "pending"
	StatusExtracted     Status = "extracted"
	StatusConverted     Status = "converted"
	StatusFailed        Status = "failed"
	StatusSkippedExists Status = "skipped-exists"
)

var allStatuses = []Status{
	StatusPending,
	StatusExtracted,
	StatusConverted,
	StatusFailed,
	StatusSkippedExists,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status describes finished work. Terminal
// statuses never change on re-runs; pending and extracted work still moves.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusConverted, StatusFailed, StatusSkippedExists:
		return true
	default:
		return false
	}
}
