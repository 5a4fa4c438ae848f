package domain

import "strings"

// Reminder priorities as reported by the extractor.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// dateSentinel sorts undated items after every dated one.
const dateSentinel = "9999-12-31"

// Reminder is an actionable task extracted from one email.
type Reminder struct {
	Task     string `json:"task"`
	Deadline string `json:"deadline,omitempty"`
	Priority string `json:"priority,omitempty"`
	Context  string `json:"context,omitempty"`

	// Provenance
	EmailID       string `json:"email_id,omitempty"`
	EmailThreadID string `json:"email_thread_id,omitempty"`
	Sender        string `json:"sender,omitempty"`
	Date          string `json:"date,omitempty"`
	Source        string `json:"source,omitempty"`
	SourceSubject string `json:"source_subject,omitempty"`
	ExtractedAt   string `json:"extracted_at,omitempty"`
}

// NormalizePriority lowercases p and reports whether it is one of the
// recognized levels. Unrecognized or empty input normalizes to medium.
func NormalizePriority(p string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case PriorityHigh:
		return PriorityHigh, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityLow:
		return PriorityLow, true
	default:
		return PriorityMedium, false
	}
}

// PriorityRank orders priorities high before medium before low.
// Unrecognized values rank with medium.
func PriorityRank(p string) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// SortDeadline returns the deadline used as a sort key, substituting a
// far-future sentinel for missing deadlines.
func (r Reminder) SortDeadline() string {
	if r.Deadline == "" {
		return dateSentinel
	}
	return r.Deadline
}
