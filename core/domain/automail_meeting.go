package domain

// Meeting is a scheduled event extracted from one email.
type Meeting struct {
	Title       string   `json:"title"`
	Date        string   `json:"date,omitempty"`
	Time        string   `json:"time,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Location    string   `json:"location,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`
	Description string   `json:"description,omitempty"`

	// Provenance
	EmailID       string `json:"email_id,omitempty"`
	SourceSubject string `json:"source_subject,omitempty"`
	SourceSender  string `json:"source_sender,omitempty"`
}

// SortDate returns the date used as a sort key, substituting a
// far-future sentinel for undated meetings.
func (m Meeting) SortDate() string {
	if m.Date == "" {
		return dateSentinel
	}
	return m.Date
}
