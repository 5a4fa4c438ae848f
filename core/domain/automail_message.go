package domain

// ServiceTag identifies a downstream processing service an email is
// routed to.
type ServiceTag string

const (
	ServiceTagging   ServiceTag = "tagging"   // Always present, baseline labeling
	ServiceReminders ServiceTag = "reminders" // Task and meeting extraction
	ServiceFinance   ServiceTag = "finance"   // Financial transaction extraction
	ServiceAutoReply ServiceTag = "auto_reply" // Reply drafting
)

// KnownServiceTags lists every tag the classifier may emit.
var KnownServiceTags = []ServiceTag{
	ServiceTagging,
	ServiceReminders,
	ServiceFinance,
	ServiceAutoReply,
}

// IsKnownServiceTag reports whether s is a recognized tag.
func IsKnownServiceTag(s string) bool {
	for _, t := range KnownServiceTags {
		if string(t) == s {
			return true
		}
	}
	return false
}

// EmailMessage is a provider-fetched email in normalized form.
// Date is the raw header value, not parsed.
type EmailMessage struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	Subject  string `json:"subject"`
	Sender   string `json:"sender"`
	Date     string `json:"date"`
	Snippet  string `json:"snippet"`
	Body     string `json:"body"`
}

// HasContent reports whether there is any text to analyze.
func (m *EmailMessage) HasContent() bool {
	return m.Subject != "" || m.Body != "" || m.Snippet != ""
}

// AnalysisBody returns the text handed to extractors, falling back to
// the snippet when the body could not be decoded.
func (m *EmailMessage) AnalysisBody() string {
	if m.Body != "" {
		return m.Body
	}
	return m.Snippet
}
