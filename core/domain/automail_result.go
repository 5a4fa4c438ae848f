package domain

// ServiceStatus is the per-service slot of a ProcessResult. Nil slots
// mean the service was not selected for this email.
type ServiceStatus struct {
	Status string `json:"status,omitempty"`
}

// ExtractionResult reports what one extractor found for one email and
// whether the findings were persisted.
type ExtractionResult[T any] struct {
	Found     int           `json:"found"`
	Items     []T           `json:"items"`
	SavedToDB bool          `json:"saved_to_db"`
	Outcomes  []SaveOutcome `json:"outcomes,omitempty"`
}

// AutoReplyResult reports the reply policy decision for one email.
type AutoReplyResult struct {
	ShouldReply  bool   `json:"should_reply"`
	ReplyBody    string `json:"reply_body,omitempty"`
	DraftCreated bool   `json:"draft_created"`
	DraftID      string `json:"draft_id,omitempty"`
	DraftURL     string `json:"draft_url,omitempty"`
}

// ProcessResult is the outcome of routing one email through its
// selected services. Error-shaped results carry Status "error" and a
// message; successful ones leave Status empty.
type ProcessResult struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`

	EmailID      string       `json:"email_id"`
	ThreadID     string       `json:"thread_id,omitempty"`
	Subject      string       `json:"subject,omitempty"`
	Sender       string       `json:"sender,omitempty"`
	Date         string       `json:"date,omitempty"`
	ServicesUsed []ServiceTag `json:"services_used,omitempty"`

	Tagging   *ServiceStatus                 `json:"tagging"`
	Reminders *ExtractionResult[Reminder]    `json:"reminders"`
	Finance   *ExtractionResult[Transaction] `json:"finance"`
	AutoReply *AutoReplyResult               `json:"auto_reply"`
}

// ErrorResult builds the error-shaped variant for a message that could
// not be processed.
func ErrorResult(emailID, message string) ProcessResult {
	if emailID == "" {
		emailID = "unknown"
	}
	return ProcessResult{
		Status:  "error",
		Message: message,
		EmailID: emailID,
	}
}
