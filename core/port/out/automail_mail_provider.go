package out

import (
	"context"

	"automail_server/core/domain"
)

// DraftRequest describes a reply draft to be created in the mailbox.
// The reply is threaded to the original message and never sent.
type DraftRequest struct {
	OriginalMsgID    string
	OriginalThreadID string
	To               string
	Subject          string
	Body             string
}

// Draft is a created draft reference.
type Draft struct {
	ID  string
	URL string
}

// HistoryEvent is a newly added message discovered via a change feed.
type HistoryEvent struct {
	MessageID string
	ThreadID  string
}

// MailProvider is the outbound port to the mailbox backend.
type MailProvider interface {
	// ListRecentMessages fetches the most recent messages in full,
	// newest first, up to max.
	ListRecentMessages(ctx context.Context, max int) ([]domain.EmailMessage, error)

	// ListMessagesQuery fetches recent messages matching a mailbox
	// search query (e.g. "after:2026/01/02"), newest first, up to max.
	ListMessagesQuery(ctx context.Context, max int, query string) ([]domain.EmailMessage, error)

	// GetMessage fetches one message in full.
	GetMessage(ctx context.Context, id string) (*domain.EmailMessage, error)

	// CreateReplyDraft creates a threaded reply draft. Not idempotent:
	// repeated calls create duplicate drafts.
	CreateReplyDraft(ctx context.Context, req DraftRequest) (*Draft, error)

	// ListHistory returns messages added since the given history id.
	ListHistory(ctx context.Context, startHistoryID uint64) ([]HistoryEvent, error)

	// ListLabels returns existing mailbox labels as name -> id.
	ListLabels(ctx context.Context) (map[string]string, error)

	// CreateLabel creates a colored mailbox label and returns its id.
	CreateLabel(ctx context.Context, name, color string) (string, error)

	// AddLabels attaches label ids to a message.
	AddLabels(ctx context.Context, messageID string, labelIDs []string) error
}
