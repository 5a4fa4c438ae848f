package out

import (
	"context"

	"automail_server/core/domain"
)

// LLMClient is the outbound port to the language model.
//
// The classifier and extractors never surface errors: any failure
// degrades to the fail-safe value ({tagging} or an empty slice) and is
// logged where it happens. Reply and label methods do return errors
// since their callers make control-flow decisions on them.
type LLMClient interface {
	// ClassifyServices decides which services should see this email.
	// The result always contains ServiceTagging.
	ClassifyServices(ctx context.Context, subject, body, sender string) []domain.ServiceTag

	// ExtractTransactions pulls financial transactions from one email.
	ExtractTransactions(ctx context.Context, subject, body, sender string) []domain.Transaction

	// ExtractReminders pulls tasks and action items from one email.
	ExtractReminders(ctx context.Context, subject, body string) []domain.Reminder

	// ExtractMeetings pulls meetings and appointments from one email.
	ExtractMeetings(ctx context.Context, subject, body string) []domain.Meeting

	// ShouldReply decides whether the email warrants a response.
	ShouldReply(ctx context.Context, subject, body string) (bool, error)

	// GenerateReply writes a tone-matched reply body.
	GenerateReply(ctx context.Context, subject, body string) (string, error)

	// MatchLabels picks which of the given labels fit the email text.
	MatchLabels(ctx context.Context, labels []domain.LabelDef, emailText string) ([]string, error)
}
