package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"automail_server/core/domain"
	"automail_server/pkg/logger"
)

const financePrompt = `Subject: %s
From: %s
Body: %s

Extract any financial transactions or money-related information from this email.
Look for:
- Payments received or incoming money
- Bills, expenses, or outgoing money
- Subscription charges or renewals
- Refunds or credits
- Account balances or statements
- Investment updates

Format your response as a JSON array of objects. Each object should have:
- "type": The transaction type (income, expense, balance, refund, etc.)
- "amount": The monetary amount (as a number without currency symbols)
- "currency": The currency code (USD, EUR, etc.)
- "description": Brief description of the transaction
- "date": Transaction date if available (in YYYY-MM-DD format if possible)
- "category": Category of transaction (e.g., "subscription", "salary", "bill", "investment")
- "recurring": Boolean indicating if this appears to be a recurring transaction

If no financial information is found, return an empty array [].
Only return the JSON array, nothing else.`

const remindersPrompt = `Subject: %s
Body: %s

Extract any reminders, todos, tasks, or action items from this email.
Look for:
- Explicit requests for action
- Deadlines or due dates
- Meetings or appointments
- Things the sender is waiting for from the recipient
- Commitments made by the sender or expected from the recipient

Format your response as a JSON array of objects. Each object should have:
- "task": The action item or todo (required)
- "deadline": Any mentioned deadline or due date (optional, in YYYY-MM-DD format if possible)
- "priority": Estimated priority (high, medium, low) based on urgency in the email (optional)
- "context": Brief context about the task (optional)

If no reminders or todos are found, return an empty array [].
Only return the JSON array, nothing else.`

const meetingsPrompt = `Subject: %s
Body: %s

Extract any meeting or appointment information from this email.
Look for:
- Meeting invitations or requests
- Scheduled calls or video conferences
- In-person meetings
- Webinars or events

Format your response as a JSON array of objects. Each object should have:
- "title": Meeting title or purpose (required)
- "date": Meeting date (in YYYY-MM-DD format if possible)
- "time": Meeting time (e.g., "14:00", "2:00 PM")
- "duration": Meeting duration (e.g., "1 hour", "30 minutes")
- "location": Meeting location or platform (e.g., "Zoom", "Google Meet", "Conference Room A")
- "attendees": List of attendees if mentioned
- "description": Brief description of the meeting purpose

If no meetings are found, return an empty array [].
Only return the JSON array, nothing else.`

// parseExtraction applies the shared tolerance rules to an extractor
// response: empty or "[]" means no findings, fenced JSON is unwrapped,
// and anything that does not parse as an array degrades to empty.
func parseExtraction[T any](log *logger.Logger, resp string) []T {
	content := stripJSONFences(resp)
	if content == "" || content == "[]" {
		return []T{}
	}

	var items []T
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		log.WithField("response", resp).Warn("unexpected extraction response format")
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// ExtractTransactions pulls financial transactions from one email.
// Failures log and return empty, never an error.
func (c *Client) ExtractTransactions(ctx context.Context, subject, body, sender string) []domain.Transaction {
	prompt := fmt.Sprintf(financePrompt, subject, sender, truncateBody(body, c.bodyPreview))
	resp, err := c.Complete(ctx, prompt, 3000)
	if err != nil {
		c.log.WithError(err).Error("financial extraction call failed")
		return []domain.Transaction{}
	}

	transactions := parseExtraction[domain.Transaction](c.log, resp)
	now := time.Now().Format(time.RFC3339)
	for i := range transactions {
		transactions[i].Source = "email"
		transactions[i].SourceSubject = subject
		transactions[i].SourceSender = sender
		transactions[i].ExtractedAt = now
	}
	return transactions
}

// ExtractReminders pulls tasks and action items from one email.
func (c *Client) ExtractReminders(ctx context.Context, subject, body string) []domain.Reminder {
	prompt := fmt.Sprintf(remindersPrompt, subject, truncateBody(body, c.bodyPreview))
	resp, err := c.Complete(ctx, prompt, 3000)
	if err != nil {
		c.log.WithError(err).Error("reminder extraction call failed")
		return []domain.Reminder{}
	}

	reminders := parseExtraction[domain.Reminder](c.log, resp)
	now := time.Now().Format(time.RFC3339)
	for i := range reminders {
		reminders[i].Source = "email"
		reminders[i].SourceSubject = subject
		reminders[i].ExtractedAt = now
	}
	return reminders
}

// ExtractMeetings pulls meetings and appointments from one email.
func (c *Client) ExtractMeetings(ctx context.Context, subject, body string) []domain.Meeting {
	prompt := fmt.Sprintf(meetingsPrompt, subject, truncateBody(body, c.bodyPreview))
	resp, err := c.Complete(ctx, prompt, 3000)
	if err != nil {
		c.log.WithError(err).Error("meeting extraction call failed")
		return []domain.Meeting{}
	}
	return parseExtraction[domain.Meeting](c.log, resp)
}
