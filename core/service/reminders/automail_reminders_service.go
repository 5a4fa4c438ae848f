package reminders

import (
	"context"
	"errors"
	"fmt"

	"automail_server/core/domain"
	"automail_server/core/port/out"
	"automail_server/pkg/apperr"
	"automail_server/pkg/logger"
)

var errNoDatabase = errors.New("database not configured")

// ExtractResult is the outcome of a reminder extraction pass.
type ExtractResult struct {
	Status         string            `json:"status"`
	Message        string            `json:"message"`
	Processed      int               `json:"processed"`
	RemindersFound int               `json:"reminders_found"`
	Reminders      []domain.Reminder `json:"reminders"`
}

// Service extracts reminders from recent emails and persists them.
type Service struct {
	mail    out.MailProvider
	llm     out.LLMClient
	remRepo out.ReminderRepository
	log     *logger.Logger
}

func NewService(mail out.MailProvider, llm out.LLMClient, remRepo out.ReminderRepository) *Service {
	return &Service{
		mail:    mail,
		llm:     llm,
		remRepo: remRepo,
		log:     logger.WithComponent("reminders"),
	}
}

// Extract pulls reminders from the most recent emails without saving.
func (s *Service) Extract(ctx context.Context, maxEmails int) (*ExtractResult, error) {
	messages, err := s.mail.ListRecentMessages(ctx, maxEmails)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if len(messages) == 0 {
		s.log.Info("no emails found")
		return &ExtractResult{
			Status:    "success",
			Message:   "No emails found",
			Reminders: []domain.Reminder{},
		}, nil
	}

	var all []domain.Reminder
	for _, msg := range messages {
		reminders := s.llm.ExtractReminders(ctx, msg.Subject, msg.AnalysisBody())
		for i := range reminders {
			reminders[i].EmailID = msg.ID
			reminders[i].EmailThreadID = msg.ThreadID
			reminders[i].Sender = msg.Sender
			reminders[i].Date = msg.Date
		}
		if len(reminders) > 0 {
			s.log.WithField("email_id", msg.ID).
				Info("found %d reminders in email '%s'", len(reminders), msg.Subject)
			all = append(all, reminders...)
		}
	}
	if all == nil {
		all = []domain.Reminder{}
	}

	return &ExtractResult{
		Status:         "success",
		Message:        fmt.Sprintf("Processed %d emails, found %d reminders/todos", len(messages), len(all)),
		Processed:      len(messages),
		RemindersFound: len(all),
		Reminders:      all,
	}, nil
}

// Save persists caller-supplied reminders.
func (s *Service) Save(ctx context.Context, reminders []domain.Reminder) ([]domain.SaveOutcome, error) {
	if len(reminders) == 0 {
		return []domain.SaveOutcome{}, nil
	}
	if s.remRepo == nil {
		return nil, apperr.DatabaseError("save reminders", errNoDatabase)
	}
	return s.remRepo.SaveReminders(ctx, reminders)
}
