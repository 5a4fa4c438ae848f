package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"automail_server/core/domain"
	"automail_server/core/port/out"
	"automail_server/pkg/logger"
)

// Report is the analytics endpoint payload.
type Report struct {
	Status    string           `json:"status"`
	Message   string           `json:"message"`
	Processed int              `json:"processed"`
	Analytics domain.Analytics `json:"analytics"`
}

// Service builds the aggregate view over a window of recent emails:
// finances, meetings, todos and emails awaiting a reply.
type Service struct {
	mail      out.MailProvider
	llm       out.LLMClient
	snapshots out.SnapshotRepository
	log       *logger.Logger
}

func NewService(mail out.MailProvider, llm out.LLMClient, snapshots out.SnapshotRepository) *Service {
	return &Service{
		mail:      mail,
		llm:       llm,
		snapshots: snapshots,
		log:       logger.WithComponent("analytics"),
	}
}

// Generate analyzes the most recent emails and returns the aggregate
// report. The report is also snapshotted for later retrieval, best
// effort.
func (s *Service) Generate(ctx context.Context, maxEmails int) (*Report, error) {
	messages, err := s.mail.ListRecentMessages(ctx, maxEmails)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if len(messages) == 0 {
		s.log.Info("no emails found")
		return &Report{
			Status:    "success",
			Message:   "No emails found",
			Analytics: emptyAnalytics(),
		}, nil
	}

	var (
		allTransactions []domain.Transaction
		allMeetings     []domain.Meeting
		allTodos        []domain.Reminder
		needsReply      []domain.NeedsReplyItem
	)

	for _, msg := range messages {
		body := msg.AnalysisBody()

		transactions := s.llm.ExtractTransactions(ctx, msg.Subject, body, msg.Sender)
		for i := range transactions {
			transactions[i].EmailID = msg.ID
			transactions[i].SourceSubject = msg.Subject
			transactions[i].SourceSender = msg.Sender
		}
		allTransactions = append(allTransactions, transactions...)

		meetings := s.llm.ExtractMeetings(ctx, msg.Subject, body)
		for i := range meetings {
			meetings[i].EmailID = msg.ID
			meetings[i].SourceSubject = msg.Subject
			meetings[i].SourceSender = msg.Sender
		}
		allMeetings = append(allMeetings, meetings...)

		todos := s.llm.ExtractReminders(ctx, msg.Subject, body)
		now := time.Now().Format(time.RFC3339)
		for i := range todos {
			todos[i].EmailID = msg.ID
			todos[i].EmailThreadID = msg.ThreadID
			todos[i].SourceSubject = msg.Subject
			todos[i].Sender = msg.Sender
			todos[i].ExtractedAt = now
		}
		allTodos = append(allTodos, todos...)

		shouldReply, err := s.llm.ShouldReply(ctx, msg.Subject, body)
		if err != nil {
			s.log.WithError(err).WithField("email_id", msg.ID).Warn("should-reply check failed")
		} else if shouldReply {
			needsReply = append(needsReply, domain.NeedsReplyItem{
				EmailID:  msg.ID,
				ThreadID: msg.ThreadID,
				Subject:  msg.Subject,
				Sender:   msg.Sender,
				Date:     msg.Date,
				Snippet:  msg.Snippet,
			})
		}
	}

	var summary *domain.FinancialSummary
	if len(allTransactions) > 0 {
		summary = CalculateFinancialSummary(allTransactions)
	}
	SortMeetings(allMeetings)
	SortTodos(allTodos)

	report := &Report{
		Status:    "success",
		Message:   fmt.Sprintf("Processed %d emails", len(messages)),
		Processed: len(messages),
		Analytics: domain.Analytics{
			Finances: domain.Finances{
				Transactions: emptyIfNil(allTransactions),
				Summary:      summary,
			},
			Meetings:   emptyIfNil(allMeetings),
			Todos:      emptyIfNil(allTodos),
			NeedsReply: emptyIfNil(needsReply),
		},
	}

	s.snapshot(ctx, report)
	return report, nil
}

// Latest returns the most recent stored snapshot.
func (s *Service) Latest(ctx context.Context) (*domain.AnalyticsSnapshot, error) {
	if s.snapshots == nil {
		return nil, nil
	}
	return s.snapshots.LatestSnapshot(ctx)
}

func (s *Service) snapshot(ctx context.Context, report *Report) {
	if s.snapshots == nil {
		return
	}
	snap := &domain.AnalyticsSnapshot{
		ID:        uuid.New().String(),
		Processed: report.Processed,
		Analytics: report.Analytics,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.snapshots.SaveSnapshot(ctx, snap); err != nil {
		s.log.WithError(err).Warn("failed to store analytics snapshot")
	}
}

func emptyAnalytics() domain.Analytics {
	return domain.Analytics{
		Finances: domain.Finances{
			Transactions: []domain.Transaction{},
		},
		Meetings:   []domain.Meeting{},
		Todos:      []domain.Reminder{},
		NeedsReply: []domain.NeedsReplyItem{},
	}
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
