package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"automail_server/core/domain"
	"automail_server/core/port/out"
	"automail_server/core/service/analytics"
	"automail_server/pkg/apperr"
	"automail_server/pkg/logger"
)

var errNoDatabase = errors.New("database not configured")

// AnalyzeResult is the outcome of a financial analysis pass.
type AnalyzeResult struct {
	Status            string                   `json:"status"`
	Message           string                   `json:"message"`
	Processed         int                      `json:"processed"`
	TransactionsFound int                      `json:"transactions_found"`
	Transactions      []domain.Transaction     `json:"transactions"`
	Summary           *domain.FinancialSummary `json:"summary"`
	SavedToDatabase   *bool                    `json:"saved_to_database,omitempty"`
	SaveOutcomes      []domain.SaveOutcome     `json:"save_outcomes,omitempty"`
}

// SummaryResult is the summary-only view for the summary endpoint.
type SummaryResult struct {
	domain.FinancialSummary
	ProcessedEmails   int `json:"processed_emails"`
	TransactionsFound int `json:"transactions_found"`
}

// Service extracts and aggregates financial data from recent emails.
type Service struct {
	mail   out.MailProvider
	llm    out.LLMClient
	txRepo out.TransactionRepository
	log    *logger.Logger
}

func NewService(mail out.MailProvider, llm out.LLMClient, txRepo out.TransactionRepository) *Service {
	return &Service{
		mail:   mail,
		llm:    llm,
		txRepo: txRepo,
		log:    logger.WithComponent("finance"),
	}
}

// Analyze extracts transactions from recent emails within the lookback
// window and computes their summary. When saveToDB is set, found
// transactions are persisted and the per-item outcomes reported.
func (s *Service) Analyze(ctx context.Context, maxEmails, daysBack int, saveToDB bool) (*AnalyzeResult, error) {
	query := fmt.Sprintf("after:%s", time.Now().AddDate(0, 0, -daysBack).Format("2006/01/02"))
	messages, err := s.mail.ListMessagesQuery(ctx, maxEmails, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if len(messages) == 0 {
		s.log.Info("no emails found")
		return &AnalyzeResult{
			Status:       "success",
			Message:      "No emails found",
			Transactions: []domain.Transaction{},
			Summary: &domain.FinancialSummary{
				Currency:   "USD",
				Period:     fmt.Sprintf("Last %d days", daysBack),
				ByCategory: map[string]domain.CategoryTotals{},
			},
		}, nil
	}

	var all []domain.Transaction
	for _, msg := range messages {
		transactions := s.llm.ExtractTransactions(ctx, msg.Subject, msg.AnalysisBody(), msg.Sender)
		for i := range transactions {
			transactions[i].EmailID = msg.ID
			transactions[i].EmailThreadID = msg.ThreadID
			transactions[i].EmailDate = msg.Date
		}
		if len(transactions) > 0 {
			s.log.WithField("email_id", msg.ID).
				Info("found %d financial transactions in email '%s'", len(transactions), msg.Subject)
			all = append(all, transactions...)
		}
	}
	if all == nil {
		all = []domain.Transaction{}
	}

	result := &AnalyzeResult{
		Status:            "success",
		Message:           fmt.Sprintf("Processed %d emails, found %d financial transactions", len(messages), len(all)),
		Processed:         len(messages),
		TransactionsFound: len(all),
		Transactions:      all,
		Summary:           analytics.CalculateFinancialSummary(all),
	}

	if saveToDB && s.txRepo != nil && len(all) > 0 {
		outcomes, err := s.txRepo.SaveTransactions(ctx, all)
		saved := err == nil && domain.AllPersisted(outcomes)
		if err != nil {
			s.log.WithError(err).Error("failed to save transactions")
		}
		result.SavedToDatabase = &saved
		result.SaveOutcomes = outcomes
	}
	return result, nil
}

// Summary analyzes without persisting and returns only the summary.
func (s *Service) Summary(ctx context.Context, daysBack int) (*SummaryResult, error) {
	result, err := s.Analyze(ctx, 50, daysBack, false)
	if err != nil {
		return nil, err
	}
	summary := *result.Summary
	summary.Period = fmt.Sprintf("Last %d days", daysBack)
	return &SummaryResult{
		FinancialSummary:  summary,
		ProcessedEmails:   result.Processed,
		TransactionsFound: result.TransactionsFound,
	}, nil
}

// Save persists caller-supplied transactions.
func (s *Service) Save(ctx context.Context, transactions []domain.Transaction) ([]domain.SaveOutcome, error) {
	if len(transactions) == 0 {
		return []domain.SaveOutcome{}, nil
	}
	if s.txRepo == nil {
		return nil, apperr.DatabaseError("save transactions", errNoDatabase)
	}
	return s.txRepo.SaveTransactions(ctx, transactions)
}
