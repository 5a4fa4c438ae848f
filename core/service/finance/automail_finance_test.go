package finance

import (
	"context"
	"errors"
	"testing"

	"automail_server/core/domain"
	"automail_server/core/port/out"
	"automail_server/pkg/apperr"
)

type fakeMail struct {
	messages []domain.EmailMessage
	listErr  error
	query    string
}

func (f *fakeMail) ListRecentMessages(ctx context.Context, max int) ([]domain.EmailMessage, error) {
	return f.messages, f.listErr
}

func (f *fakeMail) ListMessagesQuery(ctx context.Context, max int, query string) ([]domain.EmailMessage, error) {
	f.query = query
	return f.messages, f.listErr
}

func (f *fakeMail) GetMessage(ctx context.Context, id string) (*domain.EmailMessage, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeMail) CreateReplyDraft(ctx context.Context, req out.DraftRequest) (*out.Draft, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeMail) ListHistory(ctx context.Context, startHistoryID uint64) ([]out.HistoryEvent, error) {
	return nil, nil
}

func (f *fakeMail) ListLabels(ctx context.Context) (map[string]string, error) {
	return nil, nil
}

func (f *fakeMail) CreateLabel(ctx context.Context, name, color string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeMail) AddLabels(ctx context.Context, messageID string, labelIDs []string) error {
	return nil
}

type fakeLLM struct {
	transactions map[string][]domain.Transaction
}

func (f *fakeLLM) ExtractTransactions(ctx context.Context, subject, body, sender string) []domain.Transaction {
	return f.transactions[subject]
}

func (f *fakeLLM) ClassifyServices(ctx context.Context, subject, body, sender string) []domain.ServiceTag {
	return nil
}

func (f *fakeLLM) ExtractReminders(ctx context.Context, subject, body string) []domain.Reminder {
	return nil
}

func (f *fakeLLM) ExtractMeetings(ctx context.Context, subject, body string) []domain.Meeting {
	return nil
}

func (f *fakeLLM) ShouldReply(ctx context.Context, subject, body string) (bool, error) {
	return false, nil
}

func (f *fakeLLM) GenerateReply(ctx context.Context, subject, body string) (string, error) {
	return "", nil
}

func (f *fakeLLM) MatchLabels(ctx context.Context, labels []domain.LabelDef, emailText string) ([]string, error) {
	return nil, nil
}

type fakeTxRepo struct {
	saved   [][]domain.Transaction
	saveErr error
}

func (f *fakeTxRepo) SaveTransactions(ctx context.Context, transactions []domain.Transaction) ([]domain.SaveOutcome, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = append(f.saved, transactions)
	outcomes := make([]domain.SaveOutcome, len(transactions))
	for i := range transactions {
		outcomes[i] = domain.SaveOutcome{ID: "tx", Status: domain.SaveInserted}
	}
	return outcomes, nil
}

func amount(v float64) *float64 { return &v }

func TestAnalyzeSavesWhenRequested(t *testing.T) {
	mail := &fakeMail{messages: []domain.EmailMessage{
		{ID: "msg-1", ThreadID: "thread-1", Subject: "Invoice", Sender: "billing@vendor.com", Body: "total $120"},
	}}
	llm := &fakeLLM{transactions: map[string][]domain.Transaction{
		"Invoice": {{Type: "expense", Amount: amount(120), Currency: "USD"}},
	}}
	repo := &fakeTxRepo{}
	svc := NewService(mail, llm, repo)

	result, err := svc.Analyze(context.Background(), 20, 30, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 1 || result.TransactionsFound != 1 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if result.SavedToDatabase == nil || !*result.SavedToDatabase {
		t.Error("expected saved_to_database true")
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected one save call, got %d", len(repo.saved))
	}
	if repo.saved[0][0].EmailID != "msg-1" || repo.saved[0][0].EmailThreadID != "thread-1" {
		t.Errorf("provenance not stamped: %+v", repo.saved[0][0])
	}
	if result.Summary == nil || result.Summary.TotalExpenses != 120 {
		t.Errorf("unexpected summary: %+v", result.Summary)
	}
	if mail.query == "" {
		t.Error("expected a date-bounded search query")
	}
}

func TestAnalyzeDryRun(t *testing.T) {
	mail := &fakeMail{messages: []domain.EmailMessage{
		{ID: "msg-1", Subject: "Invoice", Body: "total $120"},
	}}
	llm := &fakeLLM{transactions: map[string][]domain.Transaction{
		"Invoice": {{Type: "expense", Amount: amount(120), Currency: "USD"}},
	}}
	repo := &fakeTxRepo{}
	svc := NewService(mail, llm, repo)

	result, err := svc.Analyze(context.Background(), 20, 30, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SavedToDatabase != nil {
		t.Error("dry run must not report a save status")
	}
	if len(repo.saved) != 0 {
		t.Errorf("dry run must not persist, saved %d batches", len(repo.saved))
	}
}

func TestAnalyzeEmptyMailbox(t *testing.T) {
	svc := NewService(&fakeMail{}, &fakeLLM{}, nil)

	result, err := svc.Analyze(context.Background(), 20, 30, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Message != "No emails found" {
		t.Errorf("unexpected message: %q", result.Message)
	}
	if result.Summary == nil || result.Summary.Currency != "USD" {
		t.Errorf("expected default USD summary, got %+v", result.Summary)
	}
	if result.Transactions == nil {
		t.Error("transactions should be an empty slice, not nil")
	}
}

func TestSummaryPeriod(t *testing.T) {
	svc := NewService(&fakeMail{messages: []domain.EmailMessage{
		{ID: "msg-1", Subject: "Receipt", Body: "thanks"},
	}}, &fakeLLM{}, nil)

	result, err := svc.Summary(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Period != "Last 7 days" {
		t.Errorf("unexpected period: %q", result.Period)
	}
	if result.ProcessedEmails != 1 || result.TransactionsFound != 0 {
		t.Errorf("unexpected counts: %+v", result)
	}
}

func TestSaveEmptyInput(t *testing.T) {
	svc := NewService(&fakeMail{}, &fakeLLM{}, &fakeTxRepo{})

	outcomes, err := svc.Save(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcomes == nil || len(outcomes) != 0 {
		t.Errorf("expected empty outcomes, got %v", outcomes)
	}
}

func TestSaveWithoutDatabase(t *testing.T) {
	svc := NewService(&fakeMail{}, &fakeLLM{}, nil)

	_, err := svc.Save(context.Background(), []domain.Transaction{{Type: "expense"}})
	if err == nil {
		t.Fatal("expected error without a database")
	}
	var appErr *apperr.AppError
	if !errors.As(err, &appErr) {
		t.Errorf("expected AppError, got %T", err)
	}
}
