package reminders

import (
	"context"
	"errors"
	"testing"

	"automail_server/core/domain"
	"automail_server/core/port/out"
)

type fakeMail struct {
	messages []domain.EmailMessage
	listErr  error
}

func (f *fakeMail) ListRecentMessages(ctx context.Context, max int) ([]domain.EmailMessage, error) {
	return f.messages, f.listErr
}

func (f *fakeMail) ListMessagesQuery(ctx context.Context, max int, query string) ([]domain.EmailMessage, error) {
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
	reminders map[string][]domain.Reminder
}

func (f *fakeLLM) ExtractReminders(ctx context.Context, subject, body string) []domain.Reminder {
	return f.reminders[subject]
}

func (f *fakeLLM) ClassifyServices(ctx context.Context, subject, body, sender string) []domain.ServiceTag {
	return nil
}

func (f *fakeLLM) ExtractTransactions(ctx context.Context, subject, body, sender string) []domain.Transaction {
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

type fakeRemRepo struct {
	saved [][]domain.Reminder
}

func (f *fakeRemRepo) SaveReminders(ctx context.Context, reminders []domain.Reminder) ([]domain.SaveOutcome, error) {
	f.saved = append(f.saved, reminders)
	outcomes := make([]domain.SaveOutcome, len(reminders))
	for i := range reminders {
		outcomes[i] = domain.SaveOutcome{ID: "rem", Status: domain.SaveInserted}
	}
	return outcomes, nil
}

func TestExtractStampsProvenance(t *testing.T) {
	mail := &fakeMail{messages: []domain.EmailMessage{
		{ID: "msg-1", ThreadID: "thread-1", Subject: "Standup notes", Sender: "lead@example.com", Date: "Mon, 5 Jan 2026 10:00:00 +0000", Body: "action items"},
		{ID: "msg-2", Subject: "Newsletter", Body: "nothing actionable"},
	}}
	llm := &fakeLLM{reminders: map[string][]domain.Reminder{
		"Standup notes": {
			{Task: "Send the report", Priority: "high"},
			{Task: "Book the room", Priority: "low"},
		},
	}}
	svc := NewService(mail, llm, nil)

	result, err := svc.Extract(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 2 || result.RemindersFound != 2 {
		t.Errorf("unexpected counts: %+v", result)
	}
	for _, r := range result.Reminders {
		if r.EmailID != "msg-1" || r.EmailThreadID != "thread-1" || r.Sender != "lead@example.com" {
			t.Errorf("provenance not stamped: %+v", r)
		}
	}
}

func TestExtractEmptyMailbox(t *testing.T) {
	svc := NewService(&fakeMail{}, &fakeLLM{}, nil)

	result, err := svc.Extract(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Message != "No emails found" || result.Reminders == nil {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestExtractNothingFound(t *testing.T) {
	mail := &fakeMail{messages: []domain.EmailMessage{
		{ID: "msg-1", Subject: "Newsletter", Body: "nothing actionable"},
	}}
	svc := NewService(mail, &fakeLLM{}, nil)

	result, err := svc.Extract(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RemindersFound != 0 || result.Reminders == nil {
		t.Errorf("expected empty slice result, got %+v", result)
	}
}

func TestSaveEmptyInput(t *testing.T) {
	svc := NewService(&fakeMail{}, &fakeLLM{}, &fakeRemRepo{})

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

	if _, err := svc.Save(context.Background(), []domain.Reminder{{Task: "anything"}}); err == nil {
		t.Error("expected error without a database")
	}
}

func TestSaveDelegatesToRepository(t *testing.T) {
	repo := &fakeRemRepo{}
	svc := NewService(&fakeMail{}, &fakeLLM{}, repo)

	outcomes, err := svc.Save(context.Background(), []domain.Reminder{{Task: "Send the report"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcomes) != 1 || len(repo.saved) != 1 {
		t.Errorf("unexpected outcomes: %v", outcomes)
	}
}
