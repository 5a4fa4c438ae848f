package tagging

import (
	"context"
	"errors"
	"strings"
	"testing"

	"automail_server/core/domain"
	"automail_server/core/port/out"
)

type fakeMail struct {
	messages     []domain.EmailMessage
	labels       map[string]string
	created      []string
	applied      map[string][]string
	createErr    error
	addLabelsErr error
}

func (f *fakeMail) ListRecentMessages(ctx context.Context, max int) ([]domain.EmailMessage, error) {
	if max < len(f.messages) {
		return f.messages[:max], nil
	}
	return f.messages, nil
}

func (f *fakeMail) ListMessagesQuery(ctx context.Context, max int, query string) ([]domain.EmailMessage, error) {
	return f.ListRecentMessages(ctx, max)
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
	if f.labels == nil {
		return map[string]string{}, nil
	}
	return f.labels, nil
}

func (f *fakeMail) CreateLabel(ctx context.Context, name, color string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, name)
	return "id-" + name, nil
}

func (f *fakeMail) AddLabels(ctx context.Context, messageID string, labelIDs []string) error {
	if f.addLabelsErr != nil {
		return f.addLabelsErr
	}
	if f.applied == nil {
		f.applied = make(map[string][]string)
	}
	f.applied[messageID] = append(f.applied[messageID], labelIDs...)
	return nil
}

type fakeLLM struct {
	matches map[string][]string
	err     error
}

func (f *fakeLLM) MatchLabels(ctx context.Context, labels []domain.LabelDef, emailText string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	for id, m := range f.matches {
		if strings.Contains(emailText, id) {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeLLM) ClassifyServices(ctx context.Context, subject, body, sender string) []domain.ServiceTag {
	return nil
}

func (f *fakeLLM) ExtractTransactions(ctx context.Context, subject, body, sender string) []domain.Transaction {
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

type fakeLabelRepo struct {
	labels []domain.LabelDef
	err    error
}

func (f *fakeLabelRepo) ListLabels(ctx context.Context) ([]domain.LabelDef, error) {
	return f.labels, f.err
}

func TestTagRecentCreatesMissingLabels(t *testing.T) {
	mail := &fakeMail{
		messages: []domain.EmailMessage{
			{ID: "msg-1", Subject: "Trip itinerary msg-1", Snippet: "flight details"},
		},
	}
	llm := &fakeLLM{matches: map[string][]string{"msg-1": {"travel"}}}
	repo := &fakeLabelRepo{labels: []domain.LabelDef{{Name: "Travel", Color: "#4986e7"}}}
	svc := NewService(mail, llm, repo, 20)

	result, err := svc.TagRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Tagged != 1 {
		t.Fatalf("expected 1 tagged email, got %d", result.Tagged)
	}
	if len(mail.created) != 1 || mail.created[0] != "Travel" {
		t.Errorf("expected Travel label created, got %v", mail.created)
	}
	if got := mail.applied["msg-1"]; len(got) != 1 || got[0] != "id-Travel" {
		t.Errorf("unexpected applied label ids: %v", got)
	}
	if len(result.Details) != 1 || result.Details[0].Labels[0] != "Travel" {
		t.Errorf("unexpected details: %+v", result.Details)
	}
}

func TestTagRecentReusesExistingLabels(t *testing.T) {
	mail := &fakeMail{
		messages: []domain.EmailMessage{
			{ID: "msg-1", Subject: "Quarterly report msg-1"},
		},
		labels: map[string]string{"WORK": "Label_7"},
	}
	llm := &fakeLLM{matches: map[string][]string{"msg-1": {"Work"}}}
	repo := &fakeLabelRepo{labels: []domain.LabelDef{{Name: "work", Color: "#fb4c2f"}}}
	svc := NewService(mail, llm, repo, 20)

	result, err := svc.TagRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Tagged != 1 {
		t.Fatalf("expected 1 tagged email, got %d", result.Tagged)
	}
	if len(mail.created) != 0 {
		t.Errorf("should reuse the existing mailbox label, created %v", mail.created)
	}
	if got := mail.applied["msg-1"]; len(got) != 1 || got[0] != "Label_7" {
		t.Errorf("unexpected applied label ids: %v", got)
	}
}

func TestTagRecentIgnoresUnknownMatches(t *testing.T) {
	mail := &fakeMail{
		messages: []domain.EmailMessage{
			{ID: "msg-1", Subject: "Something msg-1"},
		},
	}
	llm := &fakeLLM{matches: map[string][]string{"msg-1": {"spam", "Promotions"}}}
	repo := &fakeLabelRepo{labels: []domain.LabelDef{{Name: "Work", Color: "#fb4c2f"}}}
	svc := NewService(mail, llm, repo, 20)

	result, err := svc.TagRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Tagged != 0 {
		t.Errorf("labels outside the defined set must not be applied: %+v", result)
	}
	if len(mail.applied) != 0 {
		t.Errorf("unexpected label application: %v", mail.applied)
	}
}

func TestTagRecentNoLabelDefinitions(t *testing.T) {
	svc := NewService(&fakeMail{}, &fakeLLM{}, &fakeLabelRepo{}, 20)

	result, err := svc.TagRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Tagged != 0 || result.Details == nil {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestTagRecentLabelRepoFailure(t *testing.T) {
	repo := &fakeLabelRepo{err: errors.New("connection refused")}
	svc := NewService(&fakeMail{}, &fakeLLM{}, repo, 20)

	if _, err := svc.TagRecent(context.Background(), 0); err == nil {
		t.Error("expected error when label definitions cannot load")
	}
}

func TestTagRecentMatchFailureSkipsEmail(t *testing.T) {
	mail := &fakeMail{
		messages: []domain.EmailMessage{{ID: "msg-1", Subject: "Anything msg-1"}},
	}
	llm := &fakeLLM{err: errors.New("model unavailable")}
	repo := &fakeLabelRepo{labels: []domain.LabelDef{{Name: "Work", Color: "#fb4c2f"}}}
	svc := NewService(mail, llm, repo, 20)

	result, err := svc.TagRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("match failures should not abort the sweep: %v", err)
	}
	if result.Tagged != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestTagRecentSweepSizeOverride(t *testing.T) {
	mail := &fakeMail{
		messages: []domain.EmailMessage{
			{ID: "msg-1", Subject: "a msg-1"},
			{ID: "msg-2", Subject: "b msg-2"},
			{ID: "msg-3", Subject: "c msg-3"},
		},
	}
	repo := &fakeLabelRepo{labels: []domain.LabelDef{{Name: "Work", Color: "#fb4c2f"}}}
	svc := NewService(mail, &fakeLLM{}, repo, 20)

	result, err := svc.TagRecent(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only the first two messages are swept; none match so none tag.
	if result.Tagged != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
}
