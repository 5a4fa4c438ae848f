package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"automail_server/core/domain"
	"automail_server/core/port/out"
	"automail_server/core/service/tagging"
	"automail_server/pkg/logger"
)

// Options control side effects of a processing run.
type Options struct {
	SaveToDB     bool
	CreateDrafts bool
}

// BatchResult is the outcome of a batch orchestration run.
type BatchResult struct {
	Status        string                 `json:"status"`
	Message       string                 `json:"message"`
	Processed     int                    `json:"processed"`
	TaggingResult *domain.TaggingResult  `json:"tagging_result,omitempty"`
	Results       []domain.ProcessResult `json:"results"`
}

// WebhookResult is the outcome of processing one mailbox notification.
type WebhookResult struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message"`
	Duplicate bool                   `json:"duplicate,omitempty"`
	Processed int                    `json:"processed"`
	Results   []domain.ProcessResult `json:"results,omitempty"`
}

// Service routes emails through classification and the selected
// downstream services.
type Service struct {
	mail    out.MailProvider
	llm     out.LLMClient
	txRepo  out.TransactionRepository
	remRepo out.ReminderRepository
	runRepo out.RunRepository
	deduper out.Deduper
	tagger  *tagging.Service

	dedupeTTL time.Duration
	log       *logger.Logger
}

func NewService(
	mail out.MailProvider,
	llm out.LLMClient,
	txRepo out.TransactionRepository,
	remRepo out.ReminderRepository,
	runRepo out.RunRepository,
	deduper out.Deduper,
	tagger *tagging.Service,
	dedupeTTL time.Duration,
) *Service {
	return &Service{
		mail:      mail,
		llm:       llm,
		txRepo:    txRepo,
		remRepo:   remRepo,
		runRepo:   runRepo,
		deduper:   deduper,
		tagger:    tagger,
		dedupeTTL: dedupeTTL,
		log:       logger.WithComponent("orchestrator"),
	}
}

// ProcessEmail routes one email through its selected services. Any
// failure, including a panic in a downstream step, yields an
// error-shaped result instead of propagating.
func (s *Service) ProcessEmail(ctx context.Context, msg domain.EmailMessage, opts Options) (result domain.ProcessResult) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("email_id", msg.ID).Error("panic while processing email: %v", r)
			result = domain.ErrorResult(msg.ID, fmt.Sprintf("error processing email: %v", r))
		}
	}()

	// An empty message gives the classifier nothing to work with, so
	// skip the call and fall through to the tagging sweep.
	var services []domain.ServiceTag
	if msg.HasContent() {
		services = s.llm.ClassifyServices(ctx, msg.Subject, msg.AnalysisBody(), msg.Sender)
	} else {
		services = []domain.ServiceTag{domain.ServiceTagging}
	}
	s.log.WithField("email_id", msg.ID).
		WithField("services", services).
		Info("processing email '%s'", msg.Subject)

	result = domain.ProcessResult{
		EmailID:      msg.ID,
		ThreadID:     msg.ThreadID,
		Subject:      msg.Subject,
		Sender:       msg.Sender,
		Date:         msg.Date,
		ServicesUsed: services,
	}

	// Tagging runs as a batch sweep, single messages only note the request.
	result.Tagging = &domain.ServiceStatus{Status: "requested"}

	if hasService(services, domain.ServiceReminders) {
		result.Reminders = s.processReminders(ctx, msg, opts)
	}
	if hasService(services, domain.ServiceFinance) {
		result.Finance = s.processFinance(ctx, msg, opts)
	}
	if hasService(services, domain.ServiceAutoReply) {
		result.AutoReply = s.processAutoReply(ctx, msg, opts)
	}

	return result
}

func (s *Service) processReminders(ctx context.Context, msg domain.EmailMessage, opts Options) *domain.ExtractionResult[domain.Reminder] {
	reminders := s.llm.ExtractReminders(ctx, msg.Subject, msg.AnalysisBody())
	for i := range reminders {
		reminders[i].EmailID = msg.ID
		reminders[i].EmailThreadID = msg.ThreadID
		reminders[i].Sender = msg.Sender
		reminders[i].Date = msg.Date
	}

	res := &domain.ExtractionResult[domain.Reminder]{
		Found: len(reminders),
		Items: reminders,
	}
	if opts.SaveToDB && s.remRepo != nil && len(reminders) > 0 {
		outcomes, err := s.remRepo.SaveReminders(ctx, reminders)
		if err != nil {
			s.log.WithError(err).WithField("email_id", msg.ID).Error("failed to save reminders")
		} else {
			res.SavedToDB = domain.AllPersisted(outcomes)
			res.Outcomes = outcomes
		}
	}
	return res
}

func (s *Service) processFinance(ctx context.Context, msg domain.EmailMessage, opts Options) *domain.ExtractionResult[domain.Transaction] {
	transactions := s.llm.ExtractTransactions(ctx, msg.Subject, msg.AnalysisBody(), msg.Sender)
	for i := range transactions {
		transactions[i].EmailID = msg.ID
		transactions[i].EmailThreadID = msg.ThreadID
		transactions[i].EmailDate = msg.Date
		transactions[i].Body = msg.AnalysisBody()
	}

	res := &domain.ExtractionResult[domain.Transaction]{
		Found: len(transactions),
		Items: transactions,
	}
	if opts.SaveToDB && s.txRepo != nil && len(transactions) > 0 {
		outcomes, err := s.txRepo.SaveTransactions(ctx, transactions)
		if err != nil {
			s.log.WithError(err).WithField("email_id", msg.ID).Error("failed to save transactions")
		} else {
			res.SavedToDB = domain.AllPersisted(outcomes)
			res.Outcomes = outcomes
		}
	}
	return res
}

func (s *Service) processAutoReply(ctx context.Context, msg domain.EmailMessage, opts Options) *domain.AutoReplyResult {
	shouldReply, err := s.llm.ShouldReply(ctx, msg.Subject, msg.AnalysisBody())
	if err != nil {
		s.log.WithError(err).WithField("email_id", msg.ID).Error("should-reply check failed")
		return &domain.AutoReplyResult{ShouldReply: false}
	}
	if !shouldReply {
		return &domain.AutoReplyResult{ShouldReply: false}
	}

	replyBody, err := s.llm.GenerateReply(ctx, msg.Subject, msg.AnalysisBody())
	if err != nil {
		s.log.WithError(err).WithField("email_id", msg.ID).Error("reply generation failed")
		return &domain.AutoReplyResult{ShouldReply: true}
	}

	res := &domain.AutoReplyResult{
		ShouldReply: true,
		ReplyBody:   replyBody,
	}
	if !opts.CreateDrafts {
		return res
	}

	draft, err := s.mail.CreateReplyDraft(ctx, out.DraftRequest{
		OriginalMsgID:    msg.ID,
		OriginalThreadID: msg.ThreadID,
		To:               msg.Sender,
		Subject:          msg.Subject,
		Body:             replyBody,
	})
	if err != nil {
		s.log.WithError(err).WithField("email_id", msg.ID).Error("draft creation failed")
		return res
	}

	res.DraftCreated = true
	res.DraftID = draft.ID
	res.DraftURL = draft.URL
	return res
}

// ProcessRecent runs the full pipeline over the most recent emails,
// then sweeps them through batch tagging.
func (s *Service) ProcessRecent(ctx context.Context, maxEmails int, opts Options) (*BatchResult, error) {
	start := time.Now()

	messages, err := s.mail.ListRecentMessages(ctx, maxEmails)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if len(messages) == 0 {
		s.log.Info("no emails found")
		return &BatchResult{
			Status:    "success",
			Message:   "No emails found",
			Processed: 0,
			Results:   []domain.ProcessResult{},
		}, nil
	}

	results := make([]domain.ProcessResult, 0, len(messages))
	for _, msg := range messages {
		results = append(results, s.ProcessEmail(ctx, msg, opts))
	}

	// Tagging sweeps the mailbox in batch, independent of the
	// per-message placeholders above.
	var tagResult *domain.TaggingResult
	if s.tagger != nil {
		tagResult, err = s.tagger.TagRecent(ctx, 0)
		if err != nil {
			s.log.WithError(err).Warn("batch tagging sweep failed")
		}
	}

	s.recordRun(ctx, domain.RunBatch, results, start)

	return &BatchResult{
		Status:        "success",
		Message:       fmt.Sprintf("Processed %d emails", len(results)),
		Processed:     len(results),
		TaggingResult: tagResult,
		Results:       results,
	}, nil
}

// ProcessOne fetches and processes a single email by id.
func (s *Service) ProcessOne(ctx context.Context, id string, opts Options) (*domain.ProcessResult, error) {
	msg, err := s.mail.GetMessage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %s: %w", id, err)
	}

	result := s.ProcessEmail(ctx, *msg, opts)
	s.recordRun(ctx, domain.RunSingle, []domain.ProcessResult{result}, time.Now())
	return &result, nil
}

// HandleNotification processes a mailbox change notification. The
// history id is claimed in the deduper first so redelivered
// notifications do not reprocess the same messages.
func (s *Service) HandleNotification(ctx context.Context, emailAddress string, historyID uint64, opts Options) (*WebhookResult, error) {
	start := time.Now()

	if s.deduper != nil {
		key := fmt.Sprintf("webhook:%s:%d", emailAddress, historyID)
		acquired, err := s.deduper.TryAcquire(ctx, key, s.dedupeTTL)
		if err != nil {
			s.log.WithError(err).Warn("webhook dedupe check failed, processing anyway")
		} else if !acquired {
			return &WebhookResult{
				Status:    "success",
				Message:   "notification already processed",
				Duplicate: true,
			}, nil
		}
	}

	events, err := s.mail.ListHistory(ctx, historyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	results := make([]domain.ProcessResult, 0, len(events))
	for _, ev := range events {
		msg, err := s.mail.GetMessage(ctx, ev.MessageID)
		if err != nil {
			s.log.WithError(err).WithField("email_id", ev.MessageID).Error("failed to fetch history message")
			results = append(results, domain.ErrorResult(ev.MessageID, fmt.Sprintf("failed to fetch message: %v", err)))
			continue
		}
		results = append(results, s.ProcessEmail(ctx, *msg, opts))
	}

	s.recordRun(ctx, domain.RunWebhook, results, start)

	return &WebhookResult{
		Status:    "success",
		Message:   fmt.Sprintf("Processed %d new messages", len(results)),
		Processed: len(results),
		Results:   results,
	}, nil
}

// recordRun writes an audit row, best effort.
func (s *Service) recordRun(ctx context.Context, kind domain.RunKind, results []domain.ProcessResult, start time.Time) {
	if s.runRepo == nil {
		return
	}

	errored := 0
	serviceSet := make(map[string]struct{})
	for _, r := range results {
		if r.Status == "error" {
			errored++
		}
		for _, tag := range r.ServicesUsed {
			// The classifier passes unknown tags through untouched, the
			// audit row only counts the ones we dispatch on.
			if domain.IsKnownServiceTag(string(tag)) {
				serviceSet[string(tag)] = struct{}{}
			}
		}
	}
	services := make([]string, 0, len(serviceSet))
	for tag := range serviceSet {
		services = append(services, tag)
	}

	run := domain.ProcessingRun{
		ID:           uuid.New().String(),
		Kind:         kind,
		Processed:    len(results),
		Errored:      errored,
		ServicesUsed: services,
		Duration:     time.Since(start),
		StartedAt:    start,
	}
	if err := s.runRepo.RecordRun(ctx, run); err != nil {
		s.log.WithError(err).Warn("failed to record processing run")
	}
}

func hasService(services []domain.ServiceTag, want domain.ServiceTag) bool {
	for _, s := range services {
		if s == want {
			return true
		}
	}
	return false
}
