package reply

import (
	"context"
	"fmt"

	"automail_server/core/port/out"
	"automail_server/pkg/logger"
)

// DraftDetail describes one created reply draft.
type DraftDetail struct {
	EmailID  string `json:"email_id"`
	Subject  string `json:"subject"`
	Sender   string `json:"sender"`
	DraftID  string `json:"draft_id"`
	DraftURL string `json:"draft_url"`
}

// RunResult is the outcome of an auto-reply pass.
type RunResult struct {
	Status        string        `json:"status"`
	Message       string        `json:"message"`
	Processed     int           `json:"processed"`
	DraftsCreated int           `json:"drafts_created"`
	Drafts        []DraftDetail `json:"drafts"`
}

// Service drafts replies to recent emails that warrant one. Drafts are
// threaded to the original and never sent. The pass is not idempotent:
// rerunning it drafts the same replies again.
type Service struct {
	mail out.MailProvider
	llm  out.LLMClient
	log  *logger.Logger
}

func NewService(mail out.MailProvider, llm out.LLMClient) *Service {
	return &Service{
		mail: mail,
		llm:  llm,
		log:  logger.WithComponent("auto-reply"),
	}
}

// Run checks the most recent emails and creates reply drafts for those
// judged to need a response.
func (s *Service) Run(ctx context.Context, maxEmails int) (*RunResult, error) {
	messages, err := s.mail.ListRecentMessages(ctx, maxEmails)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if len(messages) == 0 {
		s.log.Info("no emails found")
		return &RunResult{
			Status:  "success",
			Message: "No emails found",
			Drafts:  []DraftDetail{},
		}, nil
	}

	result := &RunResult{Status: "success", Drafts: []DraftDetail{}}
	for _, msg := range messages {
		result.Processed++

		shouldReply, err := s.llm.ShouldReply(ctx, msg.Subject, msg.AnalysisBody())
		if err != nil {
			s.log.WithError(err).WithField("email_id", msg.ID).Warn("should-reply check failed")
			continue
		}
		if !shouldReply {
			s.log.Info("no reply needed for: %s", msg.Subject)
			continue
		}

		replyBody, err := s.llm.GenerateReply(ctx, msg.Subject, msg.AnalysisBody())
		if err != nil {
			s.log.WithError(err).WithField("email_id", msg.ID).Error("reply generation failed")
			continue
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
			continue
		}

		result.DraftsCreated++
		result.Drafts = append(result.Drafts, DraftDetail{
			EmailID:  msg.ID,
			Subject:  msg.Subject,
			Sender:   msg.Sender,
			DraftID:  draft.ID,
			DraftURL: draft.URL,
		})
		s.log.Info("created draft reply for '%s' from %s", msg.Subject, msg.Sender)
	}

	result.Message = fmt.Sprintf("Processed %d emails, created %d draft replies",
		result.Processed, result.DraftsCreated)
	return result, nil
}
