package tagging

import (
	"context"
	"fmt"
	"strings"

	"automail_server/core/domain"
	"automail_server/core/port/out"
	"automail_server/pkg/logger"
)

// Service applies user-defined labels to recent emails. Label
// definitions live in the database; mailbox labels are created lazily
// on first use.
type Service struct {
	mail      out.MailProvider
	llm       out.LLMClient
	labelRepo out.LabelRepository
	maxEmails int
	log       *logger.Logger
}

func NewService(mail out.MailProvider, llm out.LLMClient, labelRepo out.LabelRepository, maxEmails int) *Service {
	if maxEmails <= 0 {
		maxEmails = 20
	}
	return &Service{
		mail:      mail,
		llm:       llm,
		labelRepo: labelRepo,
		maxEmails: maxEmails,
		log:       logger.WithComponent("tagging"),
	}
}

// TagRecent sweeps the most recent emails and applies matching labels.
// Label names match case-insensitively. maxEmails <= 0 uses the
// configured sweep size.
func (s *Service) TagRecent(ctx context.Context, maxEmails int) (*domain.TaggingResult, error) {
	if maxEmails <= 0 {
		maxEmails = s.maxEmails
	}
	labels, err := s.labelRepo.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load label definitions: %w", err)
	}
	if len(labels) == 0 {
		return &domain.TaggingResult{Tagged: 0, Details: []domain.TaggedEmail{}}, nil
	}

	labelByName := make(map[string]domain.LabelDef, len(labels))
	for _, l := range labels {
		labelByName[strings.ToLower(l.Name)] = l
	}

	messages, err := s.mail.ListRecentMessages(ctx, maxEmails)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if len(messages) == 0 {
		return &domain.TaggingResult{Tagged: 0, Details: []domain.TaggedEmail{}}, nil
	}

	// Seed the id cache with mailbox labels that already exist.
	labelIDs := make(map[string]string)
	existing, err := s.mail.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mailbox labels: %w", err)
	}
	for name, id := range existing {
		if _, ok := labelByName[strings.ToLower(name)]; ok {
			labelIDs[strings.ToLower(name)] = id
		}
	}

	result := &domain.TaggingResult{Details: []domain.TaggedEmail{}}
	for _, msg := range messages {
		emailText := fmt.Sprintf("Subject: %s\nSnippet: %s", msg.Subject, msg.Snippet)
		matched, err := s.llm.MatchLabels(ctx, labels, emailText)
		if err != nil {
			s.log.WithError(err).WithField("email_id", msg.ID).Warn("label matching failed")
			continue
		}
		if len(matched) == 0 {
			continue
		}

		var addIDs []string
		var applied []string
		for _, name := range matched {
			key := strings.ToLower(name)
			def, ok := labelByName[key]
			if !ok {
				continue
			}
			id, ok := labelIDs[key]
			if !ok {
				id, err = s.mail.CreateLabel(ctx, def.Name, def.Color)
				if err != nil {
					s.log.WithError(err).WithField("label", def.Name).Warn("failed to create mailbox label")
					continue
				}
				labelIDs[key] = id
			}
			addIDs = append(addIDs, id)
			applied = append(applied, def.Name)
		}
		if len(addIDs) == 0 {
			continue
		}

		if err := s.mail.AddLabels(ctx, msg.ID, addIDs); err != nil {
			s.log.WithError(err).WithField("email_id", msg.ID).Warn("failed to apply labels")
			continue
		}
		result.Tagged++
		result.Details = append(result.Details, domain.TaggedEmail{EmailID: msg.ID, Labels: applied})
	}
	return result, nil
}
