// Package gmail adapts the Gmail API to the MailProvider port.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"automail_server/core/domain"
	"automail_server/core/port/out"
	"automail_server/pkg/resilience"
)

// Provider implements out.MailProvider for Gmail. API calls run
// through a circuit breaker so a flapping upstream fails fast.
type Provider struct {
	service     *gmailapi.Service
	cb          *gobreaker.CircuitBreaker
	concurrency int
}

// NewProvider builds a Gmail provider from an OAuth token.
func NewProvider(ctx context.Context, config *oauth2.Config, token *oauth2.Token, fetchConcurrency int) (*Provider, error) {
	if fetchConcurrency <= 0 {
		fetchConcurrency = 5
	}
	client := config.Client(ctx, token)
	service, err := gmailapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &Provider{
		service:     service,
		cb:          resilience.NewBreaker("gmail-api"),
		concurrency: fetchConcurrency,
	}, nil
}

// LoadToken reads a stored OAuth token from disk.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// GetMessage fetches one message in full.
func (p *Provider) GetMessage(ctx context.Context, id string) (*domain.EmailMessage, error) {
	msg, err := resilience.Execute(p.cb, func() (*gmailapi.Message, error) {
		return p.service.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	parsed := parseMessage(msg)
	return &parsed, nil
}

// ListRecentMessages fetches the most recent messages in full.
func (p *Provider) ListRecentMessages(ctx context.Context, max int) ([]domain.EmailMessage, error) {
	return p.ListMessagesQuery(ctx, max, "")
}

// ListMessagesQuery fetches recent messages matching a mailbox search
// query. Bodies are fetched with bounded concurrency; order follows
// the listing (newest first).
func (p *Provider) ListMessagesQuery(ctx context.Context, max int, query string) ([]domain.EmailMessage, error) {
	req := p.service.Users.Messages.List("me")
	if max > 0 {
		req = req.MaxResults(int64(max))
	}
	if query != "" {
		req = req.Q(query)
	}

	resp, err := resilience.Execute(p.cb, func() (*gmailapi.ListMessagesResponse, error) {
		return req.Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if len(resp.Messages) == 0 {
		return []domain.EmailMessage{}, nil
	}

	type result struct {
		index int
		msg   *domain.EmailMessage
		err   error
	}

	results := make(chan result, len(resp.Messages))
	semaphore := make(chan struct{}, p.concurrency)

	for i, m := range resp.Messages {
		go func(idx int, msgID string) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			msg, err := p.GetMessage(ctx, msgID)
			results <- result{index: idx, msg: msg, err: err}
		}(i, m.Id)
	}

	// A lost message would silently skew every downstream aggregate,
	// so any fetch failure fails the whole listing.
	ordered := make([]*domain.EmailMessage, len(resp.Messages))
	failedIdx := -1
	var fetchErr error
	for range resp.Messages {
		r := <-results
		if r.err != nil {
			if failedIdx == -1 || r.index < failedIdx {
				failedIdx = r.index
				fetchErr = r.err
			}
			continue
		}
		ordered[r.index] = r.msg
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch message %s: %w", resp.Messages[failedIdx].Id, fetchErr)
	}

	messages := make([]domain.EmailMessage, 0, len(ordered))
	for _, msg := range ordered {
		if msg != nil {
			messages = append(messages, *msg)
		}
	}
	return messages, nil
}

// CreateReplyDraft creates a threaded reply draft, never sent.
func (p *Provider) CreateReplyDraft(ctx context.Context, req out.DraftRequest) (*out.Draft, error) {
	raw := buildReplyMessage(req)
	draft := &gmailapi.Draft{
		Message: &gmailapi.Message{
			Raw:      base64.URLEncoding.EncodeToString([]byte(raw)),
			ThreadId: req.OriginalThreadID,
		},
	}

	created, err := resilience.Execute(p.cb, func() (*gmailapi.Draft, error) {
		return p.service.Users.Drafts.Create("me", draft).Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	return &out.Draft{
		ID:  created.Id,
		URL: fmt.Sprintf("https://mail.google.com/mail/u/0/#drafts/%s", created.Id),
	}, nil
}

// ListHistory returns messages added since the given history id.
func (p *Provider) ListHistory(ctx context.Context, startHistoryID uint64) ([]out.HistoryEvent, error) {
	var events []out.HistoryEvent
	pageToken := ""
	for {
		req := p.service.Users.History.List("me").
			StartHistoryId(startHistoryID).
			HistoryTypes("messageAdded")
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		resp, err := resilience.Execute(p.cb, func() (*gmailapi.ListHistoryResponse, error) {
			return req.Context(ctx).Do()
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list history: %w", err)
		}

		for _, h := range resp.History {
			for _, added := range h.MessagesAdded {
				if added.Message == nil {
					continue
				}
				events = append(events, out.HistoryEvent{
					MessageID: added.Message.Id,
					ThreadID:  added.Message.ThreadId,
				})
			}
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return events, nil
}

// ListLabels returns existing mailbox labels as name -> id.
func (p *Provider) ListLabels(ctx context.Context) (map[string]string, error) {
	resp, err := resilience.Execute(p.cb, func() (*gmailapi.ListLabelsResponse, error) {
		return p.service.Users.Labels.List("me").Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	labels := make(map[string]string, len(resp.Labels))
	for _, l := range resp.Labels {
		labels[l.Name] = l.Id
	}
	return labels, nil
}

// CreateLabel creates a colored, visible mailbox label.
func (p *Provider) CreateLabel(ctx context.Context, name, color string) (string, error) {
	if color == "" {
		color = "#00FF00"
	}
	label := &gmailapi.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
		Color: &gmailapi.LabelColor{
			BackgroundColor: color,
			TextColor:       "#000000",
		},
	}

	created, err := resilience.Execute(p.cb, func() (*gmailapi.Label, error) {
		return p.service.Users.Labels.Create("me", label).Context(ctx).Do()
	})
	if err != nil {
		return "", fmt.Errorf("failed to create label %q: %w", name, err)
	}
	return created.Id, nil
}

// AddLabels attaches label ids to a message.
func (p *Provider) AddLabels(ctx context.Context, messageID string, labelIDs []string) error {
	_, err := resilience.Execute(p.cb, func() (*gmailapi.Message, error) {
		return p.service.Users.Messages.Modify("me", messageID, &gmailapi.ModifyMessageRequest{
			AddLabelIds: labelIDs,
		}).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to modify message labels: %w", err)
	}
	return nil
}

// parseMessage normalizes a Gmail message. Header names match
// case-insensitively and the raw Date header is kept unparsed.
func parseMessage(msg *gmailapi.Message) domain.EmailMessage {
	em := domain.EmailMessage{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
	}
	if msg.Payload == nil {
		return em
	}

	for _, header := range msg.Payload.Headers {
		switch {
		case strings.EqualFold(header.Name, "Subject"):
			if em.Subject == "" {
				em.Subject = header.Value
			}
		case strings.EqualFold(header.Name, "From"):
			if em.Sender == "" {
				em.Sender = header.Value
			}
		case strings.EqualFold(header.Name, "Date"):
			if em.Date == "" {
				em.Date = header.Value
			}
		}
	}

	em.Body = parseBody(msg.Payload)
	return em
}

// parseBody extracts the message text, preferring text/plain parts and
// falling back to the first part. Undecodable data degrades to empty
// rather than failing the message.
func parseBody(payload *gmailapi.MessagePart) string {
	if payload == nil {
		return ""
	}

	if len(payload.Parts) > 0 {
		for _, part := range payload.Parts {
			if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
				return decodeBody(part.Body.Data)
			}
		}
		// Fallback: first part, recursing into multipart containers.
		first := payload.Parts[0]
		if len(first.Parts) > 0 {
			return parseBody(first)
		}
		if first.Body != nil {
			return decodeBody(first.Body.Data)
		}
		return ""
	}

	if payload.Body != nil {
		return decodeBody(payload.Body.Data)
	}
	return ""
}

func decodeBody(data string) string {
	if data == "" {
		return ""
	}
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}

// buildReplyMessage renders the RFC822 reply. In-Reply-To and
// References point at the original message so mail clients thread it.
func buildReplyMessage(req out.DraftRequest) string {
	var sb strings.Builder
	sb.WriteString("To: " + req.To + "\r\n")
	sb.WriteString("Subject: Re: " + req.Subject + "\r\n")
	sb.WriteString("In-Reply-To: " + req.OriginalMsgID + "\r\n")
	sb.WriteString("References: " + req.OriginalMsgID + "\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(req.Body)
	return sb.String()
}
