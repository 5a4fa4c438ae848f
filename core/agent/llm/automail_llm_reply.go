package llm

import (
	"context"
	"fmt"
	"strings"
)

const shouldReplyPrompt = `Subject: %s
Body: %s

Does this email require a reply from me? Simply answer yes or no. If it's a question, about meetup or a job related email which demands a response, reply yes.`

const generateReplyPrompt = `Subject: %s
Body: %s

Understand the tone of the message. Reply in the same tone. If the message is formal, reply formally. If the message is casual, reply casually. Only return the content, nothing else. not even 'Subject: Re:'`

// ShouldReply asks whether the email warrants a response. Only an
// answer starting with "yes" counts; anything hedged is a no.
func (c *Client) ShouldReply(ctx context.Context, subject, body string) (bool, error) {
	prompt := fmt.Sprintf(shouldReplyPrompt, subject, truncateBody(body, c.bodyPreview))
	resp, err := c.Complete(ctx, prompt, 10)
	if err != nil {
		return false, fmt.Errorf("should-reply check: %w", err)
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(resp)), "yes"), nil
}

// GenerateReply writes a reply body matching the original's tone.
func (c *Client) GenerateReply(ctx context.Context, subject, body string) (string, error) {
	prompt := fmt.Sprintf(generateReplyPrompt, subject, truncateBody(body, c.bodyPreview))
	resp, err := c.Complete(ctx, prompt, 200)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	return resp, nil
}
