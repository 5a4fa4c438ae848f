package llm

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"automail_server/core/domain"
)

const classifyPrompt = `Subject: %s
From: %s
Body: %s

Analyze this email and determine which of our processing services should handle it.
The available services are:

1. "tagging" - For categorizing emails by topic/purpose (always used)
2. "reminders" - For emails containing tasks, todos, or action items
3. "finance" - For emails containing financial transactions, bills, receipts
4. "auto_reply" - For emails that might need an automated response

Return a JSON array of service names that should process this email.
Always include "tagging" in your response, as all emails are tagged.
Only include other services if the email content is relevant to that service.

Example response for a financial email:
["tagging", "finance"]

Example response for an email requesting a meeting:
["tagging", "reminders", "auto_reply"]

Only return the JSON array, nothing else.`

// ClassifyServices routes an email to downstream services. Any failure
// degrades to {tagging} so one bad classification never stalls a batch.
func (c *Client) ClassifyServices(ctx context.Context, subject, body, sender string) []domain.ServiceTag {
	fallback := []domain.ServiceTag{domain.ServiceTagging}

	prompt := fmt.Sprintf(classifyPrompt, subject, sender, truncateBody(body, c.bodyPreview))
	resp, err := c.Complete(ctx, prompt, 100)
	if err != nil {
		c.log.WithError(err).Error("classification call failed, defaulting to tagging")
		return fallback
	}

	var names []string
	if err := json.Unmarshal([]byte(stripJSONFences(resp)), &names); err != nil {
		c.log.WithField("response", resp).Warn("unexpected classification response format")
		return fallback
	}

	services := make([]domain.ServiceTag, 0, len(names)+1)
	hasTagging := false
	for _, name := range names {
		tag := domain.ServiceTag(name)
		if tag == domain.ServiceTagging {
			hasTagging = true
		}
		services = append(services, tag)
	}
	if !hasTagging {
		services = append(services, domain.ServiceTagging)
	}
	return services
}
