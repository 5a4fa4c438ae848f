package llm

import (
	"context"
	"fmt"
	"strings"

	"automail_server/core/domain"
)

const matchLabelsPrompt = `Given these categories:
%s

Which categories (by name) best fit the following email? Respond with a comma-separated list of label names, or 'none' if none fit.

Email:
%s`

// MatchLabels picks which of the user-defined labels fit the email
// text. Returns an empty slice when none fit.
func (c *Client) MatchLabels(ctx context.Context, labels []domain.LabelDef, emailText string) ([]string, error) {
	var categories strings.Builder
	for i, l := range labels {
		if i > 0 {
			categories.WriteByte('\n')
		}
		fmt.Fprintf(&categories, "- %s: %s", l.Name, l.Description)
	}

	prompt := fmt.Sprintf(matchLabelsPrompt, categories.String(), emailText)
	resp, err := c.Complete(ctx, prompt, 100)
	if err != nil {
		return nil, fmt.Errorf("match labels: %w", err)
	}

	content := strings.ToLower(strings.TrimSpace(resp))
	if content == "none" {
		return []string{}, nil
	}

	var matched []string
	for _, name := range strings.Split(content, ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			matched = append(matched, trimmed)
		}
	}
	return matched, nil
}
