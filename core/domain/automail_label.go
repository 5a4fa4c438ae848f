package domain

// LabelDef is a user-defined label the tagging sweep may apply,
// sourced from the email_labels table.
type LabelDef struct {
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Color       string `json:"color" db:"color"`
}

// TaggedEmail records the labels applied to one message.
type TaggedEmail struct {
	EmailID string   `json:"email_id"`
	Labels  []string `json:"labels"`
}

// TaggingResult summarizes one tagging sweep.
type TaggingResult struct {
	Tagged  int           `json:"tagged"`
	Details []TaggedEmail `json:"details"`
}
