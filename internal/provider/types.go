package provider

import "time"

// ContentItem is a raw headline or post before classification.
type ContentItem struct {
	Source       string
	SourceItemID string
	Publisher    string
	Title        string
	URL          string
	Excerpt      string
	Author       string
	PublishedAt  time.Time
	Metadata     map[string]any
}

// Text is the string the classifier sees for this item.
func (c ContentItem) Text() string {
	if c.Excerpt == "" {
		return c.Title
	}
	return c.Title + " " + c.Excerpt
}
