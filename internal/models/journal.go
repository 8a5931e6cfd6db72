package models

import (
	"strings"
	"time"
)

// Journal is a private entry owned by exactly one user.
type Journal struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	Sentiment   string    `json:"sentiment"`
	Summary     string    `json:"summary"`
	Suggestions string    `json:"suggestions"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UserID      string    `json:"userId"`
}

// JournalInput carries the user-editable fields of an entry. Nil optional
// fields are left untouched on update.
type JournalInput struct {
	Title       string
	Content     string
	Category    *string
	Sentiment   *string
	Summary     *string
	Suggestions *string
}

// Enrichment holds AI-derived fields. Empty fields are not written.
type Enrichment struct {
	Category    string `json:"category,omitempty"`
	Sentiment   string `json:"sentiment,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Suggestions string `json:"suggestions,omitempty"`
}

var Categories = []string{"Personal", "Work", "Travel", "Health", "Other"}

var Sentiments = []string{"Positive", "Neutral", "Negative"}

// CanonicalLabel returns the entry of labels equal to s ignoring case and
// surrounding punctuation, or "" when there is none.
func CanonicalLabel(s string, labels []string) string {
	s = strings.Trim(strings.TrimSpace(s), ".!\"'()[]*` ")
	for _, l := range labels {
		if strings.EqualFold(s, l) {
			return l
		}
	}
	return ""
}
