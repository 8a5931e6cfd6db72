package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richTextPolicy = bluemonday.UGCPolicy()
	plainPolicy    = bluemonday.StrictPolicy()
)

// SanitizeRichText strips scripts, handlers and unsafe URLs from editor HTML
// while keeping formatting tags.
func SanitizeRichText(s string) string {
	return strings.TrimSpace(richTextPolicy.Sanitize(s))
}

// PlainText drops every tag and decodes entities. Block-level boundaries are
// kept as whitespace so words from adjacent paragraphs don't run together.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	s = strings.NewReplacer("<", " <", ">", "> ").Replace(s)
	return strings.Join(strings.Fields(html.UnescapeString(plainPolicy.Sanitize(s))), " ")
}
