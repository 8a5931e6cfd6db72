package ai

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

type PromptType string

const (
	PromptCategory    PromptType = "category"
	PromptSentiment   PromptType = "sentiment"
	PromptSummary     PromptType = "summary"
	PromptSuggestions PromptType = "suggestions"
)

// PromptTypes lists every supported type in enrichment order.
var PromptTypes = []PromptType{PromptCategory, PromptSentiment, PromptSummary, PromptSuggestions}

var ErrUnknownPromptType = errors.New("invalid prompt type")

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// Prompts renders the per-type templates.
type Prompts struct {
	templates map[PromptType]*template.Template
}

// DefaultPrompts parses the embedded template file.
func DefaultPrompts() (*Prompts, error) {
	return ParsePrompts(defaultPromptsYAML)
}

// ParsePrompts reads a YAML mapping of prompt type to template text. Every
// supported type must be present.
func ParsePrompts(data []byte) (*Prompts, error) {
	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}

	p := &Prompts{templates: make(map[PromptType]*template.Template, len(PromptTypes))}
	for _, pt := range PromptTypes {
		text, ok := raw[string(pt)]
		if !ok || strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("parse prompts: missing %q", pt)
		}
		tmpl, err := template.New(string(pt)).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse prompt %q: %w", pt, err)
		}
		p.templates[pt] = tmpl
	}
	return p, nil
}

// Render fills the template for pt with content.
func (p *Prompts) Render(pt PromptType, content string) (string, error) {
	tmpl, ok := p.templates[pt]
	if !ok {
		return "", ErrUnknownPromptType
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, struct{ Content string }{Content: content}); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", pt, err)
	}
	return b.String(), nil
}

// ParsePromptType maps a request value to a PromptType, defaulting to category.
func ParsePromptType(s string) (PromptType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PromptCategory, nil
	}
	for _, pt := range PromptTypes {
		if string(pt) == s {
			return pt, nil
		}
	}
	return "", ErrUnknownPromptType
}
