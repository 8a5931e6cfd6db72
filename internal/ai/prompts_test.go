package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPromptsRenderEveryType(t *testing.T) {
	p, err := DefaultPrompts()
	require.NoError(t, err)

	for _, pt := range PromptTypes {
		out, err := p.Render(pt, "Went hiking with Sam")
		require.NoError(t, err, pt)
		assert.Contains(t, out, `Journal Entry: "Went hiking with Sam"`, pt)
	}

	cat, _ := p.Render(PromptCategory, "x")
	assert.Contains(t, cat, "[Personal, Work, Travel, Health, Other]")
}

func TestRenderUnknownType(t *testing.T) {
	p, err := DefaultPrompts()
	require.NoError(t, err)

	_, err = p.Render(PromptType("poem"), "x")
	assert.ErrorIs(t, err, ErrUnknownPromptType)
}

func TestParsePromptsRequiresEveryType(t *testing.T) {
	_, err := ParsePrompts([]byte("category: \"{{.Content}}\"\n"))
	assert.ErrorContains(t, err, `missing "sentiment"`)

	_, err = ParsePrompts([]byte("not: [valid"))
	assert.Error(t, err)
}

func TestParsePromptType(t *testing.T) {
	pt, err := ParsePromptType("")
	require.NoError(t, err)
	assert.Equal(t, PromptCategory, pt)

	pt, err = ParsePromptType("summary")
	require.NoError(t, err)
	assert.Equal(t, PromptSummary, pt)

	_, err = ParsePromptType("Summary")
	assert.ErrorIs(t, err, ErrUnknownPromptType)
	_, err = ParsePromptType("__proto__")
	assert.ErrorIs(t, err, ErrUnknownPromptType)
}
