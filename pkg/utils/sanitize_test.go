package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeRichTextRemovesScripts(t *testing.T) {
	out := SanitizeRichText(`<p>Hello <strong>world</strong></p><script>alert(1)</script>`)
	assert.Equal(t, `<p>Hello <strong>world</strong></p>`, out)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "plain words stay", PlainText("plain words stay"))
	assert.Equal(t, "First para Second & third", PlainText("<p>First para</p><p>Second &amp; third</p>"))
}
