package toolmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	m := New()

	for in, want := range map[string]string{
		"Cursor":                      "Cursor",
		"copilot":                     "GitHub Copilot",
		"CODEIUM":                     "Windsurf",
		"  gpt-4o ":                   "ChatGPT Canvas",
		"Claude 3.5 Sonnet":           "Claude Code",
		"Sourcegraph Cody Enterprise": "Sourcegraph Cody",
		"Jules by Google":             "Google Jules",
		"Foobar Widget":               "Foobar Widget",
		"":                            "",
	} {
		assert.Equal(t, want, m.Normalize(in), in)
	}
}

func TestNewExtendsCatalogue(t *testing.T) {
	m := New("Foobar Widget", "Cursor")

	assert.Equal(t, "Foobar Widget", m.Normalize("foobar widget"))
	assert.Len(t, m.known, len(knownTools)+1)
	assert.Equal(t, "Amazon Q Developer", m.Normalize("codewhisperer"))
}

func TestInferCategory(t *testing.T) {
	assert.Equal(t, "code-assistant", InferCategory("Kite Pro", ""))
	assert.Equal(t, "llm", InferCategory("ChatGPT", ""))
	assert.Equal(t, "autonomous-agent", InferCategory("Foo", "an autonomous agent much like Devin"))
	assert.Equal(t, "other", InferCategory("Foo", "a database"))
}
