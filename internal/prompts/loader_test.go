package prompts

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	prompt, err := Get("strategy.json", "executive-strategy")
	require.NoError(t, err)
	assert.Contains(t, prompt, "BLUF: The Verdict")
	assert.Equal(t, []string{"JobDescription", "Resume"}, Placeholders(prompt))
}

func TestGet_InvalidFile(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	_, err := Get("strategy.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestParseAll(t *testing.T) {
	lib, err := parseAll(fstest.MapFS{
		"a.json":     {Data: []byte(`{"greet": "Hello {{.Name}}"}`)},
		"notes.txt":  {Data: []byte("ignored")},
		"other.json": {Data: []byte(`{}`)},
	})
	require.NoError(t, err)
	assert.Len(t, lib, 2)
	assert.Equal(t, "Hello {{.Name}}", lib["a.json"]["greet"])

	_, err = parseAll(fstest.MapFS{"bad.json": {Data: []byte(`{`)}})
	assert.ErrorContains(t, err, "failed to parse prompt file bad.json")
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", Format(template, data))
}

func TestFormat_ValuesAreNotExpanded(t *testing.T) {
	template := "A={{.A}} B={{.B}}"
	data := map[string]string{
		"A": "{{.B}}",
		"B": "real",
	}

	assert.Equal(t, "A={{.B}} B=real", Format(template, data))
}

func TestFormat_UnknownPlaceholderKept(t *testing.T) {
	assert.Equal(t, "x {{.Missing}}", Format("x {{.Missing}}", map[string]string{"Other": "y"}))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Placeholders("{{.B}} {{.A}} {{.B}} {{ .C }}"))
	assert.Empty(t, Placeholders("plain"))
}
