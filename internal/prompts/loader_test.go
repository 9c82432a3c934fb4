package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(AnalysisFile, KeyExtractResume)
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "{{.ResumeText}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(AnalysisFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() {
		prompt := MustGet(AnalysisFile, KeyExtractResume)
		assert.NotEmpty(t, prompt)
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Ada",
		"Company": "Acme Corp",
	}

	result := Format(template, data)
	assert.Equal(t, "Hello Ada, welcome to Acme Corp!", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	data := map[string]string{"Key": "Value"}

	result := Format(template, data)
	assert.Equal(t, template, result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	data := map[string]string{}

	result := Format(template, data)
	assert.Equal(t, template, result) // Placeholder remains
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List(AnalysisFile)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{KeyExtractResume, KeyScoreResume, KeyInterviewQuestion, KeyVoiceFallback}, keys)
}

func TestCaching(t *testing.T) {
	ClearCache()

	// First call loads from file
	prompt1, err := Get(AnalysisFile, KeyExtractResume)
	require.NoError(t, err)

	// Second call should use cache
	prompt2, err := Get(AnalysisFile, KeyExtractResume)
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}

func TestRender_FillsAllPlaceholders(t *testing.T) {
	ClearCache()

	prompt, err := Render(KeyScoreResume, map[string]string{
		"JobTitle":       "Backend Engineer",
		"JobDescription": "Python, AWS, Docker",
		"ResumeContext":  `{"skills":["Python"]}`,
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, `"Backend Engineer"`)
	assert.Contains(t, prompt, "Python, AWS, Docker")
	assert.NotContains(t, prompt, "{{.")
}

func TestRender_UnknownKey(t *testing.T) {
	_, err := Render("missing", nil)
	assert.Error(t, err)
}
