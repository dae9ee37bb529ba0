package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownKeys(t *testing.T) {
	for _, key := range []string{"summarize-company", "email-subject", "email-body"} {
		template, err := Get("outreach.json", key)
		require.NoError(t, err, "key %s", key)
		assert.NotEmpty(t, template)
	}
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("outreach.json", "no-such-prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-prompt")
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("missing.json", "summarize-company")
	require.Error(t, err)
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("outreach.json", "no-such-prompt")
	})
}

func TestFormat(t *testing.T) {
	template := "Summary: {{.Summary}}\nCompany Name: {{.Organization}}"
	result := Format(template, map[string]string{
		"Summary":      "sells anvils",
		"Organization": "Acme",
	})
	assert.Equal(t, "Summary: sells anvils\nCompany Name: Acme", result)
}

func TestFormat_RepeatedPlaceholder(t *testing.T) {
	result := Format("{{.Name}} and {{.Name}}", map[string]string{"Name": "Acme"})
	assert.Equal(t, "Acme and Acme", result)
}

func TestFormat_UnmatchedPlaceholderLeftIntact(t *testing.T) {
	result := Format("Hello {{.Missing}}", map[string]string{"Name": "Acme"})
	assert.Equal(t, "Hello {{.Missing}}", result)
}

func TestEmailBodyTemplate_CarriesSignature(t *testing.T) {
	template := MustGet("outreach.json", "email-body")
	assert.Contains(t, template, "Kaushalya N")
	assert.Contains(t, template, "Co-Founder")
	// The recipient placeholders must survive into the embedded copy
	for _, placeholder := range []string{"{{.Summary}}", "{{.FirstName}}"} {
		assert.True(t, strings.Contains(template, placeholder),
			"template missing %s", placeholder)
	}
}
