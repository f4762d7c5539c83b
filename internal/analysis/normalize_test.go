package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-navigator/internal/apperror"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"clean", `[{"a":1}]`, `[{"a":1}]`},
		{"json fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"upper tag", "```JSON\n[]\n```", `[]`},
		{"bare fence", "```\n{\"result\":\"x\"}\n```", `{"result":"x"}`},
		{"surrounding whitespace", "\n\n  ```json\n[]\n```  \n", `[]`},
		{"no closing fence", "```json\n[1,2]", `[1,2]`},
		{"double wrapped", "```\n```json\n[]\n```\n```", `[]`},
		{"plain text", "not json at all", "not json at all"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.raw))
		})
	}
}

func TestStripFencesIdempotent(t *testing.T) {
	clean := `[{"act":"A","section":"1","summary":"s","detail":"d","action":"x"}]`
	fenced := "```json\n" + clean + "\n```"

	assert.Equal(t, StripFences(clean), StripFences(fenced))
	assert.Equal(t, StripFences(fenced), StripFences(StripFences(fenced)))
}

func TestNormalizeScenarioMalformed(t *testing.T) {
	_, err := Normalize(VariantScenarios, "```json\nnot json at all\n```")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrMalformedOutput)

	var mo *apperror.MalformedModelOutput
	require.ErrorAs(t, err, &mo)
	assert.Equal(t, "not json at all", mo.Cleaned)
}

func TestNormalizeMarkdownIsIdentity(t *testing.T) {
	raw := "```\n# Heading\n- bullet\n```\n"

	doc, err := Normalize(VariantMarkdown, raw)

	require.NoError(t, err)
	assert.Equal(t, raw, doc.Text)
	assert.False(t, doc.JSON.Exists())
}

func TestNormalizeValidateRoundTrip(t *testing.T) {
	cards := []ScenarioCard{
		{Act: "Consumer Credit Act", Section: "Section 75", Summary: "Card protection", Detail: "d1", Action: "a1"},
		{Act: "Sale of Goods Act", Section: "Section 14", Summary: "Quality", Detail: "d2", Action: "a2"},
		{Act: "", Section: "", Summary: "", Detail: "", Action: ""},
	}
	body, err := json.Marshal(cards)
	require.NoError(t, err)

	for _, raw := range []string{string(body), "```json\n" + string(body) + "\n```", "```" + string(body) + "```"} {
		doc, err := Normalize(VariantScenarios, raw)
		require.NoError(t, err)

		got, err := ValidateScenarios(doc.JSON)
		require.NoError(t, err)
		assert.Equal(t, cards, got)
	}
}
