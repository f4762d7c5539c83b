package analysis

import (
	"github.com/tidwall/gjson"

	"legal-navigator/internal/apperror"
)

// scenarioFields are the keys every scenario element must carry as strings.
var scenarioFields = []string{"act", "section", "summary", "detail", "action"}

// ValidateScenarios converts the parsed document into scenario cards. A
// single bad element rejects the whole batch.
func ValidateScenarios(doc gjson.Result) ([]ScenarioCard, error) {
	if !doc.IsArray() {
		return nil, &apperror.SchemaViolation{Index: -1, Reason: "expected a JSON array of scenarios"}
	}
	elems := doc.Array()
	cards := make([]ScenarioCard, 0, len(elems))
	for i, el := range elems {
		if !el.IsObject() {
			return nil, &apperror.SchemaViolation{Index: i, Reason: "expected an object"}
		}
		values := make(map[string]string, len(scenarioFields))
		for _, field := range scenarioFields {
			v := el.Get(field)
			if !v.Exists() {
				return nil, &apperror.SchemaViolation{Index: i, Field: field, Reason: "missing"}
			}
			if v.Type != gjson.String {
				return nil, &apperror.SchemaViolation{Index: i, Field: field, Reason: "expected a string"}
			}
			values[field] = v.Str
		}
		cards = append(cards, ScenarioCard{
			Act:     values["act"],
			Section: values["section"],
			Summary: values["summary"],
			Detail:  values["detail"],
			Action:  values["action"],
		})
	}
	return cards, nil
}

// ValidateMarkdown checks the narrative variant. An empty narrative counts
// as a provider failure rather than a valid answer.
func ValidateMarkdown(text string) (MarkdownAnalysis, error) {
	if text == "" {
		return MarkdownAnalysis{}, &apperror.ProviderError{Message: "empty narrative returned"}
	}
	return MarkdownAnalysis{Result: text}, nil
}
