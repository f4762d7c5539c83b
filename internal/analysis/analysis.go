// Package analysis turns a user's description of a legal situation into a
// validated model answer: prompt building, normalization of the raw
// completion, and schema validation.
package analysis

import (
	"fmt"
	"strings"
)

// Variant selects which response shape a deployment produces.
type Variant string

const (
	VariantScenarios Variant = "scenarios"
	VariantMarkdown  Variant = "markdown"
)

// ParseVariant accepts the configuration spelling of a variant.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantScenarios, "":
		return VariantScenarios, nil
	case VariantMarkdown:
		return VariantMarkdown, nil
	default:
		return "", fmt.Errorf("invalid response variant %q (valid: scenarios, markdown)", s)
	}
}

// Request is one analysis submission.
type Request struct {
	UseCase string
}

// ScenarioCard is one applicable-law suggestion.
type ScenarioCard struct {
	Act     string `json:"act"`
	Section string `json:"section"`
	Summary string `json:"summary"`
	Detail  string `json:"detail"`
	Action  string `json:"action"`
}

// MarkdownAnalysis is a single markdown narrative.
type MarkdownAnalysis struct {
	Result string `json:"result"`
}

// Result holds exactly one of Scenarios or Markdown, according to Variant.
type Result struct {
	Variant   Variant          `json:"variant"`
	Scenarios []ScenarioCard   `json:"scenarios,omitempty"`
	Markdown  MarkdownAnalysis `json:"markdown"`
	Model     string           `json:"model"`
}

// Body returns the value rendered as the HTTP response body.
func (r Result) Body() any {
	if r.Variant == VariantMarkdown {
		return r.Markdown
	}
	cards := r.Scenarios
	if cards == nil {
		cards = []ScenarioCard{}
	}
	return struct {
		Scenarios []ScenarioCard `json:"scenarios"`
	}{Scenarios: cards}
}

// Acts lists the act names cited by the scenarios, in order.
func (r Result) Acts() []string {
	acts := make([]string, 0, len(r.Scenarios))
	for _, s := range r.Scenarios {
		if s.Act != "" {
			acts = append(acts, s.Act)
		}
	}
	return acts
}
