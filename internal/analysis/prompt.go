package analysis

import (
	"fmt"
	"strings"
)

const taskHeader = `You are a generic legal assistant. Analyze the following use case: "%s"`

const scenarioDirective = `
Task: Identify 3 distinct applicable laws, regulations, or compliance steps.
(If the user mentions a specific country, use that country's laws. If not, use general international best practices.)

CRITICAL: Return the answer as a STRICT JSON array. Do not use Markdown and do not wrap the array in code fences.

Expected JSON structure:
[
  {
    "act": "Name of Law/Act",
    "section": "Specific Section/Rule (e.g. 'Section 12' or 'Rule 45'). Do NOT use 'N/A'. Find the specific clause.",
    "summary": "Short title",
    "detail": "One sentence explanation",
    "action": "Actionable step for the user"
  }
]`

const markdownDirective = `
Task: Explain which laws, regulations, and compliance steps apply to this situation.
(If the user mentions a specific country, use that country's laws. If not, use general international best practices.)

Respond in Markdown. Use headings for each applicable law and bullet points for the concrete steps the user should take.`

// BuildPrompt returns the instruction sent to the model. The use case is
// embedded verbatim; no attempt is made to neutralize prompt injection.
func BuildPrompt(variant Variant, useCase string) string {
	var b strings.Builder
	fmt.Fprintf(&b, taskHeader, useCase)
	b.WriteString("\n")
	if variant == VariantMarkdown {
		b.WriteString(markdownDirective)
	} else {
		b.WriteString(scenarioDirective)
	}
	b.WriteString("\n")
	return b.String()
}
