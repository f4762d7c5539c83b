package analysis

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"legal-navigator/internal/apperror"
)

const fence = "```"

var errInvalidJSON = errors.New("invalid JSON")

// Document is the normalized completion: Text is the cleaned completion and
// JSON is its untyped parse (zero for the markdown variant).
type Document struct {
	Text string
	JSON gjson.Result
}

// StripFences removes markdown code-fence delimiters (optionally tagged
// json) and surrounding whitespace. Applying it twice yields the same text.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		next := stripOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func stripOnce(s string) string {
	if strings.HasPrefix(s, fence) {
		s = strings.TrimPrefix(s, fence)
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

// Normalize cleans the raw completion. For the scenario variant the cleaned
// text must be valid JSON; the markdown narrative is passed through as is.
func Normalize(variant Variant, raw string) (Document, error) {
	if variant == VariantMarkdown {
		return Document{Text: raw}, nil
	}
	cleaned := StripFences(raw)
	if !gjson.Valid(cleaned) {
		return Document{}, &apperror.MalformedModelOutput{Cleaned: cleaned, Err: errInvalidJSON}
	}
	return Document{Text: cleaned, JSON: gjson.Parse(cleaned)}, nil
}
