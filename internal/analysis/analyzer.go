package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"legal-navigator/internal/apperror"
	"legal-navigator/internal/llm"
)

// Invoker sends a prompt to the configured model and returns its completion.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (llm.Completion, error)
}

// Analyzer builds the prompt, calls the model, then normalizes and validates the answer for one
// response variant.
type Analyzer struct {
	invoker Invoker
	variant Variant
	log     *slog.Logger
}

func NewAnalyzer(invoker Invoker, variant Variant, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{invoker: invoker, variant: variant, log: log}
}

// Variant reports which response shape this analyzer produces.
func (a *Analyzer) Variant() Variant { return a.variant }

// Analyze runs a single request through the pipeline. Every failure is
// terminal; nothing is partially returned.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.UseCase) == "" {
		return Result{}, &apperror.ValidationError{Field: "useCase", Reason: "must not be empty"}
	}

	prompt := BuildPrompt(a.variant, req.UseCase)
	completion, err := a.invoker.Invoke(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("invoke model: %w", err)
	}

	doc, err := Normalize(a.variant, completion.Text)
	if err != nil {
		var mo *apperror.MalformedModelOutput
		if errors.As(err, &mo) {
			a.log.Warn("malformed model output", "model", completion.Model, "cleaned", mo.Cleaned)
		}
		return Result{}, fmt.Errorf("normalize completion: %w", err)
	}

	res := Result{Variant: a.variant, Model: completion.Model}
	switch a.variant {
	case VariantMarkdown:
		md, err := ValidateMarkdown(doc.Text)
		if err != nil {
			return Result{}, fmt.Errorf("validate narrative: %w", err)
		}
		res.Markdown = md
	default:
		cards, err := ValidateScenarios(doc.JSON)
		if err != nil {
			a.log.Warn("scenario schema violation", "model", completion.Model, "err", err)
			return Result{}, fmt.Errorf("validate scenarios: %w", err)
		}
		res.Scenarios = cards
	}
	return res, nil
}
