package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"legal-navigator/internal/apperror"
	"legal-navigator/internal/retry"
)

// AutoModel asks the invoker to discover a model on every call.
const AutoModel = "auto"

const defaultCallTimeout = 30 * time.Second

// InvokerConfig controls model selection and call bounds.
type InvokerConfig struct {
	Model   string
	Family  string
	Timeout time.Duration
	Policy  retry.Policy
}

// Invoker resolves a model and sends prompts to a Provider.
type Invoker struct {
	provider Provider
	cfg      InvokerConfig
	log      *slog.Logger
}

func NewInvoker(p Provider, cfg InvokerConfig, log *slog.Logger) *Invoker {
	if cfg.Model == "" {
		cfg.Model = AutoModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultCallTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Invoker{provider: p, cfg: cfg, log: log}
}

// Invoke sends prompt to the resolved model and returns the first candidate.
func (i *Invoker) Invoke(ctx context.Context, prompt string) (Completion, error) {
	model, err := i.ResolveModel(ctx)
	if err != nil {
		return Completion{}, err
	}

	var text string
	err = i.cfg.Policy.Do(ctx, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, i.cfg.Timeout)
		defer cancel()
		out, err := i.provider.Generate(callCtx, model, prompt)
		if err != nil {
			i.log.Warn("generation failed", "provider", i.provider.Name(), "model", model, "err", err)
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		return Completion{}, fmt.Errorf("generate with %s: %w", model, err)
	}
	if strings.TrimSpace(text) == "" {
		return Completion{}, &apperror.ProviderError{Message: "empty completion returned by " + model}
	}
	return Completion{Text: text, Model: model}, nil
}

// ResolveModel returns the configured model, or discovers one when the
// configuration says auto.
func (i *Invoker) ResolveModel(ctx context.Context) (string, error) {
	if !strings.EqualFold(i.cfg.Model, AutoModel) {
		return i.cfg.Model, nil
	}
	models, err := i.Models(ctx)
	if err != nil {
		return "", err
	}
	model, err := SelectModel(models, i.cfg.Family)
	if err != nil {
		return "", err
	}
	i.log.Debug("discovered model", "provider", i.provider.Name(), "model", model)
	return model, nil
}

// Models lists what the provider reports, bounded by the call timeout.
func (i *Invoker) Models(ctx context.Context) ([]ModelInfo, error) {
	callCtx, cancel := context.WithTimeout(ctx, i.cfg.Timeout)
	defer cancel()
	models, err := i.provider.ListModels(callCtx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return models, nil
}

// SelectModel picks the first model that can generate text and whose id
// contains family. Provider order is preserved.
func SelectModel(models []ModelInfo, family string) (string, error) {
	family = strings.ToLower(family)
	for _, m := range models {
		if m.Generates && strings.Contains(strings.ToLower(m.ID), family) {
			return m.ID, nil
		}
	}
	return "", &apperror.ModelUnavailable{Family: family}
}
