package llm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"google.golang.org/genai"

	"legal-navigator/internal/apperror"
)

const geminiGenerateMethod = "generateContent"

// GeminiProvider calls the Gemini API through the genai SDK.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider builds a client for the Gemini API backend. baseURL is
// optional and overrides the public endpoint.
func NewGeminiProvider(ctx context.Context, apiKey, baseURL string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var out []ModelInfo
	for m, err := range p.client.Models.All(ctx) {
		if err != nil {
			return nil, geminiError(err)
		}
		out = append(out, ModelInfo{
			ID:        strings.TrimPrefix(m.Name, "models/"),
			Generates: slices.Contains(m.SupportedActions, geminiGenerateMethod),
		})
	}
	return out, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", geminiError(err)
	}
	return resp.Text(), nil
}

// geminiError converts SDK failures into provider errors, keeping the
// upstream status when the API answered.
func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &apperror.ProviderError{Status: apiErr.Code, Message: apiErr.Message, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &apperror.ProviderError{Status: apiErrPtr.Code, Message: apiErrPtr.Message, Err: err}
	}
	return &apperror.ProviderError{Message: err.Error(), Err: err}
}
