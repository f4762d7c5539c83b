package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"legal-navigator/internal/apperror"
)

const (
	defaultChatTemperature = 0.2
	systemInstruction      = "You are a careful legal research assistant. Follow the requested output format exactly."
)

// nonChatMarkers flag model ids that cannot serve chat completions.
var nonChatMarkers = []string{"embedding", "tts", "whisper", "dall-e", "transcribe", "moderation", "image", "realtime", "audio"}

// OpenAIProvider calls the OpenAI Chat Completions API.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider builds a client with SDK retries disabled; retrying is
// left to the invoker's policy.
func NewOpenAIProvider(apiKey, baseURL string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	cli := openai.NewClient(opts...)
	return &OpenAIProvider{client: &cli}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

// ListModels reports every model; OpenAI publishes no capability list, so
// chat support is inferred from the id.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("nil openai client")
	}
	var out []ModelInfo
	iter := p.client.Models.ListAutoPaging(ctx)
	for iter.Next() {
		m := iter.Current()
		out = append(out, ModelInfo{ID: m.ID, Generates: chatCapable(m.ID)})
	}
	if err := iter.Err(); err != nil {
		return nil, openAIError(err)
	}
	return out, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	if p == nil || p.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    buildMessages(systemInstruction, prompt),
		Temperature: openai.Float(defaultChatTemperature),
	})
	if err != nil {
		return "", openAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}

func chatCapable(id string) bool {
	id = strings.ToLower(id)
	for _, marker := range nonChatMarkers {
		if strings.Contains(id, marker) {
			return false
		}
	}
	return strings.HasPrefix(id, "gpt-") || strings.HasPrefix(id, "chatgpt") || strings.HasPrefix(id, "o")
}

func openAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return &apperror.ProviderError{Status: apiErr.StatusCode, Message: msg, Err: err}
	}
	return &apperror.ProviderError{Message: err.Error(), Err: err}
}
