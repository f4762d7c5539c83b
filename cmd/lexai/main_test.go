package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"legal-navigator/internal/analysis"
	"legal-navigator/internal/apperror"
	"legal-navigator/internal/config"
	"legal-navigator/internal/llm"
)

const twoCards = `[
  {"act":"Residential Tenancies Act","section":"s. 134","summary":"Deposits","detail":"Deposits must be returned.","action":"Write to the landlord."},
  {"act":"Consumer Protection Act","section":"s. 17","summary":"Unfair practices","detail":"Unfair terms are void.","action":"Keep records."}
]`

func testBuild(inv *analysis.MockInvoker, provider *llm.MockProvider) buildFunc {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return func(ctx context.Context, variant string) (*analysis.Analyzer, *llm.Invoker, config.Config, error) {
		v, err := analysis.ParseVariant(variant)
		if err != nil {
			return nil, nil, config.Config{}, err
		}
		cfg := config.Config{MaxUseCaseLength: 100, ModelFamily: "gemini"}
		return analysis.NewAnalyzer(inv, v, log), llm.NewInvoker(provider, llm.InvokerConfig{Model: llm.AutoModel, Family: "gemini"}, log), cfg, nil
	}
}

func execute(t *testing.T, build buildFunc, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(build)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "deposit.txt")
	require.NoError(t, os.WriteFile(txt, []byte("My landlord kept my deposit"), 0o600))

	tests := []struct {
		name    string
		args    []string
		setup   func(*analysis.MockInvoker)
		check   func(*testing.T, string)
		wantErr string
	}{
		{
			name: "json output",
			args: []string{"analyze", "--json", "--style", "notty", "my", "landlord", "kept", "my", "deposit"},
			setup: func(m *analysis.MockInvoker) {
				m.On("Invoke", mock.Anything, mock.MatchedBy(func(p string) bool {
					return strings.Contains(p, "my landlord kept my deposit")
				})).Return(llm.Completion{Text: twoCards, Model: "gemini-2.0-flash"}, nil).Once()
			},
			check: func(t *testing.T, out string) {
				var body struct {
					Scenarios []analysis.ScenarioCard `json:"scenarios"`
				}
				require.NoError(t, json.Unmarshal([]byte(out), &body))
				assert.Len(t, body.Scenarios, 2)
			},
		},
		{
			name: "rendered scenarios from file",
			args: []string{"analyze", "--style", "notty", "--file", txt},
			setup: func(m *analysis.MockInvoker) {
				m.On("Invoke", mock.Anything, mock.MatchedBy(func(p string) bool {
					return strings.Contains(p, "My landlord kept my deposit")
				})).Return(llm.Completion{Text: twoCards}, nil).Once()
			},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "Residential Tenancies Act")
				assert.Contains(t, out, "Write to the landlord.")
			},
		},
		{
			name: "markdown variant",
			args: []string{"analyze", "--variant", "markdown", "--style", "notty", "bakery in Lyon"},
			setup: func(m *analysis.MockInvoker) {
				m.On("Invoke", mock.Anything, mock.Anything).
					Return(llm.Completion{Text: "# Hygiene\n\nRegister first."}, nil).Once()
			},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "Hygiene")
				assert.Contains(t, out, "Register first.")
			},
		},
		{
			name:    "no input",
			args:    []string{"analyze"},
			wantErr: "a use case is required",
		},
		{
			name:    "both input kinds",
			args:    []string{"analyze", "--file", txt, "text"},
			wantErr: "not both",
		},
		{
			name:    "unsupported file",
			args:    []string{"analyze", "--file", filepath.Join(dir, "x.docx")},
			wantErr: "unsupported file type",
		},
		{
			name:    "unknown variant",
			args:    []string{"analyze", "--variant", "poem", "text"},
			wantErr: "invalid response variant",
		},
		{
			name: "provider failure",
			args: []string{"analyze", "text"},
			setup: func(m *analysis.MockInvoker) {
				m.On("Invoke", mock.Anything, mock.Anything).
					Return(llm.Completion{}, &apperror.ProviderError{Status: 429, Message: "quota exceeded"}).Once()
			},
			wantErr: "quota exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := new(analysis.MockInvoker)
			if tt.setup != nil {
				tt.setup(inv)
			}

			out, err := execute(t, testBuild(inv, new(llm.MockProvider)), tt.args...)

			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				tt.check(t, out)
			}
			inv.AssertExpectations(t)
		})
	}
}

func TestModelsCommand(t *testing.T) {
	provider := new(llm.MockProvider)
	provider.On("ListModels", mock.Anything).Return([]llm.ModelInfo{
		{ID: "embedding-001", Generates: false},
		{ID: "gemini-2.0-flash", Generates: true},
	}, nil).Once()

	out, err := execute(t, testBuild(new(analysis.MockInvoker), provider), "models")

	require.NoError(t, err)
	assert.Contains(t, out, "embedding-001")
	assert.Contains(t, out, "auto selects: gemini-2.0-flash")
	provider.AssertExpectations(t)
}

func TestModelsCommandNoMatch(t *testing.T) {
	provider := new(llm.MockProvider)
	provider.On("ListModels", mock.Anything).Return([]llm.ModelInfo{{ID: "embedding-001"}}, nil).Once()

	_, err := execute(t, testBuild(new(analysis.MockInvoker), provider), "models")

	assert.ErrorIs(t, err, apperror.ErrModelUnavailable)
}

func TestResultMarkdown(t *testing.T) {
	md := resultMarkdown(analysis.Result{
		Variant: analysis.VariantScenarios,
		Model:   "m",
		Scenarios: []analysis.ScenarioCard{
			{Act: "A", Section: "S", Summary: "Su", Detail: "D", Action: "Ac"},
			{Act: "B", Section: "S2", Summary: "Su2", Detail: "D2", Action: "Ac2"},
		},
	})
	assert.True(t, strings.HasPrefix(md, "## A\n"))
	assert.Contains(t, md, "\n---\n")
	assert.Contains(t, md, "> **Action:** Ac2")
	assert.Contains(t, md, "*Answered by m*")

	assert.Equal(t, "raw", resultMarkdown(analysis.Result{Variant: analysis.VariantMarkdown, Markdown: analysis.MarkdownAnalysis{Result: "raw"}}))
}
