// Command lexai runs the legal use-case analysis from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"legal-navigator/internal/analysis"
	"legal-navigator/internal/app"
	"legal-navigator/internal/config"
	"legal-navigator/internal/extract"
	"legal-navigator/internal/llm"
)

// buildFunc wires an analyzer for the requested variant.
type buildFunc func(ctx context.Context, variant string) (*analysis.Analyzer, *llm.Invoker, config.Config, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(buildFromEnv).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func buildFromEnv(ctx context.Context, variant string) (*analysis.Analyzer, *llm.Invoker, config.Config, error) {
	cfg, log, err := app.LoadCLI(os.Stderr)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	if variant != "" {
		cfg.ResponseVariant = variant
	}
	analyzer, invoker, err := app.BuildAnalyzer(ctx, cfg, log)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	return analyzer, invoker, cfg, nil
}

func newRootCmd(build buildFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "lexai",
		Short: "Find the laws that apply to a situation",
		Long: `lexai sends a description of a situation to the configured model and
prints the laws and regulations that are likely to apply.

Configuration comes from the environment (or a .env file): LLM_PROVIDER,
GEMINI_API_KEY / OPENAI_API_KEY, LLM_MODEL, MODEL_FAMILY, RESPONSE_VARIANT.`,
		SilenceUsage: true,
	}
	root.AddCommand(newAnalyzeCmd(build), newModelsCmd(build))
	return root
}

func newAnalyzeCmd(build buildFunc) *cobra.Command {
	var (
		file    string
		variant string
		style   string
		rawJSON bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [use case]",
		Short: "Analyze a use case given as text or a PDF/TXT file",
		Example: `  lexai analyze "I want to buy a used car in California"
  lexai analyze --file lease.pdf --variant markdown`,
		RunE: func(cmd *cobra.Command, args []string) error {
			useCase, err := readUseCase(args, file)
			if err != nil {
				return err
			}
			analyzer, _, cfg, err := build(cmd.Context(), variant)
			if err != nil {
				return err
			}
			useCase = extract.Clip(useCase, cfg.MaxUseCaseLength)

			res, err := analyzer.Analyze(cmd.Context(), analysis.Request{UseCase: useCase})
			if err != nil {
				return err
			}
			if rawJSON {
				return writeJSON(cmd.OutOrStdout(), res.Body())
			}
			out, err := renderMarkdown(resultMarkdown(res), style)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the use case from a PDF or TXT file")
	cmd.Flags().StringVar(&variant, "variant", "", "response variant: scenarios or markdown (default from RESPONSE_VARIANT)")
	cmd.Flags().StringVar(&style, "style", "auto", "terminal style: auto, dark, light or notty")
	cmd.Flags().BoolVar(&rawJSON, "json", false, "print the response body as JSON instead of rendering it")
	return cmd
}

func newModelsCmd(build buildFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List provider models and the one discovery would pick",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, invoker, cfg, err := build(cmd.Context(), "")
			if err != nil {
				return err
			}
			models, err := invoker.Models(cmd.Context())
			if err != nil {
				return err
			}
			return writeModels(cmd.OutOrStdout(), models, cfg.Family())
		},
	}
}
