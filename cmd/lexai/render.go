package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"

	"legal-navigator/internal/analysis"
	"legal-navigator/internal/extract"
	"legal-navigator/internal/llm"
)

const wordWrap = 80

func readUseCase(args []string, file string) (string, error) {
	switch {
	case file != "" && len(args) > 0:
		return "", errors.New("pass either a use case or --file, not both")
	case file != "":
		kind, err := extract.DetectKind(filepath.Base(file), "")
		if err != nil {
			return "", err
		}
		content, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return extract.Text(kind, content)
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		return "", errors.New("a use case is required")
	}
}

// resultMarkdown turns either variant into markdown for the terminal.
func resultMarkdown(res analysis.Result) string {
	if res.Variant == analysis.VariantMarkdown {
		return res.Markdown.Result
	}
	var b strings.Builder
	for i, card := range res.Scenarios {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "## %s\n\n", card.Act)
		fmt.Fprintf(&b, "**%s**: %s\n\n", card.Section, card.Summary)
		fmt.Fprintf(&b, "%s\n\n", card.Detail)
		fmt.Fprintf(&b, "> **Action:** %s\n", card.Action)
	}
	if res.Model != "" {
		fmt.Fprintf(&b, "\n*Answered by %s*\n", res.Model)
	}
	return b.String()
}

func renderMarkdown(md, style string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wordWrap)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	return renderer.Render(md)
}

func writeJSON(w io.Writer, body any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(body)
}

func writeModels(w io.Writer, models []llm.ModelInfo, family string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tGENERATES")
	for _, m := range models {
		fmt.Fprintf(tw, "%s\t%t\n", m.ID, m.Generates)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	selected, err := llm.SelectModel(models, family)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\nauto selects: %s\n", selected)
	return err
}
