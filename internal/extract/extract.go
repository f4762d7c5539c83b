// Package extract turns uploaded documents into plain use-case text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Kind is a supported upload content type.
type Kind string

const (
	KindText Kind = "text/plain"
	KindPDF  Kind = "application/pdf"
)

var ErrUnsupportedType = errors.New("unsupported file type (only PDF and TXT allowed)")

// DetectKind resolves the upload type from its declared Content-Type,
// falling back to the filename extension when none was sent.
func DetectKind(filename, contentType string) (Kind, error) {
	if contentType == "" || contentType == "application/octet-stream" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".txt":
			return KindText, nil
		case ".pdf":
			return KindPDF, nil
		default:
			return "", ErrUnsupportedType
		}
	}
	// Drop parameters such as "; charset=utf-8"
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	switch Kind(strings.TrimSpace(strings.ToLower(contentType))) {
	case KindText:
		return KindText, nil
	case KindPDF:
		return KindPDF, nil
	default:
		return "", ErrUnsupportedType
	}
}

// Text extracts readable text from content of the given kind.
func Text(kind Kind, content []byte) (string, error) {
	switch kind {
	case KindPDF:
		return pdfText(content)
	case KindText:
		if !utf8.Valid(content) {
			return "", fmt.Errorf("text file is not valid UTF-8")
		}
		return string(content), nil
	default:
		return "", ErrUnsupportedType
	}
}

func pdfText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Clip trims text and limits it to maxRunes, cutting at the last word
// boundary when one exists. maxRunes <= 0 disables the limit.
func Clip(text string, maxRunes int) string {
	text = strings.TrimSpace(text)
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)[:maxRunes]
	cut := string(runes)
	if idx := strings.LastIndexAny(cut, " \n\t"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
