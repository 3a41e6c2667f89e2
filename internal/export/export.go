// Package export renders summaries as downloadable artifacts.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"niviskar/internal/summarizer"
	"niviskar/internal/tokens"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Format is an output encoding for a Report.
type Format string

const (
	FormatText Format = "txt"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts txt, json, yaml and pdf (yml is an alias).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatPDF:
		return "application/pdf"
	}
	return "text/plain; charset=utf-8"
}

// Report is everything an export needs; it is never modified once built.
type Report struct {
	Source      string
	Result      summarizer.Result
	Stats       tokens.Stats
	GeneratedAt time.Time
}

// document is the structured (json/yaml) shape of a Report.
type document struct {
	Title       string           `json:"title" yaml:"title"`
	Source      string           `json:"source,omitempty" yaml:"source,omitempty"`
	Level       summarizer.Level `json:"level" yaml:"level"`
	Summary     string           `json:"summary" yaml:"summary"`
	KeyPhrases  []string         `json:"key_phrases" yaml:"key_phrases"`
	Fallback    bool             `json:"fallback" yaml:"fallback"`
	Sentences   int              `json:"sentences" yaml:"sentences"`
	Stats       tokens.Stats     `json:"stats" yaml:"stats"`
	GeneratedAt string           `json:"generated_at" yaml:"generated_at"`
}

// Title is the heading of an exported summary, e.g. "PDF Summary (Student Level)".
func Title(level summarizer.Level) string {
	return fmt.Sprintf("PDF Summary (%s Level)", cases.Title(language.English).String(level.String()))
}

// Render encodes r in format f.
func Render(r Report, f Format) ([]byte, error) {
	switch f {
	case FormatText:
		return renderText(r), nil
	case FormatJSON:
		out, err := json.MarshalIndent(toDocument(r), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML:
		out, err := yaml.Marshal(toDocument(r))
		if err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return out, nil
	case FormatPDF:
		return renderPDF(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func renderText(r Report) []byte {
	var b strings.Builder
	b.WriteString(r.Result.SummaryText)
	if len(r.Result.KeyPhrases) > 0 {
		b.WriteString("\n\n--- Key Terms ---\n")
		b.WriteString(strings.Join(r.Result.KeyPhrases, ", "))
	}
	b.WriteString("\n\nGenerated: ")
	b.WriteString(r.GeneratedAt.UTC().Format(time.RFC3339))
	b.WriteByte('\n')
	return []byte(b.String())
}

// renderPDF lays the report out on A4 pages: title, summary, key terms and
// the generation date. Long summaries flow onto further pages.
func renderPDF(r Report) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.SetTitle(Title(r.Result.Level), true)
	doc.SetCreator("Niviskar", false)
	doc.SetCreationDate(r.GeneratedAt)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()
	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, Title(r.Result.Level), "", 1, "L", false, 0, "")
	doc.Ln(6)

	doc.SetFont("Helvetica", "", 12)
	doc.MultiCell(0, 6, tr(r.Result.SummaryText), "", "L", false)

	if len(r.Result.KeyPhrases) > 0 {
		doc.Ln(6)
		doc.SetFont("Helvetica", "B", 14)
		doc.CellFormat(0, 8, "Key Terms:", "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, 6, tr(strings.Join(r.Result.KeyPhrases, ", ")), "", "L", false)
	}

	doc.Ln(8)
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, "Generated on "+r.GeneratedAt.UTC().Format("2006-01-02"), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func toDocument(r Report) document {
	phrases := r.Result.KeyPhrases
	if phrases == nil {
		phrases = []string{}
	}
	return document{
		Title:       Title(r.Result.Level),
		Source:      r.Source,
		Level:       r.Result.Level,
		Summary:     r.Result.SummaryText,
		KeyPhrases:  phrases,
		Fallback:    r.Result.Fallback != summarizer.NoFallback,
		Sentences:   r.Result.Sentences,
		Stats:       r.Stats,
		GeneratedAt: r.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

// FileName is the download name for a summary generated at t.
func FileName(level summarizer.Level, f Format, t time.Time) string {
	return fmt.Sprintf("summary_%s_%d.%s", level, t.UnixMilli(), f)
}

// FileNameFor names the summary of the source file at path.
func FileNameFor(path string, level summarizer.Level, f Format) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s.summary_%s.%s", stem, level, f)
}
