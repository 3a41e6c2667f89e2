package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyText         = errors.New("no text extracted")
	ErrInsufficientText  = errors.New("insufficient text extracted")

	errNoPageText = errors.New("no text on any page")
)

// Strategy names the method that produced a Document's text.
type Strategy string

const (
	StrategyStructured Strategy = "structured"
	StrategyFallback   Strategy = "fallback"
	StrategyPlain      Strategy = "plain"
)

// minExtractedChars is the least text the byte scan must recover.
const minExtractedChars = 100

var (
	disallowedChars = regexp.MustCompile(`[^\w\s.,!?;:()\-"']`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// Options bounds how much of a document is read.
type Options struct {
	// Limit is the maximum number of bytes of text kept.
	Limit int
	// MaxPages caps the PDF pages visited.
	MaxPages int
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{Limit: 100000, MaxPages: 50}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Limit <= 0 {
		o.Limit = d.Limit
	}
	if o.MaxPages <= 0 {
		o.MaxPages = d.MaxPages
	}
	return o
}

// Metadata is the document information dictionary of a PDF.
type Metadata struct {
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Author   string `json:"author,omitempty" yaml:"author,omitempty"`
	Subject  string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Keywords string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// Document is normalized plain text ready for summarization.
type Document struct {
	Name     string
	Text     string
	Pages    int
	Strategy Strategy
	Metadata Metadata
}

// Supported reports whether name has an extension Extract understands.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

// Extract reads the file at path and returns its text.
func Extract(ctx context.Context, path string, opts Options) (*Document, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ExtractBytes(ctx, filepath.Base(path), data, opts)
}

// ExtractBytes extracts text from the contents of a file called name.
// PDFs are parsed page by page; if that fails or finds no text at all, the
// raw bytes are scanned for printable text instead.
func ExtractBytes(ctx context.Context, name string, data []byte, opts Options) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return extractPDF(ctx, name, data, opts)
	case ".txt", ".md":
		text := Normalize(truncate(string(data), opts.Limit))
		if text == "" {
			return nil, fmt.Errorf("%s: %w", name, ErrEmptyText)
		}
		return &Document{Name: name, Text: text, Strategy: StrategyPlain}, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
}

func extractPDF(ctx context.Context, name string, data []byte, opts Options) (*Document, error) {
	doc, err := extractPDFPages(ctx, data, opts)
	if err == nil {
		if doc.Text == "" {
			return nil, fmt.Errorf("%s: %w", name, ErrEmptyText)
		}
		doc.Name = name
		return doc, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	text, scanErr := ScanPrintable(data, opts.Limit)
	if scanErr == nil {
		fallback := &Document{Name: name, Text: text, Strategy: StrategyFallback}
		if doc != nil {
			fallback.Pages = doc.Pages
			fallback.Metadata = doc.Metadata
		}
		return fallback, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w (structured extraction: %v)", name, scanErr, err)
	}
	return nil, fmt.Errorf("%s: %w", name, scanErr)
}

func extractPDFPages(ctx context.Context, data []byte, opts Options) (doc *Document, err error) {
	// Panic recovery for the pdf library which sometimes panics on malformed files
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("pdf library panicked: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	doc = &Document{Strategy: StrategyStructured, Metadata: readMetadata(r)}

	totalPage := r.NumPage()
	if totalPage > opts.MaxPages {
		totalPage = opts.MaxPages
	}

	var content strings.Builder
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}
		s, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		doc.Pages++
		content.WriteString(s)
		content.WriteByte('\n')

		if content.Len() >= opts.Limit {
			break
		}
	}

	raw := truncate(content.String(), opts.Limit)
	if strings.TrimSpace(raw) == "" {
		return doc, errNoPageText
	}
	doc.Text = cleanText(raw)
	return doc, nil
}

func readMetadata(r *pdf.Reader) Metadata {
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return Metadata{}
	}
	return Metadata{
		Title:    strings.TrimSpace(info.Key("Title").Text()),
		Author:   strings.TrimSpace(info.Key("Author").Text()),
		Subject:  strings.TrimSpace(info.Key("Subject").Text()),
		Keywords: strings.TrimSpace(info.Key("Keywords").Text()),
	}
}

// ScanPrintable recovers text from raw bytes by keeping printable ASCII and
// line breaks, blanking unusual punctuation and collapsing whitespace. It
// fails with ErrInsufficientText when 100 characters or fewer survive.
func ScanPrintable(data []byte, limit int) (string, error) {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if (c >= 32 && c <= 126) || c == '\n' || c == '\r' {
			b.WriteByte(c)
		}
	}

	text := disallowedChars.ReplaceAllString(b.String(), " ")
	text = strings.TrimSpace(whitespaceRuns.ReplaceAllString(text, " "))
	if len(text) <= minExtractedChars {
		return "", ErrInsufficientText
	}
	if limit > 0 {
		text = strings.TrimSpace(truncate(text, limit))
	}
	return text, nil
}

// cleanText collapses whitespace, then drops characters outside the set the
// summarizer scores on (ASCII word characters, whitespace and . , ! ? ; : ( ) - " ').
func cleanText(text string) string {
	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(disallowedChars.ReplaceAllString(text, ""))
}

// Normalize collapses every whitespace run to a single space and trims.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// truncate cuts s to at most limit bytes without splitting a UTF-8 sequence.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
