package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Encodings are loaded from ranks embedded in the binary, never downloaded.
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// Counter wraps the tiktoken library for counting tokens.
type Counter struct {
	encoding *tiktoken.Tiktoken
}

// Stats compares the size of a source text with the size of its summary.
type Stats struct {
	SourceTokens  int     `json:"source_tokens" yaml:"source_tokens"`
	SummaryTokens int     `json:"summary_tokens" yaml:"summary_tokens"`
	Ratio         float64 `json:"ratio" yaml:"ratio"`
}

// NewCounter creates a Counter for the named encoding (e.g. cl100k_base).
// Model names such as gpt-4 are accepted too.
func NewCounter(encodingName string) (*Counter, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		var modelErr error
		enc, modelErr = tiktoken.EncodingForModel(encodingName)
		if modelErr != nil {
			return nil, fmt.Errorf("failed to get encoding '%s': %w", encodingName, err)
		}
	}
	return &Counter{encoding: enc}, nil
}

// Count returns the number of tokens in text. A nil Counter counts nothing.
func (c *Counter) Count(text string) int {
	if c == nil || text == "" {
		return 0
	}
	return len(c.encoding.Encode(text, nil, nil))
}

// Compare measures source and summary with the same encoding.
func (c *Counter) Compare(source, summary string) Stats {
	s := Stats{
		SourceTokens:  c.Count(source),
		SummaryTokens: c.Count(summary),
	}
	if s.SourceTokens > 0 {
		s.Ratio = float64(s.SummaryTokens) / float64(s.SourceTokens)
	}
	return s
}
