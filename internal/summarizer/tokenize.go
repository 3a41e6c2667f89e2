package summarizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minSentenceChars is the exclusive lower bound on a sentence's trimmed length.
const minSentenceChars = 15

// Sentence is one scoring unit of a document.
type Sentence struct {
	Text      string
	Index     int
	WordCount int
	Score     int
}

// SplitSentences breaks text on runs of '.', '!' and '?' and keeps the
// fragments longer than minSentenceChars characters, in document order.
// Text is trimmed; WordCount is taken from the untrimmed fragment.
func SplitSentences(text string) []Sentence {
	fragments := strings.FieldsFunc(text, isTerminator)

	sentences := make([]Sentence, 0, len(fragments))
	for _, raw := range fragments {
		f := strings.TrimSpace(raw)
		if utf8.RuneCountInString(f) <= minSentenceChars {
			continue
		}
		sentences = append(sentences, Sentence{
			Text:      f,
			Index:     len(sentences),
			WordCount: countTokens(raw),
		})
	}
	return sentences
}

// countTokens returns the number of pieces s splits into at whitespace runs.
// Leading and trailing whitespace each yield an empty piece, so " a b" is
// three tokens and "a b" is two.
func countTokens(s string) int {
	n, inSpace := 1, false
	for _, r := range s {
		if !unicode.IsSpace(r) {
			inSpace = false
			continue
		}
		if !inSpace {
			n++
			inSpace = true
		}
	}
	return n
}

// SplitWords lower-cases text and splits it on whitespace.
func SplitWords(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// NormalizeWord lower-cases w and drops every character that is not an ASCII
// letter, digit or underscore.
func NormalizeWord(w string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, w)
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
