// Package summarizer extracts a keyword list and an extractive summary from
// plain text. Everything here is a pure function of its input; the same text
// and level always give the same result.
package summarizer

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Fallback tells why a Result carries no summary.
type Fallback int

const (
	// NoFallback marks a normal summary.
	NoFallback Fallback = iota
	// NoSentences means no fragment survived the sentence length filter.
	NoSentences
	// NoPositiveScores means every sentence scored zero or less.
	NoPositiveScores
)

const (
	noSentencesMessage      = "Unable to generate summary from the extracted text."
	noPositiveScoresMessage = "Unable to generate a meaningful summary from the extracted text."
)

const (
	studentTemplate = "Student Summary (Nivıskar Analysis):\n\n%s\n\n" +
		"This summary was created by Nivıskar using intelligent text analysis to help you quickly " +
		"understand the main concepts and key points of the document."
	professorTemplate = "Academic Summary (Nivıskar Analysis):\n\n%s\n\n" +
		"This summary was generated by Nivıskar using advanced natural language processing techniques " +
		"including sentence scoring, keyword analysis, and structural analysis to identify the most " +
		"important content for academic review."
)

func (f Fallback) String() string {
	switch f {
	case NoSentences:
		return "no_sentences"
	case NoPositiveScores:
		return "no_positive_scores"
	}
	return "ok"
}

// Analysis is the intermediate state of one summarization run.
type Analysis struct {
	Sentences []Sentence
	Words     *FrequencyTable
	Keywords  []string
}

// Result is the outcome of Summarize.
type Result struct {
	SummaryText string
	KeyPhrases  []string
	Level       Level
	Fallback    Fallback
	// Sentences is the number of sentences that made it into SummaryText.
	Sentences int
}

// Analyze tokenizes text, picks its keywords and scores every sentence.
func Analyze(text string) Analysis {
	sentences := SplitSentences(text)
	table := CountWords(SplitWords(text))
	keywords := SelectKeywords(table)

	for i := range sentences {
		sentences[i].Score = Score(sentences[i], len(sentences), keywords)
	}
	return Analysis{Sentences: sentences, Words: table, Keywords: keywords}
}

// Select returns the best positively scored sentences for level, in document
// order. Equal scores keep document order.
func Select(sentences []Sentence, level Level) []Sentence {
	picked := make([]Sentence, 0, len(sentences))
	for _, s := range sentences {
		if s.Score > 0 {
			picked = append(picked, s)
		}
	}
	slices.SortStableFunc(picked, func(a, b Sentence) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if n := level.MaxSentences(len(sentences)); len(picked) > n {
		picked = picked[:n]
	}
	slices.SortFunc(picked, func(a, b Sentence) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return picked
}

// Assemble joins sentences into a single paragraph.
func Assemble(sentences []Sentence) string {
	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.Text
	}
	return strings.Join(texts, ". ") + "."
}

// Format wraps summary in the header and footer of level.
func Format(summary string, level Level) string {
	if level == Professor {
		return fmt.Sprintf(professorTemplate, summary)
	}
	return fmt.Sprintf(studentTemplate, summary)
}

// Summarize runs the whole pipeline on text. Degenerate input produces a
// Result with Fallback set instead of an error.
func Summarize(text string, level Level) Result {
	a := Analyze(text)
	if len(a.Sentences) == 0 {
		return fallbackResult(level, NoSentences)
	}

	selected := Select(a.Sentences, level)
	if len(selected) == 0 {
		return fallbackResult(level, NoPositiveScores)
	}

	return Result{
		SummaryText: Format(Assemble(selected), level),
		KeyPhrases:  a.Keywords,
		Level:       level,
		Sentences:   len(selected),
	}
}

func fallbackResult(level Level, reason Fallback) Result {
	msg := noSentencesMessage
	if reason == NoPositiveScores {
		msg = noPositiveScoresMessage
	}
	return Result{
		SummaryText: msg,
		KeyPhrases:  []string{},
		Level:       level,
		Fallback:    reason,
	}
}
