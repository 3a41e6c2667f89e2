package summarizer

import (
	"cmp"
	"slices"
	"strings"
)

const (
	minKeywordLen  = 4
	minKeywordFreq = 2
	candidateLimit = 12
	keywordLimit   = 8
)

// FrequencyTable counts words and remembers the order in which each word was
// first seen. Ties in any ranking derived from it are broken by that order.
type FrequencyTable struct {
	order  []string
	counts map[string]int
}

// NewFrequencyTable returns an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{counts: make(map[string]int)}
}

// Add records one occurrence of word.
func (t *FrequencyTable) Add(word string) {
	if _, seen := t.counts[word]; !seen {
		t.order = append(t.order, word)
	}
	t.counts[word]++
}

func (t *FrequencyTable) count(word string) int {
	return t.counts[word]
}

// CountWords builds a frequency table of the content words in words.
func CountWords(words []string) *FrequencyTable {
	table := NewFrequencyTable()
	for _, w := range words {
		clean := NormalizeWord(w)
		if isContentWord(clean) {
			table.Add(clean)
		}
	}
	return table
}

func isContentWord(w string) bool {
	if len(w) < minKeywordLen || IsStopWord(w) {
		return false
	}
	hasLetter, allDigits := false, true
	for i := 0; i < len(w); i++ {
		c := w[i]
		if c >= 'a' && c <= 'z' {
			hasLetter = true
		}
		if c < '0' || c > '9' {
			allDigits = false
		}
	}
	return hasLetter && !allDigits
}

// SelectKeywords picks at most eight keywords from table. The twelve most
// frequent repeated words are candidates; academic-looking candidates are
// moved to the front.
func SelectKeywords(table *FrequencyTable) []string {
	var frequent []string
	for _, w := range table.order {
		if table.count(w) >= minKeywordFreq {
			frequent = append(frequent, w)
		}
	}
	slices.SortStableFunc(frequent, func(a, b string) int {
		return cmp.Compare(table.count(b), table.count(a))
	})
	if len(frequent) > candidateLimit {
		frequent = frequent[:candidateLimit]
	}

	ordered := make([]string, 0, len(frequent)*2)
	for _, w := range frequent {
		if IsAcademicTerm(w) {
			ordered = append(ordered, w)
		}
	}
	ordered = append(ordered, frequent...)

	keywords := make([]string, 0, keywordLimit)
	seen := make(map[string]struct{}, len(ordered))
	for _, w := range ordered {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
		if len(keywords) == keywordLimit {
			break
		}
	}
	return keywords
}

// IsAcademicTerm reports whether w has an academic suffix or contains one of
// the structural domain terms.
func IsAcademicTerm(w string) bool {
	for _, s := range academicSuffixes {
		if strings.HasSuffix(w, s) {
			return true
		}
	}
	for _, t := range academicTerms {
		if strings.Contains(w, t) {
			return true
		}
	}
	return false
}
