package summarizer

import (
	"slices"
	"strings"
)

// Score sums every heuristic rule for s in a document of total sentences.
func Score(s Sentence, total int, keywords []string) int {
	lower := strings.ToLower(s.Text)
	return PositionScore(s.Index, total) +
		LengthScore(s.WordCount) +
		KeywordScore(lower, keywords) +
		MarkerScore(lower) +
		SpecialCharPenalty(s.Text, s.WordCount) +
		ExtremeLengthPenalty(s.WordCount) +
		QuestionScore(lower)
}

// PositionScore favours the opening, the closing and the middle of a document.
func PositionScore(index, total int) int {
	i, n := float64(index), float64(total)
	score := 0
	if i < n*0.15 {
		score += 4
	}
	if i > n*0.85 {
		score += 3
	}
	if i >= n*0.4 && i <= n*0.6 {
		score += 2
	}
	return score
}

// LengthScore rewards sentences of 10 to 30 words, and those of 15 to 25 words again.
func LengthScore(wordCount int) int {
	score := 0
	if wordCount >= 10 && wordCount <= 30 {
		score += 3
	}
	if wordCount >= 15 && wordCount <= 25 {
		score += 2
	}
	return score
}

// KeywordScore adds one point per word of lower that is a keyword.
func KeywordScore(lower string, keywords []string) int {
	score := 0
	for _, w := range strings.Fields(lower) {
		if slices.Contains(keywords, NormalizeWord(w)) {
			score++
		}
	}
	return score
}

// MarkerScore adds 3 for every long marker phrase found in lower and 2 for
// every short one.
func MarkerScore(lower string) int {
	score := 0
	for _, p := range markerPhrases {
		if !strings.Contains(lower, p) {
			continue
		}
		if len(p) > 10 {
			score += 3
		} else {
			score += 2
		}
	}
	return score
}

// SpecialCharPenalty is -2 when digits and symbols outnumber 40% of the words.
func SpecialCharPenalty(text string, wordCount int) int {
	n := 0
	for _, r := range text {
		if strings.ContainsRune(specialChars, r) {
			n++
		}
	}
	if float64(n) > float64(wordCount)*0.4 {
		return -2
	}
	return 0
}

// ExtremeLengthPenalty is -1 for sentences under 8 or over 35 words.
func ExtremeLengthPenalty(wordCount int) int {
	if wordCount < 8 || wordCount > 35 {
		return -1
	}
	return 0
}

// QuestionScore adds one point per distinct question word appearing anywhere
// in lower.
func QuestionScore(lower string) int {
	score := 0
	for _, q := range questionWords {
		if strings.Contains(lower, q) {
			score++
		}
	}
	return score
}
