package summarizer

// The tables below are closed vocabularies shared by every call. They are
// never mutated after package initialisation.

var stopWords = toSet([]string{
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
	"is", "are", "was", "were", "be", "been", "being", "have", "has", "had", "do", "does", "did",
	"will", "would", "could", "should", "may", "might", "must", "can",
	"this", "that", "these", "those",
	"i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us", "them",
	"my", "your", "his", "its", "our", "their", "mine", "yours", "hers", "ours", "theirs",
	"myself", "yourself", "himself", "herself", "itself", "ourselves", "yourselves", "themselves",
	"what", "which", "who", "whom", "whose", "where", "when", "why", "how",
	"all", "any", "both", "each", "few", "more", "most", "other", "some", "such",
	"no", "nor", "not", "only", "own", "same", "so", "than", "too", "very", "just",
	"now", "here", "there", "then", "also", "well",
	"get", "go", "come", "see", "know", "take", "give", "use", "make", "work", "call", "try",
	"ask", "need", "feel", "become", "leave", "put", "mean", "keep", "let", "begin", "seem",
	"help", "show", "hear", "play", "run", "move", "live", "believe", "bring", "happen",
	"write", "sit", "stand", "lose", "pay", "meet", "include", "continue", "set", "learn",
	"change", "lead", "understand", "watch", "follow", "stop", "create", "speak", "read",
	"spend", "grow", "open", "walk", "win", "teach", "offer", "remember", "consider", "appear",
	"buy", "serve", "die", "send", "build", "stay", "fall", "cut", "reach", "kill", "remain",
})

// markerPhrases signal that a sentence carries a conclusion, a finding or a
// structural step of the argument.
var markerPhrases = []string{
	"in conclusion",
	"to summarize",
	"the main",
	"key finding",
	"important",
	"significant",
	"research shows",
	"study reveals",
	"analysis indicates",
	"results suggest",
	"evidence shows",
	"data indicates",
	"findings demonstrate",
	"conclusion",
	"therefore",
	"however",
	"furthermore",
	"moreover",
	"consequently",
	"thus",
	"first",
	"second",
	"third",
	"finally",
	"primary",
	"secondary",
	"essential",
	"critical",
	"major",
	"fundamental",
	"central",
	"core",
	"main point",
	"key aspect",
}

var academicSuffixes = []string{"tion", "sion", "ment", "ness", "ity", "ism", "ogy", "ics"}

var academicTerms = []string{
	"analysis", "research", "study", "method", "theory", "concept",
	"process", "system", "model", "approach", "framework", "principle",
}

var questionWords = []string{"what", "how", "why", "when", "where", "who", "which"}

// specialChars are counted against a sentence's word count; tables, references
// and formulas tend to be dense in them.
const specialChars = "0123456789@#$%^&*()"

// IsStopWord reports whether w (already lower-cased) is in the stop-word table.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
