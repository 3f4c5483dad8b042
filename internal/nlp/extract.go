package nlp

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

const (
	// FuzzyThreshold is the similarity a fuzzy match must exceed.
	FuzzyThreshold = 70.0
	maxWindow      = 3
)

// Extractor finds a known coin symbol mentioned in free text.
type Extractor struct {
	symbols []string
}

// NewExtractor keeps the given symbols in order; the order decides ties.
func NewExtractor(symbols []string) *Extractor {
	return &Extractor{symbols: append([]string(nil), symbols...)}
}

// Extract returns the first symbol contained in text (case-insensitive). Failing that it returns
// the symbol most similar to any window of one to three adjacent words, provided the similarity
// exceeds FuzzyThreshold.
func (e *Extractor) Extract(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, symbol := range e.symbols {
		if symbol != "" && strings.Contains(lower, strings.ToLower(symbol)) {
			return symbol, true
		}
	}

	windows := textWindows(Tokenize(Normalize(text)))
	if len(windows) == 0 {
		return "", false
	}
	best, bestScore := "", 0.0
	for _, symbol := range e.symbols {
		key := compact(symbol)
		if key == "" {
			continue
		}
		for _, w := range windows {
			if score := Similarity(w, key); score > bestScore {
				best, bestScore = symbol, score
			}
		}
	}
	if bestScore > FuzzyThreshold {
		return best, true
	}
	return "", false
}

// Similarity scores two strings from 0 to 100 as 100*(1 - distance/longest length).
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 100
	}
	return 100 * (1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest))
}

func textWindows(tokens []string) []string {
	var out []string
	for size := 1; size <= maxWindow; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+size], ""))
		}
	}
	return out
}

func compact(symbol string) string {
	return strings.Join(strings.Fields(Normalize(symbol)), "")
}
