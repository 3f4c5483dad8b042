package nlp

import (
	"regexp"
	"strings"
)

var (
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	wordToken   = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)
)

// Normalize lowercases text and strips punctuation.
func Normalize(text string) string {
	return punctuation.ReplaceAllString(strings.ToLower(text), "")
}

// Tokenize returns the words of at least two characters, in order.
func Tokenize(text string) []string {
	return wordToken.FindAllString(text, -1)
}

// Terms returns the unigrams followed by the bigrams of a normalized text.
func Terms(text string) []string {
	tokens := Tokenize(Normalize(text))
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
