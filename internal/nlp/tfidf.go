package nlp

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"coin-insights/internal/errs"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 1000

// Vectorizer maps text to l2-normalized TF-IDF vectors over a fixed vocabulary.
type Vectorizer struct {
	terms []string
	index map[string]int
	idf   []float64
}

// FitVectorizer learns the vocabulary and smooth idf weights from a corpus. When the corpus has
// more distinct terms than maxFeatures, the most frequent terms are kept (ties alphabetical).
func FitVectorizer(docs []string, maxFeatures int) (*Vectorizer, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: empty training corpus", errs.ErrValidation)
	}
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	freq := make(map[string]int)
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range Terms(doc) {
			freq[term]++
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}
	if len(freq) == 0 {
		return nil, fmt.Errorf("%w: training corpus has no usable terms", errs.ErrValidation)
	}

	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}
	if len(terms) > maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if freq[terms[i]] != freq[terms[j]] {
				return freq[terms[i]] > freq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return newVectorizer(terms, idf), nil
}

func newVectorizer(terms []string, idf []float64) *Vectorizer {
	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[term] = i
	}
	return &Vectorizer{terms: terms, index: index, idf: idf}
}

// Dims is the vocabulary size.
func (v *Vectorizer) Dims() int {
	return len(v.terms)
}

// Transform vectorizes one text. Out-of-vocabulary terms are ignored; a text with no known
// terms maps to the zero vector.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.terms))
	for _, term := range Terms(text) {
		if i, ok := v.index[term]; ok {
			vec[i]++
		}
	}
	floats.Mul(vec, v.idf)
	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}
