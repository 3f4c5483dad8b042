// Package nlp turns free-text questions into intent tags and coin symbols.
//
// The classifier is a TF-IDF (unigram and bigram) vectorizer feeding a one-vs-rest linear SVM.
// It is trained offline, written to a gob artifact and loaded once at start-up; after loading it
// is read-only and safe for concurrent use. The extractor finds a known coin symbol in a question
// by substring containment first and Levenshtein similarity second.
package nlp
