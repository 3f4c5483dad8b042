package nlp

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// TrainingSet mirrors the on-disk training file: {"intents":[{"tag":...,"patterns":[...]}]}.
type TrainingSet struct {
	Intents []struct {
		Tag      string   `json:"tag"`
		Patterns []string `json:"patterns"`
	} `json:"intents"`
}

// Examples flattens the set into (pattern, tag) pairs in file order.
func (s TrainingSet) Examples() []Example {
	var out []Example
	for _, intent := range s.Intents {
		for _, pattern := range intent.Patterns {
			out = append(out, Example{Text: pattern, Tag: intent.Tag})
		}
	}
	return out
}

// ReadTrainingSet decodes a training file.
func ReadTrainingSet(r io.Reader) (TrainingSet, error) {
	var set TrainingSet
	if err := json.NewDecoder(r).Decode(&set); err != nil {
		return TrainingSet{}, fmt.Errorf("decode training data: %w", err)
	}
	return set, nil
}

// LoadTrainingFile reads the examples stored at path.
func LoadTrainingFile(path string) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open training data: %w", err)
	}
	defer f.Close()

	set, err := ReadTrainingSet(f)
	if err != nil {
		return nil, err
	}
	return set.Examples(), nil
}
