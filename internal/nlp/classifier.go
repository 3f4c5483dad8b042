package nlp

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"coin-insights/internal/errs"
)

// artifactVersion is bumped whenever the serialized layout changes.
const artifactVersion = 1

// Example is one labelled training pattern.
type Example struct {
	Text string
	Tag  string
}

// TrainOptions are the classifier hyperparameters.
type TrainOptions struct {
	MaxFeatures int
	C           float64
	MaxIter     int
	Tol         float64
}

// DefaultTrainOptions returns the production hyperparameters.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{MaxFeatures: DefaultMaxFeatures, C: 1, MaxIter: 1000, Tol: 1e-4}
}

// Prediction is the probability assigned to one tag.
type Prediction struct {
	Tag         string
	Probability float64
}

// Classifier predicts intent tags. The zero value is usable but unloaded; every prediction
// returns ErrModelNotLoaded until Train or Load has populated it.
type Classifier struct {
	vectorizer *Vectorizer
	classes    []string
	weights    [][]float64
}

type artifact struct {
	Version int
	Terms   []string
	IDF     []float64
	Classes []string
	Weights [][]float64
}

// Train fits a classifier on labelled examples. At least two distinct tags are required.
func Train(examples []Example, opts TrainOptions) (*Classifier, error) {
	if opts.C <= 0 {
		opts.C = 1
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 1000
	}
	if opts.Tol <= 0 {
		opts.Tol = 1e-4
	}

	docs := make([]string, len(examples))
	counts := make(map[string]int)
	for i, ex := range examples {
		if ex.Tag == "" {
			return nil, &errs.ValidationError{Field: "tag", Message: fmt.Sprintf("example %d has no tag", i)}
		}
		docs[i] = ex.Text
		counts[ex.Tag]++
	}
	if len(counts) < 2 {
		return nil, fmt.Errorf("%w: need at least two intent tags, got %d", errs.ErrValidation, len(counts))
	}

	vectorizer, err := FitVectorizer(docs, opts.MaxFeatures)
	if err != nil {
		return nil, err
	}
	x := make([][]float64, len(docs))
	for i, doc := range docs {
		x[i] = vectorizer.Transform(doc)
	}

	classes := make([]string, 0, len(counts))
	for tag := range counts {
		classes = append(classes, tag)
	}
	sort.Strings(classes)

	upper := balancedBounds(examples, counts, len(classes), opts.C)
	weights := make([][]float64, len(classes))
	labels := make([]float64, len(examples))
	for c, tag := range classes {
		for i, ex := range examples {
			labels[i] = -1
			if ex.Tag == tag {
				labels[i] = 1
			}
		}
		weights[c] = trainBinary(x, labels, upper, opts.MaxIter, opts.Tol)
	}

	return &Classifier{vectorizer: vectorizer, classes: classes, weights: weights}, nil
}

// balancedBounds gives every sample the box constraint C·n/(k·n_c) of its own class, whether it
// is the positive or a negative in a one-vs-rest problem.
func balancedBounds(examples []Example, counts map[string]int, classes int, c float64) []float64 {
	n, k := float64(len(examples)), float64(classes)
	upper := make([]float64, len(examples))
	for i, ex := range examples {
		upper[i] = c * n / (k * float64(counts[ex.Tag]))
	}
	return upper
}

// Loaded reports whether the classifier can predict.
func (c *Classifier) Loaded() bool {
	return c != nil && c.vectorizer != nil && len(c.classes) > 0
}

// Classes returns the known tags in ascending order.
func (c *Classifier) Classes() []string {
	if !c.Loaded() {
		return nil
	}
	return append([]string(nil), c.classes...)
}

// Predict returns the tag with the highest decision value. Ties go to the first tag in order.
func (c *Classifier) Predict(text string) (string, error) {
	scores, err := c.scores(text)
	if err != nil {
		return "", err
	}
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return c.classes[best], nil
}

// PredictProba returns a probability per tag, in tag order, as the softmax of the decision values.
func (c *Classifier) PredictProba(text string) ([]Prediction, error) {
	scores, err := c.scores(text)
	if err != nil {
		return nil, err
	}
	probs := softmax(scores)
	out := make([]Prediction, len(c.classes))
	for i, tag := range c.classes {
		out[i] = Prediction{Tag: tag, Probability: probs[i]}
	}
	return out, nil
}

func (c *Classifier) scores(text string) ([]float64, error) {
	if !c.Loaded() {
		return nil, errs.ErrModelNotLoaded
	}
	x := c.vectorizer.Transform(text)
	scores := make([]float64, len(c.classes))
	for i, w := range c.weights {
		scores[i] = decision(w, x)
	}
	return scores, nil
}

// Save writes the classifier as a gob artifact.
func (c *Classifier) Save(w io.Writer) error {
	if !c.Loaded() {
		return errs.ErrModelNotLoaded
	}
	art := artifact{
		Version: artifactVersion,
		Terms:   c.vectorizer.terms,
		IDF:     c.vectorizer.idf,
		Classes: c.classes,
		Weights: c.weights,
	}
	if err := gob.NewEncoder(w).Encode(art); err != nil {
		return fmt.Errorf("encode model artifact: %w", err)
	}
	return nil
}

// SaveFile writes the artifact to path, creating parent directories.
func (c *Classifier) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	buf := bufio.NewWriter(f)
	if err := c.Save(buf); err != nil {
		f.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write model file: %w", err)
	}
	return f.Close()
}

// Load replaces the classifier state with a gob artifact. It must not run concurrently with
// predictions.
func (c *Classifier) Load(r io.Reader) error {
	var art artifact
	if err := gob.NewDecoder(r).Decode(&art); err != nil {
		return fmt.Errorf("decode model artifact: %w", err)
	}
	if art.Version != artifactVersion {
		return fmt.Errorf("unsupported model artifact version %d, want %d", art.Version, artifactVersion)
	}
	if len(art.Terms) != len(art.IDF) || len(art.Classes) != len(art.Weights) || len(art.Classes) == 0 {
		return fmt.Errorf("model artifact is inconsistent")
	}
	for _, w := range art.Weights {
		if len(w) != len(art.Terms)+1 {
			return fmt.Errorf("model artifact is inconsistent")
		}
	}
	c.vectorizer = newVectorizer(art.Terms, art.IDF)
	c.classes = art.Classes
	c.weights = art.Weights
	return nil
}

// LoadFile loads the artifact stored at path.
func (c *Classifier) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()
	return c.Load(bufio.NewReader(f))
}
