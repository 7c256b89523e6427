// Package gbm trains a LightGBM gradient-boosted classifier over dense
// feature vectors and exposes it through class-code Predict and
// PredictProba calls.
//
// Class codes are 0..classes-1. Codes that never occur in the training rows
// still get a (zero) probability slot, so callers can size results from
// their own label set.
package gbm

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/YuminosukeSato/scigo/sklearn/lightgbm"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrEmptyTrainingSet = errors.New("gbm: empty training set")
	ErrShapeMismatch    = errors.New("gbm: feature vector shape mismatch")
)

type Config struct {
	Iterations   int
	LearningRate float64
	NumLeaves    int
	// MinChildSamples is the minimum number of rows in a leaf. The symptom
	// tables have only a handful of rows per disease, so the default is 1.
	MinChildSamples int
	Seed            int
}

func DefaultConfig() Config {
	return Config{
		Iterations:      100,
		LearningRate:    0.1,
		NumLeaves:       31,
		MinChildSamples: 1,
		Seed:            42,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Iterations <= 0 {
		c.Iterations = d.Iterations
	}
	if c.LearningRate <= 0 {
		c.LearningRate = d.LearningRate
	}
	if c.NumLeaves < 2 {
		c.NumLeaves = d.NumLeaves
	}
	if c.MinChildSamples < 1 {
		c.MinChildSamples = d.MinChildSamples
	}
	return c
}

// Classifier is immutable once Fit returns and safe for concurrent use.
type Classifier struct {
	mu      sync.Mutex
	booster *lightgbm.LGBMClassifier

	features int
	classes  int
	// seen maps booster output columns to class codes, ascending.
	seen []int
}

func Fit(X [][]float64, y []int, classes int, cfg Config) (*Classifier, error) {
	if len(X) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("gbm: %d rows but %d labels", len(X), len(y))
	}
	if classes < 1 {
		return nil, fmt.Errorf("gbm: invalid class count %d", classes)
	}

	features := len(X[0])
	if features == 0 {
		return nil, fmt.Errorf("gbm: rows have no features: %w", ErrShapeMismatch)
	}
	for i, row := range X {
		if len(row) != features {
			return nil, fmt.Errorf("row %d has %d features, want %d: %w", i, len(row), features, ErrShapeMismatch)
		}
	}
	for i, label := range y {
		if label < 0 || label >= classes {
			return nil, fmt.Errorf("gbm: label %d at row %d outside [0,%d)", label, i, classes)
		}
	}

	c := &Classifier{
		features: features,
		classes:  classes,
		seen:     distinct(y),
	}
	// A single observed class needs no booster; it always wins.
	if len(c.seen) == 1 {
		return c, nil
	}

	column := make(map[int]int, len(c.seen))
	for i, code := range c.seen {
		column[code] = i
	}

	data := make([]float64, 0, len(X)*features)
	for _, row := range X {
		data = append(data, row...)
	}
	target := make([]float64, len(y))
	for i, label := range y {
		target[i] = float64(column[label])
	}

	cfg = cfg.withDefaults()
	booster := lightgbm.NewLGBMClassifier()
	booster.NumIterations = cfg.Iterations
	booster.LearningRate = cfg.LearningRate
	booster.NumLeaves = cfg.NumLeaves
	booster.MinChildSamples = cfg.MinChildSamples
	booster.RandomState = cfg.Seed
	booster.Deterministic = true

	if err := booster.Fit(mat.NewDense(len(X), features, data), mat.NewVecDense(len(y), target)); err != nil {
		return nil, fmt.Errorf("gbm: fit booster: %w", err)
	}
	c.booster = booster
	return c, nil
}

// PredictProba returns one probability per class code. The result sums to 1.
func (c *Classifier) PredictProba(x []float64) ([]float64, error) {
	if len(x) != c.features {
		return nil, fmt.Errorf("got %d features, want %d: %w", len(x), c.features, ErrShapeMismatch)
	}

	proba := make([]float64, c.classes)
	if c.booster == nil {
		proba[c.seen[0]] = 1
		return proba, nil
	}

	row := mat.NewDense(1, c.features, append([]float64(nil), x...))

	c.mu.Lock()
	out, err := c.booster.PredictProba(row)
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("gbm: predict proba: %w", err)
	}

	_, cols := out.Dims()
	switch {
	case cols == len(c.seen):
		for i, code := range c.seen {
			proba[code] = out.At(0, i)
		}
	case cols == 1 && len(c.seen) == 2:
		// binary boosters may report only the positive class
		p := out.At(0, 0)
		proba[c.seen[0]] = 1 - p
		proba[c.seen[1]] = p
	default:
		return nil, fmt.Errorf("gbm: booster returned %d columns for %d trained classes", cols, len(c.seen))
	}
	return normalize(proba), nil
}

// Predict returns the class with the highest probability; ties go to the
// lowest class code.
func (c *Classifier) Predict(x []float64) (int, error) {
	proba, err := c.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return argmax(proba), nil
}

func distinct(y []int) []int {
	set := make(map[int]struct{}, len(y))
	for _, label := range y {
		set[label] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for label := range set {
		out = append(out, label)
	}
	sort.Ints(out)
	return out
}

func normalize(proba []float64) []float64 {
	total := 0.0
	for i, p := range proba {
		if p < 0 {
			proba[i] = 0
			continue
		}
		total += p
	}
	if total == 0 {
		uniform := 1 / float64(len(proba))
		for i := range proba {
			proba[i] = uniform
		}
		return proba
	}
	for i := range proba {
		proba[i] /= total
	}
	return proba
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
