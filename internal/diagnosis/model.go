package diagnosis

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Skufu/symptomdx/internal/dataset"
	"github.com/Skufu/symptomdx/internal/gbm"
)

type BuildOptions struct {
	Classifier gbm.Config

	// TestFraction of rows held out for the startup accuracy report. Zero
	// trains on every row.
	TestFraction float64
	SplitSeed    int64
}

// Evaluation is the held-out accuracy of the served classifier.
type Evaluation struct {
	TrainRows int
	TestRows  int
	Accuracy  float64
}

// Build fits the schema, codec and classifier from the training set and
// indexes the specialization rows. Any error here is a startup data fault.
func Build(set *dataset.TrainingSet, rows []Specialization, opts BuildOptions) (Model, Evaluation, error) {
	schema, err := NewSchema(set.Symptoms)
	if err != nil {
		return Model{}, Evaluation{}, err
	}
	codec, err := FitLabels(set.Labels)
	if err != nil {
		return Model{}, Evaluation{}, err
	}
	if len(set.Values) != len(set.Labels) {
		return Model{}, Evaluation{}, fmt.Errorf("diagnosis: %d rows but %d labels", len(set.Values), len(set.Labels))
	}

	X := make([][]float64, len(set.Values))
	for i, values := range set.Values {
		v, err := schema.EncodeRow(values)
		if err != nil {
			return Model{}, Evaluation{}, fmt.Errorf("row %d: %w", i, err)
		}
		X[i] = v
	}
	y, err := codec.EncodeAll(set.Labels)
	if err != nil {
		return Model{}, Evaluation{}, err
	}

	train, test := split(len(X), opts.TestFraction, opts.SplitSeed)
	trainX, trainY := gather(X, y, train)

	clf, err := gbm.Fit(trainX, trainY, codec.Len(), opts.Classifier)
	if err != nil {
		return Model{}, Evaluation{}, fmt.Errorf("train classifier: %w", err)
	}

	eval := Evaluation{TrainRows: len(train), TestRows: len(test)}
	if len(test) > 0 {
		testX, testY := gather(X, y, test)
		eval.Accuracy, err = accuracy(clf, testX, testY)
		if err != nil {
			return Model{}, Evaluation{}, fmt.Errorf("evaluate classifier: %w", err)
		}
	}

	return Model{
		Schema:          schema,
		Codec:           codec,
		Classifier:      clf,
		Specializations: NewSpecializationIndex(rows),
	}, eval, nil
}

// FromDataset converts mapping-table rows into index rows.
func FromDataset(rows []dataset.SpecializationRow) []Specialization {
	out := make([]Specialization, len(rows))
	for i, r := range rows {
		out[i] = Specialization{Disease: r.Disease, Name: r.Specialization}
	}
	return out
}

// split shuffles row indices and holds out ceil(fraction*n) of them, always
// leaving at least one row for training.
func split(n int, fraction float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	if fraction <= 0 || n < 2 {
		return perm, nil
	}

	nTest := int(math.Ceil(fraction * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}
	return perm[nTest:], perm[:nTest]
}

func gather(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	outX := make([][]float64, len(idx))
	outY := make([]int, len(idx))
	for i, j := range idx {
		outX[i] = X[j]
		outY[i] = y[j]
	}
	return outX, outY
}

func accuracy(clf Classifier, X [][]float64, y []int) (float64, error) {
	correct := 0
	for i, x := range X {
		got, err := clf.Predict(x)
		if err != nil {
			return 0, err
		}
		if got == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X)), nil
}
