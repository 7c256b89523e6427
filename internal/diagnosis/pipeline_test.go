package diagnosis

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/symptomdx/internal/dataset"
	"github.com/Skufu/symptomdx/internal/gbm"
)

type stubClassifier struct {
	code     int
	proba    []float64
	err      error
	probaErr error
	panics   bool
}

func (s stubClassifier) Predict(x []float64) (int, error) {
	if s.panics {
		panic("index out of range")
	}
	return s.code, s.err
}

func (s stubClassifier) PredictProba(x []float64) ([]float64, error) {
	return s.proba, s.probaErr
}

func fluColdModel(t *testing.T) Model {
	t.Helper()
	set := &dataset.TrainingSet{
		Symptoms: []string{"fever", "cough"},
		Values: [][]string{
			{"Yes", "No"},
			{"Yes", "No"},
			{"No", "Yes"},
			{"No", "Yes"},
		},
		Labels: []string{"flu", "flu", "cold", "cold"},
	}
	m, _, err := Build(set, []Specialization{{Disease: "flu", Name: "General Physician"}}, BuildOptions{
		Classifier: gbm.Config{Iterations: 25, Seed: 42},
	})
	require.NoError(t, err)
	return m
}

func stubModel(t *testing.T, clf Classifier) Model {
	t.Helper()
	schema, err := NewSchema([]string{"fever", "cough"})
	require.NoError(t, err)
	codec, err := FitLabels([]string{"flu", "cold"})
	require.NoError(t, err)
	return Model{
		Schema:          schema,
		Codec:           codec,
		Classifier:      clf,
		Specializations: NewSpecializationIndex([]Specialization{{Disease: "flu", Name: "General Physician"}}),
	}
}

func TestNewPipelineRequiresComponents(t *testing.T) {
	_, err := NewPipeline(Model{})
	assert.Error(t, err)

	m := stubModel(t, stubClassifier{})
	m.Specializations = nil
	_, err = NewPipeline(m)
	assert.Error(t, err)
}

func TestPredictFluColdScenario(t *testing.T) {
	p, err := NewPipeline(fluColdModel(t))
	require.NoError(t, err)

	assert.Equal(t, FeatureVector{1, 0}, p.Schema().Encode(Presence{"fever": "Yes", "cough": "No"}))

	pred, err := p.Predict(Presence{"fever": "Yes", "cough": "No"})
	require.NoError(t, err)

	switch pred.Disease {
	case "flu":
		assert.Equal(t, []string{"General Physician"}, pred.Specializations)
	case "cold":
		assert.Equal(t, []string{}, pred.Specializations)
	default:
		t.Fatalf("unexpected disease %q", pred.Disease)
	}
	assert.GreaterOrEqual(t, pred.Confidence, 0.0)
	assert.LessOrEqual(t, pred.Confidence, 100.0)
}

func TestPredictUnknownKeyActsAsEmpty(t *testing.T) {
	p, err := NewPipeline(fluColdModel(t))
	require.NoError(t, err)

	unknown, err := p.Predict(Presence{"headache": "Yes"})
	require.NoError(t, err)
	empty, err := p.Predict(Presence{})
	require.NoError(t, err)

	assert.Equal(t, empty, unknown)
	assert.Contains(t, []string{"flu", "cold"}, empty.Disease)
	assert.NotNil(t, empty.Specializations)
}

func TestPredictConfidenceIsPredictedClassProbability(t *testing.T) {
	p, err := NewPipeline(stubModel(t, stubClassifier{code: 1, proba: []float64{0.25, 0.75}}))
	require.NoError(t, err)

	pred, err := p.Predict(Presence{"cough": "Yes"})
	require.NoError(t, err)
	assert.Equal(t, "cold", pred.Disease)
	assert.InDelta(t, 75.0, pred.Confidence, 1e-9)
	assert.Empty(t, pred.Specializations)
}

func TestPredictFaults(t *testing.T) {
	tests := []struct {
		name string
		clf  stubClassifier
	}{
		{"predict error", stubClassifier{err: errors.New("boom")}},
		{"proba error", stubClassifier{proba: []float64{1, 0}, probaErr: errors.New("boom")}},
		{"shape mismatch", stubClassifier{proba: []float64{1}}},
		{"code out of range", stubClassifier{code: 5, proba: []float64{0.5, 0.5}}},
		{"panic", stubClassifier{panics: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPipeline(stubModel(t, tt.clf))
			require.NoError(t, err)

			_, err = p.Predict(Presence{"fever": "Yes"})
			require.Error(t, err)

			var fault *Fault
			require.ErrorAs(t, err, &fault)
			assert.Equal(t, FaultInternal, fault.Kind)
			assert.NotEmpty(t, err.Error())
		})
	}
}

func TestPredictInvalidCodeSurfacesTypedError(t *testing.T) {
	p, err := NewPipeline(stubModel(t, stubClassifier{code: 2, proba: []float64{0.5, 0.5}}))
	require.NoError(t, err)

	_, err = p.Predict(nil)
	var invalid *InvalidCodeError
	assert.ErrorAs(t, err, &invalid)
}

func TestPredictConcurrent(t *testing.T) {
	p, err := NewPipeline(fluColdModel(t))
	require.NoError(t, err)

	want, err := p.Predict(Presence{"cough": "Yes"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Prediction, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = p.Predict(Presence{"cough": "Yes"})
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestConfidenceClamp(t *testing.T) {
	assert.Equal(t, 100.0, confidence(1.0000001))
	assert.Equal(t, 0.0, confidence(-0.1))
	assert.InDelta(t, 42.0, confidence(0.42), 1e-9)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, FaultInvalidRequest, KindOf(InvalidRequest(errors.New("x"))))
	assert.Equal(t, FaultInternal, KindOf(errors.New("plain")))
}
