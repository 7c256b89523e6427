// Package diagnosis turns a patient's symptom answers into a predicted
// disease, a confidence percentage and the doctor specializations that treat
// it.
//
// All state is built once by Build and read concurrently afterwards; nothing
// in this package takes a lock on the request path.
package diagnosis

import (
	"errors"
	"fmt"
)

// Classifier is a trained multi-class probabilistic model over FeatureVectors.
// PredictProba returns one probability per class code, summing to 1.
type Classifier interface {
	Predict(x []float64) (int, error)
	PredictProba(x []float64) ([]float64, error)
}

// Model bundles the immutable state the pipeline reads.
type Model struct {
	Schema          *Schema
	Codec           *LabelCodec
	Classifier      Classifier
	Specializations *SpecializationIndex
}

type Prediction struct {
	Disease         string   `json:"predicted_disease"`
	Specializations []string `json:"doctor_specializations"`
	Confidence      float64  `json:"confidence"`
}

type Pipeline struct {
	model Model
}

func NewPipeline(m Model) (*Pipeline, error) {
	switch {
	case m.Schema == nil:
		return nil, errors.New("diagnosis: pipeline requires a feature schema")
	case m.Codec == nil:
		return nil, errors.New("diagnosis: pipeline requires a label codec")
	case m.Classifier == nil:
		return nil, errors.New("diagnosis: pipeline requires a classifier")
	case m.Specializations == nil:
		return nil, errors.New("diagnosis: pipeline requires a specialization index")
	}
	return &Pipeline{model: m}, nil
}

func (p *Pipeline) Schema() *Schema    { return p.model.Schema }
func (p *Pipeline) Codec() *LabelCodec { return p.model.Codec }

// Predict runs one request through encode, classify, decode and lookup.
// Every failure comes back as a *Fault; a panicking classifier is recovered
// and reported as an internal fault.
func (p *Pipeline) Predict(presence Presence) (pred Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			pred = Prediction{}
			err = InternalFault(fmt.Errorf("classifier panic: %v", r))
		}
	}()

	x := p.model.Schema.Encode(presence)

	code, err := p.model.Classifier.Predict(x)
	if err != nil {
		return Prediction{}, InternalFault(fmt.Errorf("predict: %w", err))
	}
	proba, err := p.model.Classifier.PredictProba(x)
	if err != nil {
		return Prediction{}, InternalFault(fmt.Errorf("predict proba: %w", err))
	}
	if len(proba) != p.model.Codec.Len() {
		return Prediction{}, InternalFault(fmt.Errorf("classifier returned %d probabilities for %d diseases", len(proba), p.model.Codec.Len()))
	}

	disease, err := p.model.Codec.Decode(code)
	if err != nil {
		return Prediction{}, InternalFault(err)
	}

	return Prediction{
		Disease:         disease,
		Specializations: p.model.Specializations.Lookup(disease),
		Confidence:      confidence(proba[code]),
	}, nil
}

func confidence(prob float64) float64 {
	c := prob * 100
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
