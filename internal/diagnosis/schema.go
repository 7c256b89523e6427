package diagnosis

import (
	"errors"
	"fmt"
)

// PresentValue is the only symptom value that encodes to 1.
const PresentValue = "Yes"

var ErrEmptySchema = errors.New("diagnosis: feature schema has no symptoms")

// Presence maps symptom names to "Yes"/"No". Missing keys mean "No".
type Presence map[string]string

// FeatureVector holds one 0/1 entry per symptom in schema order.
type FeatureVector []float64

// Schema is the ordered symptom list the classifier was trained against.
type Schema struct {
	symptoms []string
	index    map[string]int
}

func NewSchema(symptoms []string) (*Schema, error) {
	if len(symptoms) == 0 {
		return nil, ErrEmptySchema
	}

	s := &Schema{
		symptoms: make([]string, len(symptoms)),
		index:    make(map[string]int, len(symptoms)),
	}
	for i, name := range symptoms {
		if _, dup := s.index[name]; dup {
			return nil, fmt.Errorf("diagnosis: duplicate symptom %q", name)
		}
		s.symptoms[i] = name
		s.index[name] = i
	}
	return s, nil
}

func (s *Schema) Len() int { return len(s.symptoms) }

func (s *Schema) Symptoms() []string {
	out := make([]string, len(s.symptoms))
	copy(out, s.symptoms)
	return out
}

func (s *Schema) Has(symptom string) bool {
	_, ok := s.index[symptom]
	return ok
}

// Encode never fails: unknown keys are ignored and anything other than
// "Yes" encodes to 0.
func (s *Schema) Encode(p Presence) FeatureVector {
	v := make(FeatureVector, len(s.symptoms))
	for i, name := range s.symptoms {
		v[i] = EncodeValue(p[name])
	}
	return v
}

// EncodeRow applies the request encoding rule to a training row already in
// schema order.
func (s *Schema) EncodeRow(values []string) (FeatureVector, error) {
	if len(values) != len(s.symptoms) {
		return nil, fmt.Errorf("diagnosis: row has %d values, schema has %d symptoms", len(values), len(s.symptoms))
	}
	v := make(FeatureVector, len(values))
	for i, value := range values {
		v[i] = EncodeValue(value)
	}
	return v, nil
}

func EncodeValue(value string) float64 {
	if value == PresentValue {
		return 1
	}
	return 0
}
