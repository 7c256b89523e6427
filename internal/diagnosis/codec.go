package diagnosis

import (
	"errors"
	"fmt"
)

var (
	ErrNoLabels     = errors.New("diagnosis: no disease labels")
	ErrUnknownLabel = errors.New("diagnosis: unknown disease label")
)

// InvalidCodeError reports a class code outside the codec's range. The
// classifier only emits codes it was trained on, so this signals a broken
// model rather than bad input.
type InvalidCodeError struct {
	Code int
	Size int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("diagnosis: class code %d outside [0,%d)", e.Code, e.Size)
}

// LabelCodec maps disease labels to dense integer codes in order of first
// appearance.
type LabelCodec struct {
	labels []string
	codes  map[string]int
}

func FitLabels(labels []string) (*LabelCodec, error) {
	c := &LabelCodec{codes: make(map[string]int)}
	for _, label := range labels {
		if _, ok := c.codes[label]; ok {
			continue
		}
		c.codes[label] = len(c.labels)
		c.labels = append(c.labels, label)
	}
	if len(c.labels) == 0 {
		return nil, ErrNoLabels
	}
	return c, nil
}

func (c *LabelCodec) Len() int { return len(c.labels) }

func (c *LabelCodec) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

func (c *LabelCodec) Encode(label string) (int, error) {
	code, ok := c.codes[label]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownLabel, label)
	}
	return code, nil
}

func (c *LabelCodec) EncodeAll(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, label := range labels {
		code, err := c.Encode(label)
		if err != nil {
			return nil, err
		}
		out[i] = code
	}
	return out, nil
}

func (c *LabelCodec) Decode(code int) (string, error) {
	if code < 0 || code >= len(c.labels) {
		return "", &InvalidCodeError{Code: code, Size: len(c.labels)}
	}
	return c.labels[code], nil
}
