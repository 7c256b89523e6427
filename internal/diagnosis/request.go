package diagnosis

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

var errNotObject = errors.New("request body must be a JSON object")

// ParsePresence decodes a /predict body. An empty body or JSON null is an
// empty request. Non-string values are dropped, which encodes them as "No".
func ParsePresence(body []byte) (Presence, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Presence{}, nil
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, InvalidRequest(fmt.Errorf("decode request body: %w", err))
	}
	if raw == nil {
		return Presence{}, nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, InvalidRequest(errNotObject)
	}

	p := make(Presence, len(obj))
	for name, value := range obj {
		if s, ok := value.(string); ok {
			p[name] = s
		}
	}
	return p, nil
}

// PresenceFromList marks every listed symptom as present.
func PresenceFromList(symptoms []string) Presence {
	p := make(Presence, len(symptoms))
	for _, name := range symptoms {
		p[name] = PresentValue
	}
	return p
}
