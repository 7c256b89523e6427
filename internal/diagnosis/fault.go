package diagnosis

import "errors"

type FaultKind string

const (
	FaultInvalidRequest FaultKind = "invalid_request"
	FaultInternal       FaultKind = "internal"
)

// Fault is the only error type Pipeline.Predict and ParsePresence return.
type Fault struct {
	Kind FaultKind
	Err  error
}

func (f *Fault) Error() string { return f.Err.Error() }
func (f *Fault) Unwrap() error { return f.Err }

func InvalidRequest(err error) *Fault { return &Fault{Kind: FaultInvalidRequest, Err: err} }
func InternalFault(err error) *Fault  { return &Fault{Kind: FaultInternal, Err: err} }

// KindOf returns the fault kind of err, treating foreign errors as internal.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return FaultInternal
}
