package statechart

import (
	"errors"
	"fmt"
)

// ModelWellFormednessError reports a structural defect in the model:
// duplicate initial-family pseudostates in one region, an outbound
// transition from a FinalState, a transition missing its source, or a
// reference to an element never attached to the model. Most of these are
// caught at construction time (and panic, matching the teacher's fluent
// builder — a malformed model is a programming error the host fixes before
// shipping); the subset that depends on the finished tree is caught at
// Bootstrap and returned as this error.
type ModelWellFormednessError struct {
	Reason string
}

func (e *ModelWellFormednessError) Error() string { return "statechart: ill-formed model: " + e.Reason }

// IllformedTransitionError reports a selection-time ambiguity: a Junction
// with more than one matching guard and no else, a Choice with no match
// and no else, or a history pseudostate reached with no recorded state and
// no default transition.
type IllformedTransitionError struct {
	Reason string
}

func (e *IllformedTransitionError) Error() string {
	return "statechart: ill-formed transition: " + e.Reason
}

// ErrNotInitialised is returned by Evaluate when called before Initialise.
var ErrNotInitialised = errors.New("statechart: evaluate called before initialise")

// ErrDirty is returned by Initialise and Evaluate, wrapping the Bootstrap
// error, when the model is dirty and the Bootstrap they run on it fails.
var ErrDirty = errors.New("statechart: model is dirty and could not be bootstrapped")

func wellFormednessf(format string, args ...any) error {
	return &ModelWellFormednessError{Reason: fmt.Sprintf(format, args...)}
}

func illFormedf(format string, args ...any) error {
	return &IllformedTransitionError{Reason: fmt.Sprintf(format, args...)}
}
