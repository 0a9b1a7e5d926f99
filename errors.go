package cpn

import (
	"errors"
	"fmt"
)

var (
	// ErrNotEnabled is wrapped by every error explaining why a transition
	// cannot occur in a marking.
	ErrNotEnabled            = errors.New("transition not enabled")
	ErrNoArcs                = fmt.Errorf("%w: transition has no arcs", ErrNotEnabled)
	ErrArcGuardFailed        = fmt.Errorf("%w: arc guard failed", ErrNotEnabled)
	ErrTransitionGuardFailed = fmt.Errorf("%w: transition guard failed", ErrNotEnabled)

	// ErrGuardRaised matches ArcGuardError and TransitionGuardError.
	ErrGuardRaised = errors.New("guard raised an error")

	ErrOverlappingColorSets = errors.New("transition produced overlapping output color sets")
	ErrNoOutputForArc       = errors.New("no output group matches arc weight")
	ErrArcIncomplete        = errors.New("arc incomplete")
	ErrInvalidArc           = errors.New("invalid arc")
	ErrInvalidWeight        = errors.New("invalid weight")
	ErrNotExactlyOne        = errors.New("expected exactly one token")
	ErrUnknownMember        = errors.New("unknown net member")
	ErrUnknownColor         = errors.New("unknown color")
	ErrUnknownPlace         = errors.New("unknown place")
)

// ArcGuardError wraps an error returned by an arc guard.
type ArcGuardError struct {
	Arc *ArcPT
	Err error
}

func (e *ArcGuardError) Error() string {
	return fmt.Sprintf("arc guard raised on %s: %v", e.Arc, e.Err)
}

func (e *ArcGuardError) Unwrap() error { return e.Err }

func (e *ArcGuardError) Is(target error) bool { return target == ErrGuardRaised }

// TransitionGuardError wraps an error returned by a transition guard.
type TransitionGuardError struct {
	Transition *Transition
	Err        error
}

func (e *TransitionGuardError) Error() string {
	return fmt.Sprintf("transition guard raised on %s: %v", e.Transition, e.Err)
}

func (e *TransitionGuardError) Unwrap() error { return e.Err }

func (e *TransitionGuardError) Is(target error) bool { return target == ErrGuardRaised }
