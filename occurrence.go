package cpn

import (
	"errors"
	"fmt"
)

// Occurrence is one candidate firing of a transition in a marking.
type Occurrence struct {
	net        *Net
	marking    Marking
	transition *Transition
}

func NewOccurrence(net *Net, marking Marking, transition *Transition) *Occurrence {
	return &Occurrence{
		net:        net,
		marking:    marking,
		transition: transition,
	}
}

func (o *Occurrence) Transition() *Transition { return o.transition }

func (o *Occurrence) Marking() Marking { return o.marking }

// CheckEnabled returns nil when the transition may occur. Errors wrapping
// ErrNotEnabled explain why it may not; any other error comes from a guard.
func (o *Occurrence) CheckEnabled() error {
	in, out := o.net.InputArcs(o.transition), o.net.OutputArcs(o.transition)
	if len(in) == 0 && len(out) == 0 {
		return fmt.Errorf("%w: %s", ErrNoArcs, o.transition)
	}
	for _, arc := range in {
		tokens := o.marking.Get(arc.src)
		ok, err := arc.Guard()(arc, tokens)
		if err != nil {
			return &ArcGuardError{Arc: arc, Err: err}
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrArcGuardFailed, arc)
		}
	}
	ok, err := o.transition.guard(o.Inputs())
	if err != nil {
		return &TransitionGuardError{Transition: o.transition, Err: err}
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrTransitionGuardFailed, o.transition)
	}
	return nil
}

// IsEnabled reports whether the transition may occur. Only errors outside the
// ErrNotEnabled family are returned.
func (o *Occurrence) IsEnabled() (bool, error) {
	err := o.CheckEnabled()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotEnabled) {
		return false, nil
	}
	return false, err
}

// selectTokens picks tokens from the arc's place until every color of the
// weight is covered, visiting tokens in token order.
func selectTokens(arc *ArcPT, tokens TokenSet) []*Token {
	left := arc.weight.Clone()
	var selected []*Token
	for _, t := range tokens.Tokens() {
		if left[t.color] > 0 {
			selected = append(selected, t)
			left[t.color]--
		}
	}
	return selected
}

// Inputs is the union of the tokens each input arc would select, before any
// arc transform.
func (o *Occurrence) Inputs() TokenSet {
	var inputs TokenSet
	for _, arc := range o.net.InputArcs(o.transition) {
		inputs = inputs.Add(selectTokens(arc, o.marking.Get(arc.src))...)
	}
	return inputs
}

// Effects returns the ordered effects of firing the transition: Consume and
// Input effects per input arc, then Output and Produce effects per output arc.
// The marking is left untouched; apply the effects with ApplyEffects.
func (o *Occurrence) Effects() ([]Effect, error) {
	if err := o.CheckEnabled(); err != nil {
		return nil, err
	}
	var effects []Effect
	var inputs TokenSet
	for _, arc := range o.net.InputArcs(o.transition) {
		selected := selectTokens(arc, o.marking.Get(arc.src))
		for _, t := range selected {
			effects = append(effects, Consume{Arc: arc, Token: t})
		}
		toAdd := NewTokenSet(selected...)
		if arc.transform != nil {
			var err error
			if toAdd, err = arc.transform(toAdd); err != nil {
				return nil, fmt.Errorf("transform on %s: %w", arc, err)
			}
		}
		for _, t := range toAdd.Tokens() {
			effects = append(effects, Input{Arc: arc, Token: t})
		}
		inputs = inputs.Union(toAdd)
	}

	groups, err := o.transition.fn(inputs)
	if err != nil {
		return nil, fmt.Errorf("transition function of %s: %w", o.transition, err)
	}
	bySignature := make(map[string]TokenSet, len(groups))
	for _, g := range groups {
		if g.Empty() {
			continue
		}
		key := g.ColorSet().Key()
		if prev, ok := bySignature[key]; ok {
			if prev.Equal(g) {
				continue
			}
			return nil, fmt.Errorf("%w: %s yielded more than one group of %s", ErrOverlappingColorSets, o.transition, g.ColorSet())
		}
		bySignature[key] = g
	}

	for _, arc := range o.net.OutputArcs(o.transition) {
		outputs, ok := bySignature[arc.weight.Key()]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoOutputForArc, arc)
		}
		for _, t := range outputs.Tokens() {
			effects = append(effects, Output{Arc: arc, Token: t})
		}
		if arc.transform != nil {
			if outputs, err = arc.transform(outputs); err != nil {
				return nil, fmt.Errorf("transform on %s: %w", arc, err)
			}
		}
		for _, t := range outputs.Tokens() {
			effects = append(effects, Produce{Arc: arc, Token: t})
		}
	}
	return effects, nil
}
