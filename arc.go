package cpn

import (
	"fmt"
	"sort"
)

// Arrow joins the ends of an arc when it is printed.
const Arrow = "→"

// Transform maps the tokens crossing an arc to the tokens delivered on the
// other side.
type Transform func(tokens TokenSet) (TokenSet, error)

// TransformEach returns a transform applying fn to every token. Errors from fn
// are returned as is.
func TransformEach(fn func(*Token) (*Token, error)) Transform {
	return func(tokens TokenSet) (TokenSet, error) {
		var ret TokenSet
		for _, t := range tokens.Tokens() {
			out, err := fn(t)
			if err != nil {
				return TokenSet{}, err
			}
			ret = ret.Add(out)
		}
		return ret, nil
	}
}

// ArcGuard reports whether the tokens currently at an arc's source place
// allow the arc's transition to occur.
type ArcGuard func(arc *ArcPT, tokens TokenSet) (bool, error)

// WeightsAreSatisfied holds when the tokens include every color of the arc's
// weight in at least the required quantity.
func WeightsAreSatisfied(arc *ArcPT, tokens TokenSet) (bool, error) {
	have := tokens.ColorSet()
	for c, q := range arc.weight {
		if have[c] < q {
			return false, nil
		}
	}
	return true, nil
}

func inhibited(arc *ArcPT, tokens TokenSet) (bool, error) {
	for _, t := range tokens.Tokens() {
		if _, ok := arc.weight[t.color]; ok {
			return false, nil
		}
	}
	return true, nil
}

// Arc is a directed edge between a place and a transition. It is implemented
// by *ArcPT and *ArcTP.
type Arc interface {
	// Src is nil until the source end is set.
	Src() Node
	// Dest is nil until the destination end is set.
	Dest() Node
	Weight() ColorSet
	Annotation() string
	Transform() Transform
	// Completed reports whether both ends are set.
	Completed() bool
	// Key identifies the arc by its ends and weight.
	Key() string
	String() string
}

var (
	_ Arc = (*ArcPT)(nil)
	_ Arc = (*ArcTP)(nil)
)

func defaultWeight(weight ColorSet) ColorSet {
	if len(weight) == 0 {
		return Weight()
	}
	return weight.Clone()
}

// ArcPT is an arc from a Place to a Transition.
type ArcPT struct {
	src        *Place
	dest       *Transition
	weight     ColorSet
	annotation string
	transform  Transform
	guard      ArcGuard
	inhibitor  bool
}

func (a *ArcPT) Src() Node {
	if a.src == nil {
		return nil
	}
	return a.src
}

func (a *ArcPT) Dest() Node {
	if a.dest == nil {
		return nil
	}
	return a.dest
}

func (a *ArcPT) Place() *Place { return a.src }

func (a *ArcPT) Transition() *Transition { return a.dest }

// Weight returns a copy of the arc weight.
func (a *ArcPT) Weight() ColorSet { return a.weight.Clone() }

func (a *ArcPT) Annotation() string { return a.annotation }

func (a *ArcPT) Transform() Transform { return a.transform }

// Guard returns the arc guard, WeightsAreSatisfied unless set otherwise.
func (a *ArcPT) Guard() ArcGuard {
	if a.guard == nil {
		return WeightsAreSatisfied
	}
	return a.guard
}

// HasGuard reports whether the arc was given a guard.
func (a *ArcPT) HasGuard() bool { return a.guard != nil }

// Inhibitor reports whether the arc was made by InhibitorArc.
func (a *ArcPT) Inhibitor() bool { return a.inhibitor }

func (a *ArcPT) Completed() bool { return a.src != nil && a.dest != nil }

func (a *ArcPT) Key() string { return arcKey(a) }

func (a *ArcPT) String() string { return arcString(a) }

func (a *ArcPT) copy() *ArcPT {
	cp := *a
	return &cp
}

// From sets the source place.
func (a *ArcPT) From(p *Place) (*ArcPT, error) {
	if a.src != nil {
		return nil, fmt.Errorf("%w: arc to %s already has a source", ErrArcIncomplete, nodeString(a.Dest()))
	}
	if err := a.weight.Validate(); err != nil {
		return nil, err
	}
	cp := a.copy()
	cp.src = p
	return cp, nil
}

// To sets the destination transition.
func (a *ArcPT) To(t *Transition) (*ArcPT, error) {
	if a.dest != nil {
		return nil, fmt.Errorf("%w: arc from %s already has a destination", ErrArcIncomplete, nodeString(a.Src()))
	}
	if err := a.weight.Validate(); err != nil {
		return nil, err
	}
	cp := a.copy()
	cp.dest = t
	return cp, nil
}

func (a *ArcPT) Annotate(text string) *ArcPT {
	cp := a.copy()
	cp.annotation = text
	return cp
}

func (a *ArcPT) TransformEach(fn func(*Token) (*Token, error)) *ArcPT {
	cp := a.copy()
	cp.transform = TransformEach(fn)
	return cp
}

// Guarded replaces the arc guard. The result is not an inhibitor arc.
func (a *ArcPT) Guarded(g ArcGuard) *ArcPT {
	cp := a.copy()
	cp.guard = g
	cp.inhibitor = false
	return cp
}

// ArcTP is an arc from a Transition to a Place.
type ArcTP struct {
	src        *Transition
	dest       *Place
	weight     ColorSet
	annotation string
	transform  Transform
}

func (a *ArcTP) Src() Node {
	if a.src == nil {
		return nil
	}
	return a.src
}

func (a *ArcTP) Dest() Node {
	if a.dest == nil {
		return nil
	}
	return a.dest
}

func (a *ArcTP) Place() *Place { return a.dest }

func (a *ArcTP) Transition() *Transition { return a.src }

func (a *ArcTP) Weight() ColorSet { return a.weight.Clone() }

func (a *ArcTP) Annotation() string { return a.annotation }

func (a *ArcTP) Transform() Transform { return a.transform }

func (a *ArcTP) Completed() bool { return a.src != nil && a.dest != nil }

func (a *ArcTP) Key() string { return arcKey(a) }

func (a *ArcTP) String() string { return arcString(a) }

func (a *ArcTP) copy() *ArcTP {
	cp := *a
	return &cp
}

// From sets the source transition.
func (a *ArcTP) From(t *Transition) (*ArcTP, error) {
	if a.src != nil {
		return nil, fmt.Errorf("%w: arc to %s already has a source", ErrArcIncomplete, nodeString(a.Dest()))
	}
	if err := a.weight.Validate(); err != nil {
		return nil, err
	}
	cp := a.copy()
	cp.src = t
	return cp, nil
}

// To sets the destination place.
func (a *ArcTP) To(p *Place) (*ArcTP, error) {
	if a.dest != nil {
		return nil, fmt.Errorf("%w: arc from %s already has a destination", ErrArcIncomplete, nodeString(a.Src()))
	}
	if err := a.weight.Validate(); err != nil {
		return nil, err
	}
	cp := a.copy()
	cp.dest = p
	return cp, nil
}

func (a *ArcTP) Annotate(text string) *ArcTP {
	cp := a.copy()
	cp.annotation = text
	return cp
}

func (a *ArcTP) TransformEach(fn func(*Token) (*Token, error)) *ArcTP {
	cp := a.copy()
	cp.transform = TransformEach(fn)
	return cp
}

func nodeString(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.String()
}

func nodeID(n Node) string {
	if n == nil {
		return ""
	}
	return n.ID()
}

func arcKey(a Arc) string {
	return nodeID(a.Src()) + Arrow + nodeID(a.Dest()) + "|" + a.Weight().Key()
}

func arcString(a Arc) string {
	s := nodeString(a.Src())
	if w := a.Weight().String(); w != "" {
		s += " " + w
	}
	if a.Annotation() != "" {
		s += " " + a.Annotation()
	}
	return s + " " + Arrow + " " + nodeString(a.Dest())
}

// ArcLess orders arcs by source name, then destination name.
func ArcLess(a, b Arc) bool {
	as, bs := nodeName(a.Src()), nodeName(b.Src())
	if as != bs {
		return as < bs
	}
	ad, bd := nodeName(a.Dest()), nodeName(b.Dest())
	if ad != bd {
		return ad < bd
	}
	return a.Key() < b.Key()
}

func nodeName(n Node) string {
	if n == nil {
		return ""
	}
	return n.Name()
}

func sortArcs(arcs []Arc) {
	sort.Slice(arcs, func(i, j int) bool { return ArcLess(arcs[i], arcs[j]) })
}

type arcOptions struct {
	annotation string
	transform  Transform
	guard      ArcGuard
}

type ArcOption func(*arcOptions)

func WithAnnotation(text string) ArcOption {
	return func(o *arcOptions) {
		o.annotation = text
	}
}

func WithTransform(fn Transform) ArcOption {
	return func(o *arcOptions) {
		o.transform = fn
	}
}

func WithTransformEach(fn func(*Token) (*Token, error)) ArcOption {
	return WithTransform(TransformEach(fn))
}

// WithArcGuard replaces WeightsAreSatisfied. Only arcs into a transition
// accept a guard.
func WithArcGuard(g ArcGuard) ArcOption {
	return func(o *arcOptions) {
		o.guard = g
	}
}

// NewArc connects a place to a transition or a transition to a place. A nil
// weight is one Abstract token.
func NewArc(src, dest Node, weight ColorSet, opts ...ArcOption) (Arc, error) {
	weight = defaultWeight(weight)
	if err := weight.Validate(); err != nil {
		return nil, err
	}
	var o arcOptions
	for _, opt := range opts {
		opt(&o)
	}
	switch s := src.(type) {
	case *Place:
		if d, ok := dest.(*Transition); ok && s != nil && d != nil {
			return &ArcPT{
				src:        s,
				dest:       d,
				weight:     weight,
				annotation: o.annotation,
				transform:  o.transform,
				guard:      o.guard,
			}, nil
		}
	case *Transition:
		if d, ok := dest.(*Place); ok && s != nil && d != nil {
			if o.guard != nil {
				return nil, fmt.Errorf("%w: arc from %s to %s cannot have a guard", ErrInvalidArc, s, d)
			}
			return &ArcTP{
				src:        s,
				dest:       d,
				weight:     weight,
				annotation: o.annotation,
				transform:  o.transform,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: arcs must be from place to transition or transition to place, got %T to %T", ErrInvalidArc, src, dest)
}

// MustArc is like NewArc but panics on error. It is meant for net declarations.
func MustArc(src, dest Node, weight ColorSet, opts ...ArcOption) Arc {
	a, err := NewArc(src, dest, weight, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// InhibitorArc connects p to t so that t is enabled only while p holds no
// tokens of the weight's colors. A nil weight inhibits Abstract tokens.
func InhibitorArc(p *Place, t *Transition, weight ColorSet) (*ArcPT, error) {
	a, err := NewArc(p, t, weight, WithArcGuard(inhibited), WithAnnotation("inhibitor"))
	if err != nil {
		return nil, err
	}
	arc := a.(*ArcPT)
	arc.inhibitor = true
	return arc, nil
}

// ArcPath links each consecutive pair of alternating places and transitions.
func ArcPath(nodes ...Node) ([]Arc, error) {
	var arcs []Arc
	for i := 1; i < len(nodes); i++ {
		a, err := NewArc(nodes[i-1], nodes[i], nil)
		if err != nil {
			return nil, err
		}
		arcs = append(arcs, a)
	}
	return arcs, nil
}
