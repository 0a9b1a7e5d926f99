package cpn

// TransitionIcon decorates transitions in diagrams.
const TransitionIcon = "□"

// Guard receives the tokens selected from the input places and reports whether
// the transition may occur.
type Guard func(inputs TokenSet) (bool, error)

// Func computes the outputs of a transition. Each returned token set is one
// output group, matched to the output arc whose weight equals the group's
// color counts.
type Func func(inputs TokenSet) ([]TokenSet, error)

// Always returns a guard that always returns value.
func Always(value bool) Guard {
	return func(TokenSet) (bool, error) {
		return value, nil
	}
}

// Chain returns a function yielding the output groups of every fn in order.
func Chain(fns ...Func) Func {
	if len(fns) == 1 {
		return fns[0]
	}
	return func(inputs TokenSet) ([]TokenSet, error) {
		var outputs []TokenSet
		for _, fn := range fns {
			out, err := fn(inputs)
			if err != nil {
				return nil, err
			}
			outputs = append(outputs, out...)
		}
		return outputs, nil
	}
}

// Passthrough returns a function that passes inputs through as outputs. Given
// color sets, it passes through the subset matching their sum and yields
// nothing when the inputs cannot cover it. Which tokens of a color are picked
// when more are available than needed follows token order.
func Passthrough(colorsets ...ColorSet) Func {
	if len(colorsets) == 0 {
		return func(inputs TokenSet) ([]TokenSet, error) {
			return []TokenSet{inputs}, nil
		}
	}
	want := make(ColorSet)
	for _, cs := range colorsets {
		for c, q := range cs {
			want[c] += q
		}
	}
	return func(inputs TokenSet) ([]TokenSet, error) {
		if inputs.ColorSet().Equal(want) {
			return []TokenSet{inputs}, nil
		}
		remaining := want.Clone()
		var subset TokenSet
		for _, t := range inputs.Tokens() {
			if remaining[t.color] <= 0 {
				continue
			}
			subset = subset.Add(t)
			remaining[t.color]--
			if remaining[t.color] == 0 {
				delete(remaining, t.color)
			}
		}
		if len(remaining) > 0 {
			return nil, nil
		}
		return []TokenSet{subset}, nil
	}
}

// Transition consumes tokens from its input places and produces tokens to its
// output places when it occurs.
type Transition struct {
	id         string
	name       string
	icon       string
	annotation string
	guard      Guard
	fn         Func
	// set when the defaults were replaced
	hasGuard bool
	hasFunc  bool
}

type TransitionOption func(*Transition)

func WithTransitionID(id string) TransitionOption {
	return func(t *Transition) {
		t.id = id
	}
}

func WithTransitionIcon(icon string) TransitionOption {
	return func(t *Transition) {
		t.icon = icon
	}
}

// WithTransitionAnnotation sets text shown next to the transition in diagrams.
func WithTransitionAnnotation(text string) TransitionOption {
	return func(t *Transition) {
		t.annotation = text
	}
}

func WithGuard(g Guard) TransitionOption {
	return func(t *Transition) {
		t.guard = g
		t.hasGuard = true
	}
}

// WithFunc sets the transition function. Several functions are chained, each
// contributing its own output groups.
func WithFunc(fns ...Func) TransitionOption {
	return func(t *Transition) {
		if len(fns) > 0 {
			t.fn = Chain(fns...)
			t.hasFunc = true
		}
	}
}

// NewTransition creates a transition. By default it is always guarded true
// and produces a single Abstract token.
func NewTransition(name string, opts ...TransitionOption) *Transition {
	t := &Transition{
		name:  name,
		icon:  TransitionIcon,
		guard: Always(true),
		fn:    Abstract.Produce(1, nil),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.id == "" {
		t.id = ID()
	}
	if t.name == "" {
		t.name = t.id
	}
	return t
}

func (t *Transition) ID() string { return t.id }

func (t *Transition) Name() string { return t.name }

func (t *Transition) Icon() string { return t.icon }

func (t *Transition) Annotation() string { return t.annotation }

func (t *Transition) Guard() Guard { return t.guard }

func (t *Transition) Func() Func { return t.fn }

// HasGuard reports whether the transition was given a guard.
func (t *Transition) HasGuard() bool { return t.hasGuard }

// HasFunc reports whether the transition was given a function.
func (t *Transition) HasFunc() bool { return t.hasFunc }

func (t *Transition) Kind() NodeKind { return TransitionNode }

func (t *Transition) String() string {
	if t.icon != "" {
		return t.icon + " " + t.name
	}
	if t.name != t.id {
		return t.name
	}
	return "<Transition id=" + t.id + ">"
}

// In starts an arc into this transition from a place supplied later with From.
func (t *Transition) In(weight ColorSet) *ArcPT {
	return &ArcPT{dest: t, weight: defaultWeight(weight)}
}

// Out starts an arc from this transition to a place supplied later with To.
func (t *Transition) Out(weight ColorSet) *ArcTP {
	return &ArcTP{src: t, weight: defaultWeight(weight)}
}
