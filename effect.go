package cpn

import "fmt"

type EffectKind int

const (
	ConsumeEffect EffectKind = iota
	InputEffect
	OutputEffect
	ProduceEffect
)

func (k EffectKind) String() string {
	switch k {
	case ConsumeEffect:
		return "consume"
	case InputEffect:
		return "input"
	case OutputEffect:
		return "output"
	case ProduceEffect:
		return "produce"
	}
	return "unknown"
}

// Effect records one token crossing an arc during an occurrence.
type Effect interface {
	Kind() EffectKind
	// Target returns the arc and token the effect concerns.
	Target() (Arc, *Token)
	// Apply returns the marking after the effect.
	Apply(m Marking) Marking
	String() string
}

var (
	_ Effect = Consume{}
	_ Effect = Input{}
	_ Effect = Output{}
	_ Effect = Produce{}
)

// Consume removes a token from the arc's source place.
type Consume struct {
	Arc   *ArcPT
	Token *Token
}

func (e Consume) Kind() EffectKind { return ConsumeEffect }

func (e Consume) Target() (Arc, *Token) { return e.Arc, e.Token }

func (e Consume) Apply(m Marking) Marking {
	return m.Remove(e.Arc.src, e.Token)
}

func (e Consume) String() string { return effectString(e) }

// Input passes a token, possibly transformed by the arc, into the
// transition. It does not change the marking.
type Input struct {
	Arc   *ArcPT
	Token *Token
}

func (e Input) Kind() EffectKind { return InputEffect }

func (e Input) Target() (Arc, *Token) { return e.Arc, e.Token }

func (e Input) Apply(m Marking) Marking { return m }

func (e Input) String() string { return effectString(e) }

// Output is a token returned by the transition function. It does not change
// the marking.
type Output struct {
	Arc   *ArcTP
	Token *Token
}

func (e Output) Kind() EffectKind { return OutputEffect }

func (e Output) Target() (Arc, *Token) { return e.Arc, e.Token }

func (e Output) Apply(m Marking) Marking { return m }

func (e Output) String() string { return effectString(e) }

// Produce adds a token to the arc's destination place.
type Produce struct {
	Arc   *ArcTP
	Token *Token
}

func (e Produce) Kind() EffectKind { return ProduceEffect }

func (e Produce) Target() (Arc, *Token) { return e.Arc, e.Token }

func (e Produce) Apply(m Marking) Marking {
	return m.Add(e.Arc.dest, e.Token)
}

func (e Produce) String() string { return effectString(e) }

func effectString(e Effect) string {
	a, t := e.Target()
	return fmt.Sprintf("%s %s via %s", e.Kind(), t, a)
}

// ApplyEffects folds effects over m in order.
func ApplyEffects(m Marking, effects []Effect) Marking {
	for _, e := range effects {
		m = e.Apply(m)
	}
	return m
}
