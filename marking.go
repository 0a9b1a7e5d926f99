package cpn

import (
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"
)

type placeTokens struct {
	place  *Place
	tokens TokenSet
}

// Marking maps places to the tokens they hold. A place that is absent holds
// no tokens; empty entries are never stored. The zero value is the empty
// marking, and every change returns a new Marking.
type Marking struct {
	m *immutable.Map[string, placeTokens]
}

// NewMarking normalizes a place to tokens mapping into a Marking.
func NewMarking(tokens map[*Place][]*Token) Marking {
	var m Marking
	for p, tt := range tokens {
		m = m.Set(p, NewTokenSet(tt...))
	}
	return m
}

// Get returns the tokens at p, empty when p holds none.
func (m Marking) Get(p *Place) TokenSet {
	if m.m == nil || p == nil {
		return TokenSet{}
	}
	pt, ok := m.m.Get(p.id)
	if !ok {
		return TokenSet{}
	}
	return pt.tokens
}

// Set replaces the tokens at p.
func (m Marking) Set(p *Place, tokens TokenSet) Marking {
	if tokens.Empty() {
		if m.m == nil {
			return m
		}
		return Marking{m: m.m.Delete(p.id)}
	}
	inner := m.m
	if inner == nil {
		inner = immutable.NewMap[string, placeTokens](nil)
	}
	return Marking{m: inner.Set(p.id, placeTokens{place: p, tokens: tokens})}
}

func (m Marking) Add(p *Place, tokens ...*Token) Marking {
	return m.Set(p, m.Get(p).Add(tokens...))
}

func (m Marking) Remove(p *Place, t *Token) Marking {
	return m.Set(p, m.Get(p).Remove(t))
}

// Places returns the places holding at least one token, ordered by name.
func (m Marking) Places() []*Place {
	places := make([]*Place, 0, m.Len())
	if m.m == nil {
		return places
	}
	itr := m.m.Iterator()
	for !itr.Done() {
		_, pt, _ := itr.Next()
		places = append(places, pt.place)
	}
	sort.Slice(places, func(i, j int) bool { return nodeLess(places[i], places[j]) })
	return places
}

// Len is the number of places holding tokens.
func (m Marking) Len() int {
	if m.m == nil {
		return 0
	}
	return m.m.Len()
}

// Count is the number of tokens across all places.
func (m Marking) Count() int {
	n := 0
	for _, p := range m.Places() {
		n += m.Get(p).Len()
	}
	return n
}

func (m Marking) Equal(other Marking) bool {
	if m.Len() != other.Len() {
		return false
	}
	for _, p := range m.Places() {
		if !m.Get(p).Equal(other.Get(p)) {
			return false
		}
	}
	return true
}

func (m Marking) String() string {
	places := m.Places()
	parts := make([]string, len(places))
	for i, p := range places {
		parts[i] = p.String() + ": " + m.Get(p).String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// PlaceColorSets counts the tokens of each color per place.
type PlaceColorSets map[*Place]ColorSet

// MarkingColorSet collapses a marking into color counts per place. Places
// without tokens are omitted.
func MarkingColorSet(m Marking) PlaceColorSets {
	ret := make(PlaceColorSets, m.Len())
	for _, p := range m.Places() {
		ret[p] = m.Get(p).ColorSet()
	}
	return ret
}

// Equal compares color counts by place id.
func (pc PlaceColorSets) Equal(other PlaceColorSets) bool {
	return pc.String() == other.String()
}

func (pc PlaceColorSets) String() string {
	places := make([]*Place, 0, len(pc))
	for p, cs := range pc {
		if cs.Total() > 0 {
			places = append(places, p)
		}
	}
	sort.Slice(places, func(i, j int) bool { return nodeLess(places[i], places[j]) })
	parts := make([]string, len(places))
	for i, p := range places {
		parts[i] = p.id + "=" + pc[p].Key()
	}
	return strings.Join(parts, ", ")
}
