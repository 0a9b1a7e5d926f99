package cpn

import (
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"
	lru "github.com/hashicorp/golang-lru/v2"
)

const cacheSize = 256

type arcIndex = immutable.Map[string, *immutable.Map[string, Arc]]

// Net is a colored Petri net. Nets are values: Update returns a new net and
// leaves the receiver unchanged.
type Net struct {
	places      *immutable.Map[string, *Place]
	transitions *immutable.Map[string, *Transition]
	arcs        *immutable.Map[string, Arc]
	// inputs and outputs map a node key to the arcs into and out of the node.
	inputs    *arcIndex
	outputs   *arcIndex
	structure any
	cache     *lru.Cache[string, any]
}

func empty() *Net {
	return &Net{
		places:      immutable.NewMap[string, *Place](nil),
		transitions: immutable.NewMap[string, *Transition](nil),
		arcs:        immutable.NewMap[string, Arc](nil),
		inputs:      immutable.NewMap[string, *immutable.Map[string, Arc]](nil),
		outputs:     immutable.NewMap[string, *immutable.Map[string, Arc]](nil),
		cache:       newCache(),
	}
}

func newCache() *lru.Cache[string, any] {
	c, err := lru.New[string, any](cacheSize)
	if err != nil {
		panic(err)
	}
	return c
}

// New returns a net holding members. See Update for the accepted members.
func New(members ...any) (*Net, error) {
	return empty().Update(members...)
}

// NewFromStructure returns a net holding every member declared by structure,
// plus members. The structure is kept as metadata: see ExampleMarkings and
// Clusters.
func NewFromStructure(structure any, members ...any) (*Net, error) {
	n := empty()
	n.structure = structure
	n, err := n.Update(structure)
	if err != nil {
		return nil, err
	}
	return n.Update(members...)
}

func (n *Net) clone() *Net {
	cp := *n
	cp.cache = newCache()
	return &cp
}

// Update returns a new net with members added. A member is nil (ignored), a
// place, a transition, a completed arc (its ends are added too), another net
// (merged), a slice, array or map of members, or a struct whose exported
// fields hold members. Fields of a struct that are not members are skipped.
// Incomplete arcs return ErrArcIncomplete.
func (n *Net) Update(members ...any) (*Net, error) {
	ret := n.clone()
	w := &walker{net: ret, seen: make(map[uintptr]bool)}
	for _, m := range members {
		if err := w.add(m, true); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func (n *Net) addPlace(p *Place) {
	if _, ok := n.places.Get(p.id); !ok {
		n.places = n.places.Set(p.id, p)
	}
}

func (n *Net) addTransition(t *Transition) {
	if _, ok := n.transitions.Get(t.id); !ok {
		n.transitions = n.transitions.Set(t.id, t)
	}
}

func (n *Net) addNode(node Node) {
	switch v := node.(type) {
	case *Place:
		n.addPlace(v)
	case *Transition:
		n.addTransition(v)
	}
}

func (n *Net) addArc(a Arc) {
	key := a.Key()
	if _, ok := n.arcs.Get(key); ok {
		return
	}
	n.addNode(a.Src())
	n.addNode(a.Dest())
	n.arcs = n.arcs.Set(key, a)
	n.inputs = indexArc(n.inputs, nodeKey(a.Dest()), a)
	n.outputs = indexArc(n.outputs, nodeKey(a.Src()), a)
}

func indexArc(idx *arcIndex, node string, a Arc) *arcIndex {
	arcs, ok := idx.Get(node)
	if !ok {
		arcs = immutable.NewMap[string, Arc](nil)
	}
	return idx.Set(node, arcs.Set(a.Key(), a))
}

func (n *Net) merge(other *Net) {
	for _, p := range other.Places() {
		n.addPlace(p)
	}
	for _, t := range other.Transitions() {
		n.addTransition(t)
	}
	for _, a := range other.Arcs() {
		n.addArc(a)
	}
}

// Structure returns the declarative structure the net was built from, if any.
func (n *Net) Structure() any { return n.structure }

// HasExampleMarkings is implemented by structures declaring named markings
// to show in a simulator.
type HasExampleMarkings interface {
	ExampleMarkings() map[string]Marking
}

// HasClusters is implemented by structures grouping nodes for diagrams.
type HasClusters interface {
	Clusters() map[string][]Node
}

func (n *Net) ExampleMarkings() map[string]Marking {
	if s, ok := n.structure.(HasExampleMarkings); ok {
		return s.ExampleMarkings()
	}
	return nil
}

func (n *Net) Clusters() map[string][]Node {
	if s, ok := n.structure.(HasClusters); ok {
		return s.Clusters()
	}
	return nil
}

// Places returns the places ordered by name.
func (n *Net) Places() []*Place {
	places := make([]*Place, 0, n.places.Len())
	itr := n.places.Iterator()
	for !itr.Done() {
		_, p, _ := itr.Next()
		places = append(places, p)
	}
	sort.Slice(places, func(i, j int) bool { return nodeLess(places[i], places[j]) })
	return places
}

// Transitions returns the transitions ordered by name.
func (n *Net) Transitions() []*Transition {
	transitions := make([]*Transition, 0, n.transitions.Len())
	itr := n.transitions.Iterator()
	for !itr.Done() {
		_, t, _ := itr.Next()
		transitions = append(transitions, t)
	}
	sort.Slice(transitions, func(i, j int) bool { return nodeLess(transitions[i], transitions[j]) })
	return transitions
}

// Arcs returns the arcs ordered by ArcLess.
func (n *Net) Arcs() []Arc {
	return arcSlice(n.arcs)
}

func arcSlice(m *immutable.Map[string, Arc]) []Arc {
	if m == nil {
		return nil
	}
	arcs := make([]Arc, 0, m.Len())
	itr := m.Iterator()
	for !itr.Done() {
		_, a, _ := itr.Next()
		arcs = append(arcs, a)
	}
	sortArcs(arcs)
	return arcs
}

// Place looks up a place by id.
func (n *Net) Place(id string) (*Place, bool) {
	return n.places.Get(id)
}

// Transition looks up a transition by id.
func (n *Net) Transition(id string) (*Transition, bool) {
	return n.transitions.Get(id)
}

// Inputs returns the arcs into node.
func (n *Net) Inputs(node Node) []Arc {
	arcs, _ := n.inputs.Get(nodeKey(node))
	return arcSlice(arcs)
}

// Outputs returns the arcs out of node.
func (n *Net) Outputs(node Node) []Arc {
	arcs, _ := n.outputs.Get(nodeKey(node))
	return arcSlice(arcs)
}

// InputArcs returns the arcs from places into t.
func (n *Net) InputArcs(t *Transition) []*ArcPT {
	arcs := n.Inputs(t)
	ret := make([]*ArcPT, 0, len(arcs))
	for _, a := range arcs {
		ret = append(ret, a.(*ArcPT))
	}
	return ret
}

// OutputArcs returns the arcs from t into places.
func (n *Net) OutputArcs(t *Transition) []*ArcTP {
	arcs := n.Outputs(t)
	ret := make([]*ArcTP, 0, len(arcs))
	for _, a := range arcs {
		ret = append(ret, a.(*ArcTP))
	}
	return ret
}

// EmptyMarking returns a marking with no tokens in any place.
func (n *Net) EmptyMarking() Marking { return Marking{} }

// TransitionIsEnabled reports whether t may occur in m. Guard errors are
// returned rather than treated as disabled.
func (n *Net) TransitionIsEnabled(m Marking, t *Transition) (bool, error) {
	return NewOccurrence(n, m, t).IsEnabled()
}

// EnabledTransitions returns the transitions that may occur in m, ordered by
// name.
func (n *Net) EnabledTransitions(m Marking) ([]*Transition, error) {
	var enabled []*Transition
	for _, t := range n.Transitions() {
		ok, err := n.TransitionIsEnabled(m, t)
		if err != nil {
			return nil, err
		}
		if ok {
			enabled = append(enabled, t)
		}
	}
	return enabled, nil
}

// Effects returns the effects of t occurring in m.
func (n *Net) Effects(m Marking, t *Transition) ([]Effect, error) {
	return NewOccurrence(n, m, t).Effects()
}

// MarkingAfterTransition fires t in m. Firing a transition that is not
// enabled returns an error wrapping ErrNotEnabled, and m is never modified.
func (n *Net) MarkingAfterTransition(m Marking, t *Transition) (Marking, error) {
	effects, err := n.Effects(m, t)
	if err != nil {
		return m, err
	}
	return ApplyEffects(m, effects), nil
}

// Subnet returns the net made of node, the arcs touching it and the nodes at
// their other ends.
func (n *Net) Subnet(node Node) *Net {
	key := "subnet:" + nodeKey(node)
	if v, ok := n.cache.Get(key); ok {
		return v.(*Net)
	}
	sub := empty()
	sub.addNode(node)
	for _, a := range n.Inputs(node) {
		sub.addArc(a)
	}
	for _, a := range n.Outputs(node) {
		sub.addArc(a)
	}
	n.cache.Add(key, sub)
	return sub
}

// TransitionIsExternal reports whether t only consumes or only produces.
func (n *Net) TransitionIsExternal(t *Transition) bool {
	return len(n.Inputs(t)) == 0 || len(n.Outputs(t)) == 0
}

// Colors returns every color named by an arc weight, or Abstract alone when
// the net has no arcs.
func (n *Net) Colors() []Color {
	if v, ok := n.cache.Get("colors"); ok {
		return append([]Color(nil), v.([]Color)...)
	}
	all := make(ColorSet)
	for _, a := range n.Arcs() {
		for c := range a.Weight() {
			all[c] = 1
		}
	}
	if len(all) == 0 {
		all[Abstract] = 1
	}
	colors := all.Colors()
	n.cache.Add("colors", colors)
	return append([]Color(nil), colors...)
}

// Contains reports whether member, or every member of a slice, is part of
// the net. Nodes match by id and arcs by key.
func (n *Net) Contains(member any) bool {
	switch v := member.(type) {
	case nil:
		return false
	case *Place:
		if v == nil {
			return false
		}
		_, ok := n.places.Get(v.id)
		return ok
	case *Transition:
		if v == nil {
			return false
		}
		_, ok := n.transitions.Get(v.id)
		return ok
	case Arc:
		if !v.Completed() {
			return false
		}
		_, ok := n.arcs.Get(v.Key())
		return ok
	}
	items, ok := elements(member)
	if !ok {
		return false
	}
	for _, item := range items {
		if !n.Contains(item) {
			return false
		}
	}
	return true
}

// Equal compares places, transitions and both arc indexes. The structure is
// not compared.
func (n *Net) Equal(other *Net) bool {
	if other == nil {
		return false
	}
	return n.signature() == other.signature()
}

func (n *Net) signature() string {
	var b strings.Builder
	for _, p := range n.Places() {
		b.WriteString("p:" + p.id + "\n")
	}
	for _, t := range n.Transitions() {
		b.WriteString("t:" + t.id + "\n")
	}
	writeIndex(&b, "in", n.inputs)
	writeIndex(&b, "out", n.outputs)
	return b.String()
}

func writeIndex(b *strings.Builder, prefix string, idx *arcIndex) {
	var lines []string
	itr := idx.Iterator()
	for !itr.Done() {
		node, arcs, _ := itr.Next()
		ai := arcs.Iterator()
		for !ai.Done() {
			key, _, _ := ai.Next()
			lines = append(lines, prefix+":"+node+":"+key)
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		b.WriteString(l + "\n")
	}
}

func (n *Net) String() string {
	var parts []string
	for _, p := range n.Places() {
		parts = append(parts, p.String())
	}
	for _, t := range n.Transitions() {
		parts = append(parts, t.String())
	}
	for _, a := range n.Arcs() {
		parts = append(parts, a.String())
	}
	return "Net{" + strings.Join(parts, ", ") + "}"
}
