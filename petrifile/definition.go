package petrifile

import (
	"fmt"
	"sort"

	"github.com/jt05610/cpn"
)

var (
	_ cpn.HasExampleMarkings = (*Definition)(nil)
	_ cpn.HasClusters        = (*Definition)(nil)
)

// Definition is a net declared in a petrifile. Nodes and colors are keyed by
// the names used in the file. A Definition is the structure of the net it
// builds, so the net carries its example markings and clusters.
type Definition struct {
	Name     string
	Includes []string
	// Colors maps color keys to colors. Abstract is always present.
	Colors      map[string]cpn.Color
	Places      map[string]*cpn.Place
	Transitions map[string]*cpn.Transition
	Arcs        []cpn.Arc

	schemas  *Schemas
	markings map[string]cpn.Marking
	clusters map[string][]cpn.Node
	net      *cpn.Net
	// file records of transitions and arcs, keyed by the member they built
	records map[any]any
}

// AbstractKey names the Abstract color in petrifiles.
const AbstractKey = "abstract"

func NewDefinition(name string) *Definition {
	return &Definition{
		Name:        name,
		Colors:      map[string]cpn.Color{AbstractKey: cpn.Abstract},
		Places:      make(map[string]*cpn.Place),
		Transitions: make(map[string]*cpn.Transition),
		schemas:     NewSchemas(),
		markings:    make(map[string]cpn.Marking),
		clusters:    make(map[string][]cpn.Node),
		records:     make(map[any]any),
	}
}

func (d *Definition) Schemas() *Schemas { return d.schemas }

// SetRecord keeps the file record a transition or arc was built from, so the
// member can be written back with its expressions.
func (d *Definition) SetRecord(member any, rec any) { d.records[member] = rec }

func (d *Definition) Record(member any) (any, bool) {
	rec, ok := d.records[member]
	return rec, ok
}

func (d *Definition) ExampleMarkings() map[string]cpn.Marking { return d.markings }

func (d *Definition) Clusters() map[string][]cpn.Node { return d.clusters }

func (d *Definition) AddMarking(name string, m cpn.Marking) { d.markings[name] = m }

func (d *Definition) AddCluster(name string, nodes ...cpn.Node) {
	d.clusters[name] = append(d.clusters[name], nodes...)
}

// Color resolves a color by key, then by label.
func (d *Definition) Color(ref string) (cpn.Color, bool) {
	if c, ok := d.Colors[ref]; ok {
		return c, true
	}
	for _, c := range d.Colors {
		if c.String() == ref {
			return c, true
		}
	}
	return "", false
}

// ColorTable indexes colors by key and by label.
func (d *Definition) ColorTable() map[string]cpn.Color {
	table := make(map[string]cpn.Color, 2*len(d.Colors))
	for k, c := range d.Colors {
		table[c.String()] = c
		table[k] = c
	}
	return table
}

// Weight resolves the color keys of a weight.
func (d *Definition) Weight(w map[string]int) (cpn.ColorSet, error) {
	if len(w) == 0 {
		return nil, nil
	}
	cs := make(cpn.ColorSet, len(w))
	for k, q := range w {
		c, ok := d.Color(k)
		if !ok {
			return nil, fmt.Errorf("%w: color %q", ErrUnknownReference, k)
		}
		cs[c] += q
	}
	return cs, cs.Validate()
}

// Node resolves a place or transition key.
func (d *Definition) Node(ref string) (cpn.Node, bool) {
	if p, ok := d.Places[ref]; ok {
		return p, true
	}
	if t, ok := d.Transitions[ref]; ok {
		return t, true
	}
	return nil, false
}

// Build returns the net declared by the definition.
func (d *Definition) Build() (*cpn.Net, error) {
	if d.net != nil {
		return d.net, nil
	}
	net, err := cpn.NewFromStructure(d)
	if err != nil {
		return nil, err
	}
	d.net = net
	return net, nil
}

// DecodeMarking rebuilds a marking of the definition's net, validating token
// data against the color schemas. Places are referenced by key.
func (d *Definition) DecodeMarking(doc cpn.Document) (cpn.Marking, error) {
	net, err := d.Build()
	if err != nil {
		return cpn.Marking{}, err
	}
	m, err := cpn.DecodeMarking(net, d.ColorTable(), doc)
	if err != nil {
		return cpn.Marking{}, err
	}
	if err := d.ValidateMarking(m); err != nil {
		return cpn.Marking{}, err
	}
	return m, nil
}

// ValidateMarking checks every token of m against its color schema.
func (d *Definition) ValidateMarking(m cpn.Marking) error {
	for _, p := range m.Places() {
		for _, t := range m.Get(p).Tokens() {
			if err := d.schemas.ValidateToken(t); err != nil {
				return fmt.Errorf("place %s: %w", p.Name(), err)
			}
		}
	}
	return nil
}

// Merge combines definitions into a new one named after the first. Keys
// shared between definitions must refer to the same node. Includes are taken
// to be resolved by the merge, so the result has none.
func Merge(defs ...*Definition) (*Definition, error) {
	if len(defs) == 0 {
		return NewDefinition(""), nil
	}
	ret := NewDefinition(defs[0].Name)
	for _, d := range defs {
		for k, c := range d.Colors {
			ret.Colors[k] = c
		}
		for k, p := range d.Places {
			if prev, ok := ret.Places[k]; ok && prev.ID() != p.ID() {
				return nil, fmt.Errorf("%w: place %q", ErrDuplicateNodeName, k)
			}
			ret.Places[k] = p
		}
		for k, t := range d.Transitions {
			if prev, ok := ret.Transitions[k]; ok && prev.ID() != t.ID() {
				return nil, fmt.Errorf("%w: transition %q", ErrDuplicateNodeName, k)
			}
			ret.Transitions[k] = t
		}
		ret.Arcs = append(ret.Arcs, d.Arcs...)
		ret.schemas.merge(d.schemas)
		for member, rec := range d.records {
			ret.records[member] = rec
		}
		for k, m := range d.markings {
			if _, ok := ret.markings[k]; !ok {
				ret.markings[k] = m
			}
		}
		for k, nodes := range d.clusters {
			ret.clusters[k] = append(ret.clusters[k], nodes...)
		}
	}
	return ret, nil
}

// Keys returns the place and transition keys in sorted order.
func (d *Definition) Keys() []string {
	keys := make([]string, 0, len(d.Places)+len(d.Transitions))
	for k := range d.Places {
		keys = append(keys, k)
	}
	for k := range d.Transitions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
