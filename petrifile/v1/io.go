package petrifile

import (
	"fmt"
	"sort"

	"github.com/jt05610/cpn"
	"github.com/jt05610/cpn/caser"
	"github.com/jt05610/cpn/petrifile"
)

type Color struct {
	// Label defaults to the color's key.
	Label  string         `yaml:"label,omitempty"`
	Schema map[string]any `yaml:"schema,omitempty"`
}

type Place struct {
	Name string  `yaml:"name,omitempty"`
	Icon *string `yaml:"icon,omitempty"`
}

type Transition struct {
	Name       string  `yaml:"name,omitempty"`
	Icon       *string `yaml:"icon,omitempty"`
	Annotation string  `yaml:"annotation,omitempty"`
	// Guard is an expression over inputs.
	Guard string `yaml:"guard,omitempty"`
	// Produce lists output groups of new tokens, one color set per group.
	Produce []map[string]int `yaml:"produce,omitempty"`
	// Passthrough lists color sets of input tokens, each passed on as its own
	// output group. An empty list passes all inputs as one group.
	Passthrough []map[string]int `yaml:"passthrough,omitempty"`
}

type Arc struct {
	From       string         `yaml:"from"`
	To         string         `yaml:"to"`
	Weight     map[string]int `yaml:"weight,omitempty"`
	Annotation string         `yaml:"annotation,omitempty"`
	// Transform is an expression returning a token's new data.
	Transform string `yaml:"transform,omitempty"`
	// Guard is an expression over tokens and weight.
	Guard     string `yaml:"guard,omitempty"`
	Inhibitor bool   `yaml:"inhibitor,omitempty"`
}

type Petrifile struct {
	Petri       petrifile.Version       `yaml:"petri"`
	Name        string                  `yaml:"name"`
	Include     []string                `yaml:"include,omitempty"`
	Colors      map[string]Color        `yaml:"colors,omitempty"`
	Places      map[string]Place        `yaml:"places,omitempty"`
	Transitions map[string]Transition   `yaml:"transitions,omitempty"`
	Arcs        []Arc                   `yaml:"arcs,omitempty"`
	Markings    map[string]cpn.Document `yaml:"markings,omitempty"`
	Clusters    map[string][]string     `yaml:"clusters,omitempty"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *Petrifile) makeColors(d *petrifile.Definition) error {
	for _, k := range sortedKeys(p.Colors) {
		v := p.Colors[k]
		label := v.Label
		if label == "" {
			label = k
		}
		c := cpn.Color(label)
		d.Colors[k] = c
		if v.Schema != nil {
			if err := d.Schemas().Add(c, v.Schema); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Petrifile) makePlaces(d *petrifile.Definition) {
	for _, k := range sortedKeys(p.Places) {
		v := p.Places[k]
		name := v.Name
		if name == "" {
			name = caser.Sentence(k)
		}
		opts := []cpn.PlaceOption{cpn.WithPlaceID(k)}
		if v.Icon != nil {
			opts = append(opts, cpn.WithPlaceIcon(*v.Icon))
		}
		d.Places[k] = cpn.NewPlace(name, opts...)
	}
}

func (p *Petrifile) colorSets(d *petrifile.Definition, sets []map[string]int) ([]cpn.ColorSet, error) {
	ret := make([]cpn.ColorSet, 0, len(sets))
	for _, s := range sets {
		cs, err := d.Weight(s)
		if err != nil {
			return nil, err
		}
		if cs != nil {
			ret = append(ret, cs)
		}
	}
	return ret, nil
}

// produce returns a function yielding one group of new tokens matching cs.
func produce(cs cpn.ColorSet) cpn.Func {
	return func(cpn.TokenSet) ([]cpn.TokenSet, error) {
		var group cpn.TokenSet
		for _, c := range cs.Colors() {
			for i := 0; i < cs[c]; i++ {
				group = group.Add(c.Token(nil))
			}
		}
		return []cpn.TokenSet{group}, nil
	}
}

func (p *Petrifile) makeTransitions(d *petrifile.Definition) error {
	for _, k := range sortedKeys(p.Transitions) {
		v := p.Transitions[k]
		name := v.Name
		if name == "" {
			name = caser.Sentence(k)
		}
		opts := []cpn.TransitionOption{
			cpn.WithTransitionID(k),
			cpn.WithTransitionAnnotation(v.Annotation),
		}
		if v.Icon != nil {
			opts = append(opts, cpn.WithTransitionIcon(*v.Icon))
		}
		if v.Guard != "" {
			g, err := petrifile.CompileGuard(v.Guard)
			if err != nil {
				return fmt.Errorf("transition %s guard: %w", k, err)
			}
			opts = append(opts, cpn.WithGuard(g))
		}
		var fns []cpn.Func
		if v.Passthrough != nil {
			sets, err := p.colorSets(d, v.Passthrough)
			if err != nil {
				return fmt.Errorf("transition %s: %w", k, err)
			}
			if len(sets) == 0 {
				fns = append(fns, cpn.Passthrough())
			}
			for _, cs := range sets {
				fns = append(fns, cpn.Passthrough(cs))
			}
		}
		sets, err := p.colorSets(d, v.Produce)
		if err != nil {
			return fmt.Errorf("transition %s: %w", k, err)
		}
		for _, cs := range sets {
			fns = append(fns, produce(cs))
		}
		opts = append(opts, cpn.WithFunc(fns...))
		t := cpn.NewTransition(name, opts...)
		d.Transitions[k] = t
		d.SetRecord(t, v)
	}
	return nil
}

func (p *Petrifile) makeArc(d *petrifile.Definition, a Arc) (cpn.Arc, error) {
	src, ok := d.Node(a.From)
	if !ok {
		return nil, fmt.Errorf("%w: node %q", petrifile.ErrUnknownReference, a.From)
	}
	dest, ok := d.Node(a.To)
	if !ok {
		return nil, fmt.Errorf("%w: node %q", petrifile.ErrUnknownReference, a.To)
	}
	weight, err := d.Weight(a.Weight)
	if err != nil {
		return nil, err
	}
	if a.Inhibitor {
		pl, ok := src.(*cpn.Place)
		tr, ok2 := dest.(*cpn.Transition)
		if !ok || !ok2 {
			return nil, fmt.Errorf("%w: inhibitor %s to %s must go from a place to a transition", cpn.ErrInvalidArc, a.From, a.To)
		}
		return cpn.InhibitorArc(pl, tr, weight)
	}
	var opts []cpn.ArcOption
	if a.Annotation != "" {
		opts = append(opts, cpn.WithAnnotation(a.Annotation))
	}
	if a.Transform != "" {
		fn, err := petrifile.CompileTransform(a.Transform)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cpn.WithTransformEach(fn))
	}
	if a.Guard != "" {
		g, err := petrifile.CompileArcGuard(a.Guard)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cpn.WithArcGuard(g))
	}
	return cpn.NewArc(src, dest, weight, opts...)
}

func (p *Petrifile) makeArcs(d *petrifile.Definition) error {
	for i, a := range p.Arcs {
		arc, err := p.makeArc(d, a)
		if err != nil {
			return fmt.Errorf("arc %d (%s to %s): %w", i, a.From, a.To, err)
		}
		d.Arcs = append(d.Arcs, arc)
		d.SetRecord(arc, a)
	}
	return nil
}

func (p *Petrifile) makeClusters(d *petrifile.Definition) error {
	for _, name := range sortedKeys(p.Clusters) {
		for _, ref := range p.Clusters[name] {
			n, ok := d.Node(ref)
			if !ok {
				return fmt.Errorf("cluster %s: %w: node %q", name, petrifile.ErrUnknownReference, ref)
			}
			d.AddCluster(name, n)
		}
	}
	return nil
}

func (p *Petrifile) makeMarkings(d *petrifile.Definition) error {
	for _, name := range sortedKeys(p.Markings) {
		m, err := d.DecodeMarking(p.Markings[name])
		if err != nil {
			return fmt.Errorf("marking %s: %w", name, err)
		}
		d.AddMarking(name, m)
	}
	return nil
}

// Definition builds the definition declared by the file. Nodes are created
// with their keys as ids, so every definition built from the same file shares
// node identities.
func (p *Petrifile) Definition() (*petrifile.Definition, error) {
	d := petrifile.NewDefinition(p.Name)
	d.Includes = append(d.Includes, p.Include...)
	if err := p.makeColors(d); err != nil {
		return nil, err
	}
	p.makePlaces(d)
	if err := p.makeTransitions(d); err != nil {
		return nil, err
	}
	if err := p.makeArcs(d); err != nil {
		return nil, err
	}
	if err := p.makeClusters(d); err != nil {
		return nil, err
	}
	if err := p.makeMarkings(d); err != nil {
		return nil, err
	}
	return d, nil
}

func transitionRecord(d *petrifile.Definition, key string, t *cpn.Transition) (Transition, error) {
	icon := t.Icon()
	if rec, ok := d.Record(t); ok {
		tr := rec.(Transition)
		tr.Name = t.Name()
		tr.Icon = &icon
		tr.Annotation = t.Annotation()
		return tr, nil
	}
	if t.HasGuard() || t.HasFunc() {
		return Transition{}, fmt.Errorf("%w: transition %s has a guard or function set in code", petrifile.ErrNotExpressible, key)
	}
	return Transition{Name: t.Name(), Icon: &icon, Annotation: t.Annotation()}, nil
}

func arcRecord(d *petrifile.Definition, keys map[string]string, colorKey func(cpn.Color) string, a cpn.Arc) (Arc, error) {
	w := make(map[string]int)
	for c, q := range a.Weight() {
		w[colorKey(c)] = q
	}
	arc := Arc{
		From:       keys[a.Src().ID()],
		To:         keys[a.Dest().ID()],
		Weight:     w,
		Annotation: a.Annotation(),
	}
	if rec, ok := d.Record(a); ok {
		file := rec.(Arc)
		arc.Transform = file.Transform
		arc.Guard = file.Guard
		arc.Inhibitor = file.Inhibitor
		if arc.Inhibitor {
			arc.Annotation = file.Annotation
		}
		return arc, nil
	}
	if a.Transform() != nil {
		return Arc{}, fmt.Errorf("%w: arc %s has a transform set in code", petrifile.ErrNotExpressible, a)
	}
	if pt, ok := a.(*cpn.ArcPT); ok {
		switch {
		case pt.Inhibitor():
			arc.Annotation = ""
			arc.Inhibitor = true
		case pt.HasGuard():
			return Arc{}, fmt.Errorf("%w: arc %s has a guard set in code", petrifile.ErrNotExpressible, a)
		}
	}
	return arc, nil
}

// FromDefinition describes d as a file. Transitions and arcs loaded from a
// file keep their expressions. Guards, functions and transforms set in code
// cannot be described and give ErrNotExpressible.
func FromDefinition(d *petrifile.Definition) (*Petrifile, error) {
	p := &Petrifile{
		Petri:       petrifile.V1,
		Name:        d.Name,
		Include:     d.Includes,
		Colors:      make(map[string]Color),
		Places:      make(map[string]Place),
		Transitions: make(map[string]Transition),
		Markings:    make(map[string]cpn.Document),
		Clusters:    make(map[string][]string),
	}
	keys := make(map[string]string)
	for k, c := range d.Colors {
		if c == cpn.Abstract {
			continue
		}
		color := Color{Label: c.String()}
		if doc, ok := d.Schemas().Document(c); ok {
			if schema, ok := doc.(map[string]any); ok {
				color.Schema = schema
			}
		}
		p.Colors[k] = color
	}
	colorKey := func(c cpn.Color) string {
		if c == cpn.Abstract {
			return petrifile.AbstractKey
		}
		for k, v := range d.Colors {
			if v == c {
				return k
			}
		}
		return c.String()
	}
	for k, pl := range d.Places {
		keys[pl.ID()] = k
		icon := pl.Icon()
		p.Places[k] = Place{Name: pl.Name(), Icon: &icon}
	}
	for _, k := range sortedKeys(d.Transitions) {
		t := d.Transitions[k]
		keys[t.ID()] = k
		rec, err := transitionRecord(d, k, t)
		if err != nil {
			return nil, err
		}
		p.Transitions[k] = rec
	}
	for _, a := range d.Arcs {
		rec, err := arcRecord(d, keys, colorKey, a)
		if err != nil {
			return nil, err
		}
		p.Arcs = append(p.Arcs, rec)
	}
	for name, m := range d.ExampleMarkings() {
		doc := make(cpn.Document)
		for id, records := range cpn.EncodeMarking(m) {
			for i := range records {
				records[i].Color = colorKey(cpn.Color(records[i].Color))
			}
			doc[keys[id]] = records
		}
		p.Markings[name] = doc
	}
	for name, nodes := range d.Clusters() {
		for _, n := range nodes {
			p.Clusters[name] = append(p.Clusters[name], keys[n.ID()])
		}
	}
	return p, nil
}
