package cpn_test

import (
	"errors"
	"github.com/jt05610/cpn"
	"testing"
)

func TestNet_Update(t *testing.T) {
	p0, p1 := cpn.NewPlace("p0"), cpn.NewPlace("p1")
	t0 := cpn.NewTransition("t0")
	a0 := cpn.MustArc(p0, t0, nil)

	base, err := cpn.New(p0)
	if err != nil {
		t.Fatal(err)
	}
	next, err := base.Update(a0, []any{nil, p1}, cpn.MustArc(t0, p1, nil))
	if err != nil {
		t.Fatal(err)
	}
	if len(base.Places()) != 1 || len(base.Transitions()) != 0 || len(base.Arcs()) != 0 {
		t.Error("update modified the original net")
	}
	if len(next.Places()) != 2 || len(next.Transitions()) != 1 || len(next.Arcs()) != 2 {
		t.Errorf("got %s", next)
	}
	if !next.Contains(t0) || !next.Contains(a0) || !next.Contains([]cpn.Node{p0, p1}) {
		t.Error("expected members to be contained")
	}
	if next.Contains(cpn.NewPlace("p0")) {
		t.Error("places match by id, not name")
	}
	if len(next.Inputs(t0)) != 1 || len(next.Outputs(t0)) != 1 {
		t.Errorf("indexes: %v %v", next.Inputs(t0), next.Outputs(t0))
	}
	if len(next.Outputs(p0)) != 1 || len(next.Inputs(p1)) != 1 {
		t.Error("place indexes should hold their arcs")
	}
}

func TestNet_UpdateErrors(t *testing.T) {
	net, _ := cpn.New()
	if _, err := net.Update(cpn.NewPlace("p").Out(nil)); !errors.Is(err, cpn.ErrArcIncomplete) {
		t.Errorf("expected ErrArcIncomplete, got %v", err)
	}
	if _, err := net.Update("not a member"); !errors.Is(err, cpn.ErrUnknownMember) {
		t.Errorf("expected ErrUnknownMember, got %v", err)
	}
}

func TestNet_Equal(t *testing.T) {
	p0, p1 := cpn.NewPlace("p0"), cpn.NewPlace("p1")
	t0 := cpn.NewTransition("t0")
	arcs, _ := cpn.ArcPath(p0, t0, p1)

	a, err := cpn.New(arcs)
	if err != nil {
		t.Fatal(err)
	}
	b, err := cpn.New(p1, t0, p0, arcs[1], arcs[0])
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Error("order of updates should not matter")
	}
	c, _ := a.Update(cpn.NewPlace("p2"))
	if a.Equal(c) {
		t.Error("extra place should make nets differ")
	}
	type structure struct{ P *cpn.Place }
	d, err := cpn.NewFromStructure(&structure{P: p0}, arcs)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(d) {
		t.Error("structure is not part of equality")
	}
}

func TestNet_Subnet(t *testing.T) {
	p0, p1, p2, p3 := cpn.NewPlace("p0"), cpn.NewPlace("p1"), cpn.NewPlace("p2"), cpn.NewPlace("p3")
	t0, t1 := cpn.NewTransition("t0"), cpn.NewTransition("t1")
	net, err := cpn.New(
		cpn.MustArc(p0, t0, nil),
		cpn.MustArc(p1, t0, nil),
		cpn.MustArc(t0, p2, nil),
		cpn.MustArc(p2, t1, nil),
		cpn.MustArc(t1, p3, nil),
	)
	if err != nil {
		t.Fatal(err)
	}
	sub := net.Subnet(t0)
	want, _ := cpn.New(cpn.MustArc(p0, t0, nil), cpn.MustArc(p1, t0, nil), cpn.MustArc(t0, p2, nil))
	if !sub.Equal(want) {
		t.Errorf("got %s", sub)
	}
	if sub.Contains(t1) || sub.Contains(p3) {
		t.Error("subnet reaches beyond one hop")
	}
	if net.Subnet(t0) != sub {
		t.Error("subnet should be memoized per net")
	}
	single := net.Subnet(cpn.NewTransition("elsewhere"))
	if len(single.Transitions()) != 1 || len(single.Arcs()) != 0 {
		t.Errorf("got %s", single)
	}
}

func TestNet_TransitionIsExternal(t *testing.T) {
	in, out := cpn.NewPlace("in"), cpn.NewPlace("out")
	source, middle, sink := cpn.NewTransition("source"), cpn.NewTransition("middle"), cpn.NewTransition("sink")
	net, err := cpn.New(
		cpn.MustArc(source, in, nil),
		cpn.MustArc(in, middle, nil),
		cpn.MustArc(middle, out, nil),
		cpn.MustArc(out, sink, nil),
	)
	if err != nil {
		t.Fatal(err)
	}
	if !net.TransitionIsExternal(source) || !net.TransitionIsExternal(sink) {
		t.Error("source and sink are external")
	}
	if net.TransitionIsExternal(middle) {
		t.Error("middle is internal")
	}
}

func TestNet_Colors(t *testing.T) {
	empty, _ := cpn.New()
	if got := empty.Colors(); len(got) != 1 || got[0] != cpn.Abstract {
		t.Errorf("got %v", got)
	}
	p := cpn.NewPlace("p")
	tr := cpn.NewTransition("t")
	net, _ := cpn.New(cpn.MustArc(p, tr, cpn.Weight("red", "blue")), cpn.MustArc(tr, p, cpn.Weight("red")))
	got := net.Colors()
	if len(got) != 2 || got[0] != "blue" || got[1] != "red" {
		t.Errorf("got %v", got)
	}
	updated, _ := net.Update(cpn.MustArc(tr, p, nil))
	if len(updated.Colors()) != 3 {
		t.Errorf("update should not reuse cached colors, got %v", updated.Colors())
	}
}

func TestCompose(t *testing.T) {
	a, c, d := cpn.NewPlace("a"), cpn.NewPlace("c"), cpn.NewPlace("d")
	b := cpn.NewTransition("b")
	n1, _ := cpn.New(cpn.MustArc(a, b, nil), cpn.MustArc(b, c, nil))
	n2, _ := cpn.New(cpn.MustArc(d, b, nil), cpn.MustArc(b, c, nil))
	combined := cpn.Compose(n1, n2)
	if len(combined.Places()) != 3 || len(combined.Transitions()) != 1 || len(combined.Arcs()) != 3 {
		t.Errorf("got %s", combined)
	}
	if !cpn.Compose(n1, n1).Equal(n1) {
		t.Error("composing a net with itself should not change it")
	}
	viaUpdate, _ := n1.Update(n2)
	if !viaUpdate.Equal(combined) {
		t.Error("merging via Update should match Compose")
	}
}

type vendingPlaces struct {
	CoinSlot *cpn.Place
	Counter  *cpn.Place
}

type vendingTransitions struct {
	Insert *cpn.Transition
}

type vending struct {
	Places      vendingPlaces
	Transitions vendingTransitions
	Arcs        []cpn.Arc
	Note        string
	markings    map[string]cpn.Marking
}

func (v *vending) ExampleMarkings() map[string]cpn.Marking { return v.markings }

func (v *vending) Clusters() map[string][]cpn.Node {
	return map[string][]cpn.Node{"input": {v.Places.CoinSlot}}
}

func TestNewFromStructure(t *testing.T) {
	s := &vending{
		Places: vendingPlaces{
			CoinSlot: cpn.NewPlace("Coin slot"),
			Counter:  cpn.NewPlace("Counter"),
		},
		Transitions: vendingTransitions{Insert: cpn.NewTransition("Insert")},
		Note:        "skipped",
	}
	s.Arcs = []cpn.Arc{cpn.MustArc(s.Places.CoinSlot, s.Transitions.Insert, nil)}
	s.markings = map[string]cpn.Marking{
		"start": cpn.NewMarking(map[*cpn.Place][]*cpn.Token{s.Places.CoinSlot: {cpn.NewToken()}}),
	}

	net, err := cpn.NewFromStructure(s)
	if err != nil {
		t.Fatal(err)
	}
	if len(net.Places()) != 2 || len(net.Transitions()) != 1 || len(net.Arcs()) != 1 {
		t.Errorf("got %s", net)
	}
	if net.Structure() != any(s) {
		t.Error("structure should be kept")
	}
	if _, ok := net.ExampleMarkings()["start"]; !ok {
		t.Error("missing example marking")
	}
	if len(net.Clusters()["input"]) != 1 {
		t.Error("missing cluster")
	}
	updated, _ := net.Update(cpn.NewPlace("extra"))
	if updated.Structure() != any(s) {
		t.Error("update should keep the structure")
	}
}
