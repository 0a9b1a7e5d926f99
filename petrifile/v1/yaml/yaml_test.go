package yaml_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jt05610/cpn"
	"github.com/jt05610/cpn/petrifile"
	"github.com/jt05610/cpn/petrifile/v1/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, path string) *petrifile.Definition {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()
	s := &yaml.Service{}
	d, err := s.Load(context.Background(), f)
	require.NoError(t, err)
	return d
}

func TestService_Load(t *testing.T) {
	d := load(t, "testdata/vending.yaml")
	assert.Equal(t, "vending machine", d.Name)
	assert.Equal(t, []string{"refill.yaml"}, d.Includes)
	assert.Len(t, d.Places, 6)
	assert.Len(t, d.Transitions, 1)
	assert.Len(t, d.Arcs, 7)

	slot := d.Places["coin_slot"]
	require.NotNil(t, slot)
	assert.Equal(t, "Coin slot", slot.Name())
	assert.Equal(t, "coin_slot", slot.ID())
	assert.Equal(t, "🪙", slot.Icon())
	assert.Equal(t, "Insert coin", d.Transitions["insert_coin"].Name())
	assert.Equal(t, cpn.Color("🪙"), d.Colors["coin"])

	net, err := d.Build()
	require.NoError(t, err)
	assert.Len(t, net.Places(), 6)
	assert.Len(t, net.ExampleMarkings(), 1)
	assert.Len(t, net.Clusters()["customer"], 2)
	assert.ElementsMatch(t, []cpn.Color{cpn.Abstract, "🪙", "cookie", "counter"}, net.Colors())
}

func TestService_Fire(t *testing.T) {
	d := load(t, "testdata/vending.yaml")
	net, err := d.Build()
	require.NoError(t, err)
	m := net.ExampleMarkings()["start"]
	insert := d.Transitions["insert_coin"]

	enabled, err := net.EnabledTransitions(m)
	require.NoError(t, err)
	require.Equal(t, []*cpn.Transition{insert}, enabled)

	next, err := net.MarkingAfterTransition(m, insert)
	require.NoError(t, err)
	assert.Equal(t, 1, next.Get(d.Places["cash_box"]).Len())
	assert.Equal(t, 1, next.Get(d.Places["compartment"]).Len())
	assert.True(t, next.Get(d.Places["coin_slot"]).Empty())

	counter, err := cpn.One(nil)(next.Get(d.Places["counter"]))
	require.NoError(t, err)
	x, _ := counter.Value("x")
	assert.EqualValues(t, 0, x)
	assert.Equal(t, "count", counter.ID())

	// a new coin is not enough once the counter reaches zero
	refilled := next.Add(d.Places["coin_slot"], cpn.Color("🪙").Token(nil)).
		Add(d.Places["storage"], cpn.Color("cookie").Token(map[string]any{"flavor": "oat"}))
	ok, err := net.TransitionIsEnabled(refilled, insert)
	require.NoError(t, err)
	assert.False(t, ok)

	blocked := m.Add(d.Places["out_of_order"], cpn.NewToken())
	ok, err = net.TransitionIsEnabled(blocked, insert)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_SchemaValidation(t *testing.T) {
	f, err := os.Open("testdata/bad_schema.yaml")
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()
	_, err = (&yaml.Service{}).Load(context.Background(), f)
	assert.ErrorIs(t, err, petrifile.ErrInvalidTokenData)
}

func TestService_DecodeMarking(t *testing.T) {
	d := load(t, "testdata/vending.yaml")
	_, err := d.DecodeMarking(cpn.Document{
		"counter": {{Color: "counter", Data: map[string]any{"x": -1}}},
	})
	assert.ErrorIs(t, err, petrifile.ErrInvalidTokenData)

	m, err := d.DecodeMarking(cpn.Document{
		"coin_slot": {{Color: "🪙"}, {Color: "coin"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Get(d.Places["coin_slot"]).Len())
}

func TestService_FileVersion(t *testing.T) {
	s := &yaml.Service{}
	v, err := s.FileVersion("testdata/vending.yaml")
	require.NoError(t, err)
	assert.Equal(t, petrifile.V1, v)

	_, err = s.FileVersion("testdata/missing.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestService_Save(t *testing.T) {
	s := &yaml.Service{}
	d := load(t, "testdata/vending.yaml")
	var buf bytes.Buffer
	require.NoError(t, s.Save(context.Background(), &buf, d))

	again, err := s.Load(context.Background(), &buf)
	require.NoError(t, err)
	a, err := d.Build()
	require.NoError(t, err)
	b, err := again.Build()
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestService_SaveBuilt(t *testing.T) {
	s := &yaml.Service{}
	d := petrifile.NewDefinition("built")
	red := cpn.Color("red")
	d.Colors["red"] = red
	p := cpn.NewPlace("P", cpn.WithPlaceID("p"))
	tr := cpn.NewTransition("T", cpn.WithTransitionID("t"))
	d.Places["p"] = p
	d.Transitions["t"] = tr
	d.Arcs = append(d.Arcs, cpn.MustArc(p, tr, cpn.Weight(red)))
	d.AddMarking("one", cpn.NewMarking(map[*cpn.Place][]*cpn.Token{p: {red.Token(nil)}}))

	var buf bytes.Buffer
	require.NoError(t, s.Save(context.Background(), &buf, d))
	again, err := s.Load(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, "P", again.Places["p"].Name())
	require.Len(t, again.Arcs, 1)
	assert.True(t, again.Arcs[0].Weight().Equal(cpn.Weight(red)))
	assert.Equal(t, 1, again.ExampleMarkings()["one"].Count())
}

const annotated = `petri: v1
name: annotated
colors:
  red: {}
places:
  q: {}
  done: {}
transitions:
  t:
    produce:
      - {red: 1}
arcs:
  - {from: q, to: t, weight: {red: 1}, annotation: inhibitor}
  - {from: t, to: done, weight: {red: 1}}
markings:
  start:
    q:
      - {id: r, color: red}
`

func TestService_SaveAnnotatedArc(t *testing.T) {
	s := &yaml.Service{}
	ctx := context.Background()
	d, err := s.Load(ctx, strings.NewReader(annotated))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Save(ctx, &buf, d))
	assert.NotContains(t, buf.String(), "inhibitor: true")
	assert.Contains(t, buf.String(), "produce")

	again, err := s.Load(ctx, &buf)
	require.NoError(t, err)
	for _, def := range []*petrifile.Definition{d, again} {
		net, err := def.Build()
		require.NoError(t, err)
		ok, err := net.TransitionIsEnabled(net.ExampleMarkings()["start"], def.Transitions["t"])
		require.NoError(t, err)
		assert.True(t, ok)
		next, err := net.MarkingAfterTransition(net.ExampleMarkings()["start"], def.Transitions["t"])
		require.NoError(t, err)
		assert.Equal(t, 1, next.Get(def.Places["done"]).Len())
	}
}

func TestService_SaveKeepsExpressions(t *testing.T) {
	s := &yaml.Service{}
	ctx := context.Background()
	d := load(t, "testdata/vending.yaml")
	other := petrifile.NewDefinition("other")
	merged, err := petrifile.Merge(d, other)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Save(ctx, &buf, merged))
	out := buf.String()
	assert.Contains(t, out, "guard:")
	assert.Contains(t, out, "transform:")
	assert.Contains(t, out, "passthrough:")
	assert.Contains(t, out, "inhibitor: true")
	assert.Contains(t, out, "minimum: 0")
	assert.NotContains(t, out, "include:")
}

func TestService_SaveCodeBuilt(t *testing.T) {
	s := &yaml.Service{}
	ctx := context.Background()
	red := cpn.Color("red")
	build := func(opts ...cpn.TransitionOption) (*petrifile.Definition, *cpn.Place, *cpn.Transition) {
		d := petrifile.NewDefinition("built")
		d.Colors["red"] = red
		p := cpn.NewPlace("P", cpn.WithPlaceID("p"))
		tr := cpn.NewTransition("T", append([]cpn.TransitionOption{cpn.WithTransitionID("t")}, opts...)...)
		d.Places["p"] = p
		d.Transitions["t"] = tr
		return d, p, tr
	}

	d, _, _ := build(cpn.WithGuard(func(cpn.TokenSet) (bool, error) { return false, nil }))
	err := s.Save(ctx, &bytes.Buffer{}, d)
	assert.ErrorIs(t, err, petrifile.ErrNotExpressible)

	d, _, _ = build(cpn.WithFunc(red.Passthrough(1)))
	err = s.Save(ctx, &bytes.Buffer{}, d)
	assert.ErrorIs(t, err, petrifile.ErrNotExpressible)

	d, p, tr := build()
	d.Arcs = append(d.Arcs, cpn.MustArc(tr, p, cpn.Weight(red), cpn.WithTransformEach(func(tok *cpn.Token) (*cpn.Token, error) {
		return tok, nil
	})))
	err = s.Save(ctx, &bytes.Buffer{}, d)
	assert.ErrorIs(t, err, petrifile.ErrNotExpressible)

	d, p, tr = build()
	inhibit, err := cpn.InhibitorArc(p, tr, nil)
	require.NoError(t, err)
	d.Arcs = append(d.Arcs, inhibit)
	var buf bytes.Buffer
	require.NoError(t, s.Save(ctx, &buf, d))
	assert.Contains(t, buf.String(), "inhibitor: true")
	again, err := s.Load(ctx, &buf)
	require.NoError(t, err)
	require.Len(t, again.Arcs, 1)
	pt, ok := again.Arcs[0].(*cpn.ArcPT)
	require.True(t, ok)
	assert.True(t, pt.Inhibitor())
}
