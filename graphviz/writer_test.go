package graphviz_test

import (
	"bytes"
	"testing"

	"github.com/goccy/go-graphviz"
	"github.com/jt05610/cpn"
	gv "github.com/jt05610/cpn/graphviz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type machine struct {
	Slot    *cpn.Place
	Box     *cpn.Place
	Broken  *cpn.Place
	Insert  *cpn.Transition
	Arcs    []cpn.Arc
	cluster []cpn.Node
}

func (m *machine) Clusters() map[string][]cpn.Node {
	return map[string][]cpn.Node{"customer": m.cluster}
}

func newMachine(t *testing.T) (*machine, *cpn.Net) {
	t.Helper()
	coin := cpn.Color("🪙")
	m := &machine{
		Slot:   cpn.NewPlace("Coin slot"),
		Box:    cpn.NewPlace("Cash box"),
		Broken: cpn.NewPlace("Out of order"),
		Insert: cpn.NewTransition("Insert coin", cpn.WithFunc(coin.Passthrough(1)), cpn.WithTransitionAnnotation("any coin")),
	}
	inhibit, err := cpn.InhibitorArc(m.Broken, m.Insert, nil)
	require.NoError(t, err)
	m.Arcs = []cpn.Arc{
		cpn.MustArc(m.Slot, m.Insert, cpn.Weight(coin)),
		cpn.MustArc(m.Insert, m.Box, cpn.Weight(coin), cpn.WithAnnotation("deposit")),
		inhibit,
	}
	m.cluster = []cpn.Node{m.Slot, m.Insert}
	net, err := cpn.NewFromStructure(m)
	require.NoError(t, err)
	return m, net
}

func TestWriter_Flush(t *testing.T) {
	_, net := newMachine(t)
	w := gv.New(&gv.Config{
		Font:    gv.Helvetica,
		RankDir: gv.LeftToRight,
	})
	var buf bytes.Buffer
	require.NoError(t, w.Flush(&buf, net))
	out := buf.String()
	assert.Contains(t, out, "Coin slot")
	assert.Contains(t, out, "Cash box")
	assert.Contains(t, out, "Insert coin")
	assert.Contains(t, out, "deposit")
	assert.Contains(t, out, "odot")
	assert.Contains(t, out, "cluster_customer")
	assert.Contains(t, out, "rankdir=LR")
	assert.NotContains(t, out, "palegreen")
}

func TestWriter_FlushMarked(t *testing.T) {
	m, net := newMachine(t)
	marking := cpn.NewMarking(map[*cpn.Place][]*cpn.Token{
		m.Slot: {cpn.Color("🪙").Token(nil)},
	})
	w := gv.New(&gv.Config{})
	var buf bytes.Buffer
	require.NoError(t, w.FlushMarked(&buf, net, marking))
	assert.Contains(t, buf.String(), "palegreen")
}

func TestParseFormat(t *testing.T) {
	f, err := gv.ParseFormat("svg")
	require.NoError(t, err)
	assert.Equal(t, graphviz.SVG, f)
	f, err = gv.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, graphviz.XDOT, f)
	_, err = gv.ParseFormat("bmp2")
	assert.Error(t, err)
}

func TestWriter_AnnotatedArc(t *testing.T) {
	red := cpn.Color("red")
	q := cpn.NewPlace("Queue")
	tr := cpn.NewTransition("Take", cpn.WithFunc(red.Passthrough(1)))
	net, err := cpn.New([]cpn.Arc{cpn.MustArc(q, tr, cpn.Weight(red), cpn.WithAnnotation("inhibitor"))})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, gv.New(&gv.Config{}).Flush(&buf, net))
	assert.Contains(t, buf.String(), "inhibitor")
	assert.NotContains(t, buf.String(), "odot")
}
