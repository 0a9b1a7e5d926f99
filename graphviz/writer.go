package graphviz

import (
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/jt05610/cpn"
)

const enabledFill = "palegreen"

// Writer renders nets as graphviz diagrams. Places are circles and
// transitions boxes. Given a marking, places list their tokens and enabled
// transitions are filled.
type Writer struct {
	*Config
	g       *cgraph.Graph
	mapping map[string]*cgraph.Node
}

func (w *Writer) node(n cpn.Node) string {
	if n.Kind() == cpn.PlaceNode {
		return "p_" + n.ID()
	}
	return "t_" + n.ID()
}

func (w *Writer) writePlace(p *cpn.Place, tokens cpn.TokenSet) error {
	node, err := w.g.CreateNode(w.node(p))
	if err != nil {
		return err
	}
	node.SetShape(cgraph.CircleShape)
	label := p.String()
	if !tokens.Empty() {
		marks := tokens.ColorSet().String()
		if marks == "" {
			marks = cpn.Abstract.String()
		}
		label += "\n" + marks
	}
	node.SetLabel(label)
	node.Set("fontname", string(w.Font))
	w.mapping[w.node(p)] = node
	return nil
}

func (w *Writer) writeTransition(t *cpn.Transition, enabled bool) error {
	node, err := w.g.CreateNode(w.node(t))
	if err != nil {
		return err
	}
	node.SetShape(cgraph.BoxShape)
	label := t.String()
	if t.Annotation() != "" {
		label += "\n[" + t.Annotation() + "]"
	}
	node.SetLabel(label)
	node.Set("fontname", string(w.Font))
	if enabled {
		node.SetStyle(cgraph.FilledNodeStyle)
		node.SetFillColor(enabledFill)
	}
	w.mapping[w.node(t)] = node
	return nil
}

func inhibitor(a cpn.Arc) bool {
	pt, ok := a.(*cpn.ArcPT)
	return ok && pt.Inhibitor()
}

func arcLabel(a cpn.Arc) string {
	label := a.Weight().String()
	if a.Annotation() == "" || inhibitor(a) {
		return label
	}
	if label == "" {
		return a.Annotation()
	}
	return label + " " + a.Annotation()
}

func (w *Writer) writeArc(i int, a cpn.Arc) error {
	src := w.mapping[w.node(a.Src())]
	dst := w.mapping[w.node(a.Dest())]
	e, err := w.g.CreateEdge(fmt.Sprintf("a%d", i), src, dst)
	if err != nil {
		return err
	}
	e.SetLabel(arcLabel(a))
	e.Set("fontname", string(w.Font))
	if inhibitor(a) {
		e.SetArrowHead(cgraph.ODotArrow)
	}
	return nil
}

func (w *Writer) writeClusters(clusters map[string][]cpn.Node) error {
	names := make([]string, 0, len(clusters))
	for name := range clusters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sub := w.g.SubGraph("cluster_"+name, 1)
		sub.SetLabel(name)
		for _, n := range clusters[name] {
			if _, ok := w.mapping[w.node(n)]; !ok {
				continue
			}
			if _, err := sub.CreateNode(w.node(n)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Writer) write(out io.Writer, net *cpn.Net, m *cpn.Marking) error {
	graph := graphviz.New()
	defer func() {
		_ = graph.Close()
	}()
	g, err := graph.Graph(graphviz.Name(w.Name))
	if err != nil {
		return err
	}
	defer func() {
		_ = g.Close()
	}()
	g.SetRankDir(cgraph.RankDir(w.RankDir))
	w.g = g
	w.mapping = make(map[string]*cgraph.Node)

	enabled := make(map[string]bool)
	if m != nil {
		ts, err := net.EnabledTransitions(*m)
		if err != nil {
			return err
		}
		for _, t := range ts {
			enabled[t.ID()] = true
		}
	}
	for _, p := range net.Places() {
		var tokens cpn.TokenSet
		if m != nil {
			tokens = m.Get(p)
		}
		if err := w.writePlace(p, tokens); err != nil {
			return err
		}
	}
	for _, t := range net.Transitions() {
		if err := w.writeTransition(t, enabled[t.ID()]); err != nil {
			return err
		}
	}
	for i, a := range net.Arcs() {
		if err := w.writeArc(i, a); err != nil {
			return err
		}
	}
	if err := w.writeClusters(net.Clusters()); err != nil {
		return err
	}
	return graph.Render(g, w.Format, out)
}

// Flush writes the diagram of net.
func (w *Writer) Flush(out io.Writer, net *cpn.Net) error {
	return w.write(out, net, nil)
}

// FlushMarked writes the diagram of net with the tokens of m.
func (w *Writer) FlushMarked(out io.Writer, net *cpn.Net, m cpn.Marking) error {
	return w.write(out, net, &m)
}

type Font string

func (f Font) Or(other Font) Font {
	return f + "," + other
}

const (
	Helvetica  Font = "Helvetica"
	Arial      Font = "Arial"
	Roboto     Font = "Roboto"
	Montserrat Font = "Montserrat"
	SansSerif  Font = "sans-serif"
	Serif      Font = "Serif"
	Times      Font = "Times"
)

type RankDir string

const (
	LeftToRight RankDir = "LR"
	RightToLeft RankDir = "RL"
	TopToBottom RankDir = "TB"
	BottomToTop RankDir = "BT"
)

type Config struct {
	Name string
	Font
	RankDir
	Format graphviz.Format
}

// ParseFormat maps a file extension or format name to a render format.
func ParseFormat(s string) (graphviz.Format, error) {
	switch s {
	case "dot", "gv", "":
		return graphviz.XDOT, nil
	case "svg":
		return graphviz.SVG, nil
	case "png":
		return graphviz.PNG, nil
	case "jpg", "jpeg":
		return graphviz.JPG, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

func New(config *Config) *Writer {
	if config.Name == "" {
		config.Name = "cpn"
	}
	if config.Font == "" {
		config.Font = Helvetica
	}
	if config.RankDir == "" {
		config.RankDir = LeftToRight
	}
	if config.Format == "" {
		config.Format = graphviz.XDOT
	}
	return &Writer{
		Config:  config,
		mapping: make(map[string]*cgraph.Node),
	}
}
