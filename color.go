package cpn

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Color is a discrete label used to tell kinds of tokens apart. Two colors are
// the same color when their labels match.
type Color string

// Abstract is the color of untyped tokens.
const Abstract Color = "⚫️"

func (c Color) String() string { return string(c) }

// Token returns a new token of this color carrying data.
func (c Color) Token(data map[string]any) *Token {
	return NewToken(WithColor(c), WithData(data))
}

// Produce returns a transition function that yields quantity new tokens of
// this color as a single output group.
func (c Color) Produce(quantity int, data map[string]any) Func {
	return func(TokenSet) ([]TokenSet, error) {
		tokens := make([]*Token, 0, quantity)
		for i := 0; i < quantity; i++ {
			tokens = append(tokens, c.Token(data))
		}
		return []TokenSet{NewTokenSet(tokens...)}, nil
	}
}

// Passthrough returns a transition function passing quantity input tokens of
// this color through unmodified.
func (c Color) Passthrough(quantity int) Func {
	return Passthrough(ColorSet{c: quantity})
}

// ColorEq matches tokens of color c.
func ColorEq(c Color) TokenPredicate {
	return func(t *Token) bool {
		return t.Color() == c
	}
}

// ColorSet maps colors to a quantity of tokens. Arc weights are color sets, and
// so are the color counts of a token set.
type ColorSet map[Color]int

// Weight returns a color set requiring one token of each given color. With no
// colors it is the default weight of one Abstract token.
func Weight(colors ...Color) ColorSet {
	if len(colors) == 0 {
		return ColorSet{Abstract: 1}
	}
	cs := make(ColorSet, len(colors))
	for _, c := range colors {
		cs[c]++
	}
	return cs
}

// Validate returns ErrInvalidWeight if any quantity is not positive.
func (cs ColorSet) Validate() error {
	for c, q := range cs {
		if q <= 0 {
			return fmt.Errorf("%w: %s has quantity %d", ErrInvalidWeight, c, q)
		}
	}
	return nil
}

func (cs ColorSet) Clone() ColorSet {
	ret := make(ColorSet, len(cs))
	for c, q := range cs {
		ret[c] = q
	}
	return ret
}

func (cs ColorSet) Equal(other ColorSet) bool {
	return cs.Key() == other.Key()
}

// Colors returns the colors with a positive quantity, sorted by label.
func (cs ColorSet) Colors() []Color {
	colors := make([]Color, 0, len(cs))
	for c, q := range cs {
		if q > 0 {
			colors = append(colors, c)
		}
	}
	sort.Slice(colors, func(i, j int) bool { return colors[i] < colors[j] })
	return colors
}

// Total is the sum of all quantities.
func (cs ColorSet) Total() int {
	total := 0
	for _, q := range cs {
		total += q
	}
	return total
}

// Key is a canonical signature of the color set. Color sets with equal keys
// hold the same quantity of every color.
func (cs ColorSet) Key() string {
	var b strings.Builder
	for i, c := range cs.Colors() {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.Quote(string(c)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(cs[c]))
	}
	return b.String()
}

// String is the label used to decorate an arc in a diagram. The default weight
// of a single Abstract token has no label.
func (cs ColorSet) String() string {
	if len(cs) == 1 && cs[Abstract] == 1 {
		return ""
	}
	var b strings.Builder
	for _, c := range cs.Colors() {
		b.WriteString(strings.Repeat(string(c), cs[c]))
	}
	return b.String()
}
