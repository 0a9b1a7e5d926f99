package cpn

import (
	"fmt"
	"sort"
	"strings"
)

// Token is a unit of state. Tokens are immutable: Replace and Clone return new
// tokens rather than modifying the receiver.
type Token struct {
	// id is globally unique and is the identity of the token.
	id string
	// name is descriptive and defaults to the id.
	name  string
	color Color
	data  map[string]any
}

type TokenOption func(*Token)

func WithTokenID(id string) TokenOption {
	return func(t *Token) {
		t.id = id
	}
}

func WithTokenName(name string) TokenOption {
	return func(t *Token) {
		t.name = name
	}
}

func WithColor(c Color) TokenOption {
	return func(t *Token) {
		t.color = c
	}
}

// WithData copies data into the token.
func WithData(data map[string]any) TokenOption {
	return func(t *Token) {
		t.data = copyData(data)
	}
}

// NewToken creates an Abstract token with a fresh id unless options say otherwise.
func NewToken(opts ...TokenOption) *Token {
	t := &Token{
		color: Abstract,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.id == "" {
		t.id = ID()
	}
	if t.name == "" {
		t.name = t.id
	}
	return t
}

func copyData(data map[string]any) map[string]any {
	if len(data) == 0 {
		return nil
	}
	ret := make(map[string]any, len(data))
	for k, v := range data {
		ret[k] = v
	}
	return ret
}

func (t *Token) ID() string { return t.id }

func (t *Token) Name() string { return t.name }

func (t *Token) Color() Color { return t.color }

// Data returns a copy of the token's data.
func (t *Token) Data() map[string]any {
	ret := copyData(t.data)
	if ret == nil {
		return map[string]any{}
	}
	return ret
}

// Value returns a single data value.
func (t *Token) Value(key string) (any, bool) {
	v, ok := t.data[key]
	return v, ok
}

// Replace returns a token with the same id, name and color but new data.
func (t *Token) Replace(data map[string]any) *Token {
	return &Token{
		id:    t.id,
		name:  t.name,
		color: t.color,
		data:  copyData(data),
	}
}

// Clone returns a token with a new id and name but the same color and data.
func (t *Token) Clone() *Token {
	return NewToken(WithColor(t.color), WithData(t.data))
}

// Times returns a set of n clones of the token.
func (t *Token) Times(n int) TokenSet {
	var s TokenSet
	for i := 0; i < n; i++ {
		s = s.Add(t.Clone())
	}
	return s
}

func (t *Token) Equal(other *Token) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.id == other.id
}

// Less orders tokens by color label, then name.
func (t *Token) Less(other *Token) bool {
	if t.color != other.color {
		return t.color < other.color
	}
	return t.name < other.name
}

func (t *Token) String() string {
	s := t.color.String()
	if t.name != t.id {
		s += " " + t.name
	}
	if len(t.data) == 0 {
		return s
	}
	keys := make([]string, 0, len(t.data))
	for k := range t.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = fmt.Sprintf("%s=%v", k, t.data[k])
	}
	return s + "(" + strings.Join(values, ", ") + ")"
}

// TokenPredicate reports whether a token matches a condition.
type TokenPredicate func(t *Token) bool

// TokenFilter narrows a token set.
type TokenFilter func(tokens TokenSet) TokenSet

// TokenReducer picks a single token out of a token set.
type TokenReducer func(tokens TokenSet) (*Token, error)

// TokensWhere returns a filter keeping the tokens that match every predicate.
func TokensWhere(predicates ...TokenPredicate) TokenFilter {
	return func(tokens TokenSet) TokenSet {
		return tokens.Filter(func(t *Token) bool {
			for _, p := range predicates {
				if !p(t) {
					return false
				}
			}
			return true
		})
	}
}

// One returns a reducer that applies filter (nil means no filtering) and
// requires exactly one token to remain.
func One(filter TokenFilter) TokenReducer {
	return func(tokens TokenSet) (*Token, error) {
		if filter != nil {
			tokens = filter(tokens)
		}
		if n := tokens.Len(); n != 1 {
			return nil, fmt.Errorf("%w, got %d", ErrNotExactlyOne, n)
		}
		return tokens.Tokens()[0], nil
	}
}
