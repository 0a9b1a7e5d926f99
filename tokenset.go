package cpn

import (
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"
)

// TokenSet is an immutable set of tokens keyed by token id. The zero value is
// an empty set. Adding or removing tokens returns a new set sharing structure
// with the old one.
type TokenSet struct {
	m *immutable.Map[string, *Token]
}

func NewTokenSet(tokens ...*Token) TokenSet {
	var s TokenSet
	return s.Add(tokens...)
}

func (s TokenSet) Len() int {
	if s.m == nil {
		return 0
	}
	return s.m.Len()
}

func (s TokenSet) Empty() bool { return s.Len() == 0 }

func (s TokenSet) Has(t *Token) bool {
	if s.m == nil || t == nil {
		return false
	}
	_, ok := s.m.Get(t.id)
	return ok
}

func (s TokenSet) Add(tokens ...*Token) TokenSet {
	if len(tokens) == 0 {
		return s
	}
	m := s.m
	if m == nil {
		m = immutable.NewMap[string, *Token](nil)
	}
	for _, t := range tokens {
		if t == nil {
			continue
		}
		m = m.Set(t.id, t)
	}
	return TokenSet{m: m}
}

func (s TokenSet) Remove(t *Token) TokenSet {
	if !s.Has(t) {
		return s
	}
	return TokenSet{m: s.m.Delete(t.id)}
}

func (s TokenSet) Union(other TokenSet) TokenSet {
	if s.Len() < other.Len() {
		s, other = other, s
	}
	return s.Add(other.Tokens()...)
}

// Tokens returns the members ordered by color, name, then id.
func (s TokenSet) Tokens() []*Token {
	tokens := make([]*Token, 0, s.Len())
	if s.m == nil {
		return tokens
	}
	itr := s.m.Iterator()
	for !itr.Done() {
		_, t, _ := itr.Next()
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].Less(tokens[j]) {
			return true
		}
		if tokens[j].Less(tokens[i]) {
			return false
		}
		return tokens[i].id < tokens[j].id
	})
	return tokens
}

func (s TokenSet) Filter(keep TokenPredicate) TokenSet {
	var ret TokenSet
	for _, t := range s.Tokens() {
		if keep(t) {
			ret = ret.Add(t)
		}
	}
	return ret
}

// ColorSet counts the tokens of each color.
func (s TokenSet) ColorSet() ColorSet {
	cs := make(ColorSet)
	for _, t := range s.Tokens() {
		cs[t.color]++
	}
	return cs
}

func (s TokenSet) Equal(other TokenSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, t := range s.Tokens() {
		if !other.Has(t) {
			return false
		}
	}
	return true
}

func (s TokenSet) String() string {
	if s.Empty() {
		return "∅"
	}
	tokens := s.Tokens()
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
