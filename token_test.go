package cpn_test

import (
	"errors"
	"github.com/jt05610/cpn"
	"testing"
)

func TestToken_New(t *testing.T) {
	tok := cpn.NewToken()
	if tok.ID() == "" {
		t.Fatal("expected an id")
	}
	if tok.Name() != tok.ID() {
		t.Errorf("name %q should default to id %q", tok.Name(), tok.ID())
	}
	if tok.Color() != cpn.Abstract {
		t.Errorf("color %s should default to Abstract", tok.Color())
	}
	named := cpn.NewToken(cpn.WithTokenID("t1"), cpn.WithTokenName("first"))
	if named.ID() != "t1" || named.Name() != "first" {
		t.Errorf("got id %q name %q", named.ID(), named.Name())
	}
}

func TestToken_ReplaceAndClone(t *testing.T) {
	red := cpn.Color("red")
	tok := red.Token(map[string]any{"x": 1})

	replaced := tok.Replace(map[string]any{"x": 2})
	if !replaced.Equal(tok) {
		t.Error("replace should keep the id")
	}
	if v, _ := replaced.Value("x"); v != 2 {
		t.Errorf("replaced x = %v", v)
	}
	if v, _ := tok.Value("x"); v != 1 {
		t.Errorf("original x changed to %v", v)
	}

	clone := tok.Clone()
	if clone.Equal(tok) {
		t.Error("clone should have a new id")
	}
	if clone.Color() != red {
		t.Errorf("clone color = %s", clone.Color())
	}
	if v, _ := clone.Value("x"); v != 1 {
		t.Errorf("clone x = %v", v)
	}
}

func TestToken_DataIsCopied(t *testing.T) {
	data := map[string]any{"x": 1}
	tok := cpn.NewToken(cpn.WithData(data))
	data["x"] = 99
	got := tok.Data()
	got["x"] = 42
	if v, _ := tok.Value("x"); v != 1 {
		t.Errorf("token data mutated to %v", v)
	}
}

func TestToken_Times(t *testing.T) {
	tok := cpn.NewToken()
	set := tok.Times(3)
	if set.Len() != 3 {
		t.Fatalf("expected 3 tokens, got %d", set.Len())
	}
	if set.Has(tok) {
		t.Error("clones should not include the original")
	}
	if n := tok.Times(0).Len(); n != 0 {
		t.Errorf("Times(0) gave %d tokens", n)
	}
}

func TestToken_String(t *testing.T) {
	red := cpn.Color("red")
	tok := cpn.NewToken(cpn.WithColor(red), cpn.WithTokenName("apple"), cpn.WithData(map[string]any{"b": 2, "a": 1}))
	if got := tok.String(); got != "red apple(a=1, b=2)" {
		t.Errorf("got %q", got)
	}
	if got := cpn.NewToken().String(); got != cpn.Abstract.String() {
		t.Errorf("got %q", got)
	}
}

func TestOne(t *testing.T) {
	red, blue := cpn.Color("red"), cpn.Color("blue")
	r := red.Token(nil)
	tokens := cpn.NewTokenSet(r, blue.Token(nil), blue.Token(nil))

	got, err := cpn.One(cpn.TokensWhere(cpn.ColorEq(red)))(tokens)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(r) {
		t.Errorf("got %s", got)
	}

	_, err = cpn.One(cpn.TokensWhere(cpn.ColorEq(blue)))(tokens)
	if !errors.Is(err, cpn.ErrNotExactlyOne) {
		t.Errorf("expected ErrNotExactlyOne, got %v", err)
	}
	_, err = cpn.One(nil)(cpn.TokenSet{})
	if !errors.Is(err, cpn.ErrNotExactlyOne) {
		t.Errorf("expected ErrNotExactlyOne, got %v", err)
	}
}

func TestTokensWhere(t *testing.T) {
	red := cpn.Color("red")
	big := func(tok *cpn.Token) bool {
		v, _ := tok.Value("size")
		return v == "big"
	}
	tokens := cpn.NewTokenSet(
		red.Token(map[string]any{"size": "big"}),
		red.Token(map[string]any{"size": "small"}),
		cpn.Abstract.Token(map[string]any{"size": "big"}),
	)
	if n := cpn.TokensWhere(cpn.ColorEq(red), big)(tokens).Len(); n != 1 {
		t.Errorf("expected 1 token, got %d", n)
	}
	if n := cpn.TokensWhere()(tokens).Len(); n != 3 {
		t.Errorf("no predicates should keep all tokens, got %d", n)
	}
}

func TestTokenSet_Immutable(t *testing.T) {
	a, b := cpn.NewToken(), cpn.NewToken()
	s := cpn.NewTokenSet(a)
	s2 := s.Add(b)
	if s.Len() != 1 || s2.Len() != 2 {
		t.Fatalf("lens %d %d", s.Len(), s2.Len())
	}
	s3 := s2.Remove(a)
	if !s2.Has(a) || s3.Has(a) {
		t.Error("remove should not touch the original set")
	}
	if !s.Union(s3).Equal(s2) {
		t.Error("union mismatch")
	}
	var zero cpn.TokenSet
	if !zero.Empty() || zero.String() != "∅" {
		t.Error("zero set should be empty")
	}
}
