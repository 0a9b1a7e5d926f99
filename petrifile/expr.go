package petrifile

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/jt05610/cpn"
)

var (
	ErrNotBool           = errors.New("expression did not return a bool")
	ErrNotData           = errors.New("expression did not return a map")
	ErrInvalidTokenData  = errors.New("token data does not match color schema")
	ErrUnknownReference  = errors.New("unknown reference")
	ErrDuplicateNodeName = errors.New("duplicate node key")
	ErrNotExpressible    = errors.New("cannot be written to a petrifile")
)

// tokenEnv exposes a token to expressions as id, name, color and data.
func tokenEnv(t *cpn.Token) map[string]any {
	return map[string]any{
		"id":    t.ID(),
		"name":  t.Name(),
		"color": t.Color().String(),
		"data":  t.Data(),
	}
}

func tokensEnv(tokens cpn.TokenSet) []any {
	tt := tokens.Tokens()
	ret := make([]any, len(tt))
	for i, t := range tt {
		ret[i] = tokenEnv(t)
	}
	return ret
}

func runBool(program *vm.Program, env map[string]any) (bool, error) {
	out, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("%w: got %T", ErrNotBool, out)
	}
	return ok, nil
}

// CompileGuard compiles a transition guard. The expression sees the selected
// input tokens as inputs.
func CompileGuard(src string) (cpn.Guard, error) {
	program, err := expr.Compile(src)
	if err != nil {
		return nil, err
	}
	return func(inputs cpn.TokenSet) (bool, error) {
		return runBool(program, map[string]any{
			"inputs": tokensEnv(inputs),
		})
	}, nil
}

// CompileArcGuard compiles an arc guard. The expression sees the tokens at
// the arc's place as tokens and the arc weight as weight.
func CompileArcGuard(src string) (cpn.ArcGuard, error) {
	program, err := expr.Compile(src)
	if err != nil {
		return nil, err
	}
	return func(arc *cpn.ArcPT, tokens cpn.TokenSet) (bool, error) {
		weight := make(map[string]any)
		for c, q := range arc.Weight() {
			weight[c.String()] = q
		}
		return runBool(program, map[string]any{
			"tokens": tokensEnv(tokens),
			"weight": weight,
		})
	}, nil
}

// CompileTransform compiles a per-token transform. The expression sees the
// token's id, name, color and data and returns the token's new data.
func CompileTransform(src string) (func(*cpn.Token) (*cpn.Token, error), error) {
	program, err := expr.Compile(src)
	if err != nil {
		return nil, err
	}
	return func(t *cpn.Token) (*cpn.Token, error) {
		out, err := expr.Run(program, tokenEnv(t))
		if err != nil {
			return nil, err
		}
		data, ok := out.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: got %T", ErrNotData, out)
		}
		return t.Replace(data), nil
	}, nil
}
