// Package query evaluates expr-lang expressions over documents.
//
// The environment is the JSON-native snapshot of the document: top-level
// keys of an object are variables, and doc holds the whole snapshot (the only
// variable for array documents) unless the document has a top-level key named
// doc. Two helpers take dotted paths:
//
//	get("items.0.name")  // nil when any step is missing
//	has("owner.email")
//	get("")              // the whole snapshot
//
// Undefined variables evaluate to nil.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/reoring/restdoc"
)

// Program is a compiled expression, reusable across documents.
type Program struct {
	src  string
	prog *vm.Program
}

func Compile(expression string) (*Program, error) {
	prog, err := expr.Compile(expression,
		expr.AllowUndefinedVariables(),
		// get comes from the environment
		expr.DisableBuiltin("get"),
	)
	if err != nil {
		return nil, queryError(expression, err)
	}
	return &Program{src: expression, prog: prog}, nil
}

func MustCompile(expression string) *Program {
	p, err := Compile(expression)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Program) String() string { return p.src }

// Eval runs p against a snapshot of n.
func (p *Program) Eval(n restdoc.Node) (any, error) {
	snap, err := n.Plain()
	if err != nil {
		return nil, err
	}
	out, err := vm.Run(p.prog, env(snap))
	if err != nil {
		return nil, queryError(p.src, err)
	}
	return out, nil
}

// Match evaluates p as a predicate.
func (p *Program) Match(n restdoc.Node) (bool, error) {
	out, err := p.Eval(n)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, queryError(p.src, fmt.Errorf("result is %T, not bool", out))
	}
	return b, nil
}

// Eval compiles and runs expression once.
func Eval(n restdoc.Node, expression string) (any, error) {
	p, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	return p.Eval(n)
}

// env binds doc first so that a document key named doc shadows it. The
// helpers always win over document keys.
func env(snap any) map[string]any {
	e := map[string]any{"doc": snap}
	if m, ok := snap.(map[string]any); ok {
		for k, v := range m {
			e[k] = v
		}
	}
	e["get"] = func(path string) any {
		v, _ := lookup(snap, path)
		return v
	}
	e["has"] = func(path string) bool {
		_, ok := lookup(snap, path)
		return ok
	}
	return e
}

// lookup walks a dotted path through maps and slices. Negative indexes
// count from the end.
func lookup(v any, path string) (any, bool) {
	if path == "" {
		return v, true
	}
	for _, step := range strings.Split(path, ".") {
		switch x := v.(type) {
		case map[string]any:
			next, ok := x[step]
			if !ok {
				return nil, false
			}
			v = next
		case []any:
			i, err := strconv.Atoi(step)
			if err != nil {
				return nil, false
			}
			if i < 0 {
				i += len(x)
			}
			if i < 0 || i >= len(x) {
				return nil, false
			}
			v = x[i]
		default:
			return nil, false
		}
	}
	return v, true
}

func queryError(src string, err error) error {
	return &restdoc.Error{
		Code:    restdoc.CodeInvalidArgument,
		Message: fmt.Sprintf("query %q", src),
		Cause:   err,
		Offset:  -1,
	}
}
