// Package query compiles MongoDB-style filter documents into executable
// predicates and evaluates them against projected job documents.
//
// A query document compiles in match mode: objects map field paths to
// predicates and multiple fields combine with an implicit $and. Inside
// $expr compilation switches to expression mode, where objects are
// operator applications, "$path" strings are field references, and the
// result is a value rather than a boolean.
package query

import (
	"fmt"

	"github.com/ccollie/bullmq/internal/domain/value"
)

// maxDepth caps query nesting. Compilation fails beyond it so a hostile
// query cannot blow the evaluation stack.
const maxDepth = 64

// predicate is a compiled match-mode node.
type predicate func(doc value.Value) (bool, error)

// expr is a compiled expression-mode node.
type expr func(doc value.Value) (value.Value, error)

// Query is a compiled match-mode filter. It is immutable and safe for
// concurrent evaluation against many documents.
type Query struct {
	pred predicate
}

// Compile compiles a top-level query document in match mode.
func Compile(q value.Value) (*Query, error) {
	c := &compiler{}
	p, err := c.matchQuery(q)
	if err != nil {
		return nil, err
	}
	return &Query{pred: p}, nil
}

// Match evaluates the compiled query against a document.
func (q *Query) Match(doc value.Value) (bool, error) {
	return q.pred(doc)
}

// Expr is a compiled expression. It is immutable and safe for concurrent
// evaluation.
type Expr struct {
	fn expr
}

// CompileExpr compiles a document in expression mode.
func CompileExpr(v value.Value) (*Expr, error) {
	c := &compiler{}
	e, err := c.expr(v)
	if err != nil {
		return nil, err
	}
	return &Expr{fn: e}, nil
}

// Eval evaluates the compiled expression against a document.
func (e *Expr) Eval(doc value.Value) (value.Value, error) {
	return e.fn(doc)
}

// compiler tracks nesting depth during compilation. Compiled closures
// never reference it, so a Query carries no compiler state.
type compiler struct {
	depth int
}

func (c *compiler) enter() error {
	c.depth++
	if c.depth > maxDepth {
		return fmt.Errorf("query exceeds maximum nesting depth (%d)", maxDepth)
	}
	return nil
}

func (c *compiler) leave() {
	c.depth--
}

// fixedArgs enforces a literal-array arity before compiling arguments.
func fixedArgs(op string, arg value.Value, n int) ([]value.Value, error) {
	if !arg.IsArray() || len(arg.Items()) != n {
		return nil, fmt.Errorf("%s expression must resolve to array(%d)", op, n)
	}
	return arg.Items(), nil
}
