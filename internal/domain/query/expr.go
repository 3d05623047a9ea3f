package query

import (
	"fmt"
	"strings"

	"github.com/ccollie/bullmq/internal/domain/value"
)

// exprOp compiles one operator application in expression mode.
type exprOp func(c *compiler, arg value.Value) (expr, error)

// expr compiles an expression-mode node. Strings of the form "$path" are
// field references, {$op: args} objects are operator applications, other
// objects and arrays are literals whose members compile recursively, and
// everything else is a literal.
func (c *compiler) expr(v value.Value) (expr, error) {
	switch {
	case v.IsString():
		if path, ok := strings.CutPrefix(v.Str(), "$"); ok {
			return fieldRef(path), nil
		}
		return literal(v), nil
	case v.IsArray():
		return c.exprArray(v.Items())
	case v.IsObject():
		return c.exprObject(v)
	default:
		return literal(v), nil
	}
}

func literal(v value.Value) expr {
	return func(value.Value) (value.Value, error) { return v, nil }
}

func fieldRef(path string) expr {
	return func(doc value.Value) (value.Value, error) {
		return value.Resolve(doc, path), nil
	}
}

func (c *compiler) exprArray(items []value.Value) (expr, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	els := make([]expr, len(items))
	for i, item := range items {
		e, err := c.expr(item)
		if err != nil {
			return nil, err
		}
		els[i] = e
	}
	return func(doc value.Value) (value.Value, error) {
		out := make([]value.Value, len(els))
		for i, e := range els {
			v, err := e(doc)
			if err != nil {
				return value.Missing(), err
			}
			out[i] = v
		}
		return value.Arr(out...), nil
	}, nil
}

// exprObject compiles an object: a single $-key is an operator application,
// anything else is an object literal whose field values are expressions.
func (c *compiler) exprObject(v value.Value) (expr, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	obj := v.Object()
	keys := obj.Keys()

	if len(keys) > 0 && strings.HasPrefix(keys[0], "$") {
		if len(keys) != 1 {
			return nil, fmt.Errorf("an expression object must have exactly one operator field, got %d", len(keys))
		}
		compile, ok := exprOps[keys[0]]
		if !ok {
			return nil, fmt.Errorf("unknown operator %s", keys[0])
		}
		arg, _ := obj.Get(keys[0])
		return compile(c, arg)
	}

	fields := make([]expr, len(keys))
	for i, k := range keys {
		fv, _ := obj.Get(k)
		e, err := c.expr(fv)
		if err != nil {
			return nil, err
		}
		fields[i] = e
	}
	return func(doc value.Value) (value.Value, error) {
		out := value.NewObject()
		for i, k := range keys {
			fv, err := fields[i](doc)
			if err != nil {
				return value.Missing(), err
			}
			out.Set(k, fv)
		}
		return value.Obj(out), nil
	}, nil
}

// exprOps is the expression-mode operator registry. It is populated from
// the per-category op files at init time and immutable afterwards.
var exprOps = map[string]exprOp{}

func registerExprOps(ops map[string]exprOp) {
	for name, op := range ops {
		exprOps[name] = op
	}
}

// unary accepts either a bare argument or a one-element array, the two
// spellings query authors use for single-operand operators.
func (c *compiler) unary(op string, arg value.Value) (expr, error) {
	if arg.IsArray() {
		items := arg.Items()
		if len(items) != 1 {
			return nil, fmt.Errorf("%s expression must resolve to array(1)", op)
		}
		arg = items[0]
	}
	return c.expr(arg)
}

// nary compiles every element of an argument array.
func (c *compiler) nary(op string, arg value.Value) ([]expr, error) {
	if !arg.IsArray() {
		return nil, fmt.Errorf("%s expects an array of expressions", op)
	}
	items := arg.Items()
	out := make([]expr, len(items))
	for i, item := range items {
		e, err := c.expr(item)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// binary compiles an exact two-element argument array.
func (c *compiler) binary(op string, arg value.Value) (expr, expr, error) {
	items, err := fixedArgs(op, arg, 2)
	if err != nil {
		return nil, nil, err
	}
	a, err := c.expr(items[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := c.expr(items[1])
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}
