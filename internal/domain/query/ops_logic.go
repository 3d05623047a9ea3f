package query

import (
	"fmt"

	"github.com/ccollie/bullmq/internal/domain/value"
)

func init() {
	registerExprOps(map[string]exprOp{
		"$and":    compileAndExpr,
		"$or":     compileOrExpr,
		"$not":    compileNotExpr,
		"$cond":   compileCond,
		"$ifNull": compileIfNull,
		"$switch": compileSwitch,
		"$literal": func(_ *compiler, arg value.Value) (expr, error) {
			return literal(arg), nil
		},
		"$expr": func(c *compiler, arg value.Value) (expr, error) {
			return c.expr(arg)
		},
	})
}

// $and over an empty argument list is true, mirroring the match-mode rule.
func compileAndExpr(c *compiler, arg value.Value) (expr, error) {
	args, err := c.nary("$and", arg)
	if err != nil {
		return nil, err
	}
	return func(doc value.Value) (value.Value, error) {
		for _, e := range args {
			v, err := e(doc)
			if err != nil {
				return value.Missing(), err
			}
			if !v.Truthy() {
				return value.Boolean(false), nil
			}
		}
		return value.Boolean(true), nil
	}, nil
}

func compileOrExpr(c *compiler, arg value.Value) (expr, error) {
	args, err := c.nary("$or", arg)
	if err != nil {
		return nil, err
	}
	return func(doc value.Value) (value.Value, error) {
		for _, e := range args {
			v, err := e(doc)
			if err != nil {
				return value.Missing(), err
			}
			if v.Truthy() {
				return value.Boolean(true), nil
			}
		}
		return value.Boolean(false), nil
	}, nil
}

func compileNotExpr(c *compiler, arg value.Value) (expr, error) {
	e, err := c.unary("$not", arg)
	if err != nil {
		return nil, err
	}
	return func(doc value.Value) (value.Value, error) {
		v, err := e(doc)
		if err != nil {
			return value.Missing(), err
		}
		return value.Boolean(!v.Truthy()), nil
	}, nil
}

// $cond accepts the object form {if, then, else} or the array form
// [if, then, else].
func compileCond(c *compiler, arg value.Value) (expr, error) {
	var ifV, thenV, elseV value.Value
	switch {
	case arg.IsObject():
		obj := arg.Object()
		var ok bool
		if ifV, ok = obj.Get("if"); !ok {
			return nil, fmt.Errorf("$cond requires an 'if' branch")
		}
		if thenV, ok = obj.Get("then"); !ok {
			return nil, fmt.Errorf("$cond requires a 'then' branch")
		}
		if elseV, ok = obj.Get("else"); !ok {
			return nil, fmt.Errorf("$cond requires an 'else' branch")
		}
	case arg.IsArray():
		items, err := fixedArgs("$cond", arg, 3)
		if err != nil {
			return nil, err
		}
		ifV, thenV, elseV = items[0], items[1], items[2]
	default:
		return nil, fmt.Errorf("$cond expects an {if, then, else} object or array(3)")
	}

	condE, err := c.expr(ifV)
	if err != nil {
		return nil, err
	}
	thenE, err := c.expr(thenV)
	if err != nil {
		return nil, err
	}
	elseE, err := c.expr(elseV)
	if err != nil {
		return nil, err
	}
	return func(doc value.Value) (value.Value, error) {
		cond, err := condE(doc)
		if err != nil {
			return value.Missing(), err
		}
		if cond.Truthy() {
			return thenE(doc)
		}
		return elseE(doc)
	}, nil
}

// $ifNull yields its first argument when that is present and non-null,
// else its second. The arity is exactly two.
func compileIfNull(c *compiler, arg value.Value) (expr, error) {
	items, err := fixedArgs("$ifNull", arg, 2)
	if err != nil {
		return nil, err
	}
	a, err := c.expr(items[0])
	if err != nil {
		return nil, err
	}
	b, err := c.expr(items[1])
	if err != nil {
		return nil, err
	}
	return func(doc value.Value) (value.Value, error) {
		v, err := a(doc)
		if err != nil {
			return value.Missing(), err
		}
		if !v.IsNullish() {
			return v, nil
		}
		return b(doc)
	}, nil
}

// $switch evaluates branch cases in order and yields the first matching
// then. With no match the default applies; without one, evaluation fails.
func compileSwitch(c *compiler, arg value.Value) (expr, error) {
	if !arg.IsObject() {
		return nil, fmt.Errorf("$switch expects a {branches, default} object")
	}
	obj := arg.Object()

	branchesV, ok := obj.Get("branches")
	if !ok || !branchesV.IsArray() {
		return nil, fmt.Errorf("$switch requires a 'branches' array")
	}

	type branch struct {
		caseE expr
		thenE expr
	}
	branches := make([]branch, 0, len(branchesV.Items()))
	for i, bv := range branchesV.Items() {
		if !bv.IsObject() {
			return nil, fmt.Errorf("$switch branch %d must be a {case, then} object", i)
		}
		bo := bv.Object()
		caseV, ok := bo.Get("case")
		if !ok {
			return nil, fmt.Errorf("$switch branch %d is missing 'case'", i)
		}
		thenV, ok := bo.Get("then")
		if !ok {
			return nil, fmt.Errorf("$switch branch %d is missing 'then'", i)
		}
		caseE, err := c.expr(caseV)
		if err != nil {
			return nil, err
		}
		thenE, err := c.expr(thenV)
		if err != nil {
			return nil, err
		}
		branches = append(branches, branch{caseE: caseE, thenE: thenE})
	}

	var defaultE expr
	if defV, ok := obj.Get("default"); ok {
		var err error
		if defaultE, err = c.expr(defV); err != nil {
			return nil, err
		}
	}

	return func(doc value.Value) (value.Value, error) {
		for _, b := range branches {
			cond, err := b.caseE(doc)
			if err != nil {
				return value.Missing(), err
			}
			if cond.Truthy() {
				return b.thenE(doc)
			}
		}
		if defaultE == nil {
			return value.Missing(), fmt.Errorf("$switch found no matching branch and no default was specified")
		}
		return defaultE(doc)
	}, nil
}
