package query

import (
	"fmt"

	"github.com/ccollie/bullmq/internal/domain/value"
)

func init() {
	registerExprOps(map[string]exprOp{
		"$eq":  equalityOp("$eq", false),
		"$ne":  equalityOp("$ne", true),
		"$gt":  orderOp("$gt", func(c int) bool { return c > 0 }),
		"$gte": orderOp("$gte", func(c int) bool { return c >= 0 }),
		"$lt":  orderOp("$lt", func(c int) bool { return c < 0 }),
		"$lte": orderOp("$lte", func(c int) bool { return c <= 0 }),
		"$cmp": compileCmp,
		"$in":  membershipOp("$in", false),
		"$nin": membershipOp("$nin", true),
	})
}

// equalityOp builds $eq/$ne. A missing operand makes the comparison null
// rather than false; $exists is the only way to observe absence.
func equalityOp(name string, negate bool) exprOp {
	return func(c *compiler, arg value.Value) (expr, error) {
		a, b, err := c.binary(name, arg)
		if err != nil {
			return nil, err
		}
		return func(doc value.Value) (value.Value, error) {
			va, vb, err := evalPair(doc, a, b)
			if err != nil {
				return value.Missing(), err
			}
			if va.IsMissing() || vb.IsMissing() {
				return value.Null(), nil
			}
			return value.Boolean(value.Equal(va, vb) != negate), nil
		}, nil
	}
}

// orderOp builds the inequality operators over the canonical ordering.
func orderOp(name string, want func(int) bool) exprOp {
	return func(c *compiler, arg value.Value) (expr, error) {
		a, b, err := c.binary(name, arg)
		if err != nil {
			return nil, err
		}
		return func(doc value.Value) (value.Value, error) {
			va, vb, err := evalPair(doc, a, b)
			if err != nil {
				return value.Missing(), err
			}
			if va.IsMissing() || vb.IsMissing() {
				return value.Null(), nil
			}
			return value.Boolean(want(value.Compare(va, vb))), nil
		}, nil
	}
}

func compileCmp(c *compiler, arg value.Value) (expr, error) {
	a, b, err := c.binary("$cmp", arg)
	if err != nil {
		return nil, err
	}
	return func(doc value.Value) (value.Value, error) {
		va, vb, err := evalPair(doc, a, b)
		if err != nil {
			return value.Missing(), err
		}
		if va.IsMissing() || vb.IsMissing() {
			return value.Null(), nil
		}
		return value.Integer(int64(value.Compare(va, vb))), nil
	}, nil
}

// membershipOp builds $in/$nin: [needle, haystack].
func membershipOp(name string, negate bool) exprOp {
	return func(c *compiler, arg value.Value) (expr, error) {
		a, b, err := c.binary(name, arg)
		if err != nil {
			return nil, err
		}
		return func(doc value.Value) (value.Value, error) {
			needle, haystack, err := evalPair(doc, a, b)
			if err != nil {
				return value.Missing(), err
			}
			if haystack.IsNullish() {
				return value.Null(), nil
			}
			if !haystack.IsArray() {
				return value.Missing(), fmt.Errorf("%s requires an array as a second argument, got %s",
					name, haystack.Kind().TypeName())
			}
			found := false
			for _, el := range haystack.Items() {
				if value.Equal(el, needle) {
					found = true
					break
				}
			}
			return value.Boolean(found != negate), nil
		}, nil
	}
}

func evalPair(doc value.Value, a, b expr) (value.Value, value.Value, error) {
	va, err := a(doc)
	if err != nil {
		return value.Missing(), value.Missing(), err
	}
	vb, err := b(doc)
	if err != nil {
		return value.Missing(), value.Missing(), err
	}
	return va, vb, nil
}
