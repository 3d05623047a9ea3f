package query

import (
	"fmt"
	"strings"

	"github.com/ccollie/bullmq/internal/domain/value"
)

// matchQuery compiles a match-mode query object. Field keys become path
// predicates, $-keys at top level are logical combinators, and multiple
// keys combine with an implicit $and. An empty object matches everything.
func (c *compiler) matchQuery(q value.Value) (predicate, error) {
	if !q.IsObject() {
		return nil, fmt.Errorf("query must be an object, got %s", q.Kind().TypeName())
	}
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	obj := q.Object()
	preds := make([]predicate, 0, obj.Len())

	for _, k := range obj.Keys() {
		arg, _ := obj.Get(k)
		var (
			p   predicate
			err error
		)
		switch {
		case k == "$and":
			p, err = c.matchList(k, arg, andPreds)
		case k == "$or":
			p, err = c.matchList(k, arg, orPreds)
		case k == "$nor":
			p, err = c.matchList(k, arg, norPreds)
		case k == "$expr":
			p, err = c.matchExpr(arg)
		case strings.HasPrefix(k, "$"):
			return nil, fmt.Errorf("unknown top-level operator %s", k)
		default:
			p, err = c.fieldPredicate(k, arg)
		}
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}

	return andPreds(preds), nil
}

// matchList compiles the subqueries of $and/$or/$nor.
func (c *compiler) matchList(op string, arg value.Value, combine func([]predicate) predicate) (predicate, error) {
	if !arg.IsArray() {
		return nil, fmt.Errorf("%s expects an array of queries", op)
	}
	subs := make([]predicate, 0, len(arg.Items()))
	for _, q := range arg.Items() {
		p, err := c.matchQuery(q)
		if err != nil {
			return nil, err
		}
		subs = append(subs, p)
	}
	return combine(subs), nil
}

// matchExpr compiles $expr: the argument evaluates in expression mode and
// the document matches when the result is truthy.
func (c *compiler) matchExpr(arg value.Value) (predicate, error) {
	e, err := c.expr(arg)
	if err != nil {
		return nil, err
	}
	return func(doc value.Value) (bool, error) {
		v, err := e(doc)
		if err != nil {
			return false, err
		}
		return v.Truthy(), nil
	}, nil
}

// $and over an empty list is vacuously true; $or is vacuously false.
func andPreds(preds []predicate) predicate {
	if len(preds) == 1 {
		return preds[0]
	}
	return func(doc value.Value) (bool, error) {
		for _, p := range preds {
			ok, err := p(doc)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

func orPreds(preds []predicate) predicate {
	return func(doc value.Value) (bool, error) {
		for _, p := range preds {
			ok, err := p(doc)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
}

func norPreds(preds []predicate) predicate {
	or := orPreds(preds)
	return func(doc value.Value) (bool, error) {
		ok, err := or(doc)
		return !ok && err == nil, err
	}
}

// vpred is a compiled value-predicate: it judges the value resolved at a
// field path.
type vpred func(resolved value.Value) (bool, error)

// fieldPredicate compiles one `path: spec` pair. A spec whose keys are all
// operators applies them as value-predicates; anything else is shorthand
// for $eq against the literal spec.
func (c *compiler) fieldPredicate(path string, spec value.Value) (predicate, error) {
	vp, err := c.valuePredicate(path, spec)
	if err != nil {
		return nil, err
	}
	return func(doc value.Value) (bool, error) {
		return vp(value.Resolve(doc, path))
	}, nil
}

func (c *compiler) valuePredicate(path string, spec value.Value) (vpred, error) {
	if !spec.IsObject() || !isOperatorObject(spec.Object()) {
		target := spec
		return func(resolved value.Value) (bool, error) {
			return eqMatch(resolved, target), nil
		}, nil
	}

	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	obj := spec.Object()
	vps := make([]vpred, 0, obj.Len())
	for _, k := range obj.Keys() {
		compile, ok := matchOps[k]
		if !ok {
			return nil, fmt.Errorf("unknown operator %s", k)
		}
		arg, _ := obj.Get(k)
		vp, err := compile(c, arg)
		if err != nil {
			return nil, err
		}
		vps = append(vps, vp)
	}

	if len(vps) == 1 {
		return vps[0], nil
	}
	return func(resolved value.Value) (bool, error) {
		for _, vp := range vps {
			ok, err := vp(resolved)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}, nil
}

// isOperatorObject reports whether the first key names an operator. When
// it does, a later plain key is rejected as an unknown operator; when it
// does not, the whole object is a literal for $eq.
func isOperatorObject(obj *value.Object) bool {
	keys := obj.Keys()
	return len(keys) > 0 && strings.HasPrefix(keys[0], "$")
}

// eqMatch implements match-mode equality: deep equality against the
// resolved value, a null target also accepting an absent path, and an
// array resolved value matching when any element equals the target.
func eqMatch(resolved, target value.Value) bool {
	if target.IsNull() && resolved.IsNullish() {
		return true
	}
	if value.Equal(resolved, target) {
		return true
	}
	if resolved.IsArray() {
		for _, el := range resolved.Items() {
			if value.Equal(el, target) {
				return true
			}
		}
	}
	return false
}
