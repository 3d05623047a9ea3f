package query

import (
	"fmt"

	"github.com/ccollie/bullmq/internal/domain/value"
)

// matchOps is the match-mode value-predicate registry: each entry compiles
// the argument of one `{path: {$op: arg}}` pair.
var matchOps map[string]func(c *compiler, arg value.Value) (vpred, error)

// populated in init(), rather than via a direct map-literal initializer, to
// avoid an initialization cycle with compileNotMatch -> valuePredicate ->
// matchOps.
func init() {
	matchOps = map[string]func(c *compiler, arg value.Value) (vpred, error){
		"$eq":      compileEqMatch(false),
		"$ne":      compileEqMatch(true),
		"$gt":      compileOrdMatch("$gt", func(c int) bool { return c > 0 }),
		"$gte":     compileOrdMatch("$gte", func(c int) bool { return c >= 0 }),
		"$lt":      compileOrdMatch("$lt", func(c int) bool { return c < 0 }),
		"$lte":     compileOrdMatch("$lte", func(c int) bool { return c <= 0 }),
		"$cmp":     compileOrdMatch("$cmp", func(c int) bool { return c == 0 }),
		"$in":      compileInMatch("$in", false),
		"$nin":     compileInMatch("$nin", true),
		"$exists":  compileExists,
		"$type":    compileTypeMatch,
		"$size":    compileSizeMatch,
		"$all":     compileAllMatch,
		"$mod":     compileModMatch,
		"$matches": compileRegexMatch,
		"$not":     compileNotMatch,
	}
}

func compileEqMatch(negate bool) func(c *compiler, arg value.Value) (vpred, error) {
	return func(_ *compiler, arg value.Value) (vpred, error) {
		return func(resolved value.Value) (bool, error) {
			return eqMatch(resolved, arg) != negate, nil
		}, nil
	}
}

// compileOrdMatch builds the inequality predicates over the canonical
// ordering. A resolved array matches when any element does; a missing
// value never matches.
func compileOrdMatch(op string, want func(int) bool) func(c *compiler, arg value.Value) (vpred, error) {
	return func(_ *compiler, arg value.Value) (vpred, error) {
		return func(resolved value.Value) (bool, error) {
			return ordMatch(resolved, arg, want), nil
		}, nil
	}
}

func ordMatch(resolved, target value.Value, want func(int) bool) bool {
	if resolved.IsMissing() {
		return false
	}
	if resolved.IsArray() && !target.IsArray() {
		for _, el := range resolved.Items() {
			if want(value.Compare(el, target)) {
				return true
			}
		}
		return false
	}
	return want(value.Compare(resolved, target))
}

// compileInMatch builds $in/$nin: element equality against each listed
// value, with a null entry also matching an absent field.
func compileInMatch(name string, negate bool) func(c *compiler, arg value.Value) (vpred, error) {
	return func(_ *compiler, arg value.Value) (vpred, error) {
		if !arg.IsArray() {
			return nil, fmt.Errorf("%s expects an array", name)
		}
		targets := arg.Items()
		return func(resolved value.Value) (bool, error) {
			for _, target := range targets {
				if eqMatch(resolved, target) {
					return !negate, nil
				}
			}
			return negate, nil
		}, nil
	}
}

// compileExists: a truthy argument requires the path to resolve, a falsy
// one requires it to be absent.
func compileExists(_ *compiler, arg value.Value) (vpred, error) {
	want := arg.Truthy()
	return func(resolved value.Value) (bool, error) {
		return !resolved.IsMissing() == want, nil
	}, nil
}

// typeNames is the $type operand vocabulary; "boolean" is an accepted
// alias for "bool".
var typeNames = map[string]string{
	"null":    "null",
	"bool":    "bool",
	"boolean": "bool",
	"number":  "number",
	"string":  "string",
	"array":   "array",
	"object":  "object",
}

func compileTypeMatch(_ *compiler, arg value.Value) (vpred, error) {
	var names []value.Value
	if arg.IsArray() {
		names = arg.Items()
	} else {
		names = []value.Value{arg}
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		if !n.IsString() {
			return nil, fmt.Errorf("$type expects a string or array of strings")
		}
		canonical, ok := typeNames[n.Str()]
		if !ok {
			return nil, fmt.Errorf("unknown type name %q for $type", n.Str())
		}
		want[canonical] = struct{}{}
	}
	return func(resolved value.Value) (bool, error) {
		if resolved.IsMissing() {
			return false, nil
		}
		_, ok := want[resolved.Kind().TypeName()]
		return ok, nil
	}, nil
}

func compileSizeMatch(_ *compiler, arg value.Value) (vpred, error) {
	if arg.Kind() != value.KindInt || arg.Int() < 0 {
		return nil, fmt.Errorf("$size expects a non-negative integer")
	}
	n := int(arg.Int())
	return func(resolved value.Value) (bool, error) {
		return resolved.IsArray() && len(resolved.Items()) == n, nil
	}, nil
}

// compileAllMatch: every listed element must be present in the resolved
// array. An empty list matches nothing.
func compileAllMatch(_ *compiler, arg value.Value) (vpred, error) {
	if !arg.IsArray() {
		return nil, fmt.Errorf("$all expects an array")
	}
	targets := arg.Items()
	return func(resolved value.Value) (bool, error) {
		if !resolved.IsArray() || len(targets) == 0 {
			return false, nil
		}
		for _, target := range targets {
			found := false
			for _, el := range resolved.Items() {
				if value.Equal(el, target) {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		}
		return true, nil
	}, nil
}

// compileModMatch: [divisor, remainder], matching numbers whose truncated
// value satisfies v mod divisor == remainder.
func compileModMatch(_ *compiler, arg value.Value) (vpred, error) {
	items, err := fixedArgs("$mod", arg, 2)
	if err != nil {
		return nil, err
	}
	if !items[0].IsNumber() || !items[1].IsNumber() {
		return nil, fmt.Errorf("$mod expects numeric divisor and remainder")
	}
	divisor, remainder := items[0].Int(), items[1].Int()
	if divisor == 0 {
		return nil, fmt.Errorf("$mod divisor cannot be 0")
	}
	match := func(v value.Value) bool {
		return v.IsNumber() && v.Int()%divisor == remainder
	}
	return func(resolved value.Value) (bool, error) {
		if resolved.IsArray() {
			for _, el := range resolved.Items() {
				if match(el) {
					return true, nil
				}
			}
			return false, nil
		}
		return match(resolved), nil
	}, nil
}

// compileRegexMatch compiles the pattern once, at query-compile time,
// through the shared cache.
func compileRegexMatch(_ *compiler, arg value.Value) (vpred, error) {
	if !arg.IsString() {
		return nil, fmt.Errorf("$matches expects a pattern string")
	}
	re, err := compileRegex(arg.Str())
	if err != nil {
		return nil, err
	}
	match := func(v value.Value) bool {
		return v.IsString() && re.MatchString(v.Str())
	}
	return func(resolved value.Value) (bool, error) {
		if resolved.IsArray() {
			for _, el := range resolved.Items() {
				if match(el) {
					return true, nil
				}
			}
			return false, nil
		}
		return match(resolved), nil
	}, nil
}

// compileNotMatch negates an inner value-predicate document.
func compileNotMatch(c *compiler, arg value.Value) (vpred, error) {
	if !arg.IsObject() || !isOperatorObject(arg.Object()) {
		return nil, fmt.Errorf("$not expects an operator document")
	}
	inner, err := c.valuePredicate("", arg)
	if err != nil {
		return nil, err
	}
	return func(resolved value.Value) (bool, error) {
		ok, err := inner(resolved)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}, nil
}
