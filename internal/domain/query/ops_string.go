package query

import (
	"fmt"
	"strings"

	"github.com/ccollie/bullmq/internal/domain/value"
)

func init() {
	registerExprOps(map[string]exprOp{
		"$toLower":     unaryStringOp("$toLower", strings.ToLower),
		"$toUpper":     unaryStringOp("$toUpper", strings.ToUpper),
		"$concat":      compileConcat,
		"$split":       compileSplit,
		"$substr":      substrOp("$substr"),
		"$substrBytes": substrOp("$substrBytes"),
		"$strLenBytes": compileStrLenBytes,
		"$strcasecmp":  compileStrCaseCmp,
		"$contains":    stringPairOp("$contains", strings.Contains),
		"$startsWith":  stringPairOp("$startsWith", strings.HasPrefix),
		"$endsWith":    stringPairOp("$endsWith", strings.HasSuffix),
		"$trim":        trimOp("$trim", strings.Trim),
		"$ltrim":       trimOp("$ltrim", strings.TrimLeft),
		"$rtrim":       trimOp("$rtrim", strings.TrimRight),
	})
}

const asciiWhitespace = " \t\n\r\v\f"

// strOperand normalizes a string operand: null and missing propagate as
// null, any other non-string is an evaluation error.
func strOperand(op string, v value.Value) (string, bool, error) {
	if v.IsNullish() {
		return "", false, nil
	}
	if !v.IsString() {
		return "", false, fmt.Errorf("%s only supports strings, got %s", op, v.Kind().TypeName())
	}
	return v.Str(), true, nil
}

func unaryStringOp(op string, apply func(string) string) exprOp {
	return func(c *compiler, arg value.Value) (expr, error) {
		e, err := c.unary(op, arg)
		if err != nil {
			return nil, err
		}
		return func(doc value.Value) (value.Value, error) {
			v, err := e(doc)
			if err != nil {
				return value.Missing(), err
			}
			s, ok, err := strOperand(op, v)
			if err != nil {
				return value.Missing(), err
			}
			if !ok {
				return value.Null(), nil
			}
			return value.Str(apply(s)), nil
		}, nil
	}
}

func compileConcat(c *compiler, arg value.Value) (expr, error) {
	args, err := c.nary("$concat", arg)
	if err != nil {
		return nil, err
	}
	return func(doc value.Value) (value.Value, error) {
		var b strings.Builder
		for _, e := range args {
			v, err := e(doc)
			if err != nil {
				return value.Missing(), err
			}
			s, ok, err := strOperand("$concat", v)
			if err != nil {
				return value.Missing(), err
			}
			if !ok {
				return value.Null(), nil
			}
			b.WriteString(s)
		}
		return value.Str(b.String()), nil
	}, nil
}

// $split cuts the whole string on every occurrence of the separator; a
// separator that never occurs yields a one-element array.
func compileSplit(c *compiler, arg value.Value) (expr, error) {
	a, b, err := c.binary("$split", arg)
	if err != nil {
		return nil, err
	}
	return func(doc value.Value) (value.Value, error) {
		va, vb, err := evalPair(doc, a, b)
		if err != nil {
			return value.Missing(), err
		}
		s, okS, err := strOperand("$split", va)
		if err != nil {
			return value.Missing(), err
		}
		sep, okSep, err := strOperand("$split", vb)
		if err != nil {
			return value.Missing(), err
		}
		if !okS || !okSep {
			return value.Null(), nil
		}
		if sep == "" {
			return value.Missing(), fmt.Errorf("$split requires a non-empty separator")
		}
		parts := strings.Split(s, sep)
		out := make([]value.Value, len(parts))
		for i, p := range parts {
			out[i] = value.Str(p)
		}
		return value.Arr(out...), nil
	}, nil
}

// substrOp builds $substr/$substrBytes: [string, start, length] with byte
// indexing. A negative start yields the empty string; a negative length
// takes everything from start to the end.
func substrOp(op string) exprOp {
	return func(c *compiler, arg value.Value) (expr, error) {
		items, err := fixedArgs(op, arg, 3)
		if err != nil {
			return nil, err
		}
		strE, err := c.expr(items[0])
		if err != nil {
			return nil, err
		}
		startE, err := c.expr(items[1])
		if err != nil {
			return nil, err
		}
		lenE, err := c.expr(items[2])
		if err != nil {
			return nil, err
		}
		return func(doc value.Value) (value.Value, error) {
			v, err := strE(doc)
			if err != nil {
				return value.Missing(), err
			}
			s, ok, err := strOperand(op, v)
			if err != nil {
				return value.Missing(), err
			}
			if !ok {
				return value.Null(), nil
			}
			start, err := intArg(doc, op, startE)
			if err != nil {
				return value.Missing(), err
			}
			length, err := intArg(doc, op, lenE)
			if err != nil {
				return value.Missing(), err
			}

			if start < 0 || start >= int64(len(s)) {
				return value.Str(""), nil
			}
			end := int64(len(s))
			if length >= 0 && start+length < end {
				end = start + length
			}
			return value.Str(s[start:end]), nil
		}, nil
	}
}

func compileStrLenBytes(c *compiler, arg value.Value) (expr, error) {
	e, err := c.unary("$strLenBytes", arg)
	if err != nil {
		return nil, err
	}
	return func(doc value.Value) (value.Value, error) {
		v, err := e(doc)
		if err != nil {
			return value.Missing(), err
		}
		s, ok, err := strOperand("$strLenBytes", v)
		if err != nil {
			return value.Missing(), err
		}
		if !ok {
			return value.Null(), nil
		}
		return value.Integer(int64(len(s))), nil
	}, nil
}

func compileStrCaseCmp(c *compiler, arg value.Value) (expr, error) {
	a, b, err := c.binary("$strcasecmp", arg)
	if err != nil {
		return nil, err
	}
	return func(doc value.Value) (value.Value, error) {
		va, vb, err := evalPair(doc, a, b)
		if err != nil {
			return value.Missing(), err
		}
		sa, okA, err := strOperand("$strcasecmp", va)
		if err != nil {
			return value.Missing(), err
		}
		sb, okB, err := strOperand("$strcasecmp", vb)
		if err != nil {
			return value.Missing(), err
		}
		if !okA || !okB {
			return value.Null(), nil
		}
		return value.Integer(int64(value.StrCaseCmp(sa, sb))), nil
	}, nil
}

func stringPairOp(op string, apply func(s, arg string) bool) exprOp {
	return func(c *compiler, arg value.Value) (expr, error) {
		a, b, err := c.binary(op, arg)
		if err != nil {
			return nil, err
		}
		return func(doc value.Value) (value.Value, error) {
			va, vb, err := evalPair(doc, a, b)
			if err != nil {
				return value.Missing(), err
			}
			sa, okA, err := strOperand(op, va)
			if err != nil {
				return value.Missing(), err
			}
			sb, okB, err := strOperand(op, vb)
			if err != nil {
				return value.Missing(), err
			}
			if !okA || !okB {
				return value.Null(), nil
			}
			return value.Boolean(apply(sa, sb)), nil
		}, nil
	}
}

// trimOp builds $trim/$ltrim/$rtrim. The argument is either a bare
// expression or {input, chars}; chars is a set of characters to strip and
// defaults to ASCII whitespace.
func trimOp(op string, apply func(s, cutset string) string) exprOp {
	return func(c *compiler, arg value.Value) (expr, error) {
		inputV := arg
		var charsE expr
		if arg.IsArray() && len(arg.Items()) == 1 {
			inputV = arg.Items()[0]
		}
		if arg.IsObject() {
			obj := arg.Object()
			if in, ok := obj.Get("input"); ok {
				inputV = in
				if chars, ok := obj.Get("chars"); ok {
					var err error
					if charsE, err = c.expr(chars); err != nil {
						return nil, err
					}
				}
			}
		}
		inputE, err := c.expr(inputV)
		if err != nil {
			return nil, err
		}
		return func(doc value.Value) (value.Value, error) {
			v, err := inputE(doc)
			if err != nil {
				return value.Missing(), err
			}
			s, ok, err := strOperand(op, v)
			if err != nil {
				return value.Missing(), err
			}
			if !ok {
				return value.Null(), nil
			}
			cutset := asciiWhitespace
			if charsE != nil {
				cv, err := charsE(doc)
				if err != nil {
					return value.Missing(), err
				}
				cs, ok, err := strOperand(op, cv)
				if err != nil {
					return value.Missing(), err
				}
				if ok {
					cutset = cs
				}
			}
			return value.Str(apply(s, cutset)), nil
		}, nil
	}
}

// intArg evaluates an expression expected to yield an integer-valued number.
func intArg(doc value.Value, op string, e expr) (int64, error) {
	v, err := e(doc)
	if err != nil {
		return 0, err
	}
	if !v.IsNumber() {
		return 0, fmt.Errorf("%s expects a numeric argument, got %s", op, v.Kind().TypeName())
	}
	return v.Int(), nil
}
