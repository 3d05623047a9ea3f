package query

import (
	"fmt"
	"math"

	"github.com/ccollie/bullmq/internal/domain/value"
)

func init() {
	registerExprOps(map[string]exprOp{
		"$add":      variadicNumericOp("$add", addValues),
		"$multiply": variadicNumericOp("$multiply", multiplyValues),
		"$subtract": binaryNumericOp("$subtract", subtractValues),
		"$divide":   binaryNumericOp("$divide", divideValues),
		"$mod":      binaryNumericOp("$mod", modValues),
		"$abs":      unaryNumericOp("$abs", absValue),
		"$ceil":     unaryNumericOp("$ceil", ceilValue),
		"$floor":    unaryNumericOp("$floor", floorValue),
		"$sqrt":     unaryNumericOp("$sqrt", sqrtValue),
		"$round":    placeOp("$round", roundPlace),
		"$trunc":    placeOp("$trunc", truncPlace),
		"$max":      extremumOp("$max", func(c int) bool { return c > 0 }),
		"$min":      extremumOp("$min", func(c int) bool { return c < 0 }),
	})
}

// numOperand normalizes an arithmetic operand: null and missing collapse
// to null (null propagation wins over the type error), anything
// non-numeric is an evaluation error.
func numOperand(op string, v value.Value) (value.Value, bool, error) {
	if v.IsNullish() {
		return value.Null(), false, nil
	}
	if !v.IsNumber() {
		return value.Missing(), false, fmt.Errorf("%s only supports numeric types, got %s", op, v.Kind().TypeName())
	}
	return v, true, nil
}

func variadicNumericOp(op string, fold func(acc, v value.Value) (value.Value, error)) exprOp {
	return func(c *compiler, arg value.Value) (expr, error) {
		args, err := c.nary(op, arg)
		if err != nil {
			return nil, err
		}
		return func(doc value.Value) (value.Value, error) {
			var acc value.Value
			for i, e := range args {
				v, err := e(doc)
				if err != nil {
					return value.Missing(), err
				}
				v, ok, err := numOperand(op, v)
				if err != nil {
					return value.Missing(), err
				}
				if !ok {
					return value.Null(), nil
				}
				if i == 0 {
					acc = v
					continue
				}
				if acc, err = fold(acc, v); err != nil {
					return value.Missing(), err
				}
			}
			if len(args) == 0 {
				return value.Null(), nil
			}
			return acc, nil
		}, nil
	}
}

func binaryNumericOp(op string, apply func(a, b value.Value) (value.Value, error)) exprOp {
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
			va, okA, err := numOperand(op, va)
			if err != nil {
				return value.Missing(), err
			}
			vb, okB, err := numOperand(op, vb)
			if err != nil {
				return value.Missing(), err
			}
			if !okA || !okB {
				return value.Null(), nil
			}
			return apply(va, vb)
		}, nil
	}
}

func unaryNumericOp(op string, apply func(v value.Value) (value.Value, error)) exprOp {
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
			v, ok, err := numOperand(op, v)
			if err != nil {
				return value.Missing(), err
			}
			if !ok {
				return value.Null(), nil
			}
			return apply(v)
		}, nil
	}
}

func bothInts(a, b value.Value) bool {
	return a.Kind() == value.KindInt && b.Kind() == value.KindInt
}

func addValues(a, b value.Value) (value.Value, error) {
	if bothInts(a, b) {
		return value.Integer(a.Int() + b.Int()), nil
	}
	return value.Double(a.Float() + b.Float()), nil
}

func multiplyValues(a, b value.Value) (value.Value, error) {
	if bothInts(a, b) {
		return value.Integer(a.Int() * b.Int()), nil
	}
	return value.Double(a.Float() * b.Float()), nil
}

func subtractValues(a, b value.Value) (value.Value, error) {
	if bothInts(a, b) {
		return value.Integer(a.Int() - b.Int()), nil
	}
	return value.Double(a.Float() - b.Float()), nil
}

// divideValues keeps an integer result when both operands are integers and
// the division is exact; division by zero is an evaluation error.
func divideValues(a, b value.Value) (value.Value, error) {
	if b.Float() == 0 {
		return value.Missing(), fmt.Errorf("$divide by zero")
	}
	if bothInts(a, b) && a.Int()%b.Int() == 0 {
		return value.Integer(a.Int() / b.Int()), nil
	}
	return value.Double(a.Float() / b.Float()), nil
}

func modValues(a, b value.Value) (value.Value, error) {
	if b.Float() == 0 {
		return value.Missing(), fmt.Errorf("$mod by zero")
	}
	if bothInts(a, b) {
		return value.Integer(a.Int() % b.Int()), nil
	}
	return value.Double(math.Mod(a.Float(), b.Float())), nil
}

func absValue(v value.Value) (value.Value, error) {
	if v.Kind() == value.KindInt {
		if i := v.Int(); i < 0 {
			return value.Integer(-i), nil
		}
		return v, nil
	}
	return value.Double(math.Abs(v.Float())), nil
}

func ceilValue(v value.Value) (value.Value, error) {
	if v.Kind() == value.KindInt {
		return v, nil
	}
	return value.Double(math.Ceil(v.Float())), nil
}

func floorValue(v value.Value) (value.Value, error) {
	if v.Kind() == value.KindInt {
		return v, nil
	}
	return value.Double(math.Floor(v.Float())), nil
}

// sqrtValue: NaN stays NaN (distinct from the null an absent operand
// yields); a negative operand also comes back NaN.
func sqrtValue(v value.Value) (value.Value, error) {
	return value.Double(math.Sqrt(v.Float())), nil
}

// placeOp builds $round/$trunc: [value] or [value, place], where a
// negative place shifts to tens, hundreds and so on.
func placeOp(op string, apply func(f float64, place int64) float64) exprOp {
	return func(c *compiler, arg value.Value) (expr, error) {
		if !arg.IsArray() || len(arg.Items()) < 1 || len(arg.Items()) > 2 {
			return nil, fmt.Errorf("%s expression must resolve to array(2)", op)
		}
		items := arg.Items()
		valE, err := c.expr(items[0])
		if err != nil {
			return nil, err
		}
		placeE := literal(value.Integer(0))
		if len(items) == 2 {
			if placeE, err = c.expr(items[1]); err != nil {
				return nil, err
			}
		}
		return func(doc value.Value) (value.Value, error) {
			v, err := valE(doc)
			if err != nil {
				return value.Missing(), err
			}
			v, ok, err := numOperand(op, v)
			if err != nil {
				return value.Missing(), err
			}
			if !ok {
				return value.Null(), nil
			}
			pv, err := placeE(doc)
			if err != nil {
				return value.Missing(), err
			}
			pv, ok, err = numOperand(op, pv)
			if err != nil {
				return value.Missing(), err
			}
			if !ok {
				return value.Null(), nil
			}
			place := pv.Int()

			if v.Kind() == value.KindInt {
				if place >= 0 {
					return v, nil
				}
				return value.Integer(int64(apply(v.Float(), place))), nil
			}
			return value.Double(apply(v.Float(), place)), nil
		}, nil
	}
}

// roundPlace rounds half to even at the given decimal place. A negative
// place scales down first so powers of ten stay exact.
func roundPlace(f float64, place int64) float64 {
	if place < 0 {
		shift := math.Pow(10, float64(-place))
		return math.RoundToEven(f/shift) * shift
	}
	shift := math.Pow(10, float64(place))
	return math.RoundToEven(f*shift) / shift
}

// truncPlace truncates toward zero at the given decimal place.
func truncPlace(f float64, place int64) float64 {
	if place < 0 {
		shift := math.Pow(10, float64(-place))
		return math.Trunc(f/shift) * shift
	}
	shift := math.Pow(10, float64(place))
	return math.Trunc(f*shift) / shift
}

// extremumOp builds $max/$min over the canonical ordering. Null and
// missing operands are ignored; with nothing left the result is null.
func extremumOp(op string, better func(int) bool) exprOp {
	return func(c *compiler, arg value.Value) (expr, error) {
		args, err := c.nary(op, arg)
		if err != nil {
			return nil, err
		}
		return func(doc value.Value) (value.Value, error) {
			best := value.Null()
			found := false
			for _, e := range args {
				v, err := e(doc)
				if err != nil {
					return value.Missing(), err
				}
				if v.IsNullish() {
					continue
				}
				if !found || better(value.Compare(v, best)) {
					best = v
					found = true
				}
			}
			return best, nil
		}, nil
	}
}
