package query

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ccollie/bullmq/internal/domain/value"
)

func init() {
	registerExprOps(map[string]exprOp{
		"$isNumber":  compileIsNumber,
		"$toString":  conversionOp("$toString", toStringValue),
		"$toBool":    conversionOp("$toBool", toBoolValue),
		"$toBoolEx":  conversionOp("$toBoolEx", toBoolExValue),
		"$toLong":    conversionOp("$toLong", toLongValue),
		"$toInt":     conversionOp("$toInt", toLongValue),
		"$toDecimal": conversionOp("$toDecimal", toDecimalValue),
	})
}

func compileIsNumber(c *compiler, arg value.Value) (expr, error) {
	e, err := c.unary("$isNumber", arg)
	if err != nil {
		return nil, err
	}
	return func(doc value.Value) (value.Value, error) {
		v, err := e(doc)
		if err != nil {
			return value.Missing(), err
		}
		return value.Boolean(v.IsNumber()), nil
	}, nil
}

// conversionOp builds the $to* family: null and missing convert to null,
// everything else goes through the per-operator conversion.
func conversionOp(op string, convert func(v value.Value) (value.Value, error)) exprOp {
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
			if v.IsNullish() {
				return value.Null(), nil
			}
			return convert(v)
		}, nil
	}
}

func toStringValue(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindBool:
		return value.Str(strconv.FormatBool(v.Bool())), nil
	case value.KindInt:
		return value.Str(strconv.FormatInt(v.Int(), 10)), nil
	case value.KindFloat:
		return value.Str(strconv.FormatFloat(v.Float(), 'g', -1, 64)), nil
	case value.KindString:
		return v, nil
	default:
		return value.Missing(), fmt.Errorf("$toString does not support %s", v.Kind().TypeName())
	}
}

// toBoolValue treats every string, including the empty one, as true.
// $toBoolEx below is the variant that reads "" and "false" as false.
func toBoolValue(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindBool:
		return v, nil
	case value.KindInt:
		return value.Boolean(v.Int() != 0), nil
	case value.KindFloat:
		return value.Boolean(v.Float() != 0 && !math.IsNaN(v.Float())), nil
	case value.KindString:
		return value.Boolean(true), nil
	default:
		return value.Boolean(true), nil
	}
}

func toBoolExValue(v value.Value) (value.Value, error) {
	if v.IsString() {
		s := v.Str()
		return value.Boolean(s != "" && s != "false"), nil
	}
	return toBoolValue(v)
}

func toLongValue(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindBool:
		if v.Bool() {
			return value.Integer(1), nil
		}
		return value.Integer(0), nil
	case value.KindInt:
		return v, nil
	case value.KindFloat:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return value.Missing(), fmt.Errorf("$toLong cannot convert %v to an integer", f)
		}
		return value.Integer(int64(f)), nil
	case value.KindString:
		i, err := strconv.ParseInt(v.Str(), 10, 64)
		if err != nil {
			return value.Missing(), fmt.Errorf("$toLong cannot parse %q as an integer", v.Str())
		}
		return value.Integer(i), nil
	default:
		return value.Missing(), fmt.Errorf("$toLong does not support %s", v.Kind().TypeName())
	}
}

func toDecimalValue(v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindBool:
		if v.Bool() {
			return value.Double(1), nil
		}
		return value.Double(0), nil
	case value.KindInt, value.KindFloat:
		return value.Double(v.Float()), nil
	case value.KindString:
		f, err := strconv.ParseFloat(v.Str(), 64)
		if err != nil {
			return value.Missing(), fmt.Errorf("$toDecimal cannot parse %q as a number", v.Str())
		}
		return value.Double(f), nil
	default:
		return value.Missing(), fmt.Errorf("$toDecimal does not support %s", v.Kind().TypeName())
	}
}
