package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
)

// FromJSON decodes a JSON document into a Value. Decoding goes through the
// token stream so that object key order survives and integers stay
// integers instead of collapsing to float64.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return Missing(), err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Missing(), fmt.Errorf("unexpected trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Missing(), fmt.Errorf("decode json: %w", err)
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Boolean(t), nil
	case string:
		return Str(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Integer(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Missing(), fmt.Errorf("decode number %q: %w", t.String(), err)
		}
		return Double(f), nil
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return Missing(), fmt.Errorf("unexpected delimiter %q", t.String())
		}
	default:
		return Missing(), fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (Value, error) {
	obj := NewObject()
	for {
		tok, err := dec.Token()
		if err != nil {
			return Missing(), fmt.Errorf("decode object: %w", err)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return Obj(obj), nil
		}
		key, ok := tok.(string)
		if !ok {
			return Missing(), fmt.Errorf("object key is not a string: %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return Missing(), err
		}
		obj.Set(key, v)
	}
}

func decodeArray(dec *json.Decoder) (Value, error) {
	items := []Value{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return Missing(), fmt.Errorf("decode array: %w", err)
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			return Arr(items...), nil
		}
		v, err := decodeToken(dec, tok)
		if err != nil {
			return Missing(), err
		}
		items = append(items, v)
	}
}

// MarshalJSON renders v as JSON. Missing and non-finite floats render as
// null so a projected document always serializes.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	appendJSON(&buf, v)
	return buf.Bytes(), nil
}

func appendJSON(buf *bytes.Buffer, v Value) {
	switch v.kind {
	case KindMissing, KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			buf.WriteString("null")
			return
		}
		buf.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		data, _ := json.Marshal(v.s)
		buf.Write(data)
	case KindArray:
		buf.WriteByte('[')
		for i, el := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			appendJSON(buf, el)
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, k := range v.obj.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, _ := json.Marshal(k)
			buf.Write(data)
			buf.WriteByte(':')
			el, _ := v.obj.Get(k)
			appendJSON(buf, el)
		}
		buf.WriteByte('}')
	}
}
