package value

import (
	"strconv"
	"strings"
)

// Resolve walks a dotted path against v and returns the value found there,
// or Missing. Resolution never mutates the input.
//
// Array handling per segment: a segment that parses as a non-negative
// integer indexes into the array (out of bounds is Missing); any other
// segment fans out, resolving the remaining path against each object
// element and collecting the non-missing results into a new array.
// Elements that are themselves arrays are not traversed implicitly, so
// doubly nested arrays need explicit indices.
func Resolve(v Value, path string) Value {
	if path == "" {
		return v
	}
	return resolve(v, strings.Split(path, "."))
}

func resolve(v Value, segs []string) Value {
	for i, seg := range segs {
		switch v.kind {
		case KindObject:
			field, ok := v.obj.Get(seg)
			if !ok {
				return Missing()
			}
			v = field
		case KindArray:
			if idx, err := strconv.Atoi(seg); err == nil && idx >= 0 {
				if idx >= len(v.arr) {
					return Missing()
				}
				v = v.arr[idx]
				continue
			}
			return fanOut(v.arr, segs[i:])
		default:
			return Missing()
		}
	}
	return v
}

// fanOut applies the remaining path to every object element, gathering
// whatever resolves. The result is always an array, possibly empty.
func fanOut(items []Value, segs []string) Value {
	out := []Value{}
	for _, el := range items {
		if el.kind != KindObject {
			continue
		}
		if r := resolve(el, segs); !r.IsMissing() {
			out = append(out, r)
		}
	}
	return Arr(out...)
}
