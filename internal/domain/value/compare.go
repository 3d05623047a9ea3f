package value

import (
	"math"
	"strings"
)

// typeRank orders variants for cross-type comparison:
// Null < Number < String < Object < Array < Bool. Missing sorts below
// Null so it never outranks a present value.
func typeRank(k Kind) int {
	switch k {
	case KindMissing:
		return 0
	case KindNull:
		return 1
	case KindInt, KindFloat:
		return 2
	case KindString:
		return 3
	case KindObject:
		return 4
	case KindArray:
		return 5
	default: // KindBool
		return 6
	}
}

// Compare imposes the canonical total order used by $cmp, $min, $max and
// the inequality operators. Returns -1, 0, or +1.
func Compare(a, b Value) int {
	ra, rb := typeRank(a.kind), typeRank(b.kind)
	if ra != rb {
		return sign(ra - rb)
	}

	switch {
	case a.IsNumber():
		return compareNumbers(a, b)
	case a.kind == KindString:
		return strings.Compare(a.s, b.s)
	case a.kind == KindBool:
		switch {
		case a.b == b.b:
			return 0
		case b.b:
			return -1
		default:
			return 1
		}
	case a.kind == KindArray:
		return compareArrays(a.arr, b.arr)
	case a.kind == KindObject:
		return compareObjects(a.obj, b.obj)
	default: // null, missing
		return 0
	}
}

// compareNumbers orders the numeric cohort. NaN sorts above every number.
func compareNumbers(a, b Value) int {
	if a.kind == KindInt && b.kind == KindInt {
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		default:
			return 0
		}
	}

	fa, fb := a.Float(), b.Float()
	na, nb := math.IsNaN(fa), math.IsNaN(fb)
	switch {
	case na && nb:
		return 0
	case na:
		return 1
	case nb:
		return -1
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	default:
		return 0
	}
}

func compareArrays(a, b []Value) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return sign(len(a) - len(b))
}

func compareObjects(a, b *Object) int {
	ka, kb := a.Keys(), b.Keys()
	n := len(ka)
	if len(kb) < n {
		n = len(kb)
	}
	for i := 0; i < n; i++ {
		if c := strings.Compare(ka[i], kb[i]); c != 0 {
			return c
		}
		va, _ := a.Get(ka[i])
		vb, _ := b.Get(kb[i])
		if c := Compare(va, vb); c != 0 {
			return c
		}
	}
	return sign(len(ka) - len(kb))
}

// Equal is deep equality. Integers and floats compare as one numeric
// cohort, NaN equals NaN, and object equality ignores key order.
func Equal(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		return compareNumbers(a, b) == 0
	}
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindMissing, KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for _, k := range a.obj.Keys() {
			va, _ := a.obj.Get(k)
			vb, ok := b.obj.Get(k)
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// StrCaseCmp compares two strings with ASCII case folding, returning
// -1, 0, or +1.
func StrCaseCmp(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ca, cb := foldASCII(a[i]), foldASCII(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	return sign(len(a) - len(b))
}

func foldASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
