package value

import (
	"math"
	"testing"
)

func TestCompare_CrossTypeOrder(t *testing.T) {
	// Null < Number < String < Object < Array < Bool
	ordered := []Value{
		Null(),
		Integer(9),
		Str("a"),
		Obj(NewObject()),
		Arr(Integer(1)),
		Boolean(false),
	}

	for i := 0; i < len(ordered)-1; i++ {
		if Compare(ordered[i], ordered[i+1]) >= 0 {
			t.Errorf("Compare(%v, %v) >= 0", ordered[i], ordered[i+1])
		}
		if Compare(ordered[i+1], ordered[i]) <= 0 {
			t.Errorf("Compare(%v, %v) <= 0", ordered[i+1], ordered[i])
		}
	}
}

func TestCompare_Numbers(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"int lt int", Integer(1), Integer(2), -1},
		{"int eq float", Integer(3), Double(3.0), 0},
		{"float gt int", Double(3.5), Integer(3), 1},
		{"NaN above number", Double(math.NaN()), Double(1e300), 1},
		{"number below NaN", Integer(0), Double(math.NaN()), -1},
		{"NaN eq NaN", Double(math.NaN()), Double(math.NaN()), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompare_Antisymmetric(t *testing.T) {
	vals := []Value{
		Null(), Integer(-4), Double(2.5), Str("zz"),
		Arr(Integer(1), Integer(2)), Boolean(true),
	}
	for _, a := range vals {
		for _, b := range vals {
			if Compare(a, b) != -Compare(b, a) {
				t.Errorf("Compare(%v,%v) != -Compare(%v,%v)", a, b, b, a)
			}
		}
	}
}

func TestCompare_Arrays(t *testing.T) {
	a := Arr(Integer(1), Integer(2))
	b := Arr(Integer(1), Integer(3))
	c := Arr(Integer(1), Integer(2), Integer(0))

	if Compare(a, b) != -1 {
		t.Error("elementwise compare failed")
	}
	if Compare(c, a) != 1 {
		t.Error("longer array with equal prefix should sort after")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"int float cohort", `3`, `3.0`, true},
		{"strings", `"a"`, `"a"`, true},
		{"null null", `null`, `null`, true},
		{"null vs zero", `null`, `0`, false},
		{"arrays ordered", `[1,2]`, `[1,2]`, true},
		{"arrays order matters", `[1,2]`, `[2,1]`, false},
		{"objects order insensitive", `{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
		{"objects differ", `{"a":1}`, `{"a":2}`, false},
		{"nested", `{"a":[{"b":1.0}]}`, `{"a":[{"b":1}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := mustParse(t, tt.a), mustParse(t, tt.b)
			if got := Equal(a, b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
			if got := Equal(b, a); got != tt.want {
				t.Errorf("Equal reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEqual_NullVsMissing(t *testing.T) {
	if Equal(Null(), Missing()) {
		t.Error("null must not deep-equal missing")
	}
	if !Equal(Missing(), Missing()) {
		t.Error("missing equals missing")
	}
}

func TestStrCaseCmp(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"hello", "HELLO", 0},
		{"abc", "abd", -1},
		{"B", "a", 1},
		{"abc", "ab", 1},
		{"", "", 0},
	}
	for _, tt := range tests {
		if got := StrCaseCmp(tt.a, tt.b); got != tt.want {
			t.Errorf("StrCaseCmp(%q,%q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
