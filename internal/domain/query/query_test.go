package query

import (
	"strings"
	"testing"

	"github.com/ccollie/bullmq/internal/domain/value"
)

func parse(t *testing.T, src string) value.Value {
	t.Helper()
	v, err := value.FromJSON([]byte(src))
	if err != nil {
		t.Fatalf("parse %s: %v", src, err)
	}
	return v
}

func mustCompile(t *testing.T, src string) *Query {
	t.Helper()
	q, err := Compile(parse(t, src))
	if err != nil {
		t.Fatalf("compile %s: %v", src, err)
	}
	return q
}

func matches(t *testing.T, doc value.Value, querySrc string) bool {
	t.Helper()
	ok, err := mustCompile(t, querySrc).Match(doc)
	if err != nil {
		t.Fatalf("match %s: %v", querySrc, err)
	}
	return ok
}

func evalExpr(t *testing.T, doc value.Value, exprSrc string) value.Value {
	t.Helper()
	e, err := CompileExpr(parse(t, exprSrc))
	if err != nil {
		t.Fatalf("compile expr %s: %v", exprSrc, err)
	}
	v, err := e.Eval(doc)
	if err != nil {
		t.Fatalf("eval %s: %v", exprSrc, err)
	}
	return v
}

func wantEval(t *testing.T, doc value.Value, exprSrc, wantSrc string) {
	t.Helper()
	got := evalExpr(t, doc, exprSrc)
	want := parse(t, wantSrc)
	if !value.Equal(got, want) {
		t.Errorf("eval %s = %v, want %v", exprSrc, got, want)
	}
}

func wantCompileError(t *testing.T, querySrc, fragment string) {
	t.Helper()
	_, err := Compile(parse(t, querySrc))
	if err == nil {
		t.Fatalf("compile %s: expected error", querySrc)
	}
	if !strings.Contains(err.Error(), fragment) {
		t.Errorf("compile %s: error %q does not contain %q", querySrc, err, fragment)
	}
}

func TestCompile_RejectsNonObject(t *testing.T) {
	for _, src := range []string{`[]`, `"x"`, `5`, `null`} {
		if _, err := Compile(parse(t, src)); err == nil {
			t.Errorf("compile %s: expected error", src)
		}
	}
}

func TestCompile_UnknownOperators(t *testing.T) {
	wantCompileError(t, `{"$bogus": []}`, "unknown top-level operator $bogus")
	wantCompileError(t, `{"f": {"$bogus": 1}}`, "unknown operator $bogus")
	wantCompileError(t, `{"$expr": {"$bogus": []}}`, "unknown operator $bogus")
}

func TestCompile_ArityErrors(t *testing.T) {
	wantCompileError(t, `{"$expr": {"$ifNull": ["$a"]}}`, "$ifNull expression must resolve to array(2)")
	wantCompileError(t, `{"$expr": {"$ifNull": ["$a", 1, 2]}}`, "$ifNull expression must resolve to array(2)")
	wantCompileError(t, `{"$expr": {"$subtract": [1]}}`, "$subtract expression must resolve to array(2)")
	wantCompileError(t, `{"f": {"$mod": [3]}}`, "$mod expression must resolve to array(2)")
}

func TestCompile_DepthCap(t *testing.T) {
	src := strings.Repeat(`{"$not": {"$not": `, 40) + `{"$gt": 1}` + strings.Repeat(`}}`, 40)
	wantCompileError(t, `{"f": `+src+`}`, "maximum nesting depth")
}

func TestQuery_Idempotent(t *testing.T) {
	doc := parse(t, `{"data": {"n": 3}}`)
	q := mustCompile(t, `{"data.n": {"$gt": 2}}`)
	for i := 0; i < 3; i++ {
		ok, err := q.Match(doc)
		if err != nil || !ok {
			t.Fatalf("run %d: ok=%v err=%v", i, ok, err)
		}
	}
}
