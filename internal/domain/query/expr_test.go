package query

import (
	"testing"

	"github.com/ccollie/bullmq/internal/domain/value"
)

// The four-item office-supplies inventory from the aggregation docs.
var inventorySrc = []string{
	`{"_id": 1, "data": {"item": "binder", "qty": 100, "price": 12}}`,
	`{"_id": 2, "data": {"item": "notebook", "qty": 200, "price": 20}}`,
	`{"_id": 3, "data": {"item": "pencil", "qty": 50, "price": 6}}`,
	`{"_id": 4, "data": {"item": "eraser", "qty": 150, "price": 3}}`,
}

func TestExpr_CondOverInventory(t *testing.T) {
	q := mustCompile(t, `{"$expr": {"$lt": [
		{"$cond": {
			"if": {"$gte": ["$data.qty", 100]},
			"then": {"$divide": ["$data.price", 2]},
			"else": {"$divide": ["$data.price", 4]}
		}},
		5
	]}}`)

	var got []int64
	for _, src := range inventorySrc {
		doc := parse(t, src)
		ok, err := q.Match(doc)
		if err != nil {
			t.Fatalf("match: %v", err)
		}
		if ok {
			got = append(got, value.Resolve(doc, "_id").Int())
		}
	}
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("matched ids = %v, want [3 4]", got)
	}
}

func TestExpr_CondArrayForm(t *testing.T) {
	doc := parse(t, `{"data": {"qty": 150}}`)
	wantEval(t, doc, `{"$cond": [{"$gte": ["$data.qty", 100]}, "plenty", "scarce"]}`, `"plenty"`)
	wantCompileError(t, `{"$expr": {"$cond": [1, 2]}}`, "$cond expression must resolve to array(3)")
}

func TestExpr_Switch(t *testing.T) {
	doc := parse(t, `{"data": {"score": 71}}`)
	src := `{"$switch": {
		"branches": [
			{"case": {"$gte": ["$data.score", 90]}, "then": "excellent"},
			{"case": {"$gte": ["$data.score", 70]}, "then": "pass"}
		],
		"default": "fail"
	}}`
	wantEval(t, doc, src, `"pass"`)

	low := parse(t, `{"data": {"score": 20}}`)
	e, err := CompileExpr(parse(t, src))
	if err != nil {
		t.Fatal(err)
	}
	v, err := e.Eval(low)
	if err != nil {
		t.Fatal(err)
	}
	if !value.Equal(v, value.Str("fail")) {
		t.Errorf("default branch = %v", v)
	}
}

func TestExpr_SwitchNoDefaultFails(t *testing.T) {
	e, err := CompileExpr(parse(t, `{"$switch": {"branches": [
		{"case": false, "then": 1}
	]}}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Eval(parse(t, `{}`)); err == nil {
		t.Error("expected eval error for $switch with no match and no default")
	}
}

func TestExpr_IfNull(t *testing.T) {
	doc := parse(t, `{"data": {"a": null, "b": 7}}`)
	wantEval(t, doc, `{"$ifNull": ["$data.a", "fallback"]}`, `"fallback"`)
	wantEval(t, doc, `{"$ifNull": ["$data.missing", "fallback"]}`, `"fallback"`)
	wantEval(t, doc, `{"$ifNull": ["$data.b", "fallback"]}`, `7`)
}

func TestExpr_FieldRefsAndLiterals(t *testing.T) {
	doc := parse(t, `{"name": "resize", "data": {"w": 100}}`)
	wantEval(t, doc, `"$name"`, `"resize"`)
	wantEval(t, doc, `"name"`, `"name"`)
	wantEval(t, doc, `{"$literal": "$name"}`, `"$name"`)
	wantEval(t, doc, `["$data.w", 2]`, `[100, 2]`)
	wantEval(t, doc, `{"width": "$data.w"}`, `{"width": 100}`)

	if v := evalExpr(t, doc, `"$data.h"`); !v.IsMissing() {
		t.Errorf("unresolved ref = %v, want missing", v)
	}
}

func TestExpr_Comparisons(t *testing.T) {
	doc := parse(t, `{"data": {"n": 5, "s": "abc", "xs": [1, 2]}}`)
	tests := []struct {
		expr string
		want string
	}{
		{`{"$eq": ["$data.n", 5]}`, `true`},
		{`{"$eq": ["$data.n", 5.0]}`, `true`},
		{`{"$ne": ["$data.n", 4]}`, `true`},
		{`{"$gt": ["$data.n", 4]}`, `true`},
		{`{"$lte": ["$data.n", 5]}`, `true`},
		{`{"$lt": ["$data.s", "abd"]}`, `true`},
		{`{"$eq": ["$data.xs", [1, 2]]}`, `true`},
		{`{"$cmp": ["$data.n", 9]}`, `-1`},
		{`{"$cmp": [9, "$data.n"]}`, `1`},
		{`{"$cmp": ["$data.n", 5]}`, `0`},
		{`{"$lt": [null, 0]}`, `true`},
		{`{"$lt": ["abc", true]}`, `true`},
		{`{"$in": [2, "$data.xs"]}`, `true`},
		{`{"$in": [3, "$data.xs"]}`, `false`},
		{`{"$nin": [3, "$data.xs"]}`, `true`},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			wantEval(t, doc, tc.expr, tc.want)
		})
	}
}

func TestExpr_MissingComparisonIsNull(t *testing.T) {
	doc := parse(t, `{"data": {}}`)
	for _, src := range []string{
		`{"$eq": ["$data.nope", 1]}`,
		`{"$lt": ["$data.nope", 1]}`,
		`{"$cmp": ["$data.nope", 1]}`,
	} {
		if v := evalExpr(t, doc, src); !v.IsNull() {
			t.Errorf("eval %s = %v, want null", src, v)
		}
	}
}

func TestExpr_Logical(t *testing.T) {
	doc := parse(t, `{"data": {"a": 1, "b": 0}}`)
	tests := []struct {
		expr string
		want string
	}{
		{`{"$and": ["$data.a", true]}`, `true`},
		{`{"$and": ["$data.a", "$data.b"]}`, `false`},
		{`{"$and": []}`, `true`},
		{`{"$or": ["$data.b", false]}`, `false`},
		{`{"$or": ["$data.b", "$data.a"]}`, `true`},
		{`{"$or": []}`, `false`},
		{`{"$not": ["$data.b"]}`, `true`},
		{`{"$not": ["$data.a"]}`, `false`},
		{`{"$not": [{"$not": ["$data.a"]}]}`, `true`},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			wantEval(t, doc, tc.expr, tc.want)
		})
	}
}

func TestExpr_TruthinessInMatch(t *testing.T) {
	doc := parse(t, `{"data": {"count": 3}}`)
	if !matches(t, doc, `{"$expr": "$data.count"}`) {
		t.Error("non-zero count is truthy")
	}
	if matches(t, doc, `{"$expr": "$data.absent"}`) {
		t.Error("missing ref is falsy")
	}
}

func TestExpr_ObjectWithMultipleOperatorKeysRejected(t *testing.T) {
	wantCompileError(t, `{"$expr": {"$add": [1], "$multiply": [2]}}`,
		"exactly one operator field")
}

func TestExpr_EvalErrorDoesNotPoisonQuery(t *testing.T) {
	q := mustCompile(t, `{"$expr": {"$divide": ["$data.price", "$data.qty"]}}`)

	bad := parse(t, `{"data": {"price": 10, "qty": 0}}`)
	if _, err := q.Match(bad); err == nil {
		t.Fatal("expected divide-by-zero error")
	}

	good := parse(t, `{"data": {"price": 10, "qty": 2}}`)
	ok, err := q.Match(good)
	if err != nil || !ok {
		t.Fatalf("query should still work after an eval error: ok=%v err=%v", ok, err)
	}
}
