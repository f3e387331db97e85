package document

import (
	"encoding/json"
	"reflect"
	"testing"
)

func mustDecode(t *testing.T, s string) *Object {
	t.Helper()
	obj, err := Decode([]byte(s))
	if err != nil {
		t.Fatalf("Decode(%s) error = %v", s, err)
	}
	return obj
}

func TestDecode_PreservesKeyOrder(t *testing.T) {
	obj := mustDecode(t, `{"zeta": 1, "alpha": {"c": 1, "b": 2, "a": 3}, "mid": [1, {"y": 1, "x": 2}]}`)

	if got, want := Keys(obj), []string{"zeta", "alpha", "mid"}; !reflect.DeepEqual(got, want) {
		t.Errorf("top-level keys = %v, want %v", got, want)
	}

	alpha, _ := obj.Get("alpha")
	if got, want := Keys(alpha.(*Object)), []string{"c", "b", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("nested keys = %v, want %v", got, want)
	}

	mid, _ := obj.Get("mid")
	list, ok := mid.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("mid = %#v, want two element list", mid)
	}
	if got, want := Keys(list[1].(*Object)), []string{"y", "x"}; !reflect.DeepEqual(got, want) {
		t.Errorf("object in list keys = %v, want %v", got, want)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"array", `[1,2]`},
		{"scalar", `"hello"`},
		{"truncated", `{"a": `},
		{"garbage", `{not json}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.input)); err == nil {
				t.Errorf("Decode(%q) error = nil, want error", tt.input)
			}
		})
	}
}

func TestDecode_OutOfRangeNumber(t *testing.T) {
	doc, err := Decode([]byte(`{"a": 1e400, "b": 2.5}`))
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}

	a, _ := doc.Get("a")
	if n, ok := a.(json.Number); !ok || n.String() != "1e400" {
		t.Errorf("a = %#v, want json.Number 1e400", a)
	}
	b, _ := doc.Get("b")
	if f, ok := b.(float64); !ok || f != 2.5 {
		t.Errorf("b = %#v, want float64 2.5", b)
	}
}

func TestMerge_ScalarExternalWins(t *testing.T) {
	internal := mustDecode(t, `{"example.com": {"ads": {"action": "warn", "message": "internal"}}}`)
	external := mustDecode(t, `{"example.com": {"ads": {"action": "block_page"}}}`)

	merged := Merge(internal, external)

	domain, _ := merged.Get("example.com")
	ads, _ := domain.(*Object).Get("ads")
	rule := ads.(*Object)

	if action, _ := rule.Get("action"); action != "block_page" {
		t.Errorf("action = %v, want block_page", action)
	}
	if msg, _ := rule.Get("message"); msg != "internal" {
		t.Errorf("message = %v, want internal (untouched by external)", msg)
	}
}

func TestMerge_ListsConcatenate(t *testing.T) {
	internal := mustDecode(t, `{"resourceGroups": {"news": {"members": ["a.com", "b.com"]}}}`)
	external := mustDecode(t, `{"resourceGroups": {"news": {"members": ["c.com"]}}}`)

	merged := Merge(internal, external)

	groups, _ := merged.Get("resourceGroups")
	news, _ := groups.(*Object).Get("news")
	members, _ := news.(*Object).Get("members")

	want := []any{"a.com", "b.com", "c.com"}
	if !reflect.DeepEqual(members, want) {
		t.Errorf("members = %v, want %v", members, want)
	}
}

func TestMerge_KindMismatchExternalWins(t *testing.T) {
	internal := mustDecode(t, `{"a": {"nested": true}, "b": [1], "c": "x"}`)
	external := mustDecode(t, `{"a": "flat", "b": {"k": 1}, "c": [2]}`)

	merged := Merge(internal, external)

	if a, _ := merged.Get("a"); a != "flat" {
		t.Errorf("a = %v, want flat", a)
	}
	if b, _ := merged.Get("b"); Keys(b.(*Object))[0] != "k" {
		t.Errorf("b = %v, want object with k", b)
	}
	if c, _ := merged.Get("c"); !reflect.DeepEqual(c, []any{float64(2)}) {
		t.Errorf("c = %v, want [2]", c)
	}
}

func TestMerge_KeyOrder(t *testing.T) {
	internal := mustDecode(t, `{"example.com": {"b": 1, "a": 2}}`)
	external := mustDecode(t, `{"example.com": {"c": 3, "b": 4}}`)

	merged := Merge(internal, external)
	domain, _ := merged.Get("example.com")

	if got, want := Keys(domain.(*Object)), []string{"b", "a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	internal := mustDecode(t, `{"x": {"list": [1]}}`)
	external := mustDecode(t, `{"x": {"list": [2], "y": 1}}`)

	before, _ := json.Marshal(internal)
	_ = Merge(internal, external)
	after, _ := json.Marshal(internal)

	if string(before) != string(after) {
		t.Errorf("internal mutated: before %s, after %s", before, after)
	}
}

func TestMerge_EmptyAndNil(t *testing.T) {
	internal := mustDecode(t, `{"a": 1}`)

	if got := Merge(internal, New()); got.Len() != 1 {
		t.Errorf("Merge(doc, empty) len = %d, want 1", got.Len())
	}
	if got := Merge(nil, internal); got.Len() != 1 {
		t.Errorf("Merge(nil, doc) len = %d, want 1", got.Len())
	}
	if got := Merge(); !IsEmpty(got) {
		t.Errorf("Merge() = %v, want empty", Keys(got))
	}
}

func TestFromMap(t *testing.T) {
	obj := FromMap(map[string]any{
		"b": map[string]any{"k": []any{map[string]any{"z": 1}}},
		"a": 1,
	}, "b", "a")

	if got, want := Keys(obj), []string{"b", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
	b, _ := obj.Get("b")
	if _, ok := b.(*Object); !ok {
		t.Errorf("nested map not converted, got %T", b)
	}
}
