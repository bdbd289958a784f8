package wire

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseBytes_Tree(t *testing.T) {
	got, err := ParseBytes([]byte(`{"a":[1,"x",true,null],"b":{"c":2.5}}`), Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[string]any{
		"a": []any{json.Number("1"), "x", true, nil},
		"b": map[string]any{"c": json.Number("2.5")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("diff(-want +got): %s", diff)
	}
}

func TestParseBytes_Limits(t *testing.T) {
	cases := []struct {
		name string
		in   string
		opt  Options
		path string
	}{
		{"depth", `{"a":{"b":{"c":1}}}`, Options{MaxDepth: 2}, "/a/b"},
		{"bytes", `{"a":"0123456789"}`, Options{MaxBytes: 4}, "/"},
		{"duplicate", `{"a":1,"a":2}`, Options{RejectDuplicateKeys: true}, "/a"},
		{"trailing", `{} {}`, Options{}, "/"},
		{"truncated", `{"a":[1,2`, Options{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tc.in), tc.opt)
			var werr *Error
			if !errors.As(err, &werr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if werr.Code != "parse_error" || (tc.path != "" && werr.Path != tc.path) {
				t.Fatalf("got code=%s path=%s (%v)", werr.Code, werr.Path, werr)
			}
		})
	}
}

func TestParseBytes_DuplicateLastWins(t *testing.T) {
	got, err := ParseBytes([]byte(`{"a":1,"a":2}`), Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.(map[string]any)["a"] != json.Number("2") {
		t.Fatalf("last key must win: %v", got)
	}
}

func TestMarshal_SortedKeys(t *testing.T) {
	b, err := Marshal(map[string]any{"b": 1, "a": []any{"x"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"a":["x"],"b":1}` {
		t.Fatalf("got %s", b)
	}
}
