package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reoring/typebind"
	"github.com/reoring/typebind/engine"
	"github.com/reoring/typebind/internal/fixture"
	"github.com/reoring/typebind/resolve"
)

func userCodec(t *testing.T) *engine.Codec {
	t.Helper()
	r, _ := resolve.Resolve(fixture.Schema(t))
	e, err := engine.New(r)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	c, err := e.EntityCodec("User")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return c
}

func TestDecodeInput(t *testing.T) {
	c := userCodec(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	if err := os.WriteFile(good, []byte(`{"id":"u1","name":"a","manager":null}`), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err := decodeInput(c, good, nil, typebind.ParseOpt{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.(*typebind.Object).Fields["id"] != "u1" {
		t.Fatalf("got %#v", v)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"id":"u1"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = decodeInput(c, bad, nil, typebind.ParseOpt{})
	if typebind.IssueCode(err) != typebind.CodeMissingRequiredField {
		t.Fatalf("want missing_required_field, got %v", err)
	}

	if _, err := decodeInput(c, filepath.Join(dir, "missing.json"), nil, typebind.ParseOpt{}); err == nil {
		t.Fatalf("expected error for missing payload")
	}
}
