package model_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/typebind/internal/fixture"
	"github.com/reoring/typebind/model"
)

func TestParse_DerivesInheritors(t *testing.T) {
	m := fixture.Schema(t)
	base := fixture.MustEntity(t, m, "Base")
	want := []model.EntityID{"A", "B"}
	if diff := cmp.Diff(want, base.Inheritors); diff != "" {
		t.Fatalf("inheritors diff(-want +got): %s", diff)
	}
	if base.IsConcrete() {
		t.Fatalf("abstract Base must not be concrete")
	}
	if got := fixture.MustEntity(t, m, "C").Extends; got != "B" {
		t.Fatalf("C extends: got %q", got)
	}
	if len(fixture.MustEntity(t, m, "C").Inheritors) != 0 {
		t.Fatalf("leaf must have no inheritors")
	}
}

func TestParse_DerivesImplementors(t *testing.T) {
	doc := `
entities:
  - {id: Named, role: interface}
  - {id: X, implements: [Named]}
  - {id: Y, role: open, implements: [Named]}
  - {id: Z, extends: Y}
`
	m, err := model.Parse([]byte(doc), model.FormatYAML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	named := fixture.MustEntity(t, m, "Named")
	if diff := cmp.Diff([]model.EntityID{"X", "Y"}, named.Implementors); diff != "" {
		t.Fatalf("implementors diff(-want +got): %s", diff)
	}
	if len(named.Inheritors) != 0 {
		t.Fatalf("implements must not create inheritors: %v", named.Inheritors)
	}
	if diff := cmp.Diff([]model.EntityID{"Z"}, fixture.MustEntity(t, m, "Y").Subtypes()); diff != "" {
		t.Fatalf("subtypes diff(-want +got): %s", diff)
	}
	if diff := cmp.Diff([]model.EntityID{"X", "Y"}, named.Subtypes()); diff != "" {
		t.Fatalf("subtypes diff(-want +got): %s", diff)
	}
}

func TestParse_TypeModifiersAndWrappers(t *testing.T) {
	m := fixture.Schema(t)
	w := fixture.MustEntity(t, m, "Widget")

	cases := map[string]string{
		"id":      "String",
		"color":   "Enum<Color>",
		"owner":   "Optional<Dto<User>>",
		"tags":    "Array<String>",
		"props":   "Optional<Map<String, Int>>",
		"parent":  "Optional<Nullable<Dto<Widget>>>",
		"created": "Optional<DateTime>",
		"count":   "Optional<Nullable<Int>>",
	}
	for name, want := range cases {
		f, ok := w.Field(name)
		if !ok {
			t.Fatalf("field %q missing", name)
		}
		if got := m.TypeString(f.Type); got != want {
			t.Fatalf("%s: got %q want %q", name, got, want)
		}
	}
	props, _ := w.Field("props")
	if !model.IsMap(props.Type) {
		t.Fatalf("props must use the map encoding")
	}
}

func TestTypeHelpers(t *testing.T) {
	b := model.BatchOf(model.Dto{ID: "Widget"})
	if b.BatchDataType() != (model.Dto{ID: "Widget"}) {
		t.Fatalf("batch data type: %#v", b.BatchDataType())
	}
	if !b.Field("totalCount").Mods().Nullable {
		t.Fatalf("totalCount must be nullable")
	}
	mod := model.ModOf(model.PrimitiveOf(model.Int))
	if mod.ModSubjectType().Mods().Nullable {
		t.Fatalf("mod subject must strip nullable")
	}
	opt := model.Optional(model.Nullable(model.PrimitiveOf(model.Long)))
	if got := model.StripModifiers(opt).Mods(); got != (model.Modifiers{}) {
		t.Fatalf("strip: %#v", got)
	}
	p := model.TripleOf(model.PrimitiveOf(model.Int), model.PrimitiveOf(model.String), model.PrimitiveOf(model.Boolean))
	if p.ThirdType() != model.PrimitiveOf(model.Boolean) {
		t.Fatalf("third: %#v", p.ThirdType())
	}
}

func TestParse_JSONDocument(t *testing.T) {
	doc := `{"entities":[{"id":"Tag","fields":[{"name":"v","type":{"kind":"pair","first":{"kind":"int"},"second":{"kind":"string","nullable":true}}}]}]}`
	m, err := model.Parse([]byte(doc), model.FormatJSON)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tag, _ := m.EntityByName("Tag")
	f, _ := tag.Field("v")
	if got := m.TypeString(f.Type); got != "Pair<Int, Nullable<String>>" {
		t.Fatalf("got %q", got)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown parent", "entities: [{id: X, extends: Y}]", "unknown parent"},
		{"final parent", "entities: [{id: X}, {id: Y, extends: X}]", "is final"},
		{"unknown target", "entities: [{id: X, fields: [{name: f, type: {kind: dto, target: Nope}}]}]", "unknown entity"},
		{"unknown enum", "entities: [{id: X, fields: [{name: f, type: {kind: enum, target: Nope}}]}]", "unknown enum"},
		{"duplicate field", "entities: [{id: X, fields: [{name: f, type: {kind: int}}, {name: f, type: {kind: int}}]}]", "duplicate field"},
		{"unknown key", "entities: [{id: X, bogus: 1}]", "bogus"},
		{"bad kind", "entities: [{id: X, fields: [{name: f, type: {kind: quux}}]}]", "unknown type kind"},
		{"bad role", "entities: [{id: X, role: weird}]", "unknown hierarchy role"},
		{"implements a class", "entities: [{id: X, role: open}, {id: Y, implements: [X]}]", "is not an interface"},
		{"implements loop", "entities: [{id: I, role: interface, implements: [J]}, {id: J, role: interface, implements: [I]}]", "subtype cycle"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := model.Parse([]byte(tc.doc), model.FormatYAML)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
