package resolve_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/typebind/internal/fixture"
	"github.com/reoring/typebind/model"
	"github.com/reoring/typebind/resolve"
)

type row struct {
	Name       string
	Provenance resolve.Provenance
	Ordinal    int
}

func rows(ds []*resolve.Descriptor) []row {
	out := make([]row, len(ds))
	for i, d := range ds {
		out[i] = row{d.Name(), d.Provenance, d.Ordinal}
	}
	return out
}

func TestResolve_OrdinalStabilityAcrossThreeLevels(t *testing.T) {
	r, diags := resolve.Resolve(fixture.Schema(t))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	cases := map[model.EntityID][]row{
		"Root": {
			{"w", resolve.OwnFinal, 0},
			{"x", resolve.OwnOpen, 1},
		},
		"Mid": {
			{"m", resolve.OwnFinal, 0},
			{"x", resolve.Overrides, 1},
			{"w", resolve.Inherited, 0},
		},
		"Leaf": {
			{"l", resolve.OwnFinal, 0},
			{"m", resolve.Inherited, 0},
			{"x", resolve.Inherited, 1},
			{"w", resolve.Inherited, 0},
		},
	}
	for id, want := range cases {
		if diff := cmp.Diff(want, rows(r.Fields(id))); diff != "" {
			t.Fatalf("%s diff(-want +got): %s", id, diff)
		}
	}

	rootX, _ := r.Field("Root", "x")
	for _, id := range []model.EntityID{"Mid", "Leaf"} {
		d, ok := r.Field(id, "x")
		if !ok {
			t.Fatalf("%s: x missing", id)
		}
		if o := r.Origin(d.ID); o.ID != rootX.ID {
			t.Fatalf("%s: x origin = %s/%d, want Root", id, o.Entity, o.ID)
		}
	}
}

func TestResolve_OverrideOfOverrideRecursesToOrigin(t *testing.T) {
	doc := `
entities:
  - {id: R, role: open, fields: [{name: a, type: {kind: int}}, {name: b, type: {kind: int}}]}
  - {id: M, role: open, extends: R, fields: [{name: b, type: {kind: int}}]}
  - {id: L, extends: M, fields: [{name: z, type: {kind: int}}, {name: b, type: {kind: int}}]}
`
	m, err := model.Parse([]byte(doc), model.FormatYAML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r, _ := resolve.Resolve(m)
	lb, _ := r.Field("L", "b")
	if lb.Provenance != resolve.Overrides || lb.Ordinal != 1 {
		t.Fatalf("L.b: %v ordinal %d", lb.Provenance, lb.Ordinal)
	}
	if r.Descriptor(lb.Ref).Entity != "R" {
		t.Fatalf("L.b must reference R's descriptor, got %s", r.Descriptor(lb.Ref).Entity)
	}
	mb, _ := r.Field("M", "b")
	if mb.Provenance != resolve.Overrides {
		t.Fatalf("M.b stays Overrides, got %v", mb.Provenance)
	}
	var slots []string
	for _, d := range r.AncestorSlots("L") {
		slots = append(slots, d.Name())
	}
	if diff := cmp.Diff([]string{"a", "b"}, slots); diff != "" {
		t.Fatalf("slots diff(-want +got): %s", diff)
	}
}

func TestResolve_ChildClassNamesAndVariants(t *testing.T) {
	r, _ := resolve.Resolve(fixture.Schema(t))
	if diff := cmp.Diff([]string{"A", "B", "C"}, r.ChildClassNames("Base")); diff != "" {
		t.Fatalf("Base children diff(-want +got): %s", diff)
	}
	if diff := cmp.Diff([]string{"C"}, r.ChildClassNames("B")); diff != "" {
		t.Fatalf("B children diff(-want +got): %s", diff)
	}
	if len(r.ChildClassNames("C")) != 0 || r.HasChildClass("B", "A") {
		t.Fatalf("leaf/sibling names must not appear")
	}
	if diff := cmp.Diff([]model.EntityID{"A", "B", "C"}, r.Variants("Base")); diff != "" {
		t.Fatalf("Base variants diff(-want +got): %s", diff)
	}
	if diff := cmp.Diff([]model.EntityID{"Root", "Mid", "Leaf"}, r.Variants("Root")); diff != "" {
		t.Fatalf("Root variants diff(-want +got): %s", diff)
	}
	if diff := cmp.Diff([]string{"id", "label", "a", "b", "c"}, r.HierarchyFieldNames("Base")); diff != "" {
		t.Fatalf("hierarchy names diff(-want +got): %s", diff)
	}
}

func TestResolve_DiamondThroughInterfacesIsReported(t *testing.T) {
	doc := `
entities:
  - {id: Named, role: interface, fields: [{name: title, type: {kind: string}}]}
  - {id: Titled, role: interface, fields: [{name: title, type: {kind: string}}]}
  - {id: Doc, implements: [Named, Titled], fields: [{name: body, type: {kind: string}}]}
  - {id: Page, implements: [Named, Titled], fields: [{name: title, type: {kind: string}}]}
`
	m, err := model.Parse([]byte(doc), model.FormatYAML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, diags := resolve.Resolve(m)
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", diags)
	}
	d := diags[0]
	if d.Code != resolve.CodeAmbiguousOverride || d.Entity != "Doc" || d.Field != "title" {
		t.Fatalf("unexpected diagnostic: %+v", d)
	}
	if diff := cmp.Diff([]model.EntityID{"Named", "Titled"}, d.Origins); diff != "" {
		t.Fatalf("origins diff(-want +got): %s", diff)
	}
}

func TestBuildManifest(t *testing.T) {
	m := fixture.Schema(t)
	r, diags := resolve.Resolve(m)
	mf := resolve.BuildManifest(r, diags)
	var mid *resolve.EntityManifest
	for i := range mf.Entities {
		if mf.Entities[i].Name == "Mid" {
			mid = &mf.Entities[i]
		}
	}
	if mid == nil {
		t.Fatalf("Mid missing from manifest")
	}
	want := resolve.DescriptorManifest{Name: "x", Type: "Int", Provenance: "Overrides", Origin: "Root", Ordinal: 1}
	if diff := cmp.Diff(want, mid.Fields[1]); diff != "" {
		t.Fatalf("diff(-want +got): %s", diff)
	}
	b, err := mf.JSON()
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(string(b), `"childClassNames"`) {
		t.Fatalf("manifest JSON lacks childClassNames: %s", b)
	}
}

func TestResolve_ExtensionFlagFollowsDeclaration(t *testing.T) {
	doc := `
entities:
  - id: P
    role: open
    fields:
      - {name: core, type: {kind: string}}
      - {name: ext, type: {kind: string}, extension: true}
  - id: Q
    role: open
    extends: P
    fields: [{name: q, type: {kind: int}}]
  - id: R
    extends: Q
    fields: [{name: ext, type: {kind: string}}]
`
	m, err := model.Parse([]byte(doc), model.FormatYAML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r, _ := resolve.Resolve(m)
	cases := []struct {
		entity model.EntityID
		field  string
		prov   resolve.Provenance
		ext    bool
	}{
		{"P", "ext", resolve.OwnOpen, true},
		{"P", "core", resolve.OwnFinal, false},
		{"Q", "ext", resolve.Inherited, true},
		{"Q", "core", resolve.Inherited, false},
		{"R", "ext", resolve.Overrides, false},
		{"R", "core", resolve.Inherited, false},
	}
	for _, tc := range cases {
		d, ok := r.Field(tc.entity, tc.field)
		if !ok {
			t.Fatalf("%s.%s missing", tc.entity, tc.field)
		}
		if d.Provenance != tc.prov || d.IsExtension != tc.ext {
			t.Fatalf("%s.%s: got %s ext=%v, want %s ext=%v", tc.entity, tc.field, d.Provenance, d.IsExtension, tc.prov, tc.ext)
		}
	}
	mf := resolve.BuildManifest(r, nil)
	for _, em := range mf.Entities {
		if em.Name != "Q" {
			continue
		}
		for _, f := range em.Fields {
			if f.Name == "ext" && !f.IsExtension {
				t.Fatalf("manifest drops isExtension of an inherited field")
			}
		}
	}
}

func TestResolve_InterfaceImplementorsAreDescendants(t *testing.T) {
	doc := `
entities:
  - {id: Named, role: interface, fields: [{name: name, type: {kind: string}}]}
  - {id: X, implements: [Named], fields: [{name: name, type: {kind: string}}, {name: x, type: {kind: int}}]}
  - {id: Y, role: open, implements: [Named], fields: [{name: name, type: {kind: string}}]}
  - {id: Z, extends: Y, fields: [{name: x, type: {kind: string}}]}
`
	m, err := model.Parse([]byte(doc), model.FormatYAML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r, _ := resolve.Resolve(m)
	if diff := cmp.Diff([]string{"X", "Y", "Z"}, r.ChildClassNames("Named")); diff != "" {
		t.Fatalf("childClassNames diff(-want +got): %s", diff)
	}
	if !r.HasChildClass("Named", "Z") || r.HasChildClass("X", "Z") {
		t.Fatalf("closure must follow implementors and then inheritors")
	}
	if diff := cmp.Diff([]string{"name", "x"}, r.HierarchyFieldNames("Named")); diff != "" {
		t.Fatalf("hierarchy names diff(-want +got): %s", diff)
	}

	xs := r.HierarchyFields("Named", "x")
	if len(xs) != 2 || xs[0].Entity != "X" || xs[1].Entity != "Z" {
		t.Fatalf("both declarations of x must be reported: %v", xs)
	}
	if got := r.HierarchyFields("Named", "name"); len(got) != 3 {
		t.Fatalf("name is declared on Named, X and Y: %v", got)
	}
}
