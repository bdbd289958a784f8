// Package fixture provides a small schema shared by package tests.
package fixture

import (
	"testing"

	"github.com/reoring/typebind/model"
)

// SchemaYAML covers every type kind and a three-level hierarchy with an override.
const SchemaYAML = `
enums:
  - id: Color
    values: [RED, GREEN, BLUE]
entities:
  - id: User
    fields:
      - {name: id, type: {kind: string}}
      - {name: name, type: {kind: string}}
      - {name: manager, type: {kind: dto, target: User, nullable: true}}
  - id: Widget
    fields:
      - {name: id, type: {kind: string}}
      - {name: name, type: {kind: string}}
      - {name: color, type: {kind: enum, target: Color}}
      - {name: owner, type: {kind: dto, target: User, optional: true}}
      - {name: tags, type: {kind: array, element: {kind: string}}}
      - {name: props, type: {kind: map, optional: true, key: {kind: string}, value: {kind: int}}}
      - {name: parent, type: {kind: dto, target: Widget, nullable: true, optional: true}}
      - {name: created, type: {kind: datetime, optional: true}}
      - {name: count, type: {kind: int, nullable: true, optional: true}}
  - id: Base
    role: abstract
    fields:
      - {name: id, type: {kind: string}}
      - {name: label, type: {kind: string}}
  - id: A
    extends: Base
    fields:
      - {name: a, type: {kind: int}}
  - id: B
    role: open
    extends: Base
    fields:
      - {name: b, type: {kind: boolean}}
      - {name: label, type: {kind: string}}
  - id: C
    extends: B
    fields:
      - {name: c, type: {kind: string}}
  - id: Root
    role: open
    fields:
      - {name: w, type: {kind: string}}
      - {name: x, type: {kind: int}}
  - id: Mid
    role: open
    extends: Root
    fields:
      - {name: m, type: {kind: string}}
      - {name: x, type: {kind: int}}
  - id: Leaf
    extends: Mid
    fields:
      - {name: l, type: {kind: string}}
`

// Schema loads SchemaYAML through the real loader.
func Schema(tb testing.TB) *model.Model {
	tb.Helper()
	m, err := model.Parse([]byte(SchemaYAML), model.FormatYAML)
	if err != nil {
		tb.Fatalf("load fixture schema: %v", err)
	}
	return m
}

// MustEntity returns the entity with the given name.
func MustEntity(tb testing.TB, m *model.Model, name string) *model.Entity {
	tb.Helper()
	e, ok := m.EntityByName(name)
	if !ok {
		tb.Fatalf("fixture entity %q not found", name)
	}
	return e
}
