// Package model holds the schema IR the resolver and codec work from:
// entities with their hierarchy links, enums, and the closed Type algebra.
package model

import (
	"fmt"
	"strings"
)

// EntityID identifies an entity; it is stable across loads of the same schema.
type EntityID string

// EnumID identifies an enum type.
type EnumID string

// HierarchyRole controls whether an entity may be instantiated and extended.
type HierarchyRole int

const (
	Final HierarchyRole = iota
	Open
	Sealed
	Abstract
	Interface
)

var roleNames = [...]string{"final", "open", "sealed", "abstract", "interface"}

func (r HierarchyRole) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("HierarchyRole(%d)", int(r))
	}
	return roleNames[r]
}

// ParseRole maps the textual role used in schema documents.
func ParseRole(s string) (HierarchyRole, error) {
	if s == "" {
		return Final, nil
	}
	for i, n := range roleNames {
		if strings.EqualFold(n, s) {
			return HierarchyRole(i), nil
		}
	}
	return Final, fmt.Errorf("unknown hierarchy role %q", s)
}

// IsConcrete reports whether values of this role can exist on the wire.
func (r HierarchyRole) IsConcrete() bool { return r != Abstract && r != Interface && r != Sealed }

// Deprecation marks a field, entity or enum as deprecated.
type Deprecation struct {
	Message    string `yaml:"message" json:"message"`
	Since      string `yaml:"since" json:"since"`
	ForRemoval bool   `yaml:"forRemoval" json:"forRemoval"`
}

// Field is a field declared directly on an entity.
type Field struct {
	Name        string
	Type        Type
	Deprecation *Deprecation
	// IsExtension marks fields contributed by an extension rather than the core schema.
	IsExtension bool
}

// Entity is a named DTO with an optional parent and ordered own fields.
type Entity struct {
	ID         EntityID
	Name       string
	Role       HierarchyRole
	Extends    EntityID
	Implements []EntityID
	// Inheritors is derived from Extends by New; values set by callers are replaced.
	Inheritors []EntityID
	// Implementors is derived from Implements the same way.
	Implementors []EntityID
	Fields      []Field
	Deprecation *Deprecation
}

// Subtypes lists the entities a value of this type may dispatch to:
// inheritors, then implementors.
func (e *Entity) Subtypes() []EntityID {
	if len(e.Implementors) == 0 {
		return e.Inheritors
	}
	out := make([]EntityID, 0, len(e.Inheritors)+len(e.Implementors))
	out = append(out, e.Inheritors...)
	return append(out, e.Implementors...)
}

// IsRoot reports whether the entity has no parent.
func (e *Entity) IsRoot() bool { return e.Extends == "" }

// IsConcrete reports whether the entity can be the runtime class of a value.
func (e *Entity) IsConcrete() bool { return e.Role.IsConcrete() }

// Field returns the own field with the given name.
func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// EnumType is a closed set of string constants.
type EnumType struct {
	ID          EnumID
	Name        string
	Values      []string
	Deprecation *Deprecation
}

// Has reports whether v is one of the enum constants.
func (e *EnumType) Has(v string) bool {
	for _, c := range e.Values {
		if c == v {
			return true
		}
	}
	return false
}

// Model is an immutable, validated set of entities and enums.
type Model struct {
	entities  map[EntityID]*Entity
	order     []EntityID
	byName    map[string]EntityID
	enums     map[EnumID]*EnumType
	enumOrder []EnumID
}

// New validates entities and enums and links the hierarchy. Inheritors are
// derived from Extends and Implementors from Implements, both in declaration
// order.
func New(entities []*Entity, enums []*EnumType) (*Model, error) {
	m := &Model{
		entities: make(map[EntityID]*Entity, len(entities)),
		byName:   make(map[string]EntityID, len(entities)),
		enums:    make(map[EnumID]*EnumType, len(enums)),
	}
	for _, e := range enums {
		if e.ID == "" {
			return nil, fmt.Errorf("enum %q: empty id", e.Name)
		}
		if _, dup := m.enums[e.ID]; dup {
			return nil, fmt.Errorf("enum %q: duplicate id", e.ID)
		}
		if e.Name == "" {
			e.Name = string(e.ID)
		}
		m.enums[e.ID] = e
		m.enumOrder = append(m.enumOrder, e.ID)
	}
	for _, e := range entities {
		if e.ID == "" {
			return nil, fmt.Errorf("entity %q: empty id", e.Name)
		}
		if e.Name == "" {
			return nil, fmt.Errorf("entity %q: empty name", e.ID)
		}
		if _, dup := m.entities[e.ID]; dup {
			return nil, fmt.Errorf("entity %q: duplicate id", e.ID)
		}
		if other, dup := m.byName[e.Name]; dup {
			return nil, fmt.Errorf("entity %q: name %q already used by %q", e.ID, e.Name, other)
		}
		e.Inheritors = nil
		e.Implementors = nil
		m.entities[e.ID] = e
		m.byName[e.Name] = e.ID
		m.order = append(m.order, e.ID)
	}
	for _, id := range m.order {
		e := m.entities[id]
		if e.Extends != "" {
			parent, ok := m.entities[e.Extends]
			if !ok {
				return nil, fmt.Errorf("entity %q: unknown parent %q", e.Name, e.Extends)
			}
			if parent.Role == Final {
				return nil, fmt.Errorf("entity %q: parent %q is final", e.Name, parent.Name)
			}
			parent.Inheritors = append(parent.Inheritors, e.ID)
		}
		for _, iface := range e.Implements {
			target, ok := m.entities[iface]
			if !ok {
				return nil, fmt.Errorf("entity %q: unknown interface %q", e.Name, iface)
			}
			if target.Role != Interface {
				return nil, fmt.Errorf("entity %q: %q is not an interface", e.Name, target.Name)
			}
			target.Implementors = append(target.Implementors, e.ID)
		}
		seen := make(map[string]struct{}, len(e.Fields))
		for _, f := range e.Fields {
			if f.Name == "" {
				return nil, fmt.Errorf("entity %q: field with empty name", e.Name)
			}
			if _, dup := seen[f.Name]; dup {
				return nil, fmt.Errorf("entity %q: duplicate field %q", e.Name, f.Name)
			}
			seen[f.Name] = struct{}{}
			if err := m.checkType(f.Type); err != nil {
				return nil, fmt.Errorf("entity %q field %q: %w", e.Name, f.Name, err)
			}
		}
	}
	for _, id := range m.order {
		if err := m.checkAcyclic(id); err != nil {
			return nil, err
		}
	}
	if err := m.checkSubtypesAcyclic(); err != nil {
		return nil, err
	}
	return m, nil
}

// checkSubtypesAcyclic rejects loops through implements, e.g. an interface
// implementing itself or one of its implementors.
func (m *Model) checkSubtypesAcyclic() error {
	const (
		visiting = 1
		done     = 2
	)
	state := map[EntityID]int{}
	var walk func(id EntityID) error
	walk = func(id EntityID) error {
		switch state[id] {
		case visiting:
			return fmt.Errorf("entity %q: subtype cycle", m.entities[id].Name)
		case done:
			return nil
		}
		state[id] = visiting
		for _, sid := range m.entities[id].Subtypes() {
			if err := walk(sid); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}
	for _, id := range m.order {
		if err := walk(id); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) checkAcyclic(id EntityID) error {
	seen := map[EntityID]struct{}{}
	for cur := id; cur != ""; cur = m.entities[cur].Extends {
		if _, ok := seen[cur]; ok {
			return fmt.Errorf("entity %q: inheritance cycle", m.entities[id].Name)
		}
		seen[cur] = struct{}{}
	}
	return nil
}

func (m *Model) checkType(t Type) error {
	switch v := t.(type) {
	case nil:
		return fmt.Errorf("missing type")
	case Primitive:
		if v.Kind < Byte || v.Kind > DateTime {
			return fmt.Errorf("unknown primitive %s", v.Kind)
		}
	case Array:
		return m.checkType(v.Element)
	case Object:
		for _, f := range v.Fields {
			if err := m.checkType(f.Type); err != nil {
				return fmt.Errorf("%s.%s: %w", v.Kind, f.Name, err)
			}
		}
	case Dto:
		return m.checkEntity(v.ID)
	case Ref:
		return m.checkEntity(v.ID)
	case URLParam:
		return m.checkEntity(v.ID)
	case Enum:
		if _, ok := m.enums[v.ID]; !ok {
			return fmt.Errorf("unknown enum %q", v.ID)
		}
	}
	return nil
}

func (m *Model) checkEntity(id EntityID) error {
	if _, ok := m.entities[id]; !ok {
		return fmt.Errorf("unknown entity %q", id)
	}
	return nil
}

// Entity looks an entity up by id.
func (m *Model) Entity(id EntityID) (*Entity, bool) {
	e, ok := m.entities[id]
	return e, ok
}

// EntityByName looks an entity up by its wire class name.
func (m *Model) EntityByName(name string) (*Entity, bool) {
	id, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return m.entities[id], true
}

// Entities returns all entities in declaration order.
func (m *Model) Entities() []*Entity {
	out := make([]*Entity, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.entities[id])
	}
	return out
}

// Enum looks an enum up by id.
func (m *Model) Enum(id EnumID) (*EnumType, bool) {
	e, ok := m.enums[id]
	return e, ok
}

// Enums returns all enums in declaration order.
func (m *Model) Enums() []*EnumType {
	out := make([]*EnumType, 0, len(m.enumOrder))
	for _, id := range m.enumOrder {
		out = append(out, m.enums[id])
	}
	return out
}
