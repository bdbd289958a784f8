package model

import (
	"fmt"
	"strings"
)

// PrimitiveKind enumerates the scalar wire types.
type PrimitiveKind int

const (
	Byte PrimitiveKind = iota
	Short
	Int
	Long
	Float
	Double
	Boolean
	String
	Date
	DateTime
)

var primitiveNames = [...]string{"Byte", "Short", "Int", "Long", "Float", "Double", "Boolean", "String", "Date", "DateTime"}

func (k PrimitiveKind) String() string {
	if k < 0 || int(k) >= len(primitiveNames) {
		return fmt.Sprintf("PrimitiveKind(%d)", int(k))
	}
	return primitiveNames[k]
}

// ObjectKind enumerates the fixed-shape record kinds.
type ObjectKind int

const (
	Pair ObjectKind = iota
	Triple
	Mod
	MapEntry
	Batch
	// RequestBody only exists while describing request payloads; it never reaches the codec.
	RequestBody
)

var objectKindNames = [...]string{"Pair", "Triple", "Mod", "MapEntry", "Batch", "RequestBody"}

func (k ObjectKind) String() string {
	if k < 0 || int(k) >= len(objectKindNames) {
		return fmt.Sprintf("ObjectKind(%d)", int(k))
	}
	return objectKindNames[k]
}

// Modifiers are the two wrapper bits every Type carries. The concrete wrapped
// type is always built as base -> Nullable (if set) -> Optional (if set).
type Modifiers struct {
	Nullable bool
	Optional bool
}

// Mods returns the modifier bits.
func (m Modifiers) Mods() Modifiers { return m }

// Type is the closed type algebra. Implementations are the value types in this file.
type Type interface {
	Mods() Modifiers
	// WithModifiers returns a copy of the type carrying m.
	WithModifiers(m Modifiers) Type
	isType()
}

// Primitive is a scalar type.
type Primitive struct {
	Kind PrimitiveKind
	Modifiers
}

// Array is an ordered list of Element values.
type Array struct {
	Element Type
	Modifiers
}

// ObjectField is a named slot of a fixed-shape Object.
type ObjectField struct {
	Name string
	Type Type
}

// Object is a fixed-shape record (pair, triple, mod, map entry, batch, request body).
type Object struct {
	Kind   ObjectKind
	Fields []ObjectField
	Modifiers
}

// Dto references an entity of the model.
type Dto struct {
	ID EntityID
	Modifiers
}

// Ref is a lightweight named alias of an entity.
type Ref struct {
	ID EntityID
	Modifiers
}

// URLParam references an entity used as a URL parameter.
type URLParam struct {
	ID EntityID
	Modifiers
}

// Enum references an enum type of the model.
type Enum struct {
	ID EnumID
	Modifiers
}

func (Primitive) isType() {}
func (Array) isType()     {}
func (Object) isType()    {}
func (Dto) isType()       {}
func (Ref) isType()       {}
func (URLParam) isType()  {}
func (Enum) isType()      {}

func (t Primitive) WithModifiers(m Modifiers) Type { t.Modifiers = m; return t }
func (t Array) WithModifiers(m Modifiers) Type     { t.Modifiers = m; return t }
func (t Object) WithModifiers(m Modifiers) Type    { t.Modifiers = m; return t }
func (t Dto) WithModifiers(m Modifiers) Type       { t.Modifiers = m; return t }
func (t Ref) WithModifiers(m Modifiers) Type       { t.Modifiers = m; return t }
func (t URLParam) WithModifiers(m Modifiers) Type  { t.Modifiers = m; return t }
func (t Enum) WithModifiers(m Modifiers) Type      { t.Modifiers = m; return t }

// StripModifiers returns t without its nullable and optional bits.
func StripModifiers(t Type) Type {
	if t == nil {
		return nil
	}
	return t.WithModifiers(Modifiers{})
}

// Nullable returns a copy of t marked nullable.
func Nullable(t Type) Type {
	m := t.Mods()
	m.Nullable = true
	return t.WithModifiers(m)
}

// Optional returns a copy of t marked optional.
func Optional(t Type) Type {
	m := t.Mods()
	m.Optional = true
	return t.WithModifiers(m)
}

// Field returns the type of the named slot, or nil.
func (t Object) Field(name string) Type {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return nil
}

func (t Object) FirstType() Type  { return t.Field("first") }
func (t Object) SecondType() Type { return t.Field("second") }
func (t Object) ThirdType() Type  { return t.Field("third") }
func (t Object) KeyType() Type    { return t.Field("key") }
func (t Object) ValueType() Type  { return t.Field("value") }

// ModSubjectType is the non-nullable type of the `old` slot.
func (t Object) ModSubjectType() Type {
	old := t.Field("old")
	if old == nil {
		return nil
	}
	m := old.Mods()
	m.Nullable = false
	return old.WithModifiers(m)
}

// BatchDataType is the element type of the `data` array.
func (t Object) BatchDataType() Type {
	if a, ok := t.Field("data").(Array); ok {
		return a.Element
	}
	return nil
}

// PrimitiveOf builds a non-null, non-optional primitive.
func PrimitiveOf(k PrimitiveKind) Primitive { return Primitive{Kind: k} }

// ArrayOf builds a list type.
func ArrayOf(elem Type) Array { return Array{Element: elem} }

// MapOf builds the canonical map encoding: an array of map entries.
func MapOf(key, value Type) Array {
	return Array{Element: Object{Kind: MapEntry, Fields: []ObjectField{
		{Name: "key", Type: key},
		{Name: "value", Type: value},
	}}}
}

// BatchOf builds a paginated page of elem.
func BatchOf(elem Type) Object {
	return Object{Kind: Batch, Fields: []ObjectField{
		{Name: "next", Type: PrimitiveOf(String)},
		{Name: "totalCount", Type: Nullable(PrimitiveOf(Int))},
		{Name: "data", Type: ArrayOf(elem)},
	}}
}

// PairOf builds a two-slot record.
func PairOf(first, second Type) Object {
	return Object{Kind: Pair, Fields: []ObjectField{{Name: "first", Type: first}, {Name: "second", Type: second}}}
}

// TripleOf builds a three-slot record.
func TripleOf(first, second, third Type) Object {
	return Object{Kind: Triple, Fields: []ObjectField{
		{Name: "first", Type: first},
		{Name: "second", Type: second},
		{Name: "third", Type: third},
	}}
}

// ModOf builds an old/new modification record over subject.
func ModOf(subject Type) Object {
	return Object{Kind: Mod, Fields: []ObjectField{
		{Name: "old", Type: Nullable(subject)},
		{Name: "new", Type: Nullable(subject)},
	}}
}

// IsMap reports whether t is the canonical map encoding.
func IsMap(t Type) bool {
	a, ok := t.(Array)
	if !ok {
		return false
	}
	o, ok := a.Element.(Object)
	return ok && o.Kind == MapEntry
}

// IsScalar reports whether t carries no nested selectable structure.
func IsScalar(t Type) bool {
	switch t.(type) {
	case Primitive, Enum, URLParam:
		return true
	}
	return false
}

// TypeString renders t for diagnostics and manifests, e.g. Optional<Nullable<Int>>.
func (m *Model) TypeString(t Type) string {
	var b strings.Builder
	m.writeType(&b, t)
	return b.String()
}

func (m *Model) writeType(b *strings.Builder, t Type) {
	if t == nil {
		b.WriteString("?")
		return
	}
	mods := t.Mods()
	if mods.Optional {
		b.WriteString("Optional<")
		defer b.WriteString(">")
	}
	if mods.Nullable {
		b.WriteString("Nullable<")
		defer b.WriteString(">")
	}
	switch v := t.(type) {
	case Primitive:
		b.WriteString(v.Kind.String())
	case Array:
		if IsMap(v) {
			e := v.Element.(Object)
			b.WriteString("Map<")
			m.writeType(b, e.KeyType())
			b.WriteString(", ")
			m.writeType(b, e.ValueType())
			b.WriteString(">")
			return
		}
		b.WriteString("Array<")
		m.writeType(b, v.Element)
		b.WriteString(">")
	case Object:
		b.WriteString(v.Kind.String())
		if v.Kind == Batch {
			b.WriteString("<")
			m.writeType(b, v.BatchDataType())
			b.WriteString(">")
			return
		}
		b.WriteString("<")
		for i, f := range v.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			m.writeType(b, f.Type)
		}
		b.WriteString(">")
	case Dto:
		fmt.Fprintf(b, "Dto<%s>", m.entityName(v.ID))
	case Ref:
		fmt.Fprintf(b, "Ref<%s>", m.entityName(v.ID))
	case URLParam:
		fmt.Fprintf(b, "UrlParam<%s>", m.entityName(v.ID))
	case Enum:
		name := string(v.ID)
		if m != nil {
			if e, ok := m.enums[v.ID]; ok {
				name = e.Name
			}
		}
		fmt.Fprintf(b, "Enum<%s>", name)
	}
}

func (m *Model) entityName(id EntityID) string {
	if m != nil {
		if e, ok := m.entities[id]; ok {
			return e.Name
		}
	}
	return string(id)
}
