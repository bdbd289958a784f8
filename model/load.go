package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format selects the schema document encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatForPath picks the format from the file extension; anything not .json is YAML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

type document struct {
	Entities []entityDoc `yaml:"entities" json:"entities"`
	Enums    []enumDoc   `yaml:"enums" json:"enums"`
}

type entityDoc struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Role        string       `yaml:"role" json:"role"`
	Extends     string       `yaml:"extends" json:"extends"`
	Implements  []string     `yaml:"implements" json:"implements"`
	Fields      []fieldDoc   `yaml:"fields" json:"fields"`
	Deprecation *Deprecation `yaml:"deprecation" json:"deprecation"`
}

type fieldDoc struct {
	Name        string       `yaml:"name" json:"name"`
	Type        *typeDoc     `yaml:"type" json:"type"`
	Deprecation *Deprecation `yaml:"deprecation" json:"deprecation"`
	Extension   bool         `yaml:"extension" json:"extension"`
}

type enumDoc struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Values      []string     `yaml:"values" json:"values"`
	Deprecation *Deprecation `yaml:"deprecation" json:"deprecation"`
}

type typeDoc struct {
	Kind     string     `yaml:"kind" json:"kind"`
	Nullable bool       `yaml:"nullable" json:"nullable"`
	Optional bool       `yaml:"optional" json:"optional"`
	Element  *typeDoc   `yaml:"element" json:"element"`
	Key      *typeDoc   `yaml:"key" json:"key"`
	Value    *typeDoc   `yaml:"value" json:"value"`
	First    *typeDoc   `yaml:"first" json:"first"`
	Second   *typeDoc   `yaml:"second" json:"second"`
	Third    *typeDoc   `yaml:"third" json:"third"`
	Subject  *typeDoc   `yaml:"subject" json:"subject"`
	Fields   []fieldDoc `yaml:"fields" json:"fields"`
	Target   string     `yaml:"target" json:"target"`
}

var primitiveByName = map[string]PrimitiveKind{
	"byte": Byte, "short": Short, "int": Int, "long": Long,
	"float": Float, "double": Double, "boolean": Boolean, "string": String,
	"date": Date, "datetime": DateTime,
}

// LoadFile reads a schema document from disk.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	m, err := Parse(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a schema document. Unknown keys are rejected in both formats.
func Parse(data []byte, f Format) (*Model, error) {
	var doc document
	switch f {
	case FormatJSON:
		dec := j.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode schema json: %w", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode schema yaml: %w", err)
		}
	}
	return doc.build()
}

func (d *document) build() (*Model, error) {
	enums := make([]*EnumType, 0, len(d.Enums))
	for _, ed := range d.Enums {
		enums = append(enums, &EnumType{
			ID:          EnumID(ed.ID),
			Name:        ed.Name,
			Values:      ed.Values,
			Deprecation: ed.Deprecation,
		})
	}
	entities := make([]*Entity, 0, len(d.Entities))
	for _, ed := range d.Entities {
		role, err := ParseRole(ed.Role)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", ed.Name, err)
		}
		e := &Entity{
			ID:          EntityID(ed.ID),
			Name:        ed.Name,
			Role:        role,
			Extends:     EntityID(ed.Extends),
			Deprecation: ed.Deprecation,
		}
		if e.ID == "" {
			e.ID = EntityID(ed.Name)
		}
		if e.Name == "" {
			e.Name = string(e.ID)
		}
		for _, iface := range ed.Implements {
			e.Implements = append(e.Implements, EntityID(iface))
		}
		for _, fd := range ed.Fields {
			t, err := fd.Type.build()
			if err != nil {
				return nil, fmt.Errorf("entity %q field %q: %w", ed.Name, fd.Name, err)
			}
			e.Fields = append(e.Fields, Field{
				Name:        fd.Name,
				Type:        t,
				Deprecation: fd.Deprecation,
				IsExtension: fd.Extension,
			})
		}
		entities = append(entities, e)
	}
	return New(entities, enums)
}

func (td *typeDoc) build() (Type, error) {
	if td == nil {
		return nil, errors.New("missing type")
	}
	t, err := td.base()
	if err != nil {
		return nil, err
	}
	return t.WithModifiers(Modifiers{Nullable: td.Nullable, Optional: td.Optional}), nil
}

func (td *typeDoc) base() (Type, error) {
	kind := strings.ToLower(td.Kind)
	if p, ok := primitiveByName[kind]; ok {
		return PrimitiveOf(p), nil
	}
	sub := func(name string, d *typeDoc) (Type, error) {
		t, err := d.build()
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", kind, name, err)
		}
		return t, nil
	}
	switch kind {
	case "array":
		el, err := sub("element", td.Element)
		if err != nil {
			return nil, err
		}
		return ArrayOf(el), nil
	case "map":
		k, err := sub("key", td.Key)
		if err != nil {
			return nil, err
		}
		v, err := sub("value", td.Value)
		if err != nil {
			return nil, err
		}
		return MapOf(k, v), nil
	case "batch":
		el, err := sub("element", td.Element)
		if err != nil {
			return nil, err
		}
		return BatchOf(el), nil
	case "pair":
		a, err := sub("first", td.First)
		if err != nil {
			return nil, err
		}
		b, err := sub("second", td.Second)
		if err != nil {
			return nil, err
		}
		return PairOf(a, b), nil
	case "triple":
		a, err := sub("first", td.First)
		if err != nil {
			return nil, err
		}
		b, err := sub("second", td.Second)
		if err != nil {
			return nil, err
		}
		c, err := sub("third", td.Third)
		if err != nil {
			return nil, err
		}
		return TripleOf(a, b, c), nil
	case "mod":
		s, err := sub("subject", td.Subject)
		if err != nil {
			return nil, err
		}
		return ModOf(StripModifiers(s)), nil
	case "mapentry":
		k, err := sub("key", td.Key)
		if err != nil {
			return nil, err
		}
		v, err := sub("value", td.Value)
		if err != nil {
			return nil, err
		}
		return MapOf(k, v).Element, nil
	case "requestbody", "object":
		o := Object{Kind: RequestBody}
		for _, f := range td.Fields {
			t, err := sub(f.Name, f.Type)
			if err != nil {
				return nil, err
			}
			o.Fields = append(o.Fields, ObjectField{Name: f.Name, Type: t})
		}
		return o, nil
	case "dto":
		return Dto{ID: EntityID(td.Target)}, td.needTarget()
	case "ref":
		return Ref{ID: EntityID(td.Target)}, td.needTarget()
	case "urlparam":
		return URLParam{ID: EntityID(td.Target)}, td.needTarget()
	case "enum":
		return Enum{ID: EnumID(td.Target)}, td.needTarget()
	}
	return nil, fmt.Errorf("unknown type kind %q", td.Kind)
}

func (td *typeDoc) needTarget() error {
	if td.Target == "" {
		return fmt.Errorf("%s: missing target", td.Kind)
	}
	return nil
}
