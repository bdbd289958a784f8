package partial

import (
	"strings"
	"sync"
)

// Selection names a subset of a terminal type's members, each with an optional
// nested Selection. A nil *Selection means "everything, recursively".
type Selection struct {
	all    bool
	order  []string
	fields map[string]*Selection

	// expand fills a lazily built level on first read.
	once   *sync.Once
	expand func(*Selection)
}

// New returns an empty selection.
func New() *Selection { return &Selection{fields: map[string]*Selection{}} }

// lazy returns a selection whose members are added by expand when first read.
func lazy(expand func(*Selection)) *Selection {
	s := New()
	s.once = new(sync.Once)
	s.expand = expand
	return s
}

func (s *Selection) load() {
	if s.once != nil {
		s.once.Do(func() { s.expand(s) })
	}
}

// All returns a selection of every member at this level.
func All() *Selection {
	s := New()
	s.all = true
	return s
}

// Add selects name without an explicit nested selection.
func (s *Selection) Add(names ...string) *Selection {
	s.load()
	return s.add(names...)
}

func (s *Selection) add(names ...string) *Selection {
	for _, n := range names {
		if n == "*" {
			s.all = true
			continue
		}
		if _, ok := s.fields[n]; !ok {
			s.order = append(s.order, n)
			s.fields[n] = nil
		}
	}
	return s
}

// Nested selects name with child applied to its terminal type.
func (s *Selection) Nested(name string, child *Selection) *Selection {
	s.load()
	return s.nested(name, child)
}

func (s *Selection) nested(name string, child *Selection) *Selection {
	if _, ok := s.fields[name]; !ok {
		s.order = append(s.order, name)
	}
	s.fields[name] = child
	return s
}

// Has reports whether name is selected. A nil selection has everything.
func (s *Selection) Has(name string) bool {
	if s == nil {
		return true
	}
	s.load()
	if s.all {
		return true
	}
	_, ok := s.fields[name]
	return ok
}

// Child returns the explicit nested selection of name, if any.
func (s *Selection) Child(name string) (*Selection, bool) {
	if s == nil {
		return nil, false
	}
	s.load()
	c, ok := s.fields[name]
	return c, ok && c != nil
}

// String renders the $fields form, e.g. `id,name,owner(id,name)`.
func (s *Selection) String() string {
	if s == nil {
		return "*"
	}
	var b strings.Builder
	s.write(&b)
	return b.String()
}

func (s *Selection) write(b *strings.Builder) {
	s.load()
	first := true
	sep := func() {
		if !first {
			b.WriteByte(',')
		}
		first = false
	}
	if s.all {
		sep()
		b.WriteByte('*')
	}
	for _, n := range s.order {
		sep()
		b.WriteString(n)
		if c := s.fields[n]; c != nil && !c.empty() {
			b.WriteByte('(')
			c.write(b)
			b.WriteByte(')')
		}
	}
}

func (s *Selection) empty() bool {
	s.load()
	return !s.all && len(s.order) == 0
}
