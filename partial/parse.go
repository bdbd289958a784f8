package partial

import (
	"fmt"
	"strings"

	"github.com/reoring/typebind/model"
	"github.com/reoring/typebind/resolve"
)

// Parse reads the $fields form (`id,name,owner(id,name)`, `*` for every member
// of a level) and validates each name against the terminal it applies to.
// terminal may be any type; wrappers are peeled with Of.
func Parse(r *resolve.Result, t model.Type, text string) (*Selection, error) {
	res, err := Of(t)
	if err != nil {
		return nil, err
	}
	if !res.Selectable() {
		return nil, fmt.Errorf("type %s admits no field selection", r.Model().TypeString(t))
	}
	p := &parser{r: r, in: text}
	sel, err := p.list(res.Terminal)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.in) {
		return nil, p.errorf("unexpected %q", p.in[p.pos])
	}
	return sel, nil
}

type parser struct {
	r   *resolve.Result
	in  string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("$fields at %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.in) && (p.in[p.pos] == ' ' || p.in[p.pos] == '\t' || p.in[p.pos] == '\n') {
		p.pos++
	}
}

func (p *parser) list(terminal model.Type) (*Selection, error) {
	sel := New()
	for {
		p.skipSpace()
		if err := p.item(terminal, sel); err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos < len(p.in) && p.in[p.pos] == ',' {
			p.pos++
			continue
		}
		return sel, nil
	}
}

func (p *parser) item(terminal model.Type, sel *Selection) error {
	if p.pos < len(p.in) && p.in[p.pos] == '*' {
		p.pos++
		sel.Add("*")
		return nil
	}
	start := p.pos
	for p.pos < len(p.in) && !strings.ContainsRune(",() \t\n*", rune(p.in[p.pos])) {
		p.pos++
	}
	name := p.in[start:p.pos]
	if name == "" {
		if p.pos >= len(p.in) {
			return p.errorf("expected field name")
		}
		return p.errorf("expected field name, got %q", p.in[p.pos])
	}
	mb, ok := member(p.r, terminal, name)
	if !ok {
		return p.errorf("unknown field %q of %s", name, p.r.Model().TypeString(terminal))
	}
	p.skipSpace()
	if p.pos >= len(p.in) || p.in[p.pos] != '(' {
		sel.Add(name)
		return nil
	}
	terminals, err := mb.terminals(p.r.Model())
	if err != nil {
		return err
	}
	if len(terminals) == 0 {
		return p.errorf("field %q has no nested fields", name)
	}
	p.pos++
	body := p.pos
	var firstErr error
	for _, term := range terminals {
		p.pos = body
		child, err := p.nested(name, term)
		if err == nil {
			sel.Nested(name, child)
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// nested parses the parenthesized list after name against one terminal.
func (p *parser) nested(name string, terminal model.Type) (*Selection, error) {
	child, err := p.list(terminal)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos >= len(p.in) || p.in[p.pos] != ')' {
		return nil, p.errorf("missing ')' after %s(", name)
	}
	p.pos++
	return child, nil
}

// Presets holds named $fields strings per entity name.
type Presets map[string]map[string]string

// Lookup parses the preset named name for entity.
func (ps Presets) Lookup(r *resolve.Result, entity, name string) (*Selection, error) {
	text, ok := ps[entity][name]
	if !ok {
		return nil, fmt.Errorf("no preset %q for %s", name, entity)
	}
	e, ok := r.Model().EntityByName(entity)
	if !ok {
		return nil, fmt.Errorf("preset %q: unknown entity %s", name, entity)
	}
	sel, err := Parse(r, model.Dto{ID: e.ID}, text)
	if err != nil {
		return nil, fmt.Errorf("preset %s/%s: %w", entity, name, err)
	}
	return sel, nil
}
