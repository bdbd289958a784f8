package engine

import (
	"encoding/json"
	"fmt"

	"github.com/reoring/typebind"
	"github.com/reoring/typebind/partial"
)

// Context is one position of a decode: the JSON node there, whether the member
// was present at all, the active selection and the link used in issues.
type Context struct {
	json     any
	present  bool
	sel      *partial.Selection
	link     typebind.PathRef
	presence typebind.PresenceMap
}

func rootContext(tree any, sel *partial.Selection, pm typebind.PresenceMap) *Context {
	c := &Context{json: tree, present: true, sel: sel, link: typebind.Root(), presence: pm}
	c.mark()
	return c
}

// JSON returns the node being decoded.
func (c *Context) JSON() any { return c.json }

// Present reports whether the member exists in the enclosing object.
func (c *Context) Present() bool { return c.present }

// Selection returns the active selection; nil selects everything.
func (c *Context) Selection() *partial.Selection { return c.sel }

// Link returns the JSON location of the node.
func (c *Context) Link() typebind.PathRef { return c.link }

func (c *Context) mark() {
	if c.presence == nil || !c.present {
		return
	}
	p := typebind.PresenceSeen
	if c.json == nil {
		p |= typebind.PresenceWasNull
	}
	c.presence.Mark(c.link.Pointer(), p)
}

// member descends into obj[name].
func (c *Context) member(obj map[string]any, name string, sel *partial.Selection) *Context {
	v, ok := obj[name]
	child := &Context{json: v, present: ok, sel: sel, link: c.link.Field(name), presence: c.presence}
	child.mark()
	return child
}

// element descends into the i-th array element.
func (c *Context) element(i int, v any, sel *partial.Selection) *Context {
	child := &Context{json: v, present: true, sel: sel, link: c.link.Index(i), presence: c.presence}
	child.mark()
	return child
}

func (c *Context) fail(code string, data map[string]string) error {
	return typebind.Issues{c.link.Issue(code, data)}
}

func (c *Context) mismatch(expected string) error {
	return c.fail(typebind.CodeTypeMismatch, map[string]string{"expected": expected, "got": kindOf(c.json)})
}

func (c *Context) missing() error {
	return c.fail(typebind.CodeMissingRequiredField, map[string]string{"field": lastSegment(c.link.Pointer())})
}

// object requires the node to be a JSON object.
func (c *Context) object() (map[string]any, error) {
	if !c.present {
		return nil, c.missing()
	}
	m, ok := c.json.(map[string]any)
	if !ok {
		return nil, c.mismatch("object")
	}
	return m, nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func lastSegment(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}
