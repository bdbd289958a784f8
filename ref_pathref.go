package typebind

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/typebind/i18n"
)

// PathRef is the "link" to a JSON location: it builds JSON Pointer paths in a
// chain-safe way and creates Issues at them.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	Issue(code string, data map[string]string) Issue
}

// Root returns the link to the document root.
func Root() PathRef { return &link{} }

// link segments are shared between children; Pointer is only rendered when an
// issue is raised.
type link struct {
	parent *link
	seg    string
}

func (p *link) Field(name string) PathRef {
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return &link{parent: p, seg: esc}
}

func (p *link) Index(i int) PathRef {
	return &link{parent: p, seg: strconv.Itoa(i)}
}

func (p *link) Pointer() string {
	var segs []string
	for cur := p; cur != nil && cur.parent != nil; cur = cur.parent {
		segs = append(segs, cur.seg)
	}
	if len(segs) == 0 {
		return "/"
	}
	var b strings.Builder
	for i := len(segs) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(segs[i])
	}
	return b.String()
}

func (p *link) String() string { return p.Pointer() }

func (p *link) Issue(code string, data map[string]string) Issue {
	return IssueAt(p, code, i18n.T(code, data), data)
}

// IssueAt creates an Issue at the given path with provided code, message and params.
func IssueAt(p PathRef, code, msg string, data map[string]string) Issue {
	var params map[string]any
	if len(data) > 0 {
		params = make(map[string]any, len(data))
		for k, v := range data {
			params[k] = v
		}
	}
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: params, Offset: -1}
}

// Errorf builds a single-issue Issues error; the hint is formatted from args.
func Errorf(p PathRef, code string, data map[string]string, hint string, args ...any) Issues {
	it := p.Issue(code, data)
	if hint != "" {
		it.Hint = fmt.Sprintf(hint, args...)
	}
	return Issues{it}
}
