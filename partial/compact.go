package partial

import (
	"github.com/reoring/typebind/model"
	"github.com/reoring/typebind/resolve"
)

// Compact builds the default selection for a terminal type: every scalar
// member, and every object member with its own compact selection. A terminal
// already on the recursion path contributes only its scalar members.
//
// Levels are expanded on first read, so building a compact selection is cheap
// even on densely linked schemas; only the levels a decode walks into are
// ever materialized. The result is safe for concurrent use.
func Compact(r *resolve.Result, terminal model.Type) *Selection {
	return compact(r, model.StripModifiers(terminal), nil)
}

// compactPath is the recursion path from the root, innermost first.
type compactPath struct {
	key    string
	parent *compactPath
}

func (p *compactPath) has(key string) bool {
	for ; p != nil; p = p.parent {
		if p.key == key {
			return true
		}
	}
	return false
}

func compact(r *resolve.Result, t model.Type, path *compactPath) *Selection {
	key := pathKey(r.Model(), t)
	onPath := path.has(key)
	if !onPath {
		path = &compactPath{key: key, parent: path}
	}
	return lazy(func(s *Selection) {
		for _, mb := range Members(r, t) {
			res, err := Of(mb.Type)
			if err != nil || !res.Selectable() {
				s.add(mb.Name)
				continue
			}
			if onPath {
				continue
			}
			s.nested(mb.Name, compact(r, res.Terminal, path))
		}
	})
}
