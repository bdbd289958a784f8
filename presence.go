package typebind

import "strings"

// Presence is the bit flag recorded per decoded JSON member.
type Presence uint8

const (
	PresenceSeen    Presence = 1 << iota // Member appeared in the input.
	PresenceWasNull                      // Member value was null.
)

// PresenceMap maps JSON Pointers to Presence flags.
type PresenceMap map[string]Presence

// Mark ORs flags into the entry for path.
func (pm PresenceMap) Mark(path string, p Presence) {
	if pm == nil {
		return
	}
	pm[path] |= p
}

// Seen reports whether the member at path was present in the input.
func (pm PresenceMap) Seen(path string) bool { return pm[path]&PresenceSeen != 0 }

// WasNull reports whether the member at path carried JSON null.
func (pm PresenceMap) WasNull(path string) bool { return pm[path]&PresenceWasNull != 0 }

// Filter keeps entries matching opt's include/exclude prefixes.
func (pm PresenceMap) Filter(opt PresenceOpt) PresenceMap {
	if pm == nil || !opt.Collect {
		return nil
	}
	shouldInclude := func(path string) bool {
		if len(opt.Include) > 0 {
			ok := false
			for _, p := range opt.Include {
				if strings.HasPrefix(path, p) {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		}
		for _, p := range opt.Exclude {
			if strings.HasPrefix(path, p) {
				return false
			}
		}
		return true
	}
	filtered := make(PresenceMap, len(pm))
	for k, v := range pm {
		if shouldInclude(k) {
			filtered[k] = v
		}
	}
	return filtered
}

// Decoded carries the decoded value along with presence metadata.
type Decoded struct {
	Value    any
	Presence PresenceMap
}
