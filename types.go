package typebind

// DefaultMaxDepth bounds JSON nesting when ParseOpt.MaxDepth is zero.
const DefaultMaxDepth = 512

// Severity expresses the severity level for input anomalies.
type Severity int

const (
	Ignore Severity = iota
	Error
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Ignore (last wins) or Error.
}

// PresenceOpt configures presence collection.
type PresenceOpt struct {
	Collect bool
	Include []string
	Exclude []string
}

// ParseOpt bundles parsing options.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int // 0 means DefaultMaxDepth; negative disables the limit.
	MaxBytes   int64
}

func mergeOpts(opts []ParseOpt) ParseOpt {
	if len(opts) == 0 {
		return ParseOpt{}
	}
	return opts[len(opts)-1]
}
