// Package wire turns JSON text into the in-memory tree the codec walks and back.
// Objects become map[string]any, arrays []any, numbers json.Number.
package wire

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindBeginObject:
		return "{"
	case KindEndObject:
		return "}"
	case KindBeginArray:
		return "["
	case KindEndArray:
		return "]"
	case KindKey:
		return "key"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is the minimal interface the tree builder needs.
type TokenSource interface {
	NextToken() (Token, error)
	// Location is the number of input bytes consumed so far, or -1 when unknown.
	Location() int64
}

// Error is a parse failure with the JSON Pointer of the offending token.
type Error struct {
	Code    string
	Path    string
	Message string
	Offset  int64
	Cause   error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Code + ": " + e.Message
	}
	return e.Code + " at " + e.Path + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }
