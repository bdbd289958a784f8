package typebind

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeMissingRequiredField    = "missing_required_field"
	CodeTypeMismatch            = "type_mismatch"
	CodeUnsupportedDiscriminant = "unsupported_discriminant"
	CodeNoMatchingEnumConstant  = "no_matching_enum_constant"
	CodeOverflow                = "overflow"
	CodeParseError              = "parse_error"
)

// Issue represents a single decode failure.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected shapes, etc.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input source (-1 when unknown).
	// Params carries structured parameters (e.g., {"expected":"Int", "got":"string"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of decode errors that implements error.
// Decoding stops at the first failure, so codec errors carry exactly one.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. type_mismatch at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			b.WriteString(": ")
			b.WriteString(it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IssueCode returns the code of the first issue in err, or "".
func IssueCode(err error) string {
	iss, ok := AsIssues(err)
	if !ok || len(iss) == 0 {
		return ""
	}
	return iss[0].Code
}

// ErrContract is matched by every ContractError.
var ErrContract = errors.New("typebind: contract violation")

// ContractError reports a value or type that was built against the wrong
// shape. It is a programming error, not bad input.
type ContractError struct {
	Path    string
	Message string
}

func (e *ContractError) Error() string {
	if e.Path == "" {
		return "typebind: contract violation: " + e.Message
	}
	return "typebind: contract violation at " + e.Path + ": " + e.Message
}

func (e *ContractError) Is(target error) bool { return target == ErrContract }

// Contractf builds a ContractError at path.
func Contractf(path, format string, args ...any) *ContractError {
	return &ContractError{Path: path, Message: fmt.Sprintf(format, args...)}
}
