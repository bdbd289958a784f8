package typebind

import (
	"context"
	"errors"

	"github.com/reoring/typebind/internal/wire"
)

// ParseJSON materializes src into the tree the codec walks: map[string]any,
// []any, json.Number, string, bool and nil. Malformed or oversized input is
// reported as a parse_error Issue.
func ParseJSON(ctx context.Context, src Source, opts ...ParseOpt) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opt := mergeOpts(opts)
	wopt := wire.Options{
		MaxDepth:            opt.MaxDepth,
		MaxBytes:            opt.MaxBytes,
		RejectDuplicateKeys: opt.Strictness.OnDuplicateKey == Error,
	}
	if wopt.MaxDepth == 0 {
		wopt.MaxDepth = DefaultMaxDepth
	}
	var (
		v   any
		err error
	)
	if b, ok := src.bytes(); ok {
		v, err = wire.ParseBytes(b, wopt)
	} else {
		v, err = wire.Parse(src.tokens(), wopt)
	}
	if err != nil {
		return nil, toIssues(err)
	}
	return v, nil
}

// MarshalJSON renders a tree produced by an encoder.
func MarshalJSON(tree any) ([]byte, error) { return wire.Marshal(tree) }

// MarshalJSONIndent renders a tree with two-space indentation.
func MarshalJSONIndent(tree any) ([]byte, error) { return wire.MarshalIndent(tree) }

func toIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var we *wire.Error
	if errors.As(err, &we) {
		return AppendIssues(nil, Issue{Code: we.Code, Path: we.Path, Message: we.Message, Offset: we.Offset, Cause: we.Cause})
	}
	return AppendIssues(nil, Issue{Code: CodeParseError, Path: "/", Message: err.Error(), Offset: -1, Cause: err})
}
