package wire

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Options bounds the input the tree builder accepts.
type Options struct {
	MaxDepth int
	MaxBytes int64
	// RejectDuplicateKeys fails on a repeated object key; otherwise the last one wins.
	RejectDuplicateKeys bool
}

// ParseBytes builds a tree from a complete JSON document.
func ParseBytes(b []byte, opt Options) (any, error) {
	if opt.MaxBytes > 0 && int64(len(b)) > opt.MaxBytes {
		return nil, &Error{Code: "parse_error", Path: "/", Message: "max bytes exceeded", Offset: opt.MaxBytes}
	}
	return Parse(NewBytes(b), opt)
}

// Parse builds a tree from exactly one JSON value; trailing data is an error.
func Parse(src TokenSource, opt Options) (any, error) {
	b := &builder{src: src, opt: opt}
	tok, err := b.next("")
	if err != nil {
		return nil, err
	}
	v, err := b.value(tok, "")
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		return nil, &Error{Code: "parse_error", Path: "/", Message: "unexpected data after top-level value", Offset: src.Location()}
	}
	return v, nil
}

type builder struct {
	src   TokenSource
	opt   Options
	depth int
}

func (b *builder) next(path string) (Token, error) {
	tok, err := b.src.NextToken()
	if err != nil {
		msg := "malformed JSON"
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			msg = "unexpected end of input"
		}
		return Token{}, &Error{Code: "parse_error", Path: pointer(path), Message: msg, Offset: b.src.Location(), Cause: err}
	}
	if b.opt.MaxBytes > 0 && tok.Offset > b.opt.MaxBytes {
		return Token{}, &Error{Code: "parse_error", Path: pointer(path), Message: "max bytes exceeded", Offset: tok.Offset}
	}
	return tok, nil
}

func (b *builder) value(tok Token, path string) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return b.object(path, tok.Offset)
	case KindBeginArray:
		return b.array(path, tok.Offset)
	case KindString:
		return tok.String, nil
	case KindNumber:
		return json.Number(tok.Number), nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	}
	return nil, &Error{Code: "parse_error", Path: pointer(path), Message: "unexpected " + tok.Kind.String(), Offset: tok.Offset}
}

func (b *builder) enter(path string, off int64) error {
	b.depth++
	if b.opt.MaxDepth > 0 && b.depth > b.opt.MaxDepth {
		return &Error{Code: "parse_error", Path: pointer(path), Message: "max depth exceeded", Offset: off}
	}
	return nil
}

func (b *builder) object(path string, off int64) (any, error) {
	if err := b.enter(path, off); err != nil {
		return nil, err
	}
	defer func() { b.depth-- }()
	m := make(map[string]any)
	for {
		tok, err := b.next(path)
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return m, nil
		}
		if tok.Kind != KindKey {
			return nil, &Error{Code: "parse_error", Path: pointer(path), Message: "expected object key", Offset: tok.Offset}
		}
		child := JoinPointer(path, tok.String)
		if _, dup := m[tok.String]; dup && b.opt.RejectDuplicateKeys {
			return nil, &Error{Code: "parse_error", Path: child, Message: "key '" + tok.String + "' duplicated", Offset: tok.Offset}
		}
		vt, err := b.next(child)
		if err != nil {
			return nil, err
		}
		v, err := b.value(vt, child)
		if err != nil {
			return nil, err
		}
		m[tok.String] = v
	}
}

func (b *builder) array(path string, off int64) (any, error) {
	if err := b.enter(path, off); err != nil {
		return nil, err
	}
	defer func() { b.depth-- }()
	arr := []any{}
	for {
		child := path + "/" + strconv.Itoa(len(arr))
		tok, err := b.next(child)
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := b.value(tok, child)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func pointer(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// JoinPointer appends one RFC 6901 reference token to base.
func JoinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
