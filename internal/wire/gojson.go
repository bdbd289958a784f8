package wire

import (
	"bytes"
	"io"
	"strconv"

	j "github.com/goccy/go-json"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

type source struct {
	dec   *j.Decoder
	in    *countingReader
	stack []frame
}

// NewReader wraps an io.Reader into a TokenSource backed by go-json.
func NewReader(r io.Reader) TokenSource {
	in := &countingReader{r: r}
	dec := j.NewDecoder(in)
	dec.UseNumber()
	return &source{dec: dec, in: in}
}

// NewBytes wraps a byte slice into a TokenSource backed by go-json.
func NewBytes(b []byte) TokenSource { return NewReader(bytes.NewReader(b)) }

// valueDone flips the enclosing object back to expecting a key once a member value ends.
func (s *source) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

func (s *source) NextToken() (Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return Token{}, err
	}
	off := s.Location()
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return Token{Kind: KindBeginObject, Offset: off}, nil
		case '}':
			if n := len(s.stack); n > 0 {
				s.stack = s.stack[:n-1]
			}
			s.valueDone()
			return Token{Kind: KindEndObject, Offset: off}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return Token{Kind: KindBeginArray, Offset: off}, nil
		case ']':
			if n := len(s.stack); n > 0 {
				s.stack = s.stack[:n-1]
			}
			s.valueDone()
			return Token{Kind: KindEndArray, Offset: off}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				return Token{Kind: KindKey, String: v, Offset: off}, nil
			}
		}
		s.valueDone()
		return Token{Kind: KindString, String: v, Offset: off}, nil
	case bool:
		s.valueDone()
		return Token{Kind: KindBool, Bool: v, Offset: off}, nil
	case j.Number:
		s.valueDone()
		return Token{Kind: KindNumber, Number: string(v), Offset: off}, nil
	case float64:
		s.valueDone()
		return Token{Kind: KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: off}, nil
	}
	s.valueDone()
	return Token{Kind: KindNull, Offset: off}, nil
}

// Location reports bytes pulled from the reader, which runs ahead of the
// decoder by at most its buffer size.
func (s *source) Location() int64 { return s.in.n }
