package typebind

import (
	"io"

	"github.com/reoring/typebind/internal/wire"
)

// Source abstracts over JSON inputs.
type Source interface {
	tokens() wire.TokenSource
	// bytes returns the whole input when it is already in memory.
	bytes() ([]byte, bool)
}

type bytesSource struct{ b []byte }

func (s bytesSource) tokens() wire.TokenSource { return wire.NewBytes(s.b) }
func (s bytesSource) bytes() ([]byte, bool)    { return s.b, true }

type readerSource struct{ r io.Reader }

func (s readerSource) tokens() wire.TokenSource { return wire.NewReader(s.r) }
func (s readerSource) bytes() ([]byte, bool)    { return nil, false }

// JSONBytes reads a JSON document held in memory.
func JSONBytes(b []byte) Source { return bytesSource{b: b} }

// JSONReader reads a JSON document from r. Only one value is consumed.
func JSONReader(r io.Reader) Source { return readerSource{r: r} }
