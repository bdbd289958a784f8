package wire

import (
	j "github.com/goccy/go-json"
)

// Marshal renders a tree produced by the codec. Object members come out in
// sorted key order so equal trees render to equal bytes.
func Marshal(v any) ([]byte, error) { return j.Marshal(v) }

// MarshalIndent is Marshal with two-space indentation.
func MarshalIndent(v any) ([]byte, error) { return j.MarshalIndent(v, "", "  ") }
