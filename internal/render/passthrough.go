package render

import (
	"bytes"
	"context"
)

// PassthroughRenderer publishes the source unchanged.
type PassthroughRenderer struct{}

func (PassthroughRenderer) Name() string { return "copy" }

func (PassthroughRenderer) Render(_ context.Context, in Input) ([]byte, error) {
	return bytes.Clone(in.Source), nil
}
