package shuffler

import (
	"context"
	"image"

	"shufflerd/internal/frame"
)

// Generator produces one image into dst. It runs on its own goroutine, owns
// dst exclusively until it returns, and must return promptly once ctx is
// cancelled. src stays unmodified for the duration of the call.
type Generator interface {
	Generate(ctx context.Context, src image.Image, p Params, dst *frame.Buffer) error
}

// Source returns the current source image. The result only needs to stay
// valid until the next call.
type Source interface {
	CurrentImage() image.Image
}

// Copier copies src into dst, scaling to the buffer resolution.
type Copier interface {
	Copy(src image.Image, dst *frame.Buffer)
}

// Collaborators bundles the external dependencies of a pipeline.
type Collaborators struct {
	Source    Source
	Generator Generator
	Copier    Copier
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, src image.Image, p Params, dst *frame.Buffer) error

func (f GeneratorFunc) Generate(ctx context.Context, src image.Image, p Params, dst *frame.Buffer) error {
	return f(ctx, src, p, dst)
}
