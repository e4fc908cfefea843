package config

import (
	"image"

	"shufflerd/internal/frame"
)

type nopSource struct{}

func (nopSource) CurrentImage() image.Image { return nil }

type nopCopier struct{}

func (nopCopier) Copy(image.Image, *frame.Buffer) {}
