package frame

import "image"

// Buffer is a fixed-resolution image surface. Buffers are tracked by identity;
// their pixels are overwritten in place by copies and generations.
type Buffer struct {
	ID  int
	Img *image.RGBA
}

// NewBuffer allocates a w x h RGBA buffer.
func NewBuffer(id, w, h int) *Buffer {
	return &Buffer{ID: id, Img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Bounds returns the buffer rectangle.
func (b *Buffer) Bounds() image.Rectangle { return b.Img.Rect }
