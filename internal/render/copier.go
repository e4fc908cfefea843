// Package render implements the copy and composite collaborators of the
// pipeline on top of golang.org/x/image/draw.
package render

import (
	"fmt"
	"image"
	"strings"

	xdraw "golang.org/x/image/draw"

	"shufflerd/internal/frame"
)

// Kernel names accepted by NewScaleCopier.
const (
	KernelNearest    = "nearest"
	KernelApprox     = "approx"
	KernelBilinear   = "bilinear"
	KernelCatmullRom = "catmullrom"
)

func interpolator(kernel string) (xdraw.Interpolator, error) {
	switch strings.ToLower(strings.TrimSpace(kernel)) {
	case "", KernelApprox:
		return xdraw.ApproxBiLinear, nil
	case KernelNearest:
		return xdraw.NearestNeighbor, nil
	case KernelBilinear:
		return xdraw.BiLinear, nil
	case KernelCatmullRom:
		return xdraw.CatmullRom, nil
	default:
		return nil, fmt.Errorf("unknown scaling kernel %q", kernel)
	}
}

// ScaleCopier copies source images into pool buffers. Sources with a
// different aspect ratio are center-cropped to fill the buffer.
type ScaleCopier struct {
	scaler xdraw.Interpolator
}

// NewScaleCopier returns a copier using the named kernel. An empty name picks
// approximate bilinear, which is cheap enough for every refill.
func NewScaleCopier(kernel string) (*ScaleCopier, error) {
	s, err := interpolator(kernel)
	if err != nil {
		return nil, err
	}
	return &ScaleCopier{scaler: s}, nil
}

// Copy writes src into dst, scaling to the buffer resolution.
func (c *ScaleCopier) Copy(src image.Image, dst *frame.Buffer) {
	if src == nil || dst == nil || dst.Img == nil {
		return
	}
	dr := dst.Img.Bounds()
	if rgba, ok := src.(*image.RGBA); ok && rgba.Bounds().Size() == dr.Size() {
		copyRows(dst.Img, rgba)
		return
	}
	c.scaler.Scale(dst.Img, dr, src, CoverRect(src.Bounds(), dr.Size()), xdraw.Src, nil)
}

func copyRows(dst, src *image.RGBA) {
	sb := src.Bounds()
	n := sb.Dx() * 4
	for y := 0; y < sb.Dy(); y++ {
		so := src.PixOffset(sb.Min.X, sb.Min.Y+y)
		do := y * dst.Stride
		copy(dst.Pix[do:do+n], src.Pix[so:so+n])
	}
}

// CoverRect returns the centered sub-rectangle of sr whose aspect ratio
// matches size.
func CoverRect(sr image.Rectangle, size image.Point) image.Rectangle {
	sw, sh := sr.Dx(), sr.Dy()
	if sw <= 0 || sh <= 0 || size.X <= 0 || size.Y <= 0 {
		return sr
	}
	// Compare sw/sh with size.X/size.Y without floats.
	switch {
	case sw*size.Y > sh*size.X:
		w := sh * size.X / size.Y
		x := sr.Min.X + (sw-w)/2
		return image.Rect(x, sr.Min.Y, x+w, sr.Max.Y)
	case sw*size.Y < sh*size.X:
		h := sw * size.Y / size.X
		y := sr.Min.Y + (sh-h)/2
		return image.Rect(sr.Min.X, y, sr.Max.X, y+h)
	default:
		return sr
	}
}
