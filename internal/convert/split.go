// Package convert packs a tall alpha-mask render into an opaque texture
// one third of its height, one mask third per color channel.
package convert

import (
	"fmt"
	"image"
)

// SplitChannels reads only the alpha of src. With h = src height / 3, the
// output pixel (x, y) carries:
//
//   - B: alpha of src (x, y)
//   - G: alpha of src (x, y+h)
//   - R: alpha of src (x, y+2h)
//
// and is fully opaque. The source height must be a multiple of three.
func SplitChannels(src *image.RGBA) (*image.RGBA, error) {
	b := src.Bounds()
	w := b.Dx()
	if b.Dy()%3 != 0 {
		return nil, fmt.Errorf("convert: height %d is not a multiple of 3", b.Dy())
	}
	h := b.Dy() / 3

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst, nil
	}

	// Walk the strides directly; At() would box every pixel.
	third := h * src.Stride
	for y := 0; y < h; y++ {
		srcRow := src.PixOffset(b.Min.X, b.Min.Y+y)
		dstRow := y * dst.Stride
		for x := 0; x < w; x++ {
			a := srcRow + x*4 + 3
			o := dstRow + x*4
			dst.Pix[o+0] = src.Pix[a+2*third]
			dst.Pix[o+1] = src.Pix[a+third]
			dst.Pix[o+2] = src.Pix[a]
			dst.Pix[o+3] = 0xFF
		}
	}
	return dst, nil
}
