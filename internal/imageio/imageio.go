// Package imageio loads and stores the PNG files scrollcal reads and
// writes.
package imageio

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
)

// LoadPNG decodes a PNG file.
func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: open: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("imageio: decode %s: %w", path, err)
	}
	return img, nil
}

// EncodePNG writes img to w at png.BestSpeed.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("imageio: encode: %w", err)
	}
	return nil
}

// SavePNG writes img to path via a temp file and rename.
func SavePNG(path string, img image.Image) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".scrollcal-*.png")
	if err != nil {
		return fmt.Errorf("imageio: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	bw := bufio.NewWriter(tmp)
	if err := EncodePNG(bw, img); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("imageio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("imageio: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("imageio: %w", err)
	}
	return nil
}

// Flatten returns an opaque copy of a premultiplied image: color channels
// are kept as stored and alpha is forced to 0xFF, the way a 24-bit RGB
// surface drops its alpha byte.
func Flatten(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		s := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		d := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			i := x * 4
			d[i+0], d[i+1], d[i+2], d[i+3] = s[i+0], s[i+1], s[i+2], 0xFF
		}
	}
	return dst
}
