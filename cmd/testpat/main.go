// Command testpat writes the quantization calibration pattern: a 16x16
// grid where cell (x, y) encodes x + (15-y)*16 the way datastream scalars
// are encoded, so the device's decoded values can be checked against the
// grid position.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"scrollcal/internal/datastream"
	"scrollcal/internal/imageio"
	"scrollcal/internal/layout"
	appLog "scrollcal/internal/log"
	"scrollcal/internal/render"
)

func main() {
	out := flag.String("out", "colors.png", "Output PNG path")
	block := flag.Int("block", 1, "Pixels per grid cell")
	swatches := flag.String("swatches", "", "Also write the palette swatches to this PNG path")
	flag.Parse()

	img, err := pattern(*block)
	if err != nil {
		appLog.Error("failed to build test pattern", err)
		os.Exit(1)
	}
	if err := imageio.SavePNG(*out, img); err != nil {
		appLog.Error("failed to write test pattern", err, "path", *out)
		os.Exit(1)
	}
	appLog.Info("test pattern written", "path", *out, "size", img.Bounds().Dx())

	if *swatches != "" {
		sw := layout.ColorArray()
		b := sw.Bounds()
		s := render.NewSurface(int(b.W), int(b.H))
		if err := render.Render(s, sw); err != nil {
			appLog.Error("failed to render swatches", err)
			os.Exit(1)
		}
		if err := imageio.SavePNG(*swatches, imageio.Flatten(s.Image())); err != nil {
			appLog.Error("failed to write swatches", err, "path", *swatches)
			os.Exit(1)
		}
		appLog.Info("swatches written", "path", *swatches, "colors", len(sw))
	}
}

// pattern builds the grid. Values grow upwards since texture coordinates
// start at the bottom.
func pattern(block int) (*image.RGBA, error) {
	if block <= 0 {
		return nil, fmt.Errorf("testpat: block size %d", block)
	}
	dim := 16 * block
	img := image.NewRGBA(image.Rect(0, 0, dim, dim))
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			v := uint32(x/block) + uint32(15-y/block)<<4
			c, err := datastream.FromValue(v)
			if err != nil {
				return nil, err
			}
			px := c.Bytes()
			o := img.PixOffset(x, y)
			copy(img.Pix[o:o+4], px[:])
		}
	}
	return img, nil
}
