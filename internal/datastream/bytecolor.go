// Package datastream serializes layout metadata into image pixels so the
// display firmware can read geometry and per-row palette indices straight
// out of the rendered frame.
package datastream

import (
	"fmt"

	"scrollcal/internal/geom"
)

// ValueBits is the payload width of one datastream pixel.
const ValueBits = 18

const maxValue = 1<<ValueBits - 1

// ByteColor is one output pixel: either a real color (palette entries) or
// the carrier of one 18-bit value.
type ByteColor struct {
	B, G, R, A uint8
}

// ConvertPart maps a 6-bit value to the 8-bit channel value the panel
// quantizes back to it.
func ConvertPart(v uint32) (uint8, error) {
	if v > 63 {
		return 0, fmt.Errorf("datastream: channel value %d exceeds 6 bits", v)
	}
	return adjust(uint8(v << 2)), nil
}

// adjust compensates for the panel's channel curve above 96.
func adjust(v uint8) uint8 {
	if v > 96 {
		return v + 2
	}
	return v
}

// FromValue packs bits 12-17 into R, 6-11 into G and 0-5 into B.
func FromValue(v uint32) (ByteColor, error) {
	if v > maxValue {
		return ByteColor{}, fmt.Errorf("datastream: value %d is too large to be represented", v)
	}
	r, err := ConvertPart((v >> 12) & 0x3F)
	if err != nil {
		return ByteColor{}, err
	}
	g, err := ConvertPart((v >> 6) & 0x3F)
	if err != nil {
		return ByteColor{}, err
	}
	b, err := ConvertPart(v & 0x3F)
	if err != nil {
		return ByteColor{}, err
	}
	return ByteColor{B: b, G: g, R: r, A: 0xFF}, nil
}

func FromRGB(c geom.RGB) ByteColor {
	return ByteColor{B: c.B, G: c.G, R: c.R, A: 0xFF}
}

// Bytes returns the pixel in image.RGBA memory order.
func (c ByteColor) Bytes() [4]byte {
	return [4]byte{c.R, c.G, c.B, c.A}
}
