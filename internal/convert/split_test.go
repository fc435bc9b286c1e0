package convert

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitChannels(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 2; x++ {
			src.SetRGBA(x, y, color.RGBA{A: uint8(10*y + x)})
		}
	}

	out, err := SplitChannels(src)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 2, 2), out.Bounds())

	// Third 0 -> B, third 1 -> G, third 2 -> R.
	require.Equal(t, color.RGBA{R: 40, G: 20, B: 0, A: 0xFF}, out.RGBAAt(0, 0))
	require.Equal(t, color.RGBA{R: 51, G: 31, B: 11, A: 0xFF}, out.RGBAAt(1, 1))
}

func TestSplitChannelsIgnoresColor(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 3))
	src.SetRGBA(0, 0, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})

	out, err := SplitChannels(src)
	require.NoError(t, err)
	require.Equal(t, color.RGBA{B: 0xFF, A: 0xFF}, out.RGBAAt(0, 0))
}

func TestSplitChannelsSubImage(t *testing.T) {
	full := image.NewRGBA(image.Rect(0, 0, 4, 9))
	full.SetRGBA(2, 8, color.RGBA{A: 7})
	sub := full.SubImage(image.Rect(2, 3, 4, 9)).(*image.RGBA)

	out, err := SplitChannels(sub)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 2, 2), out.Bounds())
	require.Equal(t, uint8(7), out.RGBAAt(0, 1).R)
}

func TestSplitChannelsRejectsBadHeight(t *testing.T) {
	_, err := SplitChannels(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	require.Error(t, err)

	out, err := SplitChannels(image.NewRGBA(image.Rect(0, 0, 4, 0)))
	require.NoError(t, err)
	require.True(t, out.Bounds().Empty())
}
