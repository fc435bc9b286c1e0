package imageio

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 0x40, G: 0x20, B: 0x10, A: 0x80})

	out := Flatten(src)
	require.Equal(t, color.RGBA{R: 0x40, G: 0x20, B: 0x10, A: 0xFF}, out.RGBAAt(0, 0))
	require.Equal(t, color.RGBA{A: 0xFF}, out.RGBAAt(1, 0))
	require.Equal(t, uint8(0x80), src.RGBAAt(0, 0).A)
}

func TestSaveAndLoadPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(2, 1, color.RGBA{R: 0xEF, G: 0xD4, B: 0xA5, A: 0xFF})
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, SavePNG(path, Flatten(img)))

	back, err := LoadPNG(path)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 3, 2), back.Bounds())
	r, g, b, _ := back.At(2, 1).RGBA()
	require.Equal(t, []uint32{0xEF, 0xD4, 0xA5}, []uint32{r >> 8, g >> 8, b >> 8})

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestLoadPNGErrors(t *testing.T) {
	_, err := LoadPNG(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o600))
	_, err = LoadPNG(path)
	require.ErrorContains(t, err, "decode")
}
