package geom

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUint32(t *testing.T) {
	v, err := Uint32("width", 12.9)
	require.NoError(t, err)
	require.Equal(t, uint32(12), v)

	v, err = CeilUint32("width", 12.1)
	require.NoError(t, err)
	require.Equal(t, uint32(13), v)

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1, 1 << 40} {
		_, err := Uint32("scroll_height", bad)
		var ne *NarrowError
		require.True(t, errors.As(err, &ne), "value %v", bad)
		require.Equal(t, "scroll_height", ne.Field)
		require.Contains(t, err.Error(), "scroll_height")
	}
}

func TestCeilInt(t *testing.T) {
	v, err := CeilInt("tex_height", 299.0001)
	require.NoError(t, err)
	require.Equal(t, 300, v)

	_, err = CeilInt("tex_height", math.NaN())
	require.Error(t, err)
}

func TestUint32FromInt(t *testing.T) {
	v, err := Uint32FromInt("vdata_len", 42)
	require.NoError(t, err)
	require.Equal(t, uint32(42), v)

	_, err = Uint32FromInt("vdata_len", -1)
	require.Error(t, err)
}

func TestHex(t *testing.T) {
	require.Equal(t, RGB{R: 0x9B, G: 0xAE, B: 0xC0}, Hex(0x9BAEC0))
	_, _, _, a := Hex(0x123456).RGBA()
	require.Equal(t, uint32(0xFFFF), a)
}
