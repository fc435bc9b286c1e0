package datastream

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"scrollcal/internal/geom"
)

func TestConvertPart(t *testing.T) {
	prev := -1
	for v := uint32(0); v <= 63; v++ {
		c, err := ConvertPart(v)
		require.NoError(t, err)
		require.Greater(t, int(c), prev, "value %d", v)
		prev = int(c)
	}
	require.Equal(t, 254, prev)

	_, err := ConvertPart(64)
	require.Error(t, err)

	require.Equal(t, uint8(95), adjust(95))
	require.Equal(t, uint8(96), adjust(96))
	require.Equal(t, uint8(99), adjust(97))

	c, _ := ConvertPart(24)
	require.Equal(t, uint8(96), c)
	c, _ = ConvertPart(25)
	require.Equal(t, uint8(102), c)
}

func TestFromValue(t *testing.T) {
	c, err := FromValue(0)
	require.NoError(t, err)
	require.Equal(t, ByteColor{A: 0xFF}, c)

	c, err = FromValue(1<<12 | 2<<6 | 3)
	require.NoError(t, err)
	require.Equal(t, ByteColor{R: 4, G: 8, B: 12, A: 0xFF}, c)

	c, err = FromValue(maxValue)
	require.NoError(t, err)
	require.Equal(t, ByteColor{R: 254, G: 254, B: 254, A: 0xFF}, c)

	_, err = FromValue(1 << 18)
	require.Error(t, err)
}

func filled() *Elements {
	e := &Elements{
		DatastreamWidth:    4,
		DatastreamHeight:   100,
		ViewportW:          1024,
		ViewportH:          1447,
		ColDivs:            [3]uint32{139, 153, 1024},
		Palette:            [PaletteSize]geom.RGB{geom.Hex(0xEFD4A5), 7: geom.Hex(0x00FFFF)},
		DayHeaderTrueWidth: 2,
	}
	return e
}

func TestEncodeOrder(t *testing.T) {
	e := filled()
	e.VData = []VerticalData{
		{PrevDayHeader: 0, Info: DayHeader(0)},
		{PrevDayHeader: 0, Info: DayHeader(1)},
		{PrevDayHeader: 0, Info: Colors([4]uint8{4, 3, 2, 1})},
	}
	s, err := e.Encode()
	require.NoError(t, err)
	require.Len(t, s.Pixels, 9+3+8+15+1+3+3)

	at := func(name string) int {
		for _, off := range s.Offsets {
			if off.Name == name {
				return off.Index
			}
		}
		t.Fatalf("no offset %s", name)
		return -1
	}
	require.Equal(t, 0, at("DATASTREAM_WIDTH"))
	require.Equal(t, 2, at("VIEWPORT_W"))
	require.Equal(t, 9, at("COL_DIVS_0"))
	require.Equal(t, 12, at("PALETTE"))
	require.Equal(t, 20, at("SECTION_PAD"))
	require.Equal(t, 31, at("DAY_HEADER_TRUE_WIDTH"))
	require.Equal(t, 34, at("SCROLL_SPLIT_POINT"))
	require.Equal(t, 35, at("VDATA_LEN"))
	require.Equal(t, 36, at("PREVDH"))
	require.Equal(t, 39, at("ROWINFO"))

	w, _ := FromValue(1024)
	require.Equal(t, w, s.Pixels[2])
	require.Equal(t, FromRGB(geom.Hex(0xEFD4A5)), s.Pixels[12])
	require.Equal(t, ByteColor{R: 0, G: 0xFF, B: 0xFF, A: 0xFF}, s.Pixels[19])
	tw, _ := FromValue(2)
	require.Equal(t, tw, s.Pixels[31])
	n, _ := FromValue(3)
	require.Equal(t, n, s.Pixels[35])

	hdr, _ := FromValue(1 | HeaderFlag)
	require.Equal(t, hdr, s.Pixels[40])
	row, _ := FromValue(4<<9 | 3<<6 | 2<<3 | 1)
	require.Equal(t, row, s.Pixels[41])
}

func TestEncodeErrors(t *testing.T) {
	_, err := NewElements().Encode()
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "DATASTREAM_WIDTH", fe.Field)

	e := filled()
	e.ScrollHeight = 1 << 18
	_, err = e.Encode()
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "SCROLL_HEIGHT", fe.Field)
	require.Contains(t, err.Error(), "262144")

	e = filled()
	e.VData = []VerticalData{{Info: Colors([4]uint8{0, 8, 0, 0})}}
	_, err = e.Encode()
	require.ErrorContains(t, err, "out of range")

	e = filled()
	e.VData = []VerticalData{{Info: DayHeader(HeaderFlag)}}
	_, err = e.Encode()
	require.ErrorContains(t, err, "17 bits")
}

func TestWriteRightToLeft(t *testing.T) {
	e := filled()
	img := image.NewRGBA(image.Rect(0, 0, 8, 16))
	s, err := e.Write(img)
	require.NoError(t, err)

	px := func(x, y int) ByteColor {
		c := img.RGBAAt(x, y)
		return ByteColor{R: c.R, G: c.G, B: c.B, A: c.A}
	}
	require.Equal(t, s.Pixels[0], px(7, 0))
	require.Equal(t, s.Pixels[1], px(6, 0))
	require.Equal(t, s.Pixels[3], px(4, 0))
	require.Equal(t, s.Pixels[4], px(7, 1))
	require.Equal(t, ByteColor{}, px(3, 0))
}

func TestWriteCapacity(t *testing.T) {
	e := filled()
	e.DatastreamHeight = 2
	_, err := e.Write(image.NewRGBA(image.Rect(0, 0, 8, 16)))
	require.ErrorIs(t, err, ErrCapacity)

	e = filled()
	_, err = e.Write(image.NewRGBA(image.Rect(0, 0, 3, 16)))
	require.ErrorIs(t, err, ErrCapacity)

	_, err = e.Write(image.NewRGBA(image.Rect(0, 0, 8, 5)))
	require.ErrorIs(t, err, ErrCapacity)
}

func TestWriteDefines(t *testing.T) {
	s, err := filled().Encode()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDefines(&buf, s))
	out := buf.String()
	require.Contains(t, out, "#define SCROLLCAL_DSOFF_PALETTE 12\n")
	require.Contains(t, out, "#define SCROLLCAL_DSOFF_VDATA_LEN 35\n")
	require.True(t, strings.HasSuffix(out, "#define SCROLLCAL_DSLEN 36\n"))
}
