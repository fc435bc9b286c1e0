package text

import (
	"bytes"
	"image"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"scrollcal/internal/geom"
	"scrollcal/internal/log"
)

// runeWidth measures every rune as 10 pixels.
func runeWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * 10
}

func TestSegments(t *testing.T) {
	require.Equal(t, []string{"hello ", "world"}, segments("hello world"))
	require.Equal(t, []string{"a  ", "b"}, segments("a  b"))
	require.Equal(t, []string{"会", "議", " ", "at ", "9"}, segments("会議 at 9"))
	require.Equal(t, strings.Join(segments("x【イベント】y"), ""), "x【イベント】y")
}

func TestWrapWords(t *testing.T) {
	lines := wrapLines("the quick brown fox", 100, runeWidth)
	require.Equal(t, []string{"the quick", "brown fox"}, lines)
	for _, l := range lines {
		require.LessOrEqual(t, runeWidth(l), 100.0)
	}
}

func TestWrapLongWordFallsBackToRunes(t *testing.T) {
	lines := wrapLines("abcdefghij klm", 40, runeWidth)
	require.Equal(t, []string{"abcd", "efgh", "ij", "klm"}, lines)
}

func TestWrapWideRunes(t *testing.T) {
	lines := wrapLines("イベント情報がありません", 50, runeWidth)
	require.Equal(t, []string{"イベント情", "報がありま", "せん"}, lines)
}

func TestWrapNewlinesAndEmpty(t *testing.T) {
	require.Equal(t, []string{""}, wrapLines("", 100, runeWidth))
	require.Equal(t, []string{"a", "b"}, wrapLines("a\nb", 0, runeWidth))
	require.Equal(t, []string{"a", "b c"}, wrapLines("a\nb c", 100, runeWidth))
}

func TestFaceShaperMeasure(t *testing.T) {
	sh := NewFaceShaper()
	f := Font{Size: 12, Weight: Regular}

	one, err := sh.Measure("Standup", f, 0, 1)
	require.NoError(t, err)
	require.Greater(t, one.Width, 0.0)
	require.Greater(t, one.Height, 0.0)
	require.Greater(t, one.Baseline, 0.0)
	require.LessOrEqual(t, one.Baseline, one.Height+1)

	long := "planning session with the whole team about next quarter"
	wrapped, err := sh.Measure(long, f, 120, 0)
	require.NoError(t, err)
	require.LessOrEqual(t, wrapped.Width, 120.0)
	require.Greater(t, wrapped.Height, one.Height)

	limited, err := sh.Measure(long, f, 120, 2)
	require.NoError(t, err)
	require.InDelta(t, 2*one.Height, limited.Height, 0.01)

	empty, err := sh.Measure("", f, 120, 2)
	require.NoError(t, err)
	require.Zero(t, empty.Width)
	require.InDelta(t, one.Height, empty.Height, 0.01)
}

func TestFaceShaperRejectsBadFonts(t *testing.T) {
	sh := NewFaceShaper()
	_, err := sh.Measure("x", Font{Size: 0}, 0, 1)
	require.Error(t, err)

	_, err = sh.Measure("x", Font{Path: "/nonexistent/font.ttf", Size: 10}, 0, 1)
	require.Error(t, err)
}

func TestFaceShaperDraw(t *testing.T) {
	sh := NewFaceShaper()
	f := Font{Size: 16, Weight: Bold}
	m, err := sh.Measure("HH", f, 0, 1)
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, int(m.Width)+1, int(m.Height)+1))
	require.NoError(t, sh.Draw(img, "HH", f, 0, 1, geom.Hex(0x694342)))

	painted := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			painted++
		}
	}
	require.Positive(t, painted)
}

func TestStats(t *testing.T) {
	var nilStats *Stats
	nilStats.Record("ignored", 3)

	st := NewStats()
	sh := NewFaceShaper()
	sh.Stats = st
	_, err := sh.Measure("aab", Font{Size: 10}, 0, 1)
	require.NoError(t, err)
	st.Record("b", 2.2)

	runes := st.Runes()
	require.Len(t, runes, 2)
	require.Equal(t, 'a', runes[0].Key)
	require.Equal(t, 2, runes[0].Value)
	require.Equal(t, 'b', runes[1].Key)
	require.Equal(t, 2, runes[1].Value)

	widths := st.Widths()
	require.Len(t, widths, 2)
	require.Equal(t, 3, widths[0].Key)
}

func TestFaceShaperReportsMissingGlyphs(t *testing.T) {
	sh := NewFaceShaper()
	f := Font{Size: 12, Weight: Bold}

	missing, err := sh.Missing("05/30 (土) 【会議】", f)
	require.NoError(t, err)
	require.Equal(t, []rune("土【会議】"), missing)

	partial, err := sh.Missing("Standup 09:00 ~翌", Font{Size: 12, Weight: Regular})
	require.NoError(t, err)
	require.Equal(t, []rune("翌"), partial)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	_, err = sh.Measure("05/30 (土)", f, 0, 1)
	require.NoError(t, err)
	_, err = sh.Measure("05/31 (日)", f, 0, 1)
	require.NoError(t, err)
	_, err = sh.Measure("06/06 (土)", f, 0, 1)
	require.NoError(t, err)

	out := buf.String()
	require.Equal(t, 2, strings.Count(out, "font lacks glyphs"))
	require.Contains(t, out, "runes=土")
	require.Contains(t, out, "runes=日")
	require.Contains(t, out, "font=builtin:bold")
}
