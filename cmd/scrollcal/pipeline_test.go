package main

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"scrollcal/internal/config"
	"scrollcal/internal/imageio"
	"scrollcal/internal/web"
)

func writeSolid(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	require.NoError(t, imageio.SavePNG(path, img))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	conf := config.DefaultConfig()
	conf.Template = filepath.Join(dir, "template.png")
	conf.Header = filepath.Join(dir, "header.png")
	conf.Output = filepath.Join(dir, "out", "out.png")
	writeSolid(t, conf.Template, 1024, 1447, color.RGBA{R: 0xEF, G: 0xD4, B: 0xA5, A: 0xFF})
	writeSolid(t, conf.Header, 930, 95, color.RGBA{R: 0x69, G: 0x43, B: 0x42, A: 0xFF})
	return conf
}

func TestRenderSample(t *testing.T) {
	conf := testConfig(t)
	defines := filepath.Join(filepath.Dir(conf.Output), "datastream.h")

	p, err := newPipeline(conf, true, defines)
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2020, 5, 30, 12, 0, 0, 0, p.loc) }

	srv := web.NewServer(conf)
	require.NoError(t, p.renderAndPublish(context.Background(), srv))

	img, err := imageio.LoadPNG(conf.Output)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 1024, 2048), img.Bounds())

	h, err := os.ReadFile(defines)
	require.NoError(t, err)
	require.Contains(t, string(h), "#define SCROLLCAL_DSLEN")
	require.Contains(t, string(h), "SCROLLCAL_DSOFF_ROWINFO")
}

func TestNewPipelineErrors(t *testing.T) {
	conf := testConfig(t)
	_, err := newPipeline(conf, false, "")
	require.ErrorContains(t, err, "feed_url")

	conf.Template = filepath.Join(t.TempDir(), "missing.png")
	_, err = newPipeline(conf, true, "")
	require.Error(t, err)

	conf = testConfig(t)
	conf.Fonts.Time.Weight = "heavy"
	_, err = newPipeline(conf, true, "")
	require.ErrorContains(t, err, "fonts.time")
}

func TestApplyFlags(t *testing.T) {
	conf := config.DefaultConfig()
	applyFlags(conf, flagConfig{template: "t.png", branch: "main", cron: "config", listen: ":8080"})
	require.Equal(t, "t.png", conf.Template)
	require.Equal(t, "header.png", conf.Header)
	require.Equal(t, "main", conf.BranchName)
	require.Equal(t, "*/15 * * * *", conf.RefreshCron)
	require.Equal(t, ":8080", conf.Listen)

	applyFlags(conf, flagConfig{cron: "0 * * * *"})
	require.Equal(t, "0 * * * *", conf.RefreshCron)
	require.True(t, flagConfig{cron: "x"}.daemon())
	require.False(t, flagConfig{}.daemon())
}
