package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"scrollcal/internal/config"
	"scrollcal/internal/datastream"
	"scrollcal/internal/ics"
	"scrollcal/internal/imageio"
	"scrollcal/internal/layout"
	appLog "scrollcal/internal/log"
	"scrollcal/internal/model"
	"scrollcal/internal/text"
	"scrollcal/internal/web"
)

// pipeline runs fetch, layout, render and save. Renders are serialized;
// each one builds its own shaper and surfaces.
type pipeline struct {
	mu sync.Mutex

	conf    *config.Config
	loc     *time.Location
	fonts   layout.Fonts
	sample  bool
	defines string

	template  image.Image
	dayHeader image.Image
	feed      *ics.Feed

	// now is replaced in tests.
	now func() time.Time
}

func newPipeline(conf *config.Config, sample bool, defines string) (*pipeline, error) {
	loc, err := conf.Location()
	if err != nil {
		return nil, err
	}
	fonts, err := layoutFonts(conf.Fonts)
	if err != nil {
		return nil, err
	}
	template, err := imageio.LoadPNG(conf.Template)
	if err != nil {
		return nil, err
	}
	dayHeader, err := imageio.LoadPNG(conf.Header)
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		conf:      conf,
		loc:       loc,
		fonts:     fonts,
		sample:    sample,
		defines:   defines,
		template:  template,
		dayHeader: dayHeader,
		now:       time.Now,
	}
	if !sample {
		if conf.FeedURL == "" {
			return nil, errors.New("config: feed_url is empty (use -sample to render sample data)")
		}
		p.feed = &ics.Feed{
			URL: conf.FeedURL,
			Window: ics.Window{
				Location:      loc,
				HorizonDays:   conf.HorizonDays,
				DayCutoffHour: conf.DayCutoffHour,
			},
			MaxParseErrors: conf.MaxParseErrors,
			Fetcher:        ics.NewFetcher(conf.CacheDir, conf.FetchTimeout()),
		}
	}
	return p, nil
}

func layoutFonts(f config.Fonts) (layout.Fonts, error) {
	var out layout.Fonts
	for _, role := range []struct {
		name string
		src  config.FontConfig
		dst  *text.Font
	}{
		{"day_header", f.DayHeader, &out.DayHeader},
		{"time", f.Time, &out.Time},
		{"end_time", f.EndTime, &out.EndTime},
		{"event", f.Event, &out.Event},
		{"info", f.Info, &out.Info},
	} {
		font, err := role.src.Font()
		if err != nil {
			return layout.Fonts{}, fmt.Errorf("config: fonts.%s: %w", role.name, err)
		}
		*role.dst = font
	}
	return out, nil
}

// sampleData is a single empty day.
func sampleData(loc *time.Location) []model.CalendarDay {
	return []model.CalendarDay{{
		Date: time.Date(2020, 5, 30, 0, 0, 0, 0, loc),
	}}
}

func (p *pipeline) days(ctx context.Context, now time.Time) ([]model.CalendarDay, error) {
	if p.sample {
		return sampleData(p.loc), nil
	}
	return p.feed.FetchCalendar(ctx, now)
}

func (p *pipeline) render(ctx context.Context) (*web.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	now := p.now()
	days, err := p.days(ctx, now)
	if err != nil {
		return nil, err
	}

	stats := text.NewStats()
	shaper := text.NewFaceShaper()
	shaper.Stats = stats

	setup, err := layout.NewSetup(p.template, p.dayHeader, shaper, p.fonts, p.conf.BranchName, now, p.loc)
	if err != nil {
		return nil, err
	}
	setup.HeaderMargin = p.conf.HeaderMargin

	full, data, err := setup.ComputeFullLayout(days)
	if err != nil {
		return nil, err
	}
	img, stream, err := layout.Render(full, data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imageio.EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	if err := writeFileAtomic(p.conf.Output, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("write %s: %w", p.conf.Output, err)
	}
	if p.defines != "" {
		if err := writeDefines(p.defines, stream); err != nil {
			return nil, err
		}
	}

	stats.Log()
	layout.LogCharStats(days)

	events := 0
	for _, d := range days {
		events += len(d.Events)
	}
	appLog.Info("render complete",
		"output", p.conf.Output,
		"days", len(days),
		"events", events,
		"elapsed", time.Since(start).String(),
	)
	return &web.Result{
		RenderedAt: now,
		PNG:        buf.Bytes(),
		Elements:   data,
		Stream:     stream,
		Days:       len(days),
		Events:     events,
	}, nil
}

// renderAndPublish renders and hands the result to srv, which may be nil.
func (p *pipeline) renderAndPublish(ctx context.Context, srv *web.Server) error {
	res, err := p.render(ctx)
	if err != nil {
		appLog.Error("render failed", err)
		if srv != nil {
			srv.PublishError(err)
		}
		return err
	}
	if srv != nil {
		srv.Publish(res)
	}
	return nil
}

func writeDefines(path string, stream *datastream.Stream) error {
	var buf bytes.Buffer
	if err := datastream.WriteDefines(&buf, stream); err != nil {
		return err
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	appLog.Info("datastream defines written", "path", path, "fields", len(stream.Offsets))
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".scrollcal-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
