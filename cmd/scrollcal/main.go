package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"scrollcal/internal/config"
	appLog "scrollcal/internal/log"
	"scrollcal/internal/web"
)

const version = "0.1.0"

// flagConfig holds CLI flag values. Non-empty values override the config
// file.
type flagConfig struct {
	configPath string
	template   string
	header     string
	output     string
	branch     string
	defines    string
	cron       string
	listen     string
	sample     bool
	debug      bool
}

// daemon reports whether the flags ask for scheduled renders instead of a
// single one.
func (f flagConfig) daemon() bool {
	return f.cron != "" || f.listen != ""
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Info("scrollcal starting", "version", version)

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	applyFlags(conf, flags)
	if !flags.debug {
		appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	}

	appLog.Info("effective config",
		"feed", conf.FeedURL != "",
		"timezone", conf.Timezone,
		"horizon_days", conf.HorizonDays,
		"template", conf.Template,
		"header", conf.Header,
		"output", conf.Output,
		"branch", conf.BranchName,
		"sample", flags.sample,
		"daemon", flags.daemon(),
	)

	p, err := newPipeline(conf, flags.sample, flags.defines)
	if err != nil {
		appLog.Error("failed to set up renderer", err)
		os.Exit(1)
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if !flags.daemon() {
		if _, err := p.render(ctx); err != nil {
			appLog.Error("render failed", err)
			os.Exit(1)
		}
		return
	}

	if err := runDaemon(ctx, conf, p); err != nil {
		appLog.Error("daemon stopped", err)
		os.Exit(1)
	}
	appLog.Info("scrollcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "scrollcal.yaml", "Path to config file")
	flag.StringVar(&cfg.template, "template", "", "Background template PNG (overrides config)")
	flag.StringVar(&cfg.header, "header", "", "Day header template PNG (overrides config)")
	flag.StringVar(&cfg.output, "output", "", "Output PNG path (overrides config)")
	flag.StringVar(&cfg.branch, "branch", "", "Branch label printed in the footer (overrides config)")
	flag.StringVar(&cfg.defines, "defines", "", "Write the datastream offsets as a C header to this path")
	flag.StringVar(&cfg.cron, "cron", "", "Render on this cron schedule instead of once (\"config\" uses the configured one)")
	flag.StringVar(&cfg.listen, "listen", "", "Serve previews on this address and render on schedule")
	flag.BoolVar(&cfg.sample, "sample", false, "Render the built-in sample calendar instead of fetching the feed")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}

func applyFlags(conf *config.Config, f flagConfig) {
	if f.template != "" {
		conf.Template = f.template
	}
	if f.header != "" {
		conf.Header = f.header
	}
	if f.output != "" {
		conf.Output = f.output
	}
	if f.branch != "" {
		conf.BranchName = f.branch
	}
	if f.cron != "" && f.cron != "config" {
		conf.RefreshCron = f.cron
	}
	if f.listen != "" {
		conf.Listen = f.listen
	}
}

// runDaemon renders once, then on every tick of the refresh schedule, and
// serves the results when a listen address is configured.
func runDaemon(ctx context.Context, conf *config.Config, p *pipeline) error {
	loc, err := conf.Location()
	if err != nil {
		return err
	}

	var srv *web.Server
	if conf.Listen != "" {
		srv = web.NewServer(conf)
		srv.Refresh = func(ctx context.Context) error {
			return p.renderAndPublish(ctx, srv)
		}
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(conf.RefreshCron, func() {
		runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		_ = p.renderAndPublish(runCtx, srv)
	}); err != nil {
		return err
	}

	_ = p.renderAndPublish(ctx, srv)
	c.Start()
	appLog.Info("scheduler started", "refresh", conf.RefreshCron, "timezone", loc.String())
	defer func() {
		<-c.Stop().Done()
		appLog.Info("scheduler stopped")
	}()

	if srv == nil {
		<-ctx.Done()
		return nil
	}
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// cronLogger routes robfig/cron logs through the app logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
