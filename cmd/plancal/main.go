package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"plancal/internal/agenda"
	"plancal/internal/config"
	"plancal/internal/ics"
	appLog "plancal/internal/log"
	"plancal/internal/model"
	"plancal/internal/refresh"
	"plancal/internal/source"
	"plancal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	date       string
	outDir     string
}

func main() {
	appLog.Info("plancal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("unknown timezone, using local time", err, "timezone", conf.Timezone)
		loc = time.Local
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"week_start", conf.WeekStart,
		"midnight", conf.Midnight,
		"refresh", conf.RefreshCron,
		"show_habits", conf.ShowHabits,
		"snapshot_file", conf.Source.File,
		"once", flags.once,
	)

	opts := agenda.Options{
		WeekStart:  conf.WeekStartDay(),
		ShowHabits: conf.ShowHabits,
		Midnight:   agenda.MidnightPolicy(conf.Midnight),
	}
	fetcher := source.NewFetcher(conf.CacheDir)

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

	if flags.once {
		if err := runOnce(ctx, fetcher, conf, opts, loc, flags); err != nil {
			appLog.Error("single run failed", err)
			os.Exit(1)
		}
		return
	}

	store := web.NewSnapshotStore(opts)
	refresher := refresh.New(fetcher, conf.Source, store, loc)

	// A failed first load is not fatal; the API answers 503 until a
	// scheduled refresh succeeds.
	if err := refresher.RefreshNow(ctx); err != nil {
		appLog.Error("initial load failed", err)
	}
	if err := refresher.Start(ctx, conf.RefreshCron); err != nil {
		appLog.Error("failed to start refresh schedule", err)
		os.Exit(1)
	}
	defer refresher.Stop()

	srv := web.NewServer(conf, loc, store)
	if err := srv.Run(ctx); err != nil {
		appLog.Error("HTTP server stopped", err)
		os.Exit(1)
	}
	appLog.Info("plancal exiting")
}

// runOnce loads one snapshot and writes the laid-out week and the ICS feed
// into flags.outDir.
func runOnce(ctx context.Context, fetcher *source.Fetcher, conf *config.Config, opts agenda.Options, loc *time.Location, flags flagConfig) error {
	day := model.DateOf(time.Now().In(loc))
	if flags.date != "" {
		d, err := model.ParseDate(flags.date)
		if err != nil {
			return fmt.Errorf("bad -date %q: %w", flags.date, err)
		}
		day = d
	}

	snap, err := fetcher.Load(ctx, conf.Source)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(flags.outDir, 0o755); err != nil {
		return err
	}

	var week bytes.Buffer
	if err := web.EncodeWeek(&week, agenda.New(snap, opts), day); err != nil {
		return err
	}
	layoutPath := filepath.Join(flags.outDir, "layout.json")
	if err := os.WriteFile(layoutPath, week.Bytes(), 0o644); err != nil {
		return err
	}

	var feed bytes.Buffer
	if err := ics.Export(&feed, snap, ics.ExportOptions{Location: loc}); err != nil {
		return err
	}
	icsPath := filepath.Join(flags.outDir, "calendar.ics")
	if err := os.WriteFile(icsPath, feed.Bytes(), 0o644); err != nil {
		return err
	}

	appLog.Info("single run written", "date", model.DateKey(day), "layout", layoutPath, "ics", icsPath)
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Load records once, write layout.json and calendar.ics, and exit")
	flag.StringVar(&cfg.date, "date", "", "Anchor date for -once (YYYY-MM-DD, default today)")
	flag.StringVar(&cfg.outDir, "out", "./var/out", "Output directory for -once")

	flag.Parse()

	return cfg
}
