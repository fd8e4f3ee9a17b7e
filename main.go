// Package main provides the resona playback daemon entry point.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/llehouerou/resona/internal/config"
	"github.com/llehouerou/resona/internal/mpris"
	"github.com/llehouerou/resona/internal/notify"
	"github.com/llehouerou/resona/internal/playback"
	"github.com/llehouerou/resona/internal/player"
	"github.com/llehouerou/resona/internal/store"
)

var (
	app     = kingpin.New("resona", "resona playback daemon")
	verbose = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	dbPath  = app.Flag("db", "Path to database file (overrides config)").String()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	initLogger(cfg.LogLevel, *verbose)

	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	if err := run(cfg); err != nil {
		zlog.Error().Err(err).Msg("daemon error")
		os.Exit(1)
	}
}

func initLogger(level string, verbose bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// run executes the daemon. Using a separate function ensures defer
// statements run even when returning with an error.
func run(cfg *config.Config) error {
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	engineOpts := playback.Options{
		FailureThreshold: cfg.Engine.FailureThreshold,
		FastTick:         time.Duration(cfg.Engine.FastTickMs) * time.Millisecond,
		SlowTick:         time.Duration(cfg.Engine.SlowTickMs) * time.Millisecond,
		ExtendBatchSize:  cfg.Engine.ExtendBatchSize,
	}

	factory := func() (player.Interface, error) {
		return player.NewBeep()
	}

	service := playback.New(st, factory, engineOpts)
	if err := service.Start(); err != nil {
		return err
	}
	defer service.Close()

	mprisAdapter, err := mpris.New(service)
	if err != nil {
		zlog.Warn().Err(err).Msg("MPRIS unavailable, continuing without it")
	} else {
		defer mprisAdapter.Close()
	}

	var watcher *notify.Watcher
	if cfg.NotificationsEnabled() {
		notifier, err := notify.New()
		if err != nil {
			zlog.Warn().Err(err).Msg("notifications unavailable")
		} else {
			watcher = notify.NewWatcher(notifier, service)
		}
	}
	defer watcher.Stop()

	zlog.Info().Msg("resona daemon started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	zlog.Info().Str("signal", s.String()).Msg("shutting down")
	return nil
}
