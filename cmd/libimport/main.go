// Package main provides libimport, a scanner that walks music directories
// and upserts their tracks into the resona catalog.
package main

import (
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/llehouerou/resona/internal/config"
	"github.com/llehouerou/resona/internal/library"
	"github.com/llehouerou/resona/internal/player"
	"github.com/llehouerou/resona/internal/store"
)

var (
	app     = kingpin.New("libimport", "Import music files into the resona catalog")
	verbose = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	dbPath  = app.Flag("db", "Path to database file (overrides config)").String()
	dirs    = app.Arg("dir", "Directories to scan (default: config library_sources)").Strings()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	sources := *dirs
	if len(sources) == 0 {
		sources = cfg.LibrarySources
	}
	if len(sources) == 0 {
		zlog.Fatal().Msg("no directories given and no library_sources configured")
	}

	path := cfg.DatabasePath
	if *dbPath != "" {
		path = *dbPath
	}
	st, err := store.Open(path)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to open database")
	}
	defer st.Close()

	progress := make(chan library.ScanProgress, 16)
	go func() {
		for p := range progress {
			zlog.Debug().
				Str("phase", p.Phase).
				Int("current", p.Current).
				Int("total", p.Total).
				Msg("scan progress")
		}
	}()

	res := library.Scan(sources, player.IsMusicFile, player.ReadTrack, st.UpsertTrack, progress)
	zlog.Info().Int("imported", res.Imported).Int("failed", res.Failed).Msg("import complete")
}
