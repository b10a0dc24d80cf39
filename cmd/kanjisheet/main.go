// Command kanjisheet makes a kanji writing practice worksheet from the
// NihongoShark kanji deck of an Anki profile.
//
// By default the cards reviewed in the last day are used.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/conorfennell/kanjisheet/internal/build"
	"github.com/conorfennell/kanjisheet/internal/config"
	"github.com/conorfennell/kanjisheet/internal/gitsource"
	"github.com/conorfennell/kanjisheet/internal/media"
	"github.com/conorfennell/kanjisheet/internal/storage"
	"github.com/conorfennell/kanjisheet/internal/viewer"
	"github.com/conorfennell/kanjisheet/internal/worksheet"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "kanjisheet: %v\n", err)
		return 2
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	if err := generate(context.Background(), cfg); err != nil {
		fmt.Fprintf(stderr, "kanjisheet: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Wrote worksheet to %s\n", cfg.Output)

	if cfg.Open {
		if err := viewer.Open(cfg.Output); err != nil {
			slog.Warn("Could not open worksheet", "file", cfg.Output, "error", err)
		}
	}
	return 0
}

func generate(ctx context.Context, cfg *config.Config) error {
	mediaDirs := []string{cfg.MediaDir()}
	if cfg.MediaRepo != "" {
		dir, err := mediaRepo(ctx, cfg)
		if err != nil {
			return err
		}
		mediaDirs = append(mediaDirs, dir)
	}

	renderer, err := newRenderer(cfg.Template)
	if err != nil {
		return err
	}

	db, err := storage.Open(cfg.CollectionPath())
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Debug("Collection opened", "path", cfg.CollectionPath())

	opts := build.Options{
		OnlyForgotten: cfg.Forgotten,
		MediaDirs:     mediaDirs,
		MissingMedia:  media.Policy(cfg.MissingMedia),
		Output:        cfg.Output,
		Renderer:      renderer,
	}
	if !cfg.All {
		since := build.Since(time.Now(), cfg.Days)
		opts.Since = &since
		slog.Debug("Review window", "since", since.Format(time.RFC3339))
	}

	_, err = build.Run(ctx, db, opts)
	return err
}

// mediaRepo brings the stroke diagram checkout up to date. A stale checkout
// is still used when the remote cannot be reached.
func mediaRepo(ctx context.Context, cfg *config.Config) (string, error) {
	dir, err := gitsource.LocalPath(filepath.Join(cfg.CacheDir, "repos"), cfg.MediaRepo)
	if err != nil {
		return "", err
	}
	if err := gitsource.Sync(ctx, cfg.MediaRepo, dir); err != nil {
		if _, statErr := os.Stat(dir); statErr != nil {
			return "", err
		}
		slog.Warn("Using stale media repository", "path", dir, "error", err)
	}
	return dir, nil
}

func newRenderer(template string) (*worksheet.Renderer, error) {
	if template != "" {
		return worksheet.NewRendererFromFile(template)
	}
	return worksheet.NewRenderer()
}
