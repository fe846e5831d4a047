package watch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sidebargen/internal/config"
	"git.home.luguber.info/inful/sidebargen/internal/linkresolve"
	"git.home.luguber.info/inful/sidebargen/internal/logfields"
	"git.home.luguber.info/inful/sidebargen/internal/pipeline"
)

// Session builds once, then rebuilds whenever the config file, a local API
// description or the docs directory changes. Every rebuild reloads the
// configuration and uses a fresh registry; rebuilds whose inputs digest
// matches the last completed build are skipped.
type Session struct {
	ConfigPath string
	Builder    *pipeline.Builder
	// Mode overrides the configured build mode when set.
	Mode     linkresolve.Mode
	Debounce time.Duration
	Logger   *slog.Logger

	// OnBuild, when set, is called after every build attempt.
	OnBuild func(*pipeline.Result, error)

	load       func(string) (*config.Config, error)
	lastDigest string
}

// Run blocks until ctx is done. Only a failure to load the initial
// configuration or to start watching is returned; build failures are
// logged and the session keeps watching.
func (s *Session) Run(ctx context.Context) error {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	if s.Builder == nil {
		s.Builder = pipeline.NewBuilder(pipeline.WithLogger(s.Logger))
	}
	if s.load == nil {
		s.load = config.Load
	}

	cfg, err := s.load(s.ConfigPath)
	if err != nil {
		return err
	}
	s.build(ctx, cfg)

	w, err := New(cfg.WatchPaths(), WithDebounce(s.Debounce), WithLogger(s.Logger))
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	s.Logger.InfoContext(ctx, "Watching for changes", logfields.Path(s.ConfigPath), logfields.Count(len(cfg.WatchPaths())))
	err = w.Run(ctx, func(ctx context.Context) {
		next, err := s.load(s.ConfigPath)
		if err != nil {
			s.Logger.ErrorContext(ctx, "Failed to reload configuration, keeping the previous one", logfields.Error(err))
			next = cfg
		}
		cfg = next
		if err := w.Add(cfg.WatchPaths()...); err != nil {
			s.Logger.WarnContext(ctx, "Failed to watch new inputs", logfields.Error(err))
		}
		s.build(ctx, cfg)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Session) build(ctx context.Context, cfg *config.Config) {
	res, err := s.Builder.Run(ctx, pipeline.Request{
		Config:       cfg,
		Mode:         s.Mode,
		SkipIfDigest: s.lastDigest,
	})
	switch res.Status {
	case pipeline.StatusSuccess, pipeline.StatusWarning:
		s.lastDigest = res.InputsDigest
	case pipeline.StatusFailed:
		// Retry on the next change even when inputs look the same.
		s.lastDigest = ""
	}
	if s.OnBuild != nil {
		s.OnBuild(res, err)
	}
}
