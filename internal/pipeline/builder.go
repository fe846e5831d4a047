package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sidebargen/internal/config"
	ferrors "git.home.luguber.info/inful/sidebargen/internal/foundation/errors"
	"git.home.luguber.info/inful/sidebargen/internal/history"
	"git.home.luguber.info/inful/sidebargen/internal/linkresolve"
	"git.home.luguber.info/inful/sidebargen/internal/logfields"
	"git.home.luguber.info/inful/sidebargen/internal/logging"
	"git.home.luguber.info/inful/sidebargen/internal/metrics"
	"git.home.luguber.info/inful/sidebargen/internal/openapi"
)

// Stage names used for logging and metrics.
const (
	StageDiscoverContent = "discover_content"
	StageLoadSpecs       = "load_specs"
	StageBuildSidebars   = "build_sidebars"
	StageResolve         = "resolve"
	StageRegister        = "register"
	StageNavbar          = "navbar"
	StageWriteArtifact   = "write_artifact"
)

// Request describes one build.
type Request struct {
	Config *config.Config

	// Mode overrides Config.Build.Mode when set.
	Mode linkresolve.Mode

	// DryRun runs every stage but writes no artifact, metrics or history.
	DryRun bool

	// SkipIfDigest skips the build when the inputs digest equals it.
	SkipIfDigest string
}

// Builder executes builds. It is safe to run builds sequentially on one
// Builder; each run gets its own registry.
type Builder struct {
	loader   *openapi.Loader
	recorder metrics.Recorder
	history  history.Store
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLoader overrides the API description loader. By default each run
// creates one with the configured build.retry policy.
func WithLoader(l *openapi.Loader) Option {
	return func(b *Builder) { b.loader = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		if r != nil {
			b.recorder = r
		}
	}
}

// WithHistory records every non-dry-run build in s.
func WithHistory(s history.Store) Option {
	return func(b *Builder) { b.history = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a Builder with a noop recorder and no history.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes the build described by req. The returned Result is never
// nil; on failure it carries whatever was built before the failing stage.
func (b *Builder) Run(ctx context.Context, req Request) (*Result, error) {
	start := b.now()
	res := &Result{BuildID: b.newID(), StartTime: start}
	ctx = logging.WithBuildID(ctx, res.BuildID)

	err := b.run(ctx, req, res)

	res.EndTime = b.now()
	res.Duration = res.EndTime.Sub(start)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		res.Status = StatusCanceled
	default:
		res.Status = StatusFailed
	}

	b.recorder.IncBuildOutcome(res.Status.outcome())
	b.recorder.ObserveBuildDuration(res.Duration)
	if !req.DryRun && res.Status != StatusSkipped {
		b.finish(ctx, req, res, err)
	}

	attrs := []slog.Attr{
		slog.String("status", string(res.Status)),
		logfields.Mode(string(res.Mode)),
		logfields.DurationMS(float64(res.Duration.Microseconds()) / 1000),
		logfields.Count(res.Documents),
	}
	if err != nil {
		b.logger.LogAttrs(ctx, slog.LevelError, "Build failed", append(attrs, logfields.Error(err))...)
		return res, err
	}
	b.logger.LogAttrs(ctx, slog.LevelInfo, "Build finished", attrs...)
	return res, nil
}

func (b *Builder) run(ctx context.Context, req Request, res *Result) error {
	cfg := req.Config
	if cfg == nil {
		return ferrors.ConfigError("config required").Build()
	}
	res.Mode = cfg.Build.Mode
	if req.Mode != "" {
		res.Mode = req.Mode
	}
	if res.Mode == "" {
		res.Mode = linkresolve.ModeStrict
	}

	st := &state{cfg: cfg, mode: res.Mode}

	if err := b.stage(ctx, StageDiscoverContent, func(ctx context.Context) (bool, error) {
		return b.discoverContent(ctx, st, res)
	}); err != nil {
		return err
	}
	if err := b.stage(ctx, StageLoadSpecs, func(ctx context.Context) (bool, error) {
		return false, b.loadSpecs(ctx, st)
	}); err != nil {
		return err
	}

	digest, err := inputsDigest(cfg, st.index, st.docs)
	if err != nil {
		return ferrors.InternalError("compute inputs digest").WithCause(err).Build()
	}
	res.InputsDigest = digest
	if req.SkipIfDigest != "" && req.SkipIfDigest == digest {
		res.Status = StatusSkipped
		b.logger.InfoContext(ctx, "Inputs unchanged, build skipped")
		return nil
	}

	if err := b.stage(ctx, StageBuildSidebars, func(ctx context.Context) (bool, error) {
		return false, b.buildSidebars(ctx, st)
	}); err != nil {
		return err
	}
	if err := b.stage(ctx, StageResolve, func(ctx context.Context) (bool, error) {
		return b.resolve(ctx, st, res)
	}); err != nil {
		return err
	}
	if err := b.stage(ctx, StageRegister, func(ctx context.Context) (bool, error) {
		return b.register(ctx, st, res)
	}); err != nil {
		return err
	}
	if err := b.stage(ctx, StageNavbar, func(ctx context.Context) (bool, error) {
		return false, b.resolveNavbar(st, res)
	}); err != nil {
		return err
	}
	if !req.DryRun {
		if err := b.stage(ctx, StageWriteArtifact, func(ctx context.Context) (bool, error) {
			return false, b.writeArtifact(res, cfg.Build.Output)
		}); err != nil {
			return err
		}
	}

	res.Status = StatusSuccess
	if res.Problems() > 0 {
		res.Status = StatusWarning
	}
	return nil
}

// stage times fn and records its result. fn reports whether it completed
// in a degraded way (problems tolerated in permissive mode).
func (b *Builder) stage(ctx context.Context, name string, fn func(context.Context) (bool, error)) error {
	if err := ctx.Err(); err != nil {
		b.recorder.IncStageResult(name, metrics.ResultCanceled)
		return err
	}
	ctx = logging.WithStage(ctx, name)
	start := time.Now()
	degraded, err := fn(ctx)
	elapsed := time.Since(start)
	b.recorder.ObserveStageDuration(name, elapsed)

	result := metrics.ResultSuccess
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		result = metrics.ResultCanceled
	case err != nil:
		result = metrics.ResultFatal
	case degraded:
		result = metrics.ResultWarning
	}
	b.recorder.IncStageResult(name, result)
	b.logger.LogAttrs(ctx, slog.LevelDebug, "Stage finished",
		slog.String("result", string(result)),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return err
}

// finish exports metrics and records history. Failures here never change
// the build outcome.
func (b *Builder) finish(ctx context.Context, req Request, res *Result, buildErr error) {
	cfg := req.Config
	if cfg == nil {
		return
	}
	if w, ok := b.recorder.(textfileWriter); ok && cfg.Build.MetricsFile != "" {
		if err := w.WriteTextfile(cfg.Build.MetricsFile); err != nil {
			b.logger.WarnContext(ctx, "Failed to write metrics textfile", logfields.Path(cfg.Build.MetricsFile), logfields.Error(err))
		}
	}
	if b.history == nil {
		return
	}
	rec := history.Build{
		ID:            res.BuildID,
		StartedAt:     res.StartTime,
		Duration:      res.Duration,
		Mode:          string(res.Mode),
		Outcome:       string(res.Status),
		Sidebars:      res.SidebarDocs(),
		Problems:      res.Problems(),
		ContentDigest: res.ContentDigest,
	}
	if buildErr != nil {
		rec.Error = buildErr.Error()
	}
	if err := b.history.Record(ctx, rec); err != nil {
		herr := ferrors.HistoryError("record build").WithCause(err).Warning().Build()
		b.logger.WarnContext(ctx, "Failed to record build history", logfields.Error(herr))
	}
}

type textfileWriter interface {
	WriteTextfile(path string) error
}
