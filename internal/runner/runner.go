// Package runner wires the store, content client, scheduler, and
// metrics loop into a single run with coordinated shutdown.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"likebot/internal/config"
	"likebot/internal/content"
	"likebot/internal/logging"
	"likebot/internal/metrics"
	"likebot/internal/pipeline"
	"likebot/internal/retry"
	"likebot/internal/store"
	"likebot/internal/summary"
)

// ErrAlreadyRunning indicates another process holds the instance lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

// ErrNoTargets indicates the input file yielded no usable names.
var ErrNoTargets = errors.New("input file contains no targets")

// Options adjust a single run.
type Options struct {
	// InputPath overrides the configured input file when non-empty.
	InputPath string
	// Limit caps how many claimed targets are processed. Zero means
	// no cap.
	Limit int
	// Service overrides the HTTP content client, used by tests.
	Service content.Service
	// Out receives the rendered summary table. Defaults to stdout.
	Out io.Writer
}

// Runner executes processing runs.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New builds a runner.
func New(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run processes targets until done or the context is canceled. A
// canceled run still writes a partial summary and returns nil; only
// fatal conditions return an error.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	runID := uuid.NewString()
	log := logging.NewComponentLogger(r.logger, "runner").With(
		logging.String(logging.FieldRunID, runID))

	if err := r.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := r.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(r.cfg.Paths.DataDir, "likebot.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return ErrAlreadyRunning
	}
	defer lock.Unlock()

	inputPath := opts.InputPath
	if inputPath == "" {
		inputPath = r.cfg.Paths.InputFile
	}
	names, err := readNames(inputPath)
	if err != nil {
		return err
	}
	log.Info("loaded input", logging.String("path", inputPath), logging.Int("names", len(names)))

	st, err := store.Open(context.Background(), r.cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	svc := opts.Service
	if svc == nil {
		svc = content.NewClient(r.cfg)
	}

	// Enqueue and claim run to completion even when shutdown has
	// already been requested; they are quick local writes.
	total, err := st.Enqueue(context.Background(), names)
	if err != nil {
		return fmt.Errorf("enqueue targets: %w", err)
	}
	claimed, err := st.ClaimPending(context.Background())
	if err != nil {
		return fmt.Errorf("claim pending targets: %w", err)
	}
	if opts.Limit > 0 && len(claimed) > opts.Limit {
		claimed = claimed[:opts.Limit]
	}
	log.Info("run starting",
		logging.Int64("known_targets", total),
		logging.Int("claimed", len(claimed)),
		logging.Int("workers", r.cfg.Processing.ConcurrencyLimit))

	tally := &pipeline.Tally{}
	p := pipeline.New(st, svc, retry.NewPolicy(r.cfg), r.logger, tally)
	sched := pipeline.NewScheduler(p, r.cfg.Processing.ConcurrencyLimit, r.logger)
	agg := metrics.NewAggregator(st, svc, tally, r.logger, r.cfg.MetricsInterval())

	if err := agg.Sync(ctx); err != nil {
		log.Warn("initial connection sync failed", logging.Error(err))
	}

	runCtx, cancel := context.WithCancel(ctx)
	var metricsDone sync.WaitGroup
	metricsDone.Add(1)
	go func() {
		defer metricsDone.Done()
		agg.Run(runCtx)
	}()

	runErr := sched.Run(runCtx, claimed)
	cancel()
	metricsDone.Wait()

	if err := r.finish(agg, runID, log, opts.Out); err != nil {
		log.Error("write summary", logging.Error(err))
		if runErr == nil {
			runErr = err
		}
	}

	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		log.Info("run interrupted, partial summary written")
		return nil
	}
	return runErr
}

// finish performs the final connection sync and emits the summary.
// It runs under its own deadline so shutdown stays bounded.
func (r *Runner) finish(agg *metrics.Aggregator, runID string, log *slog.Logger, out io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.ShutdownGrace())
	defer cancel()

	if err := agg.Sync(ctx); err != nil {
		log.Warn("final connection sync failed", logging.Error(err))
	}
	snap, err := agg.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collect summary metrics: %w", err)
	}

	report := summary.FromSnapshot(snap, runID)
	if err := summary.Write(r.cfg.Paths.SummaryFile, report); err != nil {
		return err
	}
	log.Info("summary written", logging.String("path", r.cfg.Paths.SummaryFile))

	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, summary.RenderTable(report))
	return nil
}

func readNames(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer file.Close()

	seen := make(map[string]struct{})
	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTargets, path)
	}
	return names, nil
}
