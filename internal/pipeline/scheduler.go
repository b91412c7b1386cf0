package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"likebot/internal/logging"
)

// Scheduler fans targets out to a fixed pool of pipeline workers.
type Scheduler struct {
	pipeline *Pipeline
	workers  int
	logger   *slog.Logger
}

// NewScheduler builds a scheduler running at most workers targets at
// once.
func NewScheduler(p *Pipeline, workers int, logger *slog.Logger) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		pipeline: p,
		workers:  workers,
		logger:   logging.NewComponentLogger(logger, "scheduler"),
	}
}

// Run processes every name and blocks until all workers drain or the
// run aborts. The first run-fatal error cancels the remaining work.
func (s *Scheduler) Run(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	work := make(chan string)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range work {
				if err := s.pipeline.ProcessTarget(ctx, name); err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return
					}
					s.logger.Error("worker stopping",
						logging.String(logging.FieldTarget, name),
						logging.Error(err))
					fail(err)
					return
				}
			}
		}()
	}

feed:
	for _, name := range names {
		select {
		case work <- name:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
