package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"likebot/internal/content"
	"likebot/internal/logging"
	"likebot/internal/retry"
	"likebot/internal/store"
)

// ErrRunAborted wraps failures that make further processing pointless,
// such as rejected credentials.
var ErrRunAborted = errors.New("run aborted")

// itemFetchLimit is how many recent items a pipeline considers before
// declaring a target has nothing actionable.
const itemFetchLimit = 12

type outcomeKind int

const (
	outcomeLiked outcomeKind = iota
	outcomeSkipped
	outcomeFailed
)

// Pipeline processes individual targets against the content service.
type Pipeline struct {
	store  *store.Store
	svc    content.Service
	policy *retry.Policy
	logger *slog.Logger
	tally  *Tally

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a pipeline. The tally is shared with whoever reports on
// the run.
func New(st *store.Store, svc content.Service, policy *retry.Policy, logger *slog.Logger, tally *Tally) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	if tally == nil {
		tally = &Tally{}
	}
	return &Pipeline{
		store:  st,
		svc:    svc,
		policy: policy,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		tally:  tally,
		sleep:  sleepContext,
	}
}

// Tally exposes the run counters.
func (p *Pipeline) Tally() *Tally {
	return p.tally
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProcessTarget runs one target to a terminal status. It returns a nil
// error for every per-target outcome including failure; a non-nil
// error means the run itself should stop.
func (p *Pipeline) ProcessTarget(ctx context.Context, name string) error {
	log := p.logger.With(logging.String(logging.FieldTarget, name))

	attempt, err := p.store.RetryCount(ctx, name)
	if err != nil {
		return fmt.Errorf("load retry count: %w", err)
	}

	for {
		outcome, retryErr, err := p.attempt(ctx, log, name, attempt)
		if err != nil {
			return err
		}
		if retryErr == nil {
			p.tally.recordOutcome(outcome)
			return nil
		}

		class := p.policy.Classify(retryErr)
		if class == retry.ClassAuthRequired {
			if err := p.store.UpdateStatus(ctx, name, store.StatusRetry, attempt); err != nil {
				log.Error("persist retry status", logging.Error(err))
			}
			return fmt.Errorf("%w: %w", ErrRunAborted, retryErr)
		}
		if !p.policy.ShouldRetry(class, attempt) {
			if err := p.store.UpdateStatus(ctx, name, store.StatusFailed, attempt); err != nil {
				return fmt.Errorf("persist failed status: %w", err)
			}
			log.Warn("retries exhausted",
				logging.Int("attempts", attempt),
				logging.Error(retryErr))
			p.tally.recordOutcome(outcomeFailed)
			return nil
		}

		attempt++
		if err := p.store.UpdateStatus(ctx, name, store.StatusRetry, attempt); err != nil {
			return fmt.Errorf("persist retry status: %w", err)
		}
		p.tally.recordRetry()

		delay := p.policy.NextDelay(class, attempt-1)
		log.Info("retrying after delay",
			logging.String("classification", class.String()),
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay))
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// attempt performs a single pass over a target. It returns either a
// terminal outcome, an error to feed the retry policy, or a run-fatal
// error.
func (p *Pipeline) attempt(ctx context.Context, log *slog.Logger, name string, attempt int) (outcomeKind, error, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	profile, err := p.svc.FetchProfile(ctx, name)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		if errors.Is(err, content.ErrNotFound) {
			return p.skip(ctx, log, name, attempt, "profile not found")
		}
		return 0, fmt.Errorf("fetch profile: %w", err), nil
	}

	if profile.ID != 0 {
		if err := p.store.SetExternalRef(ctx, name, profile.ID); err != nil {
			log.Warn("record external ref", logging.Error(err))
		}
	}

	switch {
	case profile.Private:
		return p.skip(ctx, log, name, attempt, "profile is private")
	case profile.ItemCount == 0:
		return p.skip(ctx, log, name, attempt, "profile has no items")
	case profile.Connected:
		return p.skip(ctx, log, name, attempt, "already connected")
	}

	items, err := p.svc.RecentItems(ctx, profile.ID, itemFetchLimit)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		if errors.Is(err, content.ErrNotFound) {
			return p.skip(ctx, log, name, attempt, "items no longer available")
		}
		return 0, fmt.Errorf("list items: %w", err), nil
	}

	// Items can vanish between listing and acting; move on to the
	// next one rather than retrying the whole target.
	for _, item := range items {
		err := p.svc.PerformAction(ctx, item.ID)
		if err == nil {
			if err := p.store.RecordAction(ctx, name, item.ID, profile.Connected, store.StatusLiked, attempt); err != nil {
				return 0, nil, fmt.Errorf("persist like: %w", err)
			}
			log.Info("liked item", logging.String("item", item.ID))
			return outcomeLiked, nil, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		if errors.Is(err, content.ErrNotFound) {
			continue
		}
		return 0, fmt.Errorf("perform action: %w", err), nil
	}

	return p.skip(ctx, log, name, attempt, "no actionable items")
}

func (p *Pipeline) skip(ctx context.Context, log *slog.Logger, name string, attempt int, reason string) (outcomeKind, error, error) {
	if err := p.store.UpdateStatus(ctx, name, store.StatusSkipped, attempt); err != nil {
		return 0, nil, fmt.Errorf("persist skipped status: %w", err)
	}
	log.Info("skipped target", logging.String("reason", reason))
	return outcomeSkipped, nil, nil
}
