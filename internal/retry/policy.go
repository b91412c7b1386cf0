package retry

import (
	"errors"
	"math/rand"
	"time"

	"likebot/internal/config"
	"likebot/internal/content"
)

// Classification buckets an operation failure by how the run should
// react to it.
type Classification int

const (
	// ClassTransient covers failures worth another attempt.
	ClassTransient Classification = iota
	// ClassRateLimited covers throttling responses from the service.
	ClassRateLimited
	// ClassAuthRequired covers failures no retry can fix without
	// operator intervention.
	ClassAuthRequired
	// ClassNotFound covers targets that do not exist on the service.
	ClassNotFound
)

func (c Classification) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassRateLimited:
		return "rate_limited"
	case ClassAuthRequired:
		return "auth_required"
	case ClassNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// maxJitter is the random slack added to backoff delays so parallel
// workers do not thunder in lockstep.
const maxJitter = time.Second

// Policy decides whether and when a failed operation runs again.
type Policy struct {
	MaxRetries     int
	BaseDelay      time.Duration
	RateLimitDelay time.Duration
	MaxDelay       time.Duration

	rateLimitCodes map[int]struct{}
	jitter         func() time.Duration
}

// NewPolicy builds a policy from the processing configuration.
func NewPolicy(cfg *config.Config) *Policy {
	codes := make(map[int]struct{}, len(cfg.Processing.RateLimitStatusCodes))
	for _, code := range cfg.Processing.RateLimitStatusCodes {
		codes[code] = struct{}{}
	}
	return &Policy{
		MaxRetries:     cfg.Processing.MaxRetries,
		BaseDelay:      time.Duration(cfg.Processing.RetryBaseDelay) * time.Second,
		RateLimitDelay: time.Duration(cfg.Processing.RateLimitDelay) * time.Second,
		MaxDelay:       time.Duration(cfg.Processing.MaxDelay) * time.Second,
		rateLimitCodes: codes,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(maxJitter)))
		},
	}
}

// Classify maps an error to its classification. Not-found wins over
// auth, auth over rate limiting, and everything else is transient.
func (p *Policy) Classify(err error) Classification {
	if errors.Is(err, content.ErrNotFound) {
		return ClassNotFound
	}
	if errors.Is(err, content.ErrAuthRequired) {
		return ClassAuthRequired
	}
	var statusErr *content.StatusError
	if errors.As(err, &statusErr) {
		if _, limited := p.rateLimitCodes[statusErr.Code]; limited {
			return ClassRateLimited
		}
	}
	return ClassTransient
}

// ShouldRetry reports whether another attempt is allowed for the given
// classification after attempt attempts have already failed.
func (p *Policy) ShouldRetry(class Classification, attempt int) bool {
	switch class {
	case ClassNotFound, ClassAuthRequired:
		return false
	}
	return attempt < p.MaxRetries
}

// NextDelay computes how long to wait before the attempt-th retry.
// Both classes back off exponentially from their base; rate-limited
// failures grow from the longer rate-limit base.
func (p *Policy) NextDelay(class Classification, attempt int) time.Duration {
	base := p.BaseDelay
	if class == ClassRateLimited {
		base = p.RateLimitDelay
	}
	delay := base << uint(attempt)
	if delay <= 0 || delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	delay += p.jitter()
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}
