package retry

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"likebot/internal/config"
	"likebot/internal/content"
)

func newTestPolicy(t *testing.T) *Policy {
	t.Helper()
	cfg := config.Default()
	policy := NewPolicy(&cfg)
	policy.jitter = func() time.Duration { return 0 }
	return policy
}

func TestClassifyPrecedence(t *testing.T) {
	policy := newTestPolicy(t)

	tests := []struct {
		name string
		err  error
		want Classification
	}{
		{"not found", fmt.Errorf("lookup: %w", content.ErrNotFound), ClassNotFound},
		{"auth", fmt.Errorf("like: %w", content.ErrAuthRequired), ClassAuthRequired},
		{"rate limited 429", &content.StatusError{Code: 429}, ClassRateLimited},
		{"rate limited 401", &content.StatusError{Code: 401}, ClassRateLimited},
		{"server error", &content.StatusError{Code: 500}, ClassTransient},
		{"network", errors.New("connection reset"), ClassTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.Classify(tt.err); got != tt.want {
				t.Fatalf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRetryRespectsBudgetAndClass(t *testing.T) {
	policy := newTestPolicy(t)

	if !policy.ShouldRetry(ClassTransient, 0) {
		t.Fatal("ShouldRetry(transient, 0) = false, want true")
	}
	if !policy.ShouldRetry(ClassRateLimited, policy.MaxRetries-1) {
		t.Fatal("ShouldRetry(rate limited, last attempt) = false, want true")
	}
	if policy.ShouldRetry(ClassTransient, policy.MaxRetries) {
		t.Fatal("ShouldRetry(transient, exhausted) = true, want false")
	}
	if policy.ShouldRetry(ClassNotFound, 0) {
		t.Fatal("ShouldRetry(not found) = true, want false")
	}
	if policy.ShouldRetry(ClassAuthRequired, 0) {
		t.Fatal("ShouldRetry(auth required) = true, want false")
	}
}

func TestNextDelayIsNonDecreasingAndCapped(t *testing.T) {
	policy := newTestPolicy(t)

	var prev time.Duration
	for attempt := 0; attempt < 10; attempt++ {
		delay := policy.NextDelay(ClassTransient, attempt)
		if delay < prev {
			t.Fatalf("NextDelay(attempt %d) = %v, shrank from %v", attempt, delay, prev)
		}
		if delay > policy.MaxDelay {
			t.Fatalf("NextDelay(attempt %d) = %v exceeds cap %v", attempt, delay, policy.MaxDelay)
		}
		prev = delay
	}
	if prev != policy.MaxDelay {
		t.Fatalf("NextDelay never reached cap: %v", prev)
	}
}

func TestNextDelayRateLimitedGrowsFromLongerBase(t *testing.T) {
	policy := newTestPolicy(t)

	if got := policy.NextDelay(ClassRateLimited, 0); got != policy.RateLimitDelay {
		t.Fatalf("NextDelay(rate limited, 0) = %v, want base %v", got, policy.RateLimitDelay)
	}
	var prev time.Duration
	for attempt := 0; attempt < 6; attempt++ {
		delay := policy.NextDelay(ClassRateLimited, attempt)
		if delay < prev {
			t.Fatalf("NextDelay(rate limited, %d) = %v, shrank from %v", attempt, delay, prev)
		}
		if delay > policy.MaxDelay {
			t.Fatalf("NextDelay(rate limited, %d) = %v exceeds cap %v", attempt, delay, policy.MaxDelay)
		}
		prev = delay
	}
}

func TestNextDelayRateLimitedDominatesTransient(t *testing.T) {
	cfg := config.Default()
	cfg.Processing.RetryBaseDelay = 5
	cfg.Processing.RateLimitDelay = 10
	cfg.Processing.MaxDelay = 60
	policy := NewPolicy(&cfg)
	policy.jitter = func() time.Duration { return 0 }

	for attempt := 0; attempt < 8; attempt++ {
		limited := policy.NextDelay(ClassRateLimited, attempt)
		transient := policy.NextDelay(ClassTransient, attempt)
		if limited < transient {
			t.Fatalf("NextDelay(rate limited, %d) = %v, shorter than transient %v",
				attempt, limited, transient)
		}
	}
}

func TestNextDelayJitterStaysUnderCap(t *testing.T) {
	cfg := config.Default()
	policy := NewPolicy(&cfg)
	policy.jitter = func() time.Duration { return maxJitter - 1 }

	delay := policy.NextDelay(ClassTransient, 30)
	if delay != policy.MaxDelay {
		t.Fatalf("NextDelay(overflowing attempt) = %v, want cap %v", delay, policy.MaxDelay)
	}
}
