package testsupport

import (
	"context"
	"testing"

	"likebot/internal/config"
	"likebot/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// EnqueueTargets registers the given names and fails the test on error.
func EnqueueTargets(t testing.TB, st *store.Store, names ...string) {
	t.Helper()

	if _, err := st.Enqueue(context.Background(), names); err != nil {
		t.Fatalf("store.Enqueue: %v", err)
	}
}
