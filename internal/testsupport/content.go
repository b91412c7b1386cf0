package testsupport

import (
	"context"
	"fmt"
	"sync"

	"likebot/internal/content"
)

// FakeContentService is an in-memory content.Service for tests.
type FakeContentService struct {
	mu          sync.Mutex
	profiles    map[string]content.Profile
	connections []string

	FetchErr  error
	ActionErr error
	Likes     int
}

// NewFakeContentService builds an empty fake service.
func NewFakeContentService() *FakeContentService {
	return &FakeContentService{profiles: make(map[string]content.Profile)}
}

// AddProfile registers a likable public profile with items.
func (f *FakeContentService) AddProfile(name string, profile content.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile.Name = name
	if profile.ID == 0 {
		profile.ID = int64(len(f.profiles) + 1)
	}
	f.profiles[name] = profile
}

// SetConnections replaces the connection roster.
func (f *FakeContentService) SetConnections(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connections = names
}

func (f *FakeContentService) FetchProfile(ctx context.Context, name string) (*content.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	profile, ok := f.profiles[name]
	if !ok {
		return nil, fmt.Errorf("fetch %q: %w", name, content.ErrNotFound)
	}
	return &profile, nil
}

func (f *FakeContentService) RecentItems(ctx context.Context, profileID int64, limit int) ([]content.Item, error) {
	return []content.Item{{ID: fmt.Sprintf("item-%d", profileID), ProfileID: profileID}}, nil
}

func (f *FakeContentService) PerformAction(ctx context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ActionErr != nil {
		return f.ActionErr
	}
	f.Likes++
	return nil
}

func (f *FakeContentService) CurrentConnections(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.connections...), nil
}
