package content

import "context"

// Profile describes a named account on the content service.
type Profile struct {
	ID        int64
	Name      string
	Private   bool
	ItemCount int
	Connected bool
}

// Item is a single piece of content eligible for a like.
type Item struct {
	ID        string
	ProfileID int64
}

// Service is the surface the processing pipeline needs from the
// content service.
type Service interface {
	// FetchProfile resolves a profile by name. Returns ErrNotFound
	// when the name does not exist on the service.
	FetchProfile(ctx context.Context, name string) (*Profile, error)
	// RecentItems lists the newest items for a profile, newest first.
	RecentItems(ctx context.Context, profileID int64, limit int) ([]Item, error)
	// PerformAction likes a single item.
	PerformAction(ctx context.Context, itemID string) error
	// CurrentConnections returns the names currently connected to the
	// authenticated account.
	CurrentConnections(ctx context.Context) ([]string, error)
}
