package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
)

// ErrNotFound is returned when a looked-up row does not exist or the id is not a valid key.
var ErrNotFound = errors.New("record not found")

// Directory is the read-only view of the data store the dispatcher uses for
// recipient resolution and enrichment. Reads are best-effort and may be stale.
type Directory interface {
	// GetProfile resolves a user id to its identity and profile.
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)

	// GetPlaylist retrieves a playlist and its owning curator.
	GetPlaylist(ctx context.Context, playlistID string) (*model.Playlist, error)

	// ListAccounts returns up to limit accounts ordered by id, starting after afterID.
	// An empty afterID starts from the beginning.
	ListAccounts(ctx context.Context, afterID string, limit int) ([]model.Profile, error)
}

// ProfileCache defines the contract for the profile caching layer.
type ProfileCache interface {
	// Get retrieves a profile from the cache. A miss returns ErrNotFound.
	Get(ctx context.Context, userID string) (*model.Profile, error)

	// Set adds a profile to the cache for a specified duration.
	Set(ctx context.Context, p *model.Profile, expiration time.Duration) error
}
