package redis

import (
	"context"
	"errors"
	"time"

	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	repo "github.com/ilindan-dev/pitch-dispatcher/internal/domain/repository"
	"github.com/rs/zerolog"
)

// Ensure CachedDirectory implements the interface
var _ repo.Directory = (*CachedDirectory)(nil)

const defaultTTL = 5 * time.Minute

// CachedDirectory is a decorator for a Directory that caches profile lookups.
// Playlist and account listing reads go straight to the primary directory.
type CachedDirectory struct {
	primary repo.Directory
	cache   repo.ProfileCache
	logger  zerolog.Logger
	ttl     time.Duration
}

// NewCachedDirectory creates a new instance of the cached directory.
func NewCachedDirectory(
	primary repo.Directory,
	cache repo.ProfileCache,
	ttl time.Duration,
	logger *zerolog.Logger,
) *CachedDirectory {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &CachedDirectory{
		primary: primary,
		cache:   cache,
		logger:  logger.With().Str("layer", "cached_directory").Logger(),
		ttl:     ttl,
	}
}

// GetProfile implements the cache-aside pattern. Cache failures fall back
// to the primary directory; notifications tolerate slightly stale profiles.
func (d *CachedDirectory) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	cached, err := d.cache.Get(ctx, userID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		d.logger.Warn().Err(err).Str("user_id", userID).Msg("cache get error, falling back to primary directory")
	}

	profile, err := d.primary.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := d.cache.Set(ctx, profile, d.ttl); err != nil {
		d.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to set cache after directory fetch")
	}
	return profile, nil
}

// GetPlaylist delegates to the primary directory.
func (d *CachedDirectory) GetPlaylist(ctx context.Context, playlistID string) (*model.Playlist, error) {
	return d.primary.GetPlaylist(ctx, playlistID)
}

// ListAccounts delegates to the primary directory.
func (d *CachedDirectory) ListAccounts(ctx context.Context, afterID string, limit int) ([]model.Profile, error) {
	return d.primary.ListAccounts(ctx, afterID, limit)
}
