package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	repo "github.com/ilindan-dev/pitch-dispatcher/internal/domain/repository"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Ensure DirectoryRepository implements the interface
var _ repo.Directory = (*DirectoryRepository)(nil)

const (
	profileColumns = `u.id::text, COALESCE(u.email, ''), COALESCE(p.full_name, ''), COALESCE(p.username, ''), COALESCE(p.role::text, '')`
	profileFrom    = `FROM auth.users u LEFT JOIN public.profiles p ON p.id = u.id`

	getProfileSQL = `SELECT ` + profileColumns + ` ` + profileFrom + ` WHERE u.id = $1`

	getPlaylistSQL = `SELECT id::text, COALESCE(name, ''), curator_id::text FROM public.playlists WHERE id = $1`

	listAccountsFirstSQL = `SELECT ` + profileColumns + ` ` + profileFrom + ` ORDER BY u.id LIMIT $1`
	listAccountsNextSQL  = `SELECT ` + profileColumns + ` ` + profileFrom + ` WHERE u.id > $1 ORDER BY u.id LIMIT $2`
)

// DirectoryRepository implements repository.Directory on top of the
// data store's identity (auth.users) and profile tables. It never writes.
type DirectoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDirectoryRepository creates a new instance of the DirectoryRepository.
func NewDirectoryRepository(pool *pgxpool.Pool, logger *zerolog.Logger) *DirectoryRepository {
	return &DirectoryRepository{
		pool:   pool,
		logger: logger.With().Str("layer", "postgres_directory").Logger(),
	}
}

// GetProfile resolves a user id to its identity and profile.
func (r *DirectoryRepository) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	var p model.Profile
	var role string
	err = r.pool.QueryRow(ctx, getProfileSQL, id).Scan(&p.ID, &p.Email, &p.FullName, &p.Username, &role)
	if err != nil {
		if mapped := mapError(err); errors.Is(mapped, repo.ErrNotFound) {
			r.logger.Debug().Str("user_id", userID).Msg("profile not found")
			return nil, mapped
		}
		r.logger.Err(err).Str("method", "GetProfile").Msg("cannot get profile")
		return nil, fmt.Errorf("postgres: GetProfile failed: %w", err)
	}
	p.Role = model.Role(role)

	return &p, nil
}

// GetPlaylist retrieves a playlist and its owning curator.
func (r *DirectoryRepository) GetPlaylist(ctx context.Context, playlistID string) (*model.Playlist, error) {
	id, err := parseID(playlistID)
	if err != nil {
		return nil, err
	}

	var pl model.Playlist
	err = r.pool.QueryRow(ctx, getPlaylistSQL, id).Scan(&pl.ID, &pl.Name, &pl.CuratorID)
	if err != nil {
		if mapped := mapError(err); errors.Is(mapped, repo.ErrNotFound) {
			r.logger.Debug().Str("playlist_id", playlistID).Msg("playlist not found")
			return nil, mapped
		}
		r.logger.Err(err).Str("method", "GetPlaylist").Msg("cannot get playlist")
		return nil, fmt.Errorf("postgres: GetPlaylist failed: %w", err)
	}

	return &pl, nil
}

// ListAccounts returns one keyset page of the account directory.
func (r *DirectoryRepository) ListAccounts(ctx context.Context, afterID string, limit int) ([]model.Profile, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if afterID == "" {
		rows, err = r.pool.Query(ctx, listAccountsFirstSQL, limit)
	} else {
		id, parseErr := parseID(afterID)
		if parseErr != nil {
			return nil, fmt.Errorf("postgres: ListAccounts cursor: %w", parseErr)
		}
		rows, err = r.pool.Query(ctx, listAccountsNextSQL, id, limit)
	}
	if err != nil {
		r.logger.Err(err).Str("method", "ListAccounts").Msg("cannot list accounts")
		return nil, fmt.Errorf("postgres: ListAccounts failed: %w", err)
	}
	defer rows.Close()

	accounts := make([]model.Profile, 0, limit)
	for rows.Next() {
		var p model.Profile
		var role string
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.Username, &role); err != nil {
			return nil, fmt.Errorf("postgres: ListAccounts scan: %w", err)
		}
		p.Role = model.Role(role)
		accounts = append(accounts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: ListAccounts rows: %w", err)
	}

	return accounts, nil
}

// parseID validates an id before it reaches the database; ids that are not
// UUIDs cannot match any row.
func parseID(raw string) (pgtype.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return pgtype.UUID{}, repo.ErrNotFound
	}
	return pgtype.UUID{Bytes: id, Valid: true}, nil
}

// mapError translates driver errors that mean "no such row" into repository.ErrNotFound.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repo.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation {
		return repo.ErrNotFound
	}
	return err
}
