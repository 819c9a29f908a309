// Package testutil contains hand-written test doubles for the dispatcher ports.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	repo "github.com/ilindan-dev/pitch-dispatcher/internal/domain/repository"
)

// Ensure compile-time conformance to ports.
var _ repo.Directory = (*Directory)(nil)

// Directory is an in-memory repository.Directory.
// Err, when set, is returned by every call; ProfileErr only by GetProfile.
type Directory struct {
	mu        sync.Mutex
	Profiles  map[string]model.Profile
	Playlists map[string]model.Playlist

	Err        error
	ProfileErr error

	ProfileCalls int
}

// NewDirectory builds a Directory holding the given profiles.
func NewDirectory(profiles ...model.Profile) *Directory {
	d := &Directory{
		Profiles:  make(map[string]model.Profile),
		Playlists: make(map[string]model.Playlist),
	}
	for _, p := range profiles {
		d.Profiles[p.ID] = p
	}
	return d
}

// AddPlaylist registers a playlist.
func (d *Directory) AddPlaylist(p model.Playlist) *Directory {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Playlists[p.ID] = p
	return d
}

func (d *Directory) GetProfile(_ context.Context, userID string) (*model.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ProfileCalls++
	if d.Err != nil {
		return nil, d.Err
	}
	if d.ProfileErr != nil {
		return nil, d.ProfileErr
	}
	p, ok := d.Profiles[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (d *Directory) GetPlaylist(_ context.Context, playlistID string) (*model.Playlist, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	p, ok := d.Playlists[playlistID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (d *Directory) ListAccounts(_ context.Context, afterID string, limit int) ([]model.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	ids := make([]string, 0, len(d.Profiles))
	for id := range d.Profiles {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]model.Profile, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.Profiles[id])
	}
	return out, nil
}

// Notifier records every notification it is asked to send.
// With FailFor empty, a non-nil Err fails every send; otherwise only
// emails to the listed addresses fail.
type Notifier struct {
	mu      sync.Mutex
	Sent    []*model.Notification
	FailFor map[string]bool
	Err     error
}

func (n *Notifier) Send(_ context.Context, notification *model.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		if len(n.FailFor) == 0 {
			return n.Err
		}
		if notification.Email != nil && n.FailFor[notification.Email.To] {
			return n.Err
		}
	}
	n.Sent = append(n.Sent, notification)
	return nil
}

// Notifications returns a snapshot of the recorded notifications.
func (n *Notifier) Notifications() []*model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*model.Notification, len(n.Sent))
	copy(out, n.Sent)
	return out
}

// Recipients returns the addresses of recorded email notifications.
func (n *Notifier) Recipients() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, sent := range n.Sent {
		if sent.Email != nil {
			out = append(out, sent.Email.To)
		}
	}
	sort.Strings(out)
	return out
}
