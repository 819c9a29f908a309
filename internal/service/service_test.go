package service

import (
	"time"

	"github.com/ilindan-dev/pitch-dispatcher/internal/config"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	"github.com/ilindan-dev/pitch-dispatcher/internal/templates"
	"github.com/ilindan-dev/pitch-dispatcher/internal/testutil"
	"github.com/rs/zerolog"
)

func testConfig() *config.Config {
	return &config.Config{
		Postgres: config.PostgresConfig{QueryTimeout: time.Second},
		Site:     config.SiteConfig{URL: "https://pitch.example", Name: "PitchBox", Currency: "₦"},
		Broadcast: config.BroadcastConfig{
			Workers:       3,
			PageSize:      2,
			MaxRecipients: 100,
		},
	}
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

var (
	artist  = model.Profile{ID: "11111111-1111-1111-1111-111111111111", Email: "artist@example.com", FullName: "Ada Artist", Role: model.RoleArtist}
	curator = model.Profile{ID: "22222222-2222-2222-2222-222222222222", Email: "curator@example.com", FullName: "Cole Curator", Role: model.RoleCurator}
	admin   = model.Profile{ID: "33333333-3333-3333-3333-333333333333", Email: "root@example.com", Username: "root", Role: model.RoleAdmin}
	noRole  = model.Profile{ID: "44444444-4444-4444-4444-444444444444", Email: "newbie@example.com"}
	noEmail = model.Profile{ID: "55555555-5555-5555-5555-555555555555", FullName: "Ghost", Role: model.RoleArtist}

	playlist = model.Playlist{ID: "99999999-9999-9999-9999-999999999999", Name: "Afro Vibes", CuratorID: curator.ID}
)

func newMailerFixture(cfg *config.Config, profiles ...model.Profile) (*UserMailer, *testutil.Directory, *testutil.Notifier) {
	dir := testutil.NewDirectory(profiles...).AddPlaylist(playlist)
	sink := &testutil.Notifier{}
	renderer := templates.NewRenderer(cfg)
	broadcaster := NewBroadcaster(cfg, dir, sink, renderer, nopLogger())
	return NewUserMailer(cfg, dir, sink, renderer, broadcaster, nopLogger()), dir, sink
}

func newRouterFixture(profiles ...model.Profile) (*AlertRouter, *testutil.Directory, *testutil.Notifier) {
	dir := testutil.NewDirectory(profiles...).AddPlaylist(playlist)
	sink := &testutil.Notifier{}
	return NewAlertRouter(testConfig(), dir, sink, nopLogger()), dir, sink
}
