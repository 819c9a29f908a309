package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMailerDepositReceipt(t *testing.T) {
	m, _, sink := newMailerFixture(testConfig(), artist)

	outcome, err := m.Handle(context.Background(), []byte(`{"type":"INSERT","table":"transactions","schema":"public",
		"record":{"id":"tx1","type":"deposit","amount":5000,"user_id":"`+artist.ID+`"},"old_record":null}`))
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeSent, outcome.Status)
	sent := sink.Notifications()
	require.Len(t, sent, 1)
	assert.Equal(t, "artist@example.com", sent[0].Email.To)
	assert.Contains(t, sent[0].Title, "5000")
	assert.Contains(t, sent[0].Title, "Funds Added")
}

func TestUserMailerSuppressesWithdrawalRequests(t *testing.T) {
	m, _, sink := newMailerFixture(testConfig(), artist)

	outcome, err := m.Handle(context.Background(), []byte(`{"type":"INSERT","table":"transactions",
		"record":{"id":"tx2","type":"withdrawal","amount":2000,"user_id":"`+artist.ID+`"}}`))
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeSkipped, outcome.Status)
	assert.Empty(t, sink.Notifications())
}

func TestUserMailerSubmissionAccepted(t *testing.T) {
	m, _, sink := newMailerFixture(testConfig(), artist, curator)

	outcome, err := m.Handle(context.Background(), []byte(`{"type":"UPDATE","table":"submissions",
		"record":{"id":"s1","artist_id":"`+artist.ID+`","playlist_id":"`+playlist.ID+`","song_title":"Lagos Nights","status":"accepted","tracking_slug":"abc-123","amount_paid":3000},
		"old_record":{"id":"s1","status":"pending"}}`))
	require.NoError(t, err)

	assert.Equal(t, "submission_accepted", outcome.Rule)
	sent := sink.Notifications()
	require.Len(t, sent, 1)
	assert.Equal(t, artist.Email, sent[0].Email.To)
	assert.Contains(t, sent[0].Body, `https://pitch.example/track/abc-123"`)
	assert.Contains(t, sent[0].Body, "Afro Vibes")
}

func TestUserMailerSubmissionDeclined(t *testing.T) {
	m, _, sink := newMailerFixture(testConfig(), artist, curator)

	_, err := m.Handle(context.Background(), []byte(`{"type":"UPDATE","table":"submissions",
		"record":{"id":"s1","artist_id":"`+artist.ID+`","playlist_id":"`+playlist.ID+`","song_title":"Lagos Nights","status":"declined","amount_paid":"3000.50","feedback":"The mix is too quiet for this playlist"},
		"old_record":{"id":"s1","status":"pending"}}`))
	require.NoError(t, err)

	sent := sink.Notifications()
	require.Len(t, sent, 1)
	assert.Equal(t, artist.Email, sent[0].Email.To)
	assert.Contains(t, sent[0].Body, "₦3000.5")
	assert.Contains(t, sent[0].Body, "The mix is too quiet for this playlist")
}

func TestUserMailerSubmissionInsertNotifiesCuratorOnly(t *testing.T) {
	m, _, sink := newMailerFixture(testConfig(), artist, curator)

	outcome, err := m.Handle(context.Background(), []byte(`{"type":"INSERT","table":"submissions",
		"record":{"id":"s1","artist_id":"`+artist.ID+`","playlist_id":"`+playlist.ID+`","song_title":"Lagos Nights","status":"pending","amount_paid":3000}}`))
	require.NoError(t, err)

	assert.Equal(t, "submission_received", outcome.Rule)
	assert.Equal(t, []string{curator.Email}, sink.Recipients())
	assert.Contains(t, sink.Notifications()[0].Title, "Afro Vibes")
}

func TestUserMailerSubmissionInsertUnknownPlaylist(t *testing.T) {
	m, _, sink := newMailerFixture(testConfig(), artist, curator)

	outcome, err := m.Handle(context.Background(), []byte(`{"type":"INSERT","table":"submissions",
		"record":{"id":"s1","artist_id":"`+artist.ID+`","playlist_id":"missing","status":"pending"}}`))
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeSkipped, outcome.Status)
	assert.Empty(t, sink.Notifications())
}

func TestUserMailerUnchangedStatusSendsNothing(t *testing.T) {
	payloads := map[string]string{
		"submission": `{"type":"UPDATE","table":"submissions",
			"record":{"id":"s1","artist_id":"` + artist.ID + `","playlist_id":"` + playlist.ID + `","status":"accepted","song_title":"new title"},
			"old_record":{"id":"s1","status":"accepted","song_title":"old title"}}`,
		"withdrawal": `{"type":"UPDATE","table":"withdrawals",
			"record":{"id":"w1","user_id":"` + artist.ID + `","status":"pending","amount":100},
			"old_record":{"id":"w1","status":"pending","amount":90}}`,
		"ticket": `{"type":"UPDATE","table":"support_tickets",
			"record":{"id":"t1","user_id":"` + artist.ID + `","status":"open","priority":"high"},
			"old_record":{"id":"t1","status":"OPEN","priority":"low"}}`,
		"submission key-only prior": `{"type":"UPDATE","table":"submissions",
			"record":{"id":"s1","artist_id":"` + artist.ID + `","playlist_id":"` + playlist.ID + `","status":"accepted"},
			"old_record":{"id":"s1"}}`,
		"ticket key-only prior": `{"type":"UPDATE","table":"support_tickets",
			"record":{"id":"t1","user_id":"` + artist.ID + `","status":"resolved"},
			"old_record":{"id":"t1"}}`,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			m, _, sink := newMailerFixture(testConfig(), artist, curator)
			outcome, err := m.Handle(context.Background(), []byte(payload))
			require.NoError(t, err)
			assert.Equal(t, model.OutcomeIgnored, outcome.Status)
			assert.Empty(t, sink.Notifications())
		})
	}
}

func TestUserMailerStatusChanges(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantRule string
	}{
		{
			name: "withdrawal completed",
			payload: `{"type":"UPDATE","table":"withdrawals",
				"record":{"id":"w1","user_id":"` + artist.ID + `","status":"completed","amount":2000,"bank_name":"GTBank","account_number":"0123456789"},
				"old_record":{"id":"w1","status":"pending"}}`,
			wantRule: "withdrawal_status",
		},
		{
			name: "ticket resolved",
			payload: `{"type":"UPDATE","table":"support_tickets",
				"record":{"id":"t1","user_id":"` + artist.ID + `","subject":"Refund?","status":"resolved"},
				"old_record":{"id":"t1","status":"open"}}`,
			wantRule: "ticket_status",
		},
		{
			name: "missing prior counts as changed",
			payload: `{"type":"UPDATE","table":"support_tickets",
				"record":{"id":"t1","user_id":"` + artist.ID + `","status":"resolved"}}`,
			wantRule: "ticket_status",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, sink := newMailerFixture(testConfig(), artist)
			outcome, err := m.Handle(context.Background(), []byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantRule, outcome.Rule)
			assert.Equal(t, []string{artist.Email}, sink.Recipients())
		})
	}
}

func TestUserMailerUnresolvableRecipientIsSkipped(t *testing.T) {
	for name, userID := range map[string]string{"unknown user": "nobody", "no email": noEmail.ID, "empty id": ""} {
		t.Run(name, func(t *testing.T) {
			m, _, sink := newMailerFixture(testConfig(), noEmail)
			outcome, err := m.Handle(context.Background(), []byte(`{"type":"INSERT","table":"transactions",
				"record":{"type":"deposit","amount":10,"user_id":"`+userID+`"}}`))
			if userID == "" {
				// user_id is required, so the event is rejected at decode time.
				require.NoError(t, err)
				assert.Equal(t, model.OutcomeIgnored, outcome.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.OutcomeSkipped, outcome.Status)
			assert.Empty(t, sink.Notifications())
		})
	}
}

func TestUserMailerEscalatesSingleEventFaults(t *testing.T) {
	deposit := []byte(`{"type":"INSERT","table":"transactions","record":{"type":"deposit","amount":10,"user_id":"` + artist.ID + `"}}`)

	t.Run("directory failure", func(t *testing.T) {
		m, dir, sink := newMailerFixture(testConfig(), artist)
		dir.ProfileErr = errors.New("too many connections")

		outcome, err := m.Handle(context.Background(), deposit)
		require.ErrorIs(t, err, ErrLookup)
		assert.Equal(t, model.OutcomeFailed, outcome.Status)
		assert.Empty(t, sink.Notifications())
	})

	t.Run("provider failure", func(t *testing.T) {
		m, _, sink := newMailerFixture(testConfig(), artist)
		sink.Err = errors.New("mail api 503 Service Unavailable")

		outcome, err := m.Handle(context.Background(), deposit)
		require.ErrorIs(t, err, ErrDelivery)
		assert.Equal(t, model.OutcomeFailed, outcome.Status)
		assert.Equal(t, "receipt", outcome.Rule)
	})
}

func TestUserMailerParseFaultsAreNotErrors(t *testing.T) {
	for _, payload := range []string{"", "{", `{"type":"INSERT","table":"transactions","record":{"amount":"lots"}}`} {
		m, _, sink := newMailerFixture(testConfig(), artist)
		outcome, err := m.Handle(context.Background(), []byte(payload))
		require.NoError(t, err, payload)
		assert.Equal(t, model.OutcomeIgnored, outcome.Status, payload)
		assert.Empty(t, sink.Notifications())
	}
}

func TestUserMailerInAppBroadcastSendsNothing(t *testing.T) {
	m, dir, sink := newMailerFixture(testConfig(), artist, curator, admin)

	outcome, err := m.Handle(context.Background(), []byte(`{"type":"INSERT","table":"broadcasts",
		"record":{"id":"b1","subject":"Hi","message":"Hello","channel":"in_app","target_role":"all"}}`))
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeSkipped, outcome.Status)
	assert.Empty(t, sink.Notifications())
	assert.Zero(t, dir.ProfileCalls)
}

func TestUserMailerBroadcastInsert(t *testing.T) {
	m, _, sink := newMailerFixture(testConfig(), artist, curator, noRole)

	outcome, err := m.Handle(context.Background(), []byte(`{"type":"INSERT","table":"announcements",
		"record":{"id":"b2","subject":"News for {{name}}","message":"Hello {{name}}","channel":"both","target_role":"curator"}}`))
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeBroadcast, outcome.Status)
	assert.Equal(t, 1, outcome.Sent)
	assert.Equal(t, []string{curator.Email}, sink.Recipients())
	assert.Equal(t, "News for Cole Curator", sink.Notifications()[0].Title)
}

func TestUserMailerBroadcastTargetIsCaseInsensitive(t *testing.T) {
	m, _, sink := newMailerFixture(testConfig(), artist, curator)

	outcome, err := m.Handle(context.Background(), []byte(`{"type":"INSERT","table":"broadcasts",
		"record":{"id":"b3","subject":"s","message":"m","channel":" Email ","target_role":"Curator"}}`))
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeBroadcast, outcome.Status)
	assert.Equal(t, []string{curator.Email}, sink.Recipients())
}
