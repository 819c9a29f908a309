package templates

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ilindan-dev/pitch-dispatcher/internal/config"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/event"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer() *Renderer {
	return NewRenderer(&config.Config{Site: config.SiteConfig{
		URL:      "https://pitch.example/",
		Name:     "PitchBox",
		Currency: "₦",
	}})
}

var ada = model.Recipient{Address: "ada@example.com", DisplayName: "Ada"}

func TestReceiptSubject(t *testing.T) {
	r := newTestRenderer()
	email, err := r.Receipt(ada, &event.Transaction{UserID: "u1", Type: "deposit", Amount: decimal.NewFromInt(5000)})
	require.NoError(t, err)

	assert.Contains(t, email.Subject, "Funds Added")
	assert.Contains(t, email.Subject, "5000")
	assert.Contains(t, email.HTML, "https://pitch.example/wallet")
	assert.Contains(t, email.HTML, "PitchBox")
}

func TestSubmissionAcceptedTrackingLink(t *testing.T) {
	r := newTestRenderer()
	email, err := r.SubmissionAccepted(ada, &event.Submission{SongTitle: "Lagos Nights", TrackingSlug: "abc-123"}, "Afro Vibes")
	require.NoError(t, err)

	assert.Contains(t, email.HTML, `href="https://pitch.example/track/abc-123"`)
	assert.Contains(t, email.HTML, "Afro Vibes")
}

func TestSubmissionAcceptedWithoutSlugOmitsLink(t *testing.T) {
	r := newTestRenderer()
	email, err := r.SubmissionAccepted(ada, &event.Submission{SongTitle: "Lagos Nights"}, "")
	require.NoError(t, err)
	assert.NotContains(t, email.HTML, "/track/")
}

func TestSubmissionDeclinedRefundAndFeedback(t *testing.T) {
	r := newTestRenderer()
	email, err := r.SubmissionDeclined(ada, &event.Submission{
		SongTitle:  "Lagos Nights",
		AmountPaid: decimal.RequireFromString("3000"),
		Feedback:   "Great vocals but the mix is too quiet for this playlist",
	}, "Afro Vibes")
	require.NoError(t, err)

	assert.Contains(t, email.HTML, "₦3000")
	assert.Contains(t, email.HTML, "Great vocals but the mix is too quiet for this playlist")
}

func TestTemplatesEscapeUserInput(t *testing.T) {
	r := newTestRenderer()
	email, err := r.TicketStatus(ada, &event.SupportTicket{UserID: "u1", Subject: "<script>x</script>", Status: "resolved"})
	require.NoError(t, err)
	assert.NotContains(t, email.HTML, "<script>")
	assert.Equal(t, "Support ticket update: Resolved", email.Subject)
}

func TestWithdrawalStatusMasksAccount(t *testing.T) {
	r := newTestRenderer()
	email, err := r.WithdrawalStatus(ada, &event.Withdrawal{UserID: "u1", Amount: decimal.NewFromInt(2000), Status: "completed", BankName: "GTBank", AccountNumber: "0123456789"})
	require.NoError(t, err)
	assert.Contains(t, email.Subject, "completed")
	assert.Contains(t, email.HTML, "6789")
	assert.NotContains(t, email.HTML, "0123456789")
}

func TestBroadcastPersonalisation(t *testing.T) {
	r := newTestRenderer()
	ann := &model.Announcement{
		Subject: "Hello {{name}}!",
		Message: "Hi {{ name }},\nNew features are live.\nThanks, {{USERNAME}}",
	}
	email, err := r.Broadcast(model.Recipient{Address: "t@example.com", DisplayName: "Tobi & Co"}, ann)
	require.NoError(t, err)

	assert.Equal(t, "Hello Tobi & Co!", email.Subject)
	assert.Contains(t, email.HTML, "Hi Tobi &amp; Co,<br>New features are live.<br>Thanks, Tobi &amp; Co")
	assert.NotContains(t, email.HTML, "{{")
}

func TestFormatBodyKeepsAuthorMarkup(t *testing.T) {
	body := "<p>First</p>\n<p>Second</p>"
	assert.Equal(t, body, FormatBody(body))
	assert.Equal(t, "one<br>two<br>three", FormatBody("one\ntwo\r\nthree"))
	assert.Equal(t, "<b>bold</b><br>line", FormatBody("<b>bold</b>\nline"), "inline markup is not block markup")
}

func TestPersonalizeRemovesAllPlaceholders(t *testing.T) {
	out := Personalize("{{name}} {{name}} {{ username }} {{Name}}", "Zee")
	assert.Equal(t, "Zee Zee Zee Zee", out)
	assert.False(t, strings.Contains(out, "{{"))
}

func TestTransactionLabel(t *testing.T) {
	assert.Equal(t, "Funds Added", TransactionLabel("deposit"))
	assert.Equal(t, "Refund Issued", TransactionLabel("REFUND"))
	assert.Equal(t, "Bonus Credit", TransactionLabel("bonus_credit"))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "In Review", Humanize("in_review"))
	assert.Equal(t, "Resolved", Humanize("RESOLVED"))
	assert.Equal(t, "Échec Final", Humanize("échec_final"))
	assert.True(t, utf8.ValidString(Humanize("ñ")))
	assert.Empty(t, Humanize("  "))
}
