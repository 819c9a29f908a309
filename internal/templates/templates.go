// Package templates renders the dispatcher's transactional and broadcast emails.
// Rendering is pure: every function maps its inputs to a subject and an HTML body.
package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/ilindan-dev/pitch-dispatcher/internal/config"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/event"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Email is a rendered message.
type Email struct {
	Subject string
	HTML    string
}

// Renderer renders emails for one site.
type Renderer struct {
	siteURL  string
	siteName string
	currency string
	pages    *template.Template
}

// NewRenderer parses the templates once; it panics only on a programming error in them.
func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{
		siteURL:  strings.TrimRight(strings.TrimSpace(cfg.Site.URL), "/"),
		siteName: cfg.Site.Name,
		currency: cfg.Site.Currency,
		pages:    template.Must(template.New("pages").Parse(pageTemplates)),
	}
}

// Link joins a path onto the configured site URL.
func (r *Renderer) Link(elem ...string) string {
	link, err := url.JoinPath(r.siteURL, elem...)
	if err != nil {
		return r.siteURL + "/" + strings.Join(elem, "/")
	}
	return link
}

// Money formats an amount with the configured currency symbol.
func (r *Renderer) Money(amount decimal.Decimal) string {
	return r.currency + amount.String()
}

// Receipt renders a wallet transaction receipt.
func (r *Renderer) Receipt(to model.Recipient, tx *event.Transaction) (Email, error) {
	label := TransactionLabel(tx.Type)
	return r.render("receipt", fmt.Sprintf("%s – %s", label, r.Money(tx.Amount)), map[string]any{
		"Name":        to.DisplayName,
		"Label":       label,
		"Amount":      r.Money(tx.Amount),
		"Reference":   tx.Reference,
		"Description": tx.Description,
		"WalletURL":   r.Link("wallet"),
	})
}

// SubmissionReceived renders the curator's "new submission" email.
func (r *Renderer) SubmissionReceived(to model.Recipient, sub *event.Submission, playlist *model.Playlist) (Email, error) {
	return r.render("submission_received", fmt.Sprintf("New submission for %s", playlist.Name), map[string]any{
		"Name":         to.DisplayName,
		"Playlist":     playlist.Name,
		"SongTitle":    sub.SongTitle,
		"SongLink":     sub.SongLink,
		"Amount":       r.Money(sub.AmountPaid),
		"DashboardURL": r.Link("curator", "dashboard"),
	})
}

// SubmissionAccepted renders the artist's approval email with a tracking link.
func (r *Renderer) SubmissionAccepted(to model.Recipient, sub *event.Submission, playlistName string) (Email, error) {
	data := map[string]any{
		"Name":      to.DisplayName,
		"SongTitle": sub.SongTitle,
		"Playlist":  playlistName,
	}
	if sub.TrackingSlug != "" {
		data["TrackingURL"] = r.Link("track", sub.TrackingSlug)
	}
	return r.render("submission_accepted", fmt.Sprintf("Your song %q was accepted", sub.SongTitle), data)
}

// SubmissionDeclined renders the artist's decline email with the refund amount and feedback.
func (r *Renderer) SubmissionDeclined(to model.Recipient, sub *event.Submission, playlistName string) (Email, error) {
	return r.render("submission_declined", fmt.Sprintf("Update on %q", sub.SongTitle), map[string]any{
		"Name":      to.DisplayName,
		"SongTitle": sub.SongTitle,
		"Playlist":  playlistName,
		"Refund":    r.Money(sub.AmountPaid),
		"Feedback":  sub.Feedback,
		"WalletURL": r.Link("wallet"),
	})
}

// WithdrawalStatus renders a payout status change.
func (r *Renderer) WithdrawalStatus(to model.Recipient, w *event.Withdrawal) (Email, error) {
	status := Humanize(w.Status)
	return r.render("withdrawal_status", fmt.Sprintf("Withdrawal %s – %s", strings.ToLower(status), r.Money(w.Amount)), map[string]any{
		"Name":    to.DisplayName,
		"Status":  status,
		"Amount":  r.Money(w.Amount),
		"Bank":    w.BankName,
		"Account": maskAccount(w.AccountNumber),
	})
}

// TicketStatus renders a support ticket status change.
func (r *Renderer) TicketStatus(to model.Recipient, ticket *event.SupportTicket) (Email, error) {
	status := Humanize(ticket.Status)
	return r.render("ticket_status", fmt.Sprintf("Support ticket update: %s", status), map[string]any{
		"Name":      to.DisplayName,
		"Status":    status,
		"Subject":   ticket.Subject,
		"TicketURL": r.Link("support"),
	})
}

// Broadcast personalises an announcement for one recipient and wraps it in the envelope.
func (r *Renderer) Broadcast(to model.Recipient, ann *model.Announcement) (Email, error) {
	subject := Personalize(ann.Subject, to.DisplayName)
	body := FormatBody(Personalize(ann.Message, template.HTMLEscapeString(to.DisplayName)))
	return r.wrap(subject, template.HTML(body))
}

func (r *Renderer) render(name, subject string, data map[string]any) (Email, error) {
	var buf bytes.Buffer
	if err := r.pages.ExecuteTemplate(&buf, name, data); err != nil {
		return Email{}, fmt.Errorf("render %s: %w", name, err)
	}
	return r.wrap(subject, template.HTML(buf.String()))
}

// wrap places rendered content into the branded envelope.
func (r *Renderer) wrap(subject string, content template.HTML) (Email, error) {
	var buf bytes.Buffer
	err := r.pages.ExecuteTemplate(&buf, "envelope", map[string]any{
		"Subject":  subject,
		"Content":  content,
		"SiteName": r.siteName,
		"SiteURL":  r.siteURL,
	})
	if err != nil {
		return Email{}, fmt.Errorf("render envelope: %w", err)
	}
	return Email{Subject: subject, HTML: buf.String()}, nil
}

func maskAccount(number string) string {
	number = strings.TrimSpace(number)
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("•", len(number)-4) + number[len(number)-4:]
}
