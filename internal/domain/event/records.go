package event

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// EntityKind identifies the variant carried by a row event.
type EntityKind string

const (
	KindUnknown       EntityKind = ""
	KindProfile       EntityKind = "profile"
	KindSubmission    EntityKind = "submission"
	KindPlaylist      EntityKind = "playlist"
	KindTransaction   EntityKind = "transaction"
	KindWithdrawal    EntityKind = "withdrawal"
	KindSupportTicket EntityKind = "support_ticket"
	KindBroadcast     EntityKind = "broadcast"
)

var tableKinds = map[string]EntityKind{
	"profiles":        KindProfile,
	"users":           KindProfile,
	"submissions":     KindSubmission,
	"playlists":       KindPlaylist,
	"transactions":    KindTransaction,
	"withdrawals":     KindWithdrawal,
	"support_tickets": KindSupportTicket,
	"broadcasts":      KindBroadcast,
	"announcements":   KindBroadcast,
}

func kindForTable(table string) EntityKind {
	return tableKinds[strings.ToLower(strings.TrimSpace(table))]
}

// Record is implemented by every typed row variant.
type Record interface {
	Kind() EntityKind
}

// Profile is a row of the profiles table.
type Profile struct {
	ID                 string `json:"id" validate:"required"`
	Email              string `json:"email"`
	FullName           string `json:"full_name"`
	Username           string `json:"username"`
	Role               string `json:"role"`
	VerificationStatus string `json:"verification_status"`
	NIN                string `json:"nin"`
}

// Submission is a song pitched to a playlist.
type Submission struct {
	ID           string          `json:"id" validate:"required"`
	ArtistID     string          `json:"artist_id" validate:"required"`
	PlaylistID   string          `json:"playlist_id" validate:"required"`
	SongTitle    string          `json:"song_title"`
	SongLink     string          `json:"song_link"`
	Status       string          `json:"status"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	TrackingSlug string          `json:"tracking_slug"`
	Feedback     string          `json:"feedback"`
}

// Playlist is a curator-owned playlist.
type Playlist struct {
	ID            string          `json:"id" validate:"required"`
	CuratorID     string          `json:"curator_id" validate:"required"`
	Name          string          `json:"name"`
	Genre         string          `json:"genre"`
	SubmissionFee decimal.Decimal `json:"submission_fee"`
}

// Transaction is a wallet ledger entry.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id" validate:"required"`
	Type        string          `json:"type" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference"`
	Status      string          `json:"status"`
	Description string          `json:"description"`
}

// Withdrawal is a payout request.
type Withdrawal struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	BankName      string          `json:"bank_name"`
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name"`
}

// SupportTicket is a help-desk ticket.
type SupportTicket struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id" validate:"required"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// Broadcast is an admin announcement.
type Broadcast struct {
	ID         string `json:"id"`
	Subject    string `json:"subject" validate:"required"`
	Message    string `json:"message" validate:"required"`
	Channel    string `json:"channel" validate:"omitempty,oneof=email in_app both"`
	TargetRole string `json:"target_role" validate:"omitempty,oneof=all artist curator"`
}

func (b *Broadcast) normalize() {
	b.Channel = strings.ToLower(strings.TrimSpace(b.Channel))
	b.TargetRole = strings.ToLower(strings.TrimSpace(b.TargetRole))
}

func (*Profile) Kind() EntityKind       { return KindProfile }
func (*Submission) Kind() EntityKind    { return KindSubmission }
func (*Playlist) Kind() EntityKind      { return KindPlaylist }
func (*Transaction) Kind() EntityKind   { return KindTransaction }
func (*Withdrawal) Kind() EntityKind    { return KindWithdrawal }
func (*SupportTicket) Kind() EntityKind { return KindSupportTicket }
func (*Broadcast) Kind() EntityKind     { return KindBroadcast }

func newRecord(kind EntityKind) Record {
	switch kind {
	case KindProfile:
		return &Profile{}
	case KindSubmission:
		return &Submission{}
	case KindPlaylist:
		return &Playlist{}
	case KindTransaction:
		return &Transaction{}
	case KindWithdrawal:
		return &Withdrawal{}
	case KindSupportTicket:
		return &SupportTicket{}
	case KindBroadcast:
		return &Broadcast{}
	default:
		return nil
	}
}

func decodeRecord(kind EntityKind, raw json.RawMessage) (Record, error) {
	if isNull(raw) {
		return nil, nil
	}
	rec := newRecord(kind)
	if rec == nil {
		return nil, nil
	}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("%w: %s record: %v", ErrInvalidRecord, kind, err)
	}
	return rec, nil
}
