package model

import (
	"github.com/google/uuid"
	"time"
)

// Channel represents the delivery channel a classified notification is routed to.
type Channel string

const (
	ChannelWebhook   Channel = "webhook"         // Team chat alert.
	ChannelEmail     Channel = "email"           // Single templated email.
	ChannelBroadcast Channel = "email-broadcast" // One personalised email per audience member.
)

// EmailDetails contains recipient information specific to the email channel.
type EmailDetails struct {
	To   string // The recipient's email address.
	Name string // Display name used in greetings.
}

// Notification is a classified notification ready for delivery.
// For the email channel Title is the subject and Body is rendered HTML;
// for the webhook channel both are plain text.
type Notification struct {
	ID      uuid.UUID
	Title   string
	Body    string
	Channel Channel

	Email *EmailDetails

	CreatedAt time.Time
}

// NewWebhookNotification builds a team chat alert.
func NewWebhookNotification(title, body string) *Notification {
	return &Notification{
		ID:        uuid.New(),
		Title:     title,
		Body:      body,
		Channel:   ChannelWebhook,
		CreatedAt: time.Now().UTC(),
	}
}

// NewEmailNotification builds an email addressed to a single recipient.
func NewEmailNotification(to Recipient, subject, html string) *Notification {
	return &Notification{
		ID:        uuid.New(),
		Title:     subject,
		Body:      html,
		Channel:   ChannelEmail,
		Email:     &EmailDetails{To: to.Address, Name: to.DisplayName},
		CreatedAt: time.Now().UTC(),
	}
}

// NewBroadcastNotification builds one personalised copy of an announcement.
func NewBroadcastNotification(to Recipient, subject, html string) *Notification {
	n := NewEmailNotification(to, subject, html)
	n.Channel = ChannelBroadcast
	return n
}
