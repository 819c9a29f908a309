package event

import "strings"

// ManualType classifies application-triggered events that are not row mutations.
type ManualType string

const (
	ManualUnknown ManualType = ""
	ManualLog     ManualType = "log"
	ManualLogin   ManualType = "login"
	ManualChat    ManualType = "chat"
)

var manualTypes = map[string]ManualType{
	"log":           ManualLog,
	"manual":        ManualLog,
	"admin_log":     ManualLog,
	"notification":  ManualLog,
	"login":         ManualLogin,
	"admin_login":   ManualLogin,
	"chat":          ManualChat,
	"live_chat":     ManualChat,
	"chat_question": ManualChat,
	"question":      ManualChat,
}

// Manual is an ad-hoc event sent by application code.
type Manual struct {
	Type    ManualType
	Raw     string // The event type exactly as received.
	Title   string
	Message string
	Email   string
	Name    string
}

func parseManual(env *envelope) *ChangeEvent {
	raw := strings.TrimSpace(env.EventType)
	if raw == "" {
		raw = strings.TrimSpace(env.Type)
	}
	return &ChangeEvent{
		Kind:      KindUnknown,
		Operation: OpManual,
		Manual: &Manual{
			Type:    manualTypes[strings.ToLower(raw)],
			Raw:     raw,
			Title:   strings.TrimSpace(env.Title),
			Message: strings.TrimSpace(env.Message),
			Email:   strings.TrimSpace(env.Email),
			Name:    strings.TrimSpace(env.Name),
		},
	}
}
