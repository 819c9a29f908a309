package http

import "github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"

// EventResponse reports what the service did with one event.
type EventResponse struct {
	Status  string `json:"status"`
	Rule    string `json:"rule,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Sent    int    `json:"sent,omitempty"`
	Failed  int    `json:"failed,omitempty"`
	Skipped int    `json:"skipped,omitempty"`
}

// ErrorResponse defines a standard structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Rule  string `json:"rule,omitempty"`
}

func toEventResponse(o model.Outcome) EventResponse {
	return EventResponse{
		Status:  string(o.Status),
		Rule:    o.Rule,
		Reason:  o.Reason,
		Sent:    o.Sent,
		Failed:  o.Failed,
		Skipped: o.Skipped,
	}
}
