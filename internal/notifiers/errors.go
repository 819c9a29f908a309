package notifiers

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidNotification is returned when a notification cannot be sent on
// the channel it was routed to, e.g. an email without a recipient.
var ErrInvalidNotification = errors.New("invalid notification")

// StatusError is a non-2xx reply from an HTTP destination.
type StatusError struct {
	Target     string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Target, e.Status, e.Body)
}

// IsRecipientError reports whether err concerns only the notification that
// was being sent, so the destination itself should be considered healthy.
// Client errors count, except those that describe the caller's credentials
// or the provider's load.
func IsRecipientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidNotification) {
		return true
	}
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return se.StatusCode >= 400 && se.StatusCode < 500
}
