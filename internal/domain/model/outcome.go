package model

// OutcomeStatus summarises what one invocation did.
type OutcomeStatus string

const (
	OutcomeIgnored   OutcomeStatus = "ignored"   // Unparseable input or no rule matched.
	OutcomeSkipped   OutcomeStatus = "skipped"   // A rule matched but deliberately sent nothing.
	OutcomeSent      OutcomeStatus = "sent"      // A single notification was delivered.
	OutcomeFailed    OutcomeStatus = "failed"    // Delivery was attempted and failed.
	OutcomeBroadcast OutcomeStatus = "broadcast" // Fan-out ran; see the counters.
)

// Outcome is returned by both services for every handled event.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Rule   string        `json:"rule,omitempty"`
	Reason string        `json:"reason,omitempty"`

	Sent    int `json:"sent,omitempty"`
	Failed  int `json:"failed,omitempty"`
	Skipped int `json:"skipped,omitempty"`
}
