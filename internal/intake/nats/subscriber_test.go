package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	outcome model.Outcome
	err     error
	calls   int
}

func (s *stubHandler) Handle(_ context.Context, _ []byte) (model.Outcome, error) {
	s.calls++
	return s.outcome, s.err
}

func newTestSubscriber(h *stubHandler) *Subscriber {
	logger := zerolog.Nop()
	return NewSubscriber(Config{Subject: "dispatcher.mailer", QueueGroup: "mailer"}, h, &logger)
}

func TestProcessEncodesOutcome(t *testing.T) {
	h := &stubHandler{outcome: model.Outcome{Status: model.OutcomeSent, Rule: "receipt"}}
	s := newTestSubscriber(h)

	var r reply
	require.NoError(t, json.Unmarshal(s.process([]byte(`{}`)), &r))
	assert.Equal(t, "sent", r.Status)
	assert.Equal(t, "receipt", r.Rule)
	assert.Empty(t, r.Error)
}

func TestProcessEncodesError(t *testing.T) {
	h := &stubHandler{outcome: model.Outcome{Status: model.OutcomeFailed, Rule: "receipt"}, err: errors.New("delivery failed")}
	s := newTestSubscriber(h)

	var r reply
	require.NoError(t, json.Unmarshal(s.process([]byte(`{}`)), &r))
	assert.Equal(t, "failed", r.Status)
	assert.Equal(t, "delivery failed", r.Error)
}

func TestHandleMsgWithoutReplyOnlyProcesses(t *testing.T) {
	h := &stubHandler{outcome: model.Outcome{Status: model.OutcomeIgnored}}
	s := newTestSubscriber(h)

	s.handleMsg(&nats.Msg{Subject: "dispatcher.mailer", Data: []byte(`not json`)})
	assert.Equal(t, 1, h.calls)
}

func TestStopWithoutStart(t *testing.T) {
	s := newTestSubscriber(&stubHandler{})
	assert.NoError(t, s.Stop())
	assert.Error(t, s.ctx.Err())
}
