// Package event decodes change-capture payloads into typed change events.
//
// The wire format is the row-level webhook payload of the data store
// ({type, table, schema, record, old_record}) plus the ad-hoc fields
// application code sends for manual events (event_type, message, email).
package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptyPayload is returned for an empty or whitespace-only body.
	ErrEmptyPayload = errors.New("event: empty payload")
	// ErrMalformedPayload is returned when the body is not a JSON object.
	ErrMalformedPayload = errors.New("event: malformed payload")
	// ErrInvalidRecord is returned when a record has wrong-typed or missing required fields.
	ErrInvalidRecord = errors.New("event: invalid record")
)

// Operation is the kind of mutation that produced the event.
type Operation string

const (
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpManual Operation = "manual"
)

// ChangeEvent is a decoded change event. Record and Prior hold the same
// concrete variant for row events; Manual is set only for manual events.
type ChangeEvent struct {
	Kind      EntityKind
	Operation Operation
	Table     string
	Schema    string

	Record Record
	Prior  Record // nil when the payload carried no old_record.

	Manual *Manual

	priorColumns map[string]struct{}
}

// PriorHas reports whether old_record carried the named column. Publishers
// may send only the primary key, so absent columns are unknown, not empty.
func (e *ChangeEvent) PriorHas(column string) bool {
	_, ok := e.priorColumns[column]
	return ok
}

// envelope is the raw wire shape shared by every intake.
type envelope struct {
	Type      string          `json:"type"`
	Table     string          `json:"table"`
	Schema    string          `json:"schema"`
	Record    json.RawMessage `json:"record"`
	OldRecord json.RawMessage `json:"old_record"`
	EventType string          `json:"event_type"`

	Title   string `json:"title"`
	Message string `json:"message"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

var validate = validator.New()

// Parse decodes one payload. Unknown tables are not an error: the event is
// returned with KindUnknown and no record so callers can treat it as a miss.
func Parse(payload []byte) (*ChangeEvent, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, ErrEmptyPayload
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if strings.TrimSpace(env.Table) == "" {
		return parseManual(&env), nil
	}

	ev := &ChangeEvent{
		Kind:      kindForTable(env.Table),
		Operation: operationFor(env.Type),
		Table:     env.Table,
		Schema:    env.Schema,
	}
	if ev.Kind == KindUnknown {
		return ev, nil
	}

	record, err := decodeRecord(ev.Kind, env.Record)
	if err != nil {
		return nil, err
	}
	if record != nil {
		if n, ok := record.(interface{ normalize() }); ok {
			n.normalize()
		}
		if err := validate.Struct(record); err != nil {
			return nil, fmt.Errorf("%w: %s record: %v", ErrInvalidRecord, ev.Kind, err)
		}
	}
	ev.Record = record

	// old_record may be partial, so it is decoded but not validated.
	prior, err := decodeRecord(ev.Kind, env.OldRecord)
	if err != nil {
		return nil, err
	}
	ev.Prior = prior
	if prior != nil {
		ev.priorColumns = columnsOf(env.OldRecord)
	}

	return ev, nil
}

func operationFor(t string) Operation {
	switch strings.ToUpper(strings.TrimSpace(t)) {
	case "INSERT":
		return OpInsert
	case "UPDATE":
		return OpUpdate
	case "DELETE":
		return OpDelete
	default:
		return Operation(strings.ToLower(strings.TrimSpace(t)))
	}
}

func columnsOf(raw json.RawMessage) map[string]struct{} {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	cols := make(map[string]struct{}, len(fields))
	for name := range fields {
		cols[name] = struct{}{}
	}
	return cols
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
