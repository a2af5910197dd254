package events

import "encoding/json"

// Event is one published occurrence. Payload is a JSON object.
type Event struct {
	Type      Type
	Timestamp uint32 // Milliseconds since start
	Payload   string
}

// New returns an event of type t. An empty payload becomes "{}".
func New(t Type, ts uint32, payload string) *Event {
	if payload == "" {
		payload = "{}"
	}
	return &Event{Type: t, Timestamp: ts, Payload: payload}
}

// ID returns the catalog id of the event type.
func (e *Event) ID() uint16 {
	return Lookup(e.Type).ID
}

// Name returns the catalog name of the event type.
func (e *Event) Name() string {
	return Lookup(e.Type).Name
}

func (e *Event) fields() map[string]json.RawMessage {
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(e.Payload), &m); err != nil {
		return nil
	}
	return m
}

// Int returns the integer member key of the payload. Non-integer numbers
// are truncated.
func (e *Event) Int(key string) (int, bool) {
	raw, ok := e.fields()[key]
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return int(f), true
}

// Str returns the string member key of the payload.
func (e *Event) Str(key string) (string, bool) {
	raw, ok := e.fields()[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
