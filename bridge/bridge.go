// Package bridge links the panel to an external home-automation controller.
//
// The link carries newline-delimited JSON. The controller sends command
// frames such as
//
//	{"cmd":"set_mode","mode":2,"preset":5,"mode_name":"clock"}
//
// and the panel publishes every bus event it forwards as
//
//	{"type_id":4,"type_name":"settings.brightness","timestamp":12345,"value":{"value":180}}
//
// A compact event frame ({"type":"brightness_changed","ts":N,"i1":N,"i2":N})
// is also defined for peers that do not want the full payload.
//
// The panel side is a Bridge: Stub logs and ignores, Serial talks over any
// io.Reader/io.Writer pair. Commands are only handed to the CommandHandler
// from Update, so handlers run on the caller's goroutine.
package bridge

import (
	"io"
	"log"

	"github.com/flavioheleno/retropanel/events"
)

// CommandHandler receives controller commands. Absent integers are -1.
type CommandHandler interface {
	OnSetMode(mode int, name string, preset int)
	OnSetVolume(volume int)
	OnSetBrightness(value int)
	OnSetMetadata(text string)
	OnRequestStatus()
}

// EventSink accepts panel events for the controller.
type EventSink interface {
	PublishEvent(e *events.Event) error
}

// Bridge is the panel end of the link.
type Bridge interface {
	EventSink
	SetHandler(h CommandHandler)
	Update()
	Close() error
}

// Opts holds the bridge configuration.
type Opts struct {
	Logger *log.Logger
}

func logger(opts *Opts) *log.Logger {
	if opts != nil && opts.Logger != nil {
		return opts.Logger
	}
	return log.New(io.Discard, "", 0)
}

// Stub is a Bridge that logs every event and never produces commands.
type Stub struct {
	log *log.Logger
}

// NewStub returns a stub bridge.
func NewStub(opts *Opts) *Stub {
	s := &Stub{log: logger(opts)}
	s.log.Printf("bridge: stub mode")
	return s
}

func (s *Stub) PublishEvent(e *events.Event) error {
	if e == nil {
		return nil
	}
	s.log.Printf("bridge: %s (id:%d) = %s", e.Name(), e.ID(), e.Payload)
	return nil
}

func (s *Stub) SetHandler(h CommandHandler) {}

func (s *Stub) Update() {}

func (s *Stub) Close() error { return nil }

// Forward subscribes sink to every event type on bus. It returns a function
// that removes the subscriptions.
func Forward(bus *events.Bus, sink EventSink, l *log.Logger) (func(), error) {
	if l == nil {
		l = logger(nil)
	}
	cb := func(e *events.Event, ctx any) {
		if err := sink.PublishEvent(e); err != nil {
			l.Printf("bridge: publish %s: %v", e.Name(), err)
		}
	}
	var types []events.Type
	cancel := func() {
		for _, t := range types {
			bus.Unsubscribe(t, cb, sink)
		}
	}
	for _, entry := range events.Catalog() {
		if err := bus.Subscribe(entry.Type, cb, sink); err != nil {
			cancel()
			return nil, err
		}
		types = append(types, entry.Type)
	}
	return cancel, nil
}
