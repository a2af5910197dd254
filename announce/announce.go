// Package announce shows short acknowledgment texts, such as "Brightness
// 160", over the regular display content for a limited time.
//
// Requests arrive as AnnouncementRequested events with a payload of
// {"text":"...","duration":ms}. When an announcement times out the module
// publishes AnnouncementCompleted with the same text.
package announce

import (
	"fmt"
	"io"
	"log"

	"github.com/flavioheleno/retropanel/events"
)

// DefaultDuration is used when a request carries no duration.
const DefaultDuration = 1000

// Opts holds the module configuration.
type Opts struct {
	Logger *log.Logger
}

// Module holds at most one announcement at a time.
type Module struct {
	bus *events.Bus
	log *log.Logger

	text     string
	duration uint32
	start    uint32
	active   bool
	seq      uint32
}

// New returns a module listening for requests on bus. bus may be nil, in
// which case only Show adds announcements.
func New(bus *events.Bus, opts *Opts) (*Module, error) {
	m := &Module{bus: bus}
	if opts != nil {
		m.log = opts.Logger
	}
	if m.log == nil {
		m.log = log.New(io.Discard, "", 0)
	}
	if bus != nil {
		if err := bus.Subscribe(events.AnnouncementRequested, handleRequest, m); err != nil {
			return nil, fmt.Errorf("announce: subscribe: %w", err)
		}
	}
	return m, nil
}

// Close removes the bus subscription.
func (m *Module) Close() {
	if m.bus != nil {
		m.bus.Unsubscribe(events.AnnouncementRequested, handleRequest, m)
	}
}

func handleRequest(e *events.Event, ctx any) {
	m, ok := ctx.(*Module)
	if !ok {
		return
	}
	text, ok := e.Str("text")
	if !ok || text == "" {
		return
	}
	ms, ok := e.Int("duration")
	if !ok || ms <= 0 {
		ms = DefaultDuration
	}
	m.Show(text, uint32(ms), e.Timestamp)
}

// Show displays text for ms milliseconds from now. Showing the text that is
// already active only restarts its timer with the new duration.
func (m *Module) Show(text string, ms, now uint32) {
	if ms == 0 {
		ms = DefaultDuration
	}
	if !m.active || m.text != text {
		m.seq++
		m.log.Printf("announce: %s (%dms)", text, ms)
	}
	m.text = text
	m.duration = ms
	m.start = now
	m.active = true
}

// Hold restarts the timer of the active announcement.
func (m *Module) Hold(now uint32) {
	if m.active {
		m.start = now
	}
}

// SetDuration changes the duration of the active announcement and restarts
// its timer.
func (m *Module) SetDuration(ms, now uint32) {
	if m.active {
		m.duration = ms
		m.start = now
	}
}

// Update expires the active announcement once its duration has elapsed. It
// reports whether an announcement ended.
func (m *Module) Update(now uint32) bool {
	if !m.active || now-m.start < m.duration {
		return false
	}
	text := m.text
	m.Clear()
	m.log.Printf("announce: timeout: %s", text)
	if m.bus != nil {
		m.bus.Publish(events.New(events.AnnouncementCompleted, now, events.Object(events.String("text", text))))
	}
	return true
}

// Clear drops the active announcement without publishing.
func (m *Module) Clear() {
	m.active = false
	m.text = ""
}

// Active reports whether an announcement is showing.
func (m *Module) Active() bool { return m.active }

// Text returns the active announcement text.
func (m *Module) Text() string { return m.text }

// Seq increases every time a new text is shown, so callers can tell when to
// redraw.
func (m *Module) Seq() uint32 { return m.seq }
