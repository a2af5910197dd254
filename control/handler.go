package control

import (
	"strconv"

	"github.com/flavioheleno/retropanel/announce"
	"github.com/flavioheleno/retropanel/bridge"
	"github.com/flavioheleno/retropanel/events"
	"github.com/flavioheleno/retropanel/preset"
)

var _ bridge.CommandHandler = (*Loop)(nil)

// OnSetMode selects a display mode on behalf of the controller. A mode
// index takes precedence over the mode name.
func (l *Loop) OnSetMode(mode int, name string, presetIndex int) {
	m, ok := l.resolveMode(mode, name, presetIndex)
	if !ok {
		l.log.Printf("control: set_mode: unknown mode %d %q", mode, name)
		return
	}
	l.presets.SetMode(m, l.now)
}

func (l *Loop) resolveMode(mode int, name string, presetIndex int) (preset.DisplayMode, bool) {
	if mode >= 0 {
		m := preset.DisplayMode(mode)
		return m, m.Valid()
	}
	if name != "" {
		return preset.ParseDisplayMode(name)
	}
	if b, ok := l.presets.Binding(presetIndex); ok && b.Action == preset.SelectMode {
		return preset.DisplayMode(b.Value), true
	}
	return 0, false
}

// OnSetVolume records the volume reported by the controller.
func (l *Loop) OnSetVolume(v int) {
	if v < 0 {
		return
	}
	l.volume = min(v, MaxVolume)
	l.announce.Show("Volume "+strconv.Itoa(l.volume), announce.DefaultDuration, l.now)
}

// OnSetBrightness moves the panel to the closest brightness rung.
func (l *Loop) OnSetBrightness(v int) {
	if v < 0 {
		return
	}
	l.presets.SetBrightness(v, l.now)
}

// OnSetMetadata replaces the regular display content, usually with the
// title of what is playing.
func (l *Loop) OnSetMetadata(text string) {
	l.SetMessage(text)
}

// OnRequestStatus republishes the current mode, brightness and volume so
// that the bridge forwards them.
func (l *Loop) OnRequestStatus() {
	mode := l.presets.Mode()
	l.publish(events.ModeChanged, l.now,
		events.Number("value", int(mode)),
		events.String("name", mode.String()),
		events.Number("preset", l.presets.ActiveButton()))
	l.publish(events.BrightnessChanged, l.now, events.Number("value", int(l.presets.Brightness())))
	l.publish(events.VolumeChanged, l.now, events.Number("value", l.volume))
}
