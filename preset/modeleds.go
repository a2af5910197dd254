package preset

// NumModeLEDs is the number of mode selector positions with an LED.
const NumModeLEDs = 4

// DefaultModeLEDMap places the LED of selector position i at (2, i).
func DefaultModeLEDMap() []Position {
	m := make([]Position, NumModeLEDs)
	for i := range m {
		m[i] = Position{Row: 2, Col: i}
	}
	return m
}

// ModeLEDs lights the LED of the selected mode position. It shares the
// chip with the preset LEDs and only writes its own positions; the
// Manager's Update pushes them with the next Show.
type ModeLEDs struct {
	leds     LEDSink
	pos      []Position
	level    uint8
	selected int
}

// NewModeLEDs returns an indicator writing to leds, which may be nil. A nil
// pos selects DefaultModeLEDMap and a zero level selects LevelActive.
func NewModeLEDs(leds LEDSink, pos []Position, level uint8) *ModeLEDs {
	if pos == nil {
		pos = DefaultModeLEDMap()
	}
	if level == 0 {
		level = LevelActive
	}
	return &ModeLEDs{leds: leds, pos: pos, level: level, selected: -1}
}

// Select lights position p and darkens the others. It returns false, and
// changes nothing, when p has no LED.
func (m *ModeLEDs) Select(p int) bool {
	if p < 0 || p >= len(m.pos) {
		return false
	}
	m.selected = p
	if m.leds == nil {
		return true
	}
	for i, at := range m.pos {
		var v uint8
		if i == p {
			v = m.level
		}
		m.leds.SetLED(at.Row, at.Col, v)
	}
	return true
}

// Selected returns the lit position, or -1 before the first Select.
func (m *ModeLEDs) Selected() int { return m.selected }
