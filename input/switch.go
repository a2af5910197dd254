package input

// DefaultSwitchPositions is the position count of NewSwitch(0).
const DefaultSwitchPositions = 4

// Switch is a multi-position selector.
type Switch struct {
	positions int
	current   int
	previous  int
}

// NewSwitch returns a switch with n positions, or 4 when n <= 0.
func NewSwitch(n int) *Switch {
	if n <= 0 {
		n = DefaultSwitchPositions
	}
	return &Switch{positions: n}
}

// SetPosition moves the switch. Out-of-range and unchanged positions are
// ignored and report false.
func (s *Switch) SetPosition(p int, now uint32) bool {
	if p < 0 || p >= s.positions || p == s.current {
		return false
	}
	s.previous = s.current
	s.current = p
	return true
}

// Update starts a new frame.
func (s *Switch) Update(now uint32) {
	s.previous = s.current
}

func (s *Switch) Position() int     { return s.current }
func (s *Switch) Changed() bool     { return s.current != s.previous }
func (s *Switch) NumPositions() int { return s.positions }
