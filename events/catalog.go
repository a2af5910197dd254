package events

// Type identifies an event kind.
type Type uint16

const (
	PresetPressed Type = iota
	PresetReleased
	EncoderTurned
	EncoderPressed
	BrightnessChanged
	AnnouncementRequested
	AnnouncementCompleted
	ModeChanged
	VolumeChanged

	numTypes
)

// Entry is one row of the event catalog.
type Entry struct {
	Type Type
	ID   uint16
	Name string
}

// Unknown is returned by lookups that match nothing.
var Unknown = Entry{Type: numTypes, ID: uint16(numTypes), Name: "unknown"}

var catalog = [...]Entry{
	{PresetPressed, 0, "preset.pressed"},
	{PresetReleased, 1, "preset.released"},
	{EncoderTurned, 2, "encoder.turned"},
	{EncoderPressed, 3, "encoder.pressed"},
	{BrightnessChanged, 4, "settings.brightness"},
	{AnnouncementRequested, 5, "announcement.requested"},
	{AnnouncementCompleted, 6, "announcement.completed"},
	{ModeChanged, 7, "system.mode"},
	{VolumeChanged, 8, "settings.volume"},
}

// Catalog returns a copy of every known entry in id order.
func Catalog() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog[:])
	return out
}

// Lookup returns the entry of t.
func Lookup(t Type) Entry {
	for _, e := range catalog {
		if e.Type == t {
			return e
		}
	}
	return Unknown
}

// LookupID returns the entry with the wire id.
func LookupID(id uint16) Entry {
	for _, e := range catalog {
		if e.ID == id {
			return e
		}
	}
	return Unknown
}

// LookupName returns the entry with the dotted name.
func LookupName(name string) Entry {
	for _, e := range catalog {
		if e.Name == name {
			return e
		}
	}
	return Unknown
}

// Valid reports whether t is in the catalog.
func (t Type) Valid() bool {
	return t < numTypes
}

func (t Type) String() string {
	return Lookup(t).Name
}
