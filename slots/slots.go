// Package slots stores the media bound to each preset button.
//
// A Store holds a fixed number of records. It is a consumer-only view: the
// controller fills slots through the bridge or a YAML file, the panel reads
// them back when a preset is selected.
package slots

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultCount is the number of slots of a store created with New(0).
const DefaultCount = 8

// Slot is one preset record.
type Slot struct {
	MediaID     string `yaml:"media_id"`
	DisplayName string `yaml:"display_name"`
	Valid       bool   `yaml:"valid"`
	LastPlayed  uint32 `yaml:"last_played"`
}

// Store is a fixed-size slot table.
type Store struct {
	slots []Slot
}

// New returns a store of n empty slots. n <= 0 selects DefaultCount.
func New(n int) *Store {
	if n <= 0 {
		n = DefaultCount
	}
	return &Store{slots: make([]Slot, n)}
}

// Len returns the number of slots.
func (s *Store) Len() int { return len(s.slots) }

// Get returns slot i. It returns false if i is out of range.
func (s *Store) Get(i int) (Slot, bool) {
	if i < 0 || i >= len(s.slots) {
		return Slot{}, false
	}
	return s.slots[i], true
}

// Set replaces slot i. It returns false if i is out of range.
func (s *Store) Set(i int, v Slot) bool {
	if i < 0 || i >= len(s.slots) {
		return false
	}
	s.slots[i] = v
	return true
}

// Clear empties slot i. It returns false if i is out of range.
func (s *Store) Clear(i int) bool {
	return s.Set(i, Slot{})
}

// Touch records now as the last play time of slot i. Only valid slots are
// updated.
func (s *Store) Touch(i int, now uint32) bool {
	if i < 0 || i >= len(s.slots) || !s.slots[i].Valid {
		return false
	}
	s.slots[i].LastPlayed = now
	return true
}

type record struct {
	Index int `yaml:"index"`
	Slot  `yaml:",inline"`
}

type file struct {
	Slots []record `yaml:"slots"`
}

// Load replaces the store content with the file at path. A missing file
// leaves every slot empty.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			clear(s.slots)
			return nil
		}
		return fmt.Errorf("slots: read %s: %w", path, err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("slots: parse %s: %w", path, err)
	}
	next := make([]Slot, len(s.slots))
	for _, r := range f.Slots {
		if r.Index < 0 || r.Index >= len(next) {
			return fmt.Errorf("slots: %s: index %d out of range [0,%d)", path, r.Index, len(next))
		}
		next[r.Index] = r.Slot
	}
	s.slots = next
	return nil
}

// Save writes every non-empty slot to path. The file is replaced atomically.
func (s *Store) Save(path string) error {
	var f file
	for i, v := range s.slots {
		if v != (Slot{}) {
			f.Slots = append(f.Slots, record{Index: i, Slot: v})
		}
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("slots: encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".slots-*")
	if err != nil {
		return fmt.Errorf("slots: save %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("slots: save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("slots: save %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("slots: save %s: %w", path, err)
	}
	return nil
}
