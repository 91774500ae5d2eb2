// Package mode tracks how each point item is displayed across layout passes.
//
// A point item is in one of three modes:
//
//   - [Collapsed]: a minimal glyph without sub-detail (the default)
//   - [Expanded]: the full glyph with its value axis
//   - [SampleSpread]: the glyph exploded into one dot per sample
//
// Users move items between modes with [Event]s. Any accepted event pins the
// item: later passes keep its mode instead of recomputing a default, until
// [Machine.ResetAll] clears every pin.
//
//	m := mode.New(mode.Options{})
//	st, _ := m.Apply("chr1:100", 4, mode.Expand) // Expanded, pinned
//	st = m.Resolve("chr1:100", 4, false)          // still Expanded
//	m.ResetAll()
//	st = m.Resolve("chr1:100", 4, false)          // Collapsed again
//
// A [Machine] is safe for concurrent use. [Machine.Snapshot] and
// [Machine.Restore] move its state in and out of persistent storage.
package mode

import (
	"fmt"
	"strings"
)

// Mode is the display mode of a point item.
type Mode int

const (
	Collapsed Mode = iota
	Expanded
	SampleSpread
)

var modeNames = [...]string{"collapsed", "expanded", "spread"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode parses the names printed by Mode.String, case-insensitively.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Event is a user action on one item.
type Event int

const (
	Expand Event = iota
	Spread
	Collapse
	Cycle // Collapsed -> Expanded -> SampleSpread -> Collapsed
)

var eventNames = [...]string{"expand", "spread", "collapse", "cycle"}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return fmt.Sprintf("event(%d)", int(e))
	}
	return eventNames[e]
}

// ParseEvent parses the names printed by Event.String, case-insensitively.
func ParseEvent(s string) (Event, error) {
	for i, name := range eventNames {
		if strings.EqualFold(s, name) {
			return Event(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event %q", s)
}

// State is the per-item record a Machine keeps.
type State struct {
	Mode   Mode `json:"mode"`
	Pinned bool `json:"pinned"`
}

// Snapshot is a copy of every recorded state, keyed by item id.
type Snapshot map[string]State
