package mode

import (
	"maps"
	"sync"

	errs "github.com/matzehuels/tracklayout/pkg/errors"
)

// Options configures a Machine.
type Options struct {
	// AutoExpand gives unpinned items that fit the caller's width budget the
	// Expanded default instead of Collapsed.
	AutoExpand bool
}

// Machine holds the mode of every item it has seen.
type Machine struct {
	mu     sync.Mutex
	opts   Options
	states map[string]State
}

// New returns an empty machine.
func New(opts Options) *Machine {
	return &Machine{opts: opts, states: make(map[string]State)}
}

// Options returns the machine's configuration.
func (m *Machine) Options() Options { return m.opts }

// Apply performs a user event on id and pins it.
//
// weight is the item's current aggregate count; SampleSpread needs more than
// one sample. Events that do not apply to the current mode return an
// INVALID_TRANSITION error and leave the state untouched.
func (m *Machine) Apply(id string, weight int, ev Event) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := effective(m.states[id], weight)
	next, err := transition(cur.Mode, weight, ev)
	if err != nil {
		return cur, errs.Item(errs.ErrCodeInvalidTransition, id, "%s from %s: %v", ev, cur.Mode, err)
	}

	st := State{Mode: next, Pinned: true}
	m.states[id] = st
	return st, nil
}

// effective is the mode st shows for weight.
func effective(st State, weight int) State {
	if st.Mode == SampleSpread && weight <= 1 {
		st.Mode = Expanded
	}
	return st
}

func transition(cur Mode, weight int, ev Event) (Mode, error) {
	switch ev {
	case Expand:
		if cur == Collapsed {
			return Expanded, nil
		}
	case Spread:
		if cur == Expanded {
			if weight <= 1 {
				return cur, errSingleSample
			}
			return SampleSpread, nil
		}
	case Collapse:
		if cur != Collapsed {
			return Collapsed, nil
		}
	case Cycle:
		switch cur {
		case Collapsed:
			return Expanded, nil
		case Expanded:
			if weight > 1 {
				return SampleSpread, nil
			}
			return Collapsed, nil
		default:
			return Collapsed, nil
		}
	default:
		return cur, errUnknownEvent
	}
	return cur, errNotApplicable
}

type transitionError string

func (e transitionError) Error() string { return string(e) }

const (
	errSingleSample  transitionError = "a single sample cannot be spread"
	errNotApplicable transitionError = "not applicable"
	errUnknownEvent  transitionError = "unknown event"
)

// Resolve returns the mode id takes in the current pass.
//
// Pinned items keep their mode, except that a pinned SampleSpread whose
// weight dropped to one shows as Expanded. The fallback is not recorded, so
// the spread returns once the weight rises again. Unpinned items get the
// default: Collapsed, or Expanded when AutoExpand is set and fits is true.
func (m *Machine) Resolve(id string, weight int, fits bool) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[id]
	if ok && st.Pinned {
		return effective(st, weight)
	}

	st = State{Mode: Collapsed}
	if m.opts.AutoExpand && fits {
		st.Mode = Expanded
	}
	m.states[id] = st
	return st
}

// State returns the recorded state of id.
func (m *Machine) State(id string) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[id]
	return st, ok
}

// ResetAll clears every pin. The next Resolve recomputes defaults.
func (m *Machine) ResetAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.states)
}

// Len returns the number of recorded items.
func (m *Machine) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}

// Snapshot copies the recorded states.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(Snapshot(m.states))
}

// Restore replaces the recorded states with a copy of s.
func (m *Machine) Restore(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = make(map[string]State, len(s))
	maps.Copy(m.states, s)
}
