package mode

import (
	"encoding/json"
	"reflect"
	"sync"
	"testing"

	errs "github.com/matzehuels/tracklayout/pkg/errors"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		from    Mode
		weight  int
		event   Event
		want    Mode
		wantErr bool
	}{
		{"expand collapsed", Collapsed, 1, Expand, Expanded, false},
		{"spread expanded", Expanded, 3, Spread, SampleSpread, false},
		{"spread single sample", Expanded, 1, Spread, Expanded, true},
		{"spread collapsed", Collapsed, 3, Spread, Collapsed, true},
		{"collapse expanded", Expanded, 3, Collapse, Collapsed, false},
		{"collapse spread", SampleSpread, 3, Collapse, Collapsed, false},
		{"collapse collapsed", Collapsed, 3, Collapse, Collapsed, true},
		{"expand expanded", Expanded, 3, Expand, Expanded, true},
		{"cycle collapsed", Collapsed, 3, Cycle, Expanded, false},
		{"cycle expanded", Expanded, 3, Cycle, SampleSpread, false},
		{"cycle expanded single", Expanded, 1, Cycle, Collapsed, false},
		{"cycle spread", SampleSpread, 3, Cycle, Collapsed, false},
		{"unknown event", Collapsed, 3, Event(42), Collapsed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Options{})
			m.Restore(Snapshot{"a": {Mode: tt.from}})

			st, err := m.Apply("a", tt.weight, tt.event)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Apply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if st.Mode != tt.want {
				t.Errorf("Mode = %v, want %v", st.Mode, tt.want)
			}
			if err != nil {
				if !errs.Is(err, errs.ErrCodeInvalidTransition) {
					t.Errorf("code = %v, want %v", errs.GetCode(err), errs.ErrCodeInvalidTransition)
				}
				if errs.GetItemID(err) != "a" {
					t.Errorf("ItemID = %q, want %q", errs.GetItemID(err), "a")
				}
				if st.Pinned {
					t.Error("rejected event pinned the item")
				}
				return
			}
			if !st.Pinned {
				t.Error("accepted event did not pin the item")
			}
		})
	}
}

func TestResolveDefaults(t *testing.T) {
	m := New(Options{})
	if st := m.Resolve("new", 5, true); st != (State{Mode: Collapsed}) {
		t.Errorf("Resolve(new) = %+v, want Collapsed unpinned", st)
	}

	auto := New(Options{AutoExpand: true})
	if st := auto.Resolve("a", 5, true); st.Mode != Expanded || st.Pinned {
		t.Errorf("AutoExpand fits = %+v, want Expanded unpinned", st)
	}
	if st := auto.Resolve("b", 5, false); st.Mode != Collapsed {
		t.Errorf("AutoExpand no fit = %+v, want Collapsed", st)
	}
}

func TestPinnedSurvivesPasses(t *testing.T) {
	m := New(Options{AutoExpand: true})
	if _, err := m.Apply("a", 5, Expand); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Apply("a", 5, Spread); err != nil {
		t.Fatal(err)
	}

	for pass := range 3 {
		if st := m.Resolve("a", 5, false); st != (State{Mode: SampleSpread, Pinned: true}) {
			t.Fatalf("pass %d: Resolve = %+v, want pinned SampleSpread", pass, st)
		}
	}

	// Weight dropped to one: nothing left to spread.
	if st := m.Resolve("a", 1, false); st.Mode != Expanded || !st.Pinned {
		t.Errorf("Resolve after weight drop = %+v, want pinned Expanded", st)
	}
	if st, _ := m.State("a"); st.Mode != SampleSpread {
		t.Errorf("recorded state after weight drop = %+v, want SampleSpread kept", st)
	}

	// Weight back above one: the spread returns.
	if st := m.Resolve("a", 4, false); st != (State{Mode: SampleSpread, Pinned: true}) {
		t.Errorf("Resolve after weight rise = %+v, want pinned SampleSpread", st)
	}
}

func TestApplyAfterSpreadFallback(t *testing.T) {
	m := New(Options{})
	if _, err := m.Apply("a", 3, Expand); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Apply("a", 3, Spread); err != nil {
		t.Fatal(err)
	}

	// At weight one the item shows as Expanded, so events act on that.
	if _, err := m.Apply("a", 1, Spread); !errs.Is(err, errs.ErrCodeInvalidTransition) {
		t.Errorf("Spread at weight 1 error = %v, want INVALID_TRANSITION", err)
	}
	st, err := m.Apply("a", 1, Cycle)
	if err != nil {
		t.Fatal(err)
	}
	if st != (State{Mode: Collapsed, Pinned: true}) {
		t.Errorf("Cycle at weight 1 = %+v, want pinned Collapsed", st)
	}
}

func TestResetAll(t *testing.T) {
	m := New(Options{})
	for _, id := range []string{"a", "b", "c"} {
		if _, err := m.Apply(id, 2, Cycle); err != nil {
			t.Fatal(err)
		}
	}
	if m.Len() != 3 {
		t.Fatalf("Len = %d, want 3", m.Len())
	}

	m.ResetAll()
	if m.Len() != 0 {
		t.Errorf("Len after reset = %d, want 0", m.Len())
	}
	if st := m.Resolve("a", 2, false); st.Pinned || st.Mode != Collapsed {
		t.Errorf("Resolve after reset = %+v, want Collapsed unpinned", st)
	}
}

func TestSnapshotRestore(t *testing.T) {
	m := New(Options{})
	_, _ = m.Apply("a", 2, Expand)
	m.Resolve("b", 1, false)

	snap := m.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"a":{"mode":"expanded","pinned":true},"b":{"mode":"collapsed","pinned":false}}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	var decoded Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	other := New(Options{})
	other.Restore(decoded)
	if !reflect.DeepEqual(other.Snapshot(), snap) {
		t.Errorf("restored = %v, want %v", other.Snapshot(), snap)
	}

	// Snapshots are copies.
	snap["a"] = State{}
	if st, _ := m.State("a"); st.Mode != Expanded {
		t.Error("mutating a snapshot changed the machine")
	}
}

func TestParse(t *testing.T) {
	for _, mo := range []Mode{Collapsed, Expanded, SampleSpread} {
		got, err := ParseMode(mo.String())
		if err != nil || got != mo {
			t.Errorf("ParseMode(%q) = %v, %v", mo.String(), got, err)
		}
	}
	for _, ev := range []Event{Expand, Spread, Collapse, Cycle} {
		got, err := ParseEvent(ev.String())
		if err != nil || got != ev {
			t.Errorf("ParseEvent(%q) = %v, %v", ev.String(), got, err)
		}
	}
	if _, err := ParseEvent("explode"); err == nil {
		t.Error("ParseEvent(explode) = nil error")
	}
	if _, err := ParseMode("SPREAD"); err != nil {
		t.Errorf("ParseMode is case sensitive: %v", err)
	}
}

func TestConcurrentUse(t *testing.T) {
	m := New(Options{})
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := string(rune('a' + i))
			for range 100 {
				_, _ = m.Apply(id, 3, Cycle)
				m.Resolve(id, 3, true)
				_ = m.Snapshot()
			}
		}()
	}
	wg.Wait()
	if m.Len() != 8 {
		t.Errorf("Len = %d, want 8", m.Len())
	}
}
