package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/matzehuels/tracklayout/pkg/core/layout"
	"github.com/matzehuels/tracklayout/pkg/core/mode"
	errs "github.com/matzehuels/tracklayout/pkg/errors"
	"github.com/matzehuels/tracklayout/pkg/pipeline"
)

// newTestViewModel lays out the scenario track with a fresh machine.
func newTestViewModel(t *testing.T) (viewModel, *mode.Machine) {
	t.Helper()
	machine := mode.New(mode.Options{})
	track := scenarioTrack()
	opts := pipeline.Options{Machine: machine}
	relayout := func() (*layout.Result, error) {
		return pipeline.GenerateLayout(track, opts)
	}
	res, err := relayout()
	if err != nil {
		t.Fatalf("GenerateLayout() error: %v", err)
	}
	return newViewModel(context.Background(), "track.toml", machine, res, relayout), machine
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends msg and runs the command it returns, feeding the result back.
func press(m viewModel, msg tea.Msg) viewModel {
	next, cmd := m.Update(msg)
	m = next.(viewModel)
	if cmd != nil {
		if out := cmd(); out != nil {
			next, _ = m.Update(out)
			m = next.(viewModel)
		}
	}
	return m
}

func TestViewModelPointsSortedByX(t *testing.T) {
	m, _ := newTestViewModel(t)
	if len(m.points) != 2 {
		t.Fatalf("points = %d, want 2", len(m.points))
	}
	if m.points[0].ID != "bnd1" || m.points[1].ID != "bnd2" {
		t.Errorf("order = %s, %s; want bnd1, bnd2", m.points[0].ID, m.points[1].ID)
	}
}

func TestViewModelApply(t *testing.T) {
	m, machine := newTestViewModel(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(m, key("e"))
	m = press(m, key("s"))

	st, ok := machine.State("bnd2")
	if !ok || st.Mode != mode.SampleSpread || !st.Pinned {
		t.Fatalf("bnd2 state = %+v, want pinned spread", st)
	}
	if m.points[m.cursor].ID != "bnd2" {
		t.Errorf("cursor moved to %s after relayout", m.points[m.cursor].ID)
	}
	if got := len(m.points[m.cursor].Swarm); got != 3 {
		t.Errorf("swarm dots = %d, want 3", got)
	}
	if !strings.Contains(m.View(), "3 dots") {
		t.Errorf("view does not show the swarm:\n%s", m.View())
	}
}

func TestViewModelRejectsTransition(t *testing.T) {
	m, machine := newTestViewModel(t)

	// bnd1 has a single sample.
	m = press(m, key("e"))
	m = press(m, key("s"))

	if !errs.Is(m.err, errs.ErrCodeInvalidTransition) {
		t.Fatalf("err = %v, want INVALID_TRANSITION", m.err)
	}
	if st, _ := machine.State("bnd1"); st.Mode != mode.Expanded {
		t.Errorf("bnd1 mode = %v, want expanded", st.Mode)
	}
	if !strings.Contains(m.View(), "single sample") {
		t.Errorf("view does not show the error:\n%s", m.View())
	}
}

func TestViewModelCycleAndReset(t *testing.T) {
	m, machine := newTestViewModel(t)

	m = press(m, key(" "))
	if st, _ := machine.State("bnd1"); st.Mode != mode.Expanded || !st.Pinned {
		t.Fatalf("after cycle bnd1 = %+v, want pinned expanded", st)
	}

	m = press(m, key("r"))
	if st, _ := machine.State("bnd1"); st.Pinned {
		t.Errorf("after reset bnd1 = %+v, want unpinned", st)
	}
	if m.points[0].Mode != mode.Collapsed {
		t.Errorf("after reset bnd1 placement mode = %v, want collapsed", m.points[0].Mode)
	}
}

func TestViewModelEmpty(t *testing.T) {
	res := &layout.Result{Width: 100}
	m := newViewModel(context.Background(), "empty", mode.New(mode.Options{}), res, func() (*layout.Result, error) {
		return res, nil
	})
	m = press(m, key("e"))
	if m.err != nil {
		t.Errorf("err = %v, want nil", m.err)
	}
	if !strings.Contains(m.View(), "no points") {
		t.Errorf("view:\n%s", m.View())
	}
}

// TestViewProgram drives the full bubbletea program headlessly.
func TestViewProgram(t *testing.T) {
	m, machine := newTestViewModel(t)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Type("e")
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("expand bnd2"))
	}, teatest.WithDuration(3*time.Second))

	tm.Type("s")
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("3 dots"))
	}, teatest.WithDuration(3*time.Second))

	tm.Type("q")
	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	if _, ok := fm.(viewModel); !ok {
		t.Fatalf("final model is %T", fm)
	}

	if st, _ := machine.State("bnd2"); st.Mode != mode.SampleSpread {
		t.Errorf("bnd2 mode = %v, want spread", st.Mode)
	}
}
