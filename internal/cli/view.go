package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tracklayout/pkg/core/layout"
	"github.com/matzehuels/tracklayout/pkg/core/mode"
	"github.com/matzehuels/tracklayout/pkg/observability"
)

// viewCommand creates the view command, an interactive mode editor.
func (c *CLI) viewCommand() *cobra.Command {
	var flags passFlags

	cmd := &cobra.Command{
		Use:   "view [track.toml|track.json]",
		Short: "Browse points and toggle their modes",
		Long: `Browse the points of a track and toggle their display modes.

Each key applies an event to the selected point and reruns the layout:

  e  expand     s  spread     c  collapse
  space/enter   cycle         r  reset every pin

Modes are saved when you quit and apply to later layout and render runs.
While the view is open, logs go to log.file only.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], flags)
		},
	}

	flags.register(cmd)
	addLayoutFlags(cmd)

	return cmd
}

// runView runs the terminal UI on input and saves the modes on exit.
func (c *CLI) runView(ctx context.Context, input string, flags passFlags) error {
	c.Logger.SetOutput(teeWriter(c.logFile))
	defer c.Logger.SetOutput(teeWriter(c.out, c.logFile))

	backend, err := c.openCache(ctx)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer backend.Close()

	store := c.modeStore(backend)
	sess, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load modes: %w", err)
	}
	machine := sess.Machine(c.machineOptions())

	opts := c.pipelineOptions(input)
	opts.Machine = machine
	opts.Refresh = flags.refresh

	runner := c.newRunner(backend, flags.noCache)
	track, err := runner.Read(ctx, opts)
	if err != nil {
		return err
	}
	relayout := func() (*layout.Result, error) {
		return runner.Layout(ctx, track, opts)
	}
	res, err := relayout()
	if err != nil {
		return err
	}

	m := newViewModel(ctx, input, machine, res, relayout)
	if _, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("view: %w", err)
	}

	sess.Modes = machine.Snapshot()
	if err := store.Save(ctx, sess); err != nil {
		return fmt.Errorf("save modes: %w", err)
	}
	printSuccess("Saved %d modes", len(sess.Modes))
	return nil
}

// =============================================================================
// viewModel - Interactive mode editor
// =============================================================================

var (
	viewSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	viewErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// layoutMsg carries the result of a relayout.
type layoutMsg struct {
	res *layout.Result
	err error
}

// viewModel is the bubbletea model for toggling point modes.
type viewModel struct {
	ctx      context.Context
	title    string
	machine  *mode.Machine
	relayout func() (*layout.Result, error)

	res    *layout.Result
	points []layout.Placement
	cursor int
	offset int
	height int
	status string
	err    error
}

func newViewModel(ctx context.Context, title string, machine *mode.Machine, res *layout.Result, relayout func() (*layout.Result, error)) viewModel {
	m := viewModel{
		ctx:      ctx,
		title:    title,
		machine:  machine,
		relayout: relayout,
		height:   15,
	}
	m.setResult(res)
	return m
}

// setResult swaps in a new pass and keeps the cursor on the same item.
func (m *viewModel) setResult(res *layout.Result) {
	var selected string
	if m.cursor < len(m.points) {
		selected = m.points[m.cursor].ID
	}

	m.res = res
	m.points = res.Points()
	slices.SortStableFunc(m.points, func(a, b layout.Placement) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})

	m.cursor = 0
	for i, p := range m.points {
		if p.ID == selected {
			m.cursor = i
			break
		}
	}
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.points)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "e":
			return m.apply(mode.Expand)
		case "s":
			return m.apply(mode.Spread)
		case "c":
			return m.apply(mode.Collapse)
		case " ", "enter":
			return m.apply(mode.Cycle)
		case "r":
			m.machine.ResetAll()
			observability.Mode().OnReset(m.ctx, "cli")
			m.status = "reset every pin"
			m.err = nil
			return m, m.relayoutCmd()
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	case layoutMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.setResult(msg.res)
	}
	return m, nil
}

// apply runs ev on the selected point and schedules a relayout.
func (m viewModel) apply(ev mode.Event) (tea.Model, tea.Cmd) {
	if len(m.points) == 0 {
		return m, nil
	}
	p := m.points[m.cursor]
	from, _ := m.machine.State(p.ID)
	st, err := m.machine.Apply(p.ID, p.Weight, ev)
	observability.Mode().OnTransition(m.ctx, p.ID, ev.String(), from.Mode.String(), st.Mode.String(), err)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.status = fmt.Sprintf("%s %s: %s", ev, p.ID, st.Mode)
	return m, m.relayoutCmd()
}

func (m viewModel) relayoutCmd() tea.Cmd {
	relayout := m.relayout
	return func() tea.Msg {
		res, err := relayout()
		return layoutMsg{res: res, err: err}
	}
}

func (m viewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(joinDim(
		fmt.Sprintf("%d points", len(m.points)),
		fmt.Sprintf("%d rows", m.res.Rows),
		fmt.Sprintf("%.0f×%.0f", m.res.Width, m.res.Height),
	)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ move  e expand  s spread  c collapse  ␣ cycle  r reset  q quit"))
	b.WriteString("\n\n")

	if len(m.points) == 0 {
		b.WriteString(StyleDim.Render("  no points in this track"))
		b.WriteString("\n")
	}

	end := min(m.offset+m.height, len(m.points))
	for i := m.offset; i < end; i++ {
		p := m.points[i]
		cursor := "  "
		style := viewNormalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = viewSelectedStyle
		}
		line := fmt.Sprintf("%s%-24s x=%-8.1f n=%-5d", cursor, p.ID, p.X, p.Weight)
		b.WriteString(style.Render(line))
		b.WriteString(" ")
		b.WriteString(modeBadge(mode.State{Mode: p.Mode, Pinned: p.Pinned}))
		if len(p.Swarm) > 0 {
			b.WriteString(StyleDim.Render(fmt.Sprintf("  %d dots", len(p.Swarm))))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(viewErrorStyle.Render(m.err.Error()))
	case m.status != "":
		b.WriteString(StyleDim.Render(m.status))
	}
	if n := len(m.res.Issues); n > 0 {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(fmt.Sprintf("%d issues", n)))
	}
	b.WriteString("\n")

	return b.String()
}
