package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/viz"
)

type state int

const (
	stateMenu state = iota
	stateForm
	stateRunning
	stateResult
)

type action int

const (
	actionList action = iota
	actionAdd
	actionRun
	actionSave
	actionLoad
	actionExit
)

var menuItems = []struct {
	name string
	desc string
}{
	{"list", "list bodies"},
	{"add", "add a body"},
	{"run", "run the simulation"},
	{"save", "save bodies to .json or .csv"},
	{"load", "load bodies from .json or .csv"},
	{"exit", "quit"},
}

// maxResultLines bounds the per-step lines kept for the result view.
const maxResultLines = 10

// maxRunSamples bounds the samples a menu run keeps for its summary.
const maxRunSamples = 2000

type runDoneMsg struct {
	result *sim.Result
	err    error
}

// Model is the interactive menu over one system.
type Model struct {
	sys *dynamo.System
	sim *sim.Simulator

	state   state
	cursor  int
	pending action
	form    *form
	cancel  context.CancelFunc

	message string
	failed  bool
	output  string
}

func New(sys *dynamo.System, s *sim.Simulator) Model {
	if s == nil {
		s = sim.New(nil)
	}
	return Model{sys: sys, sim: s}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case runDoneMsg:
		return m.finishRun(msg), nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		if m.state == stateRunning && m.cancel != nil {
			m.cancel()
			return m, nil
		}
		return m, tea.Quit
	}

	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateForm:
		return m.formKey(msg)
	case stateResult:
		m.state = stateMenu
		m.output = ""
	}
	return m, nil
}

func (m Model) menuKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m.choose(action(m.cursor))
	case "1", "2", "3", "4", "5", "6":
		m.cursor = int(key[0] - '1')
		return m.choose(action(m.cursor))
	}
	return m, nil
}

func (m Model) choose(a action) (Model, tea.Cmd) {
	m.message, m.failed = "", false

	switch a {
	case actionList:
		m.output = m.listing()
		m.state = stateResult
	case actionAdd:
		m.startForm(a, newForm("add body",
			field{label: "id"},
			field{label: "mass (kg)", numeric: true},
			field{label: "position x (m)", numeric: true},
			field{label: "position y (m)", numeric: true},
			field{label: "position z (m)", numeric: true},
			field{label: "velocity x (m/s)", numeric: true},
			field{label: "velocity y (m/s)", numeric: true},
			field{label: "velocity z (m/s)", numeric: true},
		))
	case actionRun:
		if m.sys.Len() == 0 {
			m.setError(errors.New("no bodies to simulate, add some first"))
			return m, nil
		}
		m.startForm(a, newForm("run",
			field{label: "time step dt (s)", numeric: true, positive: true},
			field{label: "total time (s)", numeric: true, positive: true},
		))
	case actionSave:
		m.startForm(a, newForm("save", field{label: "file name"}))
	case actionLoad:
		m.startForm(a, newForm("load", field{label: "file name"}))
	case actionExit:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) startForm(a action, f *form) {
	m.pending = a
	m.form = f
	m.state = stateForm
}

func (m Model) formKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.form = nil
		m.state = stateMenu
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.form.input); len(r) > 0 {
			m.form.input = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeyEnter:
		if !m.form.submit() {
			return m, nil
		}
		return m.complete()
	case tea.KeySpace:
		m.form.input += " "
	case tea.KeyRunes:
		m.form.input += string(msg.Runes)
	}
	return m, nil
}

// complete performs the pending action with the filled form. Failures are
// reported on the menu.
func (m Model) complete() (Model, tea.Cmd) {
	f := m.form
	m.form = nil
	m.state = stateMenu

	switch m.pending {
	case actionAdd:
		id := f.text(0)
		pos := dynamo.Vec(f.number(2), f.number(3), f.number(4))
		vel := dynamo.Vec(f.number(5), f.number(6), f.number(7))
		if err := m.sys.AddBody(id, f.number(1), pos, vel); err != nil {
			m.setError(err)
			break
		}
		m.setInfo(fmt.Sprintf("body %q added", id))

	case actionRun:
		cfg := sim.Config{Dt: f.number(0), Duration: f.number(1)}
		return m.startRun(cfg.LimitSamples(maxRunSamples))

	case actionSave:
		path := f.text(0)
		if err := storage.Save(m.sys, path); err != nil {
			m.setError(err)
			break
		}
		m.setInfo(fmt.Sprintf("saved %d bodies to %s", m.sys.Len(), path))

	case actionLoad:
		path := f.text(0)
		if err := storage.Load(m.sys, path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				err = fmt.Errorf("file %q not found", path)
			}
			m.setError(err)
			break
		}
		m.setInfo(fmt.Sprintf("loaded %d bodies from %s", m.sys.Len(), path))
	}
	return m, nil
}

func (m Model) startRun(cfg sim.Config) (Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.state = stateRunning

	sys, s := m.sys, m.sim
	return m, func() tea.Msg {
		res, err := s.Run(ctx, sys, cfg)
		return runDoneMsg{result: res, err: err}
	}
}

func (m Model) finishRun(msg runDoneMsg) Model {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	if msg.result == nil {
		m.state = stateMenu
		m.setError(msg.err)
		return m
	}

	m.output = summarize(msg.result)
	m.state = stateResult
	if msg.err != nil {
		m.setError(msg.err)
	} else {
		m.setInfo(fmt.Sprintf("run finished after %d steps", msg.result.StepsTaken))
	}
	return m
}

func (m *Model) setError(err error) {
	m.message, m.failed = err.Error(), true
}

func (m *Model) setInfo(s string) {
	m.message, m.failed = s, false
}

func (m Model) listing() string {
	if m.sys.Len() == 0 {
		return "no bodies in the system"
	}
	var b strings.Builder
	_ = viz.WriteBodyTable(&b, m.sys.Bodies())
	return b.String()
}

func summarize(r *sim.Result) string {
	var b strings.Builder

	samples := r.Samples
	if len(samples) > maxResultLines {
		fmt.Fprintf(&b, "... %d earlier samples\n", len(samples)-maxResultLines)
		samples = samples[len(samples)-maxResultLines:]
	}
	for _, s := range samples {
		b.WriteString(viz.FormatSample(s))
		b.WriteByte('\n')
	}

	totals := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		totals[i] = s.Total
	}
	b.WriteString("\n")
	b.WriteString(viz.MetricLabel.Render("energy  ") + viz.Sparkline(totals, 40) + "\n")
	b.WriteString(viz.MetricLabel.Render("drift   ") + viz.MetricValue.Render(fmt.Sprintf("%.3e", r.EnergyDrift)) + "\n")
	b.WriteString(viz.MetricLabel.Render("steps   ") + viz.MetricValue.Render(fmt.Sprintf("%d", r.StepsTaken)) + "\n")

	names := make([]string, 0, len(r.Metrics))
	for name := range r.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(viz.MetricLabel.Render(name+"  ") + viz.MetricValue.Render(fmt.Sprintf("%.3e", r.Metrics[name])) + "\n")
	}
	return b.String()
}

func (m Model) View() string {
	switch m.state {
	case stateForm:
		return m.viewForm()
	case stateRunning:
		return "\n  " + viz.Subtle.Render("running... ctrl+c to stop") + "\n"
	case stateResult:
		return "\n" + m.output + "\n" + m.viewMessage() + viz.KeyHint.Render("  any key to return") + "\n"
	}
	return m.viewMenu()
}

func (m Model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n  " + viz.Title.Render("o r b i t s i m") + "  " +
		viz.Subtle.Render(fmt.Sprintf("%d bodies", m.sys.Len())) + "\n\n")

	for i, item := range menuItems {
		if i == m.cursor {
			b.WriteString("  " + viz.Selected.Render(fmt.Sprintf("▸ %d. %-6s", i+1, item.name)) + " " + item.desc + "\n")
		} else {
			b.WriteString("    " + viz.Subtle.Render(fmt.Sprintf("%d. %-6s %s", i+1, item.name, item.desc)) + "\n")
		}
	}

	b.WriteString("\n" + m.viewMessage())
	b.WriteString(viz.KeyHint.Render("  ↑↓ select  enter choose  q quit") + "\n")
	return b.String()
}

func (m Model) viewForm() string {
	var b strings.Builder
	f := m.form

	b.WriteString("\n  " + viz.Title.Render(f.title) + "\n\n")
	for i := 0; i < f.cursor; i++ {
		b.WriteString("    " + viz.MetricLabel.Render(fmt.Sprintf("%-18s", f.fields[i].label)) + f.values[i] + "\n")
	}
	b.WriteString("  " + viz.Selected.Render("▸ "+fmt.Sprintf("%-18s", f.current().label)) + f.input + "▋\n")

	if f.err != "" {
		b.WriteString("\n  " + viz.Error.Render(f.err) + "\n")
	}
	b.WriteString("\n" + viz.KeyHint.Render("  enter confirm  esc cancel") + "\n")
	return b.String()
}

func (m Model) viewMessage() string {
	if m.message == "" {
		return ""
	}
	if m.failed {
		return "  " + viz.Error.Render(m.message) + "\n\n"
	}
	return "  " + viz.Success.Render(m.message) + "\n\n"
}

// Run starts the menu on the terminal and blocks until the user exits.
func Run(sys *dynamo.System, s *sim.Simulator) error {
	p := tea.NewProgram(New(sys, s))
	_, err := p.Run()
	return err
}
