// Package shell provides the interactive crew shell: a command prompt for
// loading crew declarations and stepping or running the kernel.
package shell

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/crewos/crewos/internal/config"
	"github.com/crewos/crewos/internal/kernel"
)

// scrollback bounds how many output lines the shell keeps.
const scrollback = 500

// tickedMsg reports one completed kernel tick during a timed run.
type tickedMsg struct {
	more bool
}

// Model is the bubbletea model for the crew shell. Commands execute against
// a single kernel; timed runs tick via the bubbletea command loop so the
// prompt stays responsive.
type Model struct {
	kernel *kernel.Kernel
	cfg    *config.Config

	input    textinput.Model
	lines    []string
	width    int
	quitting bool

	// running tracks an in-flight `start`; remaining is its tick budget.
	running   bool
	remaining int
}

// New creates a shell around the kernel.
func New(k *kernel.Kernel, cfg *config.Config) *Model {
	ti := textinput.New()
	ti.Placeholder = "Type a command, 'help' to list them..."
	ti.Prompt = "crewos> "
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60

	m := &Model{
		kernel: k,
		cfg:    cfg,
		input:  ti,
		width:  80,
	}
	m.say(titleStyle.Render("CrewOS interactive shell"))
	m.say("Type 'help' for commands, 'sample' to load the built-in crew.")
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if line == "" {
				return m, nil
			}
			m.say(promptStyle.Render("crewos> ") + line)
			return m, m.execute(line)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 10

	case tickedMsg:
		m.sayStatusLine()
		m.remaining--
		if !msg.more || m.remaining <= 0 {
			m.running = false
			if m.kernel.AllTasksDone() {
				m.say(okStyle.Render("All tasks finished."))
			} else {
				m.say(warnStyle.Render("Run stopped before all tasks finished."))
			}
			m.sayReport()
			return m, nil
		}
		return m, m.tickCmd()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	start := 0
	if len(m.lines) > scrollback {
		start = len(m.lines) - scrollback
	}
	for _, line := range m.lines[start:] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}

// tickCmd runs one kernel tick off the update loop, pacing by the
// configured delay.
func (m *Model) tickCmd() tea.Cmd {
	delay := m.cfg.Kernel.TickDelay
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return tickedMsg{more: m.kernel.Tick(context.Background())}
	})
}

// say appends one output line.
func (m *Model) say(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > scrollback*2 {
		m.lines = m.lines[len(m.lines)-scrollback:]
	}
}

func (m *Model) sayf(format string, args ...interface{}) {
	m.say(fmt.Sprintf(format, args...))
}
