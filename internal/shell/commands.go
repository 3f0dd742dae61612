package shell

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crewos/crewos/internal/crewfile"
	"github.com/crewos/crewos/pkg/models"
)

// execute runs one shell command line. Most commands finish synchronously
// and return nil; `start` kicks off the tick loop and `quit` exits.
func (m *Model) execute(line string) tea.Cmd {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	if m.running && cmd != "quit" && cmd != "exit" {
		m.say(warnStyle.Render("A run is in progress, wait for it to finish."))
		return nil
	}

	switch cmd {
	case "help":
		m.sayHelp()
	case "load":
		if len(args) != 1 {
			m.say(errStyle.Render("Usage: load <crew.yaml>"))
			return nil
		}
		m.loadCrew(args[0])
	case "sample":
		m.loadSample()
	case "start", "run":
		return m.startRun(args)
	case "tick":
		m.singleTick()
	case "status":
		m.sayStatus()
	case "report":
		m.sayReport()
	case "reset":
		if err := m.kernel.Reset(); err != nil {
			m.say(errStyle.Render("Nothing to reset: no crew loaded."))
			return nil
		}
		m.say(okStyle.Render("Crew reset to its freshly-loaded state."))
	case "quit", "exit":
		m.quitting = true
		return tea.Quit
	default:
		m.sayf("Unknown command %q, type 'help' for the list.", cmd)
	}
	return nil
}

func (m *Model) sayHelp() {
	m.say(titleStyle.Render("Commands"))
	for _, row := range [][2]string{
		{"load <file>", "load a crew declaration from YAML"},
		{"sample", "load the built-in demonstration crew"},
		{"start [ticks]", "run the kernel until done or the tick budget is spent"},
		{"tick", "advance the kernel by a single tick"},
		{"status", "show every agent and task with its state"},
		{"report", "show resource usage totals for this run"},
		{"reset", "return the loaded crew to its initial state"},
		{"quit", "leave the shell"},
	} {
		m.say("  " + cmdStyle.Render(padRight(row[0], 14)) + row[1])
	}
}

func (m *Model) loadCrew(path string) {
	crew, err := crewfile.Load(path)
	if err != nil {
		m.sayf("%s %v", errStyle.Render("Load failed:"), err)
		return
	}
	if err := m.kernel.LoadCrew(crew); err != nil {
		m.sayf("%s %v", errStyle.Render("Crew rejected:"), err)
		return
	}
	m.sayf("%s %d agents, %d tasks.", okStyle.Render("Crew loaded:"), len(crew.Agents), len(crew.Tasks))
}

func (m *Model) loadSample() {
	crew, err := crewfile.Sample()
	if err != nil {
		m.sayf("%s %v", errStyle.Render("Sample failed:"), err)
		return
	}
	if err := m.kernel.LoadCrew(crew); err != nil {
		m.sayf("%s %v", errStyle.Render("Crew rejected:"), err)
		return
	}
	m.sayf("%s %d agents, %d tasks.", okStyle.Render("Sample crew loaded:"), len(crew.Agents), len(crew.Tasks))
}

func (m *Model) startRun(args []string) tea.Cmd {
	if m.kernel.Crew() == nil {
		m.say(errStyle.Render("No crew loaded. Use 'load <file>' or 'sample' first."))
		return nil
	}

	budget := m.cfg.Kernel.MaxTicks
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			m.say(errStyle.Render("Usage: start [ticks], with a positive tick count."))
			return nil
		}
		budget = n
	}

	m.running = true
	m.remaining = budget
	m.sayf("Running for up to %d ticks...", budget)
	return func() tea.Msg {
		return tickedMsg{more: m.kernel.Tick(context.Background())}
	}
}

func (m *Model) singleTick() {
	if m.kernel.Crew() == nil {
		m.say(errStyle.Render("No crew loaded. Use 'load <file>' or 'sample' first."))
		return
	}
	more := m.kernel.Tick(context.Background())
	m.sayStatusLine()
	if !more && m.kernel.AllTasksDone() {
		m.say(okStyle.Render("All tasks finished."))
	}
}

// sayStatusLine prints the one-line per-tick progress summary.
func (m *Model) sayStatusLine() {
	counts := make([]string, 0, 4)
	for _, st := range []models.TaskState{
		models.TaskPending, models.TaskReady, models.TaskRunning, models.TaskCompleted,
	} {
		if n := len(m.kernel.TasksByState(st)); n > 0 {
			counts = append(counts, strconv.Itoa(n)+" "+string(st))
		}
	}
	if n := len(m.kernel.TasksByState(models.TaskFailed)); n > 0 {
		counts = append(counts, errStyle.Render(strconv.Itoa(n)+" failed"))
	}
	m.sayf("tick %d: %s", m.kernel.TickCount(), strings.Join(counts, ", "))
}

func (m *Model) sayStatus() {
	crew := m.kernel.Crew()
	if crew == nil {
		m.say(errStyle.Render("No crew loaded."))
		return
	}

	m.say(titleStyle.Render("Agents"))
	for _, id := range crew.AgentOrder {
		agent := crew.GetAgent(id)
		line := "  " + padRight(id, 5) + padRight(agent.Role, 24) + stateStyle(string(agent.State))
		if agent.CurrentTaskID != "" {
			line += "  on " + agent.CurrentTaskID
		}
		m.say(line)
	}

	m.say(titleStyle.Render("Tasks"))
	for _, id := range crew.TaskOrder {
		task := crew.GetTask(id)
		line := "  " + padRight(id, 5) + padRight(truncateStatus(task.Description, 36), 38) + stateStyle(string(task.State))
		if task.State == models.TaskPending && len(task.DependsOn) > 0 {
			line += "  waiting on " + strings.Join(task.DependsOn, ", ")
		}
		m.say(line)
	}
}

func (m *Model) sayReport() {
	report := m.kernel.Report()
	m.say(titleStyle.Render("Resource report"))
	m.sayf("  tokens:     %d", report.TotalTokens)
	m.sayf("  tool calls: %d", report.TotalToolCalls)
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s + " "
	}
	return s + strings.Repeat(" ", n-len(s))
}

func truncateStatus(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
