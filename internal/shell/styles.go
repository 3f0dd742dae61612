package shell

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cmdStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	taskStateColors = map[string]string{
		"pending":   "8",
		"ready":     "11",
		"assigned":  "14",
		"running":   "12",
		"completed": "10",
		"failed":    "9",
	}

	agentStateColors = map[string]string{
		"idle":         "8",
		"running_task": "12",
		"using_tool":   "13",
	}
)

// stateStyle colors a task or agent state name.
func stateStyle(state string) string {
	c, ok := taskStateColors[state]
	if !ok {
		c, ok = agentStateColors[state]
	}
	if !ok {
		c = "7"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(state)
}
