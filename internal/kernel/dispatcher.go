package kernel

import (
	"fmt"

	"github.com/crewos/crewos/internal/tool"
	"github.com/crewos/crewos/pkg/models"
)

// ToolDispatcher is the authorization, accounting, and execution boundary
// for tool capabilities. Failures are converted to descriptive result
// strings handed back into the oracle's next turn; nothing raised by a tool
// propagates past this boundary.
type ToolDispatcher struct {
	crew     *models.Crew
	registry *tool.Registry
	monitor  *ResourceMonitor
}

// NewToolDispatcher creates a dispatcher over the crew, registry, and
// monitor.
func NewToolDispatcher(crew *models.Crew, registry *tool.Registry, monitor *ResourceMonitor) *ToolDispatcher {
	return &ToolDispatcher{crew: crew, registry: registry, monitor: monitor}
}

// Registry returns the tool registry this dispatcher resolves from.
func (d *ToolDispatcher) Registry() *tool.Registry {
	return d.registry
}

// Execute runs a tool on behalf of an agent. The result string is either
// the tool's output or a descriptive error the oracle can react to:
// unauthorized tools name the agent's allowed set, unknown tools are
// reported as such, and tool faults (errors or panics) are captured. Cost
// is charged once per dispatch attempt, before invocation, whether or not
// the tool subsequently succeeds.
func (d *ToolDispatcher) Execute(agent *models.Agent, taskID, toolName string, args map[string]any) string {
	debugLog("[dispatcher] agent %s requests tool %q for task %s with args %v", agent.ID, toolName, taskID, args)

	known := d.crew.GetAgent(agent.ID)
	if known == nil {
		return fmt.Sprintf("Error: Agent %s not found.", agent.ID)
	}

	if !known.CanUse(toolName) {
		debugLog("[dispatcher] agent %s not authorized for tool %q", agent.ID, toolName)
		return fmt.Sprintf("Error: You are not authorized to use the tool %q. Available tools: %v", toolName, known.Tools)
	}

	t := d.registry.Get(toolName)
	if t == nil {
		debugLog("[dispatcher] tool %q not found in registry", toolName)
		return fmt.Sprintf("Error: Tool %q not found in the system.", toolName)
	}

	// Charge before invocation so failed executions still cost.
	d.monitor.Record(UsageToolCalls, agent.ID, taskID, 1)
	d.monitor.Record(UsageTokens, agent.ID, taskID, t.Cost())
	known.RecordUsage(t.Cost(), 1)

	return d.invoke(t, toolName, args)
}

// invoke calls the tool, converting errors and recovered panics into result
// strings.
func (d *ToolDispatcher) invoke(t tool.Tool, toolName string, args map[string]any) (result string) {
	defer func() {
		if r := recover(); r != nil {
			debugLog("[dispatcher] tool %q panicked: %v", toolName, r)
			result = fmt.Sprintf("Error executing tool %q: internal fault: %v", toolName, r)
		}
	}()

	out, err := t.Execute(args)
	if err != nil {
		debugLog("[dispatcher] tool %q failed: %v", toolName, err)
		return fmt.Sprintf("Error executing tool %q: %v", toolName, err)
	}
	return out
}
