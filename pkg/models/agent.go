package models

// AgentState represents the current state of an agent.
type AgentState string

const (
	// AgentIdle indicates the agent has no task.
	AgentIdle AgentState = "idle"
	// AgentAssigned indicates a task is bound but work has not started.
	AgentAssigned AgentState = "assigned"
	// AgentRunningTask indicates the agent is working on its task.
	AgentRunningTask AgentState = "running_task"
	// AgentUsingTool indicates the agent is inside a synchronous tool call.
	AgentUsingTool AgentState = "using_tool"
	// AgentWaitingDelegation is reserved for the hierarchical process.
	AgentWaitingDelegation AgentState = "waiting_delegation"
	// AgentTerminated is reserved; no current transition enters it.
	AgentTerminated AgentState = "terminated"
)

// Valid returns true if the state is a known value.
func (s AgentState) Valid() bool {
	switch s {
	case AgentIdle, AgentAssigned, AgentRunningTask, AgentUsingTool,
		AgentWaitingDelegation, AgentTerminated:
		return true
	default:
		return false
	}
}

// Usage is the fixed-shape resource record tracked per agent.
type Usage struct {
	// Tokens is the estimated token count consumed.
	Tokens int64 `json:"tokens"`
	// ToolCalls is the number of tool dispatches attempted.
	ToolCalls int64 `json:"tool_calls"`
}

// Agent represents a worker in the crew.
type Agent struct {
	// ID is the workspace-scoped identifier for this agent.
	ID string `json:"id"`
	// Role is the persona the agent plays.
	Role string `json:"role"`
	// Goal is what the agent is trying to achieve overall.
	Goal string `json:"goal"`
	// Backstory gives the oracle extra persona grounding.
	Backstory string `json:"backstory,omitempty"`
	// Tools lists the tool names this agent is authorized to use.
	Tools []string `json:"tools,omitempty"`
	// State is the current state of the agent.
	State AgentState `json:"state"`
	// CurrentTaskID is the task the agent holds. It is set iff the agent
	// state is assigned, running_task, or using_tool.
	CurrentTaskID string `json:"current_task_id,omitempty"`
	// Usage tracks resources consumed by this agent.
	Usage Usage `json:"usage"`
}

// AssignTask binds a task to the agent and moves it to the assigned state.
func (a *Agent) AssignTask(taskID string) {
	a.CurrentTaskID = taskID
	a.State = AgentAssigned
}

// Release returns the agent to idle and clears its task reference.
// It is idempotent: releasing an idle agent is a no-op.
func (a *Agent) Release() {
	if a.State == AgentIdle {
		return
	}
	a.State = AgentIdle
	a.CurrentTaskID = ""
}

// CanUse returns true if the named tool is in the agent's allowlist.
func (a *Agent) CanUse(tool string) bool {
	for _, t := range a.Tools {
		if t == tool {
			return true
		}
	}
	return false
}

// RecordUsage adds to the agent's usage counters. Non-positive token or
// tool-call amounts are ignored.
func (a *Agent) RecordUsage(tokens, toolCalls int64) {
	if tokens > 0 {
		a.Usage.Tokens += tokens
	}
	if toolCalls > 0 {
		a.Usage.ToolCalls += toolCalls
	}
}

// ResetState returns the agent to idle with cleared usage counters.
func (a *Agent) ResetState() {
	a.State = AgentIdle
	a.CurrentTaskID = ""
	a.Usage = Usage{}
}
