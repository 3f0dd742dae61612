// Package oracle defines the decision oracle consulted for each agent work
// step, plus the Anthropic-backed and scripted implementations.
package oracle

import (
	"context"
	"errors"
)

// ErrInvalidDecision indicates the oracle response was malformed or missing
// required fields. The kernel treats this as "no decision this cycle" and
// retries on a later tick.
var ErrInvalidDecision = errors.New("invalid oracle decision")

// Action is the kind of next step an oracle can select.
type Action string

const (
	// ActionUseTool asks the kernel to dispatch a tool on the agent's behalf.
	ActionUseTool Action = "use_tool"
	// ActionFinalAnswer completes the current task with the given content.
	ActionFinalAnswer Action = "final_answer"
)

// Decision is the oracle's selected next step for an agent.
type Decision struct {
	// Action is use_tool or final_answer.
	Action Action
	// ToolName names the requested tool when Action is use_tool.
	ToolName string
	// Arguments are the named arguments for the requested tool.
	Arguments map[string]any
	// Content is the final answer text when Action is final_answer.
	Content string
}

// Persona describes the agent the oracle is deciding for.
type Persona struct {
	Role      string
	Goal      string
	Backstory string
}

// TaskBrief describes the task the agent is working on.
type TaskBrief struct {
	ID             string
	Description    string
	ExpectedOutput string
	// Context is the aggregated dependency output, empty for root tasks.
	Context string
}

// Request carries everything the oracle needs for one consultation.
type Request struct {
	// Persona is the acting agent's persona.
	Persona Persona
	// Task is the task under work.
	Task TaskBrief
	// ToolDescriptions is the human-readable listing of tools the agent may
	// use, empty when the agent has none.
	ToolDescriptions string
	// ToolResults holds results of tools already run earlier in this work
	// step, keyed by tool name. Empty on the first consultation.
	ToolResults map[string]string
}

// Consultation is the outcome of one oracle call.
type Consultation struct {
	// Decision is the parsed decision.
	Decision *Decision
	// Tokens is the token usage reported by the backing model, 0 if the
	// implementation does not track usage.
	Tokens int64
}

// Oracle selects an agent's next action from task, context, and tool
// information. Implementations may be non-deterministic.
type Oracle interface {
	Decide(ctx context.Context, req Request) (Consultation, error)
}
