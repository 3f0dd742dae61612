package models

// TaskState represents the current state of a task.
type TaskState string

const (
	// TaskPending indicates the task is waiting for dependencies or scheduling.
	TaskPending TaskState = "pending"
	// TaskReady indicates all dependencies are met and the task can be scheduled.
	TaskReady TaskState = "ready"
	// TaskAssigned indicates the task has been bound to an agent.
	TaskAssigned TaskState = "assigned"
	// TaskRunning indicates the task is actively being worked on.
	TaskRunning TaskState = "running"
	// TaskWaitingContext is reserved; no current transition enters it.
	TaskWaitingContext TaskState = "waiting_context"
	// TaskCompleted indicates the task finished with a result.
	TaskCompleted TaskState = "completed"
	// TaskFailed indicates the task failed.
	TaskFailed TaskState = "failed"
)

// Valid returns true if the state is a known value.
func (s TaskState) Valid() bool {
	switch s {
	case TaskPending, TaskReady, TaskAssigned, TaskRunning,
		TaskWaitingContext, TaskCompleted, TaskFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if the state is COMPLETED or FAILED.
func (s TaskState) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Task represents a unit of work executed by one agent.
type Task struct {
	// ID is the workspace-scoped identifier for this task.
	ID string `json:"id"`
	// Description is what the task asks the agent to do.
	Description string `json:"description"`
	// ExpectedOutput describes the shape of a satisfactory result.
	ExpectedOutput string `json:"expected_output"`
	// AgentID is the ID of the agent bound to this task, if any.
	AgentID string `json:"agent_id,omitempty"`
	// DependsOn lists task IDs whose results feed this task, in declared order.
	DependsOn []string `json:"depends_on,omitempty"`
	// State is the current state of the task.
	State TaskState `json:"state"`
	// Context holds the aggregated dependency results. It is nil until built;
	// a task with no dependencies gets an explicit empty context.
	Context *string `json:"context,omitempty"`
	// Result holds the final output. It is non-nil only once the task completed.
	Result *string `json:"result,omitempty"`
}

// HasContext returns true if context has been built for this task.
func (t *Task) HasContext() bool {
	return t.Context != nil
}

// HasResult returns true if the task produced a result.
func (t *Task) HasResult() bool {
	return t.Result != nil
}

// ResetState returns the task to its freshly-loaded state, keeping its ID,
// declaration fields, and pre-declared agent binding intact.
func (t *Task) ResetState() {
	t.State = TaskPending
	t.Context = nil
	t.Result = nil
}
