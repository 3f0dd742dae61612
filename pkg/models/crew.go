package models

// Process defines how tasks are handed to agents.
type Process string

const (
	// ProcessSequential hands tasks out in declared order, one queue head at a time.
	ProcessSequential Process = "sequential"
	// ProcessHierarchical is reserved and not implemented.
	ProcessHierarchical Process = "hierarchical"
)

// Valid returns true if the process is a known value.
func (p Process) Valid() bool {
	return p == ProcessSequential || p == ProcessHierarchical
}

// Crew binds a set of agents, a set of tasks, and a scheduling process for
// one run. It is the workspace all core components read from.
type Crew struct {
	// Agents maps agent ID to agent.
	Agents map[string]*Agent
	// Tasks maps task ID to task.
	Tasks map[string]*Task
	// Process is the scheduling policy for this crew.
	Process Process
	// TaskOrder is the declared task order, used to seed the sequential queue.
	TaskOrder []string
	// AgentOrder is the declared agent order, used for stable agent selection
	// and display.
	AgentOrder []string
}

// NewCrew builds a crew from declared agents and tasks, preserving their
// declaration order.
func NewCrew(agents []*Agent, tasks []*Task, process Process) *Crew {
	c := &Crew{
		Agents:  make(map[string]*Agent, len(agents)),
		Tasks:   make(map[string]*Task, len(tasks)),
		Process: process,
	}
	for _, a := range agents {
		c.Agents[a.ID] = a
		c.AgentOrder = append(c.AgentOrder, a.ID)
	}
	for _, t := range tasks {
		c.Tasks[t.ID] = t
		c.TaskOrder = append(c.TaskOrder, t.ID)
	}
	return c
}

// GetAgent returns the agent with the given ID, or nil.
func (c *Crew) GetAgent(id string) *Agent {
	return c.Agents[id]
}

// GetTask returns the task with the given ID, or nil.
func (c *Crew) GetTask(id string) *Task {
	return c.Tasks[id]
}

// TasksByState returns tasks in the given state, in declared order.
func (c *Crew) TasksByState(state TaskState) []*Task {
	var out []*Task
	for _, id := range c.TaskOrder {
		if t := c.Tasks[id]; t != nil && t.State == state {
			out = append(out, t)
		}
	}
	return out
}

// AgentsByState returns agents in the given state, in declared order.
func (c *Crew) AgentsByState(state AgentState) []*Agent {
	var out []*Agent
	for _, id := range c.AgentOrder {
		if a := c.Agents[id]; a != nil && a.State == state {
			out = append(out, a)
		}
	}
	return out
}

// AllTasksDone returns true once every task is in a terminal state.
func (c *Crew) AllTasksDone() bool {
	for _, t := range c.Tasks {
		if !t.State.Terminal() {
			return false
		}
	}
	return true
}

// Reset returns every task to pending and every agent to idle, clearing
// contexts, results, and usage counters. IDs are not reallocated.
func (c *Crew) Reset() {
	for _, t := range c.Tasks {
		t.ResetState()
	}
	for _, a := range c.Agents {
		a.ResetState()
	}
}
