package kernel

import (
	"github.com/crewos/crewos/pkg/models"
)

// Scheduler binds ready tasks to idle agents. The sequential policy seeds a
// FIFO queue from the crew's declared task order and is strictly
// head-of-line blocking: a later, independently-ready task is never assigned
// ahead of a not-yet-ready queue head. The declared order is assumed to be
// compatible with the dependency DAG; load-time validation enforces this.
type Scheduler struct {
	crew  *models.Crew
	tasks *TaskManager
	// queue holds task IDs not yet assigned, in declared order.
	queue []string
}

// NewScheduler creates a scheduler for the crew. For the sequential process
// the queue is seeded from the declared task order; the hierarchical process
// is reserved and schedules nothing.
func NewScheduler(crew *models.Crew, tasks *TaskManager) *Scheduler {
	s := &Scheduler{crew: crew, tasks: tasks}
	if crew.Process == models.ProcessSequential {
		s.queue = append(s.queue, crew.TaskOrder...)
	}
	return s
}

// QueueLen returns the number of queued task IDs.
func (s *Scheduler) QueueLen() int {
	return len(s.queue)
}

// SchedulePass performs one scheduling pass: first promotion (assigned tasks
// whose agents confirmed assignment start running, with context built at
// that moment), then assignment (the queue head, if ready, is bound to the
// first idle agent in declared order).
func (s *Scheduler) SchedulePass() {
	if s.crew.Process != models.ProcessSequential {
		debugLog("[scheduler] process %s not implemented, skipping pass", s.crew.Process)
		return
	}

	s.promoteAssigned()
	s.assignHead()
}

// promoteAssigned moves every assigned task whose bound agent is still
// assigned to exactly that task into the running state. Context is built
// here, not at assignment time, so it reflects the latest dependency
// results.
func (s *Scheduler) promoteAssigned() {
	for _, task := range s.crew.TasksByState(models.TaskAssigned) {
		agent := s.crew.GetAgent(task.AgentID)
		if agent == nil || agent.CurrentTaskID != task.ID || agent.State != models.AgentAssigned {
			continue
		}
		debugLog("[scheduler] agent %s starting task %s", agent.ID, task.ID)
		agent.State = models.AgentRunningTask
		s.tasks.UpdateState(task.ID, models.TaskRunning)
		if _, err := s.tasks.BuildContext(task); err != nil {
			debugLog("[scheduler] context build failed for task %s: %v", task.ID, err)
		}
	}
}

// assignHead inspects the queue head only. A terminal or unknown head is
// dropped without looking at later entries, bounding work per pass. A head
// that is not yet ready blocks the queue.
func (s *Scheduler) assignHead() {
	if len(s.queue) == 0 {
		return
	}

	headID := s.queue[0]
	s.tasks.CheckAndUpdateReadiness()

	task := s.crew.GetTask(headID)
	switch {
	case task == nil:
		debugLog("[scheduler] queued task %s not found, dropping", headID)
		s.queue = s.queue[1:]
	case task.State.Terminal():
		debugLog("[scheduler] queued task %s already %s, dropping", headID, task.State)
		s.queue = s.queue[1:]
	case task.State == models.TaskReady:
		idle := s.crew.AgentsByState(models.AgentIdle)
		if len(idle) == 0 {
			debugLog("[scheduler] task %s is ready but no agents are idle", headID)
			return
		}
		agent := idle[0]
		debugLog("[scheduler] assigning task %s to agent %s", headID, agent.ID)
		s.queue = s.queue[1:]
		task.AgentID = agent.ID
		s.tasks.UpdateState(task.ID, models.TaskAssigned)
		agent.AssignTask(task.ID)
	default:
		debugLog("[scheduler] queue head %s still %s, holding the line", headID, task.State)
	}
}

// ReleaseAgent returns an agent to idle. It is idempotent and tolerates
// unknown agent IDs.
func (s *Scheduler) ReleaseAgent(agentID string) {
	agent := s.crew.GetAgent(agentID)
	if agent == nil {
		debugLog("[scheduler] release requested for unknown agent %s", agentID)
		return
	}
	if agent.State != models.AgentIdle {
		debugLog("[scheduler] releasing agent %s from %s to idle", agentID, agent.State)
	}
	agent.Release()
}
