package kernel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crewos/crewos/internal/graph"
	"github.com/crewos/crewos/internal/oracle"
	"github.com/crewos/crewos/internal/tool"
	"github.com/crewos/crewos/pkg/models"
)

// defaultConsultCost is the token estimate charged per oracle consultation
// when the oracle does not report its own usage.
const defaultConsultCost = 100

// Option configures a Kernel.
type Option func(*Kernel)

// WithLogger sets the kernel debug logger.
func WithLogger(l *DebugLogger) Option {
	return func(k *Kernel) {
		if l != nil {
			k.logger = l
		}
	}
}

// WithConsultCost sets the token estimate charged per oracle consultation
// when the oracle reports no usage of its own.
func WithConsultCost(cost int64) Option {
	return func(k *Kernel) { k.consultCost = cost }
}

// WithDecisionRetryLimit bounds how many non-completing work steps (invalid
// or unusable decisions) a running task tolerates before it is failed.
// 0 means unbounded retries, which is the default.
func WithDecisionRetryLimit(limit int) Option {
	return func(k *Kernel) { k.retryLimit = limit }
}

// Kernel wires the task manager, scheduler, dispatcher, and monitor around
// one loaded crew and drives them one tick at a time. All state is mutated
// only from the single tick-processing path; the kernel is not safe for
// concurrent use.
type Kernel struct {
	oracle      oracle.Oracle
	registry    *tool.Registry
	logger      *DebugLogger
	consultCost int64
	retryLimit  int

	crew       *models.Crew
	tasks      *TaskManager
	scheduler  *Scheduler
	dispatcher *ToolDispatcher
	monitor    *ResourceMonitor

	runID     string
	tickCount int
	// retries counts non-completing work steps per running task.
	retries map[string]int
}

// New creates a kernel around a decision oracle and a tool registry.
// A crew must be loaded before ticking.
func New(o oracle.Oracle, registry *tool.Registry, opts ...Option) *Kernel {
	if registry == nil {
		registry = tool.DefaultRegistry()
	}
	k := &Kernel{
		oracle:      o,
		registry:    registry,
		logger:      NopLogger(),
		consultCost: defaultConsultCost,
	}
	for _, opt := range opts {
		opt(k)
	}
	setPackageLogger(k.logger)
	k.registry.SetWarnLog(debugLog)
	return k
}

// LoadCrew validates the declaration and binds a fresh workspace, replacing
// any prior one. The task manager, scheduler, and resource monitor are
// (re)initialized; declarations with dependency cycles, unknown or self
// dependencies, or an order incompatible with the DAG are rejected.
func (k *Kernel) LoadCrew(crew *models.Crew) error {
	if !crew.Process.Valid() {
		return fmt.Errorf("unknown process %q", crew.Process)
	}

	declared := make([]*models.Task, 0, len(crew.TaskOrder))
	for _, id := range crew.TaskOrder {
		declared = append(declared, crew.GetTask(id))
	}
	g, err := graph.Build(declared)
	if err != nil {
		return fmt.Errorf("invalid task declaration: %w", err)
	}
	if err := g.CheckOrder(crew.TaskOrder); err != nil {
		return fmt.Errorf("invalid task declaration: %w", err)
	}

	crew.Reset()
	k.crew = crew
	k.bindComponents()
	k.logger.Log("[kernel] crew loaded: run %s, %d agents, %d tasks, process %s",
		k.runID, len(crew.Agents), len(crew.Tasks), crew.Process)
	return nil
}

// Reset returns the loaded crew to its freshly-loaded state and starts a new
// run without reallocating any IDs.
func (k *Kernel) Reset() error {
	if k.crew == nil {
		return ErrNoCrew
	}
	k.crew.Reset()
	k.bindComponents()
	k.logger.Log("[kernel] crew reset: run %s", k.runID)
	return nil
}

// bindComponents rebuilds the per-run components and mints a new run ID.
func (k *Kernel) bindComponents() {
	k.monitor = NewResourceMonitor()
	k.tasks = NewTaskManager(k.crew)
	k.scheduler = NewScheduler(k.crew, k.tasks)
	k.dispatcher = NewToolDispatcher(k.crew, k.registry, k.monitor)
	k.runID = uuid.New().String()[:8]
	k.tickCount = 0
	k.retries = make(map[string]int)
}

// Tick runs one simulation step: a scheduling pass, then one synchronous
// work step for each task running at tick start, over a stable snapshot of
// that set. Returns false once every task is terminal, or if no crew is
// loaded.
func (k *Kernel) Tick(ctx context.Context) bool {
	if k.crew == nil {
		k.logger.Log("[kernel] tick requested with no crew loaded")
		return false
	}

	k.tickCount++
	k.logger.Log("[kernel] --- tick %d start ---", k.tickCount)

	k.scheduler.SchedulePass()

	// Snapshot: tasks that become running mid-tick wait for the next one.
	running := k.crew.TasksByState(models.TaskRunning)
	for _, task := range running {
		if task.State != models.TaskRunning {
			continue
		}
		agent := k.crew.GetAgent(task.AgentID)
		if agent == nil {
			k.logger.Log("[kernel] task %s is running but agent %s not found", task.ID, task.AgentID)
			continue
		}
		if agent.State != models.AgentRunningTask {
			k.logger.Log("[kernel] task %s is running but agent %s is %s, skipping", task.ID, agent.ID, agent.State)
			continue
		}

		if k.workStep(ctx, agent, task) {
			k.logger.Log("[kernel] task %s completed during tick %d", task.ID, k.tickCount)
		} else {
			k.logger.Log("[kernel] task %s not completed this tick", task.ID)
		}
	}

	k.logger.Log("[kernel] --- tick %d end ---", k.tickCount)

	if k.crew.AllTasksDone() {
		k.logger.Log("[kernel] all tasks terminal, run %s finished", k.runID)
		return false
	}

	k.warnIfStalled(len(running))
	return true
}

// warnIfStalled logs when no task is progressing but the run is not done.
func (k *Kernel) warnIfStalled(ranThisTick int) {
	if ranThisTick > 0 || len(k.crew.TasksByState(models.TaskAssigned)) > 0 {
		return
	}
	if len(k.crew.TasksByState(models.TaskReady)) == 0 &&
		len(k.crew.TasksByState(models.TaskPending)) == 0 {
		k.logger.Log("[kernel] warning: no tasks running, assigned, ready, or pending, but not all tasks are done; possible stall")
	}
}

// workStep performs one step of agent work: up to two oracle consultations
// and at most one tool dispatch. Returns true if the task completed.
func (k *Kernel) workStep(ctx context.Context, agent *models.Agent, task *models.Task) bool {
	cons, err := k.oracle.Decide(ctx, k.buildRequest(agent, task, nil))
	k.chargeConsult(agent, task, cons.Tokens)
	if err != nil || cons.Decision == nil {
		k.logger.Log("[kernel] agent %s got no usable decision for task %s: %v", agent.ID, task.ID, err)
		return k.noteRetry(agent, task)
	}

	decision := cons.Decision
	if decision.Action == oracle.ActionUseTool {
		k.logger.Log("[kernel] agent %s using tool %q for task %s", agent.ID, decision.ToolName, task.ID)
		agent.State = models.AgentUsingTool
		result := k.dispatcher.Execute(agent, task.ID, decision.ToolName, decision.Arguments)
		agent.State = models.AgentRunningTask

		toolResults := map[string]string{decision.ToolName: result}
		cons, err = k.oracle.Decide(ctx, k.buildRequest(agent, task, toolResults))
		k.chargeConsult(agent, task, cons.Tokens)
		if err != nil || cons.Decision == nil {
			k.logger.Log("[kernel] agent %s got no usable decision after tool use for task %s: %v", agent.ID, task.ID, err)
			return k.noteRetry(agent, task)
		}
		decision = cons.Decision

		if decision.Action == oracle.ActionUseTool {
			// One tool dispatch per work step; chaining retries next tick.
			k.logger.Log("[kernel] agent %s requested a second tool in one work step for task %s", agent.ID, task.ID)
			return k.noteRetry(agent, task)
		}
	}

	if decision.Action != oracle.ActionFinalAnswer {
		k.logger.Log("[kernel] agent %s returned unhandled action %q for task %s", agent.ID, decision.Action, task.ID)
		return k.noteRetry(agent, task)
	}

	k.tasks.AddResult(task.ID, decision.Content)
	k.tasks.UpdateState(task.ID, models.TaskCompleted)
	k.scheduler.ReleaseAgent(agent.ID)
	k.tasks.CheckAndUpdateReadiness()
	delete(k.retries, task.ID)
	return true
}

// noteRetry counts a non-completing work step. With a retry limit set, a
// task exceeding it is failed and its agent released; otherwise the task
// stays running for a retry on a later tick.
func (k *Kernel) noteRetry(agent *models.Agent, task *models.Task) bool {
	k.retries[task.ID]++
	if k.retryLimit > 0 && k.retries[task.ID] >= k.retryLimit {
		k.logger.Log("[kernel] task %s exceeded retry limit (%d), failing", task.ID, k.retryLimit)
		k.tasks.UpdateState(task.ID, models.TaskFailed)
		k.scheduler.ReleaseAgent(agent.ID)
		delete(k.retries, task.ID)
	}
	return false
}

// buildRequest assembles the oracle request for one consultation.
func (k *Kernel) buildRequest(agent *models.Agent, task *models.Task, toolResults map[string]string) oracle.Request {
	taskContext := ""
	if task.HasContext() {
		taskContext = *task.Context
	}
	return oracle.Request{
		Persona: oracle.Persona{
			Role:      agent.Role,
			Goal:      agent.Goal,
			Backstory: agent.Backstory,
		},
		Task: oracle.TaskBrief{
			ID:             task.ID,
			Description:    task.Description,
			ExpectedOutput: task.ExpectedOutput,
			Context:        taskContext,
		},
		ToolDescriptions: k.agentToolDescriptions(agent),
		ToolResults:      toolResults,
	}
}

// agentToolDescriptions lists the tools in the agent's allowlist that
// resolve in the registry, or "" when none do.
func (k *Kernel) agentToolDescriptions(agent *models.Agent) string {
	var b strings.Builder
	for _, name := range agent.Tools {
		if t := k.registry.Get(name); t != nil {
			fmt.Fprintf(&b, "- %s: %s (Cost: %d)\n", t.Name(), t.Description(), t.Cost())
		}
	}
	return b.String()
}

// chargeConsult records token usage for one oracle consultation against both
// the ledger and the agent. When the oracle reports no usage, the configured
// per-consultation estimate is charged instead.
func (k *Kernel) chargeConsult(agent *models.Agent, task *models.Task, reported int64) {
	tokens := reported
	if tokens <= 0 {
		tokens = k.consultCost
	}
	k.monitor.Record(UsageTokens, agent.ID, task.ID, tokens)
	agent.RecordUsage(tokens, 0)
}

// Run is the outer timed loop: it ticks until the kernel reports done, the
// context is cancelled, or maxTicks is reached. The in-flight tick always
// runs to completion; cancellation only withholds further ticks.
func (k *Kernel) Run(ctx context.Context, maxTicks int, delay time.Duration) error {
	if k.crew == nil {
		return ErrNoCrew
	}

	for k.tickCount < maxTicks {
		if !k.Tick(ctx) {
			break
		}
		select {
		case <-ctx.Done():
			k.logger.Log("[kernel] run %s cancelled after tick %d", k.runID, k.tickCount)
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	report := k.monitor.Report()
	k.logger.Log("[kernel] run %s stopped after %d ticks: %d tokens, %d tool calls",
		k.runID, k.tickCount, report.TotalTokens, report.TotalToolCalls)
	return nil
}

// Report returns the aggregate resource totals for the current run.
func (k *Kernel) Report() Report {
	if k.monitor == nil {
		return Report{}
	}
	return k.monitor.Report()
}

// TasksByState returns the loaded crew's tasks in the given state.
func (k *Kernel) TasksByState(state models.TaskState) []*models.Task {
	if k.crew == nil {
		return nil
	}
	return k.crew.TasksByState(state)
}

// AgentsByState returns the loaded crew's agents in the given state.
func (k *Kernel) AgentsByState(state models.AgentState) []*models.Agent {
	if k.crew == nil {
		return nil
	}
	return k.crew.AgentsByState(state)
}

// AllTasksDone returns true once every task is terminal. It is false when
// no crew is loaded.
func (k *Kernel) AllTasksDone() bool {
	return k.crew != nil && k.crew.AllTasksDone()
}

// Crew returns the loaded crew, or nil.
func (k *Kernel) Crew() *models.Crew {
	return k.crew
}

// RunID returns the identifier minted for the current run.
func (k *Kernel) RunID() string {
	return k.runID
}

// TickCount returns the number of ticks processed in the current run.
func (k *Kernel) TickCount() int {
	return k.tickCount
}
