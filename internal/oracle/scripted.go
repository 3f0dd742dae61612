package oracle

import (
	"context"
	"fmt"
)

// ScriptedOracle replays canned decisions per task, in order. Once a task's
// script is exhausted it falls back to a final answer, so offline runs and
// tests always terminate. The zero value is usable.
type ScriptedOracle struct {
	scripts map[string][]Decision
}

// NewScriptedOracle creates an empty scripted oracle.
func NewScriptedOracle() *ScriptedOracle {
	return &ScriptedOracle{scripts: make(map[string][]Decision)}
}

// Script appends decisions to the given task's script.
func (o *ScriptedOracle) Script(taskID string, decisions ...Decision) *ScriptedOracle {
	if o.scripts == nil {
		o.scripts = make(map[string][]Decision)
	}
	o.scripts[taskID] = append(o.scripts[taskID], decisions...)
	return o
}

// Decide pops the next scripted decision for the task, or synthesizes a
// final answer when the script is exhausted.
func (o *ScriptedOracle) Decide(ctx context.Context, req Request) (Consultation, error) {
	if err := ctx.Err(); err != nil {
		return Consultation{}, err
	}

	if queue := o.scripts[req.Task.ID]; len(queue) > 0 {
		next := queue[0]
		o.scripts[req.Task.ID] = queue[1:]
		return Consultation{Decision: &next}, nil
	}

	return Consultation{
		Decision: &Decision{
			Action:  ActionFinalAnswer,
			Content: fmt.Sprintf("Simulated result for task %s: %s", req.Task.ID, req.Task.Description),
		},
	}, nil
}
