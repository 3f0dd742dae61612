package oracle

import (
	"fmt"
	"sort"
	"strings"
)

// responseFormat instructs the model to answer with exactly one decision JSON
// object and nothing else.
const responseFormat = `
Based on the task, context, and available tools, decide your next action.
Respond ONLY with a JSON object containing ONE of the following structures:

1.  To use a tool:
    {
      "action": "use_tool",
      "tool_name": "<name_of_tool_to_use>",
      "arguments": { "<argument_name>": "<argument_value>" }
    }
    (Make sure 'arguments' is a JSON object containing only the arguments the
    chosen tool requires. If a tool takes no arguments, use {}.)

2.  To provide the final answer for the current task:
    {
      "action": "final_answer",
      "content": "<your_complete_final_answer_for_the_task>"
    }

Choose the action that best progresses the task towards the expected output.
If you use a tool, I will provide the result, and you will decide the next step.
Be precise and stick strictly to the JSON format. Do not add any explanations
or text outside the JSON structure. Just the JSON object.
`

// systemPrompt renders the persona, task, context, and tool listing.
func systemPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI agent simulating the role of %q.\n", req.Persona.Role)
	fmt.Fprintf(&b, "Your overall goal is: %s.\n", req.Persona.Goal)
	if req.Persona.Backstory != "" {
		fmt.Fprintf(&b, "Your background: %s.\n", req.Persona.Backstory)
	}
	b.WriteString("\nYou are currently working on the following task:\n")
	fmt.Fprintf(&b, "Task Description: %s\n", req.Task.Description)
	fmt.Fprintf(&b, "Expected Output: %s\n", req.Task.ExpectedOutput)

	if req.Task.Context != "" {
		b.WriteString("\nYou have the following context from previous tasks:\n")
		b.WriteString("---CONTEXT START---\n")
		b.WriteString(req.Task.Context)
		b.WriteString("\n---CONTEXT END---\n")
	}

	if req.ToolDescriptions != "" {
		b.WriteString("\nYou have access to the following tools:\n")
		b.WriteString(req.ToolDescriptions)
	} else {
		b.WriteString("\nYou have no tools available.\n")
	}

	b.WriteString(responseFormat)
	return b.String()
}

// userPrompt renders the turn prompt: the opening question on a first
// consultation, or the tool results on a follow-up.
func userPrompt(req Request) string {
	if len(req.ToolResults) == 0 {
		return "What is your first action to accomplish the task? Respond ONLY with the JSON structure."
	}

	names := make([]string, 0, len(req.ToolResults))
	for name := range req.ToolResults {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("You previously used tools. Here are the results:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "--- Result from %s ---\n%s\n--- End %s ---\n\n", name, req.ToolResults[name], name)
	}
	b.WriteString("Now, decide your next action based on these results and the original task. Respond ONLY with the JSON structure.")
	return b.String()
}
