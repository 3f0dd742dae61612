package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decisionJSON is the wire shape the oracle is instructed to respond with.
type decisionJSON struct {
	Action    string          `json:"action"`
	ToolName  string          `json:"tool_name"`
	Arguments json.RawMessage `json:"arguments"`
	Content   *string         `json:"content"`
}

// ParseDecision parses a raw oracle response into a Decision. It strips a
// markdown ```json fence if present. Any missing field, unknown action, or
// unparseable payload yields an ErrInvalidDecision-wrapped error.
func ParseDecision(raw string) (*Decision, error) {
	text := stripFence(raw)

	var wire decisionJSON
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return nil, fmt.Errorf("%w: not a JSON object: %v", ErrInvalidDecision, err)
	}

	switch Action(wire.Action) {
	case ActionUseTool:
		if wire.ToolName == "" {
			return nil, fmt.Errorf("%w: use_tool missing tool_name", ErrInvalidDecision)
		}
		args := map[string]any{}
		if len(wire.Arguments) > 0 {
			if err := json.Unmarshal(wire.Arguments, &args); err != nil {
				return nil, fmt.Errorf("%w: arguments is not an object", ErrInvalidDecision)
			}
		}
		return &Decision{Action: ActionUseTool, ToolName: wire.ToolName, Arguments: args}, nil

	case ActionFinalAnswer:
		if wire.Content == nil {
			return nil, fmt.Errorf("%w: final_answer missing content", ErrInvalidDecision)
		}
		return &Decision{Action: ActionFinalAnswer, Content: *wire.Content}, nil

	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidDecision, wire.Action)
	}
}

// stripFence removes a surrounding markdown code fence from model output.
func stripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
