package oracle

import (
	"errors"
	"testing"
)

func TestParseDecision_UseTool(t *testing.T) {
	raw := `{"action": "use_tool", "tool_name": "calculator", "arguments": {"expression": "100 * 1.15"}}`
	d, err := ParseDecision(raw)
	if err != nil {
		t.Fatalf("ParseDecision() error = %v", err)
	}
	if d.Action != ActionUseTool {
		t.Errorf("Action = %q, want %q", d.Action, ActionUseTool)
	}
	if d.ToolName != "calculator" {
		t.Errorf("ToolName = %q, want calculator", d.ToolName)
	}
	if got := d.Arguments["expression"]; got != "100 * 1.15" {
		t.Errorf("Arguments[expression] = %v, want 100 * 1.15", got)
	}
}

func TestParseDecision_FinalAnswer(t *testing.T) {
	d, err := ParseDecision(`{"action": "final_answer", "content": "The report is done."}`)
	if err != nil {
		t.Fatalf("ParseDecision() error = %v", err)
	}
	if d.Action != ActionFinalAnswer {
		t.Errorf("Action = %q, want %q", d.Action, ActionFinalAnswer)
	}
	if d.Content != "The report is done." {
		t.Errorf("Content = %q", d.Content)
	}
}

func TestParseDecision_MarkdownFence(t *testing.T) {
	raw := "```json\n{\"action\": \"final_answer\", \"content\": \"done\"}\n```"
	d, err := ParseDecision(raw)
	if err != nil {
		t.Fatalf("ParseDecision() error = %v", err)
	}
	if d.Content != "done" {
		t.Errorf("Content = %q, want done", d.Content)
	}
}

func TestParseDecision_EmptyArguments(t *testing.T) {
	d, err := ParseDecision(`{"action": "use_tool", "tool_name": "web_search"}`)
	if err != nil {
		t.Fatalf("ParseDecision() error = %v", err)
	}
	if d.Arguments == nil {
		t.Error("Arguments should be an empty map, not nil")
	}
}

func TestParseDecision_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "I think I should search the web."},
		{"missing action", `{"tool_name": "calculator"}`},
		{"unknown action", `{"action": "delegate"}`},
		{"use_tool without tool_name", `{"action": "use_tool", "arguments": {}}`},
		{"arguments not an object", `{"action": "use_tool", "tool_name": "calculator", "arguments": "1+1"}`},
		{"final_answer without content", `{"action": "final_answer"}`},
		{"empty string", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDecision(tt.raw)
			if err == nil {
				t.Fatal("ParseDecision() succeeded, want error")
			}
			if !errors.Is(err, ErrInvalidDecision) {
				t.Errorf("error %v should wrap ErrInvalidDecision", err)
			}
		})
	}
}

func TestParseDecision_FinalAnswerEmptyContent(t *testing.T) {
	// Explicit empty content is present, just empty: accepted.
	d, err := ParseDecision(`{"action": "final_answer", "content": ""}`)
	if err != nil {
		t.Fatalf("ParseDecision() error = %v", err)
	}
	if d.Content != "" {
		t.Errorf("Content = %q, want empty", d.Content)
	}
}
