package tool

import (
	"fmt"
	"strings"
	"testing"
)

// fakeTool is a minimal Tool for registry tests.
type fakeTool struct {
	name string
	desc string
	cost int64
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return f.desc }
func (f *fakeTool) Cost() int64         { return f.cost }
func (f *fakeTool) Execute(args map[string]any) (string, error) {
	return "ok", nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	if got := r.Get("echo"); got != nil {
		t.Errorf("Get on empty registry = %v, want nil", got)
	}

	echo := &fakeTool{name: "echo", desc: "echoes", cost: 1}
	r.Register(echo)
	if got := r.Get("echo"); got != echo {
		t.Error("Get should return the registered tool")
	}
}

func TestRegistry_OverwriteWarns(t *testing.T) {
	r := NewRegistry()
	var warnings []string
	r.SetWarnLog(func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	first := &fakeTool{name: "echo", cost: 1}
	second := &fakeTool{name: "echo", cost: 2}
	r.Register(first)
	if len(warnings) != 0 {
		t.Fatalf("first registration warned: %v", warnings)
	}

	r.Register(second)
	if len(warnings) != 1 {
		t.Fatalf("overwrite produced %d warnings, want 1", len(warnings))
	}
	if got := r.Get("echo"); got != second {
		t.Error("overwrite should replace the tool deterministically")
	}
}

func TestRegistry_Describe(t *testing.T) {
	r := NewRegistry()
	if got := r.Describe(); got != "No tools available." {
		t.Errorf("Describe on empty registry = %q", got)
	}

	r.Register(&fakeTool{name: "zeta", desc: "last", cost: 2})
	r.Register(&fakeTool{name: "alpha", desc: "first", cost: 1})

	desc := r.Describe()
	alphaIdx := strings.Index(desc, "alpha")
	zetaIdx := strings.Index(desc, "zeta")
	if alphaIdx == -1 || zetaIdx == -1 || alphaIdx > zetaIdx {
		t.Errorf("Describe should list tools sorted by name:\n%s", desc)
	}
	if !strings.Contains(desc, "(Cost: 1)") {
		t.Errorf("Describe should include costs:\n%s", desc)
	}
}

func TestWebSearch_Execute(t *testing.T) {
	ws := &WebSearch{}

	tests := []struct {
		name     string
		args     map[string]any
		wantErr  bool
		contains string
	}{
		{"valid query", map[string]any{"query": "AI trends"}, false, "AI trends"},
		{"missing query", map[string]any{}, false, "Error: Missing or invalid"},
		{"non-string query", map[string]any{"query": 42}, false, "Error: Missing or invalid"},
		{"nil args", nil, false, "Error: Missing or invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ws.Execute(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v", err)
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("Execute() = %q, want substring %q", got, tt.contains)
			}
		})
	}
}

func TestCalculator_Execute(t *testing.T) {
	calc := &Calculator{}

	tests := []struct {
		name     string
		args     map[string]any
		contains string
	}{
		{"simple multiplication", map[string]any{"expression": "100 * 1.15"}, "is 115"},
		{"addition", map[string]any{"expression": "2 + 3"}, "is 5"},
		{"precedence", map[string]any{"expression": "2 + 3 * 4"}, "is 14"},
		{"parentheses", map[string]any{"expression": "(2 + 3) * 4"}, "is 20"},
		{"unary minus", map[string]any{"expression": "-4 + 10"}, "is 6"},
		{"division", map[string]any{"expression": "10 / 4"}, "is 2.5"},
		{"division by zero", map[string]any{"expression": "1 / 0"}, "division by zero"},
		{"trailing garbage", map[string]any{"expression": "1 + 2 x"}, "Failed to calculate"},
		{"letters rejected", map[string]any{"expression": "abc"}, "Failed to calculate"},
		{"missing expression", map[string]any{}, "Error: Missing or invalid"},
		{"non-string expression", map[string]any{"expression": 7}, "Error: Missing or invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Execute(tt.args)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("Execute() = %q, want substring %q", got, tt.contains)
			}
		})
	}
}

func TestEvalExpression(t *testing.T) {
	tests := []struct {
		expr    string
		want    float64
		wantErr bool
	}{
		{"1 + 2 * 3", 7, false},
		{"(1 + 2) * 3", 9, false},
		{"100 * 1.15", 115, false},
		{"-(2 + 3)", -5, false},
		{"--4", 4, false},
		{"1.5 / 0.5", 3, false},
		{"", 0, true},
		{"1 +", 0, true},
		{"(1 + 2", 0, true},
		{"1..2", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := evalExpression(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("evalExpression(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("evalExpression(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	for _, name := range []string{"web_search", "calculator"} {
		if r.Get(name) == nil {
			t.Errorf("DefaultRegistry missing %q", name)
		}
	}
}
