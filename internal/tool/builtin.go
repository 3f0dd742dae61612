package tool

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultRegistry returns a registry pre-loaded with the builtin tools.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&WebSearch{})
	r.Register(&Calculator{})
	return r
}

// stringArg extracts a non-empty string argument by name.
func stringArg(args map[string]any, name string) (string, bool) {
	v, ok := args[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// WebSearch is a simulated search tool. It returns canned results so crews
// can run offline and deterministically.
type WebSearch struct{}

func (w *WebSearch) Name() string { return "web_search" }

func (w *WebSearch) Description() string {
	return "Searches the web for a query. Requires string argument: 'query'."
}

func (w *WebSearch) Cost() int64 { return 5 }

// Execute returns simulated search results for the query.
func (w *WebSearch) Execute(args map[string]any) (string, error) {
	query, ok := stringArg(args, "query")
	if !ok {
		return fmt.Sprintf("Error: Missing or invalid string argument 'query' for web_search tool. Args received: %v", args), nil
	}
	return fmt.Sprintf("Simulated search results for %q: Key AI trends for 2025 include generative AI advancements in multimodal understanding, increased focus on AI ethics frameworks, and edge AI deployment in IoT devices.", query), nil
}

// Calculator evaluates basic arithmetic expressions: + - * /, parentheses,
// and unary minus over decimal numbers.
type Calculator struct{}

func (c *Calculator) Name() string { return "calculator" }

func (c *Calculator) Description() string {
	return "Performs calculations on a mathematical expression. Requires string argument: 'expression'. Supports basic arithmetic (+, -, *, /)."
}

func (c *Calculator) Cost() int64 { return 1 }

// Execute parses and evaluates the expression, reporting syntax errors and
// division by zero as result strings.
func (c *Calculator) Execute(args map[string]any) (string, error) {
	expr, ok := stringArg(args, "expression")
	if !ok {
		return fmt.Sprintf("Error: Missing or invalid string argument 'expression' for calculator tool. Args received: %v", args), nil
	}

	val, err := evalExpression(expr)
	if err != nil {
		return fmt.Sprintf("Failed to calculate %q: %v", expr, err), nil
	}
	return fmt.Sprintf("Result of %q is %s", expr, strconv.FormatFloat(val, 'f', -1, 64)), nil
}

// evalExpression evaluates an arithmetic expression with a small
// recursive-descent parser. Grammar:
//
//	expr   := term (('+' | '-') term)*
//	term   := factor (('*' | '/') factor)*
//	factor := '-' factor | '(' expr ')' | number
func evalExpression(input string) (float64, error) {
	p := &exprParser{input: input}
	val, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return val, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

// peek returns the next non-space byte without consuming it, or 0 at the end.
func (p *exprParser) peek() byte {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) parseExpr() (float64, error) {
	val, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			val += rhs
		case '-':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			val -= rhs
		default:
			return val, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	val, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			val *= rhs
		case '/':
			p.pos++
			rhs, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			val /= rhs
		default:
			return val, nil
		}
	}
}

func (p *exprParser) parseFactor() (float64, error) {
	switch c := p.peek(); {
	case c == '-':
		p.pos++
		val, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -val, nil
	case c == '(':
		p.pos++
		val, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return val, nil
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	case c == 0:
		return 0, fmt.Errorf("unexpected end of expression")
	default:
		return 0, fmt.Errorf("unexpected character %q at position %d", c, p.pos)
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && (p.input[p.pos] >= '0' && p.input[p.pos] <= '9' || p.input[p.pos] == '.') {
		p.pos++
	}
	text := p.input[start:p.pos]
	if strings.Count(text, ".") > 1 {
		return 0, fmt.Errorf("malformed number %q", text)
	}
	val, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed number %q", text)
	}
	return val, nil
}
