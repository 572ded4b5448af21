package timeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Query is a compiled boolean expression evaluated against event fields,
// e.g. `monsterType == "DRAGON" && timestamp < 900000`. Unknown fields
// evaluate to nil.
type Query struct {
	source  string
	program *vm.Program
}

func CompileQuery(source string) (*Query, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("query is empty")
	}
	program, err := expr.Compile(source, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile query %q: %w", source, err)
	}
	return &Query{source: source, program: program}, nil
}

func (q *Query) String() string {
	if q == nil {
		return ""
	}
	return q.source
}

func (q *Query) Match(ev Event) (bool, error) {
	if q == nil {
		return true, nil
	}
	env, _ := plainValue(map[string]any(ev)).(map[string]any)
	if env == nil {
		env = map[string]any{}
	}
	out, err := expr.Run(q.program, env)
	if err != nil {
		return false, fmt.Errorf("run query %q: %w", q.source, err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("query %q returned %T, want bool", q.source, out)
	}
	return matched, nil
}

// Filter keeps the events matching q, preserving order.
func (q *Query) Filter(events []Event) ([]Event, error) {
	if q == nil {
		return events, nil
	}
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		matched, err := q.Match(ev)
		if err != nil {
			return nil, err
		}
		if matched {
			out = append(out, ev)
		}
	}
	return out, nil
}

// plainValue converts json.Number values so the expression engine can compare
// them with numeric literals.
func plainValue(v any) any {
	switch typed := v.(type) {
	case json.Number:
		if i, err := typed.Int64(); err == nil {
			return int(i)
		}
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, val := range typed {
			out[k] = plainValue(val)
		}
		return out
	case Event:
		return plainValue(map[string]any(typed))
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = plainValue(val)
		}
		return out
	default:
		return v
	}
}
