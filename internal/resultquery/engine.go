// Package resultquery runs jq expressions against decoded result
// payloads.
package resultquery

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// Result collects the values produced by one expression run.
type Result struct {
	Values   []any    `json:"values"`
	Errors   []string `json:"errors,omitempty"`
	RawCount int      `json:"raw_count"`
}

// Run compiles expression and evaluates it against input, which must be
// an already-decoded JSON value. Values are deduplicated and capped at
// maxResults when positive; nil outputs are dropped.
func Run(input any, expression string, maxResults int) (*Result, error) {
	code, err := compile(expression)
	if err != nil {
		return nil, err
	}

	result := &Result{Values: []any{}, Errors: []string{}}
	seen := map[string]bool{}

	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if itErr, isErr := v.(error); isErr {
			result.Errors = append(result.Errors, describeRunError(itErr))
			continue
		}
		if v == nil {
			continue
		}

		result.RawCount++
		if key := valueKey(v); !seen[key] {
			seen[key] = true
			result.Values = append(result.Values, v)
		}
		if maxResults > 0 && len(result.Values) == maxResults {
			break
		}
	}
	return result, nil
}

// ValidateExpression checks an expression without running it.
func ValidateExpression(expression string) error {
	_, err := compile(expression)
	return err
}

func compile(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression (offset %d): %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compiling jq expression: %w", err)
	}
	return code, nil
}

// describeRunError renders an evaluation error with a hint for the usual
// mistakes. gojq runtime errors carry no typed wrappers, so the hints
// match on message text; they only decorate output and never drive
// control flow.
func describeRunError(err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return "query halted"
		}
		return fmt.Sprintf("query halted with: %v", haltErr.Value())
	}

	msg := err.Error()
	var hint string
	switch {
	case strings.Contains(msg, "cannot iterate over: null"):
		hint = " (the path may not exist in this result)"
	case strings.Contains(msg, "cannot index") && strings.Contains(msg, "with"):
		hint = " (no such field, or the value has a different type)"
	case strings.Contains(msg, "object") && strings.Contains(msg, "cannot be iterated"):
		hint = " (got an object where an array was expected; drop the '[]')"
	case strings.Contains(msg, "array") && strings.Contains(msg, "cannot be indexed"):
		hint = " (got an array where an object was expected; add '[]')"
	}
	return msg + hint
}

// valueKey builds a deduplication key for one output value. Scalars are
// prefixed by type so the string "true" and the boolean true stay distinct;
// composites key on their JSON encoding.
func valueKey(v any) string {
	switch val := v.(type) {
	case string:
		return "s:" + val
	case float64, bool:
		return fmt.Sprintf("%T:%v", val, val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("!%v", val)
		}
		return "j:" + string(b)
	}
}
