package toolcall

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/sashabaranov/go-openai"
)

var (
	// ErrDecode is returned when the arguments are not valid JSON.
	ErrDecode = errors.New("failed to decode tool call arguments")

	// ErrNotMapping is returned when the arguments decode to something other than an object.
	ErrNotMapping = errors.New("tool call arguments must be a JSON object")

	// ErrInvalidResult is returned by SetResult for values that are neither text nor nil.
	ErrInvalidResult = errors.New("tool call result must be a string or nil")
)

// ToolCall is one function invocation requested by the assistant.
type ToolCall struct {
	id        string
	name      string
	arguments map[string]any
	result    *string
}

// New builds a ToolCall from already decoded arguments. A nil map is treated
// as an empty object.
func New(id, name string, arguments map[string]any) *ToolCall {
	args := make(map[string]any, len(arguments))
	maps.Copy(args, arguments)
	return &ToolCall{id: id, name: name, arguments: args}
}

// FromRaw builds a ToolCall from the JSON-encoded arguments string the
// provider sends. An empty string is treated as an empty object.
func FromRaw(id, name, argumentsJSON string) (*ToolCall, error) {
	raw := bytes.TrimSpace([]byte(argumentsJSON))
	if len(raw) == 0 {
		return New(id, name, nil), nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: %s: trailing data after arguments", ErrDecode, name)
	}

	args, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: got %s", ErrNotMapping, name, jsonKind(decoded))
	}
	return &ToolCall{id: id, name: name, arguments: args}, nil
}

// FromOpenAI builds a ToolCall from a go-openai tool call record.
func FromOpenAI(tc openai.ToolCall) (*ToolCall, error) {
	return FromRaw(tc.ID, tc.Function.Name, tc.Function.Arguments)
}

// ID returns the provider correlation ID.
func (c *ToolCall) ID() string { return c.id }

// Name returns the function name.
func (c *ToolCall) Name() string { return c.name }

// Arguments returns a copy of the decoded arguments.
func (c *ToolCall) Arguments() map[string]any {
	return maps.Clone(c.arguments)
}

// SetResult records the outcome of the call. Only strings and nil are
// accepted; nil clears a previous result.
func (c *ToolCall) SetResult(result any) error {
	switch v := result.(type) {
	case nil:
		c.result = nil
	case string:
		c.result = &v
	case *string:
		c.result = v
	default:
		return fmt.Errorf("%w: got %T", ErrInvalidResult, result)
	}
	return nil
}

// Result returns the recorded result and whether one is set.
func (c *ToolCall) Result() (string, bool) {
	if c.result == nil {
		return "", false
	}
	return *c.result, true
}

// Output returns the tool output to submit back to the run. An unset result
// is submitted as an empty string.
func (c *ToolCall) Output() openai.ToolOutput {
	result, _ := c.Result()
	return openai.ToolOutput{ToolCallID: c.id, Output: result}
}

// String implements fmt.Stringer.
func (c *ToolCall) String() string {
	return fmt.Sprintf("%s(%s)", c.name, c.id)
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
