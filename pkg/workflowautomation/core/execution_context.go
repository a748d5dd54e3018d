package core

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
)

// Reserved execution context keys.
const (
	KeyPreviousOutput  = "previousOutput"
	KeyInputData       = "inputData"
	KeyConditionResult = "conditionResult"
	KeyExecutionID     = "executionId"
	KeyWorkflowID      = "workflowId"
)

var ErrReservedKey = errors.New("execution context key is reserved")

// ExecutionContext is the key/value bag shared by every node of one execution.
// Values are kept in their JSON form (maps, slices, strings, float64, bool, nil)
// so the whole context can always be persisted as a snapshot.
type ExecutionContext struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewExecutionContext seeds the context with the ids and the caller supplied input.
// inputData is written once here and can not be replaced afterwards.
func NewExecutionContext(executionID int64, workflowID int64, inputData any) (*ExecutionContext, error) {
	input, err := NormalizeJSON(inputData)
	if err != nil {
		return nil, fmt.Errorf("input data: %w", err)
	}
	if input == nil {
		input = map[string]any{}
	}
	return &ExecutionContext{values: map[string]any{
		KeyExecutionID: float64(executionID),
		KeyWorkflowID:  float64(workflowID),
		KeyInputData:   input,
	}}, nil
}

// ParseExecutionContext restores a context from a persisted snapshot.
func ParseExecutionContext(data []byte) (*ExecutionContext, error) {
	values := map[string]any{}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("parse execution context: %w", err)
		}
	}
	return &ExecutionContext{values: values}, nil
}

func (c *ExecutionContext) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Set stores a JSON compatible value under key. inputData is refused.
func (c *ExecutionContext) Set(key string, value any) error {
	if key == KeyInputData {
		return ErrReservedKey
	}
	normalized, err := NormalizeJSON(value)
	if err != nil {
		return fmt.Errorf("context value %q: %w", key, err)
	}
	c.mu.Lock()
	c.values[key] = normalized
	c.mu.Unlock()
	return nil
}

func (c *ExecutionContext) PreviousOutput() any {
	v, _ := c.Get(KeyPreviousOutput)
	return v
}

func (c *ExecutionContext) SetPreviousOutput(value any) error {
	return c.Set(KeyPreviousOutput, value)
}

func (c *ExecutionContext) InputData() any {
	v, _ := c.Get(KeyInputData)
	return v
}

// ConditionResult returns the last boolean written by a Condition node and whether one was written.
func (c *ExecutionContext) ConditionResult() (bool, bool) {
	v, ok := c.Get(KeyConditionResult)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func (c *ExecutionContext) SetConditionResult(result bool) {
	c.mu.Lock()
	c.values[KeyConditionResult] = result
	c.mu.Unlock()
}

// Snapshot returns a deep copy of the values, safe to hand to script evaluators.
func (c *ExecutionContext) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return deepCopy(c.values).(map[string]any)
}

func (c *ExecutionContext) MarshalJSON() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return json.Marshal(c.values)
}

// String renders the context as JSON, the form persisted as the execution snapshot.
func (c *ExecutionContext) String() string {
	b, err := c.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ParseInputData decodes the JSON text supplied at execution start. Empty input is an empty object.
func ParseInputData(inputData string) (any, error) {
	if strings.TrimSpace(inputData) == "" {
		return map[string]any{}, nil
	}
	var v any
	if err := json.Unmarshal([]byte(inputData), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// NormalizeJSON converts any marshalable value into its plain JSON representation.
func NormalizeJSON(v any) (any, error) {
	switch v.(type) {
	case nil, bool, string, float64:
		return v, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func deepCopy(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(tv))
		for k, val := range tv {
			m[k] = deepCopy(val)
		}
		return m
	case []any:
		s := make([]any, len(tv))
		for i, val := range tv {
			s[i] = deepCopy(val)
		}
		return s
	default:
		return v
	}
}
