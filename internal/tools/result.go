package tools

import "encoding/json"

// ToolResult is the outcome of a tool execution. Errors are reported in-band
// so the model can read them and recover; Execute only returns a Go error for
// faults the model cannot act on.
type ToolResult struct {
	Output  string
	IsError bool
}

// ErrorResult builds an in-band error result.
func ErrorResult(msg string) *ToolResult {
	return &ToolResult{Output: msg, IsError: true}
}

// Schema is a minimal JSON Schema builder for tool parameters.
type Schema struct {
	Type       string                    `json:"type"`
	Properties map[string]SchemaProperty `json:"properties"`
	Required   []string                  `json:"required"`
}

// SchemaProperty describes a single parameter.
type SchemaProperty struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// MustMarshal serializes the schema, panicking on failure (schemas are
// compile-time constants).
func (s Schema) MustMarshal() json.RawMessage {
	data, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return data
}
