package api

import "encoding/json"

// Message roles. "developer" is the OpenAI Responses-era name for the
// system role; the upstream API accepts it on chat completions too.
const (
	RoleDeveloper = "developer"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a chat message.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// Tool represents a tool available for the model to call.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction describes a function tool.
type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolCall represents a tool call made by the model.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction is the function invocation within a tool call.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ResponseFormat hints the model to emit structured output.
type ResponseFormat struct {
	Type string `json:"type"` // "text" or "json_object"
}

// ChatCompletionRequest matches the OpenAI chat completions request schema.
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      *int            `json:"max_tokens,omitempty"`
	Tools          []Tool          `json:"tools,omitempty"`
	ToolChoice     any             `json:"tool_choice,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatCompletionResponse matches the OpenAI chat completions response schema.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice is a single completion choice.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage contains token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Embedding API types

// EmbeddingRequest is the request for POST /embeddings.
type EmbeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

// EmbeddingResponse is the response for POST /embeddings.
type EmbeddingResponse struct {
	Data []EmbeddingData `json:"data"`
}

// EmbeddingData contains a single embedding vector.
type EmbeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// Web chat API types

// ChatRequest is the request for POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the response for POST /chat.
type ChatResponse struct {
	OK         bool   `json:"ok"`
	Reply      string `json:"reply,omitempty"`
	ResponseID string `json:"response_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Memory inspection API types

// SummaryRecord is a consolidated topic summary.
type SummaryRecord struct {
	ID      int    `json:"id"`
	Date    string `json:"date"`
	Topic   string `json:"topic"`
	Summary string `json:"summary"`
}

// SummariesResponse is the response for GET /v1/memory/summaries.
type SummariesResponse struct {
	Date      string          `json:"date"`
	Summaries []SummaryRecord `json:"summaries"`
}

// TurnRecord is a single logged conversational turn.
type TurnRecord struct {
	Date    string `json:"date"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnsResponse is the response for GET /v1/memory/turns.
type TurnsResponse struct {
	Date  string       `json:"date"`
	Turns []TurnRecord `json:"turns"`
}

// ConsolidateRequest is the request for POST /v1/memory/consolidate.
// An empty date means "yesterday".
type ConsolidateRequest struct {
	Date string `json:"date,omitempty"`
}

// ConsolidateResponse is the response for POST /v1/memory/consolidate.
type ConsolidateResponse struct {
	Status string `json:"status"`
	Date   string `json:"date"`
}
