package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// CurrentTimeTool reports the current date and time, optionally in a given
// IANA timezone. Defaults to Asia/Seoul.
type CurrentTimeTool struct{}

type currentTimeArgs struct {
	Timezone string `json:"timezone"`
}

func (t *CurrentTimeTool) Name() string { return "get_current_time" }

func (t *CurrentTimeTool) Description() string {
	return "Get the current date and time. Use for questions about today's date, the current time, or the day of the week."
}

func (t *CurrentTimeTool) Parameters() json.RawMessage {
	return Schema{
		Type: "object",
		Properties: map[string]SchemaProperty{
			"timezone": {Type: "string", Description: "IANA timezone name (default: Asia/Seoul)"},
		},
		Required: []string{},
	}.MustMarshal()
}

func (t *CurrentTimeTool) Execute(ctx context.Context, arguments string) (*ToolResult, error) {
	var args currentTimeArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if args.Timezone == "" {
		args.Timezone = "Asia/Seoul"
	}

	loc, err := time.LoadLocation(args.Timezone)
	if err != nil {
		return ErrorResult(fmt.Sprintf("unknown timezone %q", args.Timezone)), nil
	}

	now := time.Now().In(loc)
	out := fmt.Sprintf("Current time in %s: %s (%s)",
		args.Timezone, now.Format("2006-01-02 15:04:05"), now.Weekday())
	return &ToolResult{Output: out}, nil
}
