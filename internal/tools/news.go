package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxNewsHeadlines = 5

// NewsTool fetches recent news headlines from Naver news search.
type NewsTool struct{}

type newsArgs struct {
	Topic string `json:"topic"`
}

func (t *NewsTool) Name() string { return "get_news" }

func (t *NewsTool) Description() string {
	return "Get recent news headlines. Use when the user asks about news or current events. Takes an optional topic to search for."
}

func (t *NewsTool) Parameters() json.RawMessage {
	return Schema{
		Type: "object",
		Properties: map[string]SchemaProperty{
			"topic": {Type: "string", Description: "Topic to search news for (default: 오늘의 뉴스)"},
		},
		Required: []string{},
	}.MustMarshal()
}

func (t *NewsTool) Execute(ctx context.Context, arguments string) (*ToolResult, error) {
	var args newsArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if args.Topic == "" {
		args.Topic = "오늘의 뉴스"
	}

	searchURL := "https://search.naver.com/search.naver?where=news&query=" + url.QueryEscape(args.Topic)
	doc, err := fetchDocument(ctx, searchURL)
	if err != nil {
		return ErrorResult(fmt.Sprintf("news lookup failed: %v", err)), nil
	}

	var headlines []string
	doc.Find("a.news_tit").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Text())
		if title != "" {
			headlines = append(headlines, title)
		}
		return len(headlines) < maxNewsHeadlines
	})

	if len(headlines) == 0 {
		return ErrorResult(fmt.Sprintf("no news found for %q", args.Topic)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent news for %q:\n", args.Topic)
	for i, h := range headlines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, h)
	}
	return &ToolResult{Output: b.String()}, nil
}
