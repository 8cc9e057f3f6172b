package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	httpTimeout      = 15 * time.Second
	maxSearchHits    = 5
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// fetchDocument GETs a URL with a browser user agent and parses the HTML.
func fetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.8,en-US;q=0.5,en;q=0.3")

	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch returned %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// WebSearchTool searches the web and returns result titles and snippets.
type WebSearchTool struct{}

type webSearchArgs struct {
	Query string `json:"query"`
}

func (t *WebSearchTool) Name() string { return "search_web" }

func (t *WebSearchTool) Description() string {
	return "Search the web for information. Use when the user asks for facts you don't know or requests a search. Returns result titles and snippets."
}

func (t *WebSearchTool) Parameters() json.RawMessage {
	return Schema{
		Type: "object",
		Properties: map[string]SchemaProperty{
			"query": {Type: "string", Description: "The search query or question"},
		},
		Required: []string{"query"},
	}.MustMarshal()
}

func (t *WebSearchTool) Execute(ctx context.Context, arguments string) (*ToolResult, error) {
	var args webSearchArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if args.Query == "" {
		return ErrorResult("query is required"), nil
	}

	searchURL := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(args.Query)
	doc, err := fetchDocument(ctx, searchURL)
	if err != nil {
		return ErrorResult(fmt.Sprintf("web search failed: %v", err)), nil
	}

	results := extractSearchResults(doc)
	if len(results) == 0 {
		return ErrorResult(fmt.Sprintf("no results found for %q", args.Query)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q:\n", args.Query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, r.title, r.snippet)
	}
	return &ToolResult{Output: b.String()}, nil
}

type searchHit struct {
	title   string
	snippet string
}

func extractSearchResults(doc *goquery.Document) []searchHit {
	var hits []searchHit
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Find(".result__a").Text())
		snippet := strings.TrimSpace(sel.Find(".result__snippet").Text())
		if title == "" {
			return true
		}
		hits = append(hits, searchHit{title: title, snippet: snippet})
		return len(hits) < maxSearchHits
	})
	return hits
}
