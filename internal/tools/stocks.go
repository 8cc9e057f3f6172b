package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Common names mapped to Yahoo Finance symbols. Currencies use FX pair
// symbols against the Korean won.
var symbolAliases = map[string]string{
	"삼성전자":    "005930.KS",
	"카카오":     "035720.KS",
	"네이버":     "035420.KS",
	"달러":      "USDKRW=X",
	"dollar":  "USDKRW=X",
	"usd":     "USDKRW=X",
	"유로":      "EURKRW=X",
	"euro":    "EURKRW=X",
	"eur":     "EURKRW=X",
	"엔화":      "JPYKRW=X",
	"yen":     "JPYKRW=X",
	"jpy":     "JPYKRW=X",
	"apple":   "AAPL",
	"tesla":   "TSLA",
	"nvidia":  "NVDA",
	"bitcoin": "BTC-USD",
	"비트코인":    "BTC-USD",
}

// StockTool reports the latest price for a stock, index, or currency via the
// Yahoo Finance chart API.
type StockTool struct{}

type stockArgs struct {
	Symbol string `json:"symbol"`
}

func (t *StockTool) Name() string { return "get_stock_info" }

func (t *StockTool) Description() string {
	return "Get the latest price for a stock, index, currency, or cryptocurrency. Accepts a ticker symbol or a common name like 삼성전자, dollar, or bitcoin."
}

func (t *StockTool) Parameters() json.RawMessage {
	return Schema{
		Type: "object",
		Properties: map[string]SchemaProperty{
			"symbol": {Type: "string", Description: "Ticker symbol or common name"},
		},
		Required: []string{"symbol"},
	}.MustMarshal()
}

func (t *StockTool) Execute(ctx context.Context, arguments string) (*ToolResult, error) {
	var args stockArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if args.Symbol == "" {
		return ErrorResult("symbol is required"), nil
	}

	symbol := resolveSymbol(args.Symbol)
	reqURL := "https://query1.finance.yahoo.com/v8/finance/chart/" + url.PathEscape(symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	req.Header.Set("User-Agent", browserUserAgent)

	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return ErrorResult(fmt.Sprintf("price lookup failed: %v", err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrorResult(fmt.Sprintf("price service returned %d for %s", resp.StatusCode, symbol)), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	var chart struct {
		Chart struct {
			Result []struct {
				Meta struct {
					Symbol             string  `json:"symbol"`
					Currency           string  `json:"currency"`
					RegularMarketPrice float64 `json:"regularMarketPrice"`
					PreviousClose      float64 `json:"previousClose"`
				} `json:"meta"`
			} `json:"result"`
		} `json:"chart"`
	}
	if err := json.Unmarshal(body, &chart); err != nil || len(chart.Chart.Result) == 0 {
		return ErrorResult(fmt.Sprintf("could not parse price data for %s", symbol)), nil
	}

	meta := chart.Chart.Result[0].Meta
	out := fmt.Sprintf("%s: %.2f %s", meta.Symbol, meta.RegularMarketPrice, meta.Currency)
	if meta.PreviousClose > 0 {
		change := (meta.RegularMarketPrice - meta.PreviousClose) / meta.PreviousClose * 100
		out += fmt.Sprintf(" (%+.2f%% vs previous close %.2f)", change, meta.PreviousClose)
	}
	return &ToolResult{Output: out}, nil
}

func resolveSymbol(input string) string {
	key := strings.ToLower(strings.TrimSpace(input))
	if sym, ok := symbolAliases[key]; ok {
		return sym
	}
	return strings.ToUpper(strings.TrimSpace(input))
}
