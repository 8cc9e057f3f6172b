package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// WeatherTool reports current weather for a city via the wttr.in JSON API.
type WeatherTool struct{}

type weatherArgs struct {
	City string `json:"city"`
}

func (t *WeatherTool) Name() string { return "get_weather" }

func (t *WeatherTool) Description() string {
	return "Get current weather for a city. Use for questions about weather, temperature, or conditions. Defaults to Seoul."
}

func (t *WeatherTool) Parameters() json.RawMessage {
	return Schema{
		Type: "object",
		Properties: map[string]SchemaProperty{
			"city": {Type: "string", Description: "City name (default: Seoul)"},
		},
		Required: []string{},
	}.MustMarshal()
}

func (t *WeatherTool) Execute(ctx context.Context, arguments string) (*ToolResult, error) {
	var args weatherArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if args.City == "" {
		args.City = "Seoul"
	}

	reqURL := "https://wttr.in/" + url.PathEscape(args.City) + "?format=j1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	req.Header.Set("User-Agent", browserUserAgent)

	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return ErrorResult(fmt.Sprintf("weather lookup failed: %v", err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrorResult(fmt.Sprintf("weather service returned %d", resp.StatusCode)), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	var report struct {
		CurrentCondition []struct {
			TempC       string `json:"temp_C"`
			FeelsLikeC  string `json:"FeelsLikeC"`
			Humidity    string `json:"humidity"`
			WeatherDesc []struct {
				Value string `json:"value"`
			} `json:"weatherDesc"`
		} `json:"current_condition"`
	}
	if err := json.Unmarshal(body, &report); err != nil || len(report.CurrentCondition) == 0 {
		return ErrorResult(fmt.Sprintf("could not parse weather data for %s", args.City)), nil
	}

	cur := report.CurrentCondition[0]
	desc := ""
	if len(cur.WeatherDesc) > 0 {
		desc = cur.WeatherDesc[0].Value
	}

	out := fmt.Sprintf("Current weather in %s: %s°C (feels like %s°C), %s, humidity %s%%",
		args.City, cur.TempC, cur.FeelsLikeC, desc, cur.Humidity)
	return &ToolResult{Output: out}, nil
}
