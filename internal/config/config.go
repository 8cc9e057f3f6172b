package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the theo server configuration.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	DataDir  string `yaml:"data_dir"`
	DBPath   string `yaml:"db_path"`
	IndexDir string `yaml:"index_dir"`

	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIKey     string `yaml:"-"` // env only, never written to disk

	BasicModel    string `yaml:"basic_model"`    // classification, filtering, summarization
	AdvancedModel string `yaml:"advanced_model"` // main conversation
	EmbedModel    string `yaml:"embed_model"`

	UserName string `yaml:"user_name"`
	BotName  string `yaml:"bot_name"`

	VectorThreshold  float32 `yaml:"vector_threshold"`
	FilterThreshold  float64 `yaml:"filter_threshold"`
	TopK             int     `yaml:"top_k"`
	MaxContextTokens int     `yaml:"max_context_tokens"`
	MaxToolRounds    int     `yaml:"max_tool_rounds"`

	ConsolidateEvery string `yaml:"consolidate_every"` // duration string, e.g. "1h"
	RequestTimeout   string `yaml:"request_timeout"`   // per outbound LLM/embedding call
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:             "0.0.0.0",
		Port:             5000,
		DataDir:          DataDir(),
		DBPath:           DBPath(),
		IndexDir:         IndexDir(),
		OpenAIBaseURL:    "https://api.openai.com/v1",
		BasicModel:       "gpt-5-mini",
		AdvancedModel:    "gpt-5",
		EmbedModel:       "text-embedding-3-small",
		UserName:         "Brian",
		BotName:          "Theo",
		VectorThreshold:  0.7,
		FilterThreshold:  0.6,
		TopK:             3,
		MaxContextTokens: 16 * 1024,
		MaxToolRounds:    5,
		ConsolidateEvery: "1h",
		RequestTimeout:   "30s",
	}
}

// Load builds the config from defaults, an optional yaml file, and the
// environment, in that order of precedence (env wins).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("THEO_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("THEO_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.OpenAIBaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIKey = v
	}
	if v := os.Getenv("THEO_USER_NAME"); v != "" {
		c.UserName = v
	}
	if v := os.Getenv("THEO_BOT_NAME"); v != "" {
		c.BotName = v
	}
}

// ConsolidateInterval parses ConsolidateEvery, falling back to hourly.
func (c *Config) ConsolidateInterval() time.Duration {
	d, err := time.ParseDuration(c.ConsolidateEvery)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// CallTimeout parses RequestTimeout, falling back to 30s.
func (c *Config) CallTimeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}
