package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in providers.order.
const (
	ProviderYahoo        = "yahoo"
	ProviderAlphaVantage = "alphavantage"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr        string `yaml:"addr"`
		ProbeSymbol string `yaml:"probe_symbol"`
		EnableMCP   *bool  `yaml:"enable_mcp"`
	} `yaml:"server"`
	Providers struct {
		Order           []string      `yaml:"order"`
		Timeout         time.Duration `yaml:"timeout"`
		AlphaVantageKey string        `yaml:"alphavantage_api_key"`
		CoinGeckoKey    string        `yaml:"coingecko_api_key"`
	} `yaml:"providers"`
	Cache struct {
		QuoteTTL      time.Duration `yaml:"quote_ttl"`
		HistoryTTL    time.Duration `yaml:"history_ttl"`
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		RedisPrefix   string        `yaml:"redis_prefix"`
	} `yaml:"cache"`
	Knowledge struct {
		TopK int `yaml:"top_k"`
	} `yaml:"knowledge"`
	Embeddings struct {
		APIKey          string  `yaml:"api_key"`
		BaseURL         string  `yaml:"base_url"`
		Model           string  `yaml:"model"`
		SimilarityFloor float64 `yaml:"similarity_floor"`
	} `yaml:"embeddings"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		WatchCron string   `yaml:"watch_cron"`
		Watchlist []string `yaml:"watchlist"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logging struct {
		Level    string `yaml:"level"`
		Encoding string `yaml:"encoding"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// MCPEnabled reports whether the /mcp endpoint is mounted.
func (c *Config) MCPEnabled() bool {
	return c.Server.EnableMCP == nil || *c.Server.EnableMCP
}

// TelegramEnabled reports whether both Telegram credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.Server.Addr, "SAGE_ADDR")
	setString(&c.Server.ProbeSymbol, "SAGE_PROBE_SYMBOL")
	setString(&c.Providers.AlphaVantageKey, "ALPHAVANTAGE_API_KEY")
	setString(&c.Providers.CoinGeckoKey, "COINGECKO_API_KEY")
	setString(&c.Embeddings.APIKey, "OPENAI_API_KEY")
	setString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&c.Proxy, "HTTPS_PROXY")
	setString(&c.Cache.RedisAddr, "REDIS_ADDR")
	setString(&c.Database.SQLitePath, "SQLITE_PATH")
	setString(&c.Schedule.WatchCron, "SAGE_WATCH_CRON")
	setString(&c.Logging.Level, "SAGE_LOG_LEVEL")
	setString(&c.Logging.Encoding, "SAGE_LOG_ENCODING")

	if v := os.Getenv("SAGE_PROVIDERS"); v != "" {
		c.Providers.Order = splitList(v)
	}
	if v := os.Getenv("SAGE_WATCHLIST"); v != "" {
		c.Schedule.Watchlist = splitList(v)
	}
	if v := os.Getenv("SAGE_PROVIDER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Providers.Timeout = d
		}
	}
	if v := os.Getenv("SAGE_ENABLE_MCP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Server.EnableMCP = &b
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ProbeSymbol == "" {
		c.Server.ProbeSymbol = "EUR/USD"
	}
	if len(c.Providers.Order) == 0 {
		c.Providers.Order = []string{ProviderYahoo, ProviderAlphaVantage}
	}
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 10 * time.Second
	}
	if c.Cache.QuoteTTL == 0 {
		c.Cache.QuoteTTL = 60 * time.Second
	}
	if c.Cache.HistoryTTL == 0 {
		c.Cache.HistoryTTL = 5 * time.Minute
	}
	if c.Cache.RedisPrefix == "" {
		c.Cache.RedisPrefix = "signalsage"
	}
	if c.Knowledge.TopK == 0 {
		c.Knowledge.TopK = 3
	}
	if c.Embeddings.SimilarityFloor == 0 {
		c.Embeddings.SimilarityFloor = 0.3
	}
	if c.Schedule.WatchCron == "" {
		c.Schedule.WatchCron = "0 0 * * * *"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = "console"
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	for _, p := range c.Providers.Order {
		switch p {
		case ProviderYahoo, ProviderAlphaVantage:
		default:
			return fmt.Errorf("providers.order: unknown provider %q", p)
		}
	}
	if c.Providers.Timeout <= 0 {
		return fmt.Errorf("providers.timeout must be positive")
	}
	if c.Cache.QuoteTTL <= 0 || c.Cache.HistoryTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.Knowledge.TopK < 0 {
		return fmt.Errorf("knowledge.top_k must not be negative")
	}
	if f := c.Embeddings.SimilarityFloor; f < 0 || f > 1 {
		return fmt.Errorf("embeddings.similarity_floor must be within [0,1]")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if _, err := CronParser.Parse(c.Schedule.WatchCron); err != nil {
		return fmt.Errorf("schedule.watch_cron: %w", err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("logging.encoding must be console or json")
	}
	return nil
}

// CronParser accepts six-field specs with a leading seconds field.
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
