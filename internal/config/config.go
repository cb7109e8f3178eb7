package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"metals-pulse/pkg/logger"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// PositiveInt decodes a strictly positive integer. Unparsable or
// non-positive values decode to zero so Load can restore the default.
type PositiveInt int

func (p *PositiveInt) Decode(value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		*p = 0
		return nil
	}
	*p = PositiveInt(n)
	return nil
}

// PositiveDuration behaves like PositiveInt for Go duration strings.
type PositiveDuration time.Duration

func (p *PositiveDuration) Decode(value string) error {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		*p = 0
		return nil
	}
	*p = PositiveDuration(d)
	return nil
}

type Config struct {
	HTTPAddr         string `envconfig:"HTTP_ADDR" default:":8080"`
	APIKey           string `envconfig:"API_KEY"`
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	RedisURL         string `envconfig:"REDIS_URL"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`

	NewsAPIKey      string           `envconfig:"NEWS_API_KEY"`
	SourceTimeout   PositiveDuration `envconfig:"SOURCE_TIMEOUT" default:"5s"`
	Subreddits      []string         `envconfig:"SUBREDDITS" default:"Gold,Silverbugs,WallStreetSilver,Platinum"`
	RedditPostLimit PositiveInt      `envconfig:"REDDIT_POST_LIMIT" default:"10"`

	MetalsAPIKey         string      `envconfig:"METALS_API_KEY"`
	PricePollSecs        PositiveInt `envconfig:"PRICE_POLL_SECS" default:"300"`
	HistoryRetentionDays PositiveInt `envconfig:"HISTORY_RETENTION_DAYS" default:"400"`
	SentimentRefreshMins PositiveInt `envconfig:"SENTIMENT_REFRESH_MINS" default:"15"`

	MomentumMode          string      `envconfig:"MOMENTUM_MODE" default:"placeholder"`
	MomentumLookbackHours PositiveInt `envconfig:"MOMENTUM_LOOKBACK_HOURS" default:"24"`

	MCPTransport string      `envconfig:"MCP_TRANSPORT" default:"stdio"`
	MCPHTTPBind  string      `envconfig:"MCP_HTTP_BIND" default:"127.0.0.1"`
	MCPHTTPPort  PositiveInt `envconfig:"MCP_HTTP_PORT" default:"8090"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
}

const (
	defaultRedisURL        = "localhost:6379"
	defaultSourceTimeout   = 5 * time.Second
	defaultRedditPostLimit = 10
	defaultPricePollSecs   = 300
	defaultRetentionDays   = 400
	defaultSentimentMins   = 15
	defaultLookbackHours   = 24
	defaultMCPHTTPPort     = 8090
	defaultOpenAIModel     = "gpt-4o-mini"

	MomentumPlaceholder = "placeholder"
	MomentumHistory     = "history"
)

var defaultSubreddits = []string{"Gold", "Silverbugs", "WallStreetSilver", "Platinum"}

func Load() *Config {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		logger.Warn("failed to process environment, using defaults", zap.Error(err))
		cfg = &Config{HTTPAddr: ":8080", LogLevel: "info", MomentumMode: MomentumPlaceholder, MCPTransport: "stdio", MCPHTTPBind: "127.0.0.1"}
	}

	if cfg.TelegramBotToken == "" {
		logger.Warn("TELEGRAM_BOT_TOKEN not set, telegram bot disabled")
	}
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, price history disabled")
	}
	if strings.TrimSpace(cfg.RedisURL) == "" {
		logger.Warn("REDIS_URL not set, defaulting to " + defaultRedisURL)
		cfg.RedisURL = defaultRedisURL
	}
	if cfg.NewsAPIKey == "" {
		logger.Warn("NEWS_API_KEY not set, news falls back to Google News")
	}
	if cfg.MetalsAPIKey == "" {
		logger.Warn("METALS_API_KEY not set, serving reference quotes")
	}
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, market brief will be disabled")
	}

	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = PositiveDuration(defaultSourceTimeout)
	}
	if cfg.RedditPostLimit <= 0 {
		cfg.RedditPostLimit = defaultRedditPostLimit
	}
	if cfg.PricePollSecs <= 0 {
		cfg.PricePollSecs = defaultPricePollSecs
	}
	if cfg.HistoryRetentionDays <= 0 {
		cfg.HistoryRetentionDays = defaultRetentionDays
	}
	if cfg.SentimentRefreshMins <= 0 {
		cfg.SentimentRefreshMins = defaultSentimentMins
	}
	if cfg.MomentumLookbackHours <= 0 {
		cfg.MomentumLookbackHours = defaultLookbackHours
	}
	if cfg.MCPHTTPPort <= 0 {
		cfg.MCPHTTPPort = defaultMCPHTTPPort
	}
	if strings.TrimSpace(cfg.OpenAIModel) == "" {
		cfg.OpenAIModel = defaultOpenAIModel
	}

	cfg.Subreddits = cleanList(cfg.Subreddits)
	if len(cfg.Subreddits) == 0 {
		cfg.Subreddits = append([]string(nil), defaultSubreddits...)
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(cfg.MCPTransport))
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		logger.Warn("unsupported MCP_TRANSPORT, defaulting to stdio", zap.String("value", cfg.MCPTransport))
		cfg.MCPTransport = "stdio"
	}

	cfg.MomentumMode = strings.ToLower(strings.TrimSpace(cfg.MomentumMode))
	if cfg.MomentumMode != MomentumPlaceholder && cfg.MomentumMode != MomentumHistory {
		logger.Warn("unsupported MOMENTUM_MODE, defaulting to placeholder", zap.String("value", cfg.MomentumMode))
		cfg.MomentumMode = MomentumPlaceholder
	}

	return cfg
}

func (c *Config) SourceTimeoutDuration() time.Duration {
	return time.Duration(c.SourceTimeout)
}

func (c *Config) PricePollInterval() time.Duration {
	return time.Duration(c.PricePollSecs) * time.Second
}

func (c *Config) HistoryRetention() time.Duration {
	return time.Duration(c.HistoryRetentionDays) * 24 * time.Hour
}

func (c *Config) SentimentRefreshInterval() time.Duration {
	return time.Duration(c.SentimentRefreshMins) * time.Minute
}

func (c *Config) MomentumLookback() time.Duration {
	return time.Duration(c.MomentumLookbackHours) * time.Hour
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv loads a .env file when present. Missing files are ignored.
func LoadDotEnv(load func(...string) error) {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := load(); err != nil {
		logger.Warn("failed to load .env", zap.Error(err))
	}
}
