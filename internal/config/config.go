package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

type Config struct {
	Yahoo     Yahoo
	HTTP      HTTP
	Cache     Cache
	Engine    Engine
	Telegram  Telegram
	Scheduler Scheduler
	Log       Log
}

type Yahoo struct {
	ClientID     string `envconfig:"YAHOO_CLIENT_ID" required:"true"`
	ClientSecret string `envconfig:"YAHOO_CLIENT_SECRET" required:"true"`
	BaseURL      string `envconfig:"YAHOO_BASE_URL" default:"https://fantasysports.yahooapis.com/fantasy/v2"`
	TokenURL     string `envconfig:"YAHOO_TOKEN_URL" default:"https://api.login.yahoo.com/oauth2/get_token"`
	// RefreshToken authenticates background jobs that run without a caller.
	RefreshToken string        `envconfig:"YAHOO_REFRESH_TOKEN"`
	Timeout      time.Duration `envconfig:"YAHOO_TIMEOUT" default:"30s"`
	MaxRetries   int           `envconfig:"YAHOO_MAX_RETRIES" default:"3"`
	BaseBackoff  time.Duration `envconfig:"YAHOO_BASE_BACKOFF" default:"500ms"`
	MaxBackoff   time.Duration `envconfig:"YAHOO_MAX_BACKOFF" default:"8s"`
	Timezone     string        `envconfig:"LEAGUE_TIMEZONE" default:"America/New_York"`
}

type HTTP struct {
	Addr           string        `envconfig:"HTTP_ADDR" default:":8080"`
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" default:"*"`
	PrimeDelay     time.Duration `envconfig:"STREAM_PRIME_DELAY" default:"1s"`
	ReplayDelay    time.Duration `envconfig:"STREAM_REPLAY_DELAY" default:"250ms"`
}

type Cache struct {
	Backend     string        `envconfig:"CACHE_BACKEND" default:"memory"`
	RedisURL    string        `envconfig:"REDIS_URL"`
	RedisTTL    time.Duration `envconfig:"REDIS_TTL" default:"0s"`
	PostgresDSN string        `envconfig:"POSTGRES_DSN"`
	SQLitePath  string        `envconfig:"SQLITE_PATH" default:"wrapped.db"`
}

type Engine struct {
	MetricTimeout     time.Duration `envconfig:"METRIC_TIMEOUT" default:"5m"`
	RosterConcurrency int           `envconfig:"ROSTER_CONCURRENCY" default:"8"`
}

type Telegram struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

func (t Telegram) Enabled() bool {
	return t.Token != ""
}

type Scheduler struct {
	WarmCron string   `envconfig:"WARM_CRON"`
	Leagues  []string `envconfig:"WARM_LEAGUES"`
}

type Log struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Cache.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis cache"))
		}
	case BackendPostgres:
		if c.Cache.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres cache"))
		}
	case BackendSQLite:
		if c.Cache.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend))
	}

	if c.Scheduler.WarmCron != "" {
		if _, err := cron.ParseStandard(c.Scheduler.WarmCron); err != nil {
			errs = append(errs, fmt.Errorf("invalid WARM_CRON %q: %w", c.Scheduler.WarmCron, err))
		}
		if len(c.Scheduler.Leagues) == 0 {
			errs = append(errs, errors.New("WARM_LEAGUES is required when WARM_CRON is set"))
		}
		if c.Yahoo.RefreshToken == "" {
			errs = append(errs, errors.New("YAHOO_REFRESH_TOKEN is required when WARM_CRON is set"))
		}
	}

	if c.Telegram.Enabled() && c.Telegram.ChatID == 0 {
		errs = append(errs, errors.New("CHAT_ID is required when TELEGRAM_TOKEN is set"))
	}
	if c.Engine.RosterConcurrency < 1 {
		errs = append(errs, errors.New("ROSTER_CONCURRENCY must be at least 1"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location is the timezone league dates and transaction timestamps are
// interpreted in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Yahoo.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid LEAGUE_TIMEZONE %q: %w", c.Yahoo.Timezone, err)
	}
	return loc, nil
}

func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.Log.Level, err)
	}
	return level, nil
}
