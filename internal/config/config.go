package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/mastermind-server/internal/mastermind"
)

type Duration struct{ time.Duration }

// [Duration] implements [json.Marshaler]
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		return err
	default:
		return errors.New("invalid duration")
	}
}

type Log struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

type Game struct {
	Rules      string   `json:"rules"`
	Store      string   `json:"store"`
	SQLitePath string   `json:"sqlite_path"`
	RedisAddr  string   `json:"redis_addr"`
	SessionTTL Duration `json:"session_ttl"`
}

func (g Game) RuleKind() mastermind.RuleKind {
	k, err := mastermind.ParseRuleKind(g.Rules)
	if err != nil {
		return mastermind.RandomRules
	}
	return k
}

type Config struct {
	Mode     string   `json:"mode"`
	Addr     string   `json:"addr"`
	Log      Log      `json:"log"`
	Game     Game     `json:"game"`
	Postgres Postgres `json:"postgres"`
	Jwt      Jwt      `json:"jwt"`
	Cookies  Cookies  `json:"cookies"`
}

func Default() *Config {
	return &Config{
		Mode: "development",
		Addr: ":8080",
		Log: Log{
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Game: Game{
			Rules:      mastermind.RandomRules.String(),
			Store:      StoreMemory,
			SQLitePath: "mastermind.db",
			SessionTTL: Duration{24 * time.Hour},
		},
		Postgres: Postgres{Port: 5432, SSLMode: "disable"},
		Jwt:      Jwt{TokenLifetime: Duration{30 * 24 * time.Hour}},
	}
}

// Load reads the optional .env file and the JSON config at path, then
// applies environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("unable to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		if err := ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("unable to read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func ReadConfig(path string, config *Config) error {
	if b, err := os.ReadFile(path); err != nil {
		return err
	} else {
		return json.Unmarshal(b, config)
	}
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("APP_ADDR"); ok {
		c.Addr = v
	}
	if v, ok := os.LookupEnv("DEVELOPMENT"); ok {
		if v != "0" {
			c.Mode = "development"
		} else {
			c.Mode = "production"
		}
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv("GAME_RULES"); ok {
		c.Game.Rules = v
	}
	if v, ok := os.LookupEnv("GAME_STORE"); ok {
		c.Game.Store = v
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		c.Game.RedisAddr = v
	}
	if v, ok := os.LookupEnv("COOKIES_DOMAIN"); ok {
		c.Cookies.Domain = v
	}
	if v, ok := os.LookupEnv("COOKIES_SECURE"); ok {
		c.Cookies.Secure = v != "0"
	}
	return c.Postgres.applyEnv()
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if _, err := mastermind.ParseRuleKind(c.Game.Rules); err != nil {
		return fmt.Errorf("game.rules: %w", err)
	}
	switch c.Game.Store {
	case StoreMemory, StoreSQLite:
	case StoreRedis:
		if c.Game.RedisAddr == "" {
			return errors.New("game.redis_addr is required for the redis store")
		}
	default:
		return fmt.Errorf("game.store: unknown store %q", c.Game.Store)
	}
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}

func (c Config) Production() bool {
	return c.Mode == "production"
}

func (c Config) Development() bool {
	return c.Mode != "production"
}

// LogLevel returns the configured level, Debug in development and Info
// otherwise.
func (c Config) LogLevel() logrus.Level {
	if level, err := logrus.ParseLevel(c.Log.Level); err == nil {
		return level
	}
	if c.Development() {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}

func (c Config) Fields() logrus.Fields {
	return map[string]any{
		"mode":               c.Mode,
		"addr":               c.Addr,
		"log_level":          c.LogLevel().String(),
		"log_file":           c.Log.File,
		"game_rules":         c.Game.Rules,
		"game_store":         c.Game.Store,
		"game_session_ttl":   c.Game.SessionTTL.String(),
		"pg_enabled":         c.Postgres.Enabled(),
		"pg_host":            c.Postgres.Host,
		"pg_port":            c.Postgres.Port,
		"pg_user":            c.Postgres.User,
		"pg_db_name":         c.Postgres.DbName,
		"jwt_token_lifetime": c.Jwt.TokenLifetime.String(),
		"cookies_domain":     c.Cookies.Domain,
		"cookies_secure":     c.Cookies.Secure,
	}
}
