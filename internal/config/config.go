package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	JWT    JWTConfig
	LLM    LLMConfig
	Admin  AdminConfig
	NATS   NATSConfig
	CORS   CORSConfig
	Auth   AuthConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// LLMConfig holds the two provider keys for the debate pipeline: the builder
// and auditor passes use separate credentials.
type LLMConfig struct {
	BuilderAPIKey string
	AuditorAPIKey string
	BaseURL       string
	Model         string
	MaxTokens     int
	Timeout       time.Duration
}

// AdminConfig protects the reporting endpoints with HTTP basic auth.
type AdminConfig struct {
	Username string
	Password string
}

// NATSConfig enables the audit event trail. An empty URL disables it.
type NATSConfig struct {
	URL string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig tunes the per-IP rate limit on the public auth routes.
type AuthConfig struct {
	RateLimitMax    int
	RateLimitWindow int // seconds
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		JWT: JWTConfig{
			AccessSecret:  k.String("jwt.access.secret"),
			RefreshSecret: k.String("jwt.refresh.secret"),
		},
		LLM: LLMConfig{
			BuilderAPIKey: k.String("llm.builder.api.key"),
			AuditorAPIKey: k.String("llm.auditor.api.key"),
			BaseURL:       k.String("llm.base.url"),
			Model:         k.String("llm.model"),
			MaxTokens:     k.Int("llm.max.tokens"),
		},
		Admin: AdminConfig{
			Username: k.String("admin.username"),
			Password: k.String("admin.password"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		Auth: AuthConfig{
			RateLimitMax:    k.Int("auth.ratelimit.max"),
			RateLimitWindow: k.Int("auth.ratelimit.window"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	if origins := k.String("cors.allowed.origins"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, o)
			}
		}
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "nurox"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "nurox"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama-3.1-8b-instant"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 900
	}
	if cfg.Auth.RateLimitMax == 0 {
		cfg.Auth.RateLimitMax = 10
	}
	if cfg.Auth.RateLimitWindow == 0 {
		cfg.Auth.RateLimitWindow = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	accessExpStr := k.String("jwt.access.expiry")
	if accessExpStr == "" {
		accessExpStr = "1h"
	}
	cfg.JWT.AccessExpiry, err = time.ParseDuration(accessExpStr)
	if err != nil {
		return nil, fmt.Errorf("parsing jwt access expiry: %w", err)
	}

	refreshExpStr := k.String("jwt.refresh.expiry")
	if refreshExpStr == "" {
		refreshExpStr = "168h"
	}
	cfg.JWT.RefreshExpiry, err = time.ParseDuration(refreshExpStr)
	if err != nil {
		return nil, fmt.Errorf("parsing jwt refresh expiry: %w", err)
	}

	llmTimeoutStr := k.String("llm.timeout")
	if llmTimeoutStr == "" {
		llmTimeoutStr = "60s"
	}
	cfg.LLM.Timeout, err = time.ParseDuration(llmTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("parsing llm timeout: %w", err)
	}

	return cfg, nil
}
