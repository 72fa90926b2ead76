package config

import (
	"fmt"
	"strings"
	"time"

	"todo_api/internal/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

type Config struct {
	Env      string
	AppPort  string
	Version  string
	LogLevel string
	LogJSON  bool

	// "*" allows any origin
	AllowedOrigins []string

	RateLimitEnabled bool
	RateLimit        int
	RateLimitWindow  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StaticDir       string
	SeedSampleTodos bool
	OverdueDays     int
	ShutdownTimeout time.Duration
}

// IsProduction reports whether internal error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// environment defaults, one entry per supported APP_ENV
type envDefaults struct {
	logLevel  string
	logJSON   bool
	origins   []string
	rateLimit bool
}

var defaults = map[string]envDefaults{
	EnvDevelopment: {logLevel: "debug", logJSON: false, origins: []string{"*"}, rateLimit: false},
	EnvStaging:     {logLevel: "info", logJSON: true, origins: nil, rateLimit: true},
	EnvProduction:  {logLevel: "warn", logJSON: true, origins: nil, rateLimit: true},
}

// rawEnv is the process environment as read by cleanenv. Settings whose
// default depends on the environment stay zero when unset and are filled
// from defaults in FromEnv.
type rawEnv struct {
	AppEnv  string `env:"APP_ENV"`
	NodeEnv string `env:"NODE_ENV"`

	Port    string `env:"PORT"`
	AppPort string `env:"APP_PORT" env-default:"3000"`
	Version string `env:"APP_VERSION" env-default:"dev"`

	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-separator:","`

	RateLimitEnabled string `env:"RATE_LIMIT_ENABLED"`
	// 100 requests per 15 minutes
	RateLimit         int `env:"API_RATE_LIMIT" env-default:"100"`
	RateWindowSeconds int `env:"API_RATE_WINDOW_SECONDS" env-default:"900"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	StaticDir              string `env:"STATIC_DIR" env-default:"frontend"`
	SeedSampleTodos        bool   `env:"SEED_SAMPLE_TODOS" env-default:"false"`
	OverdueDays            int    `env:"TODO_OVERDUE_DAYS" env-default:"7"`
	ShutdownTimeoutSeconds int    `env:"SHUTDOWN_TIMEOUT_SECONDS" env-default:"10"`
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds a Config from the process environment.
func FromEnv() (*Config, error) {
	var raw rawEnv
	if err := cleanenv.ReadEnv(&raw); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	env := firstNonEmpty(raw.AppEnv, raw.NodeEnv, EnvDevelopment)
	d, ok := defaults[env]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q", env)
	}

	logJSON := d.logJSON
	switch raw.LogFormat {
	case "json":
		logJSON = true
	case "text":
		logJSON = false
	}

	origins := d.origins
	if raw.AllowedOrigins != nil {
		origins = nil
		for _, o := range raw.AllowedOrigins {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	rateLimitEnabled := d.rateLimit
	if raw.RateLimitEnabled != "" {
		rateLimitEnabled = raw.RateLimitEnabled == "true"
	}

	if raw.RedisDB < 0 {
		return nil, fmt.Errorf("invalid REDIS_DB %d", raw.RedisDB)
	}

	return &Config{
		Env:              env,
		AppPort:          firstNonEmpty(raw.Port, raw.AppPort),
		Version:          raw.Version,
		LogLevel:         firstNonEmpty(raw.LogLevel, d.logLevel),
		LogJSON:          logJSON,
		AllowedOrigins:   origins,
		RateLimitEnabled: rateLimitEnabled,
		RateLimit:        positiveOr(raw.RateLimit, 100),
		RateLimitWindow:  time.Duration(positiveOr(raw.RateWindowSeconds, 900)) * time.Second,
		RedisAddr:        raw.RedisAddr,
		RedisPassword:    raw.RedisPassword,
		RedisDB:          raw.RedisDB,
		StaticDir:        raw.StaticDir,
		SeedSampleTodos:  raw.SeedSampleTodos,
		OverdueDays:      positiveOr(raw.OverdueDays, 7),
		ShutdownTimeout:  time.Duration(positiveOr(raw.ShutdownTimeoutSeconds, 10)) * time.Second,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func positiveOr(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}
