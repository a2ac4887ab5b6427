package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the brandpulse server.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Engines    EnginesConfig
	Classifier ClassifierConfig
	Run        RunConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// EnginesConfig carries per-provider credentials. An engine with an empty
// API key is simply not constructed; plan tiers can only enable engines
// that are configured here.
type EnginesConfig struct {
	Timeout    time.Duration
	OpenAI     EngineCredentials
	Anthropic  EngineCredentials
	Perplexity EngineCredentials
	Gemini     EngineCredentials
}

type EngineCredentials struct {
	APIKey string
	Model  string
}

// ClassifierConfig configures the cheap-model classification calls used to
// extract sentiment and top-recommendation status from raw answers.
type ClassifierConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// RunConfig controls pacing and scheduling of collection runs.
type RunConfig struct {
	// PacingDelay is inserted between successive engine calls to respect
	// provider rate limits.
	PacingDelay    time.Duration
	ScheduleHour   int
	ScheduleMinute int
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("BRANDPULSE_PORT", 8080),
			Env:  envString("BRANDPULSE_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Engines: EnginesConfig{
			Timeout: envDuration("ENGINE_TIMEOUT", 60*time.Second),
			OpenAI: EngineCredentials{
				APIKey: os.Getenv("OPENAI_API_KEY"),
				Model:  envString("OPENAI_ENGINE_MODEL", "gpt-4o"),
			},
			Anthropic: EngineCredentials{
				APIKey: os.Getenv("ANTHROPIC_API_KEY"),
				Model:  envString("ANTHROPIC_ENGINE_MODEL", "claude-sonnet-4-20250514"),
			},
			Perplexity: EngineCredentials{
				APIKey: os.Getenv("PERPLEXITY_API_KEY"),
				Model:  envString("PERPLEXITY_ENGINE_MODEL", "llama-3.1-sonar-large-128k-online"),
			},
			Gemini: EngineCredentials{
				APIKey: os.Getenv("GEMINI_API_KEY"),
				Model:  envString("GEMINI_ENGINE_MODEL", "gemini-1.5-pro"),
			},
		},
		Classifier: ClassifierConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   envString("PARSER_MODEL", "gpt-4o-mini"),
			Timeout: envDuration("PARSER_TIMEOUT", 30*time.Second),
		},
		Run: RunConfig{
			PacingDelay:    envDuration("RUN_PACING_DELAY", 1500*time.Millisecond),
			ScheduleHour:   envInt("RUN_SCHEDULE_HOUR", 6),
			ScheduleMinute: envInt("RUN_SCHEDULE_MINUTE", 0),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	// The classifier always runs on OpenAI, so the key is required even when
	// the OpenAI engine itself is disabled.
	if c.Classifier.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	if c.Run.PacingDelay < 0 {
		return fmt.Errorf("RUN_PACING_DELAY must not be negative")
	}
	if c.Run.ScheduleHour < 0 || c.Run.ScheduleHour > 23 {
		return fmt.Errorf("RUN_SCHEDULE_HOUR must be between 0 and 23, got %d", c.Run.ScheduleHour)
	}
	if c.Run.ScheduleMinute < 0 || c.Run.ScheduleMinute > 59 {
		return fmt.Errorf("RUN_SCHEDULE_MINUTE must be between 0 and 59, got %d", c.Run.ScheduleMinute)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
