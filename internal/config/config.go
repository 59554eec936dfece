// Package config loads process configuration from the environment and flags.
package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by the server and the CLI.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	APIKey      string  `env:"API_KEY"`
	Provider    string  `env:"CAROUSEL_PROVIDER" envDefault:"gemini"`
	Model       string  `env:"CAROUSEL_MODEL"`
	BaseURL     string  `env:"CAROUSEL_BASE_URL"`
	Language    string  `env:"CAROUSEL_LANGUAGE" envDefault:"Vietnamese"`
	Temperature float32 `env:"CAROUSEL_TEMPERATURE" envDefault:"0.7"`

	PlannerTimeout time.Duration `env:"CAROUSEL_PLANNER_TIMEOUT" envDefault:"120s"`

	DataDir     string   `env:"CAROUSEL_DATA_DIR" envDefault:"data"`
	FontDirs    []string `env:"CAROUSEL_FONT_DIRS" envSeparator:":"`
	SystemFonts bool     `env:"CAROUSEL_SYSTEM_FONTS" envDefault:"true"`

	RenderWorkers int           `env:"CAROUSEL_RENDER_WORKERS" envDefault:"4"`
	FetchTimeout  time.Duration `env:"CAROUSEL_FETCH_TIMEOUT" envDefault:"10s"`
	MaxImageBytes int64         `env:"CAROUSEL_MAX_IMAGE_BYTES" envDefault:"20971520"`

	// AllowedHosts limits remote image fetches; empty allows any host.
	AllowedHosts []string `env:"CAROUSEL_ALLOWED_HOSTS" envSeparator:","`
}

// Providers accepted for Provider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment, then lets flags in fs override it.
// Callers may register extra flags on fs before calling Load.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "planner backend: gemini or openai")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "planner model name")
	fs.StringVar(&cfg.Language, "language", cfg.Language, "language of the generated carousel")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory holding preset catalogs")
	fs.IntVar(&cfg.RenderWorkers, "workers", cfg.RenderWorkers, "slides rendered concurrently")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.RenderWorkers < 1 {
		c.RenderWorkers = 1
	}
	if c.Model == "" {
		c.Model = c.DefaultModel()
	}
	return nil
}

// DefaultModel returns the model used when none is configured.
func (c Config) DefaultModel() string {
	if c.Provider == ProviderOpenAI {
		return "gpt-4o-mini"
	}
	return "gemini-2.5-flash"
}
