// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"chaibuddies/internal/prompt"
)

const appName = "chaibuddies"

// Provider names understood by the models package
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderEcho   = "echo"
)

type ProviderConfig struct {
	Name          string `yaml:"name"`
	Model         string `yaml:"model,omitempty"`
	APIKey        string `yaml:"api_key,omitempty"`
	BaseURL       string `yaml:"base_url,omitempty"`
	Timeout       int    `yaml:"timeout"`        // seconds
	RetryAttempts int    `yaml:"retry_attempts"` // 1 means no retry
	RetryDelay    int    `yaml:"retry_delay"`    // milliseconds
}

type GenerationConfig struct {
	Temperature     *float64 `yaml:"temperature"`
	Tone            string   `yaml:"tone"`
	MaxOutputTokens int      `yaml:"max_output_tokens"`
}

type PresentationConfig struct {
	GreetingBaseMs   int `yaml:"greeting_base_ms"`
	GreetingSpreadMs int `yaml:"greeting_spread_ms"`
	SendBaseMs       int `yaml:"send_base_ms"`
	SendSpreadMs     int `yaml:"send_spread_ms"`
}

type Config struct {
	Provider     ProviderConfig     `yaml:"provider"`
	Generation   GenerationConfig   `yaml:"generation"`
	Presentation PresentationConfig `yaml:"presentation"`
	Personas     struct {
		File string `yaml:"file,omitempty"`
	} `yaml:"personas"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	CallLog struct {
		Path string `yaml:"path,omitempty"`
	} `yaml:"calllog"`
	Hooks struct {
		URL string `yaml:"url,omitempty"`
	} `yaml:"hooks"`
}

// Load reads the config file at path, or the default location when path is empty.
// A .env file in the working directory is loaded first so ${VARS} in the YAML resolve.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables in config
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = ProviderGemini
	}
	cfg.Provider.Name = strings.ToLower(cfg.Provider.Name)
	if cfg.Provider.Model == "" {
		switch cfg.Provider.Name {
		case ProviderGemini:
			cfg.Provider.Model = "gemini-1.5-flash"
		case ProviderOpenAI:
			cfg.Provider.Model = "gpt-4o-mini"
		}
	}
	if cfg.Provider.APIKey == "" {
		switch cfg.Provider.Name {
		case ProviderGemini:
			cfg.Provider.APIKey = os.Getenv("GEMINI_API_KEY")
		case ProviderOpenAI:
			cfg.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if cfg.Provider.Timeout == 0 {
		cfg.Provider.Timeout = 60
	}
	if cfg.Provider.RetryAttempts == 0 {
		cfg.Provider.RetryAttempts = 1
	}
	if cfg.Provider.RetryDelay == 0 {
		cfg.Provider.RetryDelay = 1000
	}

	if cfg.Generation.Temperature == nil {
		t := 0.7
		cfg.Generation.Temperature = &t
	}
	if cfg.Generation.Tone == "" {
		cfg.Generation.Tone = "default"
	}
	if cfg.Generation.MaxOutputTokens == 0 {
		cfg.Generation.MaxOutputTokens = 100
	}

	if cfg.Presentation.GreetingBaseMs == 0 {
		cfg.Presentation.GreetingBaseMs = 1000
	}
	if cfg.Presentation.GreetingSpreadMs == 0 {
		cfg.Presentation.GreetingSpreadMs = 2000
	}
	if cfg.Presentation.SendBaseMs == 0 {
		cfg.Presentation.SendBaseMs = 1200
	}
	if cfg.Presentation.SendSpreadMs == 0 {
		cfg.Presentation.SendSpreadMs = 2200
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case ProviderGemini, ProviderOpenAI, ProviderEcho:
	default:
		return fmt.Errorf("config: unknown provider %q", c.Provider.Name)
	}
	if t := *c.Generation.Temperature; t < 0 || t > 1 {
		return fmt.Errorf("config: temperature %.2f outside [0,1]", t)
	}
	if !prompt.Tone(c.Generation.Tone).Valid() {
		return fmt.Errorf("config: unknown tone %q", c.Generation.Tone)
	}
	p := c.Presentation
	if p.GreetingBaseMs < 0 || p.GreetingSpreadMs < 0 || p.SendBaseMs < 0 || p.SendSpreadMs < 0 {
		return fmt.Errorf("config: presentation delays must not be negative")
	}
	if c.Provider.RetryAttempts < 1 {
		return fmt.Errorf("config: retry_attempts must be >= 1")
	}
	return nil
}

// Temperature returns the configured sampling temperature
func (c *Config) Temperature() float64 {
	if c.Generation.Temperature == nil {
		return 0.7
	}
	return *c.Generation.Temperature
}

// ProviderTimeout returns the per-call timeout
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.Timeout) * time.Second
}

func ConfigPath() string {
	configDir, _ := os.UserConfigDir()
	if configDir == "" {
		configDir = os.ExpandEnv("$HOME/.config")
	}
	return filepath.Join(configDir, appName, "config.yaml")
}

// DataDir is where optional on-disk artifacts (call log, exports) live
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, appName), nil
}
