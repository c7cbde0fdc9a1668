package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Database DatabaseConfig `yaml:"database"`
	Policy   PolicyConfig   `yaml:"policy"`
	Download DownloadConfig `yaml:"download"`
	Worker   WorkerConfig   `yaml:"worker"`
	Ops      OpsConfig      `yaml:"ops"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token       string        `yaml:"token" envconfig:"BOT_TOKEN"`
	PollTimeout time.Duration `yaml:"poll_timeout" envconfig:"BOT_POLL_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds SQLite storage configuration.
type DatabaseConfig struct {
	Path string `yaml:"path" envconfig:"DB_PATH" default:"/data/tubegrab.db"`
}

// PolicyConfig holds the retrieval policy ceilings. Loaded once at startup
// and read-only for the process lifetime.
type PolicyConfig struct {
	MaxDuration time.Duration `yaml:"max_duration" envconfig:"MAX_DURATION" default:"10m"`
	MaxFileSize int64         `yaml:"max_file_size" envconfig:"MAX_FILE_SIZE" default:"52428800"` // 50MiB
}

// MaxDurationSeconds returns the duration ceiling in whole seconds.
func (p PolicyConfig) MaxDurationSeconds() int {
	return int(p.MaxDuration / time.Second)
}

// DownloadConfig holds yt-dlp invocation configuration.
type DownloadConfig struct {
	BinaryPath      string        `yaml:"binary_path" envconfig:"YTDLP_PATH" default:"yt-dlp"`
	TempPath        string        `yaml:"temp_path" envconfig:"TEMP_PATH" default:"/tmp/tubegrab"`
	Timeout         time.Duration `yaml:"timeout" envconfig:"DOWNLOAD_TIMEOUT" default:"10m"`
	MetadataTimeout time.Duration `yaml:"metadata_timeout" envconfig:"METADATA_TIMEOUT" default:"1m"`
	UserAgent       string        `yaml:"user_agent" envconfig:"DOWNLOAD_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"`
}

// WorkerConfig holds worker pool configuration.
type WorkerConfig struct {
	Count     int `yaml:"count" envconfig:"WORKER_COUNT" default:"4"`
	QueueSize int `yaml:"queue_size" envconfig:"WORKER_QUEUE_SIZE" default:"64"`
}

// OpsConfig holds the health/readiness HTTP endpoint configuration.
type OpsConfig struct {
	Addr string `yaml:"addr" envconfig:"OPS_ADDR" default:":8090"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.Policy.MaxDuration <= 0 {
		return fmt.Errorf("MAX_DURATION must be positive")
	}
	if c.Policy.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}
	return nil
}
