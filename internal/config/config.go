// Load envs from .env
// Load YAML config
// Override with env vars
// Provide default values and validate

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks for the YAML file when no path is given.
const DefaultPath = "configs/config.yaml"

// ErrMissingBucket is returned when S3_BUCKET is not configured.
var ErrMissingBucket = errors.New("S3_BUCKET is required")

type Config struct {
	//Storage
	Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
	Prefix    string `yaml:"prefix" env:"S3_PREFIX"`
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
	Region    string `yaml:"region" env:"S3_REGION"`
	AccessKey string `yaml:"access_key" env:"AWS_ACCESS_KEY_ID"`
	SecretKey string `yaml:"secret_key" env:"AWS_SECRET_ACCESS_KEY"`
	UseSSL    bool   `yaml:"use_ssl" env:"S3_USE_SSL"`

	//Browser
	Headless      bool          `yaml:"headless" env:"HEADLESS"`
	WaitTimeout   time.Duration `yaml:"wait_timeout" env:"WAIT_TIMEOUT"`
	NavTimeout    time.Duration `yaml:"nav_timeout" env:"NAV_TIMEOUT"`
	DelayMinMs    int           `yaml:"detail_delay_min_ms" env:"DETAIL_DELAY_MIN_MS"`
	DelayMaxMs    int           `yaml:"detail_delay_max_ms" env:"DETAIL_DELAY_MAX_MS"`
	CookiesPath   string        `yaml:"cookies_path" env:"COOKIES_PATH"`
	ScreenshotDir string        `yaml:"screenshot_dir" env:"SCREENSHOT_DIR"`

	//Sinks
	DatabaseURL    string `yaml:"database_url" env:"DATABASE_URL"`
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`

	//Process
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	Port     string `yaml:"port" env:"PORT"`
	Schedule string `yaml:"schedule" env:"SCHEDULE"`
}

// Load reads .env, then the YAML file at path (DefaultPath when empty), then
// environment overrides. A missing YAML file is not an error; a missing bucket is.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{
		UseSSL:   true,
		Headless: true,
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("S3_BUCKET", &c.Bucket)
	setString("S3_PREFIX", &c.Prefix)
	setString("S3_ENDPOINT", &c.Endpoint)
	setString("S3_REGION", &c.Region)
	setString("AWS_ACCESS_KEY_ID", &c.AccessKey)
	setString("AWS_SECRET_ACCESS_KEY", &c.SecretKey)
	setString("COOKIES_PATH", &c.CookiesPath)
	setString("SCREENSHOT_DIR", &c.ScreenshotDir)
	setString("DATABASE_URL", &c.DatabaseURL)
	setString("TELEGRAM_BOT_TOKEN", &c.TelegramToken)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("PORT", &c.Port)
	setString("SCHEDULE", &c.Schedule)

	for key, dst := range map[string]*bool{"S3_USE_SSL": &c.UseSSL, "HEADLESS": &c.Headless} {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = b
		}
	}

	for key, dst := range map[string]*time.Duration{"WAIT_TIMEOUT": &c.WaitTimeout, "NAV_TIMEOUT": &c.NavTimeout} {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	for key, dst := range map[string]*int{"DETAIL_DELAY_MIN_MS": &c.DelayMinMs, "DETAIL_DELAY_MAX_MS": &c.DelayMaxMs} {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Prefix == "" {
		c.Prefix = "data/INTERN"
	}
	if c.Endpoint == "" {
		c.Endpoint = "s3.amazonaws.com"
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = 10 * time.Second
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.DelayMaxMs < c.DelayMinMs {
		c.DelayMaxMs = c.DelayMinMs
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.Schedule == "" {
		c.Schedule = "@every 24h"
	}
}

// Validate reports configuration faults that must stop the process before any crawl.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return ErrMissingBucket
	}
	if c.DelayMinMs < 0 {
		return fmt.Errorf("detail_delay_min_ms must be non-negative, got %d", c.DelayMinMs)
	}
	return nil
}

// TelegramEnabled reports whether both Telegram settings are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
