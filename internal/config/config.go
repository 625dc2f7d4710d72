// Package config loads client settings from an optional YAML file overlaid by
// environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"gopkg.in/yaml.v3"

	"github.com/phillip-england/hrmslite/internal/apiclient"
)

const (
	DefaultAddr         = ":3000"
	DefaultReadTimeout  = 5 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	csrfKeyLen          = 32
)

type Config struct {
	Client   ClientConfig   `yaml:"client"`
	API      APIConfig      `yaml:"api"`
	CSRF     CSRFConfig     `yaml:"csrf"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type ClientConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
	ReadTimeoutRaw  string        `yaml:"read_timeout"`
	WriteTimeoutRaw string        `yaml:"write_timeout"`
}

// APIConfig points at the HRMS backend. A zero Timeout leaves calls bounded
// only by the request context.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"-"`
	TimeoutRaw string        `yaml:"timeout"`
}

// CSRFConfig holds the form-token key as hex. An empty key gets a random one
// per process, which invalidates open forms on restart.
type CSRFConfig struct {
	KeyHex string `yaml:"key"`
	Secure bool   `yaml:"secure"`
	Key    []byte `yaml:"-"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

// Load applies defaults, then the YAML file at path (skipped when path is
// empty), then the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("CLIENT_ADDR", &c.Client.Addr)
	str("CLIENT_READ_TIMEOUT", &c.Client.ReadTimeoutRaw)
	str("CLIENT_WRITE_TIMEOUT", &c.Client.WriteTimeoutRaw)
	str("API_BASE_URL", &c.API.BaseURL)
	str("API_TIMEOUT", &c.API.TimeoutRaw)
	str("CSRF_KEY", &c.CSRF.KeyHex)
	str("TELEGRAM_BOT_TOKEN", &c.Telegram.Token)

	if v, ok := lookup("CSRF_SECURE"); ok && strings.TrimSpace(v) != "" {
		secure, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: CSRF_SECURE: %w", err)
		}
		c.CSRF.Secure = secure
	}
	if v, ok := lookup("TELEGRAM_CHAT_ID"); ok && strings.TrimSpace(v) != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("config: TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	return nil
}

func (c *Config) validateAndNormalize() error {
	if c.Client.Addr == "" {
		c.Client.Addr = DefaultAddr
	}
	read, err := parseDurationOr(c.Client.ReadTimeoutRaw, DefaultReadTimeout)
	if err != nil {
		return fmt.Errorf("config: client.read_timeout: %w", err)
	}
	c.Client.ReadTimeout = read
	write, err := parseDurationOr(c.Client.WriteTimeoutRaw, DefaultWriteTimeout)
	if err != nil {
		return fmt.Errorf("config: client.write_timeout: %w", err)
	}
	c.Client.WriteTimeout = write

	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = apiclient.DefaultBaseURL
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("config: api.base_url must start with http:// or https://")
	}
	timeout, err := parseDurationOr(c.API.TimeoutRaw, 0)
	if err != nil {
		return fmt.Errorf("config: api.timeout: %w", err)
	}
	if timeout < 0 {
		return fmt.Errorf("config: api.timeout must not be negative")
	}
	c.API.Timeout = timeout

	if err := c.CSRF.validateAndNormalize(); err != nil {
		return err
	}

	if (c.Telegram.Token == "") != (c.Telegram.ChatID == 0) {
		return fmt.Errorf("config: telegram.token and telegram.chat_id must be set together")
	}
	return nil
}

func (c *CSRFConfig) validateAndNormalize() error {
	if c.KeyHex == "" {
		c.Key = securecookie.GenerateRandomKey(csrfKeyLen)
		if c.Key == nil {
			return fmt.Errorf("config: csrf.key: unable to generate random key")
		}
		return nil
	}
	key, err := hex.DecodeString(c.KeyHex)
	if err != nil {
		return fmt.Errorf("config: csrf.key must be hex: %w", err)
	}
	if len(key) != csrfKeyLen {
		return fmt.Errorf("config: csrf.key must decode to %d bytes, got %d", csrfKeyLen, len(key))
	}
	c.Key = key
	return nil
}

func parseDurationOr(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
