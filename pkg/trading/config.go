package trading

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config selects and authenticates one backend. It is read once at client
// construction and never mutated afterwards; exactly one Config is bound per
// TradingClient instance.
type Config struct {
	// Backend names the registered adapter, e.g. "alpaca" or "mock".
	Backend string `yaml:"backend"`

	Key    string `yaml:"key"`
	Secret string `yaml:"secret"`

	// Endpoint overrides the backend's default base URL when set.
	Endpoint string `yaml:"endpoint"`

	// Paper selects the backend's paper-trading environment.
	Paper bool `yaml:"paper"`

	// StreamRetries bounds consecutive reconnect attempts of the
	// subscription engine. Zero selects the default budget.
	StreamRetries int `yaml:"stream_retries"`
}

func (c Config) Validate() error {
	if c.Backend == "" {
		return &ConfigError{Field: "backend", Reason: "must not be empty"}
	}
	if c.Endpoint != "" && !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		return &ConfigError{Field: "endpoint", Reason: "must be an http(s) URL, got " + c.Endpoint}
	}
	if c.StreamRetries < 0 {
		return &ConfigError{Field: "stream_retries", Reason: "must not be negative"}
	}
	return nil
}

// LoadConfig reads a yaml configuration file. Credential environment
// variables override the file so secrets can stay out of it:
// TRADING_API_KEY and TRADING_API_SECRET.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "fail read config file")
	}

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WithMessage(err, "fail parse config file")
	}

	if key := os.Getenv("TRADING_API_KEY"); key != "" {
		cfg.Key = key
	}
	if secret := os.Getenv("TRADING_API_SECRET"); secret != "" {
		cfg.Secret = secret
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
