package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig  `toml:"server"`
	Timeouts TimeoutConfig `toml:"timeouts"`
	Polling  PollingConfig `toml:"polling"`
	Upload   UploadConfig  `toml:"upload"`
	Client   ClientConfig  `toml:"client"`
	Log      LogConfig     `toml:"log"`
}

// ServerConfig points at the remote player API.
type ServerConfig struct {
	BaseURL string `toml:"base_url"`
}

// TimeoutConfig bounds every remote call.
//
// Download is much longer than the others because the backend fetches and transcodes before it answers.
type TimeoutConfig struct {
	Request  Duration `toml:"request"`
	Upload   Duration `toml:"upload"`
	Download Duration `toml:"download"`
}

// PollingConfig contains status polling settings.
type PollingConfig struct {
	Interval    Duration `toml:"interval"`
	SettleDelay Duration `toml:"settle_delay"`
}

// UploadConfig contains client-side upload validation settings.
type UploadConfig struct {
	MaxFileSize int64    `toml:"max_file_size"`
	Formats     []string `toml:"formats"`
}

// ClientConfig contains HTTP client settings.
type ClientConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Duration is a [time.Duration] that decodes from TOML strings such as "10s" or "200ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that timeouts and intervals are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.BaseURL) == "" {
		return fmt.Errorf("%w: server.base_url is required", ErrInvalidConfig)
	}

	durations := []struct {
		name  string
		value Duration
	}{
		{"timeouts.request", c.Timeouts.Request},
		{"timeouts.upload", c.Timeouts.Upload},
		{"timeouts.download", c.Timeouts.Download},
		{"polling.interval", c.Polling.Interval},
	}
	for _, d := range durations {
		if d.value.Duration <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, d.name)
		}
	}

	if c.Polling.SettleDelay.Duration < 0 {
		return fmt.Errorf("%w: polling.settle_delay must not be negative", ErrInvalidConfig)
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("%w: upload.max_file_size must be positive", ErrInvalidConfig)
	}
	if len(c.Upload.Formats) == 0 {
		return fmt.Errorf("%w: upload.formats must not be empty", ErrInvalidConfig)
	}
	if c.Client.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: client.requests_per_second must not be negative", ErrInvalidConfig)
	}

	return nil
}
