package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "pagekit.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultLivePath is the default WebSocket endpoint.
	DefaultLivePath = "/_live"

	// DefaultMetricsPath is the default Prometheus endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultNamespace is the default metrics namespace and tracer name.
	DefaultNamespace = "pagekit"
)

// Config represents the complete pagekit.json configuration.
type Config struct {
	// Name is the site name shown on the demo page.
	Name string `json:"name,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty"`

	// Live contains live session configuration.
	Live LiveConfig `json:"live,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LiveConfig contains live session settings. Durations use time.ParseDuration syntax.
type LiveConfig struct {
	Path           string   `json:"path,omitempty"`
	ReadTimeout    string   `json:"readTimeout,omitempty"`
	WriteTimeout   string   `json:"writeTimeout,omitempty"`
	Heartbeat      string   `json:"heartbeat,omitempty"`
	MaxMessageSize int64    `json:"maxMessageSize,omitempty"`
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled toggles the metrics endpoint. Nil means enabled.
	Enabled   *bool  `json:"enabled,omitempty"`
	Path      string `json:"path,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	TracerName     string `json:"tracerName,omitempty"`
	IncludeMessage bool   `json:"includeMessage,omitempty"`
}

// New returns a Config with defaults applied.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from pagekit.json in dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No " + ConfigFileName + " found at " + path).
				WithSuggestion("Create " + ConfigFileName + " or run without --config to use defaults").
				Wrap(err)
		}
		return nil, errors.New("E100").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E102").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path if it is set and exists, and returns defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return New(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(), nil
	}
	return LoadFile(path)
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Live.Path == "" {
		c.Live.Path = DefaultLivePath
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.New("E101").
			WithDetailf("port %d is out of range", c.Port).
			WithSuggestion("Use a port between 1 and 65535")
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return errors.New("E101").
			WithDetailf("unknown log level %q", c.LogLevel).
			WithSuggestion("Use one of debug, info, warn, error")
	}
	for name, value := range map[string]string{
		"live.readTimeout":  c.Live.ReadTimeout,
		"live.writeTimeout": c.Live.WriteTimeout,
		"live.heartbeat":    c.Live.Heartbeat,
	} {
		if value == "" {
			continue
		}
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return errors.New("E101").
				WithDetailf("%s: %q is not a positive duration", name, value).
				WithSuggestion(`Use a duration such as "30s"`)
		}
	}
	if c.Live.MaxMessageSize < 0 {
		return errors.New("E101").WithDetail("live.maxMessageSize must not be negative")
	}
	for _, p := range []string{c.Live.Path, c.Metrics.Path} {
		if !strings.HasPrefix(p, "/") {
			return errors.New("E101").
				WithDetailf("path %q must start with /", p)
		}
	}
	return nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// MetricsEnabled reports whether the metrics endpoint is served.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

// ReadTimeout returns the parsed live read timeout, or zero if unset.
func (c *Config) ReadTimeout() time.Duration {
	return parseDuration(c.Live.ReadTimeout)
}

// WriteTimeout returns the parsed live write timeout, or zero if unset.
func (c *Config) WriteTimeout() time.Duration {
	return parseDuration(c.Live.WriteTimeout)
}

// Heartbeat returns the parsed heartbeat interval, or zero if unset.
func (c *Config) Heartbeat() time.Duration {
	return parseDuration(c.Live.Heartbeat)
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
