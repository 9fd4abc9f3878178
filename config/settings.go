// Package config provides configuration structures for the ordered list server and client.
// Settings are read from an optional YAML file and then overridden by command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort            = "3001"
	DefaultSeedCount       = 1_000_000
	DefaultItemFormat      = "Item %d"
	DefaultPageSize        = 20
	DefaultMaxPageSize     = 1000
	DefaultMaxRequestBytes = 1 << 20
	DefaultShutdownTimeout = 10 * time.Second
	DefaultClientTimeout   = 10 * time.Second
	DefaultBaseURL         = "http://localhost:3001"
)

// ServerSettings contains all configuration options for the list server.
type ServerSettings struct {
	Port string `yaml:"port"`

	// SeedCount records named by ItemFormat (formatted with the record id) are created at startup.
	// nil means unset; an explicit 0 starts with an empty collection.
	SeedCount  *int   `yaml:"seed_count"`
	ItemFormat string `yaml:"item_format"`

	DefaultPageSize int   `yaml:"default_page_size"`
	MaxPageSize     int   `yaml:"max_page_size"`
	MaxRequestBytes int64 `yaml:"max_request_bytes"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // "json" or "console"

	EnableGzip         bool     `yaml:"enable_gzip"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	// RoutePrefixes lists the path prefixes the item routes are mounted under; "" is the root.
	RoutePrefixes []string `yaml:"route_prefixes"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ClientSettings configures the HTTP transport used by the optimistic coordinator.
type ClientSettings struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	PageSize int           `yaml:"page_size"`
}

// ApplyDefaults applies default values to unset server settings
func (s *ServerSettings) ApplyDefaults() {
	if s.Port == "" {
		s.Port = DefaultPort
	}
	if s.SeedCount == nil {
		s.SeedCount = SeedCount(DefaultSeedCount)
	}
	if s.ItemFormat == "" {
		s.ItemFormat = DefaultItemFormat
	}
	if s.DefaultPageSize == 0 {
		s.DefaultPageSize = DefaultPageSize
	}
	if s.MaxPageSize == 0 {
		s.MaxPageSize = DefaultMaxPageSize
	}
	if s.MaxRequestBytes == 0 {
		s.MaxRequestBytes = DefaultMaxRequestBytes
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.LogFormat == "" {
		s.LogFormat = "json"
	}
	if s.CORSAllowedOrigins == nil {
		s.CORSAllowedOrigins = []string{"*"}
	}
	if s.RoutePrefixes == nil {
		s.RoutePrefixes = []string{"", "/api"}
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// SeedCount returns a pointer to n for use in ServerSettings.SeedCount.
func SeedCount(n int) *int {
	return &n
}

// Seeds returns the number of records to create at startup, 0 if unset.
func (s *ServerSettings) Seeds() int {
	if s.SeedCount == nil {
		return 0
	}
	return *s.SeedCount
}

// ValidateFields returns one message per invalid setting
func (s *ServerSettings) ValidateFields() []string {
	var errors []string

	if s.Seeds() < 0 {
		errors = append(errors, "seed_count cannot be negative")
	}
	if !strings.Contains(s.ItemFormat, "%d") {
		errors = append(errors, "item_format must contain a %d verb for the record id")
	}
	if s.DefaultPageSize < 1 {
		errors = append(errors, "default_page_size must be greater than 0")
	}
	if s.MaxPageSize < s.DefaultPageSize {
		errors = append(errors, "max_page_size must be at least default_page_size")
	}
	if s.MaxRequestBytes < 1 {
		errors = append(errors, "max_request_bytes must be greater than 0")
	}
	if s.LogFormat != "json" && s.LogFormat != "console" {
		errors = append(errors, "Invalid log_format '"+s.LogFormat+"' (must be 'json' or 'console')")
	}
	seen := make(map[string]bool)
	for _, prefix := range s.RoutePrefixes {
		if prefix != "" && (!strings.HasPrefix(prefix, "/") || strings.HasSuffix(prefix, "/")) {
			errors = append(errors, "Route prefix '"+prefix+"' must start with '/' and not end with '/'")
		}
		if seen[prefix] {
			errors = append(errors, "Duplicate route prefix '"+prefix+"'")
		}
		seen[prefix] = true
	}

	return errors
}

// ApplyDefaults applies default values to unset client settings
func (s *ClientSettings) ApplyDefaults() {
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultClientTimeout
	}
	if s.PageSize == 0 {
		s.PageSize = DefaultPageSize
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
}

// fileSettings is the on-disk layout of a config file.
type fileSettings struct {
	Server ServerSettings `yaml:"server"`
	Client ClientSettings `yaml:"client"`
}

// LoadFile reads server and client settings from a YAML file. Defaults are not applied.
func LoadFile(path string) (ServerSettings, ClientSettings, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's --config flag
	if err != nil {
		return ServerSettings{}, ClientSettings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fs fileSettings
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return ServerSettings{}, ClientSettings{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fs.Server, fs.Client, nil
}
