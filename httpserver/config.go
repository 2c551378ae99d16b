package httpserver

import "fmt"

// Config holds the HTTP server's listen address and timeouts.
type Config struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`

	// TelemetryEndpoint is the OTLP HTTP collector (host:port) that traces
	// and /v1/run metrics export to. Left empty, serve runs without an
	// OpenTelemetry exporter.
	TelemetryEndpoint string `yaml:"telemetry_endpoint" mapstructure:"telemetry_endpoint"`
	TelemetryInsecure bool   `yaml:"telemetry_insecure" mapstructure:"telemetry_insecure"`
}

// ApplyDefaults sets sensible defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8088
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("httpserver: port must be between 0 and 65535 (got %d)", c.Port)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("httpserver: timeouts must be non-negative")
	}
	return nil
}
