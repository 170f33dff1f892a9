package protocol

import "time"

// Config represents the root configuration of a hestia managed server.
type Config struct {
	Environment   string                  `mapstructure:"environment" yaml:"environment" validate:"required"`
	ServerID      string                  `mapstructure:"server_id" yaml:"server_id"`
	PIDFile       string                  `mapstructure:"pid_file" yaml:"pid_file" validate:"required"`
	Initializers  InitializersConfig      `mapstructure:"initializers" yaml:"initializers"`
	Plugins       map[string]PluginConfig `mapstructure:"plugins" yaml:"plugins,omitempty" validate:"dive"`
	Lifecycle     LifecycleConfig         `mapstructure:"lifecycle" yaml:"lifecycle"`
	Watch         WatchConfig             `mapstructure:"watch" yaml:"watch"`
	Observability ObservabilityConfig     `mapstructure:"observability" yaml:"observability"`
}

type InitializersConfig struct {
	BuiltinRoot string   `mapstructure:"builtin_root" yaml:"builtin_root"`
	Paths       []string `mapstructure:"paths" yaml:"paths"` // project search paths, in order
}

type PluginConfig struct {
	Path     string            `mapstructure:"path" yaml:"path" validate:"required"`
	Metadata map[string]string `mapstructure:"metadata" yaml:"metadata,omitempty"`
}

type LifecycleConfig struct {
	SettleDelay time.Duration `mapstructure:"settle_delay" yaml:"settle_delay" validate:"gte=0"` // pause around the stop phase
	FlushDelay  time.Duration `mapstructure:"flush_delay" yaml:"flush_delay" validate:"gte=0"`   // pause before fatal exit
}

type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce" validate:"gte=0"`
}

type ObservabilityConfig struct {
	StatusAddr string `mapstructure:"status_addr" yaml:"status_addr"` // empty disables the status server
	LogLevel   string `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info notice warn warning error emerg"`
}

// Plugin describes an externally registered source of initializers.
// Only Path is interpreted; Metadata is carried for status reporting.
type Plugin struct {
	Name     string            `json:"name"`
	Path     string            `json:"path"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Personal.AI order the ending
