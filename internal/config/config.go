// Package config loads the hestia configuration.
//
// Precedence (highest to lowest):
//  1. Environment variables (HESTIA_*, "." replaced by "_")
//  2. Configuration file
//  3. Default values
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/hestia/pkg/consts"
	herrors "github.com/turtacn/hestia/pkg/errors"
	"github.com/turtacn/hestia/pkg/protocol"
)

var validate = validator.New()

// Load reads configPath (or ./hestia.yaml when empty) merged with the environment.
// A missing file yields the defaults.
func Load(configPath string) (*protocol.Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg protocol.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, herrors.New(herrors.ErrCodeConfigInvalid, "config", "failed to unmarshal config", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix(consts.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about
	for key, val := range defaultValues() {
		v.SetDefault(key, val)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(".")
	v.SetConfigName(strings.TrimSuffix(consts.DefaultConfigFile, filepath.Ext(consts.DefaultConfigFile)))
	v.SetConfigType("yaml")
}

func defaultValues() map[string]any {
	return map[string]any{
		"environment":               consts.DefaultEnvironment,
		"server_id":                 "",
		"pid_file":                  consts.DefaultPIDFile,
		"initializers.builtin_root": consts.DefaultBuiltinRoot,
		"initializers.paths":        []string{},
		"lifecycle.settle_delay":    consts.DefaultSettleDelay,
		"lifecycle.flush_delay":     consts.DefaultFlushDelay,
		"watch.enabled":             false,
		"watch.debounce":            consts.DefaultDebounce,
		"observability.status_addr": consts.DefaultStatusAddr,
		"observability.log_level":   "info",
	}
}

// readConfigFile reports whether a config file was found. Not finding one is fine.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return false, nil
		}
		return false, herrors.New(herrors.ErrCodeConfigInvalid, "config", "failed to read config file", err)
	}
	return true, nil
}

// ApplyDefaults fills values that cannot come from viper defaults.
func ApplyDefaults(cfg *protocol.Config) {
	if cfg.ServerID == "" {
		cfg.ServerID = uuid.NewString()
	}
	if cfg.Plugins == nil {
		cfg.Plugins = map[string]protocol.PluginConfig{}
	}
}

// Validate checks the struct tags of cfg.
func Validate(cfg *protocol.Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return herrors.New(herrors.ErrCodeConfigInvalid, "config",
				fmt.Sprintf("%s failed %q validation", fe.Namespace(), fe.Tag()), err)
		}
		return herrors.New(herrors.ErrCodeConfigInvalid, "config", "validation failed", err)
	}
	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *protocol.Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Save writes cfg to path as YAML, creating the parent directory.
func Save(cfg *protocol.Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Personal.AI order the ending
