package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config file locations.
const (
	// GlobalConfigFile lives under $XDG_CONFIG_HOME/tracklayout.
	GlobalConfigFile = "config.toml"
	// ProjectConfigFile is read from the working directory.
	ProjectConfigFile = ".tracklayout.toml"
	// EnvPrefix prefixes environment overrides, e.g. TRACKLAYOUT_LAYOUT_STRICT.
	EnvPrefix = "TRACKLAYOUT"
	// KeyConfig is the viper key holding an explicit config file path.
	KeyConfig = "config"
)

// NewViper returns a viper instance reading TRACKLAYOUT_* environment
// variables; nested keys use underscores (cache.redis.addr is
// TRACKLAYOUT_CACHE_REDIS_ADDR).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig loads configuration from files and viper settings.
// Precedence (later overrides earlier):
//  1. Default() values
//  2. $XDG_CONFIG_HOME/tracklayout/config.toml (global)
//  3. ./.tracklayout.toml (project)
//  4. The file named by the "config" key (--config or TRACKLAYOUT_CONFIG)
//  5. Environment variables (TRACKLAYOUT_*)
//  6. CLI flags (already bound to viper)
//
// Missing global and project files are silently ignored; an explicit file
// must exist.
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := Default()

	defaultMap, err := structToMap(cfg)
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(defaultMap); err != nil {
		return nil, err
	}

	if globalPath := globalConfigPath(); globalPath != "" {
		if err := loadConfigFile(v, globalPath); err != nil {
			return nil, err
		}
	}

	if err := loadConfigFile(v, ProjectConfigFile); err != nil {
		return nil, err
	}

	if explicitPath := v.GetString(KeyConfig); explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := loadConfigFile(v, explicitPath); err != nil {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg, viperDecodeHook()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GlobalConfigDir returns $XDG_CONFIG_HOME/tracklayout, falling back to
// ~/.config/tracklayout.
func GlobalConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, AppName)
}

// globalConfigPath returns the global config file path if it exists.
func globalConfigPath() string {
	dir := GlobalConfigDir()
	if dir == "" {
		return ""
	}
	path := filepath.Join(dir, GlobalConfigFile)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// loadConfigFile loads a TOML config file and merges it into viper.
// Returns nil if the file doesn't exist.
func loadConfigFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	fileViper := viper.New()
	fileViper.SetConfigType("toml")
	if err := fileViper.ReadConfig(file); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return v.MergeConfigMap(fileViper.AllSettings())
}

// viperDecodeHook returns the decoder config with duration and list hooks.
func viperDecodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// structToMap converts a struct to a map for viper.MergeConfigMap.
func structToMap(cfg *Config) (map[string]any, error) {
	result := make(map[string]any)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "mapstructure",
		Result:     &result,
		DecodeHook: durationToStringHook(),
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(cfg); err != nil {
		return nil, err
	}

	return result, nil
}

// durationToStringHook keeps durations human-readable in the merged map.
func durationToStringHook() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Type, data any) (any, error) {
		if from != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		return data.(time.Duration).String(), nil
	}
}
