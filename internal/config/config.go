// Package config resolves conveyor settings from flags, CONVEYOR_* environment
// variables and an optional conveyor.yaml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Keys understood in the config file and environment.
const (
	KeyBaseDir      = "base_dir"
	KeyIgnore       = "ignore"
	KeyPackagesOpts = "packages_opts"
	KeyDebug        = "debug"
)

// EnvPrefix prefixes every environment variable, e.g. CONVEYOR_BASE_DIR.
const EnvPrefix = "CONVEYOR"

// Config holds resolved settings.
type Config struct {
	BaseDir      string   `mapstructure:"base_dir"`
	Ignore       []string `mapstructure:"ignore"`
	PackagesOpts string   `mapstructure:"packages_opts"`
	Debug        bool     `mapstructure:"debug"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		BaseDir:      ".",
		Ignore:       []string{"RCS"},
		PackagesOpts: "--nobase",
	}
}

// New returns a viper instance with defaults and environment binding set up.
// Callers bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault(KeyBaseDir, d.BaseDir)
	v.SetDefault(KeyIgnore, d.Ignore)
	v.SetDefault(KeyPackagesOpts, d.PackagesOpts)
	v.SetDefault(KeyDebug, d.Debug)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file and returns the merged settings.
// file is used when given and must exist; otherwise conveyor.yaml is looked up
// in the base directory and then in ~/.config/conveyor, and may be absent.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("conveyor")
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString(KeyBaseDir))
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "conveyor"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Ignore = SplitList(cfg.Ignore...)
	return cfg, nil
}

// SplitList flattens comma-separated values and drops empty items.
func SplitList(values ...string) []string {
	var out []string
	for _, v := range values {
		for item := range strings.SplitSeq(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
