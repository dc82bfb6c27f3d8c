package config

import (
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

const envPrefix = "MARKETGAP"

// Load reads a YAML config file, layers MARKETGAP_* environment overrides on
// top, then applies defaults and validates.  path may be empty to run on
// defaults and environment alone.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "read config file")
		}
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a configuration from defaults and environment only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "unmarshal configuration")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
