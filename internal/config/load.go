package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/keyfob-dev/keyfob/internal/constants"
	"github.com/keyfob-dev/keyfob/internal/errors"
)

// newViperInstance creates a Viper instance with keyfob's defaults and
// environment binding (KEYFOB_* with dots replaced by underscores).
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not
// found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (KEYFOB_* prefix)
//  2. Global config (~/.keyfob/config.yaml)
//  3. Built-in defaults
//
// A missing config file is not an error; many installs run on defaults and
// environment alone.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()
	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "config").
		Str("device.backend", cfg.Device.Backend).
		Str("device.ssh_curve", cfg.Device.SSHCurve).
		Dur("timeout", cfg.Timeout).
		Msg("configuration loaded")
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path. Tests use it to
// avoid touching the real home directory; an empty path skips the file layer.
func LoadFromPath(_ context.Context, path string) (*Config, error) {
	v := newViperInstance()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read config: %s", path)
		}
	}
	return unmarshalAndValidate(v)
}

// loadGlobalConfig attempts to load ~/.keyfob/config.yaml. A missing file or
// undeterminable home directory is skipped silently.
func loadGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil {
		return nil //nolint:nilerr // No home directory means no file layer
	}
	if _, err = os.Stat(path); err != nil {
		return nil //nolint:nilerr // Missing config file is expected
	}

	v.SetConfigFile(path)
	if err = v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// unmarshalAndValidate unmarshals viper config into Config and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// viperDecoderOption configures mapstructure to handle time.Duration
// conversion from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
