package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfob-dev/keyfob/internal/device"
	"github.com/keyfob-dev/keyfob/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "soft", cfg.Device.Backend)
	assert.Equal(t, string(device.CurveNISTP256), cfg.Device.SSHCurve)
	assert.Equal(t, "ssh", cfg.Identity.DefaultProtocol)
	assert.Zero(t, cfg.Identity.DefaultIndex)
	assert.NoError(t, Validate(cfg))
}

func TestLoadFromPath(t *testing.T) {
	t.Run("empty path yields defaults", func(t *testing.T) {
		cfg, err := LoadFromPath(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadFromPath(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "soft", cfg.Device.Backend)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
device:
  backend: trezor
  key_file: /var/lib/keyfob/master.key
identity:
  default_index: 7
timeout: 90s
`), 0o600))

		cfg, err := LoadFromPath(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "trezor", cfg.Device.Backend)
		assert.Equal(t, "/var/lib/keyfob/master.key", cfg.Device.KeyFile)
		assert.Equal(t, uint32(7), cfg.Identity.DefaultIndex)
		assert.Equal(t, 90*time.Second, cfg.Timeout)
		// Untouched keys keep their defaults.
		assert.Equal(t, string(device.CurveNISTP256), cfg.Device.SSHCurve)
	})

	t.Run("invalid file values fail validation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("device:\n  ssh_curve: ed25519\n"), 0o600))

		_, err := LoadFromPath(context.Background(), path)
		assert.ErrorIs(t, err, errors.ErrConfigInvalidDevice)
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir()) // keep the real global config out of the test
	t.Setenv("KEYFOB_DEVICE_BACKEND", "trezor")
	t.Setenv("KEYFOB_TIMEOUT", "30s")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "trezor", cfg.Device.Backend)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults are valid", func(*Config) {}, nil},
		{"secp256k1 ssh curve allowed", func(c *Config) { c.Device.SSHCurve = string(device.CurveSECP256K1) }, nil},
		{"empty backend", func(c *Config) { c.Device.Backend = "" }, errors.ErrConfigInvalidDevice},
		{"unknown curve", func(c *Config) { c.Device.SSHCurve = "ed25519" }, errors.ErrConfigInvalidDevice},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, errors.ErrConfigInvalidDevice},
		{"protocol with delimiters", func(c *Config) { c.Identity.DefaultProtocol = "ssh://" }, errors.ErrConfigInvalidIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	t.Run("nil config", func(t *testing.T) {
		assert.ErrorIs(t, Validate(nil), errors.ErrConfigNil)
	})
}

func TestPaths(t *testing.T) {
	dir, err := GlobalConfigDir()
	require.NoError(t, err)
	assert.Equal(t, ".keyfob", filepath.Base(dir))

	path, err := GlobalConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), path)

	keyFile, err := DefaultKeyFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "master.key"), keyFile)
}
