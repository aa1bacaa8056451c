package config

import (
	"github.com/spf13/viper"

	"github.com/keyfob-dev/keyfob/internal/constants"
	"github.com/keyfob-dev/keyfob/internal/device"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Backend:  "soft",
			SSHCurve: string(device.CurveNISTP256),
			KeyFile:  "",
		},
		Identity: IdentityConfig{
			DefaultIndex:    0,
			DefaultProtocol: constants.ProtocolSSH,
		},
		Timeout: 0,
	}
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tag names exactly.
func setDefaults(v *viper.Viper) {
	v.SetDefault("device.backend", "soft")
	v.SetDefault("device.ssh_curve", string(device.CurveNISTP256))
	v.SetDefault("device.key_file", "")

	v.SetDefault("identity.default_index", 0)
	v.SetDefault("identity.default_protocol", constants.ProtocolSSH)

	v.SetDefault("timeout", "0s")
}
