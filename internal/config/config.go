// Package config defines keyfob's typed configuration and its layered
// loading: built-in defaults, the global config file, then KEYFOB_*
// environment variables, each layer overriding the one below.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	// Device configures the signer backend connection.
	Device DeviceConfig `mapstructure:"device" yaml:"device" json:"device"`

	// Identity configures identity parsing defaults.
	Identity IdentityConfig `mapstructure:"identity" yaml:"identity" json:"identity"`

	// Timeout bounds a single signer operation, human interaction included.
	// Zero means no timeout: the device owns the wait.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// DeviceConfig selects and parameterizes the signer backend.
type DeviceConfig struct {
	// Backend is the registered signer backend name.
	Backend string `mapstructure:"backend" yaml:"backend" json:"backend"`

	// SSHCurve is the curve used for SSH operations.
	SSHCurve string `mapstructure:"ssh_curve" yaml:"ssh_curve" json:"ssh_curve"`

	// KeyFile is the master key location for file-backed backends.
	// Empty means <global config dir>/master.key.
	KeyFile string `mapstructure:"key_file" yaml:"key_file" json:"key_file"`
}

// IdentityConfig carries identity parsing defaults.
type IdentityConfig struct {
	// DefaultIndex is used when a command does not pass --index.
	DefaultIndex uint32 `mapstructure:"default_index" yaml:"default_index" json:"default_index"`

	// DefaultProtocol is prepended to bare identity strings that carry no
	// proto:// prefix. Empty leaves bare strings untouched.
	DefaultProtocol string `mapstructure:"default_protocol" yaml:"default_protocol" json:"default_protocol"`
}
