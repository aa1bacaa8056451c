package config

import (
	"strings"

	"github.com/keyfob-dev/keyfob/internal/device"
	"github.com/keyfob-dev/keyfob/internal/errors"
)

// Validate checks a configuration for structural problems. Whether the named
// backend is actually registered is checked at session open, not here, since
// backends register from package init.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if cfg.Device.Backend == "" {
		return errors.Wrap(errors.ErrConfigInvalidDevice, "backend must not be empty")
	}

	switch device.Curve(cfg.Device.SSHCurve) {
	case device.CurveNISTP256, device.CurveSECP256K1:
	default:
		return errors.Wrapf(errors.ErrConfigInvalidDevice,
			"ssh_curve %q (supported: %s, %s)", cfg.Device.SSHCurve, device.CurveNISTP256, device.CurveSECP256K1)
	}

	if cfg.Timeout < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidDevice, "timeout %s must not be negative", cfg.Timeout)
	}

	// The default protocol is substituted into identity strings verbatim, so
	// it must not smuggle grammar delimiters in.
	if strings.ContainsAny(cfg.Identity.DefaultProtocol, ":/@") {
		return errors.Wrapf(errors.ErrConfigInvalidIdentity,
			"default_protocol %q contains delimiter characters", cfg.Identity.DefaultProtocol)
	}

	return nil
}
