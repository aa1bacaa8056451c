package cli

import (
	"context"

	"github.com/keyfob-dev/keyfob/internal/config"
	"github.com/keyfob-dev/keyfob/internal/device"
	"github.com/keyfob-dev/keyfob/internal/errors"
	"github.com/keyfob-dev/keyfob/internal/identity"
	"github.com/keyfob-dev/keyfob/internal/session"
)

// openSession loads configuration and opens a signer session for one command
// invocation. The caller owns the returned session and must Close it on every
// exit path.
func openSession(ctx context.Context, flags *GlobalFlags) (*session.Session, *config.Config, error) {
	logger := GetLogger()
	ctx = logger.WithContext(ctx)

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	backend := cfg.Device.Backend
	if flags.Backend != "" {
		backend = flags.Backend
	}

	keyFile := cfg.Device.KeyFile
	if keyFile == "" {
		if keyFile, err = config.DefaultKeyFilePath(); err != nil {
			return nil, nil, err
		}
	}

	signer, err := device.Open(ctx, backend, device.Options{KeyFile: keyFile})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening signer backend %q", backend)
	}

	sess := session.New(signer,
		session.WithLogger(logger),
		session.WithSSHCurve(device.Curve(cfg.Device.SSHCurve)),
	)
	return sess, cfg, nil
}

// opContext bounds a signer operation with the configured timeout. Zero
// leaves the context unbounded: the device owns the wait.
func opContext(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.Timeout > 0 {
		return context.WithTimeout(ctx, cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

// resolveIdentity parses an identity string, applying the configured default
// protocol to bare strings and the default index unless overridden.
func resolveIdentity(cfg *config.Config, s string, indexSet bool, index uint32) (*identity.Identity, error) {
	id, err := identity.Parse(s)
	if err != nil {
		return nil, err
	}

	if id.Protocol == "" && cfg.Identity.DefaultProtocol != "" {
		id.Protocol = cfg.Identity.DefaultProtocol
	}
	if indexSet {
		id.Index = index
	} else {
		id.Index = cfg.Identity.DefaultIndex
	}
	return id, nil
}
