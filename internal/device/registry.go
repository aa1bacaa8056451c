package device

import (
	"context"
	"sort"
	"sync"

	"github.com/keyfob-dev/keyfob/internal/errors"
)

// Options carries backend-specific settings from configuration.
type Options struct {
	// KeyFile is the master key location for file-backed backends.
	KeyFile string
}

// Connector opens a signer session for one backend.
type Connector func(ctx context.Context, opts Options) (Signer, error)

// Backend registry, database/sql-driver style: transports register
// themselves from their package init and are selected by name at runtime.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]Connector) //nolint:gochecknoglobals // Backend registry requires package scope
)

// Register makes a signer backend available under the given name.
// It returns ErrBackendRegistered when the name is already taken.
func Register(name string, connect Connector) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		return errors.Wrapf(errors.ErrBackendRegistered, "backend %q", name)
	}
	registry[name] = connect
	return nil
}

// MustRegister is Register for package init paths, where a duplicate
// registration is a programmer error.
func MustRegister(name string, connect Connector) {
	if err := Register(name, connect); err != nil {
		panic(err)
	}
}

// Open opens a signer session using the named backend.
func Open(ctx context.Context, name string, opts Options) (Signer, error) {
	registryMu.RLock()
	connect, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownBackend, "backend %q (registered: %v)", name, Backends())
	}
	return connect(ctx, opts)
}

// Backends returns the sorted names of all registered backends.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
