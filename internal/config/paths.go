package config

import (
	"os"
	"path/filepath"

	"github.com/keyfob-dev/keyfob/internal/constants"
	"github.com/keyfob-dev/keyfob/internal/errors"
)

// GlobalConfigDir returns the path to the keyfob configuration directory,
// typically ~/.keyfob.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.KeyfobHome), nil
}

// GlobalConfigPath returns the full path to the configuration file,
// typically ~/.keyfob/config.yaml.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// DefaultKeyFilePath returns the default master key location for file-backed
// backends, typically ~/.keyfob/master.key.
func DefaultKeyFilePath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.DefaultKeyFileName), nil
}
