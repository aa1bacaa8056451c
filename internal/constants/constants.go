// Package constants provides centralized constant values used throughout keyfob.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

// Directory and file names used by keyfob for organizing data.
const (
	// KeyfobHome is the hidden directory name where keyfob stores all its data.
	// This directory is created in the user's home directory.
	KeyfobHome = ".keyfob"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// CLILogFileName is the name of the rotating CLI log file.
	CLILogFileName = "keyfob.log"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "config.yaml"

	// DefaultKeyFileName is the master key file used by the soft signer backend.
	DefaultKeyFileName = "master.key"
)

// EnvPrefix is the prefix for keyfob environment variables (KEYFOB_*).
const EnvPrefix = "KEYFOB"

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the maximum size of a log file before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age of a rotated log file.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true
)

// Protocol and signing constants.
const (
	// ProtocolSSH is the only protocol accepted by the SSH operations.
	ProtocolSSH = "ssh"

	// CoinName is the coin the device displays addresses for in the generic
	// signing flow.
	CoinName = "Bitcoin"

	// HiddenChallengeSize is the length of the random hidden challenge signed
	// in the generic identity flow.
	HiddenChallengeSize = 64

	// VisualTimeFormat renders the wall-clock visual challenge shown on the
	// device display (dd/mm/yy hh:mm:ss).
	VisualTimeFormat = "02/01/06 15:04:05"
)
