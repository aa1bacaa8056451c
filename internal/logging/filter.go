// Package logging provides logging utilities including sensitive data filtering.
// This package contains hooks and utilities for zerolog that help ensure key
// material is never written to log files.
package logging

import (
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// sensitivePatterns contains compiled regular expressions for detecting key
// material and device secrets in free-form text.
var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// BIP32 extended private keys (xprv..., tprv... on testnet)
	regexp.MustCompile(`[xt]prv[1-9A-HJ-NP-Za-km-z]{20,}`),

	// PEM private key blocks
	regexp.MustCompile(`(?i)-----BEGIN[A-Z\s]+PRIVATE KEY-----`),

	// Labeled seeds and private keys with hex or base64 values
	regexp.MustCompile(`(?i)(seed|private[_-]?key|master[_-]?key)\s*[:=]\s*["']?[a-zA-Z0-9+/=]{16,}["']?`),

	// Device PINs and passphrases with values
	regexp.MustCompile(`(?i)(pin|passphrase|password)\s*[:=]\s*["']?[^\s"']{4,}["']?`),

	// Labeled hidden challenges (random bytes that enter the signed digest)
	regexp.MustCompile(`(?i)hidden[_-]?challenge\s*[:=]\s*["']?[a-zA-Z0-9+/=]{16,}["']?`),
}

// sensitiveFieldNames contains field names that should always have their
// values redacted. Case-insensitive matching is performed.
var sensitiveFieldNames = []string{ //nolint:gochecknoglobals // Package-level patterns for reuse
	"seed",
	"private_key",
	"privatekey",
	"private-key",
	"master_key",
	"masterkey",
	"master-key",
	"xprv",
	"hidden_challenge",
	"hiddenchallenge",
	"hidden-challenge",
	"pin",
	"passphrase",
	"password",
	"secret",
}

// SensitiveDataHook is a zerolog hook that flags log entries containing key
// material. Zerolog hooks cannot rewrite the message, so the real filtering
// happens in FilteringWriter and at call sites via SafeValue; the hook marks
// entries that slipped through for audit.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements the zerolog.Hook interface.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData checks if a string contains any sensitive data patterns.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces any matches of sensitive patterns with
// [REDACTED].
func FilterSensitiveValue(value string) string {
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveFieldName checks if a field name indicates key material.
func IsSensitiveFieldName(fieldName string) bool {
	lowerName := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if lowerName == sensitive || strings.Contains(lowerName, sensitive) {
			return true
		}
	}
	return false
}

// SafeValue returns a filtered value for a field, redacting the whole value
// when the field name itself indicates key material.
//
// Usage:
//
//	log.Info().Str("key_file", logging.SafeValue("key_file", path)).Msg("loaded")
func SafeValue(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// FilteringWriter wraps an io.Writer and filters sensitive data from output.
// The rotating log file writer is wrapped with it so key material never
// reaches disk even when a log call site forgets to redact.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a new FilteringWriter that wraps the given writer.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer, filtering sensitive data before writing.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	_, err = fw.w.Write([]byte(filtered))
	if err != nil {
		return 0, err
	}
	// Return the original length so callers don't see a short write.
	return len(p), nil
}
