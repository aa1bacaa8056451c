// Package testutil provides testing utilities for keyfob.
//
// This package contains mock errors and a scriptable fake signer used across
// test files. It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockDeviceGone indicates the mock device disconnected mid-operation.
	ErrMockDeviceGone = errors.New("device disconnected")

	// ErrMockUserDenied indicates the mock user declined a confirmation.
	ErrMockUserDenied = errors.New("user denied request")

	// ErrMockDeriveFailed indicates a mock key derivation failure.
	ErrMockDeriveFailed = errors.New("derivation failed")
)
