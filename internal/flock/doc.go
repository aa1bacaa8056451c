// Package flock provides cross-platform file locking utilities.
//
// The soft signer backend holds an exclusive lock on a sidecar of the master
// key file for the lifetime of a session, so two concurrent invocations never
// race on first-use key generation. Locks are exclusive and non-blocking and
// work on both Unix and Windows systems.
//
// Usage:
//
//	file, _ := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
//	if err := flock.Exclusive(file.Fd()); err != nil {
//	    // Lock not acquired - another session owns the key
//	}
//	defer flock.Unlock(file.Fd())
package flock
