//go:build !linux
// +build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.
// The thread is still locked, but no core binding happens.

package affinity

import "errors"

func pinPlatform(int) (func(), error) {
	return func() {}, errors.New("affinity: not supported on this platform")
}
