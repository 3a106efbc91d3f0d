// Package perm answers one question before a scan starts: may this process
// use the radio right now? The answer is platform-conditional; callers treat
// the gate as an opaque predicate.
package perm

import "context"

// Gate is the platform authorization predicate. A nil error means scanning
// and connecting may proceed; the error otherwise names what is missing.
type Gate interface {
	Ensure(ctx context.Context) error
}

// Static is a fixed-answer gate for tests and platforms without a runtime
// check.
type Static struct {
	Err error
}

func (s Static) Ensure(context.Context) error { return s.Err }

// New returns the gate for the current platform.
func New() Gate {
	return platformGate()
}
