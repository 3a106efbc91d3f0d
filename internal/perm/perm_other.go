//go:build !linux

package perm

// The OS prompts on first radio use here; there is nothing to request up
// front.
func platformGate() Gate { return Static{} }
