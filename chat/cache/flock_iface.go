// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package cache

// flock.Flock does not implement sync.Locker: its Unlock returns an error.
type flocker interface {
	Unlock() error
}

type noopFlocker struct{}

func (n *noopFlocker) Unlock() error {
	return nil
}
