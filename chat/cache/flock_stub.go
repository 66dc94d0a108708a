// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

//go:build plan9 || solaris

package cache

func tryAcquireFlock(path string) (fl flocker, err error) {
	return &noopFlocker{}, nil
}
