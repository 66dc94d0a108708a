// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

//go:build !(plan9 || solaris)

package cache

import (
	"github.com/gofrs/flock"
)

func tryAcquireFlock(path string) (fl flocker, err error) {
	f := flock.New(path)
	success, err := f.TryLock()
	if err != nil {
		return nil, err
	} else if !success {
		return nil, ErrLocked
	}
	return f, nil
}
