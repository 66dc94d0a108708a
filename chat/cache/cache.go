// Copyright (c) 2022 Shivaram Lingamneni
// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

// Package cache memoizes rendered messages in a buntdb database with a TTL.
package cache

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tidwall/buntdb"
	"golang.org/x/sync/singleflight"

	"github.com/ergochat/chatfmt/chat/logger"
)

const memoryPath = ":memory:"

var (
	ErrLocked = errors.New("Couldn't acquire cache lock (is another chatfmt using it?)")
	errClosed = errors.New("Cache is closed")
)

// Options configures a Cache.
type Options struct {
	// Path of the database file; empty keeps the cache in memory
	Path string
	TTL  time.Duration
	// messages longer than this are rendered but not stored
	MaxMessageSize int
}

// Cache is a render cache. Concurrent misses on one key run the render once.
type Cache struct {
	db      *buntdb.DB
	lock    flocker
	options Options
	group   singleflight.Group
	logger  *logger.Manager
	closed  atomic.Bool

	// bumped by Purge, so renders begun before a purge are not stored
	generation atomic.Uint64

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Key builds the cache key for rendering message with the given operation.
func Key(operation string, legacy bool, message string) string {
	mode := 'm'
	if legacy {
		mode = 'l'
	}
	return fmt.Sprintf("%s %c %s", operation, mode, message)
}

// Open opens (or creates) the cache database. An on-disk database is locked
// against use by other processes for as long as it is open.
func Open(options Options, logger *logger.Manager) (cache *Cache, err error) {
	path := options.Path
	var lock flocker = &noopFlocker{}
	if path == "" {
		path = memoryPath
	} else {
		lock, err = tryAcquireFlock(path + ".lock")
		if err != nil {
			return nil, err
		}
	}

	db, err := buntdb.Open(path)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("Could not open cache %s: %w", path, err)
	}

	return &Cache{
		db:      db,
		lock:    lock,
		options: options,
		logger:  logger,
	}, nil
}

// Fetch returns the cached value for key, or calls render and stores its
// result. Storage errors are logged and do not affect the returned value.
func (c *Cache) Fetch(key string, render func() (string, error)) (value string, err error) {
	if c.closed.Load() {
		return render()
	}
	if c.options.MaxMessageSize > 0 && len(key) > c.options.MaxMessageSize {
		return render()
	}

	err = c.db.View(func(tx *buntdb.Tx) error {
		value, err = tx.Get(key)
		return err
	})
	if err == nil {
		c.hits.Add(1)
		return value, nil
	} else if err != buntdb.ErrNotFound {
		c.logError("could not read cache", err)
	}

	c.misses.Add(1)
	generation := c.generation.Load()
	flightKey := fmt.Sprintf("%d %s", generation, key)
	result, err, _ := c.group.Do(flightKey, func() (interface{}, error) {
		rendered, err := render()
		if err != nil {
			return "", err
		}
		if err := c.store(generation, key, rendered); err != nil {
			c.logError("could not write cache", err)
		}
		return rendered, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// store writes value unless the cache was purged since generation.
func (c *Cache) store(generation uint64, key, value string) error {
	var setOptions *buntdb.SetOptions
	if c.options.TTL > 0 {
		setOptions = &buntdb.SetOptions{Expires: true, TTL: c.options.TTL}
	}
	return c.db.Update(func(tx *buntdb.Tx) error {
		// Purge bumps the generation inside its own write transaction
		if c.generation.Load() != generation {
			return nil
		}
		_, _, err := tx.Set(key, value, setOptions)
		return err
	})
}

// Purge deletes every cached value, e.g. after the pattern set has changed.
func (c *Cache) Purge() error {
	if c.closed.Load() {
		return errClosed
	}
	return c.db.Update(func(tx *buntdb.Tx) error {
		c.generation.Add(1)
		return tx.DeleteAll()
	})
}

// Len returns the number of stored values. Expired values are counted
// until buntdb's background sweep removes them.
func (c *Cache) Len() (count int) {
	if c.closed.Load() {
		return 0
	}
	c.db.View(func(tx *buntdb.Tx) (err error) {
		count, err = tx.Len()
		return
	})
	return
}

// Stats returns the number of hits and misses since the cache was opened.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Close closes the database and releases the lock.
func (c *Cache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return errClosed
	}
	dbErr := c.db.Close()
	lockErr := c.lock.Unlock()
	if dbErr != nil {
		return dbErr
	}
	return lockErr
}

func (c *Cache) logError(message string, err error) {
	if c.logger != nil {
		c.logger.Error("cache", message, err.Error())
	}
}
