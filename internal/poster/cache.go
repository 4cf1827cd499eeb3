package poster

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/gofrs/flock"

	"github.com/kamusis/movierec/internal/metrics"
)

// CacheOptions controls the on-disk poster cache.
type CacheOptions struct {
	// Dir holds the badger files. Empty means an in-memory cache.
	Dir string
	// TTL applies to found posters; misses are kept for NegativeTTL.
	TTL         time.Duration
	NegativeTTL time.Duration
	// LockTimeout bounds how long Open waits for another process to release Dir.
	LockTimeout time.Duration
}

// Cache is a Provider that remembers another Provider's answers in badger.
type Cache struct {
	next  Provider
	db    *badger.DB
	lock  *flock.Flock
	ttl   time.Duration
	negTT time.Duration
}

// OpenCache opens (or creates) the cache in opts.Dir in front of next.
func OpenCache(next Provider, opts CacheOptions) (*Cache, error) {
	if next == nil {
		return nil, fmt.Errorf("poster cache needs a provider")
	}
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	if opts.NegativeTTL <= 0 {
		opts.NegativeTTL = opts.TTL / 7
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = 5 * time.Second
	}

	var (
		bopts badger.Options
		lock  *flock.Flock
	)
	if opts.Dir == "" {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create poster cache dir %s: %w", opts.Dir, err)
		}
		l, err := acquireCacheLock(filepath.Join(opts.Dir, "movierec.lock"), opts.LockTimeout)
		if err != nil {
			return nil, err
		}
		lock = l
		bopts = badger.DefaultOptions(opts.Dir)
	}
	bopts = bopts.WithLogger(nil)

	db, err := badger.Open(bopts)
	if err != nil {
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, fmt.Errorf("cannot open poster cache: %w", err)
	}
	return &Cache{next: next, db: db, lock: lock, ttl: opts.TTL, negTT: opts.NegativeTTL}, nil
}

// acquireCacheLock obtains the per-directory cache lock, polling until timeout.
func acquireCacheLock(path string, timeout time.Duration) (*flock.Flock, error) {
	l := flock.New(path)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire poster cache lock: %w", err)
		}
		if locked {
			return l, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("poster cache is in use by another movierec process (lock: %s)", path)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// Close releases the database and the directory lock.
func (c *Cache) Close() error {
	err := c.db.Close()
	if c.lock != nil {
		if uerr := c.lock.Unlock(); err == nil {
			err = uerr
		}
	}
	return err
}

func (c *Cache) Name() string {
	return c.next.Name() + "+cache"
}

func cacheKey(title string) []byte {
	return []byte("poster:" + strings.ToLower(strings.TrimSpace(title)))
}

// Poster answers from the cache when possible. Misses (ErrNotFound) are
// cached too; transport errors are not.
func (c *Cache) Poster(ctx context.Context, title string) (string, error) {
	key := cacheKey(title)

	var (
		cached string
		hit    bool
	)
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		cached, hit = string(v), true
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("poster cache read: %w", err)
	}
	if hit {
		metrics.PosterLookups.WithLabelValues("cache", "hit").Inc()
		if cached == "" {
			return "", ErrNotFound
		}
		return cached, nil
	}
	metrics.PosterLookups.WithLabelValues("cache", "miss").Inc()

	url, err := c.next.Poster(ctx, title)
	switch {
	case err == nil:
		c.store(key, url, c.ttl)
	case errors.Is(err, ErrNotFound):
		c.store(key, "", c.negTT)
	}
	return url, err
}

func (c *Cache) store(key []byte, value string, ttl time.Duration) {
	_ = c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key, []byte(value)).WithTTL(ttl))
	})
}
