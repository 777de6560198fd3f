// Package kvengine binds the ordered key/value engine spec §1 treats as
// an external collaborator to a concrete implementation: go.etcd.io/bbolt.
// A bbolt bucket plays the role of a "tree": byte-sorted keys, cursor-based
// prefix/range/last access, and per-bucket atomic batch application.
package kvengine

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	bolt "go.etcd.io/bbolt"
)

// Options configures Open.
type Options struct {
	// LockTimeout bounds how long each open attempt waits for the
	// exclusive file lock bbolt takes on its data file.
	LockTimeout time.Duration
	// RetryMaxElapsed bounds the total time Open spends retrying a
	// transient lock-contention failure.
	RetryMaxElapsed time.Duration
}

// DefaultOptions returns the options used when the caller supplies none.
func DefaultOptions() Options {
	return Options{
		LockTimeout:     2 * time.Second,
		RetryMaxElapsed: 5 * time.Second,
	}
}

// Engine is a single handle to the on-disk store, shared across goroutines
// per spec §5 ("a single handle ... must itself be safe to share across
// threads").
type Engine struct {
	db *bolt.DB
}

// Open opens (creating if absent) the bbolt file at path, retrying
// transient lock-contention errors with bounded exponential backoff
// (spec §4.I).
func Open(path string, opts Options) (*Engine, error) {
	if opts.LockTimeout <= 0 {
		opts = DefaultOptions()
	}

	var db *bolt.DB
	openOnce := func() error {
		d, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: opts.LockTimeout})
		if err != nil {
			return err
		}
		db = d
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = opts.RetryMaxElapsed
	ctx, cancel := context.WithTimeout(context.Background(), opts.RetryMaxElapsed+opts.LockTimeout)
	defer cancel()

	if err := backoff.Retry(openOnce, backoff.WithContext(bo, ctx)); err != nil {
		return nil, wrapErr("open", err)
	}
	return &Engine{db: db}, nil
}

// Close releases the underlying file handle.
func (e *Engine) Close() error {
	if err := e.db.Close(); err != nil {
		return wrapErr("close", err)
	}
	return nil
}

// OpenTree returns a handle to the named keyspace. The underlying bucket
// is created lazily on first write; reads against a tree with no bucket
// yet behave as an empty tree.
func (e *Engine) OpenTree(name string) (Tree, error) {
	return &boltTree{db: e.db, name: []byte(name)}, nil
}

// TreeNames lists every keyspace that currently has at least one
// persisted record or has been written to at least once.
func (e *Engine) TreeNames() ([]string, error) {
	var names []string
	err := e.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	if err != nil {
		return nil, wrapErr("tree names", err)
	}
	return names, nil
}
