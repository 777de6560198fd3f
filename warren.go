// Package warren is an embedded, entity-oriented document store over an
// ordered key/value engine. Callers declare record types (entities) with
// a typed primary key and a keyspace name; warren provides typed CRUD,
// ordered range access, and a relational integrity layer enforcing
// sibling, parent-child, and free many-to-many relationships with
// configurable cascade-on-delete semantics.
package warren

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warrendb/warren/internal/config"
	"github.com/warrendb/warren/internal/logging"
	"github.com/warrendb/warren/kvengine"
)

// reservedPrefix marks keyspaces internal to warren itself (the family
// registry and per-type relation descriptor trees). Caller-declared
// store names must not begin with it (spec §3).
const reservedPrefix = "__$"

const familyTreeName = reservedPrefix + "family_rel"

func relationTreeName(storeName string) string {
	return reservedPrefix + "rel_" + storeName
}

// DB is a single handle to the embedded store. It is safe for concurrent
// use from multiple goroutines (spec §5): the underlying KV engine
// serializes writers and allows concurrent readers on its own.
type DB struct {
	engine *kvengine.Engine
	log    *zap.Logger
	cfg    config.Config
}

// Open opens (creating if absent) the store at path using default
// ambient settings (info logging, default engine retry/backoff).
func Open(path string) (*DB, error) {
	return OpenWithConfig(config.Config{Path: path})
}

// OpenWithConfig opens the store using an explicitly constructed
// Config, e.g. one loaded from TOML via config.Load (spec §4.K).
func OpenWithConfig(cfg config.Config) (*DB, error) {
	cfg = cfg.WithDefaults()
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("warren: %w: config.Path must not be empty", ErrIO)
	}

	log, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("warren: build logger: %w", err)
	}

	engine, err := kvengine.Open(cfg.Path, kvengine.Options{
		LockTimeout:     cfg.Engine.LockTimeout(),
		RetryMaxElapsed: cfg.Engine.RetryMaxElapsed(),
	})
	if err != nil {
		return nil, wrapEngine("open", err)
	}

	log.Info("store opened", zap.String("path", cfg.Path))
	return &DB{engine: engine, log: log, cfg: cfg}, nil
}

// Close releases the underlying file handle.
func (db *DB) Close() error {
	db.log.Info("store closing")
	if err := db.engine.Close(); err != nil {
		return wrapEngine("close", err)
	}
	return nil
}

// Logger returns the structured logger threaded through the store, for
// callers who want to attach their own fields around a sequence of
// operations (e.g. a request-scoped correlation ID).
func (db *DB) Logger() *zap.Logger { return db.log }

// newTraceID produces a short correlation id for a single multi-keyspace
// operation (e.g. one cascading delete), so its log lines can be
// grepped together.
func newTraceID() string {
	return uuid.New().String()[:8]
}

func validateStoreName(name string) error {
	if name == "" {
		return fmt.Errorf("warren: store name must not be empty")
	}
	if strings.HasPrefix(name, reservedPrefix) {
		return fmt.Errorf("warren: store name %q uses the reserved prefix %q", name, reservedPrefix)
	}
	return nil
}
