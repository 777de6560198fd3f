package warren

import (
	"errors"
	"fmt"
)

// Sentinel errors covering the stable error-kind vocabulary (spec §7).
// Callers should use errors.Is/errors.As against these rather than
// matching on message text.
var (
	// ErrEngine signals an underlying KV engine fault (I/O, corruption,
	// lock contention that outlasted the retry budget).
	ErrEngine = errors.New("warren: engine fault")

	// ErrSerialization signals a binary or textual codec failure.
	ErrSerialization = errors.New("warren: serialization failure")

	// ErrIO signals I/O outside the engine itself: reading or writing
	// export/import streams, and an empty store path at open. Errors
	// from config.Load are returned by that package unwrapped.
	ErrIO = errors.New("warren: io failure")

	// ErrIntegrity signals a deletion would violate an Error policy on
	// a sibling, child, or free edge. Prefer errors.As against
	// *IntegrityError to recover the offending tree name.
	ErrIntegrity = errors.New("warren: integrity violation")

	// ErrNotFound signals an operation required presence of a record
	// that does not exist (e.g. AdoptChild on a missing child).
	ErrNotFound = errors.New("warren: not found")

	// ErrUnregisteredEntity signals deletion was attempted on a type
	// with no family descriptor registered. Prefer errors.As against
	// *UnregisteredEntityError to recover the type name.
	ErrUnregisteredEntity = errors.New("warren: unregistered entity type")
)

// IntegrityError carries the offending tree name, the peer key (hex)
// and a reason for an Error-policy violation found during deletion
// planning (spec §4.F/§7).
type IntegrityError struct {
	Tree   string
	Peer   string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("warren: integrity violation: %s (tree=%s peer=%s)", e.Reason, e.Tree, e.Peer)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }

// UnregisteredEntityError names the type whose family descriptor is
// missing from the registry.
type UnregisteredEntityError struct {
	Tree string
}

func (e *UnregisteredEntityError) Error() string {
	return fmt.Sprintf("warren: unregistered entity type %q; call Registry.Register before deleting", e.Tree)
}

func (e *UnregisteredEntityError) Unwrap() error { return ErrUnregisteredEntity }

// wrapEngine wraps an underlying KV engine error with operation context,
// following the teacher's wrapDBError convention (sentinel + %w).
func wrapEngine(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %v", op, ErrEngine, err)
}

func wrapSerialization(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %v", op, ErrSerialization, err)
}

func wrapIO(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %v", op, ErrIO, err)
}
