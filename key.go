package warren

import (
	"encoding/binary"
	"errors"
)

// errKeyWidth signals a key byte slice of the wrong width: too narrow to
// hold a u32 tail (which should never happen for a keyspace only ever
// written through SaveNext/SaveChild), or not exactly the width a
// fixed-width Parse*Key function expects.
var errKeyWidth = errors.New("key too narrow for a u32 tail")

// Key is anything that can be converted to a stable, order-preserving
// byte sequence for storage under a keyspace. The byte order of Bytes()
// is the order records sort in within their tree.
type Key interface {
	Bytes() []byte
}

// Uint32Key is a u32 key. Its byte encoding sorts in numeric order.
type Uint32Key uint32

func (k Uint32Key) Bytes() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(k))
	return b
}

// ParseUint32Key is the inverse of Uint32Key.Bytes, used by callers that
// only hold a peer key's raw bytes (e.g. RelationEdge.PeerKey from
// GetRelated) and need the typed key back.
func ParseUint32Key(b []byte) (Uint32Key, error) {
	if len(b) != 4 {
		return 0, errKeyWidth
	}
	return Uint32Key(binary.BigEndian.Uint32(b)), nil
}

// Uint64Key is a u64 key. Its byte encoding sorts in numeric order.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(k))
	return b
}

// ParseUint64Key is the inverse of Uint64Key.Bytes.
func ParseUint64Key(b []byte) (Uint64Key, error) {
	if len(b) != 8 {
		return 0, errKeyWidth
	}
	return Uint64Key(binary.BigEndian.Uint64(b)), nil
}

// Int32Key is an i32 key, stored as raw big-endian bytes of its bit
// pattern. This does NOT remap the sign bit, so negative values sort
// after all positive values — preserved as the reference contract
// (spec §4.A).
type Int32Key int32

func (k Int32Key) Bytes() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(k))
	return b
}

// ParseInt32Key is the inverse of Int32Key.Bytes.
func ParseInt32Key(b []byte) (Int32Key, error) {
	if len(b) != 4 {
		return 0, errKeyWidth
	}
	return Int32Key(binary.BigEndian.Uint32(b)), nil
}

// Int64Key is an i64 key with the same raw-big-endian caveat as Int32Key.
type Int64Key int64

func (k Int64Key) Bytes() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(k))
	return b
}

// ParseInt64Key is the inverse of Int64Key.Bytes.
func ParseInt64Key(b []byte) (Int64Key, error) {
	if len(b) != 8 {
		return 0, errKeyWidth
	}
	return Int64Key(binary.BigEndian.Uint64(b)), nil
}

// StringKey is a UTF-8 string key, unterminated in its byte form.
// Strings have variable width, so a StringKey must not be used as the
// first component of a PairKey that is scanned by prefix (see PairKey).
type StringKey string

func (k StringKey) Bytes() []byte {
	return []byte(k)
}

// ParseStringKey is the inverse of StringKey.Bytes. It never fails:
// every byte sequence is a valid UTF-8-or-not string key.
func ParseStringKey(b []byte) (StringKey, error) {
	return StringKey(b), nil
}

// BytesKey is a raw byte-slice key; its byte encoding is the identity.
type BytesKey []byte

func (k BytesKey) Bytes() []byte {
	return []byte(k)
}

// ParseBytesKey is the inverse of BytesKey.Bytes. It never fails.
func ParseBytesKey(b []byte) (BytesKey, error) {
	return BytesKey(append([]byte(nil), b...)), nil
}

// PairKey is a composite key (A, B) whose byte encoding is the plain
// concatenation encode(A) || encode(B), with no separator. For the
// resulting prefix encode(A) to unambiguously identify all pairs
// sharing A during a prefix scan, A must have fixed width when used as
// a parent key — numeric key kinds satisfy this; StringKey and BytesKey
// do not, and must not be used as the first component of a PairKey
// intended for child-tree use (see Store.GetWithPrefix / child trees,
// spec §4.A).
type PairKey[A Key, B Key] struct {
	First  A
	Second B
}

func (k PairKey[A, B]) Bytes() []byte {
	a := k.First.Bytes()
	b := k.Second.Bytes()
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// NewPairKey constructs a PairKey from its two components.
func NewPairKey[A Key, B Key](first A, second B) PairKey[A, B] {
	return PairKey[A, B]{First: first, Second: second}
}

// childPairKeyBytes builds a (parent, tail) pair key's byte form from
// raw parent bytes and a u32 tail, without a concrete Key type. Only
// the tests call it; the planner and executor do not.
func childPairKeyBytes(parentBytes []byte, tail uint32) []byte {
	out := make([]byte, 0, len(parentBytes)+4)
	out = append(out, parentBytes...)
	tb := make([]byte, 4)
	binary.BigEndian.PutUint32(tb, tail)
	return append(out, tb...)
}

// childTailFromKeyBytes extracts the trailing u32 tail from a child
// key's byte encoding, assuming the last 4 bytes are that tail
// (true for any PairKey[_, Uint32Key]).
func childTailFromKeyBytes(keyBytes []byte) (uint32, bool) {
	if len(keyBytes) < 4 {
		return 0, false
	}
	tail := binary.BigEndian.Uint32(keyBytes[len(keyBytes)-4:])
	return tail, true
}
