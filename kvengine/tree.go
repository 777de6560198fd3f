package kvengine

import (
	"bytes"

	bolt "go.etcd.io/bbolt"
)

// KV is one key/value pair as returned by ordered reads.
type KV struct {
	Key   []byte
	Value []byte
}

// Tree is the byte-level contract spec §1 assumes of the underlying
// ordered KV engine: sorted byte-keyed trees with point get/insert/
// remove, prefix and range iteration, last-key access, and atomic
// per-tree batch application.
type Tree interface {
	Name() string
	Insert(key, value []byte) error
	Get(key []byte) ([]byte, bool, error)
	Remove(key []byte) error
	ContainsKey(key []byte) (bool, error)
	ScanPrefix(prefix []byte) ([]KV, error)
	Range(start, end []byte) ([]KV, error)
	Last() (KV, bool, error)
	Len() (int, error)
	All() ([]KV, error)
	RemoveBatch(keys [][]byte) error
}

type boltTree struct {
	db   *bolt.DB
	name []byte
}

func (t *boltTree) Name() string { return string(t.name) }

func (t *boltTree) Insert(key, value []byte) error {
	err := t.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(t.name)
		if err != nil {
			return err
		}
		return b.Put(key, value)
	})
	return wrapErr("insert", err)
}

func (t *boltTree) Get(key []byte) ([]byte, bool, error) {
	var value []byte
	err := t.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.name)
		if b == nil {
			return nil
		}
		v := b.Get(key)
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, wrapErr("get", err)
	}
	return value, value != nil, nil
}

func (t *boltTree) Remove(key []byte) error {
	err := t.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.name)
		if b == nil {
			return nil
		}
		return b.Delete(key)
	})
	return wrapErr("remove", err)
}

func (t *boltTree) ContainsKey(key []byte) (bool, error) {
	var found bool
	err := t.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.name)
		if b == nil {
			return nil
		}
		found = b.Get(key) != nil
		return nil
	})
	if err != nil {
		return false, wrapErr("contains_key", err)
	}
	return found, nil
}

func (t *boltTree) ScanPrefix(prefix []byte) ([]KV, error) {
	var out []KV
	err := t.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.name)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			out = append(out, KV{Key: clone(k), Value: clone(v)})
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr("scan_prefix", err)
	}
	return out, nil
}

func (t *boltTree) Range(start, end []byte) ([]KV, error) {
	var out []KV
	err := t.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.name)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Seek(start); k != nil && bytes.Compare(k, end) < 0; k, v = c.Next() {
			out = append(out, KV{Key: clone(k), Value: clone(v)})
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr("range", err)
	}
	return out, nil
}

func (t *boltTree) Last() (KV, bool, error) {
	var kv KV
	var found bool
	err := t.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.name)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		k, v := c.Last()
		if k == nil {
			return nil
		}
		kv = KV{Key: clone(k), Value: clone(v)}
		found = true
		return nil
	})
	if err != nil {
		return KV{}, false, wrapErr("last", err)
	}
	return kv, found, nil
}

func (t *boltTree) Len() (int, error) {
	var n int
	err := t.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.name)
		if b == nil {
			return nil
		}
		n = b.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, wrapErr("len", err)
	}
	return n, nil
}

func (t *boltTree) All() ([]KV, error) {
	var out []KV
	err := t.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.name)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			out = append(out, KV{Key: clone(k), Value: clone(v)})
			return nil
		})
	})
	if err != nil {
		return nil, wrapErr("all", err)
	}
	return out, nil
}

// RemoveBatch deletes every key in one bbolt read-write transaction
// against this tree's bucket — the "atomic per-tree batch" spec §1
// assumes of the underlying engine.
func (t *boltTree) RemoveBatch(keys [][]byte) error {
	if len(keys) == 0 {
		return nil
	}
	err := t.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.name)
		if b == nil {
			return nil
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	return wrapErr("remove_batch", err)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
