package warren

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"

	"go.uber.org/zap"

	"github.com/warrendb/warren/codec"
	"github.com/warrendb/warren/kvengine"
)

// Store is the typed façade over one keyspace, named storeName, holding
// records of type T keyed by K (spec §4.D). Constructing a Store does
// not require registration — only Remove, which runs the integrity
// engine, does (spec §4.C).
type Store[T Entity[K], K Key] struct {
	db   *DB
	name string
	tree kvengine.Tree
}

// NewStore opens (creating on first write) the keyspace named
// storeName for records of type T keyed by K.
func NewStore[T Entity[K], K Key](db *DB, storeName string) (*Store[T, K], error) {
	if err := validateStoreName(storeName); err != nil {
		return nil, err
	}
	tree, err := db.engine.OpenTree(storeName)
	if err != nil {
		return nil, wrapEngine("open store "+storeName, err)
	}
	return &Store[T, K]{db: db, name: storeName, tree: tree}, nil
}

// Name returns this store's keyspace name.
func (s *Store[T, K]) Name() string { return s.name }

// newInstance allocates a zero value of T, allocating the pointed-to
// struct too when T is itself a pointer type (the common shape for
// Entity implementations, since SetKey needs a pointer receiver).
func newInstance[T any]() T {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface().(T)
	}
	return zero
}

func (s *Store[T, K]) decode(data []byte) (T, error) {
	rec := newInstance[T]()
	if err := codec.DecodeBinary(data, rec); err != nil {
		var zero T
		return zero, wrapSerialization("decode "+s.name, err)
	}
	return rec, nil
}

// Save persists r at encode(r.Key()), overwriting any prior value
// (spec §4.D "save": last-write-wins).
func (s *Store[T, K]) Save(r T) error {
	data, err := codec.EncodeBinary(r)
	if err != nil {
		return wrapSerialization("encode "+s.name, err)
	}
	if err := s.tree.Insert(r.Key().Bytes(), data); err != nil {
		return wrapEngine("save "+s.name, err)
	}
	return nil
}

// Get returns the record at k, or (zero, false, nil) if absent.
func (s *Store[T, K]) Get(k K) (T, bool, error) {
	var zero T
	data, ok, err := s.tree.Get(k.Bytes())
	if err != nil {
		return zero, false, wrapEngine("get "+s.name, err)
	}
	if !ok {
		return zero, false, nil
	}
	rec, err := s.decode(data)
	return rec, true, err
}

// Exists reports whether k is present, without deserializing.
func (s *Store[T, K]) Exists(k K) (bool, error) {
	ok, err := s.tree.ContainsKey(k.Bytes())
	if err != nil {
		return false, wrapEngine("exists "+s.name, err)
	}
	return ok, nil
}

// Count returns the number of records in this keyspace.
func (s *Store[T, K]) Count() (int, error) {
	n, err := s.tree.Len()
	if err != nil {
		return 0, wrapEngine("count "+s.name, err)
	}
	return n, nil
}

func (s *Store[T, K]) decodeAll(kvs []kvengine.KV) ([]T, error) {
	out := make([]T, 0, len(kvs))
	for _, kv := range kvs {
		rec, err := s.decode(kv.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// GetAll returns every record in byte-ascending key order.
func (s *Store[T, K]) GetAll() ([]T, error) {
	kvs, err := s.tree.All()
	if err != nil {
		return nil, wrapEngine("get_all "+s.name, err)
	}
	return s.decodeAll(kvs)
}

// GetRange returns records with keys in [a, b).
func (s *Store[T, K]) GetRange(a, b K) ([]T, error) {
	kvs, err := s.tree.Range(a.Bytes(), b.Bytes())
	if err != nil {
		return nil, wrapEngine("get_range "+s.name, err)
	}
	return s.decodeAll(kvs)
}

// GetWithPrefix returns every record whose key starts with prefix,
// chiefly used to enumerate a parent's children.
func (s *Store[T, K]) GetWithPrefix(prefix []byte) ([]T, error) {
	kvs, err := s.tree.ScanPrefix(prefix)
	if err != nil {
		return nil, wrapEngine("get_with_prefix "+s.name, err)
	}
	return s.decodeAll(kvs)
}

// GetPageFromStart returns up to n records starting at ascending index
// start, optionally restricted to a byte prefix.
func (s *Store[T, K]) GetPageFromStart(start, n int, prefix []byte) ([]T, error) {
	kvs, err := s.scanForPaging(prefix)
	if err != nil {
		return nil, err
	}
	if start >= len(kvs) {
		return nil, nil
	}
	end := start + n
	if end > len(kvs) {
		end = len(kvs)
	}
	return s.decodeAll(kvs[start:end])
}

// GetPageFromEnd returns up to n records counting back from the end,
// restored to ascending order, optionally restricted to a byte prefix.
func (s *Store[T, K]) GetPageFromEnd(start, n int, prefix []byte) ([]T, error) {
	kvs, err := s.scanForPaging(prefix)
	if err != nil {
		return nil, err
	}
	total := len(kvs)
	if start >= total {
		return nil, nil
	}
	endIdx := total - start
	beginIdx := endIdx - n
	if beginIdx < 0 {
		beginIdx = 0
	}
	return s.decodeAll(kvs[beginIdx:endIdx])
}

func (s *Store[T, K]) scanForPaging(prefix []byte) ([]kvengine.KV, error) {
	if prefix != nil {
		kvs, err := s.tree.ScanPrefix(prefix)
		if err != nil {
			return nil, wrapEngine("page "+s.name, err)
		}
		return kvs, nil
	}
	kvs, err := s.tree.All()
	if err != nil {
		return nil, wrapEngine("page "+s.name, err)
	}
	return kvs, nil
}

// GetEach returns every record among keys that exists, in the order the
// keys were given; missing keys are silently skipped.
func (s *Store[T, K]) GetEach(keys []K) ([]T, error) {
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		rec, ok, err := s.Get(k)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Filter returns every record matching pred, via a full scan.
func (s *Store[T, K]) Filter(pred func(T) bool) ([]T, error) {
	all, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(all))
	for _, rec := range all {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Update atomically reads, mutates via f, and re-saves the record at k.
// It is a no-op if k is absent.
func (s *Store[T, K]) Update(k K, f func(T)) error {
	rec, ok, err := s.Get(k)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	f(rec)
	return s.Save(rec)
}

// Export writes every record in this keyspace as JSON Lines — import/
// export never runs the integrity engine (spec §6: "does NOT trigger
// integrity checks; it is a data restore, not a user mutation").
func (s *Store[T, K]) Export(w io.Writer) error {
	all, err := s.GetAll()
	if err != nil {
		return err
	}
	if err := codec.WriteTextAll(w, all); err != nil {
		var typeErr *json.UnsupportedTypeError
		var valueErr *json.UnsupportedValueError
		var marshalErr *json.MarshalerError
		if errors.As(err, &typeErr) || errors.As(err, &valueErr) || errors.As(err, &marshalErr) {
			return wrapSerialization("export "+s.name, err)
		}
		return wrapIO("export "+s.name, err)
	}
	return nil
}

// Import reads JSON Lines records and Saves each one.
func (s *Store[T, K]) Import(r io.Reader) error {
	records, err := codec.ReadTextAll[T](r)
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return wrapSerialization("import "+s.name, err)
		}
		return wrapIO("import "+s.name, err)
	}
	for _, rec := range records {
		if err := s.Save(rec); err != nil {
			return err
		}
	}
	s.db.log.Info("import complete", zap.String("store", s.name), zap.Int("count", len(records)))
	return nil
}

// StoreStats is the cheap diagnostic summary Store.Stats exposes.
type StoreStats struct {
	Name  string
	Count int
}

// Stats returns a cheap, engine-backed count for this keyspace.
func (s *Store[T, K]) Stats() (StoreStats, error) {
	n, err := s.Count()
	if err != nil {
		return StoreStats{}, err
	}
	return StoreStats{Name: s.name, Count: n}, nil
}

// Remove destroys the record at k, subject to the integrity engine
// (spec §4.D "remove": "see §4.F/§4.G"). It plans the full cascade
// before mutating anything, and fails without touching the store if any
// Error-policy edge on the traversal would be violated.
func (s *Store[T, K]) Remove(k K) (*Plan, error) {
	return s.db.Delete(s.name, k.Bytes())
}
