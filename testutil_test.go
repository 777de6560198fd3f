package warren

import (
	"path/filepath"
	"testing"
)

// newTestDB opens a warren store backed by a temp-dir bbolt file, closed
// automatically at test end, following the teacher's newTestStore
// isolation pattern (steveyegge-beads/internal/storage/sqlite/test_helpers.go).
func newTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warren.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("close test db: %v", err)
		}
	})
	return db
}

type book struct {
	ID    Uint32Key
	Title string
}

func (b *book) Key() Uint32Key     { return b.ID }
func (b *book) SetKey(k Uint32Key) { b.ID = k }

type page struct {
	PK   PairKey[Uint32Key, Uint32Key]
	Text string
}

func (p *page) Key() PairKey[Uint32Key, Uint32Key]     { return p.PK }
func (p *page) SetKey(k PairKey[Uint32Key, Uint32Key]) { p.PK = k }

type author struct {
	ID   Uint32Key
	Name string
}

func (a *author) Key() Uint32Key     { return a.ID }
func (a *author) SetKey(k Uint32Key) { a.ID = k }

// blurb shares book's exact key type so it can be declared as a sibling
// of book (siblings are looked up by identical key bytes, not a PairKey).
type blurb struct {
	ID   Uint32Key
	Text string
}

func (b *blurb) Key() Uint32Key     { return b.ID }
func (b *blurb) SetKey(k Uint32Key) { b.ID = k }
