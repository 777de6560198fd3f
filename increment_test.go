package warren

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveNextSequencing(t *testing.T) {
	db := newTestDB(t)
	store, err := NewStore[*book, Uint32Key](db, "books")
	require.NoError(t, err)

	k1, err := SaveNext(store, &book{Title: "a"})
	require.NoError(t, err)
	require.Equal(t, Uint32Key(0), k1)

	k2, err := SaveNext(store, &book{Title: "b"})
	require.NoError(t, err)
	require.Equal(t, Uint32Key(1), k2)

	k3, err := SaveNext(store, &book{Title: "c"})
	require.NoError(t, err)
	require.Equal(t, Uint32Key(2), k3)
}

func TestSaveChildSequencingWithinFreshTree(t *testing.T) {
	db := newTestDB(t)
	store, err := NewStore[*page, PairKey[Uint32Key, Uint32Key]](db, "pages")
	require.NoError(t, err)

	parent := Uint32Key(100)
	k1, err := SaveChild(store, parent, &page{Text: "p1"})
	require.NoError(t, err)
	require.Equal(t, Uint32Key(0), k1.Second)

	k2, err := SaveChild(store, parent, &page{Text: "p2"})
	require.NoError(t, err)
	require.Equal(t, Uint32Key(1), k2.Second)
}

func TestSaveChildTailIsGlobalNotPerParent(t *testing.T) {
	db := newTestDB(t)
	store, err := NewStore[*page, PairKey[Uint32Key, Uint32Key]](db, "pages")
	require.NoError(t, err)

	parentA := Uint32Key(1)
	parentB := Uint32Key(2)

	_, err = SaveChild(store, parentA, &page{Text: "a0"})
	require.NoError(t, err)
	_, err = SaveChild(store, parentA, &page{Text: "a1"})
	require.NoError(t, err)

	// parentB's first child inherits the tail sequence from the whole
	// tree's last key (parentA's), not a zero-based sequence of its own
	// (spec.md §9.2, preserved as specified — see DESIGN.md).
	kb, err := SaveChild(store, parentB, &page{Text: "b0"})
	require.NoError(t, err)
	require.Equal(t, Uint32Key(2), kb.Second)
}

func TestAdoptChildPreservesRelations(t *testing.T) {
	db := newTestDB(t)
	pages, err := NewStore[*page, PairKey[Uint32Key, Uint32Key]](db, "pages")
	require.NoError(t, err)
	authors, err := NewStore[*author, Uint32Key](db, "authors")
	require.NoError(t, err)

	a := &author{ID: 1, Name: "Herbert"}
	require.NoError(t, authors.Save(a))

	oldParent := Uint32Key(10)
	newParent := Uint32Key(20)
	child := &page{Text: "ch"}
	oldKey, err := SaveChild(pages, oldParent, child)
	require.NoError(t, err)

	require.NoError(t, db.CreateRelation("pages", oldKey.Bytes(), "authors", a.Key().Bytes(), PolicyBreakLink, PolicyBreakLink, "written_by"))

	newKey, err := AdoptChild(pages, newParent, child)
	require.NoError(t, err)
	require.Equal(t, newParent, newKey.First)

	_, stillThere, err := pages.Get(oldKey)
	require.NoError(t, err)
	require.False(t, stillThere)

	moved, ok, err := pages.Get(newKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ch", moved.Text)

	rd, err := db.Edges("authors", a.Key().Bytes())
	require.NoError(t, err)
	edges := rd.EdgesTo("pages")
	require.Len(t, edges, 1)
	require.Equal(t, newKey.Bytes(), edges[0].PeerKey)
}
