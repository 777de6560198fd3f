package warren

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateRemoveRelationSymmetry(t *testing.T) {
	db := newTestDB(t)
	books, err := NewStore[*book, Uint32Key](db, "books")
	require.NoError(t, err)
	authors, err := NewStore[*author, Uint32Key](db, "authors")
	require.NoError(t, err)

	b := &book{ID: 1, Title: "Dune"}
	a := &author{ID: 1, Name: "Herbert"}
	require.NoError(t, books.Save(b))
	require.NoError(t, authors.Save(a))

	require.NoError(t, db.CreateRelation("books", b.Key().Bytes(), "authors", a.Key().Bytes(), PolicyBreakLink, PolicyCascade, "written_by"))

	rdBook, err := db.Edges("books", b.Key().Bytes())
	require.NoError(t, err)
	require.Len(t, rdBook.EdgesTo("authors"), 1)
	require.Equal(t, PolicyBreakLink, rdBook.EdgesTo("authors")[0].Policy)

	rdAuthor, err := db.Edges("authors", a.Key().Bytes())
	require.NoError(t, err)
	require.Len(t, rdAuthor.EdgesTo("books"), 1)
	require.Equal(t, PolicyCascade, rdAuthor.EdgesTo("books")[0].Policy)

	require.NoError(t, db.RemoveRelation("books", b.Key().Bytes(), "authors", a.Key().Bytes(), "written_by"))

	rdBook, err = db.Edges("books", b.Key().Bytes())
	require.NoError(t, err)
	require.Empty(t, rdBook.EdgesTo("authors"))
	rdAuthor, err = db.Edges("authors", a.Key().Bytes())
	require.NoError(t, err)
	require.Empty(t, rdAuthor.EdgesTo("books"))
}

func TestRemoveRelationOnAbsentEdgeIsNoOp(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.RemoveRelation("books", []byte{1}, "authors", []byte{2}, "ghost"))
}

func TestEdgeUpsertDedupsOnIdentityLastPolicyWins(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.addEdge("books", []byte{1}, "authors", []byte{2}, PolicyError, "written_by"))
	require.NoError(t, db.addEdge("books", []byte{1}, "authors", []byte{2}, PolicyCascade, "written_by"))

	rd, err := db.loadRelation("books", []byte{1})
	require.NoError(t, err)
	edges := rd.EdgesTo("authors")
	require.Len(t, edges, 1)
	require.Equal(t, PolicyCascade, edges[0].Policy)
}

func TestGetRelatedReturnsDecodedPeers(t *testing.T) {
	db := newTestDB(t)
	books, err := NewStore[*book, Uint32Key](db, "books")
	require.NoError(t, err)
	authors, err := NewStore[*author, Uint32Key](db, "authors")
	require.NoError(t, err)

	b := &book{ID: 1, Title: "Dune"}
	a := &author{ID: 1, Name: "Herbert"}
	require.NoError(t, books.Save(b))
	require.NoError(t, authors.Save(a))
	require.NoError(t, db.CreateRelation("books", b.Key().Bytes(), "authors", a.Key().Bytes(), PolicyBreakLink, PolicyBreakLink, "wrote"))

	relatedToBook, err := GetRelated(books, b.Key(), authors, ParseUint32Key)
	require.NoError(t, err)
	require.Len(t, relatedToBook, 1)
	require.Equal(t, "Herbert", relatedToBook[0].Name)

	relatedToAuthor, err := GetRelated(authors, a.Key(), books, ParseUint32Key)
	require.NoError(t, err)
	require.Len(t, relatedToAuthor, 1)
	require.Equal(t, "Dune", relatedToAuthor[0].Title)

	require.NoError(t, db.RemoveRelation("books", b.Key().Bytes(), "authors", a.Key().Bytes(), "wrote"))

	relatedToBook, err = GetRelated(books, b.Key(), authors, ParseUint32Key)
	require.NoError(t, err)
	require.Empty(t, relatedToBook)
	relatedToAuthor, err = GetRelated(authors, a.Key(), books, ParseUint32Key)
	require.NoError(t, err)
	require.Empty(t, relatedToAuthor)
}

func TestGetRelatedWithNameAndSingle(t *testing.T) {
	db := newTestDB(t)
	books, err := NewStore[*book, Uint32Key](db, "books")
	require.NoError(t, err)
	authors, err := NewStore[*author, Uint32Key](db, "authors")
	require.NoError(t, err)

	a := &book{ID: 1, Title: "a"}
	b1 := &author{ID: 1, Name: "b1"}
	b2 := &author{ID: 2, Name: "b2"}
	require.NoError(t, books.Save(a))
	require.NoError(t, authors.Save(b1))
	require.NoError(t, authors.Save(b2))

	require.NoError(t, db.CreateRelation("books", a.Key().Bytes(), "authors", b1.Key().Bytes(), PolicyBreakLink, PolicyBreakLink, "rel1"))
	require.NoError(t, db.CreateRelation("books", a.Key().Bytes(), "authors", b2.Key().Bytes(), PolicyBreakLink, PolicyBreakLink, "rel2"))

	rel2, err := GetRelatedWithName(books, a.Key(), authors, "rel2", ParseUint32Key)
	require.NoError(t, err)
	require.Len(t, rel2, 1)
	require.Equal(t, "b2", rel2[0].Name)

	single, ok, err := GetSingleRelatedWithName(books, a.Key(), authors, "rel1", ParseUint32Key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b1", single.Name)

	_, ok, err = GetSingleRelatedWithName(books, a.Key(), authors, "no-such-name", ParseUint32Key)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHasReferersFreeEdge(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Registry().Register("books", FamilyDescriptor{
		SiblingTrees: []FamilyEdge{{Tree: "blurbs", Policy: PolicyBreakLink}},
		ChildTrees:   []FamilyEdge{{Tree: "pages", Policy: PolicyCascade}},
	}))

	has, err := db.HasReferers("books", []byte{1})
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, db.CreateRelation("authors", []byte{9}, "books", []byte{1}, PolicyBreakLink, PolicyBreakLink, "wrote"))
	has, err = db.HasReferers("books", []byte{1})
	require.NoError(t, err)
	require.True(t, has)
}
