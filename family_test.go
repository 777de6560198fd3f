package warren

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotentLatestWins(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Registry().Register("books", FamilyDescriptor{
		ChildTrees: []FamilyEdge{{Tree: "pages", Policy: PolicyError}},
	}))
	require.NoError(t, db.Registry().Register("books", FamilyDescriptor{
		ChildTrees: []FamilyEdge{{Tree: "pages", Policy: PolicyCascade}},
	}))

	desc, ok, err := db.familyDescriptor("books")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, desc.ChildTrees, 1)
	require.Equal(t, PolicyCascade, desc.ChildTrees[0].Policy)
}

func TestRegisterRejectsReservedPrefix(t *testing.T) {
	db := newTestDB(t)
	err := db.Registry().Register("__$family_rel", FamilyDescriptor{})
	require.Error(t, err)
}

func TestFamilyDescriptorAbsentIsNotRegistered(t *testing.T) {
	db := newTestDB(t)
	_, ok, err := db.familyDescriptor("ghost")
	require.NoError(t, err)
	require.False(t, ok)
}
