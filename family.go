package warren

import (
	"go.uber.org/zap"

	"github.com/warrendb/warren/codec"
)

// FamilyEdge is one declared sibling or child relationship from a type
// to another type's keyspace, with the policy that governs deletion
// (spec §3 "Family descriptor").
type FamilyEdge struct {
	Tree   string
	Policy Policy
}

// FamilyDescriptor is the per-type declaration of sibling and child
// edges, persisted in the reserved keyspace __$family_rel keyed by
// store name (spec §3/§4.C).
type FamilyDescriptor struct {
	SiblingTrees []FamilyEdge
	ChildTrees   []FamilyEdge
}

// Registry exposes Register, the entity registration bootstrap (spec
// §4.C/§4.H). Callers must register every entity type they intend to
// delete through the integrity engine; CRUD via Store does not require
// registration.
type Registry struct {
	db *DB
}

// Registry returns the registration bootstrap bound to this store.
func (db *DB) Registry() *Registry { return &Registry{db: db} }

// Register writes (or overwrites) the family descriptor for storeName.
// Registration is idempotent: calling it again with a different
// declaration simply replaces the prior one (spec §4.H — "the latest
// call wins").
func (r *Registry) Register(storeName string, desc FamilyDescriptor) error {
	if err := validateStoreName(storeName); err != nil {
		return err
	}
	tree, err := r.db.engine.OpenTree(familyTreeName)
	if err != nil {
		return wrapEngine("open family registry", err)
	}
	data, err := codec.EncodeBinary(desc)
	if err != nil {
		return wrapSerialization("encode family descriptor", err)
	}
	if err := tree.Insert([]byte(storeName), data); err != nil {
		return wrapEngine("write family descriptor", err)
	}
	r.db.log.Debug("registered entity type",
		zap.String("store", storeName),
		zap.Int("siblings", len(desc.SiblingTrees)),
		zap.Int("children", len(desc.ChildTrees)))
	return nil
}

// familyDescriptor loads the family descriptor for storeName, returning
// (desc, true, nil) if registered, or (zero, false, nil) if not.
func (db *DB) familyDescriptor(storeName string) (FamilyDescriptor, bool, error) {
	tree, err := db.engine.OpenTree(familyTreeName)
	if err != nil {
		return FamilyDescriptor{}, false, wrapEngine("open family registry", err)
	}
	data, ok, err := tree.Get([]byte(storeName))
	if err != nil {
		return FamilyDescriptor{}, false, wrapEngine("read family descriptor", err)
	}
	if !ok {
		return FamilyDescriptor{}, false, nil
	}
	var desc FamilyDescriptor
	if err := codec.DecodeBinary(data, &desc); err != nil {
		return FamilyDescriptor{}, false, wrapSerialization("decode family descriptor", err)
	}
	return desc, true, nil
}
