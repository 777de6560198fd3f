package warren

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/warrendb/warren/codec"
	"github.com/warrendb/warren/kvengine"
)

// RelationEdge is one outgoing free edge to a peer record (spec §3
// "Relation descriptor"). Edge identity is (PeerKey, Name); the policy
// governs what happens to the peer when the edge's owner is removed.
type RelationEdge struct {
	PeerKey []byte
	Policy  Policy
	Name    string
}

// peerEdges groups every edge from one record to a single peer
// keyspace, preserving insertion order (spec §4.F: "Iteration order
// over a descriptor's peer lists follows insertion order (stable)").
type peerEdges struct {
	Tree  string
	Edges []RelationEdge
}

// RelationDescriptor is the full set of outgoing free edges for one
// record, grouped by peer keyspace (spec §3 "Relation descriptor").
type RelationDescriptor struct {
	groups []peerEdges
}

// Peers returns the peer keyspace names with at least one outgoing edge.
func (rd RelationDescriptor) Peers() []string {
	out := make([]string, 0, len(rd.groups))
	for _, g := range rd.groups {
		out = append(out, g.Tree)
	}
	return out
}

// EdgesTo returns the ordered edges toward peerTree, or nil if none.
func (rd RelationDescriptor) EdgesTo(peerTree string) []RelationEdge {
	for _, g := range rd.groups {
		if g.Tree == peerTree {
			return g.Edges
		}
	}
	return nil
}

func (rd *RelationDescriptor) groupFor(peerTree string) *peerEdges {
	for i := range rd.groups {
		if rd.groups[i].Tree == peerTree {
			return &rd.groups[i]
		}
	}
	rd.groups = append(rd.groups, peerEdges{Tree: peerTree})
	return &rd.groups[len(rd.groups)-1]
}

// upsert inserts or updates the edge identified by (peerKey, name),
// overwriting the policy on a later re-create (spec §9 open question 4
// / §3 invariant: "deduplicated on identity, last policy wins").
func (rd *RelationDescriptor) upsert(peerTree string, peerKey []byte, policy Policy, name string) {
	g := rd.groupFor(peerTree)
	for i := range g.Edges {
		if bytes.Equal(g.Edges[i].PeerKey, peerKey) && g.Edges[i].Name == name {
			g.Edges[i].Policy = policy
			return
		}
	}
	g.Edges = append(g.Edges, RelationEdge{PeerKey: append([]byte(nil), peerKey...), Policy: policy, Name: name})
}

// remove deletes the edge identified by (peerKey, name); absent is a
// no-op (spec §4.E: "absent edge is a no-op").
func (rd *RelationDescriptor) remove(peerTree string, peerKey []byte, name string) {
	for gi := range rd.groups {
		if rd.groups[gi].Tree != peerTree {
			continue
		}
		edges := rd.groups[gi].Edges
		for i := range edges {
			if bytes.Equal(edges[i].PeerKey, peerKey) && edges[i].Name == name {
				rd.groups[gi].Edges = append(edges[:i:i], edges[i+1:]...)
				return
			}
		}
	}
}

func (db *DB) relationTree(storeName string) (kvengine.Tree, error) {
	t, err := db.engine.OpenTree(relationTreeName(storeName))
	if err != nil {
		return nil, wrapEngine("open relation tree for "+storeName, err)
	}
	return t, nil
}

// loadRelation reads the relation descriptor for (storeName, keyBytes),
// returning the empty descriptor if none is persisted yet (spec §4.E:
// "absence is equivalent to no outgoing edges").
func (db *DB) loadRelation(storeName string, keyBytes []byte) (RelationDescriptor, error) {
	tree, err := db.relationTree(storeName)
	if err != nil {
		return RelationDescriptor{}, err
	}
	data, ok, err := tree.Get(keyBytes)
	if err != nil {
		return RelationDescriptor{}, wrapEngine("read relation descriptor", err)
	}
	if !ok {
		return RelationDescriptor{}, nil
	}
	var stored storedRelationDescriptor
	if err := codec.DecodeBinary(data, &stored); err != nil {
		return RelationDescriptor{}, wrapSerialization("decode relation descriptor", err)
	}
	return stored.toDescriptor(), nil
}

func (db *DB) saveRelation(storeName string, keyBytes []byte, rd RelationDescriptor) error {
	tree, err := db.relationTree(storeName)
	if err != nil {
		return err
	}
	data, err := codec.EncodeBinary(fromDescriptor(rd))
	if err != nil {
		return wrapSerialization("encode relation descriptor", err)
	}
	if err := tree.Insert(keyBytes, data); err != nil {
		return wrapEngine("write relation descriptor", err)
	}
	return nil
}

func (db *DB) deleteRelation(storeName string, keyBytes []byte) error {
	tree, err := db.relationTree(storeName)
	if err != nil {
		return err
	}
	if err := tree.Remove(keyBytes); err != nil {
		return wrapEngine("remove relation descriptor", err)
	}
	return nil
}

// storedRelationDescriptor is the gob-friendly wire shape (gob cannot
// encode unexported struct fields, so RelationDescriptor's unexported
// "groups" is mirrored here for persistence only).
type storedRelationDescriptor struct {
	Groups []peerEdges
}

func fromDescriptor(rd RelationDescriptor) storedRelationDescriptor {
	return storedRelationDescriptor{Groups: rd.groups}
}

func (s storedRelationDescriptor) toDescriptor() RelationDescriptor {
	return RelationDescriptor{groups: s.Groups}
}

// addEdge inserts or updates one direction of an edge: ownerTree:ownerKey
// gains an outgoing edge to peerTree:peerKey with the given policy.
func (db *DB) addEdge(ownerTree string, ownerKey []byte, peerTree string, peerKey []byte, policy Policy, name string) error {
	rd, err := db.loadRelation(ownerTree, ownerKey)
	if err != nil {
		return err
	}
	rd.upsert(peerTree, peerKey, policy, name)
	return db.saveRelation(ownerTree, ownerKey, rd)
}

// removeEdge deletes one direction of an edge; absent is a no-op.
func (db *DB) removeEdge(ownerTree string, ownerKey []byte, peerTree string, peerKey []byte, name string) error {
	rd, err := db.loadRelation(ownerTree, ownerKey)
	if err != nil {
		return err
	}
	rd.remove(peerTree, peerKey, name)
	return db.saveRelation(ownerTree, ownerKey, rd)
}

// CreateRelation creates a bidirectional free edge between (treeA,keyA)
// and (treeB,keyB), with independent policies for each direction (spec
// §4.E "create_relation ... always operate on both endpoints"). An
// empty name denotes an unnamed edge.
func (db *DB) CreateRelation(treeA string, keyA []byte, treeB string, keyB []byte, policyAtoB, policyBtoA Policy, name string) error {
	if err := db.addEdge(treeA, keyA, treeB, keyB, policyAtoB, name); err != nil {
		return err
	}
	if err := db.addEdge(treeB, keyB, treeA, keyA, policyBtoA, name); err != nil {
		return err
	}
	db.log.Debug("relation created",
		zap.String("tree_a", treeA), zap.String("tree_b", treeB), zap.String("name", name))
	return nil
}

// RemoveRelation removes both directions of a free edge; absent is a
// no-op on either side.
func (db *DB) RemoveRelation(treeA string, keyA []byte, treeB string, keyB []byte, name string) error {
	if err := db.removeEdge(treeA, keyA, treeB, keyB, name); err != nil {
		return err
	}
	if err := db.removeEdge(treeB, keyB, treeA, keyA, name); err != nil {
		return err
	}
	return nil
}

// Edges returns the full relation descriptor for (storeName, keyBytes).
func (db *DB) Edges(storeName string, keyBytes []byte) (RelationDescriptor, error) {
	return db.loadRelation(storeName, keyBytes)
}

// HasReferers reports whether (storeName, keyBytes) has any inbound
// reference at all: a free edge, a sibling in a sibling tree, or any
// child in a child tree — without planning a full deletion (spec §10,
// grounded on original_source/src/relation/mod.rs has_referers).
func (db *DB) HasReferers(storeName string, keyBytes []byte) (bool, error) {
	rd, err := db.loadRelation(storeName, keyBytes)
	if err != nil {
		return false, err
	}
	if len(rd.groups) > 0 {
		for _, g := range rd.groups {
			if len(g.Edges) > 0 {
				return true, nil
			}
		}
	}
	fam, ok, err := db.familyDescriptor(storeName)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	for _, sib := range fam.SiblingTrees {
		t, err := db.engine.OpenTree(sib.Tree)
		if err != nil {
			return false, wrapEngine("open sibling tree "+sib.Tree, err)
		}
		exists, err := t.ContainsKey(keyBytes)
		if err != nil {
			return false, wrapEngine("check sibling tree "+sib.Tree, err)
		}
		if exists {
			return true, nil
		}
	}
	for _, child := range fam.ChildTrees {
		t, err := db.engine.OpenTree(child.Tree)
		if err != nil {
			return false, wrapEngine("open child tree "+child.Tree, err)
		}
		kvs, err := t.ScanPrefix(keyBytes)
		if err != nil {
			return false, wrapEngine("scan child tree "+child.Tree, err)
		}
		if len(kvs) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// GetRelated returns the decoded peer records that (owner, ownerKey) has
// an outgoing free edge toward in peer's keyspace, via decode (the
// inverse of K2.Bytes, e.g. ParseUint32Key) — parallel to SaveChild/
// SaveNext in increment.go, since Go cannot express this as a Store
// method generic over a second entity type (spec §4.E "get_related";
// spec §8 property 4, grounded on
// original_source/src/relation/mod.rs:59 Relation::get<E1,E2>).
func GetRelated[T Entity[K], K Key, T2 Entity[K2], K2 Key](owner *Store[T, K], ownerKey K, peer *Store[T2, K2], decode func([]byte) (K2, error)) ([]T2, error) {
	rd, err := owner.db.loadRelation(owner.name, ownerKey.Bytes())
	if err != nil {
		return nil, err
	}
	return resolvePeers(peer, rd.EdgesTo(peer.name), decode)
}

// GetRelatedWithName is GetRelated restricted to edges carrying name
// (spec §4.E "get_related_with_name"; spec §8 scenario S7).
func GetRelatedWithName[T Entity[K], K Key, T2 Entity[K2], K2 Key](owner *Store[T, K], ownerKey K, peer *Store[T2, K2], name string, decode func([]byte) (K2, error)) ([]T2, error) {
	rd, err := owner.db.loadRelation(owner.name, ownerKey.Bytes())
	if err != nil {
		return nil, err
	}
	var named []RelationEdge
	for _, e := range rd.EdgesTo(peer.name) {
		if e.Name == name {
			named = append(named, e)
		}
	}
	return resolvePeers(peer, named, decode)
}

// GetSingleRelatedWithName returns the first peer reached by a named
// edge, or (zero, false, nil) if none exists (spec §4.E
// "get_single_related_with_name"; spec §8 scenario S7, grounded on
// original_source/src/relation/mod.rs:70 get_one).
func GetSingleRelatedWithName[T Entity[K], K Key, T2 Entity[K2], K2 Key](owner *Store[T, K], ownerKey K, peer *Store[T2, K2], name string, decode func([]byte) (K2, error)) (T2, bool, error) {
	all, err := GetRelatedWithName(owner, ownerKey, peer, name, decode)
	if err != nil {
		var zero T2
		return zero, false, err
	}
	if len(all) == 0 {
		var zero T2
		return zero, false, nil
	}
	return all[0], true, nil
}

// resolvePeers decodes each edge's PeerKey via decode and loads the
// record through peer, skipping any edge whose target has since been
// removed.
func resolvePeers[T2 Entity[K2], K2 Key](peer *Store[T2, K2], edges []RelationEdge, decode func([]byte) (K2, error)) ([]T2, error) {
	out := make([]T2, 0, len(edges))
	for _, e := range edges {
		k, err := decode(e.PeerKey)
		if err != nil {
			return nil, wrapSerialization("decode peer key for "+peer.name, err)
		}
		rec, ok, err := peer.Get(k)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// rekeyRelation moves a record's relation descriptor from oldKey to
// newKey within the same storeName, and rewrites every peer's mirror
// edge to point at newKey instead of oldKey. Used by AdoptChild to
// preserve outgoing/incoming edges across a re-parent (spec §9 open
// question 1, §8 scenario S6: "adopt_child ... preserve edges").
func (db *DB) rekeyRelation(storeName string, oldKey, newKey []byte) error {
	rd, err := db.loadRelation(storeName, oldKey)
	if err != nil {
		return err
	}
	for _, g := range rd.groups {
		for _, e := range g.Edges {
			peerRd, err := db.loadRelation(g.Tree, e.PeerKey)
			if err != nil {
				return err
			}
			mirrorPolicy := e.Policy
			for _, me := range peerRd.EdgesTo(storeName) {
				if bytes.Equal(me.PeerKey, oldKey) && me.Name == e.Name {
					mirrorPolicy = me.Policy
					break
				}
			}
			peerRd.remove(storeName, oldKey, e.Name)
			peerRd.upsert(storeName, newKey, mirrorPolicy, e.Name)
			if err := db.saveRelation(g.Tree, e.PeerKey, peerRd); err != nil {
				return err
			}
		}
	}
	if len(rd.groups) > 0 {
		if err := db.saveRelation(storeName, newKey, rd); err != nil {
			return err
		}
	}
	return db.deleteRelation(storeName, oldKey)
}
