package warren

import (
	"fmt"

	"go.uber.org/zap"
)

// PlannedRemoval is one (tree, key) pair a Plan will delete once
// executed (spec §4.F "plan ... a flat, deduplicated list of
// removals").
type PlannedRemoval struct {
	Tree string
	Key  []byte
}

// Plan is the full, already-computed set of removals a call to Remove
// will perform, returned before any mutation happens (spec §4.F/§4.G:
// "planning and execution are separate phases"). When planning fails,
// Delete returns no Plan and the store has not been touched.
type Plan struct {
	Removals []PlannedRemoval
}

func (p *Plan) add(tree string, key []byte) {
	p.Removals = append(p.Removals, PlannedRemoval{Tree: tree, Key: append([]byte(nil), key...)})
}

// visitedKey identifies one (tree, key) node for cycle detection during
// planning (spec §4.F "cycle-break: a node already scheduled for
// removal is never re-planned or re-checked").
type visitedKey struct {
	tree string
	key  string
}

// planContext carries the mutable planning state across the recursive
// check calls for a single Remove invocation.
type planContext struct {
	db      *DB
	visited map[visitedKey]bool
	plan    *Plan
	trace   string
}

// Delete plans, then executes, the removal of (storeName, keyBytes)
// and everything its family/relation descriptors require, according to
// each edge's policy (spec §4.F "check" + §4.G "execute"). On a planning
// failure the store is left completely untouched; the returned *Plan is
// only non-nil on success.
func (db *DB) Delete(storeName string, keyBytes []byte) (*Plan, error) {
	ctx := &planContext{
		db:      db,
		visited: make(map[visitedKey]bool),
		plan:    &Plan{},
		trace:   newTraceID(),
	}
	if err := ctx.check(storeName, keyBytes); err != nil {
		db.log.Warn("delete planning failed",
			zap.String("trace", ctx.trace), zap.String("store", storeName), zap.Error(err))
		return nil, err
	}
	if err := db.execute(ctx.plan, ctx.trace); err != nil {
		return nil, err
	}
	db.log.Info("delete complete",
		zap.String("trace", ctx.trace), zap.String("store", storeName), zap.Int("removals", len(ctx.plan.Removals)))
	return ctx.plan, nil
}

// check recursively plans the removal of (treeName, keyBytes): its free
// edges, its declared siblings, and its declared children, following
// each edge's policy, and adds every node it decides must be removed to
// ctx.plan. It is the core of spec §4.F.
func (ctx *planContext) check(treeName string, keyBytes []byte) error {
	vk := visitedKey{tree: treeName, key: string(keyBytes)}
	if ctx.visited[vk] {
		return nil
	}
	ctx.visited[vk] = true
	ctx.plan.add(treeName, keyBytes)

	fam, registered, err := ctx.db.familyDescriptor(treeName)
	if !registered {
		if err != nil {
			return err
		}
		return &UnregisteredEntityError{Tree: treeName}
	}
	if err != nil {
		return err
	}

	if err := ctx.checkFreeEdges(treeName, keyBytes); err != nil {
		return err
	}
	if err := ctx.checkSiblings(treeName, keyBytes, fam.SiblingTrees); err != nil {
		return err
	}
	if err := ctx.checkChildren(treeName, keyBytes, fam.ChildTrees); err != nil {
		return err
	}
	return nil
}

// checkFreeEdges walks the outgoing relation descriptor of
// (treeName, keyBytes) in insertion order, applying each edge's own
// policy to the peer it names (spec §4.E/§4.F).
func (ctx *planContext) checkFreeEdges(treeName string, keyBytes []byte) error {
	rd, err := ctx.db.loadRelation(treeName, keyBytes)
	if err != nil {
		return err
	}
	for _, peerTree := range rd.Peers() {
		for _, edge := range rd.EdgesTo(peerTree) {
			if err := ctx.applyPolicy(edge.Policy, peerTree, edge.PeerKey, treeName, keyBytes, edge.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkSiblings applies each declared sibling edge's policy to the peer
// record sharing this record's exact key in the sibling's keyspace, if
// one exists (spec §3/§4.F "sibling").
func (ctx *planContext) checkSiblings(treeName string, keyBytes []byte, siblings []FamilyEdge) error {
	for _, sib := range siblings {
		tree, err := ctx.db.engine.OpenTree(sib.Tree)
		if err != nil {
			return wrapEngine("open sibling tree "+sib.Tree, err)
		}
		exists, err := tree.ContainsKey(keyBytes)
		if err != nil {
			return wrapEngine("check sibling tree "+sib.Tree, err)
		}
		if !exists {
			continue
		}
		if err := ctx.applySiblingOrChildPolicy(sib.Policy, sib.Tree, keyBytes); err != nil {
			return err
		}
	}
	return nil
}

// checkChildren applies each declared child edge's policy to every
// record in the child keyspace whose key is prefixed by this record's
// key (spec §3/§4.F "child").
func (ctx *planContext) checkChildren(treeName string, keyBytes []byte, children []FamilyEdge) error {
	for _, child := range children {
		tree, err := ctx.db.engine.OpenTree(child.Tree)
		if err != nil {
			return wrapEngine("open child tree "+child.Tree, err)
		}
		kvs, err := tree.ScanPrefix(keyBytes)
		if err != nil {
			return wrapEngine("scan child tree "+child.Tree, err)
		}
		for _, kv := range kvs {
			if err := ctx.applySiblingOrChildPolicy(child.Policy, child.Tree, kv.Key); err != nil {
				return err
			}
		}
	}
	return nil
}

// applySiblingOrChildPolicy applies policy to one sibling or child peer.
// Unlike a free edge, there is no mirror edge to break: BreakLink simply
// leaves the peer alone (spec §4.F "BreakLink on a sibling/child edge
// is a no-op beyond not cascading").
func (ctx *planContext) applySiblingOrChildPolicy(policy Policy, peerTree string, peerKey []byte) error {
	switch policy {
	case PolicyError:
		vk := visitedKey{tree: peerTree, key: string(peerKey)}
		if ctx.visited[vk] {
			return nil
		}
		return &IntegrityError{Tree: peerTree, Peer: fmt.Sprintf("%x", peerKey), Reason: "peer exists and policy is Error"}
	case PolicyBreakLink:
		return nil
	case PolicyCascade:
		return ctx.check(peerTree, peerKey)
	default:
		return fmt.Errorf("warren: unknown policy %v on tree %s", policy, peerTree)
	}
}

// applyPolicy applies policy to one free-edge peer. BreakLink neither
// fails nor recurses: the planner changes nothing, and the mirror edge
// at the peer is removed later by the executor's pruneRelations, which
// leaves the peer record itself alone.
func (ctx *planContext) applyPolicy(policy Policy, peerTree string, peerKey []byte, ownerTree string, ownerKey []byte, name string) error {
	switch policy {
	case PolicyError:
		vk := visitedKey{tree: peerTree, key: string(peerKey)}
		if ctx.visited[vk] {
			return nil
		}
		return &IntegrityError{Tree: peerTree, Peer: fmt.Sprintf("%x", peerKey), Reason: "free-relation peer exists and policy is Error"}
	case PolicyBreakLink:
		return nil
	case PolicyCascade:
		return ctx.check(peerTree, peerKey)
	default:
		return fmt.Errorf("warren: unknown policy %v on tree %s", policy, peerTree)
	}
}
