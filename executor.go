package warren

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// execute prunes the relation graph for every planned removal (so no
// surviving peer keeps a mirror edge pointing at a deleted record),
// then batch-removes the records themselves, one batch per keyspace
// (spec §4.G "execute": "prune the relation graph first; then remove
// records, batched per tree").
func (db *DB) execute(plan *Plan, trace string) error {
	if err := db.pruneRelations(plan); err != nil {
		return err
	}
	return db.removeRecords(plan, trace)
}

// pruneRelations removes, for every planned removal, its own relation
// descriptor entry and the mirror edge it left at each of its peers.
func (db *DB) pruneRelations(plan *Plan) error {
	planned := make(map[visitedKey]bool, len(plan.Removals))
	for _, r := range plan.Removals {
		planned[visitedKey{tree: r.Tree, key: string(r.Key)}] = true
	}
	for _, r := range plan.Removals {
		rd, err := db.loadRelation(r.Tree, r.Key)
		if err != nil {
			return err
		}
		for _, peerTree := range rd.Peers() {
			for _, edge := range rd.EdgesTo(peerTree) {
				if planned[visitedKey{tree: peerTree, key: string(edge.PeerKey)}] {
					continue
				}
				if err := db.removeEdge(peerTree, edge.PeerKey, r.Tree, r.Key, edge.Name); err != nil {
					return err
				}
			}
		}
		if err := db.deleteRelation(r.Tree, r.Key); err != nil {
			return err
		}
	}
	return nil
}

// removeRecords groups the plan's removals by keyspace and deletes each
// group in a single batch transaction, aggregating per-keyspace
// failures instead of stopping at the first (spec §4.G: "a fault in
// one keyspace's batch does not prevent the others from completing").
func (db *DB) removeRecords(plan *Plan, trace string) error {
	byTree := make(map[string][][]byte)
	order := make([]string, 0)
	for _, r := range plan.Removals {
		if _, ok := byTree[r.Tree]; !ok {
			order = append(order, r.Tree)
		}
		byTree[r.Tree] = append(byTree[r.Tree], r.Key)
	}

	var combined error
	for _, treeName := range order {
		tree, err := db.engine.OpenTree(treeName)
		if err != nil {
			combined = multierr.Append(combined, wrapEngine("open "+treeName, err))
			continue
		}
		keys := byTree[treeName]
		if err := tree.RemoveBatch(keys); err != nil {
			combined = multierr.Append(combined, wrapEngine("batch remove "+treeName, err))
			continue
		}
		db.log.Debug("batch removed",
			zap.String("trace", trace), zap.String("tree", treeName), zap.Int("count", len(keys)))
	}
	return combined
}
