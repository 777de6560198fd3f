package warren

// DBStats is the store-wide diagnostic summary DB.Stats exposes: an
// entry count per keyspace, keyed by tree name, pulled straight from
// the KV engine (spec §4.L).
type DBStats struct {
	Trees map[string]int
}

// Stats returns an entry count for every keyspace the engine currently
// holds, including the reserved family registry and relation trees.
func (db *DB) Stats() (DBStats, error) {
	names, err := db.engine.TreeNames()
	if err != nil {
		return DBStats{}, wrapEngine("stats", err)
	}
	out := DBStats{Trees: make(map[string]int, len(names))}
	for _, name := range names {
		tree, err := db.engine.OpenTree(name)
		if err != nil {
			return DBStats{}, wrapEngine("stats open "+name, err)
		}
		n, err := tree.Len()
		if err != nil {
			return DBStats{}, wrapEngine("stats len "+name, err)
		}
		out.Trees[name] = n
	}
	return out, nil
}
