package warren

// SaveSibling saves r under an explicit key shared with its sibling
// counterpart in another store, rather than a key derived from r's own
// sequence (spec §4.D "save_sibling").
func (s *Store[T, K]) SaveSibling(key K, r T) error {
	r.SetKey(key)
	return s.Save(r)
}

// SaveNext saves r under the next u32 key in ascending sequence: one
// past the tree's current last key, or zero if the tree is empty (spec
// §4.D "save_next"). It returns the key actually assigned.
func SaveNext[T Entity[Uint32Key]](s *Store[T, Uint32Key], r T) (Uint32Key, error) {
	last, found, err := s.tree.Last()
	if err != nil {
		return 0, wrapEngine("save_next "+s.name, err)
	}
	var next uint32
	if found {
		v, ok := childTailFromKeyBytes(last.Key)
		if !ok {
			return 0, wrapSerialization("save_next "+s.name, errKeyWidth)
		}
		next = v + 1
	}
	key := Uint32Key(next)
	r.SetKey(key)
	if err := s.Save(r); err != nil {
		return 0, err
	}
	return key, nil
}

// SaveChild saves r as a new child of parent, assigning it the next u32
// tail derived from the trailing 4 bytes of the child keyspace's last
// key overall — irrespective of which parent that last key belongs to
// (spec §4.D "save_child"; this cross-parent quirk is preserved as
// specified rather than scoped per parent, see DESIGN.md). It returns
// the composite key actually assigned.
func SaveChild[T Entity[PairKey[P, Uint32Key]], P Key](s *Store[T, PairKey[P, Uint32Key]], parent P, r T) (PairKey[P, Uint32Key], error) {
	last, found, err := s.tree.Last()
	if err != nil {
		var zero PairKey[P, Uint32Key]
		return zero, wrapEngine("save_child "+s.name, err)
	}
	var tail uint32
	if found {
		v, ok := childTailFromKeyBytes(last.Key)
		if !ok {
			var zero PairKey[P, Uint32Key]
			return zero, wrapSerialization("save_child "+s.name, errKeyWidth)
		}
		tail = v + 1
	}
	key := NewPairKey(parent, Uint32Key(tail))
	r.SetKey(key)
	if err := s.Save(r); err != nil {
		var zero PairKey[P, Uint32Key]
		return zero, err
	}
	return key, nil
}

// AdoptChild moves child from whatever parent it currently belongs to
// under newParent, assigning it a fresh tail the same way SaveChild
// does, while preserving the child's full relation descriptor and
// rewriting every peer's mirror edge to the new key (spec §4.D
// "adopt_child": "unlike remove+save_child, outgoing and incoming free
// edges survive the move"). child must already be present in s.
func AdoptChild[T Entity[PairKey[P, Uint32Key]], P Key](s *Store[T, PairKey[P, Uint32Key]], newParent P, child T) (PairKey[P, Uint32Key], error) {
	oldKey := child.Key()
	_, ok, err := s.Get(oldKey)
	if err != nil {
		var zero PairKey[P, Uint32Key]
		return zero, err
	}
	if !ok {
		var zero PairKey[P, Uint32Key]
		return zero, ErrNotFound
	}

	newKey, err := SaveChild(s, newParent, child)
	if err != nil {
		var zero PairKey[P, Uint32Key]
		return zero, err
	}
	if err := s.db.rekeyRelation(s.name, oldKey.Bytes(), newKey.Bytes()); err != nil {
		var zero PairKey[P, Uint32Key]
		return zero, err
	}
	if err := s.tree.Remove(oldKey.Bytes()); err != nil {
		var zero PairKey[P, Uint32Key]
		return zero, wrapEngine("adopt_child remove old "+s.name, err)
	}
	return newKey, nil
}
