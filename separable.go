package warren

// SaveSeparate splits a value out of a host record into its own keyed
// record in s, the way a large or optional field is moved out of a
// frequently-read parent to avoid deserializing it on every read
// (original_source entity.rs Separable::save_separate). take returns
// the value to separate and whether one is present; clear is called
// after a successful save so the caller can null out the host's field.
func SaveSeparate[T Entity[K], K Key](s *Store[T, K], key K, take func() (T, bool), clear func()) error {
	v, ok := take()
	if !ok {
		return ErrNotFound
	}
	v.SetKey(key)
	if err := s.Save(v); err != nil {
		return err
	}
	clear()
	return nil
}

// Restore loads the record previously split off by SaveSeparate and
// hands it to set, the inverse of SaveSeparate (original_source
// entity.rs Separable::restore).
func Restore[T Entity[K], K Key](s *Store[T, K], key K, set func(T)) error {
	v, ok, err := s.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	set(v)
	return nil
}
