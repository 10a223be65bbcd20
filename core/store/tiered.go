package store

import (
	"errors"

	"github.com/aledsdavies/chronicle/core/invariant"
)

// Tiered is a read-through/write-through fan-out across an ordered list of
// backends, typically fast caches layered in front of a slower canonical
// store. A read probing tier i on a hit re-warms tiers [0, i) by writing
// the value through to them; writes and deletes fan out to every tier
// unconditionally.
type Tiered struct {
	backends []Datastore
}

// NewTiered wraps backends in priority order (fastest/most-cache-like
// first).
func NewTiered(backends ...Datastore) *Tiered {
	invariant.Precondition(len(backends) > 0, "Tiered requires at least one backend")
	return &Tiered{backends: backends}
}

// Get probes backends in order; on a hit at index i it write-through
// re-warms backends[0:i], then returns the value. A miss across every
// backend returns ok=false.
func (t *Tiered) Get(key string) ([]byte, bool, error) {
	for i, b := range t.backends {
		v, ok, err := b.Get(key)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		for j := 0; j < i; j++ {
			if err := t.backends[j].Put(key, v); err != nil {
				return nil, false, err
			}
		}
		return v, true, nil
	}
	return nil, false, nil
}

// Put fans out to every backend unconditionally, attempting all of them
// even if one fails, and surfaces every failure joined together.
func (t *Tiered) Put(key string, value []byte) error {
	var errs []error
	for _, b := range t.backends {
		if err := b.Put(key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Delete fans out to every backend unconditionally.
func (t *Tiered) Delete(key string) error {
	var errs []error
	for _, b := range t.backends {
		if err := b.Delete(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Contains short-circuits on the first backend that has key.
func (t *Tiered) Contains(key string) (bool, error) {
	for _, b := range t.backends {
		ok, err := b.Contains(key)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Len reports the size of the last (most authoritative, typically the
// canonical backing store) backend — the tiers in front of it are caches
// and need not hold the full key set.
func (t *Tiered) Len() (int, error) {
	return t.backends[len(t.backends)-1].Len()
}
