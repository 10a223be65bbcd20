// Package drone implements chronicle's Drone: a façade binding a datastore
// to a drone id and exposing put/get/merge/delete at the Version/Model
// level.
package drone

import (
	"bytes"
	"fmt"

	"github.com/aledsdavies/chronicle/core/errors"
	"github.com/aledsdavies/chronicle/core/key"
	"github.com/aledsdavies/chronicle/core/merge"
	"github.com/aledsdavies/chronicle/core/model"
	"github.com/aledsdavies/chronicle/core/serial"
	"github.com/aledsdavies/chronicle/core/store"
	"github.com/aledsdavies/chronicle/core/version"
)

// magic prefixes every value a Drone writes, identifying the envelope
// format. No compression or signature flags follow it — neither feature
// exists here.
var magic = [4]byte{'C', 'H', 'R', '1'}

// Option configures a Drone at construction time.
type Option func(*Drone)

// WithStore overrides the Drone's backing Datastore. The zero value
// (unset) leaves whatever New was given.
func WithStore(ds store.Datastore) Option {
	return func(d *Drone) { d.store = ds }
}

// Drone owns a drone id and a Datastore. It does not retain Model or
// Version references across calls — every Get returns a freshly decoded
// Model.
type Drone struct {
	id        key.Key
	store     store.Datastore
	namespace [4]byte
}

// New constructs a Drone identified by id. With no WithStore option it is
// backed by an in-memory MemStore. id also seeds the drone's envelope
// namespace tag (see namespace.go), deterministically, so two Drones
// constructed with the same id always tag their writes identically.
func New(id key.Key, opts ...Option) *Drone {
	d := &Drone{id: id}
	for _, opt := range opts {
		opt(d)
	}
	if d.store == nil {
		d.store = store.NewMemStore()
	}
	ns, err := deriveNamespace(id.String())
	if err != nil {
		panic("drone: " + err.Error())
	}
	d.namespace = ns
	return d
}

// ID returns the drone's own key.
func (d *Drone) ID() key.Key { return d.id }

// PutModel writes m's current committed Version. A dirty Model is
// rejected — commit it first.
func (d *Drone) PutModel(m *model.Model) error {
	if m.Dirty() {
		return errors.NewValue("cannot put a dirty model").WithContext("key", m.Key().String())
	}
	return d.putVersion(m.Version())
}

// PutVersion writes v directly.
func (d *Drone) PutVersion(v *version.Version) error {
	return d.putVersion(v)
}

func (d *Drone) putVersion(v *version.Version) error {
	record := version.Encode(v)
	payload, err := record.MarshalCBOR()
	if err != nil {
		return errors.Wrap(errors.KindCorruption, "encoding version", err)
	}

	buf := make([]byte, 0, len(magic)+len(d.namespace)+len(payload))
	buf = append(buf, magic[:]...)
	buf = append(buf, d.namespace[:]...)
	buf = append(buf, payload...)

	return d.store.Put(v.Key().String(), buf)
}

// Get reads the bytes stored under k, decodes them into a Version
// (verifying its digest), and reconstructs a Model wrapping it.
func (d *Drone) Get(k key.Key) (*model.Model, error) {
	v, err := d.GetVersion(k)
	if err != nil {
		return nil, err
	}
	return model.FromVersion(v)
}

// GetVersion reads and decodes the Version stored under k without
// reconstructing a Model.
func (d *Drone) GetVersion(k key.Key) (*version.Version, error) {
	raw, ok, err := d.store.Get(k.String())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewKey(fmt.Sprintf("no entity at key %q", k.String())).
			WithContext("key", k.String())
	}
	headerLen := len(magic) + 4 // magic + namespace tag; namespace is provenance-only, not validated here
	if len(raw) < headerLen || !bytes.Equal(raw[:len(magic)], magic[:]) {
		return nil, errors.NewCorruption("stored value missing chronicle envelope magic").
			WithContext("key", k.String())
	}

	record := serial.NewRecord()
	if err := record.UnmarshalCBOR(raw[headerLen:]); err != nil {
		return nil, errors.Wrap(errors.KindCorruption, "decoding version envelope", err)
	}
	return version.Decode(record)
}

// Merge fetches the current Model at remote.Key() (failing if absent),
// runs the merge engine with it as local, and writes the result back.
func (d *Drone) Merge(remote *version.Version) (*model.Model, error) {
	local, err := d.Get(remote.Key())
	if err != nil {
		return nil, err
	}

	merged, err := (merge.Engine{}).Merge(local, remote)
	if err != nil {
		return nil, err
	}

	if err := d.PutVersion(merged); err != nil {
		return nil, err
	}
	return model.FromVersion(merged)
}

// Delete removes the stored bytes for k.
func (d *Drone) Delete(k key.Key) error {
	return d.store.Delete(k.String())
}
