// Package model implements chronicle's Model: the mutable, in-memory holder
// of an entity's latest committed Version plus pending attribute edits.
package model

import (
	"reflect"
	"time"

	"github.com/aledsdavies/chronicle/core/errors"
	"github.com/aledsdavies/chronicle/core/invariant"
	"github.com/aledsdavies/chronicle/core/key"
	"github.com/aledsdavies/chronicle/core/schema"
	"github.com/aledsdavies/chronicle/core/serial"
	"github.com/aledsdavies/chronicle/core/version"
)

// Model is the mutable holder of a Key, the latest committed Version
// (possibly blank), a dirty flag, and per-attribute staged raw-data
// records. A Model exclusively owns its staged records; its current
// Version is immutable and may be shared freely once read.
//
// A Model carries no internal mutex: callers must serialize all operations
// on a given instance themselves. See core/invariant for the contract
// checks this package runs instead.
type Model struct {
	k       key.Key
	schema  *schema.ModelSchema
	current *version.Version
	staged  map[string]*serial.Record
	dirty   bool
}

// New constructs a Model of the named registered type at key k, with a
// blank (uncommitted) Version. A fresh Model is dirty: it has never been
// committed, even though no field has been explicitly written yet.
func New(k key.Key, typeName string) (*Model, error) {
	s, err := schema.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	return &Model{
		k:       k,
		schema:  s,
		current: version.Blank(k, typeName),
		staged:  make(map[string]*serial.Record),
		dirty:   true,
	}, nil
}

// FromVersion wraps an already-committed Version in a clean Model.
func FromVersion(v *version.Version) (*Model, error) {
	s, err := schema.Lookup(v.Type())
	if err != nil {
		return nil, err
	}
	return &Model{
		k:       v.Key(),
		schema:  s,
		current: v,
		staged:  make(map[string]*serial.Record),
		dirty:   false,
	}, nil
}

// Key returns the entity key.
func (m *Model) Key() key.Key { return m.k }

// Type returns the model's registered type name.
func (m *Model) Type() string { return m.schema.Name }

// Schema returns the model's registered schema.
func (m *Model) Schema() *schema.ModelSchema { return m.schema }

// Version returns the Model's current committed Version (possibly blank).
func (m *Model) Version() *version.Version { return m.current }

// Dirty reports whether the Model has pending, uncommitted edits.
func (m *Model) Dirty() bool { return m.dirty }

// AttributeValue reads an attribute's effective value: staged if present,
// else from the current committed Version, else the descriptor's default.
func (m *Model) AttributeValue(name string) (any, error) {
	desc, ok := m.schema.Descriptor(name)
	if !ok {
		return nil, errors.NewKey("unknown attribute "+name).WithContext("attribute", name)
	}
	if rec, ok := m.staged[name]; ok {
		v, _ := rec.Get("value")
		return v, nil
	}
	if rec, ok := m.current.AttributeRecord(name); ok {
		v, _ := rec.Get("value")
		return v, nil
	}
	return desc.Default, nil
}

// SetAttribute validates value against the attribute's declared type,
// stages it, and marks the Model dirty — unless the new value equals the
// attribute's current effective value, in which case the write is a no-op
// and dirty is left untouched.
func (m *Model) SetAttribute(name string, value any) error {
	desc, ok := m.schema.Descriptor(name)
	if !ok {
		return errors.NewKey("unknown attribute "+name).WithContext("attribute", name)
	}

	coerced, err := desc.Validate(value)
	if err != nil {
		return err
	}

	existing, err := m.AttributeValue(name)
	if err == nil && reflect.DeepEqual(existing, coerced) {
		return nil
	}

	rec := serial.NewRecord().Set("value", coerced)
	if desc.Strategy != nil {
		desc.Strategy.OnStage(rec, false)
	}
	m.staged[name] = rec
	m.dirty = true
	return nil
}

// StageMerged installs a merge-produced state record for name directly,
// bypassing validation (the record came from an already-committed remote
// Version). Used only by core/merge's Engine.
func (m *Model) StageMerged(name string, rec *serial.Record) {
	m.staged[name] = rec
	m.dirty = true
}

// buildAttributes assembles the full attribute map a commit would produce:
// staged overrides current overrides descriptor defaults, for every
// attribute the schema declares.
func (m *Model) buildAttributes() map[string]*serial.Record {
	attributes := make(map[string]*serial.Record, len(m.schema.AttributeOrder))
	for _, name := range m.schema.AttributeOrder {
		if rec, ok := m.staged[name]; ok {
			attributes[name] = rec
			continue
		}
		if rec, ok := m.current.AttributeRecord(name); ok {
			attributes[name] = rec
			continue
		}
		desc := m.schema.Attributes[name]
		if desc.Default == nil {
			continue
		}
		rec := serial.NewRecord().Set("value", desc.Default)
		if desc.Strategy != nil {
			desc.Strategy.OnStage(rec, true)
		}
		attributes[name] = rec
	}
	return attributes
}

// Commit produces a new Version from the Model's current state. If the
// resulting attribute content is byte-identical to the current Version's
// (true even when dirty was set but every staged write round-tripped back
// to its prior value), Commit returns the existing Version unchanged rather
// than minting a new commit timestamp — content-addressing means identical
// content is identical identity, regardless of when it was re-saved.
func (m *Model) Commit() (*version.Version, error) {
	attributes := m.buildAttributes()

	candidateHash, err := version.Digest(m.k, m.schema.Name, m.current.Parent(), m.current.Created(), m.current.Committed(), attributes)
	if err != nil {
		return nil, err
	}
	if candidateHash == m.current.Hash() {
		m.staged = make(map[string]*serial.Record)
		m.dirty = false
		return m.current, nil
	}

	now := time.Now().UnixNano()
	created := m.current.Created()
	if m.current.Hash() == version.BlankHash {
		created = now
	}
	parent := m.current.Hash()

	next, err := version.New(m.k, m.schema.Name, parent, created, now, attributes)
	if err != nil {
		return nil, err
	}
	invariant.Postcondition(next.Parent() == parent, "commit parent must equal pre-commit hash")

	m.current = next
	m.staged = make(map[string]*serial.Record)
	m.dirty = false
	return next, nil
}
