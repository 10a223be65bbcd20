// Package version implements chronicle's immutable, content-addressed
// Version: a single committed snapshot of an entity's attributes, linked to
// its predecessor by a SHA-1 digest chain.
package version

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"

	"github.com/aledsdavies/chronicle/core/errors"
	"github.com/aledsdavies/chronicle/core/invariant"
	"github.com/aledsdavies/chronicle/core/key"
	"github.com/aledsdavies/chronicle/core/serial"
)

// BlankHash is the sentinel parent hash for the first version of a chain:
// the hex SHA-1 digest of the empty byte string.
var BlankHash = func() string {
	sum := sha1.Sum(nil)
	return hex.EncodeToString(sum[:])
}()

// Version is an immutable snapshot of an entity at a point in time. It is
// never mutated after construction — Blank, New (called by Model.Commit)
// and Decode are its only producers.
type Version struct {
	key        key.Key
	typ        string
	hash       string
	parent     string
	created    int64
	committed  int64
	attributes map[string]*serial.Record
}

// Blank returns the zero Version for key k: no attributes, parent and hash
// both BlankHash, representing "uncommitted".
func Blank(k key.Key, typ string) *Version {
	return &Version{
		key:        k,
		typ:        typ,
		hash:       BlankHash,
		parent:     BlankHash,
		attributes: make(map[string]*serial.Record),
	}
}

// Key returns the entity key this version belongs to.
func (v *Version) Key() key.Key { return v.key }

// Type returns the model type name.
func (v *Version) Type() string { return v.typ }

// Hash returns this version's own digest.
func (v *Version) Hash() string { return v.hash }

// ShortHash returns the first n characters of Hash, a convenience accessor
// for logging and CLI output.
func (v *Version) ShortHash(n int) string {
	if n > len(v.hash) {
		n = len(v.hash)
	}
	return v.hash[:n]
}

// Parent returns the predecessor version's hash, or BlankHash if this is the
// first version of its chain.
func (v *Version) Parent() string { return v.parent }

// Created returns the nanosecond timestamp of the first commit of this
// chain.
func (v *Version) Created() int64 { return v.created }

// Committed returns the nanosecond timestamp of this particular version.
func (v *Version) Committed() int64 { return v.committed }

// AttributeRecord returns the raw state record stored for the named
// attribute, satisfying attr.AttributeView.
func (v *Version) AttributeRecord(name string) (*serial.Record, bool) {
	r, ok := v.attributes[name]
	return r, ok
}

// AttributeValue returns the "value" field of the named attribute's state
// record, or (nil, false) if the attribute is not present in this version.
func (v *Version) AttributeValue(name string) (any, bool) {
	r, ok := v.attributes[name]
	if !ok {
		return nil, false
	}
	return r.Get("value")
}

// AttributeNames returns the declared attribute names present in this
// version, in lexicographic order.
func (v *Version) AttributeNames() []string {
	names := make([]string, 0, len(v.attributes))
	for name := range v.attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs a committed Version, computing its digest. Its caller in
// the core is core/model.Model.Commit, trusted to supply committed >=
// created (a violation panics). Decode does not call New: it builds its
// Version directly after checking the stored hash against the digest.
func New(k key.Key, typ, parent string, created, committed int64, attributes map[string]*serial.Record) (*Version, error) {
	invariant.Precondition(committed >= created, "version committed (%d) must not precede created (%d)", committed, created)
	if attributes == nil {
		attributes = make(map[string]*serial.Record)
	}
	hash, err := computeDigest(k, typ, parent, created, committed, attributes)
	if err != nil {
		return nil, errors.Wrap(errors.KindCorruption, "computing version digest", err)
	}
	return &Version{
		key:        k,
		typ:        typ,
		hash:       hash,
		parent:     parent,
		created:    created,
		committed:  committed,
		attributes: attributes,
	}, nil
}
