package version

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"

	"github.com/aledsdavies/chronicle/core/key"
	"github.com/aledsdavies/chronicle/core/serial"
)

// Digest exposes computeDigest to other core packages (core/model uses it
// to test whether a prospective commit's attribute content is identical to
// the current version, without first picking a new commit timestamp).
func Digest(k key.Key, typ, parent string, created, committed int64, attributes map[string]*serial.Record) (string, error) {
	return computeDigest(k, typ, parent, created, committed, attributes)
}

// computeDigest builds the canonical pre-digest bytes for
// (key, type, parent, created, committed, canonical_attributes) and returns
// their hex SHA-1.
//
// The canonical form is nested CBOR arrays, not maps: a Go slice always
// encodes positionally, so sort order is whatever we put it in, with no
// dependence on how the CBOR library orders map keys internally. Attribute
// names and each attribute's state-record field names are explicitly sorted
// ascending before encoding, matching the digest's lexicographic-ordering
// requirement exactly.
func computeDigest(k key.Key, typ, parent string, created, committed int64, attributes map[string]*serial.Record) (string, error) {
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	canonicalAttrs := make([]any, len(names))
	for i, name := range names {
		rec := attributes[name]
		fields := rec.SortedKeys()
		pairs := make([]any, len(fields))
		for j, field := range fields {
			v, _ := rec.Get(field)
			pairs[j] = []any{field, v}
		}
		canonicalAttrs[i] = []any{name, pairs}
	}

	tuple := []any{k.String(), typ, parent, created, committed, canonicalAttrs}

	data, err := serial.Marshal(tuple)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}
