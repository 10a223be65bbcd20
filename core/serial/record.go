// Package serial implements chronicle's self-describing wire representation:
// an ordered string-to-value mapping used both to serialize Versions for
// storage and to produce the canonical bytes a Version's digest is computed
// over.
package serial

import (
	"reflect"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// Field is one entry of a Record: a name and its value. Value may itself be
// a *Record, a []any, a []*Record, or any CBOR-encodable primitive.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered mapping from short string field names to values. It
// preserves insertion order for callers that iterate it directly (Keys,
// range over Fields), while its CBOR encoding is always canonical —
// independent of insertion order — so two Records with the same entries
// always produce identical bytes.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord returns an empty Record ready for Set calls.
func NewRecord() *Record {
	return &Record{index: make(map[string]int)}
}

// Set stores value under name, overwriting any existing entry in place
// (preserving its original position) or appending a new one.
func (r *Record) Set(name string, value any) *Record {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = value
		return r
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: value})
	return r
}

// Get retrieves the value stored under name.
func (r *Record) Get(name string) (any, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Delete removes the entry stored under name, reporting whether it existed.
func (r *Record) Delete(name string) bool {
	i, ok := r.index[name]
	if !ok {
		return false
	}
	r.fields = append(r.fields[:i], r.fields[i+1:]...)
	delete(r.index, name)
	for n, idx := range r.index {
		if idx > i {
			r.index[n] = idx - 1
		}
	}
	return true
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Name
	}
	return keys
}

// SortedKeys returns the field names in lexicographic ascending order, the
// order a Version digest's canonical_attributes requires.
func (r *Record) SortedKeys() []string {
	keys := r.Keys()
	sort.Strings(keys)
	return keys
}

// Len reports the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// canonicalEncMode is shared by every canonical CBOR encode in the module:
// deterministic map key ordering, fixed float/int representations.
var canonicalEncMode = func() cbor.EncMode {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic("serial: invalid canonical CBOR options: " + err.Error())
	}
	return mode
}()

// decMode is the module's shared decode mode. Decoding into an untyped
// interface must hand nested maps back as map[string]any — every map this
// module stores is string-keyed, and downstream decode paths
// (core/version.Decode, Query.FromDict) type-assert on exactly that shape.
var decMode = func() cbor.DecMode {
	mode, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("serial: invalid CBOR decode options: " + err.Error())
	}
	return mode
}()

// MarshalCBOR encodes the Record as a canonical CBOR map. Canonical mode
// sorts the encoded map entries by their encoded key bytes regardless of
// Go-side insertion order, so the result is independent of how the Record
// was built — the property the Version digest relies on.
func (r *Record) MarshalCBOR() ([]byte, error) {
	m := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		m[f.Name] = f.Value
	}
	return canonicalEncMode.Marshal(m)
}

// UnmarshalCBOR decodes a CBOR map into the Record. Field order after
// decoding is lexicographic by field name, whatever order the encoded map
// entries came in.
func (r *Record) UnmarshalCBOR(data []byte) error {
	var m map[string]cbor.RawMessage
	if err := decMode.Unmarshal(data, &m); err != nil {
		return err
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	r.fields = make([]Field, 0, len(names))
	r.index = make(map[string]int, len(names))
	for _, name := range names {
		var v any
		if err := decMode.Unmarshal(m[name], &v); err != nil {
			return err
		}
		r.index[name] = len(r.fields)
		r.fields = append(r.fields, Field{Name: name, Value: v})
	}
	return nil
}

// Marshal encodes v as canonical CBOR bytes, the encoding used for Version
// digests and for the datastore wire format.
func Marshal(v any) ([]byte, error) {
	return canonicalEncMode.Marshal(v)
}

// Unmarshal decodes canonical CBOR bytes into v. Untyped maps come back as
// map[string]any, never map[interface{}]interface{}.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
