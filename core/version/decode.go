package version

import (
	"fmt"
	"sort"

	"github.com/aledsdavies/chronicle/core/errors"
	"github.com/aledsdavies/chronicle/core/key"
	"github.com/aledsdavies/chronicle/core/serial"
)

// Encode produces the wire Record for v: the seven top-level fields (key,
// hash, parent, created, committed, attributes, type), with each
// attribute's state record flattened to a plain string-keyed map.
func Encode(v *Version) *serial.Record {
	r := serial.NewRecord()
	r.Set("key", v.key.String())
	r.Set("hash", v.hash)
	r.Set("parent", v.parent)
	r.Set("created", v.created)
	r.Set("committed", v.committed)

	attrs := make(map[string]any, len(v.attributes))
	for name, rec := range v.attributes {
		m := make(map[string]any, rec.Len())
		for _, field := range rec.Keys() {
			val, _ := rec.Get(field)
			m[field] = val
		}
		attrs[name] = m
	}
	r.Set("attributes", attrs)
	r.Set("type", v.typ)
	return r
}

// Decode reconstructs a Version from a SerialRepresentation, checking
// required fields in the fixed order key -> hash -> parent -> created ->
// committed -> attributes -> type, then verifying the stored hash against
// the recomputed digest. A mismatch fails with a corruption error.
func Decode(r *serial.Record) (*Version, error) {
	keyVal, ok := r.Get("key")
	if !ok {
		return nil, errors.NewValue("version record missing required field: key")
	}
	hashVal, ok := r.Get("hash")
	if !ok {
		return nil, errors.NewValue("version record missing required field: hash")
	}
	parentVal, ok := r.Get("parent")
	if !ok {
		return nil, errors.NewValue("version record missing required field: parent")
	}
	createdVal, ok := r.Get("created")
	if !ok {
		return nil, errors.NewValue("version record missing required field: created")
	}
	committedVal, ok := r.Get("committed")
	if !ok {
		return nil, errors.NewValue("version record missing required field: committed")
	}
	attributesVal, ok := r.Get("attributes")
	if !ok {
		return nil, errors.NewValue("version record missing required field: attributes")
	}
	typeVal, ok := r.Get("type")
	if !ok {
		return nil, errors.NewValue("version record missing required field: type")
	}

	kStr, ok := keyVal.(string)
	if !ok {
		return nil, errors.NewType(fmt.Sprintf("version field key: expected string, got %T", keyVal))
	}
	hashStr, ok := hashVal.(string)
	if !ok {
		return nil, errors.NewType(fmt.Sprintf("version field hash: expected string, got %T", hashVal))
	}
	parentStr, ok := parentVal.(string)
	if !ok {
		return nil, errors.NewType(fmt.Sprintf("version field parent: expected string, got %T", parentVal))
	}
	created, err := toInt64(createdVal)
	if err != nil {
		return nil, errors.Wrap(errors.KindType, "version field created", err)
	}
	committed, err := toInt64(committedVal)
	if err != nil {
		return nil, errors.Wrap(errors.KindType, "version field committed", err)
	}
	typStr, ok := typeVal.(string)
	if !ok {
		return nil, errors.NewType(fmt.Sprintf("version field type: expected string, got %T", typeVal))
	}

	attrsMap, ok := attributesVal.(map[string]any)
	if !ok {
		return nil, errors.NewType(fmt.Sprintf("version field attributes: expected map, got %T", attributesVal))
	}

	names := make([]string, 0, len(attrsMap))
	for name := range attrsMap {
		names = append(names, name)
	}
	sort.Strings(names)

	attributes := make(map[string]*serial.Record, len(attrsMap))
	for _, name := range names {
		rawMap, ok := attrsMap[name].(map[string]any)
		if !ok {
			return nil, errors.NewCorruption(fmt.Sprintf("attribute %q state record is not a map", name))
		}
		fieldNames := make([]string, 0, len(rawMap))
		for field := range rawMap {
			fieldNames = append(fieldNames, field)
		}
		sort.Strings(fieldNames)

		rec := serial.NewRecord()
		for _, field := range fieldNames {
			rec.Set(field, rawMap[field])
		}
		attributes[name] = rec
	}

	computed, err := computeDigest(key.New(kStr), typStr, parentStr, created, committed, attributes)
	if err != nil {
		return nil, errors.Wrap(errors.KindCorruption, "recomputing version digest", err)
	}
	if computed != hashStr {
		return nil, errors.NewCorruption("stored hash does not match computed digest").
			WithContext("stored", hashStr).
			WithContext("computed", computed).
			WithContext("key", kStr)
	}

	return &Version{
		key:        key.New(kStr),
		typ:        typStr,
		hash:       hashStr,
		parent:     parentStr,
		created:    created,
		committed:  committed,
		attributes: attributes,
	}, nil
}

// toInt64 accepts the handful of numeric shapes a generic CBOR decode can
// hand back for an integer field.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected integer-like value, got %T", v)
	}
}
