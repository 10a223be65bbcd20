// Package query implements chronicle's declarative filter+order
// specification evaluated over Versions returned by a backend.
package query

import (
	"fmt"

	"github.com/aledsdavies/chronicle/core/errors"
	"github.com/aledsdavies/chronicle/core/version"
)

// Op is a Filter comparison operator.
type Op string

const (
	Eq  Op = "="
	Neq Op = "!="
	Lt  Op = "<"
	Lte Op = "<="
	Gt  Op = ">"
	Gte Op = ">="
)

// versionFields are the Version-level fields a Filter or Order can name
// directly, as opposed to a user-declared attribute.
var versionFields = map[string]bool{
	"key": true, "type": true, "hash": true, "parent": true,
	"created": true, "committed": true,
}

// Filter is a (field, op, operand) predicate over Versions. field names
// either a Version field (key, type, hash, parent, created, committed) or
// a user-attribute, read via Version.AttributeValue.
type Filter struct {
	Field   string
	Op      Op
	Operand any
}

// New constructs a Filter. It does not validate field/operand compatibility
// eagerly — that happens per-Version in Matches, since a Version might not
// declare the named attribute at all.
func New(field string, op Op, operand any) Filter {
	return Filter{Field: field, Op: op, Operand: operand}
}

// fieldValue extracts the raw value named by field from v, distinguishing
// the fixed Version fields from user attributes.
func fieldValue(v *version.Version, field string) (any, bool) {
	switch field {
	case "key":
		return v.Key().String(), true
	case "type":
		return v.Type(), true
	case "hash":
		return v.Hash(), true
	case "parent":
		return v.Parent(), true
	case "created":
		return v.Created(), true
	case "committed":
		return v.Committed(), true
	default:
		return v.AttributeValue(field)
	}
}

// Matches reports whether v satisfies f. A Version missing the named
// attribute never matches (regardless of operator), matching the
// key-error-as-absence semantics the rest of the core uses.
func (f Filter) Matches(v *version.Version) (bool, error) {
	value, ok := fieldValue(v, f.Field)
	if !ok {
		return false, nil
	}
	return f.ValuePasses(value)
}

// ValuePasses compares a raw value already extracted from a Version (or,
// for a user-driven predicate, supplied directly) against the filter's
// operand.
func (f Filter) ValuePasses(value any) (bool, error) {
	cmp, err := compare(value, f.Operand)
	if err != nil {
		return false, errors.Wrap(errors.KindType, fmt.Sprintf("filter on field %q", f.Field), err)
	}
	switch f.Op {
	case Eq:
		return cmp == 0, nil
	case Neq:
		return cmp != 0, nil
	case Lt:
		return cmp < 0, nil
	case Lte:
		return cmp <= 0, nil
	case Gt:
		return cmp > 0, nil
	case Gte:
		return cmp >= 0, nil
	default:
		return false, errors.NewValue(fmt.Sprintf("unknown filter operator %q", f.Op))
	}
}

// compare orders two values of the same underlying kind, failing with a
// type error when they are not comparable under any of the orderings this
// package knows (mirrors the core's "never silently compare" rule — see
// core/key.Key.Equal).
func compare(a, b any) (int, error) {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare string to %T", b)
		}
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case int64:
		bv, ok := asInt64(b)
		if !ok {
			return 0, fmt.Errorf("cannot compare int64 to %T", b)
		}
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case uint64:
		// A decoded Version hands non-negative integers back as uint64.
		bv, ok := asInt64(b)
		if !ok {
			return 0, fmt.Errorf("cannot compare uint64 to %T", b)
		}
		avs := int64(av)
		switch {
		case avs < bv:
			return -1, nil
		case avs > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case float64:
		bv, ok := asFloat64(b)
		if !ok {
			return 0, fmt.Errorf("cannot compare float64 to %T", b)
		}
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, fmt.Errorf("cannot compare bool to %T", b)
		}
		if av == bv {
			return 0, nil
		}
		if !av && bv {
			return -1, nil
		}
		return 1, nil
	default:
		return 0, fmt.Errorf("unsupported comparison operand type %T", a)
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// Apply filters versions, keeping only those that satisfy every filter
// (AND semantics). It returns a concrete slice rather than a lazy
// iterator — there is no partial-consumption use case in this core that
// a slice doesn't already serve.
func Apply(filters []Filter, versions []*version.Version) ([]*version.Version, error) {
	out := make([]*version.Version, 0, len(versions))
	for _, v := range versions {
		keep := true
		for _, f := range filters {
			ok, err := f.Matches(v)
			if err != nil {
				return nil, err
			}
			if !ok {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, v)
		}
	}
	return out, nil
}
