package query

import (
	"fmt"
	"sort"

	"github.com/aledsdavies/chronicle/core/errors"
	"github.com/aledsdavies/chronicle/core/key"
	"github.com/aledsdavies/chronicle/core/schema"
	"github.com/aledsdavies/chronicle/core/version"
)

// Query is a declarative filter+order specification scoped under a parent
// key: {key, limit?, offset?, filter?, order?}. Its filter and order lists
// are slices, so a Query is not comparable with ==; Equal compares it
// structurally. Dict/FromDict round-trip it to/from a plain string-keyed
// mapping.
type Query struct {
	Key     key.Key
	Model   string
	Limit   int // 0 means unbounded
	Offset  int
	Filters []Filter
	Orders  []Order
}

// New constructs a Query scoped under parentKey for the named model type.
// Limit/Offset default to unbounded/0; add filters/orders with With*.
func New(parentKey key.Key, modelType string) Query {
	return Query{Key: parentKey, Model: modelType}
}

// WithFilter returns a copy of q with f appended to its filter list.
func (q Query) WithFilter(f Filter) Query {
	q.Filters = append(append([]Filter{}, q.Filters...), f)
	return q
}

// WithOrder returns a copy of q with o appended to its order list.
func (q Query) WithOrder(o Order) Query {
	q.Orders = append(append([]Order{}, q.Orders...), o)
	return q
}

// WithLimit returns a copy of q bounded to at most n results.
func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

// WithOffset returns a copy of q that skips the first n results.
func (q Query) WithOffset(n int) Query {
	q.Offset = n
	return q
}

// ModelSchema resolves q.Model against the process-wide registry, failing
// with an unregistered-model error (carrying fuzzy-matched suggestions,
// via core/schema.Lookup) when the type name is unknown.
func (q Query) ModelSchema() (*schema.ModelSchema, error) {
	return schema.Lookup(q.Model)
}

// Evaluate runs q's pipeline against candidates: apply every filter (AND
// semantics), stable-sort by q.Orders, drop the first q.Offset results,
// then keep at most q.Limit (0 meaning unbounded).
func (q Query) Evaluate(candidates []*version.Version) ([]*version.Version, error) {
	filtered, err := Apply(q.Filters, candidates)
	if err != nil {
		return nil, err
	}
	ordered, err := Sorted(filtered, q.Orders)
	if err != nil {
		return nil, err
	}

	if q.Offset > 0 {
		if q.Offset >= len(ordered) {
			return []*version.Version{}, nil
		}
		ordered = ordered[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(ordered) {
		ordered = ordered[:q.Limit]
	}
	return ordered, nil
}

// Dict serializes q to its plain mapping form: a filter entry is
// {field, op, operand}, an order entry is its normalized
// "+field"/"-field" string.
func (q Query) Dict() map[string]any {
	d := map[string]any{
		"key":   q.Key.String(),
		"model": q.Model,
	}
	if q.Limit > 0 {
		d["limit"] = q.Limit
	}
	if q.Offset > 0 {
		d["offset"] = q.Offset
	}
	if len(q.Filters) > 0 {
		filters := make([]map[string]any, len(q.Filters))
		for i, f := range q.Filters {
			filters[i] = map[string]any{
				"field":   f.Field,
				"op":      string(f.Op),
				"operand": f.Operand,
			}
		}
		d["filter"] = filters
	}
	if len(q.Orders) > 0 {
		d["order"] = StringsOf(q.Orders)
	}
	return d
}

// FromDict reconstructs a Query from its Dict() form.
func FromDict(d map[string]any) (Query, error) {
	keyVal, ok := d["key"]
	if !ok {
		return Query{}, errors.NewValue("query dict missing required field: key")
	}
	keyStr, ok := keyVal.(string)
	if !ok {
		return Query{}, errors.NewType(fmt.Sprintf("query field key: expected string, got %T", keyVal))
	}

	modelStr, _ := d["model"].(string)

	q := Query{Key: key.New(keyStr), Model: modelStr}

	if lim, ok := d["limit"]; ok {
		n, err := toInt(lim)
		if err != nil {
			return Query{}, errors.Wrap(errors.KindType, "query field limit", err)
		}
		q.Limit = n
	}
	if off, ok := d["offset"]; ok {
		n, err := toInt(off)
		if err != nil {
			return Query{}, errors.Wrap(errors.KindType, "query field offset", err)
		}
		q.Offset = n
	}

	if raw, ok := d["filter"]; ok {
		entries, err := asMapSlice(raw)
		if err != nil {
			return Query{}, errors.Wrap(errors.KindType, "query field filter", err)
		}
		for _, e := range entries {
			field, _ := e["field"].(string)
			opStr, _ := e["op"].(string)
			q.Filters = append(q.Filters, New(field, Op(opStr), e["operand"]))
		}
	}

	if raw, ok := d["order"]; ok {
		specs, err := asStringSlice(raw)
		if err != nil {
			return Query{}, errors.Wrap(errors.KindType, "query field order", err)
		}
		orders, err := ParseAll(specs)
		if err != nil {
			return Query{}, err
		}
		q.Orders = orders
	}

	return q, nil
}

// asMapSlice accepts either a native []map[string]any (built via Dict in
// Go) or a []any of map[string]any (the shape a generic CBOR/JSON decode of
// a serialized Query produces), matching the rest of the core's tolerance
// for the handful of numeric/collection shapes a self-describing codec can
// hand back.
func asMapSlice(v any) ([]map[string]any, error) {
	switch entries := v.(type) {
	case []map[string]any:
		return entries, nil
	case []any:
		out := make([]map[string]any, len(entries))
		for i, e := range entries {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("entry %d: expected map, got %T", i, e)
			}
			out[i] = m
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of maps, got %T", v)
	}
}

func asStringSlice(v any) ([]string, error) {
	switch specs := v.(type) {
	case []string:
		return specs, nil
	case []any:
		out := make([]string, len(specs))
		for i, s := range specs {
			str, ok := s.(string)
			if !ok {
				return nil, fmt.Errorf("entry %d: expected string, got %T", i, s)
			}
			out[i] = str
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of strings, got %T", v)
	}
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

// Equal reports structural equality over the normalized form: same key,
// model, limit, offset, and filter/order lists in order.
func (q Query) Equal(other Query) bool {
	if q.Key != other.Key || q.Model != other.Model || q.Limit != other.Limit || q.Offset != other.Offset {
		return false
	}
	if len(q.Filters) != len(other.Filters) || len(q.Orders) != len(other.Orders) {
		return false
	}
	for i := range q.Filters {
		if q.Filters[i] != other.Filters[i] {
			return false
		}
	}
	for i := range q.Orders {
		if q.Orders[i] != other.Orders[i] {
			return false
		}
	}
	return true
}

// String renders q's normalized dict form as a deterministic, sorted-key
// string, usable as a stable cache/hash key.
func (q Query) String() string {
	d := q.Dict()
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := "Query{"
	for i, k := range keys {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s=%v", k, d[k])
	}
	return s + "}"
}

// Validate checks that every Filter and Order field names either a fixed
// Version field or an attribute declared by q.Model's registered schema,
// failing fast (before Evaluate runs against real data) on a typo'd field
// name.
func (q Query) Validate() error {
	s, err := q.ModelSchema()
	if err != nil {
		return err
	}
	check := func(field string) error {
		if isVersionField(field) {
			return nil
		}
		if _, ok := s.Descriptor(field); ok {
			return nil
		}
		return errors.NewKey(fmt.Sprintf("query references unknown field %q for model %q", field, q.Model)).
			WithContext("field", field).
			WithContext("model", q.Model)
	}
	for _, f := range q.Filters {
		if err := check(f.Field); err != nil {
			return err
		}
	}
	for _, o := range q.Orders {
		if err := check(o.Field); err != nil {
			return err
		}
	}
	return nil
}
