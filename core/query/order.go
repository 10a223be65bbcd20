package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aledsdavies/chronicle/core/errors"
	"github.com/aledsdavies/chronicle/core/version"
)

// Direction is an Order's sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Order is a single sort key: a field name plus a direction, parsed from
// the "+field"/"-field" string form (default direction, absent a prefix,
// is ascending).
type Order struct {
	Field     string
	Direction Direction
}

// Asc constructs an ascending Order on field.
func Asc(field string) Order { return Order{Field: field, Direction: Ascending} }

// Desc constructs a descending Order on field.
func Desc(field string) Order { return Order{Field: field, Direction: Descending} }

// Parse reads an Order from its "+field"/"-field" string form. A field
// with no prefix defaults to ascending.
func Parse(s string) (Order, error) {
	if s == "" {
		return Order{}, errors.NewValue("order string must not be empty")
	}
	switch s[0] {
	case '+':
		return Asc(s[1:]), nil
	case '-':
		return Desc(s[1:]), nil
	default:
		return Asc(s), nil
	}
}

// String renders o back to its "+field"/"-field" form, always with an
// explicit prefix — the normalized serialized form.
func (o Order) String() string {
	prefix := "+"
	if o.Direction == Descending {
		prefix = "-"
	}
	return prefix + o.Field
}

// Sorted performs a stable multi-key sort of versions by orders: primary
// key orders[0], ties broken by orders[1], and so on. The input slice is
// not mutated; Sorted returns a new slice.
func Sorted(versions []*version.Version, orders []Order) ([]*version.Version, error) {
	out := make([]*version.Version, len(versions))
	copy(out, versions)

	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		for _, o := range orders {
			vi, oki := fieldValue(out[i], o.Field)
			vj, okj := fieldValue(out[j], o.Field)
			if !oki || !okj {
				// A Version missing the sort field sorts after one that
				// has it, regardless of direction, rather than erroring
				// the whole sort out from under unrelated keys.
				if oki != okj {
					return oki
				}
				continue
			}
			cmp, err := compare(vi, vj)
			if err != nil {
				sortErr = errors.Wrap(errors.KindType, fmt.Sprintf("ordering by field %q", o.Field), err)
				return false
			}
			if cmp == 0 {
				continue
			}
			if o.Direction == Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return out, nil
}

// ParseAll parses a slice of "+field"/"-field" strings into Orders, in
// order.
func ParseAll(specs []string) ([]Order, error) {
	orders := make([]Order, len(specs))
	for i, s := range specs {
		o, err := Parse(s)
		if err != nil {
			return nil, err
		}
		orders[i] = o
	}
	return orders, nil
}

// StringsOf renders orders back to their normalized string forms, joined
// the way Query.Dict's "order" entry expects them: one explicit-prefix
// string per Order.
func StringsOf(orders []Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.String()
	}
	return out
}

// isVersionField reports whether field names a fixed Version field rather
// than a user attribute — used by Query validation to decide whether a
// field reference needs no schema lookup.
func isVersionField(field string) bool {
	return versionFields[strings.TrimSpace(field)]
}
