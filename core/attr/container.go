package attr

import (
	"fmt"
	"sort"

	"github.com/aledsdavies/chronicle/core/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ListAttr is the List attribute type: a homogeneous sequence whose
// elements are each coerced by Elem. An optional Schema deep-validates the
// decoded element shapes beyond "homogeneous by declared type".
type ListAttr struct {
	Elem   Type
	Schema *jsonschema.Schema
}

func (ListAttr) Name() string { return "list" }

func (l ListAttr) Validate(value any) (any, error) {
	raw, ok := toSlice(value)
	if !ok {
		return nil, errors.NewType(fmt.Sprintf("expected list, got %T", value))
	}
	if raw == nil {
		return nil, nil
	}
	out := make([]any, len(raw))
	for i, elem := range raw {
		coerced, err := l.Elem.Validate(elem)
		if err != nil {
			return nil, errors.Wrap(errors.KindValue, fmt.Sprintf("list element %d", i), err)
		}
		out[i] = coerced
	}
	if l.Schema != nil {
		if err := l.Schema.Validate(out); err != nil {
			return nil, errors.NewValue(fmt.Sprintf("list failed schema validation: %v", err))
		}
	}
	return out, nil
}

func (ListAttr) Empty(value any) bool {
	return value == nil
}

func (ListAttr) Less(a, b any) bool {
	al, bl := a.([]any), b.([]any)
	return len(al) < len(bl)
}

func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case nil:
		return nil, true
	}
	return nil, false
}

// DictAttr is the Dict attribute type: string-keyed, homogeneous values by
// declared Elem type. An optional Schema deep-validates the decoded value
// shapes.
type DictAttr struct {
	Elem   Type
	Schema *jsonschema.Schema
}

func (DictAttr) Name() string { return "dict" }

// Validate accepts only a string-keyed map (map[string]any; any other map
// shape is a type error) and runs its own value-coercion loop — it does not
// reuse ListAttr's element-coercion loop, since that loop assumes
// integer-indexed elements and would be the wrong shape for a string-keyed
// map. A nil value passes through as nil; the required/empty check is left
// to Descriptor.Validate, as for every type.
func (d DictAttr) Validate(value any) (any, error) {
	raw, ok := value.(map[string]any)
	if !ok {
		if value == nil {
			return nil, nil
		}
		return nil, errors.NewType(fmt.Sprintf("expected dict, got %T", value))
	}

	out := make(map[string]any, len(raw))
	for k, v := range raw {
		coerced, err := d.Elem.Validate(v)
		if err != nil {
			return nil, errors.Wrap(errors.KindValue, fmt.Sprintf("dict key %q", k), err)
		}
		out[k] = coerced
	}

	if d.Schema != nil {
		if err := d.Schema.Validate(out); err != nil {
			return nil, errors.NewValue(fmt.Sprintf("dict failed schema validation: %v", err))
		}
	}
	return out, nil
}

func (DictAttr) Empty(value any) bool {
	return value == nil
}

func (DictAttr) Less(a, b any) bool {
	am, bm := a.(map[string]any), b.(map[string]any)
	if len(am) != len(bm) {
		return len(am) < len(bm)
	}
	return sortedKeyString(am) < sortedKeyString(bm)
}

func sortedKeyString(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := ""
	for _, k := range keys {
		s += k + ";"
	}
	return s
}
