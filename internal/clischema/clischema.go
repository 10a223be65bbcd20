// Package clischema registers the ad-hoc model type cmd/chronicle operates
// on: a single Dict attribute holding whatever --set key=value pairs the
// caller supplied. Real embedders of this module declare their own typed
// model schemas (see core/schema); this generic type exists purely so the
// CLI has something to put/get/merge/delete without requiring a compiled
// schema.
package clischema

import (
	"github.com/aledsdavies/chronicle/core/attr"
	"github.com/aledsdavies/chronicle/core/merge"
	"github.com/aledsdavies/chronicle/core/schema"
)

// Generic is the model type name cmd/chronicle registers and operates on.
const Generic = "Generic"

// FieldsAttribute is Generic's sole attribute: a string-keyed, string-valued
// Dict, merged with LatestAttribute so concurrent replica edits converge by
// per-attribute recency rather than whole-entity recency.
const FieldsAttribute = "fields"

func init() {
	if _, err := schema.Register(Generic,
		&attr.Descriptor{
			Name:     FieldsAttribute,
			Type:     attr.DictAttr{Elem: attr.StringAttr{}},
			Strategy: merge.LatestAttribute{},
		},
	); err != nil {
		panic("clischema: " + err.Error())
	}
}
