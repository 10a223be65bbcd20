// Package attr implements chronicle's attribute descriptor system: the
// typed, coercing, mergeable fields that make up a Model's schema.
package attr

import (
	"fmt"

	"github.com/aledsdavies/chronicle/core/errors"
	"github.com/aledsdavies/chronicle/core/serial"
)

// Type describes one attribute data type: how it validates/coerces raw
// input, decides emptiness, and orders two of its values.
type Type interface {
	// Name identifies the type for error messages and schema introspection.
	Name() string

	// Validate coerces value into this type's canonical Go representation,
	// or fails with a type or value error.
	Validate(value any) (any, error)

	// Empty reports whether a canonical value counts as "not provided" for
	// the purposes of a required-attribute check. Only the true absence of
	// a value (nil) counts as empty for numeric/boolean/collection types —
	// a declared zero, false, or empty collection is a real value.
	Empty(value any) bool

	// Less reports whether a sorts before b under this type's natural
	// ordering. Used by the Max merge strategy.
	Less(a, b any) bool
}

// AttributeView is the minimal read surface a merge Strategy needs from a
// Version: its commit timestamp and the raw state record for one named
// attribute. core/version.Version implements this so merge strategies never
// need to import core/version directly.
type AttributeView interface {
	Committed() int64
	AttributeRecord(name string) (*serial.Record, bool)
}

// Strategy is a per-attribute merge policy. Merge inspects local and remote
// and returns either a new staged state record to adopt, or (nil, nil) to
// keep local unchanged.
type Strategy interface {
	Name() string
	RequiresState() bool
	// Merge inspects local and remote's state for the named attribute and
	// decides whether to adopt remote's record. typ is the attribute's
	// declared Type, passed through so value-comparing strategies (Max)
	// don't need their own copy of it.
	Merge(local, remote AttributeView, name string, typ Type) (*serial.Record, error)
	// OnStage lets a stateful strategy stamp bookkeeping fields (e.g.
	// "updated") into the record being staged by a Model write.
	OnStage(record *serial.Record, isDefault bool)
}

// Descriptor binds a name, a Type, an optional default, a required flag,
// and a merge Strategy to a Model field.
type Descriptor struct {
	Name     string
	Type     Type
	Default  any
	Required bool
	Strategy Strategy
}

// Validate runs value through the descriptor's Type and enforces the
// required flag.
func (d *Descriptor) Validate(value any) (any, error) {
	coerced, err := d.Type.Validate(value)
	if err != nil {
		return nil, err
	}
	if d.Required && d.Type.Empty(coerced) {
		return nil, errors.NewValue(fmt.Sprintf("attribute %q is required", d.Name)).
			WithContext("attribute", d.Name)
	}
	return coerced, nil
}
