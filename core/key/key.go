// Package key implements chronicle's hierarchical path identifier: the
// foundational value type every other core component addresses entities by.
package key

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/aledsdavies/chronicle/core/errors"
)

// Key is a normalized, slash-separated path, always beginning with "/",
// with duplicate slashes collapsed and any trailing slash stripped (except
// for the root key itself). Keys are immutable and comparable by value.
type Key struct {
	str string
}

// New normalizes value into a Key. Any input that isn't already a string is
// coerced to its canonical string form via fmt.Sprint before normalization
// (e.g. New(5) behaves like New("5")).
func New(value any) Key {
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprint(value)
	}
	return Key{str: normalize(s)}
}

// normalize trims surrounding whitespace (coerced inputs can carry it),
// collapses repeated slashes, ensures a leading slash, and strips any
// trailing slash except when the result is the root "/".
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	if len(s) > 1 {
		s = strings.TrimSuffix(s, "/")
		if s == "" {
			s = "/"
		}
	}
	return s
}

// String returns the key's normalized string form.
func (k Key) String() string {
	return k.str
}

// IsZero reports whether k is the Key zero value (never explicitly
// constructed). Callers that always go through New never need this; it
// exists for defensive checks at deserialization boundaries.
func (k Key) IsZero() bool {
	return k.str == ""
}

// segments returns the non-empty path components after the leading slash.
// The root key has zero segments.
func (k Key) segments() []string {
	trimmed := strings.TrimPrefix(k.str, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// Parent returns the key one level up the hierarchy. It fails with a value
// error when k has zero or one segments (the root, or a top-level key),
// since there is no meaningful entity-bearing parent above those.
func (k Key) Parent() (Key, error) {
	segs := k.segments()
	if len(segs) <= 1 {
		return Key{}, errors.NewValue(fmt.Sprintf("key %q has no parent", k.str)).
			WithContext("key", k.str)
	}
	return Key{str: "/" + strings.Join(segs[:len(segs)-1], "/")}, nil
}

// Child appends segment as a new path component.
func (k Key) Child(segment any) Key {
	s, ok := segment.(string)
	if !ok {
		s = fmt.Sprint(segment)
	}
	if k.str == "/" {
		return New(s)
	}
	return New(k.str + "/" + s)
}

// Name returns the last path segment, or "" for the root key.
func (k Key) Name() string {
	segs := k.segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// Type returns the second-to-last path segment — the Type in a key ending in
// ".../Type/Name". It fails with a value error if k has fewer than three
// segments, so a bare two-segment "/Type/Name" key has no Type.
func (k Key) Type() (string, error) {
	segs := k.segments()
	if len(segs) < 3 {
		return "", errors.NewValue(fmt.Sprintf("key %q has fewer than three segments", k.str)).
			WithContext("key", k.str)
	}
	return segs[len(segs)-2], nil
}

// IsAncestorOf reports whether other is strictly nested under k.
func (k Key) IsAncestorOf(other Key) bool {
	if k == other {
		return false
	}
	prefix := k.str
	if prefix != "/" {
		prefix += "/"
	}
	return strings.HasPrefix(other.str, prefix)
}

// Equal reports whether other is a Key equal to k. It returns a type error
// if other is not a Key — comparisons between a Key and anything else are a
// caller bug, never a silent false.
func (k Key) Equal(other any) (bool, error) {
	o, ok := other.(Key)
	if !ok {
		return false, errors.NewType(fmt.Sprintf("cannot compare Key to %T", other))
	}
	return k == o, nil
}

// Less reports whether k sorts before other under plain lexicographic
// ordering of their normalized strings — the ordering Filter and Order use
// for the "key" field.
func (k Key) Less(other Key) bool {
	return k.str < other.str
}

// Random returns a fresh Key guaranteed unique across any realistic run:
// it mixes 16 bytes (128 bits) of crypto/rand entropy into the path, so the
// chance of collision across even millions of calls is negligible.
func Random() Key {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("key: crypto/rand unavailable: %v", err))
	}
	return New("/" + hex.EncodeToString(buf))
}
