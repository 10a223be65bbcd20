package attr

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aledsdavies/chronicle/core/errors"
	"github.com/aledsdavies/chronicle/core/key"
)

// StringAttr is the String attribute type. Multiline controls whether "\n"
// is rejected. Format optionally names a registered format validator
// (e.g. "semver", "ip", "cidr", "duration" — see format.go) the value must
// additionally satisfy.
type StringAttr struct {
	Multiline bool
	Format    string
}

func (StringAttr) Name() string { return "string" }

func (s StringAttr) Validate(value any) (any, error) {
	str, ok := value.(string)
	if !ok {
		return nil, errors.NewType(fmt.Sprintf("expected string, got %T", value))
	}
	if !s.Multiline && strings.Contains(str, "\n") {
		return nil, errors.NewValue("string attribute must not contain newlines")
	}
	if s.Format != "" {
		fn, ok := LookupFormat(s.Format)
		if !ok {
			return nil, errors.NewValue(fmt.Sprintf("unknown string format %q", s.Format)).
				WithContext("format", s.Format)
		}
		if !fn(str) {
			return nil, errors.NewValue(fmt.Sprintf("string %q does not satisfy format %q", str, s.Format)).
				WithContext("format", s.Format)
		}
	}
	return str, nil
}

func (StringAttr) Empty(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

func (StringAttr) Less(a, b any) bool {
	return a.(string) < b.(string)
}

// KeyAttr is the Key attribute type: a string that normalizes into a Key.
type KeyAttr struct{}

func (KeyAttr) Name() string { return "key" }

func (KeyAttr) Validate(value any) (any, error) {
	switch v := value.(type) {
	case key.Key:
		return v, nil
	case string:
		return key.New(v), nil
	default:
		return nil, errors.NewType(fmt.Sprintf("expected key or string, got %T", value))
	}
}

func (KeyAttr) Empty(value any) bool {
	return value == nil
}

func (KeyAttr) Less(a, b any) bool {
	return a.(key.Key).Less(b.(key.Key))
}

// IntegerAttr is the 64-bit signed Integer attribute type.
type IntegerAttr struct{}

func (IntegerAttr) Name() string { return "integer" }

func (IntegerAttr) Validate(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return nil, errors.NewType("expected integer, got bool")
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return nil, errors.NewValue(fmt.Sprintf("integer attribute cannot hold fractional value %v", v))
		}
		if v > math.MaxInt64 || v < math.MinInt64 {
			return nil, errors.NewValue(fmt.Sprintf("integer attribute value %v out of range", v))
		}
		return int64(v), nil
	default:
		return nil, errors.NewType(fmt.Sprintf("expected integer, got %T", value))
	}
}

func (IntegerAttr) Empty(value any) bool {
	return value == nil
}

func (IntegerAttr) Less(a, b any) bool {
	return a.(int64) < b.(int64)
}

// FloatAttr is the 64-bit Float attribute type.
type FloatAttr struct{}

func (FloatAttr) Name() string { return "float" }

func (FloatAttr) Validate(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return nil, errors.NewType("expected float, got bool")
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return nil, errors.NewType(fmt.Sprintf("expected float, got %T", value))
	}
}

func (FloatAttr) Empty(value any) bool {
	return value == nil
}

func (FloatAttr) Less(a, b any) bool {
	return a.(float64) < b.(float64)
}

// BooleanAttr is the Boolean attribute type.
type BooleanAttr struct{}

func (BooleanAttr) Name() string { return "boolean" }

func (BooleanAttr) Validate(value any) (any, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, errors.NewType(fmt.Sprintf("expected boolean, got %T", value))
	}
	return b, nil
}

func (BooleanAttr) Empty(value any) bool {
	return value == nil
}

func (BooleanAttr) Less(a, b any) bool {
	av, bv := a.(bool), b.(bool)
	return !av && bv
}

// TimeAttr is the Time attribute type: a nanosecond timestamp.
type TimeAttr struct{}

func (TimeAttr) Name() string { return "time" }

func (TimeAttr) Validate(value any) (any, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case time.Time:
		return v.UnixNano(), nil
	default:
		return nil, errors.NewType(fmt.Sprintf("expected time (int64 nanoseconds or time.Time), got %T", value))
	}
}

func (TimeAttr) Empty(value any) bool {
	return value == nil
}

func (TimeAttr) Less(a, b any) bool {
	return a.(int64) < b.(int64)
}

// DateTimeAttr presents as a wall-clock datetime but stores the same
// nanosecond-since-epoch representation as TimeAttr.
type DateTimeAttr struct {
	TimeAttr
}

func (DateTimeAttr) Name() string { return "datetime" }

// AsTime converts a DateTimeAttr's canonical int64-nanoseconds value back
// into a time.Time for display purposes.
func AsTime(nanos int64) time.Time {
	return time.Unix(0, nanos).UTC()
}
