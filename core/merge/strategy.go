// Package merge implements chronicle's built-in per-attribute merge
// strategies and the two-pass merge engine that applies them.
package merge

import (
	"time"

	"github.com/aledsdavies/chronicle/core/attr"
	"github.com/aledsdavies/chronicle/core/serial"
)

// LatestObject is the default, stateless strategy: adopt remote's
// attribute record iff remote's whole-Version commit timestamp is newer
// than local's. It ignores per-attribute state entirely.
type LatestObject struct{}

func (LatestObject) Name() string                 { return "latest_object" }
func (LatestObject) RequiresState() bool          { return false }
func (LatestObject) OnStage(*serial.Record, bool) {}

func (LatestObject) Merge(local, remote attr.AttributeView, name string, _ attr.Type) (*serial.Record, error) {
	if remote.Committed() <= local.Committed() {
		return nil, nil
	}
	rec, ok := remote.AttributeRecord(name)
	if !ok {
		return nil, nil
	}
	return rec, nil
}

// LatestAttribute is the stateful strategy: each attribute record carries
// its own "updated" nanosecond timestamp, stamped by OnStage on every
// write, and merge compares those instead of the whole Version's commit
// time.
type LatestAttribute struct{}

func (LatestAttribute) Name() string        { return "latest_attribute" }
func (LatestAttribute) RequiresState() bool { return true }

// OnStage stamps "updated" with the current time whenever the attribute is
// written, including when a Model first takes on its default value.
func (LatestAttribute) OnStage(record *serial.Record, isDefault bool) {
	record.Set("updated", time.Now().UnixNano())
}

func (LatestAttribute) Merge(local, remote attr.AttributeView, name string, _ attr.Type) (*serial.Record, error) {
	remoteRec, ok := remote.AttributeRecord(name)
	if !ok {
		return nil, nil
	}
	remoteUpdated, ok := remoteRec.Get("updated")
	if !ok {
		return nil, nil
	}

	localRec, ok := local.AttributeRecord(name)
	if !ok {
		return remoteRec, nil
	}
	localUpdated, ok := localRec.Get("updated")
	if !ok {
		return remoteRec, nil
	}

	if asInt64(remoteUpdated) > asInt64(localUpdated) {
		return remoteRec, nil
	}
	return nil, nil
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case uint64:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}

// Max is the stateless value-comparing strategy: adopt remote iff its
// "value" is greater than local's "value" under typ's natural ordering.
// Ties keep local, as does a remote that lacks the attribute or its
// "value"; a local that lacks them adopts remote's record.
type Max struct{}

func (Max) Name() string                 { return "max" }
func (Max) RequiresState() bool          { return false }
func (Max) OnStage(*serial.Record, bool) {}

func (Max) Merge(local, remote attr.AttributeView, name string, typ attr.Type) (*serial.Record, error) {
	remoteRec, ok := remote.AttributeRecord(name)
	if !ok {
		return nil, nil
	}
	remoteValue, ok := remoteRec.Get("value")
	if !ok {
		return nil, nil
	}

	localRec, ok := local.AttributeRecord(name)
	if !ok {
		return remoteRec, nil
	}
	localValue, ok := localRec.Get("value")
	if !ok {
		return remoteRec, nil
	}

	if typ.Less(localValue, remoteValue) {
		return remoteRec, nil
	}
	return nil, nil
}
