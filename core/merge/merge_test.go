package merge_test

import (
	"testing"
	"time"

	"github.com/aledsdavies/chronicle/core/attr"
	"github.com/aledsdavies/chronicle/core/key"
	"github.com/aledsdavies/chronicle/core/merge"
	"github.com/aledsdavies/chronicle/core/model"
	"github.com/aledsdavies/chronicle/core/schema"
)

func init() {
	if _, err := schema.Register("MergeTestLatestObject",
		&attr.Descriptor{Name: "value", Type: attr.StringAttr{}, Default: ""},
	); err != nil {
		panic(err)
	}
	if _, err := schema.Register("MergeTestLatestAttribute",
		&attr.Descriptor{Name: "value", Type: attr.StringAttr{}, Default: "", Strategy: merge.LatestAttribute{}},
	); err != nil {
		panic(err)
	}
	if _, err := schema.Register("MergeTestMax",
		&attr.Descriptor{Name: "value", Type: attr.IntegerAttr{}, Default: int64(0), Strategy: merge.Max{}},
	); err != nil {
		panic(err)
	}
}

func newCommitted(t *testing.T, typeName, entityKey, attrName string, value any) *model.Model {
	t.Helper()
	m, err := model.New(key.New(entityKey), typeName)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := m.SetAttribute(attrName, value); err != nil {
		t.Fatalf("SetAttribute error: %v", err)
	}
	if _, err := m.Commit(); err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	return m
}

func TestLatestObjectKeepsLocalWhenOlder(t *testing.T) {
	remote := newCommitted(t, "MergeTestLatestObject", "/MergeTestLatestObject/A", "value", "remote")
	time.Sleep(time.Millisecond)
	local := newCommitted(t, "MergeTestLatestObject", "/MergeTestLatestObject/A", "value", "local")

	merged, err := (merge.Engine{}).Merge(local, remote.Version())
	if err != nil {
		t.Fatalf("Merge error: %v", err)
	}
	v, _ := merged.AttributeValue("value")
	if v != "local" {
		t.Errorf("AttributeValue(value) = %v, want local (remote is older)", v)
	}
}

func TestLatestObjectAdoptsNewerRemote(t *testing.T) {
	local := newCommitted(t, "MergeTestLatestObject", "/MergeTestLatestObject/B", "value", "local")
	time.Sleep(time.Millisecond)
	remote := newCommitted(t, "MergeTestLatestObject", "/MergeTestLatestObject/B", "value", "remote")

	merged, err := (merge.Engine{}).Merge(local, remote.Version())
	if err != nil {
		t.Fatalf("Merge error: %v", err)
	}
	v, _ := merged.AttributeValue("value")
	if v != "remote" {
		t.Errorf("AttributeValue(value) = %v, want remote (remote is newer)", v)
	}
}

func TestMergeRejectsDirtyLocal(t *testing.T) {
	local, err := model.New(key.New("/MergeTestLatestObject/C"), "MergeTestLatestObject")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := local.SetAttribute("value", "x"); err != nil {
		t.Fatalf("SetAttribute error: %v", err)
	}
	remote := newCommitted(t, "MergeTestLatestObject", "/MergeTestLatestObject/C", "value", "remote")

	if _, err := (merge.Engine{}).Merge(local, remote.Version()); err == nil {
		t.Fatal("expected merge failure for dirty local model")
	}
}

func TestMaxStrategyAdoptsGreaterValue(t *testing.T) {
	local := newCommitted(t, "MergeTestMax", "/MergeTestMax/A", "value", int64(5))
	remote := newCommitted(t, "MergeTestMax", "/MergeTestMax/A", "value", int64(9))

	merged, err := (merge.Engine{}).Merge(local, remote.Version())
	if err != nil {
		t.Fatalf("Merge error: %v", err)
	}
	v, _ := merged.AttributeValue("value")
	if v != int64(9) {
		t.Errorf("AttributeValue(value) = %v, want 9 (max)", v)
	}
}

func TestMaxStrategyKeepsLocalOnTieOrGreater(t *testing.T) {
	local := newCommitted(t, "MergeTestMax", "/MergeTestMax/B", "value", int64(9))
	remote := newCommitted(t, "MergeTestMax", "/MergeTestMax/B", "value", int64(3))

	merged, err := (merge.Engine{}).Merge(local, remote.Version())
	if err != nil {
		t.Fatalf("Merge error: %v", err)
	}
	v, _ := merged.AttributeValue("value")
	if v != int64(9) {
		t.Errorf("AttributeValue(value) = %v, want 9 (local wins, not smaller remote)", v)
	}

	tieLocal := newCommitted(t, "MergeTestMax", "/MergeTestMax/C", "value", int64(7))
	tieRemote := newCommitted(t, "MergeTestMax", "/MergeTestMax/C", "value", int64(7))

	tied, err := (merge.Engine{}).Merge(tieLocal, tieRemote.Version())
	if err != nil {
		t.Fatalf("tie Merge error: %v", err)
	}
	if tied.Hash() != tieLocal.Version().Hash() {
		t.Errorf("tie merge hash = %s, want local's unchanged %s", tied.Hash(), tieLocal.Version().Hash())
	}
}

func TestLatestAttributeAdoptsWhenRemoteUpdatedNewer(t *testing.T) {
	local := newCommitted(t, "MergeTestLatestAttribute", "/MergeTestLatestAttribute/A", "value", "local")
	time.Sleep(time.Millisecond)
	remote := newCommitted(t, "MergeTestLatestAttribute", "/MergeTestLatestAttribute/A", "value", "remote")

	merged, err := (merge.Engine{}).Merge(local, remote.Version())
	if err != nil {
		t.Fatalf("Merge error: %v", err)
	}
	v, _ := merged.AttributeValue("value")
	if v != "remote" {
		t.Errorf("AttributeValue(value) = %v, want remote (newer updated)", v)
	}
}

func TestMergeConvergesOnRepeatedApplication(t *testing.T) {
	local := newCommitted(t, "MergeTestLatestObject", "/MergeTestLatestObject/D", "value", "local")
	time.Sleep(time.Millisecond)
	remote := newCommitted(t, "MergeTestLatestObject", "/MergeTestLatestObject/D", "value", "remote")

	first, err := (merge.Engine{}).Merge(local, remote.Version())
	if err != nil {
		t.Fatalf("first Merge error: %v", err)
	}
	second, err := (merge.Engine{}).Merge(local, remote.Version())
	if err != nil {
		t.Fatalf("second Merge error: %v", err)
	}

	v1, _ := first.AttributeValue("value")
	v2, _ := second.AttributeValue("value")
	if v1 != v2 {
		t.Errorf("applying the same remote twice diverged: %v != %v", v1, v2)
	}
}
