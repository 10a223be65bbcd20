package query_test

import (
	"testing"

	"github.com/aledsdavies/chronicle/core/attr"
	"github.com/aledsdavies/chronicle/core/key"
	"github.com/aledsdavies/chronicle/core/query"
	"github.com/aledsdavies/chronicle/core/schema"
	"github.com/aledsdavies/chronicle/core/version"
)

func init() {
	if _, err := schema.Register("QueryTestABCD",
		&attr.Descriptor{Name: "label", Type: attr.StringAttr{}, Default: ""},
	); err != nil {
		panic(err)
	}
}

func mustVersion(t *testing.T, created, committed int64) *version.Version {
	t.Helper()
	v, err := version.New(key.New("/QueryTestABCD/ABCD"), "QueryTestABCD", version.BlankHash, created, committed, nil)
	if err != nil {
		t.Fatalf("version.New error: %v", err)
	}
	return v
}

func TestFilterCommittedGte(t *testing.T) {
	v1 := mustVersion(t, 1, 1)
	v2 := mustVersion(t, 1, 2)
	v3 := mustVersion(t, 1, 3)

	out, err := query.Apply([]query.Filter{query.New("committed", query.Gte, int64(2))}, []*version.Version{v1, v2, v3})
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if len(out) != 2 || out[0] != v2 || out[1] != v3 {
		t.Fatalf("Apply(committed >= 2) = %v, want [v2, v3]", out)
	}
}

func TestOrderAscendingCommitted(t *testing.T) {
	v1 := mustVersion(t, 1, 1)
	v2 := mustVersion(t, 1, 2)
	v3 := mustVersion(t, 1, 3)

	out, err := query.Sorted([]*version.Version{v3, v2, v1}, []query.Order{query.Asc("committed")})
	if err != nil {
		t.Fatalf("Sorted error: %v", err)
	}
	if out[0] != v1 || out[1] != v2 || out[2] != v3 {
		t.Fatalf("Sorted(+committed) did not produce [v1, v2, v3]")
	}
}

func TestOrderDescendingCreated(t *testing.T) {
	v1 := mustVersion(t, 1, 1)
	v2 := mustVersion(t, 2, 2)
	v3 := mustVersion(t, 3, 3)

	out, err := query.Sorted([]*version.Version{v1, v2, v3}, []query.Order{query.Desc("created")})
	if err != nil {
		t.Fatalf("Sorted error: %v", err)
	}
	if out[0] != v3 || out[1] != v2 || out[2] != v1 {
		t.Fatalf("Sorted(-created) did not produce [v3, v2, v1]")
	}
}

func TestOrderStability(t *testing.T) {
	// Equal-key inputs must preserve their relative input order.
	a := mustVersion(t, 5, 5)
	b := mustVersion(t, 5, 5)
	c := mustVersion(t, 5, 5)

	out, err := query.Sorted([]*version.Version{a, b, c}, []query.Order{query.Asc("committed")})
	if err != nil {
		t.Fatalf("Sorted error: %v", err)
	}
	if out[0] != a || out[1] != b || out[2] != c {
		t.Fatal("stable sort did not preserve input order among equal keys")
	}
}

func TestFilterCompositionCommutative(t *testing.T) {
	v1 := mustVersion(t, 1, 1)
	v2 := mustVersion(t, 1, 2)
	v3 := mustVersion(t, 1, 3)
	versions := []*version.Version{v1, v2, v3}

	a := query.New("committed", query.Gte, int64(2))
	b := query.New("committed", query.Lte, int64(3))

	ab, err := query.Apply([]query.Filter{a, b}, versions)
	if err != nil {
		t.Fatalf("Apply([a,b]) error: %v", err)
	}
	ba, err := query.Apply([]query.Filter{b, a}, versions)
	if err != nil {
		t.Fatalf("Apply([b,a]) error: %v", err)
	}
	if len(ab) != len(ba) {
		t.Fatalf("filter composition not commutative: %v vs %v", ab, ba)
	}
	for i := range ab {
		if ab[i] != ba[i] {
			t.Fatalf("filter composition not commutative at index %d", i)
		}
	}
}

func TestQueryEvaluateLimitOffset(t *testing.T) {
	v1 := mustVersion(t, 1, 1)
	v2 := mustVersion(t, 1, 2)
	v3 := mustVersion(t, 1, 3)

	q := query.New(key.New("/QueryTestABCD"), "QueryTestABCD").
		WithOrder(query.Asc("committed")).
		WithOffset(1).
		WithLimit(1)

	out, err := q.Evaluate([]*version.Version{v3, v1, v2})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(out) != 1 || out[0] != v2 {
		t.Fatalf("Evaluate(offset=1,limit=1) = %v, want [v2]", out)
	}
}

func TestQueryDictRoundTrip(t *testing.T) {
	q := query.New(key.New("/QueryTestABCD"), "QueryTestABCD").
		WithFilter(query.New("committed", query.Gte, int64(2))).
		WithOrder(query.Desc("created")).
		WithLimit(5).
		WithOffset(1)

	back, err := query.FromDict(q.Dict())
	if err != nil {
		t.Fatalf("FromDict error: %v", err)
	}
	if !q.Equal(back) {
		t.Fatalf("round-trip mismatch: %s vs %s", q.String(), back.String())
	}
}

func TestQueryValidateUnknownField(t *testing.T) {
	q := query.New(key.New("/QueryTestABCD"), "QueryTestABCD").
		WithFilter(query.New("nonexistent", query.Eq, "x"))
	if err := q.Validate(); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestQueryModelUnregistered(t *testing.T) {
	q := query.New(key.New("/Nope"), "CompletelyUnregisteredModelType")
	if _, err := q.ModelSchema(); err == nil {
		t.Fatal("expected unregistered-model error")
	}
}
