package invariant_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/aledsdavies/chronicle/core/invariant"
)

// mustPanic runs fn, recovers its panic, and returns the panic message.
// It fails the test if fn returns normally.
func mustPanic(t *testing.T, fn func()) string {
	t.Helper()
	var msg string
	func() {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected panic, got normal return")
			}
			msg = fmt.Sprintf("%v", r)
		}()
		fn()
	}()
	return msg
}

func TestPreconditionPass(t *testing.T) {
	committed, created := int64(10), int64(5)
	invariant.Precondition(true, "always holds")
	invariant.Precondition(committed >= created, "committed must not precede created")
}

func TestPreconditionFail(t *testing.T) {
	msg := mustPanic(t, func() {
		invariant.Precondition(false, "committed must not precede created")
	})
	if !strings.Contains(msg, "PRECONDITION VIOLATION") {
		t.Errorf("expected PRECONDITION VIOLATION, got: %s", msg)
	}
	if !strings.Contains(msg, "committed must not precede created") {
		t.Errorf("expected the contract message, got: %s", msg)
	}
	if !strings.Contains(msg, "at ") {
		t.Errorf("expected call-site context, got: %s", msg)
	}
}

func TestPostconditionFail(t *testing.T) {
	msg := mustPanic(t, func() {
		invariant.Postcondition(false, "commit parent must equal pre-commit hash")
	})
	if !strings.Contains(msg, "POSTCONDITION VIOLATION") {
		t.Errorf("expected POSTCONDITION VIOLATION, got: %s", msg)
	}
	if !strings.Contains(msg, "commit parent must equal pre-commit hash") {
		t.Errorf("expected the contract message, got: %s", msg)
	}
}

func TestInvariantFail(t *testing.T) {
	msg := mustPanic(t, func() {
		invariant.Invariant(false, "cache size must not exceed capacity")
	})
	if !strings.Contains(msg, "INVARIANT VIOLATION") {
		t.Errorf("expected INVARIANT VIOLATION, got: %s", msg)
	}
}

func TestNotNil(t *testing.T) {
	s := "hash"
	invariant.NotNil(s, "hash")
	invariant.NotNil(&s, "hashPtr")
	invariant.NotNil([]byte{1}, "payload")

	msg := mustPanic(t, func() {
		var backend *struct{}
		invariant.NotNil(backend, "backend")
	})
	if !strings.Contains(msg, "backend must not be nil") {
		t.Errorf("expected named-nil message, got: %s", msg)
	}

	msg = mustPanic(t, func() {
		invariant.NotNil(nil, "record")
	})
	if !strings.Contains(msg, "record must not be nil") {
		t.Errorf("expected named-nil message, got: %s", msg)
	}
}

func TestInRange(t *testing.T) {
	invariant.InRange(3, 0, 4, "shard index")

	msg := mustPanic(t, func() {
		invariant.InRange(5, 0, 4, "shard index")
	})
	if !strings.Contains(msg, "shard index must be in range [0, 4], got 5") {
		t.Errorf("expected range message with bounds and value, got: %s", msg)
	}
}

func TestPositive(t *testing.T) {
	invariant.Positive(1, "capacity")

	for _, v := range []int{0, -3} {
		v := v
		msg := mustPanic(t, func() {
			invariant.Positive(v, "capacity")
		})
		if !strings.Contains(msg, fmt.Sprintf("capacity must be positive, got %d", v)) {
			t.Errorf("expected positivity message with value %d, got: %s", v, msg)
		}
	}
}

func TestExpectNoError(t *testing.T) {
	invariant.ExpectNoError(nil, "digest computation")

	msg := mustPanic(t, func() {
		invariant.ExpectNoError(fmt.Errorf("short read"), "digest computation")
	})
	if !strings.Contains(msg, "digest computation must not fail") {
		t.Errorf("expected operation name in message, got: %s", msg)
	}
	if !strings.Contains(msg, "short read") {
		t.Errorf("expected underlying error in message, got: %s", msg)
	}
}

func TestFormattedMessages(t *testing.T) {
	msg := mustPanic(t, func() {
		invariant.Invariant(false, "cache holds %d entries over capacity %d", 11, 10)
	})
	if !strings.Contains(msg, "cache holds 11 entries over capacity 10") {
		t.Errorf("expected formatted message, got: %s", msg)
	}
}

func TestStackTraceNamesCaller(t *testing.T) {
	msg := mustPanic(t, func() {
		invariant.Precondition(false, "trace check")
	})
	if !strings.Contains(msg, "invariant_test.go:") {
		t.Errorf("expected file:line of the violating call, got: %s", msg)
	}
}

func ExamplePrecondition() {
	storeChunk := func(payload []byte) {
		invariant.Precondition(len(payload) > 0, "payload must not be empty")
		fmt.Println("storing", len(payload), "bytes")
	}

	storeChunk([]byte("hello"))
	// Output: storing 5 bytes
}
