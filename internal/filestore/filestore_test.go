package filestore_test

import (
	"path/filepath"
	"testing"

	"github.com/aledsdavies/chronicle/internal/filestore"
)

func TestPutGetDeleteRoundTrip(t *testing.T) {
	fs, err := filestore.New(filepath.Join(t.TempDir(), "store"))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if err := fs.Put("/A/1", []byte("hello")); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	v, ok, err := fs.Get("/A/1")
	if err != nil || !ok || string(v) != "hello" {
		t.Fatalf("Get = %s, %v, %v", v, ok, err)
	}

	n, err := fs.Len()
	if err != nil || n != 1 {
		t.Fatalf("Len() = %d, %v, want 1", n, err)
	}

	if err := fs.Delete("/A/1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, ok, err = fs.Get("/A/1")
	if err != nil || ok {
		t.Fatalf("expected miss after delete, got ok=%v err=%v", ok, err)
	}
}

func TestContainsDistinguishesKeys(t *testing.T) {
	fs, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := fs.Put("/A/1", []byte("x")); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if ok, _ := fs.Contains("/A/1"); !ok {
		t.Error("expected Contains(/A/1) = true")
	}
	if ok, _ := fs.Contains("/A/2"); ok {
		t.Error("expected Contains(/A/2) = false")
	}
}
