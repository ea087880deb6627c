package storage_test

import (
	"strings"
	"testing"

	"github.com/barangay-konek/portal-api/internal/storage"
)

// TestNewKey verifies keys are unique and keep the lowered extension.
func TestNewKey(t *testing.T) {
	a := storage.NewKey("Valid-ID.JPG")
	b := storage.NewKey("Valid-ID.JPG")

	if a == b {
		t.Error("Expected unique keys for identical filenames")
	}
	if !strings.HasSuffix(a, ".jpg") {
		t.Errorf("Expected lowered extension, got %q", a)
	}

	if key := storage.NewKey("no-extension"); strings.Contains(key, ".") {
		t.Errorf("Expected no extension, got %q", key)
	}
}

// TestPublicResolver verifies URL joining and the empty-key passthrough.
func TestPublicResolver(t *testing.T) {
	r := storage.NewPublicResolver("https://cdn.example.test/")

	if got := r.URL("abc.png"); got != "https://cdn.example.test/abc.png" {
		t.Errorf("Unexpected URL %q", got)
	}
	if got := r.URL("/abc.png"); got != "https://cdn.example.test/abc.png" {
		t.Errorf("Expected leading slash collapsed, got %q", got)
	}
	if got := r.URL(""); got != "" {
		t.Errorf("Expected empty URL for empty key, got %q", got)
	}
}
