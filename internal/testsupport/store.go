package testsupport

import (
	"context"
	"testing"

	"geotag/internal/manifest"
)

// MustOpenManifest opens the frame catalog in dir and registers cleanup.
func MustOpenManifest(t testing.TB, dir string) *manifest.Store {
	t.Helper()

	store, err := manifest.Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("manifest.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
