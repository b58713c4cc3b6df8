package blobfs

import (
	"context"
	"errors"
	"testing"

	"custodia/internal/domain"
)

func TestPutGetRemove(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "artifact-1", 1, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	content, err := store.Get(ctx, "artifact-1", 1)
	if err != nil || string(content) != "hello" {
		t.Fatalf("get = %q, %v", content, err)
	}

	if err := store.Remove(ctx, "artifact-1", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "artifact-1", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get after remove: %v", err)
	}
}

func TestPutIsWriteOnce(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "artifact-1", 1, []byte("original")); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, "artifact-1", 1, []byte("overwrite")); err == nil {
		t.Fatal("overwrite accepted")
	}
	content, _ := store.Get(ctx, "artifact-1", 1)
	if string(content) != "original" {
		t.Fatalf("content = %q", content)
	}

	// Same artifact, next version is a separate blob.
	if err := store.Put(ctx, "artifact-1", 2, []byte("v2")); err != nil {
		t.Fatal(err)
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Remove(context.Background(), "ghost", 1); err != nil {
		t.Fatal(err)
	}
}

func TestNewRequiresDir(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("empty directory accepted")
	}
}
