package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStorageSaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "/uploads/")
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	ctx := context.Background()
	location, err := store.Save(ctx, "photo.jpg", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if location != "/uploads/photo.jpg" {
		t.Fatalf("unexpected public location %q", location)
	}

	data, err := os.ReadFile(filepath.Join(dir, "photo.jpg"))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("unexpected file contents %q", data)
	}

	thumbLocation, err := store.Save(ctx, "thumbnails/thumb_photo.jpg", strings.NewReader("thumb-bytes"))
	if err != nil {
		t.Fatalf("save thumbnail: %v", err)
	}
	if thumbLocation != "/uploads/thumbnails/thumb_photo.jpg" {
		t.Fatalf("unexpected thumbnail location %q", thumbLocation)
	}

	if err := store.Remove(ctx, "photo.jpg"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "photo.jpg")); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, got %v", err)
	}

	if err := store.Remove(ctx, "photo.jpg"); err != nil {
		t.Fatalf("remove must tolerate a missing file: %v", err)
	}
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	if _, err := store.Save(context.Background(), "../outside.jpg", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
	if _, err := store.Save(context.Background(), "", strings.NewReader("x")); err == nil {
		t.Fatalf("expected empty key to be rejected")
	}
}
