package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewDiskKV(t.TempDir())

	if _, ok, err := kv.Get(ctx, "daily_session_completed_timestamp"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := kv.Set(ctx, "daily_session_completed_timestamp", "1770629400"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := kv.Get(ctx, "daily_session_completed_timestamp")
	if err != nil || !ok || got != "1770629400" {
		t.Fatalf("unexpected get: %q ok=%v err=%v", got, ok, err)
	}

	if err := kv.Delete(ctx, "daily_session_completed_timestamp"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "daily_session_completed_timestamp"); ok {
		t.Fatal("expected key removed")
	}
}

func TestDiskKVPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := NewDiskKV(dir).Set(ctx, "name", "Sam"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := NewDiskKV(dir).Get(ctx, "name")
	if err != nil || !ok || got != "Sam" {
		t.Fatalf("unexpected reopened value: %q ok=%v err=%v", got, ok, err)
	}
}

func TestDiskKVWritesThroughTempDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kv := NewDiskKV(dir)
	for _, v := range []string{"1770629400", "1770715800"} {
		if err := kv.Set(ctx, "daily_session_completed_timestamp", v); err != nil {
			t.Fatalf("set: %v", err)
		}
	}

	leftovers, err := os.ReadDir(filepath.Join(dir, kvTempDir))
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("expected renamed temp files, found %d leftovers", len(leftovers))
	}
	raw, err := os.ReadFile(filepath.Join(dir, "daily_session_completed_timestamp"))
	if err != nil || string(raw) != "1770715800" {
		t.Fatalf("unexpected file contents %q: %v", raw, err)
	}
}

func TestDiskKVRejectsBadKeys(t *testing.T) {
	kv := NewDiskKV(t.TempDir())
	for _, key := range []string{"", "  ", "a/b", `a\b`, kvTempDir} {
		if err := kv.Set(context.Background(), key, "v"); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: expected invalid key, got %v", key, err)
		}
	}
}

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	if err := kv.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, ok, _ := kv.Get(ctx, "k"); !ok || got != "v" {
		t.Fatalf("unexpected value %q ok=%v", got, ok)
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Fatal("expected key removed")
	}
}
