package store_test

import (
	"errors"
	"testing"

	"keysync/internal/domain"
	"keysync/internal/store"
)

func TestVault_SetGetDelete(t *testing.T) {
	dir := t.TempDir()
	v := store.NewFileVault(dir, "pass")

	if _, ok, err := v.Get("missing"); err != nil || ok {
		t.Fatalf("get missing: ok=%v err=%v", ok, err)
	}
	if err := v.Set("a", "1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := v.Set("b", "2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := v.Get("a")
	if err != nil || !ok || got != "1" {
		t.Fatalf("get a: %q ok=%v err=%v", got, ok, err)
	}

	keys, err := v.Keys()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("keys = %v", keys)
	}

	if err := v.Delete("a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := v.Get("a"); ok {
		t.Fatal("deleted key still present")
	}
	// Deleting twice is a no-op.
	if err := v.Delete("a"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestVault_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	v1 := store.NewFileVault(dir, "pass")
	if err := v1.Set("k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}

	v2 := store.NewFileVault(dir, "pass")
	got, ok, err := v2.Get("k")
	if err != nil || !ok || got != "v" {
		t.Fatalf("reopened get: %q ok=%v err=%v", got, ok, err)
	}
}

func TestVault_WrongPassphraseIsSecurityError(t *testing.T) {
	dir := t.TempDir()
	v1 := store.NewFileVault(dir, "correct")
	if err := v1.Set("k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}

	v2 := store.NewFileVault(dir, "wrong")
	_, _, err := v2.Get("k")
	if err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
	if !errors.Is(err, domain.Security) {
		t.Fatalf("kind = %v, want security", domain.KindOf(err))
	}
}
