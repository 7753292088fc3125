package storage

import (
	"context"
	"testing"
)

func TestMemoryStore_SetAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "blob", []byte(`{"items":{}}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.Get(ctx, "blob")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `{"items":{}}` {
		t.Errorf("Get() = %q", got)
	}
}

func TestMemoryStore_MissingKey(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get() error = %v, want nil for absent key", err)
	}
	if got != nil {
		t.Errorf("Get() = %v, want nil", got)
	}
}

func TestMemoryStore_Remove(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Set(ctx, "blob", []byte("x"))
	if err := store.Remove(ctx, "blob"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if got, _ := store.Get(ctx, "blob"); got != nil {
		t.Errorf("Get() = %v after remove, want nil", got)
	}

	// Removing again is a no-op.
	if err := store.Remove(ctx, "blob"); err != nil {
		t.Errorf("Remove() error = %v on absent key", err)
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value := []byte("original")
	store.Set(ctx, "blob", value)
	value[0] = 'X'

	got, _ := store.Get(ctx, "blob")
	if string(got) != "original" {
		t.Errorf("Get() = %q, stored value must not alias the caller's slice", got)
	}

	got[0] = 'Y'
	again, _ := store.Get(ctx, "blob")
	if string(again) != "original" {
		t.Errorf("Get() = %q, returned value must not alias the stored slice", again)
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := string(rune('a' + id))
			if err := store.Set(ctx, key, []byte{byte(id)}); err != nil {
				t.Errorf("concurrent Set() error = %v", err)
			}
			if _, err := store.Get(ctx, key); err != nil {
				t.Errorf("concurrent Get() error = %v", err)
			}
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
