package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fashioncompare/backend/internal/domain"
)

type fakeKV struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	delErr  error
	setCall int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.data[key], nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value []byte) error {
	f.setCall++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeKV) Remove(ctx context.Context, key string) error {
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.data, key)
	return nil
}

func validProduct(n int) *domain.Product {
	return &domain.Product{
		URL:       fmt.Sprintf("https://example.com/p/%d", n),
		Title:     fmt.Sprintf("Product %d", n),
		Price:     float64(n) + 0.99,
		Timestamp: time.Now(),
	}
}

func TestProductStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewProductStore(newFakeKV(), StoreConfig{}, nil)

	p := validProduct(1)
	p.Images = []string{"https://cdn.example.com/1.jpg"}
	p.Metadata = map[string]string{"sku": "P-1"}

	before := time.Now()
	if !store.Save(ctx, p) {
		t.Fatal("Save() = false, want true")
	}

	got := store.Get(ctx, p.URL)
	if got == nil {
		t.Fatal("Get() = nil after save")
	}
	if got.Title != p.Title || got.Price != p.Price || got.Brand != p.Brand {
		t.Errorf("Get() = %+v, want fields of %+v", got, p)
	}
	if len(got.Images) != 1 || got.Images[0] != p.Images[0] {
		t.Errorf("Images = %v, want %v", got.Images, p.Images)
	}
	if got.Metadata["sku"] != "P-1" {
		t.Errorf("Metadata = %v", got.Metadata)
	}
	if got.SavedTimestamp.Before(before) {
		t.Errorf("SavedTimestamp = %v, want >= %v", got.SavedTimestamp, before)
	}
	if !p.SavedTimestamp.IsZero() {
		t.Error("Save() must not mutate the caller's record")
	}
}

func TestProductStore_ValidationGate(t *testing.T) {
	ctx := context.Background()
	store := NewProductStore(newFakeKV(), StoreConfig{}, nil)

	tests := []struct {
		name    string
		product *domain.Product
	}{
		{name: "nil product", product: nil},
		{name: "empty title", product: &domain.Product{URL: "https://e.com", Price: 1}},
		{name: "zero price", product: &domain.Product{URL: "https://e.com", Title: "x", Price: 0}},
		{name: "negative price", product: &domain.Product{URL: "https://e.com", Title: "x", Price: -5}},
		{name: "bad scheme", product: &domain.Product{URL: "chrome://settings", Title: "x", Price: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if store.Save(ctx, tt.product) {
				t.Error("Save() = true, want rejection")
			}
		})
	}
}

func TestProductStore_TTLEviction(t *testing.T) {
	ctx := context.Background()
	store := NewProductStore(newFakeKV(), StoreConfig{Retention: 30 * 24 * time.Hour}, nil)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	stale := validProduct(1)
	fresh := validProduct(2)
	if !store.Save(ctx, stale) {
		t.Fatal("save stale failed")
	}

	// 10 days later the first record is still within retention.
	store.now = func() time.Time { return base.Add(10 * 24 * time.Hour) }
	if !store.Save(ctx, fresh) {
		t.Fatal("save fresh failed")
	}
	if got := store.GetAll(ctx); len(got) != 2 {
		t.Fatalf("len = %d, want 2 before expiry", len(got))
	}

	// 31 days after the first save, the next save evicts it regardless of
	// the other record's freshness.
	store.now = func() time.Time { return base.Add(31 * 24 * time.Hour) }
	if !store.Save(ctx, validProduct(3)) {
		t.Fatal("save trigger failed")
	}

	got := store.GetAll(ctx)
	if _, ok := got[stale.URL]; ok {
		t.Error("expired record still present after save")
	}
	if _, ok := got[fresh.URL]; !ok {
		t.Error("fresh record evicted")
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestProductStore_CapacityEviction(t *testing.T) {
	ctx := context.Background()
	store := NewProductStore(newFakeKV(), StoreConfig{MaxItems: 3}, nil)

	for i := 1; i <= 4; i++ {
		if !store.Save(ctx, validProduct(i)) {
			t.Fatalf("save %d failed", i)
		}
	}

	got := store.GetAll(ctx)
	if len(got) != 3 {
		t.Fatalf("len = %d, want exactly the capacity", len(got))
	}
	if _, ok := got[validProduct(1).URL]; ok {
		t.Error("earliest-inserted record survived capacity eviction")
	}
	for i := 2; i <= 4; i++ {
		if _, ok := got[validProduct(i).URL]; !ok {
			t.Errorf("record %d missing", i)
		}
	}
}

func TestProductStore_ResaveKeepsPosition(t *testing.T) {
	ctx := context.Background()
	store := NewProductStore(newFakeKV(), StoreConfig{MaxItems: 2}, nil)

	store.Save(ctx, validProduct(1))
	store.Save(ctx, validProduct(2))
	// Re-saving the first record does not move it to the back of the order.
	store.Save(ctx, validProduct(1))
	store.Save(ctx, validProduct(3))

	got := store.GetAll(ctx)
	if _, ok := got[validProduct(1).URL]; ok {
		t.Error("re-saved record kept its original slot and should be evicted first")
	}
	if _, ok := got[validProduct(2).URL]; !ok {
		t.Error("second record missing")
	}
}

func TestProductStore_FailOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("read failure yields empty map", func(t *testing.T) {
		kv := newFakeKV()
		kv.getErr = errors.New("backend down")
		store := NewProductStore(kv, StoreConfig{}, nil)

		if got := store.GetAll(ctx); len(got) != 0 {
			t.Errorf("GetAll() len = %d, want 0", len(got))
		}
		if got := store.Get(ctx, "https://example.com/p/1"); got != nil {
			t.Errorf("Get() = %v, want nil", got)
		}
	})

	t.Run("corrupt blob yields empty map", func(t *testing.T) {
		kv := newFakeKV()
		kv.data[DefaultStoreKey] = []byte("{not json")
		store := NewProductStore(kv, StoreConfig{}, nil)

		if got := store.GetAll(ctx); len(got) != 0 {
			t.Errorf("GetAll() len = %d, want 0", len(got))
		}
		// A save on top of the corrupt blob starts fresh rather than failing.
		if !store.Save(ctx, validProduct(1)) {
			t.Error("Save() = false on corrupt blob, want fresh start")
		}
	})

	t.Run("write failure reports false", func(t *testing.T) {
		kv := newFakeKV()
		kv.setErr = errors.New("quota exceeded")
		store := NewProductStore(kv, StoreConfig{}, nil)

		if store.Save(ctx, validProduct(1)) {
			t.Error("Save() = true, want false on write failure")
		}
	})
}

func TestProductStore_Clear(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	store := NewProductStore(kv, StoreConfig{}, nil)

	store.Save(ctx, validProduct(1))
	if !store.Clear(ctx) {
		t.Fatal("Clear() = false")
	}
	if got := store.GetAll(ctx); len(got) != 0 {
		t.Errorf("len = %d after clear, want 0", len(got))
	}

	kv.delErr = errors.New("backend down")
	if store.Clear(ctx) {
		t.Error("Clear() = true, want false on delete failure")
	}
}
