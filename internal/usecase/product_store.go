package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fashioncompare/backend/internal/domain"
)

// Versioned blob key; breaking schema changes move to a new key instead of
// migrating in place.
const DefaultStoreKey = "fashion_compare_data_v2"

const (
	defaultMaxItems  = 100
	defaultRetention = 30 * 24 * time.Hour
)

// storeBlob is the single stored value: the product map plus an explicit
// append-only log of keys in insertion order, so capacity eviction does not
// depend on map iteration semantics.
type storeBlob struct {
	Order []string                  `json:"order"`
	Items map[string]domain.Product `json:"items"`
}

// StoreConfig holds configuration for the product store.
type StoreConfig struct {
	Key       string        // blob key, default DefaultStoreKey
	MaxItems  int           // capacity cap, default 100
	Retention time.Duration // per-entry TTL, default 30 days
}

// ProductStore persists product records keyed by URL inside one serialized
// blob on a host key-value API. Every save reads the whole blob, evicts
// expired and over-capacity entries, inserts, and writes the whole blob
// back; the mutex makes that cycle one critical section per process.
//
// Across processes the backend offers no atomicity: two concurrent saves
// are independent read-modify-write cycles and the second write wins,
// possibly dropping the first insertion. Multi-writer consistency is
// eventual, not strict.
type ProductStore struct {
	kv        domain.KeyValueStore
	key       string
	maxItems  int
	retention time.Duration
	log       *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewProductStore creates a product store over the given key-value backend.
func NewProductStore(kv domain.KeyValueStore, config StoreConfig, log *zap.Logger) *ProductStore {
	key := config.Key
	if key == "" {
		key = DefaultStoreKey
	}
	maxItems := config.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	retention := config.Retention
	if retention <= 0 {
		retention = defaultRetention
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductStore{
		kv:        kv,
		key:       key,
		maxItems:  maxItems,
		retention: retention,
		log:       log,
		now:       time.Now,
	}
}

// GetAll returns every stored record keyed by URL. Read failures and
// corrupt blobs yield an empty map, never an error.
func (s *ProductStore) GetAll(ctx context.Context) map[string]domain.Product {
	blob := s.readBlob(ctx)
	return blob.Items
}

// Get returns the stored record for the URL, or nil when absent.
func (s *ProductStore) Get(ctx context.Context, url string) *domain.Product {
	blob := s.readBlob(ctx)
	if p, ok := blob.Items[url]; ok {
		return &p
	}
	return nil
}

// Save validates the record, runs eviction on the current blob, inserts the
// record stamped with the save time, and writes the blob back. Reports
// success; failures are logged, never raised.
func (s *ProductStore) Save(ctx context.Context, product *domain.Product) bool {
	if err := product.Validate(); err != nil {
		s.log.Warn("rejecting invalid product", zap.Error(err))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	blob := s.readBlob(ctx)

	s.evictExpired(&blob, now)

	saved := *product
	saved.SavedTimestamp = now
	if _, exists := blob.Items[saved.URL]; !exists {
		blob.Order = append(blob.Order, saved.URL)
	}
	blob.Items[saved.URL] = saved

	s.evictOverCapacity(&blob)

	data, err := json.Marshal(blob)
	if err != nil {
		s.log.Error("blob marshal failed", zap.Error(err))
		return false
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.log.Error("blob write failed", zap.Error(err), zap.String("key", s.key))
		return false
	}
	return true
}

// Clear deletes the entire blob key. Reports success.
func (s *ProductStore) Clear(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(ctx, s.key); err != nil {
		s.log.Error("blob delete failed", zap.Error(err), zap.String("key", s.key))
		return false
	}
	return true
}

// readBlob loads and decodes the blob, failing open to an empty blob on any
// read or decode error.
func (s *ProductStore) readBlob(ctx context.Context) storeBlob {
	empty := storeBlob{Items: make(map[string]domain.Product)}

	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("blob read failed", zap.Error(err), zap.String("key", s.key))
		return empty
	}
	if len(data) == 0 {
		return empty
	}

	var blob storeBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		s.log.Warn("discarding corrupt blob", zap.Error(err), zap.String("key", s.key))
		return empty
	}
	if blob.Items == nil {
		blob.Items = make(map[string]domain.Product)
	}

	// Repair the order log if it drifted from the item map.
	if len(blob.Order) != len(blob.Items) {
		blob.Order = blob.Order[:0]
		for url := range blob.Items {
			blob.Order = append(blob.Order, url)
		}
	}
	return blob
}

// evictExpired removes every entry older than the retention window.
// Entries without a saved timestamp are never protected.
func (s *ProductStore) evictExpired(blob *storeBlob, now time.Time) {
	kept := blob.Order[:0]
	for _, url := range blob.Order {
		item, ok := blob.Items[url]
		if !ok {
			continue
		}
		if now.Sub(item.SavedTimestamp) > s.retention {
			delete(blob.Items, url)
			s.log.Debug("evicted expired entry", zap.String("url", url))
			continue
		}
		kept = append(kept, url)
	}
	blob.Order = kept
}

// evictOverCapacity trims the oldest entries by insertion order until the
// cap holds. Runs after insert so the cap is a true upper bound.
func (s *ProductStore) evictOverCapacity(blob *storeBlob) {
	for len(blob.Order) > s.maxItems {
		oldest := blob.Order[0]
		blob.Order = blob.Order[1:]
		delete(blob.Items, oldest)
		s.log.Debug("evicted over-capacity entry", zap.String("url", oldest))
	}
}
