package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	cache "github.com/krisalay/lru-cache"
	"github.com/krisalay/lru-cache/engine"
	"github.com/krisalay/lru-cache/types"
	"github.com/krisalay/lru-cache/writepolicy"
)

// ================= BACKING STORE =================
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string]string)}
}

func (s *InMemoryStore) Load(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fmt.Println("STORE  → load:", key)
	// Simulate a slow backing store so concurrent misses overlap.
	time.Sleep(20 * time.Millisecond)
	v, ok := s.data[key]
	if !ok {
		return "", fmt.Errorf("store: %q: %w", key, types.ErrNotFound)
	}
	return v, nil
}

func (s *InMemoryStore) Put(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Println("STORE  → put:", key)
	s.data[key] = value
	return nil
}

// ================= METRICS =================
type Metrics struct {
	mu        sync.Mutex
	hits      int
	misses    int
	evictions int
}

func (m *Metrics) Hit()      { m.mu.Lock(); m.hits++; m.mu.Unlock() }
func (m *Metrics) Miss()     { m.mu.Lock(); m.misses++; m.mu.Unlock() }
func (m *Metrics) Eviction() { m.mu.Lock(); m.evictions++; m.mu.Unlock() }

func (m *Metrics) Print() {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Println("\n==================== METRICS ====================")
	fmt.Printf("HITS      : %d\n", m.hits)
	fmt.Printf("MISSES    : %d\n", m.misses)
	fmt.Printf("EVICTIONS : %d\n", m.evictions)
}

// ================= MAIN =================

func main() {
	ctx := context.Background()

	fmt.Println("\n==================== 1) LRU CORE ====================")

	lru, err := cache.New[int, string](2)
	if err != nil {
		fmt.Println("ERROR  →", err)
		return
	}
	lru.Put(1, "a")
	lru.Put(2, "b")
	v, _ := lru.Get(1)
	fmt.Println("LRU    → GET 1 =", v, "(1 becomes most recent)")
	lru.Put(3, "c")
	_, ok := lru.Get(2)
	fmt.Println("LRU    → PUT 3, GET 2 found =", ok, "(2 was least recently used)")
	fmt.Println("LRU    →", lru)

	if _, err := cache.New[int, string](0); errors.Is(err, cache.ErrInvalidCapacity) {
		fmt.Println("LRU    → capacity 0 rejected:", err)
	}

	fmt.Println("\n==================== SYSTEM BOOT ====================")
	fmt.Println("CACHE MODE      : WRITE-BACK")
	fmt.Println("EVICTION POLICY : LRU")
	fmt.Println("CAPACITY        : 4 keys")

	// ---------------- Backing Store ----------------
	store := NewInMemoryStore()
	store.Put(ctx, "a", "alpha")
	store.Put(ctx, "b", "beta")

	// ---------------- Metrics ----------------
	metrics := &Metrics{}

	// ---------------- Cache Engine ----------------
	writePolicy := writepolicy.NewWriteBackPolicy[string, string](store, 1024, func(key string, err error) {
		fmt.Println("STORE  → write-back failed:", key, err)
	})
	eng := engine.NewCacheEngine[string, string](store, writePolicy, metrics)

	c, err := cache.NewLoadingCache(4, eng)
	if err != nil {
		fmt.Println("ERROR  →", err)
		return
	}

	// ====================================================
	fmt.Println("\n==================== 2) CACHE MISS ====================")
	s, _ := c.Get(ctx, "a")
	fmt.Println("CACHE  → GET a =", s)

	// ====================================================
	fmt.Println("\n==================== 3) CACHE HIT ====================")
	s, _ = c.Get(ctx, "a")
	fmt.Println("CACHE  → GET a =", s)

	// ====================================================
	fmt.Println("\n==================== 4) SINGLEFLIGHT ====================")

	wg := sync.WaitGroup{}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			val, _ := c.Get(ctx, "b")
			fmt.Printf("GOROUTINE-%d → GET b = %v\n", id, val)
		}(i)
	}
	wg.Wait()

	// ====================================================
	fmt.Println("\n==================== 5) EVICTION ====================")

	for i := 0; i < 4; i++ {
		c.Put(ctx, fmt.Sprintf("k%d", i), fmt.Sprint(i))
	}
	fmt.Println("CACHE  → keys (LRU → MRU):", c.Keys())
	fmt.Println("CACHE  → contains a after eviction =", c.Contains("a"))

	// ====================================================
	fmt.Println("\n==================== 6) REMOVE ====================")

	c.Remove("k0")
	fmt.Println("CACHE  → REMOVE k0")
	if _, err := c.Get(ctx, "missing"); errors.Is(err, cache.ErrNotFound) {
		fmt.Println("CACHE  → GET missing:", err)
	}

	// ====================================================
	metrics.Print()

	// ====================================================
	fmt.Println("\n==================== SHUTDOWN ====================")
	c.Close()
	fmt.Println("SYSTEM → cache closed cleanly")
}
