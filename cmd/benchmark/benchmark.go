package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	cache "github.com/krisalay/lru-cache"
	"github.com/krisalay/lru-cache/engine"
	"github.com/krisalay/lru-cache/types"
)

// ================= BACKING STORE =================

type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string]int)}
}

func (s *InMemoryStore) Load(ctx context.Context, key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return 0, types.ErrNotFound
	}
	return v, nil
}

func (s *InMemoryStore) Put(ctx context.Context, key string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// ================= BENCHMARK =================

func main() {
	ctx := context.Background()

	const (
		capacity   = 100000
		storeKeys  = 200000
		goroutines = 200
		opsPerG    = 5000
	)

	fmt.Println("\n================ CACHE LOAD BENCHMARK =================")
	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Capacity     :", capacity)
	fmt.Println("Store Keys   :", storeKeys)
	fmt.Println("Goroutines   :", goroutines)
	fmt.Println("Ops/Goroutine:", opsPerG)
	fmt.Println("---------------------------------")

	// ---------------- Backing Store ----------------
	store := NewInMemoryStore()
	for i := 0; i < storeKeys; i++ {
		store.data[fmt.Sprintf("key-%d", i)] = i
	}

	// ---------------- Single goroutine core ----------------
	lru, err := cache.New[string, int](capacity)
	if err != nil {
		fmt.Println("ERROR:", err)
		return
	}

	start := time.Now()
	for i := 0; i < goroutines*opsPerG; i++ {
		key := fmt.Sprintf("key-%d", i%storeKeys)
		if _, ok := lru.Get(key); !ok {
			lru.Put(key, i)
		}
	}
	report("LRUCache (1 goroutine)", goroutines*opsPerG, time.Since(start))

	// ---------------- Loading cache ----------------
	c, err := cache.NewLoadingCache(capacity, engine.NewCacheEngine[string, int](store, nil, nil))
	if err != nil {
		fmt.Println("ERROR:", err)
		return
	}
	defer c.Close()

	start = time.Now()

	wg := sync.WaitGroup{}
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < opsPerG; j++ {
				key := fmt.Sprintf("key-%d", (id*opsPerG+j)%storeKeys)
				c.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	report(fmt.Sprintf("LoadingCache (%d goroutines)", goroutines), goroutines*opsPerG, time.Since(start))
}

func report(name string, ops int, d time.Duration) {
	fmt.Println("\n================ RESULTS:", name, "=================")
	fmt.Printf("Total Operations : %d\n", ops)
	fmt.Printf("Total Time       : %v\n", d)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(ops)/d.Seconds())
}
