package cache

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
)

type countingMetrics struct {
	hits, misses, evictions int
}

func (m *countingMetrics) Hit()      { m.hits++ }
func (m *countingMetrics) Miss()     { m.misses++ }
func (m *countingMetrics) Eviction() { m.evictions++ }

func newLRU[K comparable, V any](t *testing.T, capacity int, opts ...Option) *LRUCache[K, V] {
	t.Helper()
	c, err := New[K, V](capacity, opts...)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	return c
}

func mustVerify[K comparable, V any](t *testing.T, c *LRUCache[K, V]) {
	t.Helper()
	if err := c.verify(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestNew(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		t.Parallel()
		c, err := New[int, string](10)
		if err != nil {
			t.Fatalf("not expected error = %v", err)
		}
		if c.Cap() != 10 || c.Len() != 0 {
			t.Errorf("got cap %d len %d, want cap 10 len 0", c.Cap(), c.Len())
		}
		mustVerify(t, c)
	})

	for _, capacity := range []int{0, -1, -10} {
		t.Run(fmt.Sprintf("rejects capacity %d", capacity), func(t *testing.T) {
			t.Parallel()
			c, err := New[int, string](capacity)
			if !errors.Is(err, ErrInvalidCapacity) {
				t.Errorf("capacity %d: got err %v, want ErrInvalidCapacity", capacity, err)
			}
			if c != nil {
				t.Errorf("capacity %d: expected nil cache", capacity)
			}
		})
	}

	t.Run("rejects nil metrics", func(t *testing.T) {
		t.Parallel()
		if _, err := New[int, string](1, WithMetrics(nil)); err == nil {
			t.Errorf("error expected")
		}
	})
}

// capacity 2: put 1, put 2, get 1, put 3 evicts 2.
func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRU[int, string](t, 2)

	c.Put(1, "a")
	c.Put(2, "b")

	if v, ok := c.Get(1); !ok || v != "a" {
		t.Fatalf("get 1: got %q,%v want a,true", v, ok)
	}

	if evicted := c.Put(3, "c"); !evicted {
		t.Fatalf("expected put 3 to evict")
	}
	mustVerify(t, c)

	if _, ok := c.Get(2); ok {
		t.Fatalf("expected 2 to be evicted")
	}
	if v, ok := c.Get(1); !ok || v != "a" {
		t.Fatalf("get 1: got %q,%v want a,true", v, ok)
	}
	if v, ok := c.Get(3); !ok || v != "c" {
		t.Fatalf("get 3: got %q,%v want c,true", v, ok)
	}
}

func TestCapacityOneEvictsImmediately(t *testing.T) {
	c := newLRU[int, string](t, 1)

	c.Put(1, "x")
	c.Put(2, "y")
	mustVerify(t, c)

	if _, ok := c.Get(1); ok {
		t.Fatalf("expected 1 to be evicted")
	}
	if v, ok := c.Get(2); !ok || v != "y" {
		t.Fatalf("get 2: got %q,%v want y,true", v, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("expected len 1, got %d", c.Len())
	}
}

func TestPutUpdatesExistingKey(t *testing.T) {
	c := newLRU[int, string](t, 2)

	c.Put(1, "a")
	if evicted := c.Put(1, "b"); evicted {
		t.Fatalf("update must not evict")
	}
	mustVerify(t, c)

	if c.Len() != 1 {
		t.Fatalf("expected len 1, got %d", c.Len())
	}
	if v, _ := c.Get(1); v != "b" {
		t.Fatalf("expected b, got %q", v)
	}
}

func TestPutUpdateRefreshesRecency(t *testing.T) {
	c := newLRU[string, int](t, 2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10) // a becomes most recent
	c.Put("c", 3)  // evicts b

	if c.Contains("b") {
		t.Fatalf("expected b to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 10 {
		t.Fatalf("get a: got %d,%v want 10,true", v, ok)
	}
}

func TestMissIsNotASentinel(t *testing.T) {
	c := newLRU[int, int](t, 2)

	// -1 is a legitimate payload, not a miss marker.
	c.Put(1, -1)

	if v, ok := c.Get(1); !ok || v != -1 {
		t.Fatalf("get 1: got %d,%v want -1,true", v, ok)
	}
	if v, ok := c.Get(2); ok || v != 0 {
		t.Fatalf("get 2: got %d,%v want 0,false", v, ok)
	}
}

func TestLookup(t *testing.T) {
	c := newLRU[string, int](t, 2)
	c.Put("a", 1)

	v, err := c.Lookup("a")
	if err != nil || v != 1 {
		t.Fatalf("lookup a: got %d,%v", v, err)
	}

	_, err = c.Lookup("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("lookup missing: got %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	c := newLRU[int, string](t, 3)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c")

	t.Run("absent key", func(t *testing.T) {
		if c.Delete(42) {
			t.Fatalf("expected no-op delete")
		}
		if c.Len() != 3 {
			t.Fatalf("expected len 3, got %d", c.Len())
		}
		if got, want := slices.Collect(c.Keys()), []int{1, 2, 3}; !slices.Equal(got, want) {
			t.Fatalf("order: got %v, want %v", got, want)
		}
	})

	t.Run("present key", func(t *testing.T) {
		if !c.Delete(2) {
			t.Fatalf("expected delete to remove 2")
		}
		mustVerify(t, c)
		if _, ok := c.Get(2); ok {
			t.Fatalf("expected 2 to miss after delete")
		}
		if got, want := slices.Collect(c.Keys()), []int{1, 3}; !slices.Equal(got, want) {
			t.Fatalf("order: got %v, want %v", got, want)
		}
	})
}

func TestContainsDoesNotTouchRecency(t *testing.T) {
	c := newLRU[string, int](t, 2)
	c.Put("a", 1)
	c.Put("b", 2)

	if !c.Contains("a") {
		t.Fatalf("expected a to be cached")
	}
	if c.Contains("z") {
		t.Fatalf("expected z to be absent")
	}

	// Had Contains counted as an access, b would be evicted instead of a.
	c.Put("c", 3)
	if c.Contains("a") {
		t.Fatalf("expected a to be evicted")
	}
	if !c.Contains("b") {
		t.Fatalf("expected b to remain")
	}
}

func TestPeekDoesNotTouchRecency(t *testing.T) {
	c := newLRU[string, int](t, 2)
	c.Put("a", 1)
	c.Put("b", 2)

	if v, ok := c.Peek("a"); !ok || v != 1 {
		t.Fatalf("peek a: got %d,%v", v, ok)
	}
	c.Put("c", 3)
	if c.Contains("a") {
		t.Fatalf("expected a to be evicted after peek")
	}
}

func TestIterationDoesNotTouchRecency(t *testing.T) {
	c := newLRU[string, int](t, 3)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	c.Get("a")

	wantKeys := []string{"b", "c", "a"}
	wantValues := []int{2, 3, 1}

	// Restartable: each range starts from the oldest entry again.
	for range 2 {
		if got := slices.Collect(c.Keys()); !slices.Equal(got, wantKeys) {
			t.Fatalf("keys: got %v, want %v", got, wantKeys)
		}
		if got := slices.Collect(c.Values()); !slices.Equal(got, wantValues) {
			t.Fatalf("values: got %v, want %v", got, wantValues)
		}
	}

	var items []string
	for k, v := range c.All() {
		items = append(items, k)
		if pv, _ := c.Peek(k); v != pv {
			t.Fatalf("item %s: value %d does not match cache", k, v)
		}
	}
	if !slices.Equal(items, wantKeys) {
		t.Fatalf("all: got %v, want %v", items, wantKeys)
	}

	c.Put("d", 4)
	if c.Contains("b") {
		t.Fatalf("expected b, the oldest, to be evicted")
	}
}

func TestIterationStopsEarly(t *testing.T) {
	c := newLRU[int, int](t, 5)
	for i := range 5 {
		c.Put(i, i*i)
	}

	var seen []int
	for k := range c.Keys() {
		seen = append(seen, k)
		if k == 2 {
			break
		}
	}
	if want := []int{0, 1, 2}; !slices.Equal(seen, want) {
		t.Fatalf("got %v, want %v", seen, want)
	}
}

func TestOldest(t *testing.T) {
	c := newLRU[string, int](t, 3)

	if _, _, ok := c.Oldest(); ok {
		t.Fatalf("expected no oldest on empty cache")
	}

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")

	k, v, ok := c.Oldest()
	if !ok || k != "b" || v != 2 {
		t.Fatalf("oldest: got %q=%d,%v want b=2,true", k, v, ok)
	}

	// Oldest is not an access.
	if k, _, _ := c.Oldest(); k != "b" {
		t.Fatalf("oldest changed to %q", k)
	}
}

func TestReset(t *testing.T) {
	c := newLRU[int, string](t, 3)
	for i := range 3 {
		c.Put(i, "v")
	}

	c.Reset()
	mustVerify(t, c)

	if c.Len() != 0 {
		t.Fatalf("expected len 0, got %d", c.Len())
	}
	if c.Cap() != 3 {
		t.Fatalf("expected capacity to survive reset, got %d", c.Cap())
	}
	for i := range 3 {
		if _, ok := c.Get(i); ok {
			t.Fatalf("expected %d to miss after reset", i)
		}
	}
	if got := slices.Collect(c.Keys()); len(got) != 0 {
		t.Fatalf("expected no keys, got %v", got)
	}

	// Still fully usable.
	for i := range 4 {
		c.Put(i, "w")
	}
	mustVerify(t, c)
	if c.Len() != 3 || c.Contains(0) {
		t.Fatalf("expected 0 evicted after refill, got %v", c)
	}
}

func TestString(t *testing.T) {
	c := newLRU[int, string](t, 2)
	if got, want := c.String(), "LRUCache(cap=2)[]"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	c.Put(1, "a")
	c.Put(2, "b")
	c.Get(1)
	if got, want := c.String(), "LRUCache(cap=2)[2:b 1:a]"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMetrics(t *testing.T) {
	m := &countingMetrics{}
	c := newLRU[string, int](t, 1, WithMetrics(m))

	c.Put("a", 1)
	c.Get("a")
	c.Get("b")
	c.Contains("a")
	c.Peek("a")
	c.Put("b", 2)
	c.Put("b", 3)

	if m.hits != 1 || m.misses != 1 || m.evictions != 1 {
		t.Fatalf("got hits=%d misses=%d evictions=%d, want 1/1/1", m.hits, m.misses, m.evictions)
	}
}

func TestArenaSlotsAreReused(t *testing.T) {
	const capacity = 4
	c := newLRU[int, int](t, capacity)

	for i := range 100 {
		c.Put(i, i)
		if i%3 == 0 {
			c.Delete(i - 1)
		}
	}
	mustVerify(t, c)

	if got := c.list.Slots(); got > capacity+2 {
		t.Fatalf("arena grew to %d slots for capacity %d", got, capacity)
	}
}

func TestAllInsertedKeysRetrievableUnderCapacity(t *testing.T) {
	const capacity = 16
	c := newLRU[int, int](t, capacity)
	want := make(map[int]int)

	r := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		k := r.IntN(capacity)
		v := r.Int()
		c.Put(k, v)
		want[k] = v
	}

	for k, v := range want {
		if got, ok := c.Get(k); !ok || got != v {
			t.Fatalf("key %d: got %d,%v want %d,true", k, got, ok, v)
		}
	}
}

// TestAgainstModel runs random operations against a slice-based reference LRU.
func TestAgainstModel(t *testing.T) {
	const (
		capacity = 5
		keySpace = 12
		steps    = 5000
	)
	c := newLRU[int, int](t, capacity)

	// model holds keys from least to most recently used.
	var model []int
	values := make(map[int]int)

	touch := func(k int) {
		if i := slices.Index(model, k); i >= 0 {
			model = slices.Delete(model, i, i+1)
		}
		model = append(model, k)
	}

	r := rand.New(rand.NewPCG(7, 11))
	for step := range steps {
		k := r.IntN(keySpace)
		switch op := r.IntN(5); op {
		case 0, 1:
			v := r.Int()
			wantEvict := !slices.Contains(model, k) && len(model) == capacity
			var victim int
			if wantEvict {
				victim = model[0]
				model = model[1:]
				delete(values, victim)
			}
			if got := c.Put(k, v); got != wantEvict {
				t.Fatalf("step %d: put %d evicted=%v, want %v", step, k, got, wantEvict)
			}
			if wantEvict && c.Contains(victim) {
				t.Fatalf("step %d: expected %d to be evicted", step, victim)
			}
			values[k] = v
			touch(k)
		case 2:
			got, ok := c.Get(k)
			want, wantOK := values[k]
			if ok != wantOK || got != want {
				t.Fatalf("step %d: get %d got %d,%v want %d,%v", step, k, got, ok, want, wantOK)
			}
			if ok {
				touch(k)
			}
		case 3:
			_, wantOK := values[k]
			if got := c.Delete(k); got != wantOK {
				t.Fatalf("step %d: delete %d got %v want %v", step, k, got, wantOK)
			}
			if wantOK {
				delete(values, k)
				model = slices.DeleteFunc(model, func(x int) bool { return x == k })
			}
		case 4:
			_, wantOK := values[k]
			if got := c.Contains(k); got != wantOK {
				t.Fatalf("step %d: contains %d got %v want %v", step, k, got, wantOK)
			}
		}

		mustVerify(t, c)
		if c.Len() > capacity {
			t.Fatalf("step %d: len %d exceeds capacity", step, c.Len())
		}
		if got := slices.Collect(c.Keys()); !slices.Equal(got, model) {
			t.Fatalf("step %d: order %v, want %v", step, got, model)
		}
	}
}

func TestRepeatedGetKeepsOtherOrder(t *testing.T) {
	c := newLRU[string, int](t, 4)
	for i, k := range []string{"a", "b", "c", "d"} {
		c.Put(k, i)
	}

	c.Get("b")
	c.Get("b")

	if got, want := slices.Collect(c.Keys()), []string{"a", "c", "d", "b"}; !slices.Equal(got, want) {
		t.Fatalf("order: got %v, want %v", got, want)
	}
}
