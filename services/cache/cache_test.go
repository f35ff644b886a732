package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestSetThenGet(t *testing.T) {
	c := New()
	c.Set("k", 42, 1)

	v, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit immediately after Set")
	}
	if v.(int) != 42 {
		t.Errorf("expected 42, got %v", v)
	}
}

func TestGetAfterExpiry(t *testing.T) {
	clock := newFakeClock()
	c := NewWithClock(clock.Now)

	c.Set("k", 42, 1)
	clock.Advance(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry expired early")
	}

	clock.Advance(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after TTL elapsed")
	}
}

func TestFractionalTTL(t *testing.T) {
	clock := newFakeClock()
	c := NewWithClock(clock.Now)

	c.Set("k", "v", 0.5)
	clock.Advance(29 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Error("0.5 minute TTL expired before 30s")
	}
	clock.Advance(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("0.5 minute TTL survived past 30s")
	}
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("k", "v", 10)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Delete despite live TTL")
	}
	// Deleting a missing key must not panic
	c.Delete("absent")
}

func TestClear(t *testing.T) {
	c := New()
	keys := []string{"stocks:all", "stock:details:GCB", "alerts:active:all"}
	for _, k := range keys {
		c.Set(k, k, 10)
	}

	c.Clear()

	for _, k := range keys {
		if _, ok := c.Get(k); ok {
			t.Errorf("key %q survived Clear", k)
		}
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestDeletePrefix(t *testing.T) {
	c := New()
	c.Set("alerts:all:all:u1", "a", 10)
	c.Set("alerts:active:GCB:u2", "b", 10)
	c.Set("stocks:all", "c", 10)

	dropped := c.DeletePrefix("alerts:")
	if dropped != 2 {
		t.Errorf("expected 2 dropped, got %d", dropped)
	}

	if _, ok := c.Get("alerts:all:all:u1"); ok {
		t.Error("alert key survived DeletePrefix")
	}
	if _, ok := c.Get("alerts:active:GCB:u2"); ok {
		t.Error("alert key survived DeletePrefix")
	}
	if _, ok := c.Get("stocks:all"); !ok {
		t.Error("non-matching key was dropped")
	}
}

func TestOverwrite(t *testing.T) {
	c := New()
	c.Set("k", 1, 10)
	c.Set("k", 2, 10)

	v, _ := c.Get("k")
	if v.(int) != 2 {
		t.Errorf("expected overwritten value 2, got %v", v)
	}
}

func TestRoundTripStruct(t *testing.T) {
	type quote struct {
		Symbol string
		Price  float64
	}
	c := New()
	want := quote{Symbol: "MTNGH", Price: 1.43}
	c.Set("stock:details:MTNGH", want, 5)

	v, ok := c.Get("stock:details:MTNGH")
	if !ok {
		t.Fatal("expected hit")
	}
	if got := v.(quote); got != want {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestPruneExpired(t *testing.T) {
	clock := newFakeClock()
	c := NewWithClock(clock.Now)

	c.Set("short", 1, 1)
	c.Set("long", 2, 60)
	clock.Advance(5 * time.Minute)

	if pruned := c.PruneExpired(); pruned != 1 {
		t.Errorf("expected 1 pruned entry, got %d", pruned)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 remaining entry, got %d", c.Len())
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("live entry removed by prune")
	}
}

func TestFetchCachesResult(t *testing.T) {
	c := New()
	calls := 0

	for i := 0; i < 3; i++ {
		v, err := c.Fetch("stocks:all", 2, func() (interface{}, error) {
			calls++
			return "payload", nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.(string) != "payload" {
			t.Errorf("unexpected value %v", v)
		}
	}

	if calls != 1 {
		t.Errorf("expected a single upstream call, got %d", calls)
	}
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	c := New()
	boom := errors.New("upstream down")
	calls := 0

	for i := 0; i < 2; i++ {
		_, err := c.Fetch("k", 2, func() (interface{}, error) {
			calls++
			return nil, boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected upstream error, got %v", err)
		}
	}

	if calls != 2 {
		t.Errorf("errors must not be cached: expected 2 calls, got %d", calls)
	}
}

func TestFetchDeduplicatesInflight(t *testing.T) {
	c := New()
	var calls int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Fetch("k", 2, func() (interface{}, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return 99, nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if v.(int) != 99 {
				t.Errorf("unexpected value %v", v)
			}
		}()
	}

	// Give the goroutines a moment to pile onto the same key
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected one shared upstream call, got %d", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("shared", n, 1)
				c.Get("shared")
				c.Len()
			}
		}(i)
	}
	wg.Wait()

	if _, ok := c.Get("shared"); !ok {
		t.Error("expected entry to survive concurrent writes")
	}
}
