package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/pkg/resilience"
)

type memBackend struct {
	mu   sync.Mutex
	data map[string]string
	fail error
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string]string)}
}

func (m *memBackend) Lookup(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", false, m.fail
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memBackend) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.data[key] = string(value.([]byte))
	return nil
}

func (m *memBackend) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var n int64
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func result(gen uint64) *executor.SearchResult {
	return &executor.SearchResult{
		Query:      "ip",
		Generation: gen,
		TotalHits:  1,
		Results:    []ranker.Hit{{Name: "ip", Score: 5}},
	}
}

func TestGetOrComputeCachesPerGeneration(t *testing.T) {
	c := New(newMemBackend(), config.RedisConfig{CacheTTL: time.Minute})
	plan := parser.Parse("ip")
	var calls atomic.Int32
	compute := func(gen uint64) func() (*executor.SearchResult, error) {
		return func() (*executor.SearchResult, error) {
			calls.Add(1)
			return result(gen), nil
		}
	}

	if _, hit, err := c.GetOrCompute(context.Background(), plan, 10, 1, compute(1)); err != nil || hit {
		t.Fatalf("first call hit=%v err=%v", hit, err)
	}
	res, hit, err := c.GetOrCompute(context.Background(), parser.Parse("IP"), 10, 1, compute(1))
	if err != nil || !hit || res.Results[0].Name != "ip" {
		t.Fatalf("second call = %+v hit=%v err=%v", res, hit, err)
	}
	if _, hit, _ := c.GetOrCompute(context.Background(), plan, 10, 2, compute(2)); hit {
		t.Fatal("new generation must miss")
	}
	if _, hit, _ := c.GetOrCompute(context.Background(), plan, 5, 2, compute(2)); hit {
		t.Fatal("different limit must miss")
	}
	if calls.Load() != 3 {
		t.Fatalf("compute calls = %d, want 3", calls.Load())
	}
	st := c.Stats()
	if st.Hits != 1 || st.Breaker != "closed" {
		t.Fatalf("stats = %+v", st)
	}
}

func TestGenerationMismatchNotStored(t *testing.T) {
	backend := newMemBackend()
	c := New(backend, config.RedisConfig{})
	plan := parser.Parse("ip")
	_, _, err := c.GetOrCompute(context.Background(), plan, 10, 1, func() (*executor.SearchResult, error) {
		return result(2), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(backend.data) != 0 {
		t.Fatalf("stale-generation result was stored: %v", backend.data)
	}
}

func TestBackendFailureFallsThrough(t *testing.T) {
	backend := newMemBackend()
	backend.fail = errors.New("connection refused")
	c := New(backend, config.RedisConfig{})
	for i := 0; i < 10; i++ {
		res, hit, err := c.GetOrCompute(context.Background(), parser.Parse("ip"), 10, 1, func() (*executor.SearchResult, error) {
			return result(1), nil
		})
		if err != nil || hit || res == nil {
			t.Fatalf("call %d: res=%v hit=%v err=%v", i, res, hit, err)
		}
	}
	st := c.Stats()
	if st.Breaker != "open" || st.BreakerFailures != 5 {
		t.Fatalf("breaker = %s after %d failures, want open after 5", st.Breaker, st.BreakerFailures)
	}
	if st.Errors != 5 {
		t.Fatalf("errors = %d, want 5 before the breaker opened", st.Errors)
	}
}

func TestComputeErrorPropagates(t *testing.T) {
	c := New(newMemBackend(), config.RedisConfig{})
	boom := errors.New("boom")
	_, _, err := c.GetOrCompute(context.Background(), parser.Parse("ip"), 10, 1, func() (*executor.SearchResult, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestInvalidate(t *testing.T) {
	backend := newMemBackend()
	c := New(backend, config.RedisConfig{})
	c.Set(context.Background(), parser.Parse("ip"), 10, result(1))
	c.Set(context.Background(), parser.Parse("tar"), 10, result(1))
	n, err := c.Invalidate(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("Invalidate() = %d, %v", n, err)
	}
}

func TestBreakerHookReportsOpen(t *testing.T) {
	backend := newMemBackend()
	backend.fail = errors.New("connection refused")
	var opened bool
	c := New(backend, config.RedisConfig{}, WithBreakerHook(func(name string, from, to resilience.State) {
		if name == "query-cache" && to == resilience.StateOpen {
			opened = true
		}
	}))
	for i := 0; i < 3; i++ {
		c.GetOrCompute(context.Background(), parser.Parse("ip"), 10, 1, func() (*executor.SearchResult, error) {
			return result(1), nil
		})
	}
	if !opened {
		t.Fatal("hook did not observe the breaker opening")
	}
}
