package analyzer_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelhaar/type-safe-sql-query/internal/testutil"
	"github.com/michaelhaar/type-safe-sql-query/pkg/analyzer"
	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/schema"
)

type memoryStore struct {
	mu      sync.Mutex
	results map[string]*core.Result
	saves   int
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{results: make(map[string]*core.Result)}
}

func (m *memoryStore) LookupResult(_ context.Context, key string) (*core.Result, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	r, ok := m.results[key]
	return r, ok, nil
}

func (m *memoryStore) SaveResult(_ context.Context, key string, r *core.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.results[key] = r.Clone()
	return nil
}

func TestKey(t *testing.T) {
	s := testutil.Schema()
	other := schema.MustNew(schema.Table{Name: "users", Columns: []schema.Column{{Name: "id", Type: "string"}}})

	k := analyzer.Key("SELECT id FROM users", s)
	assert.Len(t, k, 32)
	assert.Equal(t, k, analyzer.Key("  SELECT id FROM users; ", s))
	assert.NotEqual(t, k, analyzer.Key("SELECT name FROM users", s))
	assert.NotEqual(t, k, analyzer.Key("SELECT id FROM users", other))
}

func TestCache(t *testing.T) {
	c := analyzer.NewCache(2)
	r := &core.Result{Kind: core.KindDelete, Params: []core.Param{{Type: "number"}}}

	c.Put("a", r)
	r.Params[0].Type = "string"

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, core.Type("number"), got.Params[0].Type, "stored copy must not alias the caller's result")

	got.Params[0].Type = "bool"
	again, _ := c.Get("a")
	assert.Equal(t, core.Type("number"), again.Params[0].Type, "returned copy must not alias the cache")

	c.Put("b", r)
	c.Put("c", r)
	assert.Equal(t, 2, c.Len())
	_, ok = c.Get("a")
	assert.False(t, ok, "oldest entry evicted")

	hits, misses := c.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestCache_Nil(t *testing.T) {
	var c *analyzer.Cache
	c.Put("a", &core.Result{})
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestAnalyzer_UsesCache(t *testing.T) {
	ctx := context.Background()
	s := testutil.Schema()
	cache := analyzer.NewCache(analyzer.DefaultCacheSize)
	a := analyzer.New(analyzer.WithCache(cache), analyzer.WithLogger(testutil.NewTestLogger(t)))

	first, err := a.Analyze(ctx, "UPDATE users SET name = ? WHERE id = ?", s)
	require.NoError(t, err)
	second, err := a.Analyze(ctx, "UPDATE users SET name = ? WHERE id = ?;", s)
	require.NoError(t, err)

	assert.Equal(t, first.ParamTypes(), second.ParamTypes())
	assert.Equal(t, "UPDATE users SET name = ? WHERE id = ?;", second.Query)
	assert.Equal(t, 1, cache.Len())

	hits, _ := cache.Stats()
	assert.Equal(t, uint64(1), hits)
}

func TestAnalyzer_ErrorsAreNotCached(t *testing.T) {
	cache := analyzer.NewCache(0)
	a := analyzer.New(analyzer.WithCache(cache))

	for range 2 {
		_, err := a.Analyze(context.Background(), "TRUNCATE users", testutil.Schema())
		require.Error(t, err)
	}
	assert.Equal(t, 0, cache.Len())
}

func TestAnalyzer_Store(t *testing.T) {
	ctx := context.Background()
	s := testutil.Schema()

	t.Run("saves computed results", func(t *testing.T) {
		store := newMemoryStore()
		a := analyzer.New(analyzer.WithStore(store))

		_, err := a.Analyze(ctx, "DELETE FROM users WHERE id = ?", s)
		require.NoError(t, err)

		assert.Equal(t, 1, store.saves)
		_, ok := store.results[analyzer.Key("DELETE FROM users WHERE id = ?", s)]
		assert.True(t, ok)
	})

	t.Run("serves stored results", func(t *testing.T) {
		store := newMemoryStore()
		q := "SELECT anything FROM anywhere"
		store.results[analyzer.Key(q, s)] = &core.Result{
			Kind:   core.KindSelect,
			Params: []core.Param{{Type: "stored"}},
			Shape:  core.NewRowShape(),
		}
		a := analyzer.New(analyzer.WithStore(store))

		res, err := a.Analyze(ctx, q, s)
		require.NoError(t, err)
		assert.Equal(t, []core.Type{"stored"}, res.ParamTypes())
		assert.Equal(t, q, res.Query)
		assert.Equal(t, 0, store.saves)
	})

	t.Run("store failures fall back to analysis", func(t *testing.T) {
		store := newMemoryStore()
		store.err = errors.New("disk on fire")
		a := analyzer.New(analyzer.WithStore(store), analyzer.WithLogger(testutil.NewTestLogger(t)))

		res, err := a.Analyze(ctx, "DELETE FROM users WHERE id = ?", s)
		require.NoError(t, err)
		assert.Equal(t, []core.Type{"number"}, res.ParamTypes())
	})
}

func TestAnalyzer_ConcurrentCallsComputeOnce(t *testing.T) {
	ctx := context.Background()
	s := testutil.Schema()
	store := newMemoryStore()
	a := analyzer.New(analyzer.WithCache(analyzer.NewCache(8)), analyzer.WithStore(store))

	const workers = 32
	results := make([]*core.Result, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := a.Analyze(ctx, "SELECT * FROM posts WHERE userId = ?", s)
			if assert.NoError(t, err) {
				results[i] = r
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.saves)
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, []string{"id", "userId", "title"}, r.Shape.Names())
	}
}
