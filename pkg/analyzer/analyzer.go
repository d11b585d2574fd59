// Package analyzer binds parsed statements to a schema and reports the
// ordered placeholder types and, for SELECT, the result row shape.
//
// Analyze is the stateless entry point. An Analyzer adds logging, an
// in-memory Cache and an optional persistent ResultStore on top of it.
package analyzer

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/parser"
	"github.com/michaelhaar/type-safe-sql-query/pkg/schema"
)

// ErrNoSchema is returned when a statement is analyzed without a schema.
var ErrNoSchema = errors.New("analyzer: schema is required")

// Analyze parses query and binds it against s.
//
// Structural problems are returned as a *parser.ParseError. References
// that do not resolve never fail the call; they are reported as
// core.Unresolvable in the result.
func Analyze(query string, s *schema.Schema) (*core.Result, error) {
	if s == nil {
		return nil, ErrNoSchema
	}
	stmt, err := parser.Parse(query)
	if err != nil {
		return nil, err
	}
	res := Bind(stmt, s)
	res.Query = query
	return res, nil
}

// ResultStore persists results across processes.
type ResultStore interface {
	LookupResult(ctx context.Context, key string) (*core.Result, bool, error)
	SaveResult(ctx context.Context, key string, r *core.Result) error
}

// Analyzer analyzes statements with optional caching.
// It is safe for concurrent use.
type Analyzer struct {
	logger *slog.Logger
	cache  *Cache
	store  ResultStore
	group  singleflight.Group
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithCache memoizes results in c.
func WithCache(c *Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithStore reads and writes results through store on cache misses.
func WithStore(store ResultStore) Option {
	return func(a *Analyzer) {
		a.store = store
	}
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	return a
}

// Analyze is like the package-level Analyze but consults the cache and
// the store first. Concurrent calls for the same key compute once.
// Failures of the store are logged and otherwise ignored.
func (a *Analyzer) Analyze(ctx context.Context, query string, s *schema.Schema) (*core.Result, error) {
	if s == nil {
		return nil, ErrNoSchema
	}
	if a.cache == nil && a.store == nil {
		return a.analyze(query, s)
	}

	key := Key(query, s)
	if r, ok := a.cache.Get(key); ok {
		a.logger.Debug("cache hit", "key", key)
		r.Query = query
		return r, nil
	}

	v, err, _ := a.group.Do(key, func() (any, error) {
		if r, ok := a.cache.Get(key); ok {
			return r, nil
		}
		if r, ok := a.lookup(ctx, key); ok {
			a.cache.Put(key, r)
			return r, nil
		}
		r, err := a.analyze(query, s)
		if err != nil {
			return nil, err
		}
		a.cache.Put(key, r)
		if a.store != nil {
			if err := a.store.SaveResult(ctx, key, r); err != nil {
				a.logger.Warn("failed to save result", "key", key, "error", err)
			}
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	r := v.(*core.Result).Clone()
	r.Query = query
	return r, nil
}

func (a *Analyzer) lookup(ctx context.Context, key string) (*core.Result, bool) {
	if a.store == nil {
		return nil, false
	}
	r, ok, err := a.store.LookupResult(ctx, key)
	if err != nil {
		a.logger.Warn("failed to look up result", "key", key, "error", err)
		return nil, false
	}
	if ok {
		a.logger.Debug("store hit", "key", key)
	}
	return r, ok
}

func (a *Analyzer) analyze(query string, s *schema.Schema) (*core.Result, error) {
	res, err := Analyze(query, s)
	if err != nil {
		a.logger.Debug("analysis failed", "error", err)
		return nil, err
	}
	a.logger.Debug("analyzed statement",
		"kind", res.Kind,
		"stage", core.StageDone,
		"params", len(res.Params),
		"unresolved", len(res.Unresolved()),
	)
	return res, nil
}
