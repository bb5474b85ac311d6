// Package cache holds parsed filters keyed by the hash of their source text.
package cache

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/nlstn/go-filterql/internal/ast"
)

// DefaultSize is the capacity used when New is given a non-positive size.
const DefaultSize = 256

// ParseCache is a bounded cache from filter text to its parsed expression.
// When it reaches capacity the whole map is replaced. Filters are usually a
// small set of templates repeated many times, so no per-entry ages are kept.
//
// Cached expressions are shared between callers and must not be modified.
// All methods are safe for concurrent use.
type ParseCache struct {
	mu    sync.RWMutex
	items map[uint64]entry
	max   int

	hits, misses uint64
}

type entry struct {
	text string
	expr ast.Expression
}

// New creates a ParseCache holding at most size expressions.
func New(size int) *ParseCache {
	if size <= 0 {
		size = DefaultSize
	}
	return &ParseCache{
		items: make(map[uint64]entry, size),
		max:   size,
	}
}

// Get returns the cached expression for text.
func (c *ParseCache) Get(text string) (ast.Expression, bool) {
	key := xxhash.Sum64String(text)
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	// Hash collisions are treated as misses.
	if !ok || e.text != text {
		c.count(false)
		return nil, false
	}
	c.count(true)
	return e.expr, true
}

// Put stores expr for text.
func (c *ParseCache) Put(text string, expr ast.Expression) {
	key := xxhash.Sum64String(text)
	c.mu.Lock()
	if _, exists := c.items[key]; !exists && len(c.items) >= c.max {
		c.items = make(map[uint64]entry, c.max)
	}
	c.items[key] = entry{text: text, expr: expr}
	c.mu.Unlock()
}

// GetOrParse returns the cached expression for text, calling parse and
// caching its result on a miss. hit reports whether the cache served it.
// Parse errors are not cached.
func (c *ParseCache) GetOrParse(text string, parse func(string) (ast.Expression, error)) (expr ast.Expression, hit bool, err error) {
	if expr, ok := c.Get(text); ok {
		return expr, true, nil
	}
	expr, err = parse(text)
	if err != nil {
		return nil, false, err
	}
	c.Put(text, expr)
	return expr, false, nil
}

// Len returns the number of cached expressions.
func (c *ParseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns the number of hits and misses so far.
func (c *ParseCache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *ParseCache) count(hit bool) {
	c.mu.Lock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
}
