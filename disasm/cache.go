package disasm

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash"
	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCacheCapacity is spec.md §4.8's documented default.
const defaultCacheCapacity = 100

// cacheKey is (rom-hash, component, parameters) per spec.md §4.8.
type cacheKey struct {
	romHash    uint64
	component  string
	parameters string
}

// cacheEntry holds one memoized AnalysisResult.
type cacheEntry struct {
	result *AnalysisResult
}

// Cache is the process-wide (or caller-owned) content-addressed
// memoization layer for Analyze. It is an explicit value the caller
// constructs and passes in, per spec.md §9's "process-wide mutable cache"
// redesign note — no hidden global by default.
type Cache struct {
	mu        sync.Mutex
	lru       *lru.Cache[cacheKey, cacheEntry]
	inFlight  map[cacheKey]bool
}

// NewCache constructs a Cache bounded to capacity entries. A capacity of
// 0 falls back to defaultCacheCapacity rather than constructing a
// zero-size (always-miss) cache, since spec.md never calls for a
// caller-disabled cache via this constructor — use a nil *Cache for that.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	backing, err := lru.New[cacheKey, cacheEntry](capacity)
	if err != nil {
		// Only returns an error for a non-positive size, which cannot
		// happen after the guard above.
		panic(fmt.Sprintf("disasm: cache construction: %v", err))
	}
	return &Cache{lru: backing, inFlight: make(map[cacheKey]bool)}
}

// hashRom computes the fast content hash spec.md §4.8 describes: the
// first 64 KiB plus every 64-KiB-aligned 256-byte window thereafter, a
// deterministic subset sufficient to disambiguate distinct ROMs without
// hashing the full image on every lookup.
func hashRom(data []byte) uint64 {
	h := xxhash.New()
	head := data
	if len(head) > 64*1024 {
		head = head[:64*1024]
	}
	h.Write(head)
	const window = 64 * 1024
	for off := window; off+256 <= len(data); off += window {
		h.Write(data[off : off+256])
	}
	return h.Sum64()
}

// getOrCompute returns the cached result for key, computing it with fn if
// absent. Recursive reentry (a lookup for key initiated while key is
// already being computed) bypasses the cache per spec.md §4.8 and
// §7's CacheRecursion kind: the inner caller computes uncached rather
// than deadlocking or corrupting the in-flight entry. A nil result (a
// failed computation) is not stored, so a repeat call computes again.
func (c *Cache) getOrCompute(key cacheKey, fn func() *AnalysisResult) (*AnalysisResult, bool) {
	if c == nil {
		return fn(), false
	}
	c.mu.Lock()
	if entry, ok := c.lru.Get(key); ok {
		c.mu.Unlock()
		return entry.result, true
	}
	if c.inFlight[key] {
		c.mu.Unlock()
		return fn(), false
	}
	c.inFlight[key] = true
	c.mu.Unlock()

	result := fn()

	c.mu.Lock()
	delete(c.inFlight, key)
	if result != nil {
		c.lru.Add(key, cacheEntry{result: result})
	}
	c.mu.Unlock()
	return result, false
}
