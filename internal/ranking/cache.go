package ranking

import (
	"container/list"
	"sync"

	"github.com/hyperjump/kotae/internal/models"
)

// ResultCache is an LRU cache of full rankings keyed by (normalized query, snapshot version).
type ResultCache struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	key   string
	value []models.ScoredEntry
}

// NewResultCache creates a cache holding at most capacity rankings.
// A non-positive capacity returns nil, which disables caching.
func NewResultCache(capacity int) *ResultCache {
	if capacity <= 0 {
		return nil
	}
	return &ResultCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the cached ranking for key if present.
func (c *ResultCache) Get(key string) ([]models.ScoredEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry).value, true
	}
	return nil, false
}

// Set stores the ranking for key, evicting the least recently used entry if at capacity.
func (c *ResultCache) Set(key string, value []models.ScoredEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}

	entry := &cacheEntry{key: key, value: value}
	elem := c.lru.PushFront(entry)
	c.cache[key] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of cached rankings.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func cacheKey(query, version string) string {
	return version + "\x00" + Normalize(query)
}

// SnapshotMatcher ranks snapshots, reusing cached rankings when the snapshot
// carries a version. A nil cache makes it a thin wrapper around Ranker.
type SnapshotMatcher struct {
	ranker *Ranker
	cache  *ResultCache
}

// NewSnapshotMatcher creates a matcher. cache may be nil.
func NewSnapshotMatcher(ranker *Ranker, cache *ResultCache) *SnapshotMatcher {
	return &SnapshotMatcher{ranker: ranker, cache: cache}
}

// RankMatches returns the top limit entries of snap for query.
func (m *SnapshotMatcher) RankMatches(query string, snap models.Snapshot, limit int) ([]models.ScoredEntry, error) {
	if limit <= 0 {
		return nil, invalidArgument("limit must be positive, got %d", limit)
	}
	if m.cache == nil || snap.Version == "" {
		return m.ranker.RankMatches(query, snap.Entries, limit)
	}
	if err := m.ranker.checkInput(query, snap.Entries); err != nil {
		return nil, err
	}

	key := cacheKey(query, snap.Version)
	ranked, ok := m.cache.Get(key)
	if !ok {
		var err error
		ranked, err = m.ranker.RankAll(query, snap.Entries)
		if err != nil {
			return nil, err
		}
		m.cache.Set(key, ranked)
	}

	top := TopN(ranked, limit)
	out := make([]models.ScoredEntry, len(top))
	copy(out, top)
	return out, nil
}

// FindBestMatch returns the best entry of snap for query, reading a cached
// ranking when one exists and otherwise doing a linear scan.
func (m *SnapshotMatcher) FindBestMatch(query string, snap models.Snapshot) (models.BestMatch, error) {
	if m.cache != nil && snap.Version != "" {
		if err := m.ranker.checkInput(query, snap.Entries); err != nil {
			return models.Absent(), err
		}
		if ranked, ok := m.cache.Get(cacheKey(query, snap.Version)); ok {
			if len(ranked) == 0 {
				return models.Absent(), nil
			}
			return models.Found(ranked[0]), nil
		}
	}
	return m.ranker.FindBestMatch(query, snap.Entries)
}
