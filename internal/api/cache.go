package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/bracket-oracle/internal/models"
	"github.com/yourusername/bracket-oracle/internal/service"
)

// ResultsCache caches completed simulation responses for deterministic
// requests. Keys hash the full request so any parameter change misses.
type ResultsCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	hitCount  uint64
	missCount uint64
}

// NewResultsCache creates a cache with the given TTL
func NewResultsCache(ttl time.Duration) *ResultsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ResultsCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

func cacheKey(req service.SimulationRequest) string {
	payload, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Get retrieves a cached simulation for an identical request
func (c *ResultsCache) Get(req service.SimulationRequest) (*models.Simulation, bool) {
	key := cacheKey(req)
	if key == "" {
		return nil, false
	}
	if entry, found := c.cache.Get(key); found {
		if sim, ok := entry.(*models.Simulation); ok {
			atomic.AddUint64(&c.hitCount, 1)
			return sim, true
		}
	}
	atomic.AddUint64(&c.missCount, 1)
	return nil, false
}

// Set stores a completed simulation response
func (c *ResultsCache) Set(req service.SimulationRequest, sim *models.Simulation) {
	key := cacheKey(req)
	if key == "" || sim == nil || !sim.IsFinished() {
		return
	}
	c.cache.Set(key, sim, c.ttl)
}

// Flush drops every cached entry. Called after rating rebuilds since
// stored ratings feed simulations that omit explicit teams.
func (c *ResultsCache) Flush() {
	c.cache.Flush()
}

// Stats returns hit and miss counts
func (c *ResultsCache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hitCount), atomic.LoadUint64(&c.missCount)
}
