package billing

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// defaultCacheBytes bounds the total size of cached response bodies.
const defaultCacheBytes = 32 << 20

// responseCache holds successful response bodies keyed by request.
type responseCache struct {
	c   *ristretto.Cache[string, []byte]
	ttl time.Duration
}

func newResponseCache(maxCostBytes int64, ttl time.Duration) (*responseCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &responseCache{c: c, ttl: ttl}, nil
}

func (c *responseCache) get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	return c.c.Get(key)
}

func (c *responseCache) set(key string, body []byte) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.c.SetWithTTL(key, body, int64(len(body)), c.ttl)
	// Sets are buffered; make the entry visible to the next lookup.
	c.c.Wait()
}

func (c *responseCache) clear() {
	if c == nil {
		return
	}
	c.c.Clear()
}

func (c *responseCache) close() {
	if c == nil {
		return
	}
	c.c.Close()
}

// cacheKey hashes the endpoint with its encoded, key-sorted parameters.
func cacheKey(endpoint string, params url.Values) string {
	sum := sha256.Sum256([]byte(endpoint + "?" + params.Encode()))
	return hex.EncodeToString(sum[:])
}
