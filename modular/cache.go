package modular

import (
	"math/big"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/zeebo/blake3"
)

// Cache is a bounded, LRU-evicted memoization table for the results of
// modInverse/gcd/extendedGcd/modPow. Memoization is purely an
// optimization: results are identical whether or not a Cache is used.
// Keys are blake3 digests of the canonicalized operand list rather
// than the spec's literal "stringified key", keeping keys a fixed 32
// bytes regardless of operand size.
type Cache struct {
	mu       sync.Mutex
	capacity int
	data     map[[32]byte]*big.Int
	order    [][32]byte // least-recently-used at index 0
}

// NewResultCache creates a Cache holding at most capacity entries.
func NewResultCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		data:     make(map[[32]byte]*big.Int, capacity),
	}
}

func cacheKey(op string, operands ...*big.Int) [32]byte {
	h := blake3.New()
	h.Write([]byte(op))
	for _, n := range operands {
		h.Write([]byte{0})
		h.Write(n.Bytes())
		if n.Sign() < 0 {
			h.Write([]byte{'-'})
		}
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Get returns the cached result for (op, operands...), if present.
func (c *Cache) Get(op string, operands ...*big.Int) (*big.Int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(op, operands...)
	v, ok := c.data[key]
	if !ok {
		return nil, false
	}
	c.touch(key)
	return new(big.Int).Set(v), true
}

// Put stores result under the key derived from (op, operands...),
// evicting the least-recently-used entry if the cache is full.
func (c *Cache) Put(result *big.Int, op string, operands ...*big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(op, operands...)
	if _, exists := c.data[key]; exists {
		c.data[key] = new(big.Int).Set(result)
		c.touch(key)
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.data, oldest)
	}
	c.data[key] = new(big.Int).Set(result)
	c.order = append(c.order, key)
}

func (c *Cache) touch(key [32]byte) {
	if idx := slices.Index(c.order, key); idx >= 0 {
		c.order = slices.Delete(c.order, idx, idx+1)
		c.order = append(c.order, key)
	}
}

// Len returns the number of entries currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
