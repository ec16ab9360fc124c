package modular

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheGetPutRoundTrip(t *testing.T) {
	c := NewResultCache(8)
	a, b := big.NewInt(17), big.NewInt(5)

	_, ok := c.Get("gcd", a, b)
	require.False(t, ok)

	c.Put(big.NewInt(1), "gcd", a, b)
	got, ok := c.Get("gcd", a, b)
	require.True(t, ok)
	require.Zero(t, got.Cmp(big.NewInt(1)))
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewResultCache(2)
	c.Put(big.NewInt(1), "op", big.NewInt(1))
	c.Put(big.NewInt(2), "op", big.NewInt(2))
	require.Equal(t, 2, c.Len())

	// Touch the first entry so the second becomes least-recently-used.
	_, ok := c.Get("op", big.NewInt(1))
	require.True(t, ok)

	c.Put(big.NewInt(3), "op", big.NewInt(3))
	require.Equal(t, 2, c.Len())

	_, ok = c.Get("op", big.NewInt(2))
	require.False(t, ok, "least-recently-used entry should have been evicted")

	_, ok = c.Get("op", big.NewInt(1))
	require.True(t, ok)
}

func TestModInverseWithConfigPopulatesCache(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseCache = true
	cfg.Cache = NewResultCache(16)

	a, m := big.NewInt(7), big.NewInt(20)
	want, err := ModInverseWithConfig(a, m, cfg)
	require.NoError(t, err)
	require.Zero(t, want.Cmp(big.NewInt(3)))

	cached, ok := cfg.Cache.Get("modinv", a, m)
	require.True(t, ok)
	require.Zero(t, cached.Cmp(want))

	// A second call must return the same result through the cache path.
	again, err := ModInverseWithConfig(a, m, cfg)
	require.NoError(t, err)
	require.Zero(t, again.Cmp(want))
}

func TestGCDWithConfigPopulatesCache(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseCache = true
	cfg.Cache = NewResultCache(16)

	a, b := big.NewInt(48), big.NewInt(18)
	got := GCDWithConfig(a, b, cfg)
	require.Zero(t, got.Cmp(big.NewInt(6)))

	cached, ok := cfg.Cache.Get("gcd", a, b)
	require.True(t, ok)
	require.Zero(t, cached.Cmp(got))
}

func TestExtendedGCDWithConfigPopulatesCache(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseCache = true
	cfg.Cache = NewResultCache(16)

	a, b := big.NewInt(35), big.NewInt(15)
	g, x, y := ExtendedGCDWithConfig(a, b, cfg)
	require.Zero(t, g.Cmp(big.NewInt(5)))

	gotG, ok := cfg.Cache.Get("extgcd-g", a, b)
	require.True(t, ok)
	require.Zero(t, gotG.Cmp(g))

	g2, x2, y2 := ExtendedGCDWithConfig(a, b, cfg)
	require.Zero(t, g2.Cmp(g))
	require.Zero(t, x2.Cmp(x))
	require.Zero(t, y2.Cmp(y))
}

func TestModPowWithConfigPopulatesCache(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseCache = true
	cfg.Cache = NewResultCache(16)

	base, exp, m := big.NewInt(2), big.NewInt(10), big.NewInt(1000)
	got, err := ModPowWithConfig(base, exp, m, cfg)
	require.NoError(t, err)
	require.Zero(t, got.Cmp(big.NewInt(24)))

	cached, ok := cfg.Cache.Get("modpow", base, exp, m)
	require.True(t, ok)
	require.Zero(t, cached.Cmp(got))
}

func TestModPowWithConfigWithoutCacheDoesNotPopulateOne(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache = NewResultCache(16)
	// cfg.UseCache left false: the cache must stay untouched.

	base, exp, m := big.NewInt(2), big.NewInt(10), big.NewInt(1000)
	_, err := ModPowWithConfig(base, exp, m, cfg)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Cache.Len())
}
