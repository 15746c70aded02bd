package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
)

func TestRememberCachesSuccessfulResult(t *testing.T) {
	c := New(10, time.Minute)
	defer c.Close()

	calls := 0
	load := func() (any, error) {
		calls++
		return "value", nil
	}

	v1, err := c.Remember(ScopeContactGet, "k1", load)
	require.NoError(t, err)
	assert.Equal(t, "value", v1)

	v2, err := c.Remember(ScopeContactGet, "k1", load)
	require.NoError(t, err)
	assert.Equal(t, "value", v2)
	assert.Equal(t, 1, calls, "second Remember should hit the cache, not call load again")
}

func TestRememberNeverCachesUnavailable(t *testing.T) {
	c := New(10, time.Minute)
	defer c.Close()

	calls := 0
	load := func() (any, error) {
		calls++
		return nil, amonerr.New(amonerr.Unavailable, "directory unreachable")
	}

	_, err := c.Remember(ScopeContactGet, "k1", load)
	require.Error(t, err)
	_, err = c.Remember(ScopeContactGet, "k1", load)
	require.Error(t, err)

	assert.Equal(t, 2, calls, "Unavailable results must never be cached so transient outages recover")
}

func TestRememberCachesNegativeResult(t *testing.T) {
	// ResourceNotFound (not Unavailable) is a valid negative result to
	// cache — spec.md §4.C — so a repeated GET-after-delete observes a
	// consistent miss without re-querying the directory (property P4).
	c := New(10, time.Minute)
	defer c.Close()

	calls := 0
	notFound := amonerr.New(amonerr.ResourceNotFound, "no such object")
	load := func() (any, error) {
		calls++
		return nil, notFound
	}

	_, err1 := c.Remember(ScopeContactGet, "k1", load)
	_, err2 := c.Remember(ScopeContactGet, "k1", load)

	assert.ErrorIs(t, err1, notFound)
	assert.ErrorIs(t, err2, notFound)
	assert.Equal(t, 1, calls)
}

func TestInvalidateForcesReload(t *testing.T) {
	c := New(10, time.Minute)
	defer c.Close()

	calls := 0
	load := func() (any, error) {
		calls++
		return calls, nil
	}

	v1, _ := c.Remember(ScopeMonitorGet, "k1", load)
	assert.Equal(t, 1, v1)

	c.Invalidate(ScopeMonitorGet, "k1")

	v2, _ := c.Remember(ScopeMonitorGet, "k1", load)
	assert.Equal(t, 2, v2)
}

func TestScopesAreIndependentNamespaces(t *testing.T) {
	c := New(10, time.Minute)
	defer c.Close()

	_, _ = c.Remember(ScopeContactGet, "same-key", func() (any, error) { return "contact", nil })
	v, _ := c.Remember(ScopeMonitorGet, "same-key", func() (any, error) { return "monitor", nil })

	assert.Equal(t, "monitor", v, "same key string under a different scope must not collide")
}

func TestRememberPropagatesNonNotFoundError(t *testing.T) {
	c := New(10, time.Minute)
	defer c.Close()

	boom := errors.New("boom")
	_, err := c.Remember(ScopeProbeGet, "k1", func() (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}
