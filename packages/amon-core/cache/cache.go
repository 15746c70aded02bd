// Package cache implements the bounded, per-entry-TTL, LRU-evicting cache
// from spec.md §4.C on top of github.com/ReneKroon/ttlcache/v2 — already
// present in the retrieval pack as an indirect dependency of
// packages/apisix-go-runner, which needs exactly this shape for its JWKS
// and permission caches.
package cache

import (
	"fmt"
	"time"

	ttlcache "github.com/ReneKroon/ttlcache/v2"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
)

// Scope is one of the cache key namespaces spec.md §4.C enumerates.
type Scope string

const (
	ScopeAccountByLogin   Scope = "AccountByLogin"
	ScopeContactGet       Scope = "ContactGet"
	ScopeContactList      Scope = "ContactList"
	ScopeMonitorGet       Scope = "MonitorGet"
	ScopeMonitorList      Scope = "MonitorList"
	ScopeProbeGet         Scope = "ProbeGet"
	ScopeProbeList        Scope = "ProbeList"
	ScopeMachineOwnership Scope = "MachineOwnership"
	ScopeOperatorStatus   Scope = "OperatorStatus"
	ScopeServerExists     Scope = "ServerExists"
)

// entry wraps a cached value together with the error (if any) that
// produced it, so negative results can be cached per spec.md §4.C.
type entry struct {
	value any
	err   error
}

// Cache is a bounded, TTL-expiring, LRU-evicting cache shared by every
// authorization/read-through lookup in component C.
type Cache struct {
	ttl *ttlcache.Cache
}

// New constructs a Cache bounded to size entries, each expiring after ttl.
func New(size int, ttlDur time.Duration) *Cache {
	c := ttlcache.NewCache()
	c.SetCacheSizeLimit(size)
	c.SetTTL(ttlDur)
	c.SkipTTLExtensionOnHit(true) // reads must not keep a stale entry alive forever
	return &Cache{ttl: c}
}

func key(scope Scope, k string) string {
	return fmt.Sprintf("%s:%s", scope, k)
}

// Remember returns the cached value for (scope, k) if present, otherwise
// calls load, caches the outcome, and returns it. Unavailable errors are
// never cached — enforced here, once, rather than at every call site —
// so a transient directory outage always recovers on the next call.
func (c *Cache) Remember(scope Scope, k string, load func() (any, error)) (any, error) {
	ck := key(scope, k)
	if v, err := c.ttl.Get(ck); err == nil {
		e := v.(entry)
		return e.value, e.err
	}

	value, err := load()
	if amonerr.KindOf(err) != amonerr.Unavailable {
		_ = c.ttl.Set(ck, entry{value: value, err: err})
	}
	return value, err
}

// Invalidate evicts a single key, used when a write makes a cached Get
// stale (spec.md §4.C: "PUT of an entity invalidates <Entity>Get at its
// DN").
func (c *Cache) Invalidate(scope Scope, k string) {
	_ = c.ttl.Remove(key(scope, k))
}

// Close stops the cache's background TTL sweeper.
func (c *Cache) Close() error {
	return c.ttl.Close()
}
