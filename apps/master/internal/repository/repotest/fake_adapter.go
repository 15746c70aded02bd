// Package repotest provides an in-memory directory.Adapter fake shared by
// repository, service, and dispatch package tests, so those packages can
// exercise real repository/service code against a directory-shaped store
// without a live LDAP server.
package repotest

import (
	"context"
	"strings"
	"sync"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
	"github.com/arc-self/amon/packages/amon-core/directory"
	"github.com/arc-self/amon/packages/amon-core/model"
)

// FakeAdapter is a minimal in-memory directory.Adapter. It supports the
// filter shapes this codebase actually issues: "(attr=value)" and
// "(&(attr1=v1)(attr2=v2))" — not a general LDAP filter evaluator.
type FakeAdapter struct {
	mu      sync.Mutex
	entries map[string]model.DirEntry // keyed by DN
}

func New() *FakeAdapter {
	return &FakeAdapter{entries: make(map[string]model.DirEntry)}
}

func (a *FakeAdapter) Search(ctx context.Context, baseDN string, opts directory.SearchOptions) ([]model.DirEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	conds := parseFilter(opts.Filter)

	var out []model.DirEntry
	for dn, e := range a.entries {
		if !isUnder(dn, baseDN, opts.Scope) {
			continue
		}
		if matches(e, conds) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (a *FakeAdapter) Add(ctx context.Context, entry model.DirEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.entries[entry.DN]; exists {
		return amonerr.New(amonerr.InvalidArgument, "entry already exists: "+entry.DN)
	}
	a.entries[entry.DN] = entry
	return nil
}

func (a *FakeAdapter) Modify(ctx context.Context, dn string, attrs map[string][]string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[dn]
	if !ok {
		return amonerr.New(amonerr.ResourceNotFound, "no such entry: "+dn)
	}
	e.Attributes = attrs
	a.entries[dn] = e
	return nil
}

func (a *FakeAdapter) Delete(ctx context.Context, dn string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.entries[dn]; !ok {
		return amonerr.New(amonerr.ResourceNotFound, "no such entry: "+dn)
	}
	delete(a.entries, dn)
	return nil
}

func (a *FakeAdapter) Close() error { return nil }

// Seed directly inserts an entry, bypassing Add's already-exists check —
// for test setup.
func (a *FakeAdapter) Seed(e model.DirEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[e.DN] = e
}

func isUnder(dn, baseDN string, scope directory.SearchScope) bool {
	if dn == baseDN {
		return scope != directory.ScopeSingleLevel
	}
	suffix := ", " + baseDN
	if !strings.HasSuffix(dn, suffix) {
		return false
	}
	if scope == directory.ScopeSingleLevel {
		rest := strings.TrimSuffix(dn, suffix)
		return !strings.Contains(rest, ",")
	}
	return true
}

func parseFilter(filter string) []condition {
	filter = strings.TrimSpace(filter)
	filter = strings.TrimPrefix(filter, "(&")
	filter = strings.TrimSuffix(filter, ")")
	filter = strings.TrimPrefix(filter, "(")

	var conds []condition
	for _, clause := range strings.Split(filter, ")(") {
		clause = strings.Trim(clause, "()")
		parts := strings.SplitN(clause, "=", 2)
		if len(parts) != 2 {
			continue
		}
		conds = append(conds, condition{attr: parts[0], value: parts[1]})
	}
	return conds
}

type condition struct {
	attr, value string
}

func matches(e model.DirEntry, conds []condition) bool {
	for _, c := range conds {
		if c.attr == "objectclass" {
			if !contains(e.AttrList("objectclass"), c.value) {
				return false
			}
			continue
		}
		if e.Attr(c.attr) != c.value {
			return false
		}
	}
	return true
}

func contains(vs []string, v string) bool {
	for _, x := range vs {
		if x == v {
			return true
		}
	}
	return false
}
