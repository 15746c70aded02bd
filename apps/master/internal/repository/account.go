// Package repository wraps the directory adapter with the DN-construction
// and cache-invalidation rules spec.md §3-§4 require for each entity type,
// so internal/service never talks to directory.Adapter directly.
package repository

import (
	"context"
	"fmt"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
	"github.com/arc-self/amon/packages/amon-core/cache"
	"github.com/arc-self/amon/packages/amon-core/directory"
)

// AccountRepo resolves a :login route parameter to the owning account's
// UUID — every handler needs this before it can build a DN.
type AccountRepo struct {
	dir   directory.Adapter
	cache *cache.Cache
}

func NewAccountRepo(dir directory.Adapter, c *cache.Cache) *AccountRepo {
	return &AccountRepo{dir: dir, cache: c}
}

// UUID resolves login to the account UUID keyed by it in the directory.
func (r *AccountRepo) UUID(ctx context.Context, login string) (string, error) {
	v, err := r.cache.Remember(cache.ScopeAccountByLogin, login, func() (any, error) {
		entries, err := r.dir.Search(ctx, "o=smartdc", directory.SearchOptions{
			Filter: fmt.Sprintf("(&(objectclass=sdcperson)(login=%s))", login),
			Scope:  directory.ScopeSingleLevel,
		})
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return "", amonerr.New(amonerr.ResourceNotFound, "account: no such login "+login)
		}
		if len(entries) > 1 {
			return "", amonerr.New(amonerr.InternalError, "account: multiple entries for login "+login)
		}
		uuid := entries[0].Attr("uuid")
		if uuid == "" {
			return "", amonerr.New(amonerr.InternalError, "account: entry missing uuid attribute")
		}
		return uuid, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
