package repository

import (
	"context"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
	"github.com/arc-self/amon/packages/amon-core/cache"
	"github.com/arc-self/amon/packages/amon-core/directory"
	"github.com/arc-self/amon/packages/amon-core/model"
)

// ContactRepo is component A+C's DN-aware view over Contact entities.
type ContactRepo struct {
	dir   directory.Adapter
	cache *cache.Cache
}

func NewContactRepo(dir directory.Adapter, c *cache.Cache) *ContactRepo {
	return &ContactRepo{dir: dir, cache: c}
}

func (r *ContactRepo) Get(ctx context.Context, user, name string) (*model.Contact, error) {
	v, err := r.cache.Remember(cache.ScopeContactGet, user+"/"+name, func() (any, error) {
		return r.get(ctx, user, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Contact), nil
}

func (r *ContactRepo) get(ctx context.Context, user, name string) (*model.Contact, error) {
	dn := model.ContactParentDN(user)
	entries, err := r.dir.Search(ctx, dn, directory.SearchOptions{
		Filter: "(name=" + name + ")",
		Scope:  directory.ScopeSingleLevel,
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, amonerr.New(amonerr.ResourceNotFound, "contact "+name+" not found")
	}
	if len(entries) > 1 {
		return nil, amonerr.New(amonerr.InternalError, "contact "+name+": multiple directory hits for one DN")
	}
	return model.NewContactFromDirectoryEntry(entries[0])
}

func (r *ContactRepo) List(ctx context.Context, user string) ([]*model.Contact, error) {
	v, err := r.cache.Remember(cache.ScopeContactList, user, func() (any, error) {
		dn := model.ContactParentDN(user)
		entries, err := r.dir.Search(ctx, dn, directory.SearchOptions{
			Filter: "(objectclass=" + model.ContactObjectClass + ")",
			Scope:  directory.ScopeSingleLevel,
		})
		if err != nil {
			return nil, err
		}
		out := make([]*model.Contact, 0, len(entries))
		for _, e := range entries {
			c, err := model.NewContactFromDirectoryEntry(e)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*model.Contact), nil
}

// Put persists c, upserting via add-then-modify-on-conflict, and
// invalidates the Get/List cache entries spec.md §4.C names.
func (r *ContactRepo) Put(ctx context.Context, c *model.Contact) error {
	entry := model.DirEntry{DN: c.DN(), Attributes: c.DirectoryAttrs()}
	if err := r.dir.Add(ctx, entry); err != nil {
		if amonerr.KindOf(err) == amonerr.InvalidArgument {
			// already exists: full-replacement update (spec.md §3 Lifecycle).
			if merr := r.dir.Modify(ctx, c.DN(), c.DirectoryAttrs()); merr != nil {
				return merr
			}
		} else {
			return err
		}
	}
	r.cache.Invalidate(cache.ScopeContactGet, c.User+"/"+c.Name)
	r.cache.Invalidate(cache.ScopeContactList, c.User)
	return nil
}

// Delete fetches c first (bypassing the cache) so the parent DN used for
// list-cache invalidation is known even if the caller never had it.
func (r *ContactRepo) Delete(ctx context.Context, user, name string) error {
	existing, err := r.get(ctx, user, name)
	if err != nil {
		return err
	}
	if err := r.dir.Delete(ctx, existing.DN()); err != nil {
		return err
	}
	r.cache.Invalidate(cache.ScopeContactGet, user+"/"+name)
	r.cache.Invalidate(cache.ScopeContactList, user)
	return nil
}
