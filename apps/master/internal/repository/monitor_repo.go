package repository

import (
	"context"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
	"github.com/arc-self/amon/packages/amon-core/cache"
	"github.com/arc-self/amon/packages/amon-core/directory"
	"github.com/arc-self/amon/packages/amon-core/model"
)

// MonitorRepo is component A+C's DN-aware view over Monitor entities.
type MonitorRepo struct {
	dir   directory.Adapter
	cache *cache.Cache
}

func NewMonitorRepo(dir directory.Adapter, c *cache.Cache) *MonitorRepo {
	return &MonitorRepo{dir: dir, cache: c}
}

func (r *MonitorRepo) Get(ctx context.Context, user, name string) (*model.Monitor, error) {
	v, err := r.cache.Remember(cache.ScopeMonitorGet, user+"/"+name, func() (any, error) {
		return r.get(ctx, user, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Monitor), nil
}

func (r *MonitorRepo) get(ctx context.Context, user, name string) (*model.Monitor, error) {
	dn := model.MonitorParentDN(user)
	entries, err := r.dir.Search(ctx, dn, directory.SearchOptions{
		Filter: "(monitor=" + name + ")",
		Scope:  directory.ScopeSingleLevel,
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, amonerr.New(amonerr.ResourceNotFound, "monitor "+name+" not found")
	}
	if len(entries) > 1 {
		return nil, amonerr.New(amonerr.InternalError, "monitor "+name+": multiple directory hits for one DN")
	}
	return model.NewMonitorFromDirectoryEntry(entries[0])
}

// Exists supports invariant 3 ("Monitor named in a Probe must exist for
// same user") without constructing a full Monitor, and ignores
// ResourceNotFound rather than propagating it as a caller error.
func (r *MonitorRepo) Exists(ctx context.Context, user, name string) (bool, error) {
	_, err := r.Get(ctx, user, name)
	if err == nil {
		return true, nil
	}
	if amonerr.KindOf(err) == amonerr.ResourceNotFound {
		return false, nil
	}
	return false, err
}

func (r *MonitorRepo) List(ctx context.Context, user string) ([]*model.Monitor, error) {
	v, err := r.cache.Remember(cache.ScopeMonitorList, user, func() (any, error) {
		dn := model.MonitorParentDN(user)
		entries, err := r.dir.Search(ctx, dn, directory.SearchOptions{
			Filter: "(objectclass=" + model.MonitorObjectClass + ")",
			Scope:  directory.ScopeSingleLevel,
		})
		if err != nil {
			return nil, err
		}
		out := make([]*model.Monitor, 0, len(entries))
		for _, e := range entries {
			m, err := model.NewMonitorFromDirectoryEntry(e)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*model.Monitor), nil
}

func (r *MonitorRepo) Put(ctx context.Context, m *model.Monitor) error {
	entry := model.DirEntry{DN: m.DN(), Attributes: m.DirectoryAttrs()}
	if err := r.dir.Add(ctx, entry); err != nil {
		if amonerr.KindOf(err) == amonerr.InvalidArgument {
			if merr := r.dir.Modify(ctx, m.DN(), m.DirectoryAttrs()); merr != nil {
				return merr
			}
		} else {
			return err
		}
	}
	r.cache.Invalidate(cache.ScopeMonitorGet, m.User+"/"+m.Name)
	r.cache.Invalidate(cache.ScopeMonitorList, m.User)
	return nil
}

// HasProbes reports whether any probe is nested under monitor's DN — used
// by the service layer to reject DELETE while children exist (design note
// 9, Open Question decision (a)).
func (r *MonitorRepo) HasProbes(ctx context.Context, user, monitor string) (bool, error) {
	dn := model.ProbeParentDN(user, monitor)
	entries, err := r.dir.Search(ctx, dn, directory.SearchOptions{
		Filter: "(objectclass=" + model.ProbeObjectClass + ")",
		Scope:  directory.ScopeSingleLevel,
	})
	if err != nil {
		if amonerr.KindOf(err) == amonerr.ResourceNotFound {
			return false, nil
		}
		return false, err
	}
	return len(entries) > 0, nil
}

func (r *MonitorRepo) Delete(ctx context.Context, user, name string) error {
	existing, err := r.get(ctx, user, name)
	if err != nil {
		return err
	}
	if err := r.dir.Delete(ctx, existing.DN()); err != nil {
		return err
	}
	r.cache.Invalidate(cache.ScopeMonitorGet, user+"/"+name)
	r.cache.Invalidate(cache.ScopeMonitorList, user)
	return nil
}
