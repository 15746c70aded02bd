package repository

import (
	"context"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
	"github.com/arc-self/amon/packages/amon-core/cache"
	"github.com/arc-self/amon/packages/amon-core/directory"
	"github.com/arc-self/amon/packages/amon-core/model"
)

// ProbeRepo is component A+C's DN-aware view over Probe entities, plus
// the additional by-target queries the relay-sync endpoint (component E,
// GET/HEAD /agentprobes) needs.
type ProbeRepo struct {
	dir   directory.Adapter
	cache *cache.Cache
	reg   model.ProbeTypeRegistry
}

func NewProbeRepo(dir directory.Adapter, c *cache.Cache, reg model.ProbeTypeRegistry) *ProbeRepo {
	return &ProbeRepo{dir: dir, cache: c, reg: reg}
}

func (r *ProbeRepo) fromEntry(e model.DirEntry) (*model.Probe, error) {
	return model.NewProbeFromDirectoryEntry(e, r.reg, model.ConfigFromDirectoryAttrs(e))
}

func (r *ProbeRepo) Get(ctx context.Context, user, monitor, name string) (*model.Probe, error) {
	v, err := r.cache.Remember(cache.ScopeProbeGet, user+"/"+monitor+"/"+name, func() (any, error) {
		return r.get(ctx, user, monitor, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Probe), nil
}

func (r *ProbeRepo) get(ctx context.Context, user, monitor, name string) (*model.Probe, error) {
	dn := model.ProbeParentDN(user, monitor)
	entries, err := r.dir.Search(ctx, dn, directory.SearchOptions{
		Filter: "(probe=" + name + ")",
		Scope:  directory.ScopeSingleLevel,
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, amonerr.New(amonerr.ResourceNotFound, "probe "+name+" not found")
	}
	if len(entries) > 1 {
		return nil, amonerr.New(amonerr.InternalError, "probe "+name+": multiple directory hits for one DN")
	}
	return r.fromEntry(entries[0])
}

func (r *ProbeRepo) List(ctx context.Context, user, monitor string) ([]*model.Probe, error) {
	v, err := r.cache.Remember(cache.ScopeProbeList, user+"/"+monitor, func() (any, error) {
		dn := model.ProbeParentDN(user, monitor)
		entries, err := r.dir.Search(ctx, dn, directory.SearchOptions{
			Filter: "(objectclass=" + model.ProbeObjectClass + ")",
			Scope:  directory.ScopeSingleLevel,
		})
		if err != nil {
			if amonerr.KindOf(err) == amonerr.ResourceNotFound {
				return []*model.Probe{}, nil
			}
			return nil, err
		}
		out := make([]*model.Probe, 0, len(entries))
		for _, e := range entries {
			p, err := r.fromEntry(e)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*model.Probe), nil
}

// ListByTarget searches the whole directory subtree for probes targeting
// machine or server — this is what backs component E's GET /agentprobes
// manifest query, which is keyed by target, not by (user, monitor).
func (r *ProbeRepo) ListByTarget(ctx context.Context, targetType, uuid string) ([]*model.Probe, error) {
	filter := "(&(objectclass=" + model.ProbeObjectClass + ")(" + targetType + "=" + uuid + "))"
	entries, err := r.dir.Search(ctx, "o=smartdc", directory.SearchOptions{
		Filter: filter,
		Scope:  directory.ScopeSubtree,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*model.Probe, 0, len(entries))
	for _, e := range entries {
		p, err := r.fromEntry(e)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProbeRepo) Put(ctx context.Context, p *model.Probe) error {
	entry := model.DirEntry{DN: p.DN(), Attributes: p.DirectoryAttrs()}
	if err := r.dir.Add(ctx, entry); err != nil {
		if amonerr.KindOf(err) == amonerr.InvalidArgument {
			if merr := r.dir.Modify(ctx, p.DN(), p.DirectoryAttrs()); merr != nil {
				return merr
			}
		} else {
			return err
		}
	}
	r.cache.Invalidate(cache.ScopeProbeGet, p.User+"/"+p.Monitor+"/"+p.Name)
	r.cache.Invalidate(cache.ScopeProbeList, p.User+"/"+p.Monitor)
	return nil
}

func (r *ProbeRepo) Delete(ctx context.Context, user, monitor, name string) error {
	existing, err := r.get(ctx, user, monitor, name)
	if err != nil {
		return err
	}
	if err := r.dir.Delete(ctx, existing.DN()); err != nil {
		return err
	}
	r.cache.Invalidate(cache.ScopeProbeGet, user+"/"+monitor+"/"+name)
	r.cache.Invalidate(cache.ScopeProbeList, user+"/"+monitor)
	return nil
}
