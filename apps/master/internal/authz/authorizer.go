// Package authz implements component C's authorization rules (spec.md
// §4.C) on top of the shared cache and mapi client, with a fail-closed
// posture for anything ambiguous.
package authz

import (
	"context"
	"fmt"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
	"github.com/arc-self/amon/packages/amon-core/cache"
	"github.com/arc-self/amon/packages/amon-core/directory"
	"github.com/arc-self/amon/packages/amon-core/mapi"
	"github.com/arc-self/amon/packages/amon-core/model"
)

// operatorsGroupDN is the fixed group whose membership defines operator
// status (spec.md §4.C: "Operator status = membership of account's DN in
// fixed `operators` group").
const operatorsGroupDN = "cn=operators, ou=groups, o=smartdc"

// Authorizer implements the Probe PUT/DELETE authorization rules.
type Authorizer struct {
	dir   directory.Adapter
	mapi  mapi.Client
	cache *cache.Cache
}

func New(dir directory.Adapter, m mapi.Client, c *cache.Cache) *Authorizer {
	return &Authorizer{dir: dir, mapi: m, cache: c}
}

// IsOperator reports whether account is a member of the operators group.
func (a *Authorizer) IsOperator(ctx context.Context, account string) (bool, error) {
	v, err := a.cache.Remember(cache.ScopeOperatorStatus, account, func() (any, error) {
		entries, err := a.dir.Search(ctx, operatorsGroupDN, directory.SearchOptions{
			Filter: fmt.Sprintf("(uniquemember=uuid=%s, o=smartdc)", account),
			Scope:  directory.ScopeSingleLevel,
		})
		if err != nil {
			return false, err
		}
		return len(entries) > 0, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// machineOwner resolves the owning account of a cloud machine, caching
// negative ("not found") outcomes but never Unavailable ones.
func (a *Authorizer) machineOwner(ctx context.Context, machine string) (string, error) {
	v, err := a.cache.Remember(cache.ScopeMachineOwnership, machine, func() (any, error) {
		return a.mapi.MachineOwner(ctx, machine)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// serverExists resolves whether server is a known compute node.
func (a *Authorizer) serverExists(ctx context.Context, server string) (bool, error) {
	v, err := a.cache.Remember(cache.ScopeServerExists, server, func() (any, error) {
		return a.mapi.ServerExists(ctx, server)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// AuthorizeProbeWrite applies spec.md §4.C's three-way rule to a Probe
// PUT (and, per design note 9, to DELETE against the currently stored
// probe). account is the caller's account UUID; operator is whether the
// caller is an operator. Exactly one of p.Machine/p.Server is already
// guaranteed non-empty by model.NewProbeFromPublic's validateIdentity.
func (a *Authorizer) AuthorizeProbeWrite(ctx context.Context, p *model.Probe, account string, operator bool) error {
	if p.Machine != "" {
		owner, err := a.machineOwner(ctx, p.Machine)
		if err != nil && amonerr.KindOf(err) != amonerr.ResourceNotFound {
			return err
		}
		ownedByCaller := err == nil && owner == account

		// Rule 1: caller owns the machine.
		if ownedByCaller {
			return nil
		}

		// Rule 3: operator-imposed GZ monitoring of a tenant VM — machine
		// exists in the cloud but is not owned by the caller, the probe
		// type is runInGlobal, and the caller is an operator.
		if err == nil && p.Global && operator {
			return nil
		}

		return amonerr.New(amonerr.InvalidArgument, "probe: not authorized to target this machine")
	}

	// Rule 2: server set, caller is operator, server exists.
	exists, err := a.serverExists(ctx, p.Server)
	if err != nil {
		return err
	}
	if !operator || !exists {
		return amonerr.New(amonerr.InvalidArgument, "probe: only operators may target a server")
	}
	return nil
}

// InvalidateMachine drops a cached ownership lookup — used when a probe
// targeting a machine is deleted, so re-authorization after recreation
// does not reuse a stale decision window longer than necessary. Not
// required by spec.md directly, but keeps the cache's staleness bound
// tight around writes the way PUT invalidation does for entity reads.
func (a *Authorizer) InvalidateMachine(machine string) {
	a.cache.Invalidate(cache.ScopeMachineOwnership, machine)
}
