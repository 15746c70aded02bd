// Package directory implements component A (spec.md §4.A): a thin
// semantic view over the external LDAP-shaped directory service that
// authoritatively stores Contact/Monitor/Probe records. It follows the
// usual external-system-adapter idiom — interface-typed client, idempotent
// operations, soft-fail translation of downstream errors into the
// domain's own error vocabulary — implemented against
// github.com/go-ldap/ldap/v3 for literal bind/search/add/modify/delete
// semantics.
package directory

import (
	"context"

	"github.com/arc-self/amon/packages/amon-core/model"
)

// SearchScope mirrors LDAP's base/one-level/subtree search scopes.
type SearchScope int

const (
	ScopeBaseObject SearchScope = iota
	ScopeSingleLevel
	ScopeSubtree
)

// SearchOptions narrows a search(parentDN, opts) call (spec.md §4.A).
type SearchOptions struct {
	Filter string
	Scope  SearchScope
}

// Adapter is the semantic view every higher layer (repositories in
// apps/master) depends on — never the raw LDAP client directly, so the
// rest of the codebase is insulated from the wire protocol.
type Adapter interface {
	Search(ctx context.Context, baseDN string, opts SearchOptions) ([]model.DirEntry, error)
	Add(ctx context.Context, entry model.DirEntry) error
	Modify(ctx context.Context, dn string, attrs map[string][]string) error
	Delete(ctx context.Context, dn string) error
	Close() error
}
