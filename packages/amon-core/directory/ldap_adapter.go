package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
	"github.com/arc-self/amon/packages/amon-core/model"
)

// Config holds the bind parameters named in spec.md §6: ufds.{url,rootDn,password}.
type Config struct {
	URL      string
	RootDN   string
	Password string
}

// ldapAdapter is the production Adapter, backed by a single bound
// connection guarded by a mutex — one long-lived connection, reconnect
// on failure, the same posture natsclient.Client takes for its external
// dependency.
type ldapAdapter struct {
	cfg    Config
	logger *zap.Logger

	mu   sync.Mutex
	conn *ldap.Conn
}

// NewLDAPAdapter dials and binds using cfg, failing fast at startup when
// a required external dependency is unreachable.
func NewLDAPAdapter(cfg Config, logger *zap.Logger) (Adapter, error) {
	a := &ldapAdapter{cfg: cfg, logger: logger}
	if err := a.connect(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *ldapAdapter) connect() error {
	conn, err := ldap.DialURL(a.cfg.URL)
	if err != nil {
		return amonerr.Wrap(amonerr.Unavailable, "directory: dial failed", err)
	}
	if err := conn.Bind(a.cfg.RootDN, a.cfg.Password); err != nil {
		conn.Close()
		return amonerr.Wrap(amonerr.Unavailable, "directory: bind failed", err)
	}
	a.conn = conn
	return nil
}

// ensureConn reconnects lazily if the previous connection dropped,
// mirroring natsclient's reconnect-on-demand behavior without adding a
// background goroutine this package does not need.
func (a *ldapAdapter) ensureConn() error {
	if a.conn != nil {
		return nil
	}
	return a.connect()
}

func toScope(s SearchScope) int {
	switch s {
	case ScopeBaseObject:
		return ldap.ScopeBaseObject
	case ScopeSingleLevel:
		return ldap.ScopeSingleLevel
	default:
		return ldap.ScopeWholeSubtree
	}
}

func (a *ldapAdapter) Search(ctx context.Context, baseDN string, opts SearchOptions) ([]model.DirEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureConn(); err != nil {
		return nil, err
	}

	filter := opts.Filter
	if filter == "" {
		filter = "(objectclass=*)"
	}
	req := ldap.NewSearchRequest(
		baseDN,
		toScope(opts.Scope), ldap.NeverDerefAliases, 0, 0, false,
		filter,
		[]string{"*"},
		nil,
	)

	result, err := a.conn.SearchWithPaging(req, 1000)
	if err != nil {
		a.conn = nil // force reconnect next call
		return nil, translateErr("search", baseDN, err)
	}

	entries := make([]model.DirEntry, 0, len(result.Entries))
	for _, e := range result.Entries {
		attrs := make(map[string][]string, len(e.Attributes))
		for _, at := range e.Attributes {
			attrs[at.Name] = at.Values
		}
		entries = append(entries, model.DirEntry{DN: e.DN, Attributes: attrs})
	}
	return entries, nil
}

func (a *ldapAdapter) Add(ctx context.Context, entry model.DirEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureConn(); err != nil {
		return err
	}

	req := ldap.NewAddRequest(entry.DN, nil)
	for attr, values := range entry.Attributes {
		req.Attribute(attr, values)
	}
	if err := a.conn.Add(req); err != nil {
		a.conn = nil
		return translateErr("add", entry.DN, err)
	}
	return nil
}

func (a *ldapAdapter) Modify(ctx context.Context, dn string, attrs map[string][]string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureConn(); err != nil {
		return err
	}

	req := ldap.NewModifyRequest(dn, nil)
	for attr, values := range attrs {
		req.Replace(attr, values)
	}
	if err := a.conn.Modify(req); err != nil {
		a.conn = nil
		return translateErr("modify", dn, err)
	}
	return nil
}

func (a *ldapAdapter) Delete(ctx context.Context, dn string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureConn(); err != nil {
		return err
	}

	req := ldap.NewDelRequest(dn, nil)
	if err := a.conn.Del(req); err != nil {
		a.conn = nil
		return translateErr("delete", dn, err)
	}
	return nil
}

func (a *ldapAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.conn == nil {
		return nil
	}
	if err := a.conn.Unbind(); err != nil {
		return fmt.Errorf("directory: unbind: %w", err)
	}
	return nil
}
