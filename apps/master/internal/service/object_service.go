// Package service implements component D's validate -> authorize ->
// persist -> invalidate orchestration (spec.md §2) for Contacts, Monitors,
// and Probes. Repositories already invalidate their own cache entries on
// write (spec.md §4.C); this layer's job is ordering the validate/
// authorize steps in front of that and enforcing the rules only it can
// see (account ownership from the route, monitor-existence, cascade
// policy).
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
	"github.com/arc-self/amon/packages/amon-core/model"
	"github.com/arc-self/amon/apps/master/internal/authz"
	"github.com/arc-self/amon/apps/master/internal/db"
	"github.com/arc-self/amon/apps/master/internal/repository"
)

type ObjectService struct {
	accounts *repository.AccountRepo
	contacts *repository.ContactRepo
	monitors *repository.MonitorRepo
	probes   *repository.ProbeRepo
	authz    *authz.Authorizer
	probeReg model.ProbeTypeRegistry
	audit    db.Querier
	logger   *zap.Logger
}

func NewObjectService(
	accounts *repository.AccountRepo,
	contacts *repository.ContactRepo,
	monitors *repository.MonitorRepo,
	probes *repository.ProbeRepo,
	az *authz.Authorizer,
	probeReg model.ProbeTypeRegistry,
	audit db.Querier,
	logger *zap.Logger,
) *ObjectService {
	return &ObjectService{
		accounts: accounts, contacts: contacts, monitors: monitors, probes: probes,
		authz: az, probeReg: probeReg, audit: audit, logger: logger,
	}
}

// recordAudit inserts one audit_log row for a mutation. Best-effort: a
// logging failure never unwinds the mutation it describes, since the
// directory write already succeeded by the time this runs.
func (s *ObjectService) recordAudit(ctx context.Context, account, action, dn string, operator bool) {
	entry := db.AuditEntry{Account: account, Action: action, EntityDN: dn, Operator: operator, Timestamp: time.Now().UTC()}
	if err := s.audit.InsertAuditEntry(ctx, entry); err != nil {
		s.logger.Warn("audit log insert failed", zap.String("dn", dn), zap.String("action", action), zap.Error(err))
	}
}

// AccountUUID resolves the :login route parameter. Every handler calls
// this first; Contact/Monitor PUTs require only that the session matches
// this account (spec.md §4.C: "owning account = session account").
func (s *ObjectService) AccountUUID(ctx context.Context, login string) (string, error) {
	return s.accounts.UUID(ctx, login)
}

// PutContact validates then persists — no further authorization beyond
// the route's own session check (performed by the caller/middleware).
func (s *ObjectService) PutContact(ctx context.Context, in model.ContactInput) (*model.Contact, error) {
	c, err := model.NewContactFromPublic(in)
	if err != nil {
		return nil, err
	}
	if err := s.contacts.Put(ctx, c); err != nil {
		return nil, err
	}
	operator, _ := s.authz.IsOperator(ctx, c.User)
	s.recordAudit(ctx, c.User, "put", c.DN(), operator)
	return c, nil
}

func (s *ObjectService) GetContact(ctx context.Context, user, name string) (*model.Contact, error) {
	return s.contacts.Get(ctx, user, name)
}

func (s *ObjectService) ListContacts(ctx context.Context, user string) ([]*model.Contact, error) {
	return s.contacts.List(ctx, user)
}

func (s *ObjectService) DeleteContact(ctx context.Context, user, name string) error {
	existing, err := s.contacts.Get(ctx, user, name)
	if err != nil {
		return err
	}
	if err := s.contacts.Delete(ctx, user, name); err != nil {
		return err
	}
	operator, _ := s.authz.IsOperator(ctx, user)
	s.recordAudit(ctx, user, "delete", existing.DN(), operator)
	return nil
}

// PutMonitor validates and persists without looking up the named
// contacts: a nonexistent contact is skipped with a warning at dispatch
// time, not rejected here, since a Monitor may be created before its
// Contacts. No directory lookup is needed at write time for this reason.
func (s *ObjectService) PutMonitor(ctx context.Context, in model.MonitorInput) (*model.Monitor, error) {
	m, err := model.NewMonitorFromPublic(in)
	if err != nil {
		return nil, err
	}
	if err := s.monitors.Put(ctx, m); err != nil {
		return nil, err
	}
	operator, _ := s.authz.IsOperator(ctx, m.User)
	s.recordAudit(ctx, m.User, "put", m.DN(), operator)
	return m, nil
}

func (s *ObjectService) GetMonitor(ctx context.Context, user, name string) (*model.Monitor, error) {
	return s.monitors.Get(ctx, user, name)
}

func (s *ObjectService) ListMonitors(ctx context.Context, user string) ([]*model.Monitor, error) {
	return s.monitors.List(ctx, user)
}

// DeleteMonitor rejects deletion while child Probes remain (design note
// 9, Open Question decision (a): reject with InvalidArgument, HTTP 409,
// rather than cascade). There is no bulk cascade operation; a caller
// deletes the Probes one by one first.
func (s *ObjectService) DeleteMonitor(ctx context.Context, user, name string) error {
	hasProbes, err := s.monitors.HasProbes(ctx, user, name)
	if err != nil {
		return err
	}
	if hasProbes {
		return amonerr.New(amonerr.InvalidArgument, "monitor "+name+" has probes; delete them first")
	}
	existing, err := s.monitors.Get(ctx, user, name)
	if err != nil {
		return err
	}
	if err := s.monitors.Delete(ctx, user, name); err != nil {
		return err
	}
	operator, _ := s.authz.IsOperator(ctx, user)
	s.recordAudit(ctx, user, "delete", existing.DN(), operator)
	return nil
}

// PutProbe runs the full validate -> authorize -> persist pipeline
// (spec.md §2's flow diagram).
func (s *ObjectService) PutProbe(ctx context.Context, in model.ProbeInput, operator bool) (*model.Probe, error) {
	exists, err := s.monitors.Exists(ctx, in.User, in.Monitor)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, amonerr.New(amonerr.InvalidArgument, "probe: monitor "+in.Monitor+" does not exist")
	}

	p, err := model.NewProbeFromPublic(in, s.probeReg)
	if err != nil {
		return nil, err
	}

	if err := s.authz.AuthorizeProbeWrite(ctx, p, in.User, operator); err != nil {
		return nil, err
	}

	if err := s.probes.Put(ctx, p); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, in.User, "put", p.DN(), operator)
	return p, nil
}

func (s *ObjectService) GetProbe(ctx context.Context, user, monitor, name string) (*model.Probe, error) {
	return s.probes.Get(ctx, user, monitor, name)
}

func (s *ObjectService) ListProbes(ctx context.Context, user, monitor string) ([]*model.Probe, error) {
	return s.probes.List(ctx, user, monitor)
}

// DeleteProbe applies design note 9's authorization decision: the same
// three-way rule as PUT, evaluated against the probe as currently stored
// (so a client cannot bypass authorization by omitting the target from
// a DELETE body), with operators always permitted to delete regardless
// of ownership.
func (s *ObjectService) DeleteProbe(ctx context.Context, user, monitor, name string, operator bool) error {
	existing, err := s.probes.Get(ctx, user, monitor, name)
	if err != nil {
		return err
	}
	if !operator {
		if err := s.authz.AuthorizeProbeWrite(ctx, existing, user, operator); err != nil {
			return err
		}
	}
	if err := s.probes.Delete(ctx, user, monitor, name); err != nil {
		return err
	}
	if existing.Machine != "" {
		s.authz.InvalidateMachine(existing.Machine)
	}
	s.recordAudit(ctx, user, "delete", existing.DN(), operator)
	return nil
}

// ProbesForTarget backs component E's GET/HEAD /agentprobes.
func (s *ObjectService) ProbesForTarget(ctx context.Context, targetType, uuid string) ([]*model.Probe, error) {
	return s.probes.ListByTarget(ctx, targetType, uuid)
}
