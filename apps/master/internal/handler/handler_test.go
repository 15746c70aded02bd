package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/arc-self/amon/apps/master/internal/authz"
	"github.com/arc-self/amon/apps/master/internal/db"
	"github.com/arc-self/amon/apps/master/internal/repository"
	"github.com/arc-self/amon/apps/master/internal/repository/repotest"
	"github.com/arc-self/amon/apps/master/internal/service"
	"github.com/arc-self/amon/apps/master/internal/service/dispatch"
	"github.com/arc-self/amon/packages/amon-core/amonerr"
	"github.com/arc-self/amon/packages/amon-core/cache"
	"github.com/arc-self/amon/packages/amon-core/model"
	"github.com/arc-self/amon/packages/amon-core/plugins/notification"
)

const (
	testLogin   = "bob"
	testAccount = "550e8400-e29b-41d4-a716-446655440000"
	testMachine = "770e8400-e29b-41d4-a716-446655440002"
	testServer  = "880e8400-e29b-41d4-a716-446655440003"
)

// fakeMapiClient backs authz.Authorizer's machine-owner/server-exists
// lookups without a live cloud API, the same pattern object_service_test.go
// uses.
type fakeMapiClient struct {
	owners  map[string]string
	servers map[string]bool
}

func (f *fakeMapiClient) MachineOwner(ctx context.Context, machine string) (string, error) {
	owner, ok := f.owners[machine]
	if !ok {
		return "", amonerr.New(amonerr.ResourceNotFound, "no such machine")
	}
	return owner, nil
}

func (f *fakeMapiClient) ServerExists(ctx context.Context, server string) (bool, error) {
	return f.servers[server], nil
}

type fakeProbeRegistry struct {
	types map[string]model.ProbeTypePlugin
}

func (r *fakeProbeRegistry) Lookup(t string) (model.ProbeTypePlugin, bool) {
	p, ok := r.types[t]
	return p, ok
}

type fakeProbeType struct {
	global bool
}

func (p fakeProbeType) ValidateConfig(map[string]any) error { return nil }
func (p fakeProbeType) RunInGlobal() bool                    { return p.global }

// fakeAuditQuerier is an in-memory db.Querier used purely so
// service.NewObjectService has somewhere to write audit rows during
// handler tests, without a live Postgres instance.
type fakeAuditQuerier struct{}

func (f *fakeAuditQuerier) InsertEventIfAbsent(ctx context.Context, uuid, eventType string, seenAt time.Time) (bool, error) {
	return true, nil
}
func (f *fakeAuditQuerier) InsertAuditEntry(ctx context.Context, entry db.AuditEntry) error {
	return nil
}
func (f *fakeAuditQuerier) DeleteExpiredEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// testHarness wires a full ObjectService/Authorizer/Dispatcher over an
// in-memory directory.Adapter — the same fakes internal/service's own
// tests use — so handler tests exercise real validate/authorize/persist
// code instead of mocking it away.
type testHarness struct {
	e   *echo.Echo
	svc *service.ObjectService
	az  *authz.Authorizer
	d   *dispatch.Dispatcher
}

func newTestHarness(t *testing.T, owners map[string]string, servers map[string]bool) *testHarness {
	t.Helper()
	dir := repotest.New()
	dir.Seed(model.DirEntry{
		DN: "uuid=" + testAccount + ", o=smartdc",
		Attributes: map[string][]string{
			"objectclass": {"sdcperson"},
			"login":       {testLogin},
			"uuid":        {testAccount},
		},
	})

	c := cache.New(100, time.Minute)
	accounts := repository.NewAccountRepo(dir, c)
	contacts := repository.NewContactRepo(dir, c)
	monitors := repository.NewMonitorRepo(dir, c)
	reg := &fakeProbeRegistry{types: map[string]model.ProbeTypePlugin{
		"machineup":   fakeProbeType{},
		"globalcheck": fakeProbeType{global: true},
	}}
	probes := repository.NewProbeRepo(dir, c, reg)

	az := authz.New(dir, &fakeMapiClient{owners: owners, servers: servers}, c)

	logger := zap.NewNop()
	svc := service.NewObjectService(accounts, contacts, monitors, probes, az, reg, &fakeAuditQuerier{}, logger)

	notifyReg, err := notification.Build(nil, logger)
	if err != nil {
		t.Fatalf("notification.Build: %v", err)
	}
	d := dispatch.NewDispatcher(monitors, contacts, notifyReg, logger)

	return &testHarness{e: echo.New(), svc: svc, az: az, d: d}
}

// newEchoCtx builds an echo.Context for method/target carrying body as
// the request payload, with X-Amon-Session-Account set to testAccount
// unless overridden by the caller (requireSessionMatch otherwise rejects
// every PUT by default).
func (h *testHarness) newEchoCtx(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Amon-Session-Account", testAccount)
	rec := httptest.NewRecorder()
	return h.e.NewContext(req, rec), rec
}

func setParams(c echo.Context, names, values []string) {
	c.SetParamNames(names...)
	c.SetParamValues(values...)
}

func bodyJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if rec.Body.Len() == 0 {
		return out
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response body %q: %v", rec.Body.String(), err)
	}
	return out
}
