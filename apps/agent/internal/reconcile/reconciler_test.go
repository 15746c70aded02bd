package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arc-self/amon/apps/agent/internal/probe"
	"github.com/arc-self/amon/packages/amon-core/plugins/probetype"
)

func newTestReconciler() *Reconciler {
	registry := probetype.DefaultRegistry()
	emitter := probe.NewEmitter("http://localhost:0", zap.NewNop())
	return NewReconciler(registry, emitter, zap.NewNop())
}

func TestReconcileStartsNewProbe(t *testing.T) {
	r := newTestReconciler()
	r.Reconcile([]probe.Spec{
		{Name: "p1", User: "u1", Monitor: "m1", Type: "machineup", Config: map[string]any{}},
	})
	assert.Len(t, r.running, 1)
	assert.Contains(t, r.running, probe.Key{User: "u1", Monitor: "m1", Name: "p1"})
}

func TestReconcileStopsRemovedProbe(t *testing.T) {
	r := newTestReconciler()
	r.Reconcile([]probe.Spec{
		{Name: "p1", User: "u1", Monitor: "m1", Type: "machineup", Config: map[string]any{}},
	})
	require.Len(t, r.running, 1)

	r.Reconcile(nil)
	assert.Len(t, r.running, 0)
}

func TestReconcileRestartsChangedProbe(t *testing.T) {
	r := newTestReconciler()
	r.Reconcile([]probe.Spec{
		{Name: "p1", User: "u1", Monitor: "m1", Type: "machineup", Config: map[string]any{"interval": 5.0}},
	})
	first := r.running[probe.Key{User: "u1", Monitor: "m1", Name: "p1"}].instance

	r.Reconcile([]probe.Spec{
		{Name: "p1", User: "u1", Monitor: "m1", Type: "machineup", Config: map[string]any{"interval": 10.0}},
	})
	second := r.running[probe.Key{User: "u1", Monitor: "m1", Name: "p1"}].instance

	assert.NotSame(t, first, second)
}

func TestReconcileLeavesUnchangedProbeRunning(t *testing.T) {
	r := newTestReconciler()
	spec := probe.Spec{Name: "p1", User: "u1", Monitor: "m1", Type: "machineup", Config: map[string]any{}}
	r.Reconcile([]probe.Spec{spec})
	first := r.running[probe.Key{User: "u1", Monitor: "m1", Name: "p1"}].instance

	r.Reconcile([]probe.Spec{spec})
	second := r.running[probe.Key{User: "u1", Monitor: "m1", Name: "p1"}].instance

	assert.Same(t, first, second)
}

func TestShutdownStopsAllProbes(t *testing.T) {
	r := newTestReconciler()
	r.Reconcile([]probe.Spec{
		{Name: "p1", User: "u1", Monitor: "m1", Type: "machineup", Config: map[string]any{}},
		{Name: "p2", User: "u1", Monitor: "m1", Type: "logscan", Config: map[string]any{"path": "/var/log/x", "regex": "err", "threshold": 1.0, "period": 60.0}},
	})
	require.Len(t, r.running, 2)

	r.Shutdown()
	assert.Len(t, r.running, 0)
}

func TestParseManifestRoundTrips(t *testing.T) {
	body := []byte(`[{"name":"p1","user":"u1","monitor":"m1","type":"logscan","config":{"path":"/x"},"global":false}]`)
	specs, err := ParseManifest(body)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "p1", specs[0].Name)
	assert.Equal(t, "/x", specs[0].Config["path"])
}
