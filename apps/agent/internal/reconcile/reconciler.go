// Package reconcile implements the agent's half of spec.md §4.E: given a
// probe manifest snapshot, diff it against the currently running probe set
// by (user, monitor, name) and reconcile — stop dropped probes, start new
// ones, restart changed ones. A running instance's lifecycle follows
// spec.md §4's state machine: Pending -> Running on successful
// construction, Running -> Stopped on manifest removal or shutdown, any
// state -> Stopped (logged, not retried until the next manifest change) on
// a fatal plugin error.
package reconcile

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/arc-self/amon/apps/agent/internal/probe"
	"github.com/arc-self/amon/packages/amon-core/plugins/probetype"
)

// runningProbe is one entry in the Running state; its presence in
// Reconciler.running is the state machine — absent means Pending (not yet
// started) or Stopped (removed/shut down), present means Running.
type runningProbe struct {
	spec     probe.Spec
	instance probetype.Instance
}

// Reconciler owns the agent's running probe set. Reconcile is called
// serially per manifest snapshot — the poll loop guarantees no two
// snapshots interleave (spec.md §5), so no locking is needed here.
type Reconciler struct {
	registry *probetype.Registry
	emitter  *probe.Emitter
	logger   *zap.Logger

	running map[probe.Key]*runningProbe
}

func NewReconciler(registry *probetype.Registry, emitter *probe.Emitter, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		registry: registry,
		emitter:  emitter,
		logger:   logger,
		running:  make(map[probe.Key]*runningProbe),
	}
}

// Reconcile applies one manifest snapshot atomically: every stop/start
// decision for this snapshot completes before the next snapshot's
// Reconcile call begins.
func (r *Reconciler) Reconcile(manifest []probe.Spec) {
	desired := make(map[probe.Key]probe.Spec, len(manifest))
	for _, s := range manifest {
		desired[s.Key()] = s
	}

	for key, rp := range r.running {
		if _, ok := desired[key]; !ok {
			r.stop(key, rp)
		}
	}

	for key, spec := range desired {
		existing, ok := r.running[key]
		switch {
		case !ok:
			r.start(key, spec)
		case !existing.spec.sameConfig(spec):
			r.stop(key, existing)
			r.start(key, spec)
		}
	}
}

func (r *Reconciler) start(key probe.Key, spec probe.Spec) {
	ctx := probe.NewContext(r.emitter, spec)
	instance, err := r.registry.Instantiate(spec.Type, spec.Config, ctx)
	if err != nil {
		r.logger.Error("probe instantiation failed",
			zap.String("user", key.User), zap.String("monitor", key.Monitor), zap.String("name", key.Name),
			zap.Error(err))
		return
	}
	if err := instance.Start(); err != nil {
		r.logger.Error("probe start failed",
			zap.String("user", key.User), zap.String("monitor", key.Monitor), zap.String("name", key.Name),
			zap.Error(err))
		return
	}
	r.running[key] = &runningProbe{spec: spec, instance: instance}
	r.logger.Info("probe started", zap.String("user", key.User), zap.String("monitor", key.Monitor), zap.String("name", key.Name), zap.String("type", spec.Type))
}

func (r *Reconciler) stop(key probe.Key, rp *runningProbe) {
	rp.instance.Stop()
	delete(r.running, key)
	r.logger.Info("probe stopped", zap.String("user", key.User), zap.String("monitor", key.Monitor), zap.String("name", key.Name))
}

// Shutdown stops every running probe — called once on agent shutdown.
func (r *Reconciler) Shutdown() {
	for key, rp := range r.running {
		r.stop(key, rp)
	}
}

// ParseManifest decodes the relay's manifest body into probe specs.
func ParseManifest(body []byte) ([]probe.Spec, error) {
	var specs []probe.Spec
	if err := json.Unmarshal(body, &specs); err != nil {
		return nil, err
	}
	return specs, nil
}
