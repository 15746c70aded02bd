// Package probetype implements the probe-type plugin contract from
// spec.md §4.E: `type -> { newInstance(config, context), validateConfig(config),
// runInGlobal: bool }`. Concrete probe behavior (what a log-scan probe
// actually watches) is out of scope per spec.md §1 — these are reference
// implementations satisfying the contract, built the same way the
// notification plugin registry in this module provides concrete delivery
// media against a fixed interface: a config-driven map built once at
// startup.
package probetype

import (
	"fmt"

	"github.com/arc-self/amon/packages/amon-core/model"
)

// Context is handed to NewInstance so a probe implementation can emit
// events back through the agent without depending on the agent package
// directly.
type Context interface {
	Emit(eventType string, clear bool, data map[string]any)
}

// Instance is a running probe: the agent's reconciler starts, stops and
// compares instances by (user, monitor, name) + config equality.
type Instance interface {
	Start() error
	Stop()
}

// Type is the full probe-type plugin contract.
type Type interface {
	model.ProbeTypePlugin
	NewInstance(config map[string]any, ctx Context) (Instance, error)
}

// Registry is a startup-built map[string]Type, satisfying
// model.ProbeTypeRegistry so the object model can validate against it
// without importing this package.
type Registry struct {
	types map[string]Type
}

func NewRegistry(types map[string]Type) *Registry {
	return &Registry{types: types}
}

func (r *Registry) Lookup(probeType string) (model.ProbeTypePlugin, bool) {
	t, ok := r.types[probeType]
	if !ok {
		return nil, false
	}
	return t, true
}

// Instantiate resolves probeType and constructs a running Instance,
// returning an error if the type is unknown — used by the agent's
// reconciler, which already validated config shape at Master PUT time but
// must still handle a type the agent binary doesn't (yet) implement.
func (r *Registry) Instantiate(probeType string, config map[string]any, ctx Context) (Instance, error) {
	t, ok := r.types[probeType]
	if !ok {
		return nil, fmt.Errorf("probetype: unknown type %q", probeType)
	}
	return t.NewInstance(config, ctx)
}

// DefaultRegistry wires the two reference probe types this core ships
// with: logscan (tenant-sandbox log scanning) and machineup (global-zone
// liveness). Concrete compute-cloud probe types plug in the same way.
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]Type{
		"logscan":   &LogScan{},
		"machineup": &MachineUp{},
	})
}
