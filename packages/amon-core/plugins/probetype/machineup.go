package probetype

import "fmt"

// MachineUp checks that a compute node is reachable. It declares
// runInGlobal = true: even when targeted at a tenant's machine (operator
// imposed monitoring, spec.md §4.C rule 3), it executes inside the node's
// privileged sandbox rather than the tenant's.
type MachineUp struct{}

func (MachineUp) RunInGlobal() bool { return true }

func (MachineUp) ValidateConfig(config map[string]any) error {
	if v, ok := config["interval"]; ok {
		if n, ok := numericField(v); !ok || n < 1 {
			return fmt.Errorf("machineup: config.interval must be a positive number of seconds")
		}
	}
	return nil
}

func (MachineUp) NewInstance(config map[string]any, ctx Context) (Instance, error) {
	return &machineUpInstance{config: config, ctx: ctx}, nil
}

type machineUpInstance struct {
	config map[string]any
	ctx    Context
}

func (i *machineUpInstance) Start() error { return nil }
func (i *machineUpInstance) Stop()        {}
