package probe

import "github.com/arc-self/amon/packages/amon-core/plugins/probetype"

// emitContext implements probetype.Context for one running instance,
// closing over the (user, monitor, name, type) identity its probetype.Instance
// needs to stamp on outbound events but has no other reason to track itself.
type emitContext struct {
	emitter                    *Emitter
	user, monitor, name, ptype string
}

// NewContext builds a probetype.Context for the given manifest spec,
// bound to emitter so the resulting instance's Emit calls are routed to
// this agent's relay.
func NewContext(emitter *Emitter, spec Spec) probetype.Context {
	return &emitContext{emitter: emitter, user: spec.User, monitor: spec.Monitor, name: spec.Name, ptype: spec.Type}
}

func (c *emitContext) Emit(eventType string, clear bool, data map[string]any) {
	c.emitter.Emit(c.user, c.monitor, c.name, c.ptype, eventType, clear, data)
}
