package repository

import "github.com/arc-self/amon/packages/amon-core/model"

// fakeProbePlugin/fakeProbeRegistry stand in for plugins/probetype in
// repository tests, which only need model.ProbeTypeRegistry's Lookup shape.
type fakeProbePlugin struct {
	global bool
}

func (p fakeProbePlugin) ValidateConfig(map[string]any) error { return nil }
func (p fakeProbePlugin) RunInGlobal() bool                    { return p.global }

type fakeProbeRegistry map[string]model.ProbeTypePlugin

func (r fakeProbeRegistry) Lookup(t string) (model.ProbeTypePlugin, bool) {
	p, ok := r[t]
	return p, ok
}
