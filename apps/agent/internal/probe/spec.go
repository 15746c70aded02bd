package probe

import "reflect"

// Spec is one probe entry as it arrives in the relay's manifest — the
// wire shape model.Probe.Serialize(true) produces (spec.md §4.B/§4.E).
type Spec struct {
	Name    string         `json:"name"`
	User    string         `json:"user"`
	Monitor string         `json:"monitor"`
	Type    string         `json:"type"`
	Machine string         `json:"machine"`
	Server  string         `json:"server"`
	Config  map[string]any `json:"config"`
	Global  bool           `json:"global"`
}

// Key identifies a probe across manifest snapshots — the agent diffs by
// (user, monitor, name), matching spec.md §4.E's reconciliation contract.
type Key struct {
	User, Monitor, Name string
}

func (s Spec) Key() Key {
	return Key{User: s.User, Monitor: s.Monitor, Name: s.Name}
}

// sameConfig reports whether two specs for the same key are identical in
// every field the running instance depends on — a changed type or config
// means the old instance must be stopped and a new one started rather than
// left running (spec.md §4.E: "restart changed ones").
func (s Spec) sameConfig(other Spec) bool {
	return s.Type == other.Type && reflect.DeepEqual(s.Config, other.Config)
}
