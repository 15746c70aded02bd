package model

import (
	"encoding/json"
	"fmt"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
)

// ProbeObjectClass is the directory objectclass for a Probe entry.
const ProbeObjectClass = "amonprobe"

// ProbeTypePlugin is the probe-type plugin contract model.Probe needs at
// construction time (spec.md §4.B): validate a probe's config, and report
// whether this probe type must run in the node's global zone. The
// concrete plugin registry lives in plugins/probetype, which depends on
// this package — not the reverse — so there is no import cycle.
type ProbeTypePlugin interface {
	ValidateConfig(config map[string]any) error
	RunInGlobal() bool
}

// ProbeTypeRegistry resolves a probe-type key (e.g. "logscan") to its
// plugin.
type ProbeTypeRegistry interface {
	Lookup(probeType string) (ProbeTypePlugin, bool)
}

// Probe is one check instance: type + target + config (spec.md §3).
type Probe struct {
	Name    string
	User    string
	Monitor string
	Type    string
	Machine string
	Server  string
	Config  map[string]any
	Global  bool // derived, never client-supplied — invariant 5
}

type ProbeInput struct {
	Name    string
	User    string
	Monitor string
	Type    string
	Machine string
	Server  string
	Config  map[string]any
}

// NewProbeFromPublic validates a public-form payload against reg and
// constructs a Probe. Global is derived from the matched plugin's
// RunInGlobal(), never taken from the input (invariant 5).
func NewProbeFromPublic(in ProbeInput, reg ProbeTypeRegistry) (*Probe, error) {
	p := &Probe{
		Name: in.Name, User: in.User, Monitor: in.Monitor, Type: in.Type,
		Machine: in.Machine, Server: in.Server, Config: in.Config,
	}
	if err := p.validateIdentity(); err != nil {
		return nil, err
	}
	plugin, ok := reg.Lookup(p.Type)
	if !ok {
		return nil, amonerr.New(amonerr.InvalidArgument, fmt.Sprintf("unknown probe type %q", p.Type))
	}
	if p.Config == nil {
		p.Config = map[string]any{}
	}
	if err := plugin.ValidateConfig(p.Config); err != nil {
		return nil, amonerr.Wrap(amonerr.InvalidArgument, "invalid probe config: "+err.Error(), err)
	}
	p.Global = plugin.RunInGlobal()
	return p, nil
}

// NewProbeFromDirectoryEntry reconstructs a Probe from a directory search
// result. Global is re-derived from the registry rather than trusted off
// the stored attribute, keeping invariant 5 true even if the registry
// changed since the probe was written (a probe type that lost its
// runInGlobal flag re-serializes as non-global).
func NewProbeFromDirectoryEntry(e DirEntry, reg ProbeTypeRegistry, config map[string]any) (*Probe, error) {
	attr, name, ok := parseRDN(splitDN(e.DN)[0])
	if !ok || attr != "probe" {
		return nil, amonerr.New(amonerr.InternalError, "malformed probe DN: "+e.DN)
	}
	parts := splitDN(e.DN)
	if len(parts) < 2 {
		return nil, amonerr.New(amonerr.InternalError, "malformed probe DN: "+e.DN)
	}
	_, monitor, ok := parseRDN(parts[1])
	if !ok {
		return nil, amonerr.New(amonerr.InternalError, "malformed probe DN: "+e.DN)
	}
	p := &Probe{
		Name:    name,
		User:    e.Attr("user"),
		Monitor: monitor,
		Type:    e.Attr("type"),
		Machine: e.Attr("machine"),
		Server:  e.Attr("server"),
		Config:  config,
	}
	if p.Config == nil {
		p.Config = map[string]any{}
	}
	if err := p.validateIdentity(); err != nil {
		return nil, err
	}
	if plugin, ok := reg.Lookup(p.Type); ok {
		p.Global = plugin.RunInGlobal()
	}
	return p, nil
}

func (p *Probe) validateIdentity() error {
	if p.Name == "" {
		return amonerr.New(amonerr.MissingParameter, "probe requires a name")
	}
	if !NameRegex.MatchString(p.Name) {
		return amonerr.New(amonerr.InvalidArgument, fmt.Sprintf("probe name %q is invalid", p.Name))
	}
	if !UUIDRegex.MatchString(p.User) {
		return amonerr.New(amonerr.InvalidArgument, "probe requires a valid owning account uuid")
	}
	if !NameRegex.MatchString(p.Monitor) {
		return amonerr.New(amonerr.InvalidArgument, "probe requires a valid monitor name")
	}
	if p.Type == "" {
		return amonerr.New(amonerr.MissingParameter, "probe requires a type")
	}
	hasMachine := p.Machine != ""
	hasServer := p.Server != ""
	if !hasMachine && !hasServer {
		return amonerr.New(amonerr.MissingParameter, "probe requires a machine or server target")
	}
	if hasMachine && hasServer {
		return amonerr.New(amonerr.InvalidArgument, "probe accepts only one of machine or server, not both")
	}
	if hasMachine && !UUIDRegex.MatchString(p.Machine) {
		return amonerr.New(amonerr.InvalidArgument, "probe machine must be a valid uuid")
	}
	if hasServer && !UUIDRegex.MatchString(p.Server) {
		return amonerr.New(amonerr.InvalidArgument, "probe server must be a valid uuid")
	}
	return nil
}

func (p *Probe) DN() string { return probeDN(p.User, p.Monitor, p.Name) }

func ProbeParentDN(user, monitor string) string { return probeParentDN(user, monitor) }

func ParseProbeDN(dn string) (user, monitor, name string, err error) {
	parts := splitDN(dn)
	if len(parts) < 3 {
		return "", "", "", amonerr.New(amonerr.InternalError, "malformed probe DN: "+dn)
	}
	if a, v, ok := parseRDN(parts[0]); ok && a == "probe" {
		name = v
	} else {
		return "", "", "", amonerr.New(amonerr.InternalError, "malformed probe DN: "+dn)
	}
	if a, v, ok := parseRDN(parts[1]); ok && a == "monitor" {
		monitor = v
	} else {
		return "", "", "", amonerr.New(amonerr.InternalError, "malformed probe DN: "+dn)
	}
	if a, v, ok := parseRDN(parts[2]); ok && a == "uuid" {
		user = v
	} else {
		return "", "", "", amonerr.New(amonerr.InternalError, "malformed probe DN: "+dn)
	}
	return user, monitor, name, nil
}

// Serialize renders the probe's view. internal=true additionally includes
// Global, the only field hidden from the public API (spec.md §4.B) — it is
// what the relay writes into the agent-facing manifest.
func (p *Probe) Serialize(internal bool) map[string]any {
	out := map[string]any{
		"name":    p.Name,
		"user":    p.User,
		"monitor": p.Monitor,
		"type":    p.Type,
		"config":  p.Config,
	}
	if p.Machine != "" {
		out["machine"] = p.Machine
	}
	if p.Server != "" {
		out["server"] = p.Server
	}
	if internal {
		out["global"] = p.Global
	}
	return out
}

// Target returns ("machine", uuid) or ("server", uuid) — whichever of the
// two is set (invariant 2 guarantees exactly one is).
func (p *Probe) Target() (targetType, uuid string) {
	if p.Machine != "" {
		return "machine", p.Machine
	}
	return "server", p.Server
}

func (p *Probe) DirectoryAttrs() map[string][]string {
	attrs := map[string][]string{
		"objectclass": {ProbeObjectClass},
		"probe":       {p.Name},
		"user":        {p.User},
		"type":        {p.Type},
	}
	if p.Machine != "" {
		attrs["machine"] = []string{p.Machine}
	}
	if p.Server != "" {
		attrs["server"] = []string{p.Server}
	}
	if cfg, err := json.Marshal(p.Config); err == nil {
		attrs["config"] = []string{string(cfg)}
	}
	return attrs
}

// ConfigFromDirectoryAttrs decodes the JSON-blob "config" attribute a
// directory entry carries back into a map, for use with
// NewProbeFromDirectoryEntry.
func ConfigFromDirectoryAttrs(e DirEntry) map[string]any {
	raw := e.Attr("config")
	if raw == "" {
		return map[string]any{}
	}
	var cfg map[string]any
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return map[string]any{}
	}
	return cfg
}
