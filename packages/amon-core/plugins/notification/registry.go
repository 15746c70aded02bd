// Package notification implements the notification plugin contract from
// spec.md §4.D: `newInstance(config) -> { notify(event, recipient, message, cb) }`.
// Plugins are stateful per Master process, instantiated once at startup
// from config.notificationPlugins.*, and must tolerate concurrent Notify
// calls (spec.md §5) — the webhook plugin is backed by a *http.Client,
// which is already safe for concurrent use, and the email and sms stubs
// only read their fields after construction.
package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Event is the minimal shape a plugin needs out of the wire event
// (spec.md §6) to render a message.
type Event struct {
	UUID    string
	Type    string
	Monitor string
	Time    int64
	Clear   bool
	Data    map[string]any
}

// Plugin is one notification medium.
type Plugin interface {
	Notify(ctx context.Context, event Event, recipient, message string) error
}

// Factory builds a Plugin from its medium-specific config block and a
// logger — every plugin logs its own delivery outcomes.
type Factory func(config map[string]any, logger *zap.Logger) (Plugin, error)

var factories = map[string]Factory{
	"email":   NewEmailPlugin,
	"webhook": NewWebhookPlugin,
	"sms":     NewSMSPlugin,
}

// Registry is the startup-built map[string]Plugin keyed by medium.
type Registry struct {
	plugins map[string]Plugin
}

// Build instantiates one plugin per entry in cfg (medium -> plugin
// config), matching spec.md §6's `notificationPlugins.{name}.{path,config}`
// shape — "path" selects the built-in medium since this core does not
// load arbitrary .so plugins, "config" is passed through verbatim.
func Build(cfg map[string]PluginConfig, logger *zap.Logger) (*Registry, error) {
	plugins := make(map[string]Plugin, len(cfg))
	for medium, pc := range cfg {
		factory, ok := factories[pc.Medium()]
		if !ok {
			return nil, fmt.Errorf("notification: unknown medium %q for plugin %q", pc.Medium(), medium)
		}
		p, err := factory(pc.Config, logger.With(zap.String("plugin", medium)))
		if err != nil {
			return nil, fmt.Errorf("notification: failed to build plugin %q: %w", medium, err)
		}
		plugins[medium] = p
	}
	return &Registry{plugins: plugins}, nil
}

// PluginConfig is one notificationPlugins.{name} entry.
type PluginConfig struct {
	Path   string // selects the built-in medium, e.g. "webhook"
	Config map[string]any
}

func (pc PluginConfig) Medium() string { return pc.Path }

// Lookup resolves a Contact.Medium to its plugin instance.
func (r *Registry) Lookup(medium string) (Plugin, bool) {
	p, ok := r.plugins[medium]
	return p, ok
}
