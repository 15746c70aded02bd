// Package dispatch implements component D's event dispatch engine
// (spec.md §4.D): on ingest, resolve Monitor -> Contacts -> notification
// plugins and fan out, never surfacing a notification failure as an
// ingest failure.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
	"github.com/arc-self/amon/packages/amon-core/plugins/notification"
	"github.com/arc-self/amon/apps/master/internal/repository"
)

// Dispatcher resolves and fans out one Event at a time.
type Dispatcher struct {
	monitors *repository.MonitorRepo
	contacts *repository.ContactRepo
	plugins  *notification.Registry
	logger   *zap.Logger
}

func NewDispatcher(monitors *repository.MonitorRepo, contacts *repository.ContactRepo, plugins *notification.Registry, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{monitors: monitors, contacts: contacts, plugins: plugins, logger: logger}
}

// Dispatch implements spec.md §4.D steps 1-5. It returns an error only
// when the monitor lookup itself fails for a reason other than "not
// found" (e.g. a directory outage) — an unknown monitor or unknown
// contact is logged and skipped, never surfaced as a failure, per spec.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	monitor, err := d.monitors.Get(ctx, ev.User, ev.Monitor)
	if err != nil {
		if amonerr.KindOf(err) == amonerr.ResourceNotFound {
			d.logger.Warn("event references unknown monitor, dropping",
				zap.String("user", ev.User), zap.String("monitor", ev.Monitor), zap.String("event", ev.UUID))
			return nil
		}
		return err
	}

	message := renderMessage(ev)

	var wg sync.WaitGroup
	for _, name := range monitor.Contacts {
		contact, err := d.contacts.Get(ctx, ev.User, name)
		if err != nil {
			d.logger.Warn("monitor references unknown contact, skipping",
				zap.String("monitor", ev.Monitor), zap.String("contact", name))
			continue
		}

		plugin, ok := d.plugins.Lookup(contact.Medium)
		if !ok {
			d.logger.Warn("contact uses unregistered notification medium, skipping",
				zap.String("contact", contact.Name), zap.String("medium", contact.Medium))
			continue
		}

		wg.Add(1)
		go func(contact string, recipient string, plugin notification.Plugin) {
			defer wg.Done()
			nev := notification.Event{UUID: ev.UUID, Type: ev.Type, Monitor: ev.Monitor, Time: ev.Time, Clear: ev.Clear, Data: ev.Data}
			if err := plugin.Notify(ctx, nev, recipient, message); err != nil {
				d.logger.Error("notification delivery failed",
					zap.String("contact", contact), zap.Error(err))
			}
		}(contact.Name, contact.Data, plugin)
	}
	wg.Wait()

	return nil
}

func renderMessage(ev Event) string {
	if msg, ok := ev.Data["message"].(string); ok && msg != "" {
		return msg
	}
	return fmt.Sprintf("%s event on monitor %s", ev.Type, ev.Monitor)
}
