package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/arc-self/amon/packages/amon-core/natsclient"
)

const (
	durableName  = "master-event-dispatcher"
	fetchBatch   = 10
	fetchTimeout = 5 * time.Second
)

// Ledger is the event-dedup window backing POST /events idempotency on
// event.uuid (spec.md §4.E: "Master's POST /events idempotent on
// event.uuid; replays within dedup window yield same outcome").
type Ledger interface {
	// SeenRecently records uuid if not already present within the dedup
	// window and reports whether it was already present.
	SeenRecently(ctx context.Context, uuid string) (alreadySeen bool, err error)
}

// Consumer is the durable JetStream pull consumer draining AMON_EVENTS.>:
// a Fetch/MaxWait polling loop with Ack/Nak/Term discipline, feeding this
// domain's monitor->contact->plugin fan-out.
type Consumer struct {
	nc         *natsclient.Client
	dispatcher *Dispatcher
	ledger     Ledger
	logger     *zap.Logger
}

func NewConsumer(nc *natsclient.Client, d *Dispatcher, ledger Ledger, logger *zap.Logger) *Consumer {
	return &Consumer{nc: nc, dispatcher: d, ledger: ledger, logger: logger}
}

// Start subscribes to AMON_EVENTS.> as a durable pull consumer and
// processes messages until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	sub, err := c.nc.JS.PullSubscribe(
		natsclient.SubjectEvents,
		durableName,
		nats.AckExplicit(),
		nats.ManualAck(),
	)
	if err != nil {
		return err
	}

	c.logger.Info("event dispatcher consumer started",
		zap.String("subject", natsclient.SubjectEvents),
		zap.String("durable", durableName),
	)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("event dispatcher consumer stopping")
				return
			default:
			}

			msgs, err := sub.Fetch(fetchBatch, nats.MaxWait(fetchTimeout))
			if err != nil {
				if err == nats.ErrTimeout {
					continue
				}
				c.logger.Error("fetch error", zap.Error(err))
				continue
			}

			for _, msg := range msgs {
				c.processMessage(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *Consumer) processMessage(ctx context.Context, msg *nats.Msg) {
	var ev Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		c.logger.Warn("malformed event payload (terminating)", zap.Error(err))
		msg.Term()
		return
	}

	if ev.V != SupportedVersion {
		c.logger.Warn("unsupported event version (terminating)", zap.Int("v", ev.V))
		msg.Term()
		return
	}

	seen, err := c.ledger.SeenRecently(ctx, ev.UUID)
	if err != nil {
		c.logger.Error("dedup ledger check failed", zap.Error(err))
		msg.Nak()
		return
	}
	if seen {
		msg.Ack()
		return
	}

	if err := c.dispatcher.Dispatch(ctx, ev); err != nil {
		c.logger.Error("event dispatch failed", zap.String("event", ev.UUID), zap.Error(err))
		msg.Nak()
		return
	}

	msg.Ack()
}
