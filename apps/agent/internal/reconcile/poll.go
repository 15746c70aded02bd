package reconcile

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Poller periodically HEADs the relay's manifest endpoint for this agent's
// target; when Content-MD5 changes it GETs the body and hands it to the
// Reconciler. This is the agent-side half of spec.md §4.E's contract: it
// only requires "periodically HEAD, GET on change, reconcile" — the poll
// cadence and HTTP client here are this implementation's own choice.
type Poller struct {
	relayURL           string
	targetType, target string
	interval           time.Duration
	http               *http.Client
	reconciler         *Reconciler
	logger             *zap.Logger

	lastHash string
}

func NewPoller(relayURL, targetType, target string, interval time.Duration, reconciler *Reconciler, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller{
		relayURL:   relayURL,
		targetType: targetType,
		target:     target,
		interval:   interval,
		http:       &http.Client{Timeout: 10 * time.Second},
		reconciler: reconciler,
		logger:     logger,
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("agent poller started", zap.Duration("interval", p.interval))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("agent poller stopping")
			p.reconciler.Shutdown()
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) path() string {
	return p.relayURL + "/agentprobes/" + p.targetType + "/" + p.target
}

func (p *Poller) tick(ctx context.Context) {
	hash, err := p.head(ctx)
	if err != nil {
		p.logger.Warn("manifest HEAD failed, keeping last-known manifest", zap.Error(err))
		return
	}
	if hash == p.lastHash {
		return
	}

	body, err := p.get(ctx)
	if err != nil {
		p.logger.Warn("manifest GET failed, keeping last-known manifest", zap.Error(err))
		return
	}

	specs, err := ParseManifest(body)
	if err != nil {
		p.logger.Error("malformed manifest, keeping last-known manifest", zap.Error(err))
		return
	}

	p.reconciler.Reconcile(specs)
	p.lastHash = hash
}

func (p *Poller) head(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.path(), nil)
	if err != nil {
		return "", err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	return resp.Header.Get("Content-MD5"), nil
}

func (p *Poller) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.path(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
