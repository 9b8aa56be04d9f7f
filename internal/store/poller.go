package store

import (
	"context"
	"sync"
	"time"

	"github.com/wardstockhq/wardstock-backend/pkg/logger"
)

// Poller refreshes the product cache on a fixed interval. Ticks while the
// consumer is hidden are skipped; becoming visible again fires an
// immediate refresh instead of waiting out the interval. Failures are
// logged and swallowed; a background refresh never surfaces an error.
type Poller struct {
	store    *Store
	interval time.Duration
	logg     *logger.Logger

	mu      sync.Mutex
	visible bool
	wake    chan struct{}
}

// NewPoller builds a Poller. The consumer starts visible.
func NewPoller(store *Store, interval time.Duration, logg *logger.Logger) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		store:    store,
		interval: interval,
		logg:     logg,
		visible:  true,
		wake:     make(chan struct{}, 1),
	}
}

// SetVisible records consumer visibility. The hidden→visible edge queues
// an immediate refresh.
func (p *Poller) SetVisible(visible bool) {
	p.mu.Lock()
	wasVisible := p.visible
	p.visible = visible
	p.mu.Unlock()

	if visible && !wasVisible {
		select {
		case p.wake <- struct{}{}:
		default:
		}
	}
}

// Visible reports the current visibility flag.
func (p *Poller) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Run drives the refresh loop until ctx is canceled. No fetch is issued
// after cancellation.
func (p *Poller) Run(ctx context.Context) {
	p.logg.Info(ctx, "poller started")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logg.Info(ctx, "poller stopped")
			return
		case <-p.wake:
			p.refresh(ctx)
		case <-ticker.C:
			if !p.Visible() {
				continue
			}
			p.refresh(ctx)
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := p.store.RefreshProducts(ctx); err != nil {
		p.logg.Warn(p.logg.WithField(ctx, "interval", p.interval.String()), "background refresh failed")
	}
}
