// internal/fieldbus/runner.go
package fieldbus

import (
	"context"
	"time"
)

// Run starts the ticker loop. One goroutine per unit. No overlap, no
// retries beyond the next tick.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Close()
			return
		case <-ticker.C:
			if err := p.PollOnce(); err != nil {
				p.log.WithError(err).Warn("poll cycle failed")
			}
		}
	}
}
