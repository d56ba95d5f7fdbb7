package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"healthcare-storefront/internal/infra/ledger"
	"healthcare-storefront/internal/infra/metrics"
)

// ExpiryWorker periodically removes expired demo grants from the ledger.
type ExpiryWorker struct {
	interval time.Duration
	ledger   *ledger.Ledger
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, lg *ledger.Ledger, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		ledger:   lg,
		log:      &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n := w.ledger.SweepExpired(ctx, nil)
			if n > 0 {
				metrics.IncDemoGrantsExpired(n)
				w.log.Info().Int("count", n).Msg("expired demo grants removed")
			}
		}
	}
}
