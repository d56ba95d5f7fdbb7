// File: internal/usecase/demo_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"healthcare-storefront/internal/domain/model"
	"healthcare-storefront/internal/domain/ports/adapter"
	"healthcare-storefront/internal/infra/i18n"
	"healthcare-storefront/internal/infra/ledger"
	"healthcare-storefront/internal/infra/metrics"
)

// DemoUseCase drives the trial-access flow: a simulated grant call, a 24h
// ledger entry, and a once-per-second countdown rendered until the modal is
// torn down or the grant runs out.
type DemoUseCase struct {
	backend  adapter.PaymentBackend
	ledger   *ledger.Ledger
	fe       adapter.Frontend
	notifier adapter.Notifier
	tr       *i18n.Translator
	tracker  AnalyticsTracker
	log      *zerolog.Logger
	clock    func() time.Time
	tick     time.Duration

	mu         sync.Mutex
	countdowns map[string]chan struct{}
	wg         sync.WaitGroup
}

func NewDemoUseCase(
	backend adapter.PaymentBackend,
	lg *ledger.Ledger,
	fe adapter.Frontend,
	notifier adapter.Notifier,
	tr *i18n.Translator,
	logger *zerolog.Logger,
) *DemoUseCase {
	l := logger.With().Str("component", "demo").Logger()
	return &DemoUseCase{
		backend:    backend,
		ledger:     lg,
		fe:         fe,
		notifier:   notifier,
		tr:         tr,
		log:        &l,
		clock:      time.Now,
		tick:       time.Second,
		countdowns: map[string]chan struct{}{},
	}
}

// SetTracker attaches an optional analytics tracker.
func (u *DemoUseCase) SetTracker(t AnalyticsTracker) { u.tracker = t }

// SetClock overrides the wall clock; tests use a fake.
func (u *DemoUseCase) SetClock(clock func() time.Time) { u.clock = clock }

// SetTickInterval shortens the countdown cadence for tests.
func (u *DemoUseCase) SetTickInterval(d time.Duration) { u.tick = d }

// Wait blocks until all in-flight grant calls and countdown loops are done.
func (u *DemoUseCase) Wait() { u.wg.Wait() }

// RequestTrial runs the simulated grant round trip and, on success, persists
// the grant, opens the countdown modal and marks the product's trial control
// active.
func (u *DemoUseCase) RequestTrial(ctx context.Context, product, targetURL string) {
	u.fe.SetLoading(true)

	payload, _ := json.Marshal(map[string]string{"product_url": targetURL})
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		_, err := u.backend.SimulateRequest(ctx, "/api/demo/grant-access", payload)
		u.finishTrial(ctx, product, targetURL, err)
	}()
}

func (u *DemoUseCase) finishTrial(ctx context.Context, product, targetURL string, err error) {
	u.fe.SetLoading(false)

	if err != nil {
		u.notifier.Show(u.tr.T("payment_failed", err.Error()), model.SeverityError)
		u.log.Warn().Err(err).Str("product", product).Msg("demo grant request failed")
		return
	}

	grant, err := u.ledger.Grant(ctx, product, targetURL)
	if err != nil {
		u.log.Warn().Err(err).Str("product", product).Msg("demo grant rejected")
		return
	}

	metrics.IncDemoGrant()
	if u.tracker != nil {
		u.tracker.DemoAccess(product)
	}

	u.fe.MarkTrialActive(product, targetURL)
	u.fe.OpenModal(adapter.ModalDemoCountdown, "")
	u.notifier.Show(u.tr.T("trial_granted", product), model.SeveritySuccess)
	u.StartCountdown(grant)
}

// StartCountdown renders the grant's remaining time once immediately and then
// every tick until the countdown is stopped or the grant expires. A second
// grant for the same product replaces the running loop.
func (u *DemoUseCase) StartCountdown(g *model.DemoGrant) {
	u.mu.Lock()
	if prev, ok := u.countdowns[g.Product]; ok {
		close(prev)
	}
	stop := make(chan struct{})
	u.countdowns[g.Product] = stop
	u.mu.Unlock()

	u.fe.UpdateCountdown(g.Product, g.Countdown(u.clock()))

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		ticker := time.NewTicker(u.tick)
		defer ticker.Stop()
		// Hard cap: even if ticks are starved, the loop cannot outlive
		// the grant.
		hard := time.NewTimer(g.Remaining(u.clock()))
		defer hard.Stop()

		for {
			select {
			case <-stop:
				return
			case <-hard.C:
				u.fe.UpdateCountdown(g.Product, model.CountdownExpired)
				u.clearCountdown(g.Product, stop)
				return
			case <-ticker.C:
				now := u.clock()
				u.fe.UpdateCountdown(g.Product, g.Countdown(now))
				if g.IsExpired(now) {
					u.clearCountdown(g.Product, stop)
					return
				}
			}
		}
	}()
}

// StopCountdown tears down the product's ticker loop, typically when the
// countdown modal is removed. Stopping an unknown product is a no-op.
func (u *DemoUseCase) StopCountdown(product string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if stop, ok := u.countdowns[product]; ok {
		close(stop)
		delete(u.countdowns, product)
	}
}

// clearCountdown removes the loop's own entry, but only if it still owns it:
// a replacement loop may have taken the slot.
func (u *DemoUseCase) clearCountdown(product string, own chan struct{}) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if current, ok := u.countdowns[product]; ok && current == own {
		delete(u.countdowns, product)
	}
}

// RestoreOnLoad sweeps persisted grants, drops the expired ones and restores
// "trial active" controls for the survivors. Returns the number of grants
// removed.
func (u *DemoUseCase) RestoreOnLoad(ctx context.Context) int {
	removed := u.ledger.SweepExpired(ctx, func(g *model.DemoGrant) {
		u.fe.MarkTrialActive(g.Product, g.URL)
		u.log.Debug().Str("product", g.Product).Time("expires_at", g.ExpiresAt).Msg("active demo grant restored")
	})
	if removed > 0 {
		metrics.IncDemoGrantsExpired(removed)
	}
	return removed
}
