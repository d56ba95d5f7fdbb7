// Package notify renders transient, auto-dismissing status messages.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"healthcare-storefront/internal/domain/model"
	"healthcare-storefront/internal/domain/ports/adapter"
	"healthcare-storefront/internal/infra/metrics"
)

// Display is where notices are rendered. Remove must tolerate ids that were
// already removed; the notifier may race its auto-dismiss timer against an
// early click-to-dismiss.
type Display interface {
	Render(n model.Notice)
	Remove(noticeID string)
}

var _ adapter.Notifier = (*Notifier)(nil)

// Notifier queues notices on a display and tears each one down after a fixed
// lifetime unless it was dismissed early.
type Notifier struct {
	display Display
	ttl     time.Duration
	clock   func() time.Time
	log     *zerolog.Logger

	mu     sync.Mutex
	active map[string]*time.Timer
}

func New(display Display, logger *zerolog.Logger) *Notifier {
	l := logger.With().Str("component", "notifier").Logger()
	return &Notifier{
		display: display,
		ttl:     model.NoticeTTL,
		clock:   time.Now,
		log:     &l,
		active:  map[string]*time.Timer{},
	}
}

// WithTTL overrides the auto-dismiss window; tests use short lifetimes.
func (n *Notifier) WithTTL(ttl time.Duration) *Notifier {
	n.ttl = ttl
	return n
}

// Show renders a notice and schedules its auto-dismissal.
func (n *Notifier) Show(message string, severity model.Severity) {
	notice := model.Notice{
		ID:       uuid.NewString(),
		Message:  message,
		Severity: severity,
		ShownAt:  n.clock(),
	}

	n.mu.Lock()
	n.active[notice.ID] = time.AfterFunc(n.ttl, func() { n.Dismiss(notice.ID) })
	n.mu.Unlock()

	n.display.Render(notice)
	metrics.IncNotification(string(severity))
	n.log.Debug().Str("severity", string(severity)).Msg(message)
}

// Dismiss removes a notice early. Dismissing an unknown or already-removed
// notice is a no-op, so the timer and a user click can both fire safely.
func (n *Notifier) Dismiss(noticeID string) {
	n.mu.Lock()
	timer, ok := n.active[noticeID]
	if ok {
		delete(n.active, noticeID)
	}
	n.mu.Unlock()

	if !ok {
		return
	}
	timer.Stop()
	n.display.Remove(noticeID)
}

// ActiveCount reports notices currently on screen.
func (n *Notifier) ActiveCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.active)
}
