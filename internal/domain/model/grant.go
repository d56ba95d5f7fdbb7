package model

import (
	"fmt"
	"time"

	"healthcare-storefront/internal/domain"
)

// DemoGrantTTL is the fixed lifetime of a trial access grant.
const DemoGrantTTL = 24 * time.Hour

// CountdownExpired is rendered once a grant's remaining time hits zero.
const CountdownExpired = "Expired"

// DemoGrant is a time-boxed trial access token for one product, persisted
// client-side. One active grant per product; a re-grant overwrites.
type DemoGrant struct {
	Product   string    `json:"product"`
	URL       string    `json:"url"`
	GrantedAt time.Time `json:"grantedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func NewDemoGrant(product, url string, now time.Time) (*DemoGrant, error) {
	if product == "" || url == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &DemoGrant{
		Product:   product,
		URL:       url,
		GrantedAt: now,
		ExpiresAt: now.Add(DemoGrantTTL),
	}, nil
}

// IsExpired reports whether wall-clock time has reached ExpiresAt.
func (g *DemoGrant) IsExpired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}

// Remaining returns the time left on the grant, floored at zero.
func (g *DemoGrant) Remaining(now time.Time) time.Duration {
	d := g.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Countdown renders the remaining lifetime as HH:MM:SS, or "Expired" once the
// grant has run out. Whole-second truncation means the last sub-second window
// shows 00:00:00 before flipping to Expired.
func (g *DemoGrant) Countdown(now time.Time) string {
	if g.IsExpired(now) {
		return CountdownExpired
	}
	return FormatCountdown(g.Remaining(now))
}

// FormatCountdown renders a duration as HH:MM:SS with truncation to whole
// seconds, matching the storefront's ticking display.
func FormatCountdown(d time.Duration) string {
	secs := int64(d / time.Second)
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
