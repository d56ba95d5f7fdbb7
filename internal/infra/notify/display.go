package notify

import (
	"github.com/rs/zerolog"

	"healthcare-storefront/internal/domain/model"
)

var _ Display = (*LogDisplay)(nil)

// LogDisplay writes notices to the structured log. Used by headless binaries
// that have no render surface.
type LogDisplay struct {
	log *zerolog.Logger
}

func NewLogDisplay(logger *zerolog.Logger) *LogDisplay {
	l := logger.With().Str("component", "notice-display").Logger()
	return &LogDisplay{log: &l}
}

func (d *LogDisplay) Render(n model.Notice) {
	d.log.Info().Str("severity", string(n.Severity)).Str("notice_id", n.ID).Msg(n.Message)
}

func (d *LogDisplay) Remove(noticeID string) {
	d.log.Debug().Str("notice_id", noticeID).Msg("notice dismissed")
}
