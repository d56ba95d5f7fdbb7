// Package frontend provides a headless implementation of the UI port. It
// models the document as a set of element ids plus per-modal open/trigger
// state, which is enough to honor the focus-restoration and guarded-mutation
// contracts without a real render tree.
package frontend

import (
	"sync"

	"github.com/rs/zerolog"

	"healthcare-storefront/internal/domain/ports/adapter"
)

var _ adapter.Frontend = (*Headless)(nil)

type modalState struct {
	open    bool
	trigger string
}

// Headless tracks modal sessions, loading state, focus, per-product trial
// markers and countdown texts. Every mutation tolerates absent elements.
type Headless struct {
	log *zerolog.Logger

	mu         sync.Mutex
	document   map[string]bool
	modals     map[string]*modalState
	focus      string
	loading    bool
	scrolled   bool
	redirects  []string
	trials     map[string]string
	countdowns map[string]string
}

func NewHeadless(logger *zerolog.Logger) *Headless {
	l := logger.With().Str("component", "frontend").Logger()
	return &Headless{
		log:        &l,
		document:   map[string]bool{},
		modals:     map[string]*modalState{},
		trials:     map[string]string{},
		countdowns: map[string]string{},
	}
}

// AddElement registers an element id in the document.
func (h *Headless) AddElement(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.document[id] = true
}

// RemoveElement drops an element id, as a DOM mutation would.
func (h *Headless) RemoveElement(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.document, id)
	if h.focus == id {
		h.focus = ""
	}
}

// OpenModal shows a modal and remembers the trigger so focus can be restored
// on close. Opening an already-open modal just refreshes the trigger.
func (h *Headless) OpenModal(modalID, triggerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.modals[modalID]
	if !ok {
		m = &modalState{}
		h.modals[modalID] = m
	}
	m.open = true
	m.trigger = triggerID
	h.focus = modalID
}

// CloseModal hides a modal and returns focus to its trigger, but only when
// the trigger element is still in the document. Closing an unknown or
// already-closed modal is a no-op.
func (h *Headless) CloseModal(modalID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.modals[modalID]
	if !ok || !m.open {
		return
	}
	m.open = false
	if h.focus == modalID {
		h.focus = ""
	}
	if m.trigger != "" && h.document[m.trigger] {
		h.focus = m.trigger
	}
}

// ModalOpen reports whether the modal is currently shown.
func (h *Headless) ModalOpen(modalID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.modals[modalID]
	return ok && m.open
}

// SetLoading toggles the global busy indicator.
func (h *Headless) SetLoading(on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loading = on
}

// Loading reports the busy indicator state.
func (h *Headless) Loading() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loading
}

// ScrollToContact records a jump to the sales contact section.
func (h *Headless) ScrollToContact() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scrolled = true
}

// ScrolledToContact reports whether the contact section was targeted.
func (h *Headless) ScrolledToContact() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scrolled
}

// Redirect records an outbound navigation.
func (h *Headless) Redirect(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.redirects = append(h.redirects, url)
	h.log.Debug().Str("url", url).Msg("redirect")
}

// Redirects returns recorded navigations in order.
func (h *Headless) Redirects() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.redirects))
	copy(out, h.redirects)
	return out
}

// MarkTrialActive flags the product's trial control as active and rebinds it
// to the target URL.
func (h *Headless) MarkTrialActive(product, targetURL string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.trials[product] = targetURL
}

// TrialTarget returns the URL a product's active trial points at, if any.
func (h *Headless) TrialTarget(product string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	url, ok := h.trials[product]
	return url, ok
}

// UpdateCountdown replaces the product's countdown text.
func (h *Headless) UpdateCountdown(product, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.countdowns[product] = text
}

// Countdown returns the product's last rendered countdown text.
func (h *Headless) Countdown(product string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.countdowns[product]
}

// Focused returns the element id that currently holds focus.
func (h *Headless) Focused() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focus
}
