package adapter

import "healthcare-storefront/internal/domain/model"

// Modal identifiers used by the payment flow.
const (
	ModalPaymentMethods = "payment-modal"
	ModalCardEntry      = "card-entry-modal"
	ModalDemoCountdown  = "demo-countdown-modal"
)

// Frontend is the narrow rendering boundary the orchestrator drives. Every
// implementation must tolerate mutations against elements that are already
// gone: closing a closed modal, updating a removed countdown, clearing an
// absent loading overlay are all no-ops, never errors.
type Frontend interface {
	// OpenModal shows a modal and records the triggering control so focus can
	// be restored on close. triggerID may be empty.
	OpenModal(modalID, triggerID string)
	// CloseModal hides a modal and returns focus to its trigger if that
	// element still exists.
	CloseModal(modalID string)
	// ModalOpen reports whether a modal is currently shown.
	ModalOpen(modalID string) bool
	// SetLoading toggles the global loading overlay.
	SetLoading(on bool)
	// ScrollToContact scrolls the page to the sales contact section.
	ScrollToContact()
	// Redirect navigates the page to an external payment URL.
	Redirect(url string)
	// MarkTrialActive flips a product's trial control into its "active" state
	// and rebinds it to open targetURL directly.
	MarkTrialActive(product, targetURL string)
	// UpdateCountdown rewrites the live countdown text inside the demo modal.
	UpdateCountdown(product, text string)
}

// Notifier queues transient, auto-dismissing status messages.
type Notifier interface {
	Show(message string, severity model.Severity)
}
