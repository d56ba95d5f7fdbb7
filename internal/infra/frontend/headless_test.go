package frontend_test

import (
	"testing"

	"healthcare-storefront/internal/infra/frontend"
	"healthcare-storefront/internal/infra/logging"
)

func TestModalFocusRestoration(t *testing.T) {
	t.Run("focus returns to a surviving trigger", func(t *testing.T) {
		fe := frontend.NewHeadless(logging.Nop())
		fe.AddElement("buy-btn")

		fe.OpenModal("payment-modal", "buy-btn")
		if fe.Focused() != "payment-modal" {
			t.Errorf("focus = %q, want payment-modal", fe.Focused())
		}

		fe.CloseModal("payment-modal")
		if fe.Focused() != "buy-btn" {
			t.Errorf("focus = %q, want buy-btn", fe.Focused())
		}
	})

	t.Run("removed trigger leaves focus unset", func(t *testing.T) {
		fe := frontend.NewHeadless(logging.Nop())
		fe.AddElement("buy-btn")

		fe.OpenModal("payment-modal", "buy-btn")
		fe.RemoveElement("buy-btn")
		fe.CloseModal("payment-modal")

		if fe.Focused() != "" {
			t.Errorf("focus = %q, want empty after trigger removal", fe.Focused())
		}
	})
}

func TestGuardedMutations(t *testing.T) {
	fe := frontend.NewHeadless(logging.Nop())

	// None of these may panic against an empty document.
	fe.CloseModal("never-opened")
	fe.RemoveElement("ghost")
	fe.UpdateCountdown("ghost-product", "01:00:00")
	fe.MarkTrialActive("ghost-product", "https://x")

	if fe.ModalOpen("never-opened") {
		t.Error("unopened modal must read as closed")
	}

	// Double close is idempotent.
	fe.OpenModal("payment-modal", "")
	fe.CloseModal("payment-modal")
	fe.CloseModal("payment-modal")
	if fe.ModalOpen("payment-modal") {
		t.Error("modal must stay closed")
	}
}

func TestTrialAndCountdownState(t *testing.T) {
	fe := frontend.NewHeadless(logging.Nop())

	fe.MarkTrialActive("telehealth", "https://demo.example.com")
	if url, ok := fe.TrialTarget("telehealth"); !ok || url != "https://demo.example.com" {
		t.Errorf("trial target = %q, %v", url, ok)
	}

	fe.UpdateCountdown("telehealth", "23:59:59")
	if got := fe.Countdown("telehealth"); got != "23:59:59" {
		t.Errorf("countdown = %q", got)
	}

	fe.Redirect("https://pay.example.com")
	if got := fe.Redirects(); len(got) != 1 || got[0] != "https://pay.example.com" {
		t.Errorf("redirects = %v", got)
	}
}
