package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"healthcare-storefront/internal/domain"
	"healthcare-storefront/internal/domain/model"
	"healthcare-storefront/internal/domain/ports/adapter"
	"healthcare-storefront/internal/infra/frontend"
	"healthcare-storefront/internal/infra/i18n"
	"healthcare-storefront/internal/infra/logging"
	"healthcare-storefront/internal/usecase"
)

//
// -------------------- test helpers --------------------
//

type fakeBackend struct {
	mu      sync.Mutex
	calls   []string
	release chan struct{} // when non-nil, calls block until it is closed
	resp    []byte
	err     error
}

func (f *fakeBackend) SimulateRequest(_ context.Context, endpoint string, _ []byte) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, endpoint)
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	return f.resp, f.err
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	sevs     []model.Severity
}

func (n *fakeNotifier) Show(message string, severity model.Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	n.sevs = append(n.sevs, severity)
}

func (n *fakeNotifier) lastSeverity() model.Severity {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sevs) == 0 {
		return ""
	}
	return n.sevs[len(n.sevs)-1]
}

func (n *fakeNotifier) contains(substr string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, m := range n.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func newTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	return tr
}

func newOrchestrator(t *testing.T, backend *fakeBackend) (*usecase.Orchestrator, *frontend.Headless, *fakeNotifier) {
	t.Helper()
	fe := frontend.NewHeadless(logging.Nop())
	notifier := &fakeNotifier{}
	orch := usecase.NewOrchestrator(model.DefaultCatalog(), backend, fe, notifier, newTranslator(t), logging.Nop())
	return orch, fe, notifier
}

//
// -------------------- tests --------------------
//

func TestSelectPlan(t *testing.T) {
	ctx := context.Background()

	t.Run("opens selection modal and records the plan", func(t *testing.T) {
		orch, fe, _ := newOrchestrator(t, &fakeBackend{})
		fe.AddElement("basic-btn")

		if err := orch.SelectPlan(ctx, "basic", model.BillingMonthly, "basic-btn"); err != nil {
			t.Fatalf("SelectPlan: %v", err)
		}
		if !fe.ModalOpen(adapter.ModalPaymentMethods) {
			t.Error("selection modal should be open")
		}
		s := orch.Session()
		if s.State != usecase.StatePlanChosen {
			t.Errorf("state = %s, want %s", s.State, usecase.StatePlanChosen)
		}
		if s.Selection == nil || s.Selection.PlanID != "basic" {
			t.Errorf("selection = %+v", s.Selection)
		}
	})

	t.Run("second click overwrites the selection", func(t *testing.T) {
		orch, _, _ := newOrchestrator(t, &fakeBackend{})
		_ = orch.SelectPlan(ctx, "basic", model.BillingMonthly, "")
		_ = orch.SelectPlan(ctx, "professional", model.BillingAnnual, "")

		s := orch.Session()
		if s.Selection.PlanID != "professional" || s.Selection.BillingPeriod != model.BillingAnnual {
			t.Errorf("selection not overwritten: %+v", s.Selection)
		}
	})

	t.Run("enterprise routes to sales and never opens the modal", func(t *testing.T) {
		backend := &fakeBackend{}
		orch, fe, _ := newOrchestrator(t, backend)

		if err := orch.SelectPlan(ctx, "enterprise", model.BillingMonthly, ""); err != nil {
			t.Fatalf("SelectPlan: %v", err)
		}
		if fe.ModalOpen(adapter.ModalPaymentMethods) {
			t.Error("enterprise must not open the payment modal")
		}
		if !fe.ScrolledToContact() {
			t.Error("enterprise must scroll to the contact section")
		}
		s := orch.Session()
		if s.State != usecase.StateIdle || s.Selection != nil {
			t.Errorf("enterprise must leave the machine idle, got state=%s selection=%+v", s.State, s.Selection)
		}
		if backend.callCount() != 0 {
			t.Error("enterprise must not touch the backend")
		}
	})
}

func TestChooseMethod(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected without a selected plan", func(t *testing.T) {
		orch, _, _ := newOrchestrator(t, &fakeBackend{})
		if err := orch.ChooseMethod(ctx, model.MethodMada); !errors.Is(err, domain.ErrNoPlanSelected) {
			t.Errorf("err = %v, want ErrNoPlanSelected", err)
		}
	})

	t.Run("selection modal closes before the backend resolves", func(t *testing.T) {
		backend := &fakeBackend{
			release: make(chan struct{}),
			resp:    []byte(`{"success":true,"payment_id":"mada_abc","payment_url":"https://payment.mada.com.sa/pay/x"}`),
		}
		orch, fe, notifier := newOrchestrator(t, backend)
		_ = orch.SelectPlan(ctx, "basic", model.BillingMonthly, "")

		if err := orch.ChooseMethod(ctx, model.MethodMada); err != nil {
			t.Fatalf("ChooseMethod: %v", err)
		}
		// The call is still blocked, yet the modal is already gone.
		if fe.ModalOpen(adapter.ModalPaymentMethods) {
			t.Error("selection modal must close before the backend call resolves")
		}
		if s := orch.Session(); s.State != usecase.StateMethodPending {
			t.Errorf("state = %s, want %s", s.State, usecase.StateMethodPending)
		}
		if !fe.Loading() {
			t.Error("loading indicator should be on while pending")
		}

		close(backend.release)
		orch.Wait()

		if got := orch.Session().State; got != usecase.StateIdle {
			t.Errorf("state after success = %s, want %s", got, usecase.StateIdle)
		}
		if fe.Loading() {
			t.Error("loading indicator should be off after resolution")
		}
		if notifier.lastSeverity() != model.SeveritySuccess {
			t.Errorf("last severity = %s, want success", notifier.lastSeverity())
		}
		if !notifier.contains("Basic Plan") {
			t.Error("success notification must name the plan")
		}
		if got := fe.Redirects(); len(got) != 1 || got[0] != "https://payment.mada.com.sa/pay/x" {
			t.Errorf("redirects = %v, want the provider payment page", got)
		}
	})

	t.Run("card opens the entry modal without calling the backend", func(t *testing.T) {
		backend := &fakeBackend{}
		orch, fe, _ := newOrchestrator(t, backend)
		_ = orch.SelectPlan(ctx, "professional", model.BillingMonthly, "")

		if err := orch.ChooseMethod(ctx, model.MethodCard); err != nil {
			t.Fatalf("ChooseMethod: %v", err)
		}
		if fe.ModalOpen(adapter.ModalPaymentMethods) {
			t.Error("selection modal should be closed")
		}
		if !fe.ModalOpen(adapter.ModalCardEntry) {
			t.Error("card entry modal should be open")
		}
		if backend.callCount() != 0 {
			t.Error("card selection alone must not call the backend")
		}
	})

	t.Run("failure returns the machine to plan chosen", func(t *testing.T) {
		backend := &fakeBackend{err: errors.New("network down")}
		orch, _, notifier := newOrchestrator(t, backend)
		_ = orch.SelectPlan(ctx, "basic", model.BillingMonthly, "")
		_ = orch.ChooseMethod(ctx, model.MethodSTCPay)
		orch.Wait()

		s := orch.Session()
		if s.State != usecase.StatePlanChosen {
			t.Errorf("state after failure = %s, want %s", s.State, usecase.StatePlanChosen)
		}
		if s.Selection == nil {
			t.Error("selection must survive a failed attempt so the user can retry")
		}
		if notifier.lastSeverity() != model.SeverityError {
			t.Errorf("last severity = %s, want error", notifier.lastSeverity())
		}
	})

	t.Run("declined response body fails the attempt", func(t *testing.T) {
		backend := &fakeBackend{resp: []byte(`{"success":false,"error":"card declined"}`)}
		orch, _, notifier := newOrchestrator(t, backend)
		_ = orch.SelectPlan(ctx, "basic", model.BillingMonthly, "")
		_ = orch.ChooseMethod(ctx, model.MethodMada)
		orch.Wait()

		if got := orch.Session().State; got != usecase.StatePlanChosen {
			t.Errorf("state = %s, want %s", got, usecase.StatePlanChosen)
		}
		if !notifier.contains("card declined") {
			t.Error("failure notification must carry the decline reason")
		}
	})
}

func TestSubmitCard(t *testing.T) {
	ctx := context.Background()
	validForm := usecase.CardForm{
		Name:   "Test User",
		Email:  "test@example.com",
		Number: "4242424242424242",
		Expiry: "12/30",
		CVC:    "123",
	}

	t.Run("invalid form stays in the form layer", func(t *testing.T) {
		backend := &fakeBackend{}
		orch, _, _ := newOrchestrator(t, backend)
		_ = orch.SelectPlan(ctx, "basic", model.BillingMonthly, "")
		_ = orch.ChooseMethod(ctx, model.MethodCard)

		bad := validForm
		bad.Email = "not-an-email"
		if err := orch.SubmitCard(ctx, bad); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("err = %v, want ErrValidation", err)
		}
		if backend.callCount() != 0 {
			t.Error("invalid form must not reach the backend")
		}
		if got := orch.Session().State; got != usecase.StatePlanChosen {
			t.Errorf("state = %s, want %s", got, usecase.StatePlanChosen)
		}
	})

	t.Run("double submit is refused while pending", func(t *testing.T) {
		backend := &fakeBackend{
			release: make(chan struct{}),
			resp:    []byte(`{"success":true,"payment_intent_id":"pi_x"}`),
		}
		orch, fe, _ := newOrchestrator(t, backend)
		_ = orch.SelectPlan(ctx, "basic", model.BillingMonthly, "")
		_ = orch.ChooseMethod(ctx, model.MethodCard)

		if err := orch.SubmitCard(ctx, validForm); err != nil {
			t.Fatalf("SubmitCard: %v", err)
		}
		if err := orch.SubmitCard(ctx, validForm); !errors.Is(err, domain.ErrAttemptPending) {
			t.Errorf("second submit err = %v, want ErrAttemptPending", err)
		}

		close(backend.release)
		orch.Wait()

		if backend.callCount() != 1 {
			t.Errorf("backend calls = %d, want 1", backend.callCount())
		}
		if fe.ModalOpen(adapter.ModalCardEntry) {
			t.Error("card modal should close on success")
		}
	})
}

func TestDismissModal(t *testing.T) {
	ctx := context.Background()

	t.Run("dismissal resets an idle-safe state", func(t *testing.T) {
		orch, fe, _ := newOrchestrator(t, &fakeBackend{})
		_ = orch.SelectPlan(ctx, "basic", model.BillingMonthly, "")

		orch.DismissModal(adapter.ModalPaymentMethods)
		if fe.ModalOpen(adapter.ModalPaymentMethods) {
			t.Error("modal should be closed")
		}
		s := orch.Session()
		if s.State != usecase.StateIdle || s.Selection != nil {
			t.Errorf("dismissal must reset to idle, got state=%s selection=%+v", s.State, s.Selection)
		}
	})

	t.Run("dismissal while pending only hides", func(t *testing.T) {
		backend := &fakeBackend{
			release: make(chan struct{}),
			resp:    []byte(`{"success":true,"payment_id":"mada_abc"}`),
		}
		orch, fe, notifier := newOrchestrator(t, backend)
		_ = orch.SelectPlan(ctx, "basic", model.BillingMonthly, "")
		_ = orch.ChooseMethod(ctx, model.MethodMada)

		orch.DismissModal(adapter.ModalPaymentMethods)
		if got := orch.Session().State; got != usecase.StateMethodPending {
			t.Errorf("state = %s, want %s", got, usecase.StateMethodPending)
		}

		// The late resolution must not panic nor reopen any modal.
		close(backend.release)
		orch.Wait()

		if fe.ModalOpen(adapter.ModalPaymentMethods) || fe.ModalOpen(adapter.ModalCardEntry) {
			t.Error("late resolution must not reopen a dismissed modal")
		}
		if notifier.lastSeverity() != model.SeveritySuccess {
			t.Errorf("last severity = %s, want success", notifier.lastSeverity())
		}
		if got := orch.Session().State; got != usecase.StateIdle {
			t.Errorf("state after late success = %s, want %s", got, usecase.StateIdle)
		}
	})
}

func TestValidateCardForm(t *testing.T) {
	errs := usecase.ValidateCardForm(usecase.CardForm{})
	for _, field := range []string{"name", "email", "number", "cvc"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected validation error for %q", field)
		}
	}

	ok := usecase.ValidateCardForm(usecase.CardForm{
		Name:   "Test User",
		Email:  "test@example.com",
		Number: "4242 4242 4242 4242",
		Expiry: "12/30",
		CVC:    "123",
	})
	if len(ok) != 0 {
		t.Errorf("valid form rejected: %v", ok)
	}
}
