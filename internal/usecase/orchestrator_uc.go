// File: internal/usecase/orchestrator_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"healthcare-storefront/internal/domain"
	"healthcare-storefront/internal/domain/model"
	"healthcare-storefront/internal/domain/ports/adapter"
	"healthcare-storefront/internal/infra/i18n"
	"healthcare-storefront/internal/infra/metrics"
)

type State string

const (
	StateIdle          State = "idle"
	StatePlanChosen    State = "plan_chosen"
	StateMethodPending State = "method_pending"
)

// Session is the explicit per-tab context threaded through every handler,
// replacing the old habit of hanging language, modal refs and the selected
// plan off one global controller.
type Session struct {
	Locale      string
	RTL         bool
	State       State
	Selection   *model.PlanSelection
	ActiveModal string
}

// AnalyticsTracker receives business events. Optional; a nil tracker is fine.
type AnalyticsTracker interface {
	PurchaseAttempt(planID, planName string, price float64, method string)
	PurchaseSuccess(txnID, planID, planName string, price float64, method string)
	DemoAccess(product string)
}

// CardForm is the card-entry modal's submission payload.
type CardForm struct {
	Name   string
	Email  string
	Number string
	Expiry string
	CVC    string
}

var (
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	cardNumberRe = regexp.MustCompile(`^[0-9]{12,19}$`)
	cvcRe        = regexp.MustCompile(`^[0-9]{3,4}$`)
)

// ValidateCardForm returns field-level messages for the inline form layer.
// An empty map means the form may be submitted.
func ValidateCardForm(f CardForm) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "This field is required"
	}
	if !emailRe.MatchString(f.Email) {
		errs["email"] = "Invalid format"
	}
	if !cardNumberRe.MatchString(strings.ReplaceAll(f.Number, " ", "")) {
		errs["number"] = "Invalid format"
	}
	if !cvcRe.MatchString(f.CVC) {
		errs["cvc"] = "Invalid format"
	}
	return errs
}

// Orchestrator is the payment-flow state machine:
//
//	Idle -> PlanChosen -> MethodPending -> {succeeded|failed}
//
// Dispatch is serialized by a mutex, the in-process stand-in for the single
// UI thread; backend round trips run in goroutines and re-enter through the
// same lock, so dismissing a modal while a call is in flight is safe and the
// late resolution must never panic nor resurrect a hidden modal.
type Orchestrator struct {
	catalog  *model.Catalog
	backend  adapter.PaymentBackend
	fe       adapter.Frontend
	notifier adapter.Notifier
	tr       *i18n.Translator
	tracker  AnalyticsTracker
	log      *zerolog.Logger
	clock    func() time.Time

	mu         sync.Mutex
	session    Session
	attempt    *model.PaymentAttempt
	processing bool
	wg         sync.WaitGroup
}

func NewOrchestrator(
	catalog *model.Catalog,
	backend adapter.PaymentBackend,
	fe adapter.Frontend,
	notifier adapter.Notifier,
	tr *i18n.Translator,
	logger *zerolog.Logger,
) *Orchestrator {
	l := logger.With().Str("component", "orchestrator").Logger()
	return &Orchestrator{
		catalog:  catalog,
		backend:  backend,
		fe:       fe,
		notifier: notifier,
		tr:       tr,
		log:      &l,
		clock:    time.Now,
		session:  Session{Locale: tr.Lang(), RTL: tr.RTL(), State: StateIdle},
	}
}

// SetTracker attaches an optional analytics tracker.
func (o *Orchestrator) SetTracker(t AnalyticsTracker) { o.tracker = t }

// SetClock overrides the wall clock; tests use a fake.
func (o *Orchestrator) SetClock(clock func() time.Time) { o.clock = clock }

// Session returns a snapshot of the current session context.
func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.session
	if s.Selection != nil {
		sel := *s.Selection
		s.Selection = &sel
	}
	return s
}

// Wait blocks until every outstanding backend round trip has resolved.
func (o *Orchestrator) Wait() { o.wg.Wait() }

// SelectPlan handles a purchase-control activation. Enterprise tiers never
// enter the payment flow: they route to the sales contact section and the
// machine stays Idle.
func (o *Orchestrator) SelectPlan(ctx context.Context, planID string, period model.BillingPeriod, triggerID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.catalog.ContactOnly(planID) {
		o.fe.ScrollToContact()
		o.notifier.Show(o.tr.T("enterprise_contact"), model.SeverityInfo)
		o.log.Info().Str("plan", planID).Msg("contact-only plan; redirected to sales")
		return nil
	}

	sel, err := model.NewPlanSelection(o.catalog, planID, period)
	if err != nil {
		return err
	}

	// Each purchase click overwrites the live selection wholesale.
	o.session.Selection = &sel
	o.session.State = StatePlanChosen
	o.session.ActiveModal = adapter.ModalPaymentMethods
	o.fe.OpenModal(adapter.ModalPaymentMethods, triggerID)
	o.log.Debug().Str("plan", sel.PlanID).Str("period", string(sel.BillingPeriod)).Msg("plan selected")
	return nil
}

// ChooseMethod handles a payment-method click inside the selection modal.
// The selection modal always closes before the backend call can resolve.
func (o *Orchestrator) ChooseMethod(ctx context.Context, method model.PaymentMethod) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !method.Valid() {
		return domain.ErrInvalidArgument
	}
	if o.session.State != StatePlanChosen || o.session.Selection == nil {
		return domain.ErrNoPlanSelected
	}

	o.fe.CloseModal(adapter.ModalPaymentMethods)

	if method == model.MethodCard {
		o.session.ActiveModal = adapter.ModalCardEntry
		o.fe.OpenModal(adapter.ModalCardEntry, "")
		return nil
	}

	o.session.ActiveModal = ""
	o.notifier.Show(o.tr.T("redirecting_to", methodLabel(method)), model.SeverityInfo)
	return o.startAttemptLocked(ctx, method)
}

// SubmitCard handles the card-entry modal's submit action. Validation errors
// stay in the form layer; a pending attempt for the same selection refuses
// re-submission.
func (o *Orchestrator) SubmitCard(ctx context.Context, form CardForm) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session.Selection == nil {
		return domain.ErrNoPlanSelected
	}
	if o.processing {
		return domain.ErrAttemptPending
	}
	if errs := ValidateCardForm(form); len(errs) > 0 {
		fields := make([]string, 0, len(errs))
		for f := range errs {
			fields = append(fields, f)
		}
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(fields, ", "))
	}

	o.notifier.Show(o.tr.T("card_processing"), model.SeverityInfo)
	return o.startAttemptLocked(ctx, model.MethodCard)
}

// DismissModal handles explicit close, escape, and click-outside. While an
// attempt is pending the modal only hides; the in-flight call is not
// cancelled and its resolution still runs (against guarded references).
func (o *Orchestrator) DismissModal(modalID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.fe.CloseModal(modalID)
	if o.session.ActiveModal == modalID {
		o.session.ActiveModal = ""
	}
	if o.session.State == StateMethodPending {
		return
	}
	o.session.State = StateIdle
	o.session.Selection = nil
}

// startAttemptLocked creates the attempt and launches the simulated round
// trip. Caller holds the lock.
func (o *Orchestrator) startAttemptLocked(ctx context.Context, method model.PaymentMethod) error {
	att, err := model.NewPaymentAttempt(method, *o.session.Selection, o.clock())
	if err != nil {
		return err
	}
	o.attempt = att
	o.processing = true
	o.session.State = StateMethodPending
	o.fe.SetLoading(true)
	if o.tracker != nil {
		o.tracker.PurchaseAttempt(att.Plan.PlanID, att.Plan.DisplayName, att.Plan.Price, string(method))
	}

	payload := attemptPayload(att)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		resp, err := o.backend.SimulateRequest(ctx, method.Endpoint(), payload)
		o.complete(att, resp, err)
	}()
	return nil
}

// complete applies the terminal transition and its side effects. It must be
// safe to run after the user dismissed the modal: every frontend mutation
// goes through guarded calls and nothing here reopens hidden UI.
func (o *Orchestrator) complete(att *model.PaymentAttempt, resp []byte, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if att.Terminal() {
		return
	}
	o.fe.SetLoading(false)

	if err == nil {
		err = declinedError(resp)
	}

	if err != nil {
		_ = att.Fail()
		metrics.IncPayment(string(att.Method), string(model.AttemptFailed))
		o.notifier.Show(o.tr.T("payment_failed", err.Error()), model.SeverityError)
		o.log.Warn().Err(err).Str("method", string(att.Method)).Str("plan", att.Plan.PlanID).Msg("payment attempt failed")
		if o.attempt == att {
			o.attempt = nil
			o.processing = false
			// The user may retry the same plan without re-selecting it.
			if o.session.Selection != nil {
				o.session.State = StatePlanChosen
			} else {
				o.session.State = StateIdle
			}
		}
		return
	}

	_ = att.Succeed()
	o.fe.CloseModal(adapter.ModalCardEntry)
	o.fe.CloseModal(adapter.ModalPaymentMethods)
	metrics.IncPayment(string(att.Method), string(model.AttemptSucceeded))
	o.notifier.Show(o.tr.T("payment_success", att.Plan.DisplayName), model.SeveritySuccess)
	o.log.Info().Str("method", string(att.Method)).Str("plan", att.Plan.PlanID).Msg("payment attempt succeeded")
	if o.tracker != nil {
		o.tracker.PurchaseSuccess(transactionID(resp), att.Plan.PlanID, att.Plan.DisplayName, att.Plan.Price, string(att.Method))
	}
	if url := paymentURL(resp); url != "" {
		o.fe.Redirect(url)
	}
	if o.attempt == att {
		o.attempt = nil
		o.processing = false
		o.session.ActiveModal = ""
		o.session.State = StateIdle
		o.session.Selection = nil
	}
}

// attemptPayload builds the request body for the method's endpoint. Card
// amounts travel in halalas, the local rails take whole SAR, and the generic
// subscription route takes the plan id.
func attemptPayload(att *model.PaymentAttempt) []byte {
	var body map[string]any
	switch att.Method {
	case model.MethodCard:
		body = map[string]any{
			"amount":   math.Round(att.Plan.Price * 100),
			"currency": "sar",
		}
	case model.MethodMada, model.MethodSTCPay, model.MethodSadad:
		body = map[string]any{
			"amount":   att.Plan.Price,
			"currency": "SAR",
		}
	default:
		body = map[string]any{"plan_id": att.Plan.PlanID}
	}
	raw, _ := json.Marshal(body)
	return raw
}

// declinedError maps an error-shaped response body to ErrPaymentDeclined.
func declinedError(resp []byte) error {
	var envelope struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(resp, &envelope) != nil {
		return nil
	}
	if envelope.Success != nil && !*envelope.Success {
		if envelope.Error != "" {
			return fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, envelope.Error)
		}
		return domain.ErrPaymentDeclined
	}
	return nil
}

// paymentURL extracts the provider's hosted payment page, when one exists.
func paymentURL(resp []byte) string {
	var body struct {
		PaymentURL string `json:"payment_url"`
	}
	if json.Unmarshal(resp, &body) != nil {
		return ""
	}
	return body.PaymentURL
}

// transactionID extracts whichever opaque id the provider response carries.
func transactionID(resp []byte) string {
	var ids struct {
		PaymentIntentID string `json:"payment_intent_id"`
		PaymentID       string `json:"payment_id"`
		SubscriptionID  string `json:"subscription_id"`
		BillNumber      int64  `json:"bill_number"`
	}
	if json.Unmarshal(resp, &ids) != nil {
		return ""
	}
	switch {
	case ids.PaymentIntentID != "":
		return ids.PaymentIntentID
	case ids.PaymentID != "":
		return ids.PaymentID
	case ids.SubscriptionID != "":
		return ids.SubscriptionID
	case ids.BillNumber != 0:
		return fmt.Sprint(ids.BillNumber)
	}
	return ""
}

func methodLabel(m model.PaymentMethod) string {
	switch m {
	case model.MethodMada:
		return "mada"
	case model.MethodSTCPay:
		return "STC Pay"
	case model.MethodSadad:
		return "SADAD"
	case model.MethodPayPal:
		return "PayPal"
	case model.MethodBankTransfer:
		return "bank transfer"
	default:
		return string(m)
	}
}

// IsPending reports whether a payment attempt is currently in flight.
func (o *Orchestrator) IsPending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.processing
}
