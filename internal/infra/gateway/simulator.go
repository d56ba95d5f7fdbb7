// Package gateway fabricates payment-provider responses in place of a real
// backend. Nothing here mutates persisted state; each handler is a pure
// function of the decoded payload plus the clock.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"healthcare-storefront/internal/domain"
	"healthcare-storefront/internal/infra/metrics"
)

// DefaultLatency models the network round trip every simulated call pays
// before resolving. UI loading-state behavior depends on this window.
const DefaultLatency = 1500 * time.Millisecond

// Expiry windows per provider.
const (
	madaExpiry         = 15 * time.Minute
	sadadExpiry        = 7 * 24 * time.Hour
	subscriptionPeriod = 30 * 24 * time.Hour
	demoAccessExpiry   = 24 * time.Hour
)

// qrCodeSVG is the placeholder QR payload providers embed in their responses.
const qrCodeSVG = `data:image/svg+xml,<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100"><rect width="100" height="100" fill="white"/><text x="50" y="50" text-anchor="middle" fill="black">QR</text></svg>`

// DelayFunc suspends the caller for the artificial latency window. Tests
// substitute a zero-delay implementation.
type DelayFunc func(ctx context.Context, d time.Duration) error

// SleepDelay is the production delay: a context-aware sleep.
func SleepDelay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoDelay resolves immediately; deterministic test substitute.
func NoDelay(context.Context, time.Duration) error { return nil }

type paymentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type subscriptionRequest struct {
	PlanID string `json:"plan_id"`
}

type demoAccessRequest struct {
	ProductURL string `json:"product_url"`
}

type cardIntentResponse struct {
	Success         bool    `json:"success"`
	ClientSecret    string  `json:"client_secret"`
	PaymentIntentID string  `json:"payment_intent_id"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
}

type madaPaymentResponse struct {
	Success    bool      `json:"success"`
	PaymentID  string    `json:"payment_id"`
	PaymentURL string    `json:"payment_url"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type stcPaymentResponse struct {
	Success    bool    `json:"success"`
	PaymentID  string  `json:"payment_id"`
	PaymentURL string  `json:"payment_url"`
	QRCode     string  `json:"qr_code"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
}

type sadadBillResponse struct {
	Success    bool      `json:"success"`
	BillNumber int64     `json:"bill_number"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	ExpiresAt  time.Time `json:"expires_at"`
	QRCode     string    `json:"qr_code"`
}

type subscriptionResponse struct {
	Success            bool      `json:"success"`
	SubscriptionID     string    `json:"subscription_id"`
	Status             string    `json:"status"`
	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`
	Plan               string    `json:"plan"`
}

type demoAccessResponse struct {
	Success            bool      `json:"success"`
	DemoAccessToken    string    `json:"demo_access_token"`
	ExpiresAt          time.Time `json:"expires_at"`
	ProductURL         string    `json:"product_url"`
	AccessInstructions string    `json:"access_instructions"`
}

// Simulator routes a closed set of endpoint paths to response fabricators.
type Simulator struct {
	latency time.Duration
	delay   DelayFunc
	clock   func() time.Time
	log     *zerolog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option tweaks a Simulator; the defaults reproduce production behavior.
type Option func(*Simulator)

func WithLatency(d time.Duration) Option    { return func(s *Simulator) { s.latency = d } }
func WithDelayFunc(f DelayFunc) Option      { return func(s *Simulator) { s.delay = f } }
func WithClock(c func() time.Time) Option   { return func(s *Simulator) { s.clock = c } }
func WithRandSource(src rand.Source) Option { return func(s *Simulator) { s.rnd = rand.New(src) } }

func NewSimulator(logger *zerolog.Logger, opts ...Option) *Simulator {
	l := logger.With().Str("component", "payment-simulator").Logger()
	s := &Simulator{
		latency: DefaultLatency,
		delay:   SleepDelay,
		clock:   time.Now,
		log:     &l,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SimulateRequest applies the latency window, then routes the endpoint.
// Unknown endpoints fail with domain.ErrEndpointNotFound.
func (s *Simulator) SimulateRequest(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	start := s.clock()
	if err := s.delay(ctx, s.latency); err != nil {
		return nil, err
	}

	var (
		resp any
		err  error
	)
	switch endpoint {
	case "/api/create-payment-intent":
		resp, err = s.createCardPaymentIntent(payload)
	case "/api/mada/create-payment":
		resp, err = s.createMadaPayment(payload)
	case "/api/stcpay/create-payment":
		resp, err = s.createSTCPayment(payload)
	case "/api/sadad/create-bill":
		resp, err = s.createSadadBill(payload)
	case "/api/subscription/create":
		resp, err = s.createSubscription(payload)
	case "/api/demo/grant-access":
		resp, err = s.grantDemoAccess(payload)
	default:
		err = domain.ErrEndpointNotFound
	}

	metrics.ObserveSimulatedRequest(endpoint, err == nil, s.clock().Sub(start))
	if err != nil {
		s.log.Debug().Err(err).Str("endpoint", endpoint).Msg("simulated request failed")
		return nil, err
	}
	return json.Marshal(resp)
}

func (s *Simulator) createCardPaymentIntent(payload []byte) (any, error) {
	var req paymentRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return cardIntentResponse{
		Success:         true,
		ClientSecret:    fmt.Sprintf("pi_%s_secret_%s", s.generateID(), s.generateID()),
		PaymentIntentID: "pi_" + s.generateID(),
		Amount:          req.Amount,
		Currency:        req.Currency,
	}, nil
}

func (s *Simulator) createMadaPayment(payload []byte) (any, error) {
	var req paymentRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return madaPaymentResponse{
		Success:    true,
		PaymentID:  "mada_" + s.generateID(),
		PaymentURL: "https://payment.mada.com.sa/pay/" + s.generateID(),
		Amount:     req.Amount,
		Currency:   req.Currency,
		ExpiresAt:  s.clock().Add(madaExpiry),
	}, nil
}

func (s *Simulator) createSTCPayment(payload []byte) (any, error) {
	var req paymentRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return stcPaymentResponse{
		Success:    true,
		PaymentID:  "stc_" + s.generateID(),
		PaymentURL: fmt.Sprintf("stcpay://pay?amount=%v&reference=%s", req.Amount, s.generateID()),
		QRCode:     qrCodeSVG,
		Amount:     req.Amount,
		Currency:   req.Currency,
	}, nil
}

func (s *Simulator) createSadadBill(payload []byte) (any, error) {
	var req paymentRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return sadadBillResponse{
		Success:    true,
		BillNumber: s.generateBillNumber(),
		Amount:     req.Amount,
		Currency:   req.Currency,
		ExpiresAt:  s.clock().Add(sadadExpiry),
		QRCode:     qrCodeSVG,
	}, nil
}

func (s *Simulator) createSubscription(payload []byte) (any, error) {
	var req subscriptionRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	now := s.clock()
	return subscriptionResponse{
		Success:            true,
		SubscriptionID:     "sub_" + s.generateID(),
		Status:             "active",
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.Add(subscriptionPeriod),
		Plan:               req.PlanID,
	}, nil
}

func (s *Simulator) grantDemoAccess(payload []byte) (any, error) {
	var req demoAccessRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return demoAccessResponse{
		Success:            true,
		DemoAccessToken:    "demo_" + s.generateID(),
		ExpiresAt:          s.clock().Add(demoAccessExpiry),
		ProductURL:         req.ProductURL,
		AccessInstructions: "Your demo access has been granted. Use the provided token to access the product.",
	}, nil
}

// generateID returns a 9-character base36 opaque identifier.
func (s *Simulator) generateID() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	s.mu.Lock()
	defer s.mu.Unlock()
	b := make([]byte, 9)
	for i := range b {
		b[i] = alphabet[s.rnd.Intn(len(alphabet))]
	}
	return string(b)
}

// generateBillNumber returns a 10-digit SADAD bill number.
func (s *Simulator) generateBillNumber() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 1000000000 + s.rnd.Int63n(9000000000)
}
