package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	"healthcare-storefront/internal/domain"
	"healthcare-storefront/internal/infra/gateway"
	"healthcare-storefront/internal/infra/logging"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newSim(now time.Time) *gateway.Simulator {
	return gateway.NewSimulator(logging.Nop(),
		gateway.WithDelayFunc(gateway.NoDelay),
		gateway.WithClock(fixedClock(now)),
		gateway.WithRandSource(rand.NewSource(1)),
	)
}

func TestSimulateRequestEndpoints(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("card intent", func(t *testing.T) {
		raw, err := newSim(now).SimulateRequest(ctx, "/api/create-payment-intent", []byte(`{"amount":29900,"currency":"sar"}`))
		if err != nil {
			t.Fatalf("SimulateRequest: %v", err)
		}
		var resp struct {
			Success         bool    `json:"success"`
			ClientSecret    string  `json:"client_secret"`
			PaymentIntentID string  `json:"payment_intent_id"`
			Amount          float64 `json:"amount"`
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !resp.Success || resp.Amount != 29900 {
			t.Errorf("unexpected response: %+v", resp)
		}
		if len(resp.PaymentIntentID) != len("pi_")+9 {
			t.Errorf("payment intent id %q should carry a 9-char opaque id", resp.PaymentIntentID)
		}
	})

	t.Run("mada payment expires in 15 minutes", func(t *testing.T) {
		raw, err := newSim(now).SimulateRequest(ctx, "/api/mada/create-payment", []byte(`{"amount":299,"currency":"SAR"}`))
		if err != nil {
			t.Fatalf("SimulateRequest: %v", err)
		}
		var resp struct {
			Success   bool      `json:"success"`
			ExpiresAt time.Time `json:"expires_at"`
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if want := now.Add(15 * time.Minute); !resp.ExpiresAt.Equal(want) {
			t.Errorf("expires_at = %v, want %v", resp.ExpiresAt, want)
		}
	})

	t.Run("sadad bill is 10 digits and expires in 7 days", func(t *testing.T) {
		raw, err := newSim(now).SimulateRequest(ctx, "/api/sadad/create-bill", []byte(`{"amount":500,"currency":"SAR"}`))
		if err != nil {
			t.Fatalf("SimulateRequest: %v", err)
		}
		var resp struct {
			Success    bool      `json:"success"`
			BillNumber int64     `json:"bill_number"`
			Amount     float64   `json:"amount"`
			ExpiresAt  time.Time `json:"expires_at"`
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.BillNumber < 1000000000 || resp.BillNumber > 9999999999 {
			t.Errorf("bill number %d is not 10 digits", resp.BillNumber)
		}
		if resp.Amount != 500 {
			t.Errorf("amount = %v, want 500", resp.Amount)
		}
		if want := now.Add(7 * 24 * time.Hour); !resp.ExpiresAt.Equal(want) {
			t.Errorf("expires_at = %v, want %v", resp.ExpiresAt, want)
		}
	})

	t.Run("subscription runs 30 days", func(t *testing.T) {
		raw, err := newSim(now).SimulateRequest(ctx, "/api/subscription/create", []byte(`{"plan_id":"basic"}`))
		if err != nil {
			t.Fatalf("SimulateRequest: %v", err)
		}
		var resp struct {
			Status           string    `json:"status"`
			CurrentPeriodEnd time.Time `json:"current_period_end"`
			Plan             string    `json:"plan"`
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Status != "active" || resp.Plan != "basic" {
			t.Errorf("unexpected response: %+v", resp)
		}
		if want := now.Add(30 * 24 * time.Hour); !resp.CurrentPeriodEnd.Equal(want) {
			t.Errorf("current_period_end = %v, want %v", resp.CurrentPeriodEnd, want)
		}
	})

	t.Run("demo access runs 24 hours", func(t *testing.T) {
		raw, err := newSim(now).SimulateRequest(ctx, "/api/demo/grant-access", []byte(`{"product_url":"https://demo.example.com"}`))
		if err != nil {
			t.Fatalf("SimulateRequest: %v", err)
		}
		var resp struct {
			ExpiresAt  time.Time `json:"expires_at"`
			ProductURL string    `json:"product_url"`
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if want := now.Add(24 * time.Hour); !resp.ExpiresAt.Equal(want) {
			t.Errorf("expires_at = %v, want %v", resp.ExpiresAt, want)
		}
		if resp.ProductURL != "https://demo.example.com" {
			t.Errorf("product_url = %q", resp.ProductURL)
		}
	})

	t.Run("unknown endpoint", func(t *testing.T) {
		_, err := newSim(now).SimulateRequest(ctx, "/api/analytics/events", nil)
		if !errors.Is(err, domain.ErrEndpointNotFound) {
			t.Fatalf("err = %v, want ErrEndpointNotFound", err)
		}
		if err.Error() != "Endpoint not found" {
			t.Errorf("error text = %q", err.Error())
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := newSim(now).SimulateRequest(ctx, "/api/create-payment-intent", []byte(`{`))
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("err = %v, want ErrValidation", err)
		}
	})
}

func TestSimulateRequestCancellation(t *testing.T) {
	sim := gateway.NewSimulator(logging.Nop(), gateway.WithLatency(time.Minute))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sim.SimulateRequest(ctx, "/api/create-payment-intent", []byte(`{}`)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
