package model

import (
	"time"

	"github.com/google/uuid"

	"healthcare-storefront/internal/domain"
)

type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodPayPal       PaymentMethod = "paypal"
	MethodMada         PaymentMethod = "mada"
	MethodSTCPay       PaymentMethod = "stcpay"
	MethodSadad        PaymentMethod = "sadad"
	MethodBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodPayPal, MethodMada, MethodSTCPay, MethodSadad, MethodBankTransfer:
		return true
	}
	return false
}

// Endpoint maps a payment method to its simulated backend route.
func (m PaymentMethod) Endpoint() string {
	switch m {
	case MethodCard:
		return "/api/create-payment-intent"
	case MethodMada:
		return "/api/mada/create-payment"
	case MethodSTCPay:
		return "/api/stcpay/create-payment"
	case MethodSadad:
		return "/api/sadad/create-bill"
	default:
		// paypal and bank transfer ride the generic subscription route
		return "/api/subscription/create"
	}
}

type AttemptStatus string

const (
	AttemptPending   AttemptStatus = "pending"
	AttemptSucceeded AttemptStatus = "succeeded"
	AttemptFailed    AttemptStatus = "failed"
)

// PaymentAttempt is one in-flight or completed try at paying for a selection.
// It transitions pending -> succeeded|failed exactly once; a retry is a brand
// new attempt, never a resurrected one.
type PaymentAttempt struct {
	ID        string
	Method    PaymentMethod
	Plan      PlanSelection // copied, not shared, so concurrent attempts stay isolated
	StartedAt time.Time
	Status    AttemptStatus
}

func NewPaymentAttempt(method PaymentMethod, plan PlanSelection, now time.Time) (*PaymentAttempt, error) {
	if !method.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	return &PaymentAttempt{
		ID:        uuid.NewString(),
		Method:    method,
		Plan:      plan,
		StartedAt: now,
		Status:    AttemptPending,
	}, nil
}

func (a *PaymentAttempt) Succeed() error {
	if a.Status != AttemptPending {
		return domain.ErrAttemptFinished
	}
	a.Status = AttemptSucceeded
	return nil
}

func (a *PaymentAttempt) Fail() error {
	if a.Status != AttemptPending {
		return domain.ErrAttemptFinished
	}
	a.Status = AttemptFailed
	return nil
}

func (a *PaymentAttempt) Terminal() bool {
	return a.Status == AttemptSucceeded || a.Status == AttemptFailed
}
