// File: cmd/demo/main.go
//
// Console walkthrough of the purchase and trial flows against the simulated
// backend, with an in-memory store and a headless frontend.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"healthcare-storefront/internal/domain/model"
	"healthcare-storefront/internal/domain/ports/adapter"
	"healthcare-storefront/internal/infra/frontend"
	"healthcare-storefront/internal/infra/gateway"
	"healthcare-storefront/internal/infra/i18n"
	"healthcare-storefront/internal/infra/kv"
	"healthcare-storefront/internal/infra/ledger"
	"healthcare-storefront/internal/infra/logging"
	"healthcare-storefront/internal/infra/notify"
	"healthcare-storefront/internal/usecase"
)

type consoleDisplay struct{}

func (consoleDisplay) Render(n model.Notice) {
	fmt.Printf("  [%s] %s\n", n.Severity, n.Message)
}

func (consoleDisplay) Remove(string) {}

func main() {
	ctx := context.Background()
	logger := logging.Nop()

	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		log.Fatalf("translator: %v", err)
	}

	store := kv.NewMemoryStore()
	gw := kv.NewGateway(store, logger)
	demoLedger := ledger.New(gw, nil, logger)

	// Short latency so the walkthrough is snappy but still async.
	sim := gateway.NewSimulator(logger, gateway.WithLatency(200*time.Millisecond))

	fe := frontend.NewHeadless(logger)
	fe.AddElement("pricing-basic-btn")
	notifier := notify.New(consoleDisplay{}, logger)

	orch := usecase.NewOrchestrator(model.DefaultCatalog(), sim, fe, notifier, tr, logger)
	demo := usecase.NewDemoUseCase(sim, demoLedger, fe, notifier, tr, logger)

	// 1. Purchase: basic plan, monthly, paid with mada.
	fmt.Println("== purchase flow ==")
	if err := orch.SelectPlan(ctx, "basic", model.BillingMonthly, "pricing-basic-btn"); err != nil {
		log.Fatalf("select plan: %v", err)
	}
	fmt.Printf("  selection modal open: %v\n", fe.ModalOpen(adapter.ModalPaymentMethods))
	if err := orch.ChooseMethod(ctx, model.MethodMada); err != nil {
		log.Fatalf("choose method: %v", err)
	}
	fmt.Printf("  selection modal closed before resolution: %v\n", !fe.ModalOpen(adapter.ModalPaymentMethods))
	orch.Wait()
	fmt.Printf("  final state: %s\n", orch.Session().State)

	// 2. Purchase: professional plan via the card-entry modal.
	fmt.Println("== card flow ==")
	if err := orch.SelectPlan(ctx, "professional", model.BillingAnnual, "pricing-basic-btn"); err != nil {
		log.Fatalf("select plan: %v", err)
	}
	if err := orch.ChooseMethod(ctx, model.MethodCard); err != nil {
		log.Fatalf("choose method: %v", err)
	}
	form := usecase.CardForm{
		Name:   "Test User",
		Email:  "test@example.com",
		Number: "4242424242424242",
		Expiry: "12/30",
		CVC:    "123",
	}
	if err := orch.SubmitCard(ctx, form); err != nil {
		log.Fatalf("submit card: %v", err)
	}
	orch.Wait()
	fmt.Printf("  card modal closed: %v\n", !fe.ModalOpen(adapter.ModalCardEntry))

	// 3. Enterprise routes to sales, never into the payment flow.
	fmt.Println("== enterprise flow ==")
	_ = orch.SelectPlan(ctx, "enterprise", model.BillingMonthly, "")
	fmt.Printf("  scrolled to contact: %v\n", fe.ScrolledToContact())

	// 4. Trial: grant, countdown, restore.
	fmt.Println("== trial flow ==")
	demo.RequestTrial(ctx, "telehealth-platform", "https://demo.example.com/telehealth")
	demo.Wait()
	fmt.Printf("  countdown: %s\n", fe.Countdown("telehealth-platform"))
	demo.StopCountdown("telehealth-platform")

	fe2 := frontend.NewHeadless(logger)
	demo2 := usecase.NewDemoUseCase(sim, demoLedger, fe2, notifier, tr, logger)
	demo2.RestoreOnLoad(ctx)
	if url, ok := fe2.TrialTarget("telehealth-platform"); ok {
		fmt.Printf("  restored trial target: %s\n", url)
	}
	fmt.Println("done")
}
