package model

import "healthcare-storefront/internal/domain"

type BillingPeriod string

const (
	BillingMonthly BillingPeriod = "monthly"
	BillingAnnual  BillingPeriod = "annual"
)

func (b BillingPeriod) Valid() bool {
	return b == BillingMonthly || b == BillingAnnual
}

// CatalogEntry is one purchasable pricing tier.
type CatalogEntry struct {
	ID          string
	DisplayName string
	Monthly     float64 // SAR
	Annual      float64 // SAR
	ContactOnly bool    // enterprise tiers never enter the payment flow
}

// Catalog is the static plan catalog. Lookups are pure and total:
// an unknown plan id echoes the raw identifier back as its display name.
type Catalog struct {
	entries map[string]CatalogEntry
}

func NewCatalog(entries ...CatalogEntry) *Catalog {
	m := make(map[string]CatalogEntry, len(entries))
	for _, e := range entries {
		m[e.ID] = e
	}
	return &Catalog{entries: m}
}

// DefaultCatalog mirrors the storefront pricing table.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		CatalogEntry{ID: "basic", DisplayName: "Basic Plan", Monthly: 299, Annual: 2990},
		CatalogEntry{ID: "professional", DisplayName: "Professional Plan", Monthly: 599, Annual: 5990},
		CatalogEntry{ID: "enterprise", DisplayName: "Enterprise Plan", ContactOnly: true},
	)
}

// Lookup returns the display name and price for a plan/period pair.
// It never fails; unknown ids fall back to the raw id with a zero price.
func (c *Catalog) Lookup(planID string, period BillingPeriod) (displayName string, price float64) {
	e, ok := c.entries[planID]
	if !ok {
		return planID, 0
	}
	if period == BillingAnnual {
		return e.DisplayName, e.Annual
	}
	return e.DisplayName, e.Monthly
}

// ContactOnly reports whether the plan is sold through sales contact only.
func (c *Catalog) ContactOnly(planID string) bool {
	e, ok := c.entries[planID]
	return ok && e.ContactOnly
}

// IDs returns the enumerated plan identifiers.
func (c *Catalog) IDs() []string {
	out := make([]string, 0, len(c.entries))
	for id := range c.entries {
		out = append(out, id)
	}
	return out
}

// PlanSelection is the pricing tier and billing cadence currently chosen in a
// session. Exactly one selection is live at a time; a new purchase click
// overwrites it wholesale.
type PlanSelection struct {
	PlanID        string
	DisplayName   string
	Price         float64
	BillingPeriod BillingPeriod
}

// NewPlanSelection resolves a selection against the catalog so the price can
// never drift from the catalog entry at selection time.
func NewPlanSelection(c *Catalog, planID string, period BillingPeriod) (PlanSelection, error) {
	if planID == "" || !period.Valid() {
		return PlanSelection{}, domain.ErrInvalidArgument
	}
	name, price := c.Lookup(planID, period)
	return PlanSelection{
		PlanID:        planID,
		DisplayName:   name,
		Price:         price,
		BillingPeriod: period,
	}, nil
}
