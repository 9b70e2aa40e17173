/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates accounts, products,
	and contracts that demonstrate specific pricing features.

AVAILABLE SCENARIOS:

	flat-rate:        Single account, flat per-seat price, monthly contract
	volume-tiers:     Tiered pricing with a contract landing in the mid band
	mid-period-start: Contract starting mid-month, first invoice prorated
	mixed-cycles:     Several accounts across monthly/quarterly/annual cycles

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create products with pricing configs via the factory presets
 3. Create accounts and contracts
 4. Optionally generate the first invoices

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "volume-tiers"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: BillContract (used to pre-generate invoices)
  - factory/pricing.go: FlatRateJSON, ThreeBandJSON presets
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/revenue-engine/billing"
	"github.com/warp/revenue-engine/factory"
	"github.com/warp/revenue-engine/pricing"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "flat-rate",
		Name:        "Flat Rate",
		Description: "Single account on a flat per-seat price, monthly billing",
	},
	{
		ID:          "volume-tiers",
		Name:        "Volume Tiers",
		Description: "Three-band tiered pricing with a contract in the discount band",
	},
	{
		ID:          "mid-period-start",
		Name:        "Mid-Period Start",
		Description: "Contract starting mid-month, first invoice prorated by day",
	},
	{
		ID:          "mixed-cycles",
		Name:        "Mixed Cycles",
		Description: "Accounts billed monthly, quarterly, and annually",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:   h.currentScenario,
		Name: h.currentScenario,
	})
}

// LoadScenario resets the database and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "flat-rate":
		err = h.loadFlatRateScenario(ctx)
	case "volume-tiers":
		err = h.loadVolumeTiersScenario(ctx)
	case "mid-period-start":
		err = h.loadMidPeriodStartScenario(ctx)
	case "mixed-cycles":
		err = h.loadMixedCyclesScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadFlatRateScenario(ctx context.Context) error {
	if err := h.seedAccount(ctx, "acct-acme", "Acme Corp", "billing@acme.example"); err != nil {
		return err
	}
	if err := h.seedProduct(ctx, "prod-basic", "Basic Plan",
		factory.FlatRateJSON("25", "USD")); err != nil {
		return err
	}
	return h.seedContract(ctx, "ctr-acme-basic", "acct-acme", "prod-basic",
		"8", pricing.CycleMonthly, monthStart(0), nil)
}

func (h *Handler) loadVolumeTiersScenario(ctx context.Context) error {
	if err := h.seedAccount(ctx, "acct-globex", "Globex", "ap@globex.example"); err != nil {
		return err
	}
	// 1-10 seats at 100, 11-50 at 90, 51+ at 80.
	if err := h.seedProduct(ctx, "prod-team", "Team Plan",
		factory.ThreeBandJSON("100", "90", "80", "USD")); err != nil {
		return err
	}
	// 15 seats lands in the middle band.
	if err := h.seedContract(ctx, "ctr-globex-team", "acct-globex", "prod-team",
		"15", pricing.CycleMonthly, monthStart(-1), nil); err != nil {
		return err
	}
	// Pre-generate last month's invoice so the demo starts with history.
	_, err := h.BillContract(ctx, "ctr-globex-team", monthStart(-1))
	return err
}

func (h *Handler) loadMidPeriodStartScenario(ctx context.Context) error {
	if err := h.seedAccount(ctx, "acct-initech", "Initech", "finance@initech.example"); err != nil {
		return err
	}
	if err := h.seedProduct(ctx, "prod-pro", "Pro Plan",
		factory.FlatRateJSON("49.99", "USD")); err != nil {
		return err
	}
	// Start halfway through the current month; the first invoice covers
	// only the remaining days.
	start := monthStart(0).AddDate(0, 0, 14)
	if err := h.seedContract(ctx, "ctr-initech-pro", "acct-initech", "prod-pro",
		"5", pricing.CycleMonthly, start, nil); err != nil {
		return err
	}
	_, err := h.BillContract(ctx, "ctr-initech-pro", start)
	return err
}

func (h *Handler) loadMixedCyclesScenario(ctx context.Context) error {
	if err := h.seedProduct(ctx, "prod-team", "Team Plan",
		factory.ThreeBandJSON("100", "90", "80", "USD")); err != nil {
		return err
	}

	type seed struct {
		account, name, contract, seats string
		cycle                          pricing.BillingCycle
	}
	for _, s := range []seed{
		{"acct-hooli", "Hooli", "ctr-hooli", "60", pricing.CycleMonthly},
		{"acct-vandelay", "Vandelay Industries", "ctr-vandelay", "12", pricing.CycleQuarterly},
		{"acct-wonka", "Wonka Inc", "ctr-wonka", "4", pricing.CycleAnnual},
	} {
		if err := h.seedAccount(ctx, s.account, s.name, ""); err != nil {
			return err
		}
		if err := h.seedContract(ctx, s.contract, s.account, "prod-team",
			s.seats, s.cycle, monthStart(0), nil); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SEED HELPERS
// =============================================================================

func (h *Handler) seedAccount(ctx context.Context, id, name, email string) error {
	return h.Store.SaveAccount(ctx, billing.Account{
		ID:     id,
		Name:   name,
		Email:  email,
		Status: billing.AccountActive,
	})
}

func (h *Handler) seedProduct(ctx context.Context, id, name, configJSON string) error {
	schedule, err := h.Factory.Parse(configJSON)
	if err != nil {
		return fmt.Errorf("scenario product %s: %w", id, err)
	}
	return h.Store.SaveProduct(ctx, billing.Product{
		ID:            id,
		Name:          name,
		Currency:      schedule.Currency,
		PricingConfig: configJSON,
	})
}

func (h *Handler) seedContract(ctx context.Context, id, accountID, productID, seats string,
	cycle pricing.BillingCycle, start time.Time, end *time.Time) error {
	seatCount, err := decimal.NewFromString(seats)
	if err != nil {
		return fmt.Errorf("scenario contract %s: %w", id, err)
	}
	return h.Store.SaveContract(ctx, billing.Contract{
		ID:        id,
		AccountID: accountID,
		ProductID: productID,
		SeatCount: seatCount,
		Cycle:     cycle,
		StartDate: start,
		EndDate:   end,
		Status:    billing.ContractActive,
	})
}

// monthStart returns the first day of the month offset months from now.
func monthStart(offset int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
}
