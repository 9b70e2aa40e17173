/*
invoicer.go - Invoice generation

PURPOSE:
  Turns (contract, price schedule, billing period) into an invoice draft.
  This is the single place where the pricing engine's two operations are
  composed: resolve the per-seat price from the volume schedule, then
  prorate the subtotal to the days the contract was actually active.

FLOW:
  1. Reject non-active contracts and non-overlapping periods
  2. ResolveSeatPricing(seats, basePrice, tiers) -> unit price + subtotal
  3. Prorate(subtotal, period days, billable days) -> total
  4. Emit a draft invoice echoing the matched tier for audit

  The invoicer never mutates its inputs and performs no I/O; persistence
  and duplicate-period checks belong to the caller.

SEE ALSO:
  - pricing/seats.go, pricing/prorate.go: The math
  - api/worker.go: The queue that drives invoice generation
*/
package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/warp/revenue-engine/pricing"
)

// =============================================================================
// INVOICER
// =============================================================================

// InvoiceInput bundles everything needed to price one contract for one
// billing period.
type InvoiceInput struct {
	Contract Contract
	Account  Account
	Schedule PriceSchedule
	Period   pricing.BillingPeriod
}

// Invoicer generates invoice drafts. Stateless; safe for concurrent use.
type Invoicer struct {
	// Now returns the invoice creation time. Overridable for tests.
	Now func() time.Time
}

func NewInvoicer() *Invoicer {
	return &Invoicer{Now: time.Now}
}

// GenerateInvoice prices the contract for the period and returns a draft
// invoice. Returns ErrAccountNotBillable or ErrContractNotActive when
// the inputs cannot be billed.
func (iv *Invoicer) GenerateInvoice(in InvoiceInput) (*Invoice, error) {
	if !in.Account.Billable() {
		return nil, ErrAccountNotBillable
	}
	if !in.Contract.ActiveDuring(in.Period) {
		return nil, ErrContractNotActive
	}

	resolved := pricing.ResolveSeatPricing(
		in.Contract.SeatCount,
		in.Schedule.BasePricePerSeat,
		in.Schedule.VolumeTiers,
	)

	totalDays := in.Period.TotalDays()
	usedDays := in.Contract.BillableDays(in.Period)
	total := pricing.Prorate(resolved.Subtotal, totalDays, usedDays)

	inv := &Invoice{
		ID:           uuid.NewString(),
		ContractID:   in.Contract.ID,
		AccountID:    in.Contract.AccountID,
		PeriodStart:  pricing.Day(in.Period.Start),
		PeriodEnd:    pricing.Day(in.Period.End),
		SeatCount:    resolved.SeatCount,
		PricePerSeat: resolved.PricePerSeat,
		Subtotal:     resolved.Subtotal,
		Total:        total,
		Currency:     in.Schedule.Currency,
		TotalDays:    totalDays,
		UsedDays:     usedDays,
		Status:       InvoiceDraft,
		CreatedAt:    iv.Now(),
	}

	if resolved.AppliedTier != nil {
		min := resolved.AppliedTier.MinSeats
		inv.TierMinSeats = &min
		inv.TierMaxSeats = resolved.AppliedTier.MaxSeats
	}

	return inv, nil
}
