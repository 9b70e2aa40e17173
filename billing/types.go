/*
Package billing provides the revenue-management domain layer.

PURPOSE:
  Domain types and logic for subscription contracts: accounts, products,
  contracts, invoices, and queued billing jobs. The pure price math lives
  in the pricing package; this package decides WHAT to bill (which
  contract, which period, which schedule) and records the outcome.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: The billable customer
  - PriceSchedule: A product's base price plus volume-discount tiers
  - Contract: Seat-based subscription linking an account to a product
  - Invoice: The computed charge for one contract and one period

LIFECYCLES:
  Contract: draft -> active -> (canceled | expired)
  Invoice:  draft -> issued -> paid, void from draft or issued
  Job:      pending -> processing -> (completed | pending(retry) | failed)

SEE ALSO:
  - invoicer.go: Invoice generation from contract + schedule + period
  - jobs.go: Queued billing work with retry/backoff
  - errors.go: Sentinel and structured errors
*/
package billing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/revenue-engine/pricing"
)

// =============================================================================
// ACCOUNT - The billable customer
// =============================================================================

type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountClosed    AccountStatus = "closed"
)

type Account struct {
	ID        string
	Name      string
	Email     string
	Status    AccountStatus
	CreatedAt time.Time
}

// Billable reports whether invoices may be generated for this account.
func (a Account) Billable() bool { return a.Status == AccountActive }

// =============================================================================
// PRODUCT AND PRICE SCHEDULE
// =============================================================================

// Product is a sellable seat-based offering. Its pricing configuration
// is stored as JSON and parsed into a PriceSchedule by the factory
// package.
type Product struct {
	ID            string
	Name          string
	Currency      string
	PricingConfig string // JSON, see factory.PricingConfigJSON
	CreatedAt     time.Time
}

// PriceSchedule is the parsed pricing of a product: the fallback unit
// price and the volume-discount bands handed to the pricing engine.
type PriceSchedule struct {
	BasePricePerSeat decimal.Decimal
	Currency         string
	VolumeTiers      []pricing.VolumeTier
}

// =============================================================================
// CONTRACT - Seat-based subscription
// =============================================================================

type ContractStatus string

const (
	ContractDraft    ContractStatus = "draft"
	ContractActive   ContractStatus = "active"
	ContractCanceled ContractStatus = "canceled"
	ContractExpired  ContractStatus = "expired"
)

type Contract struct {
	ID        string
	AccountID string
	ProductID string

	// SeatCount is decimal: mid-period seat changes can leave a contract
	// carrying fractional prorated seats.
	SeatCount decimal.Decimal

	Cycle     pricing.BillingCycle
	StartDate time.Time
	EndDate   *time.Time // nil = open-ended

	Status    ContractStatus
	CreatedAt time.Time
}

// ActiveDuring reports whether the contract overlaps the given billing
// period at all. A draft or canceled contract is never active.
func (c Contract) ActiveDuring(p pricing.BillingPeriod) bool {
	if c.Status != ContractActive {
		return false
	}
	if pricing.Day(c.StartDate).After(pricing.Day(p.End)) {
		return false
	}
	if c.EndDate != nil && pricing.Day(*c.EndDate).Before(pricing.Day(p.Start)) {
		return false
	}
	return true
}

// BillableDays returns the inclusive day count of the overlap between
// the contract's active range and the period. This is the usedDays fed
// to the proration engine.
func (c Contract) BillableDays(p pricing.BillingPeriod) int {
	if !c.ActiveDuring(p) {
		return 0
	}
	effective := p
	if c.EndDate != nil && pricing.Day(*c.EndDate).Before(pricing.Day(p.End)) {
		effective.End = *c.EndDate
	}
	return effective.UsedDaysFrom(c.StartDate)
}

// =============================================================================
// INVOICE - Computed charge for one contract and one period
// =============================================================================

type InvoiceStatus string

const (
	InvoiceDraft  InvoiceStatus = "draft"
	InvoiceIssued InvoiceStatus = "issued"
	InvoicePaid   InvoiceStatus = "paid"
	InvoiceVoid   InvoiceStatus = "void"
)

// Invoice records the pricing outcome for a contract and period. Only
// computed totals are persisted; there is no line-item model.
type Invoice struct {
	ID         string
	ContractID string
	AccountID  string

	PeriodStart time.Time
	PeriodEnd   time.Time

	SeatCount    decimal.Decimal
	PricePerSeat decimal.Decimal
	Subtotal     decimal.Decimal // seatCount x pricePerSeat, full period
	Total        decimal.Decimal // subtotal prorated to billable days
	Currency     string

	// TierMinSeats/TierMaxSeats echo the matched volume tier for audit;
	// both nil when the base price applied.
	TierMinSeats *decimal.Decimal
	TierMaxSeats *decimal.Decimal

	TotalDays int
	UsedDays  int

	Status    InvoiceStatus
	CreatedAt time.Time
}

// Issue moves a draft invoice to issued.
func (i *Invoice) Issue() error {
	if i.Status != InvoiceDraft {
		return &StatusTransitionError{Entity: "invoice", From: string(i.Status), To: string(InvoiceIssued)}
	}
	i.Status = InvoiceIssued
	return nil
}

// MarkPaid moves an issued invoice to paid.
func (i *Invoice) MarkPaid() error {
	if i.Status != InvoiceIssued {
		return &StatusTransitionError{Entity: "invoice", From: string(i.Status), To: string(InvoicePaid)}
	}
	i.Status = InvoicePaid
	return nil
}

// Void cancels a draft or issued invoice. Paid invoices cannot be
// voided; corrections to paid invoices are an orchestration concern.
func (i *Invoice) Void() error {
	if i.Status != InvoiceDraft && i.Status != InvoiceIssued {
		return &StatusTransitionError{Entity: "invoice", From: string(i.Status), To: string(InvoiceVoid)}
	}
	i.Status = InvoiceVoid
	return nil
}

// Prorated reports whether the invoice covers less than the full period.
func (i Invoice) Prorated() bool { return i.UsedDays < i.TotalDays }
