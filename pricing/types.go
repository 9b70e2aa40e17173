/*
Package pricing provides the core seat-based pricing and proration engine.

PURPOSE:
  This package contains the pure computation at the heart of the revenue
  engine: resolving a price-per-seat from a volume-discount schedule and
  prorating a billing amount over a partial period. Everything else in the
  repository (HTTP, persistence, the billing worker) is orchestration
  layered on top of these functions.

KEY CONCEPTS IN THIS FILE (types.go):
  - VolumeTier: One band of a volume-discount schedule
  - SeatPricingResult: The outcome of a pricing resolution
  - Seat counts and prices are decimal.Decimal, never float64

DESIGN PRINCIPLES:
  1. Purity: No I/O, no shared state. Same inputs, same outputs, always.
  2. Precision: decimal.Decimal for all money math. Billing amounts are
     cents-significant; binary floating point is never acceptable.
  3. Totality: These functions never fail. Every input, including
     malformed tier sets and negative counts, resolves to a defined
     result. Input validation belongs to the caller.

USAGE:
  tiers := []pricing.VolumeTier{
      pricing.NewBoundedTier(dec(1), dec(10), dec(100)),
      pricing.NewTier(dec(11), dec(90)),
  }
  result := pricing.ResolveSeatPricing(dec(25), dec(100), tiers)
  // result.PricePerSeat = 90, result.Subtotal = 2250

SEE ALSO:
  - seats.go: Tier matching and pricing resolution
  - prorate.go: Day-based proration
  - period.go: Billing period arithmetic
*/
package pricing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// VOLUME TIER - One band of a volume-discount schedule
// =============================================================================

// VolumeTier is a seat-count band with an associated per-seat price.
// Bounds are inclusive on both ends. A nil MaxSeats means the tier has
// no upper limit.
//
// Tier lists are taken as supplied: the engine tolerates unsorted,
// gapped, and overlapping schedules without validating them. See
// ResolveSeatPricing for the matching rule.
type VolumeTier struct {
	MinSeats     decimal.Decimal
	MaxSeats     *decimal.Decimal // nil = no upper bound
	PricePerSeat decimal.Decimal
}

// NewTier creates an unbounded tier (no upper seat limit).
func NewTier(minSeats, pricePerSeat decimal.Decimal) VolumeTier {
	return VolumeTier{MinSeats: minSeats, PricePerSeat: pricePerSeat}
}

// NewBoundedTier creates a tier covering [minSeats, maxSeats] inclusive.
func NewBoundedTier(minSeats, maxSeats, pricePerSeat decimal.Decimal) VolumeTier {
	return VolumeTier{MinSeats: minSeats, MaxSeats: &maxSeats, PricePerSeat: pricePerSeat}
}

// Matches reports whether seatCount falls inside this tier's bounds.
// Both bounds are inclusive; exact boundary values match.
func (t VolumeTier) Matches(seatCount decimal.Decimal) bool {
	if seatCount.LessThan(t.MinSeats) {
		return false
	}
	if t.MaxSeats != nil && seatCount.GreaterThan(*t.MaxSeats) {
		return false
	}
	return true
}

// Unbounded reports whether the tier has no upper seat limit.
func (t VolumeTier) Unbounded() bool { return t.MaxSeats == nil }

// =============================================================================
// SEAT PRICING RESULT - Outcome of a pricing resolution
// =============================================================================

// SeatPricingResult is the output of ResolveSeatPricing.
//
// AppliedTier is nil when no tier matched and the base price was used.
// The nil-vs-zero distinction matters downstream: an invoice records
// whether a discount band applied, not just the resolved price.
type SeatPricingResult struct {
	SeatCount    decimal.Decimal
	PricePerSeat decimal.Decimal
	Subtotal     decimal.Decimal
	AppliedTier  *VolumeTier // nil = base price used
}

// MustParseDecimal parses a decimal string, returning zero on failure.
// Intended for literals in configuration and tests.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
