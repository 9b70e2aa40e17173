/*
seats.go - Seat pricing resolution against volume tiers

PURPOSE:
  Resolves the unit price for a seat count against a volume-discount
  schedule and computes the resulting subtotal with exact decimal
  arithmetic.

MATCHING RULE:
  The tier list is scanned in the order supplied by the caller. The first
  tier whose inclusive [MinSeats, MaxSeats] range contains the seat count
  wins. This is deliberate:

  - FIRST MATCH WINS, not most-specific-wins. Overlapping tiers are a
    data problem, not an engine problem; the engine stays deterministic
    by honoring input order.
  - LINEAR SCAN, not a sorted search. Sorting would change which tier
    wins on malformed schedules and force an ordering contract onto
    callers. Tier lists are small (single digits in practice).

  If nothing matches (nil list, empty list, gap in the schedule), the
  base price applies and AppliedTier stays nil.

SEE ALSO:
  - types.go: VolumeTier and SeatPricingResult
  - prorate.go: Scaling the subtotal to a partial period
*/
package pricing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SEAT PRICING RESOLUTION
// =============================================================================

// ResolveSeatPricing resolves the price per seat for seatCount against
// volumeTiers, falling back to basePricePerSeat when no tier matches.
//
// The function is total: it never fails, for any seat count (zero,
// fractional, negative) or any tier list (nil, empty, unsorted, gapped,
// overlapping). Validating that inputs are semantically sane is the
// caller's job.
func ResolveSeatPricing(seatCount, basePricePerSeat decimal.Decimal, volumeTiers []VolumeTier) SeatPricingResult {
	pricePerSeat := basePricePerSeat
	var appliedTier *VolumeTier

	for _, tier := range volumeTiers {
		if tier.Matches(seatCount) {
			pricePerSeat = tier.PricePerSeat
			matched := tier // copy; result must not alias the caller's slice
			appliedTier = &matched
			break
		}
	}

	return SeatPricingResult{
		SeatCount:    seatCount,
		PricePerSeat: pricePerSeat,
		Subtotal:     seatCount.Mul(pricePerSeat),
		AppliedTier:  appliedTier,
	}
}
