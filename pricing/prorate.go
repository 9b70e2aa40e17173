/*
prorate.go - Day-based proration of billing amounts

PURPOSE:
  Scales a full-period billing amount down to the fraction of the period
  actually used: fullAmount x usedDays / totalDays, in exact decimal
  arithmetic so that 99.99 x 15 / 30 is exactly 49.995 rather than a
  binary-float approximation.

EDGE-CASE POLICY:
  totalDays == 0      -> 0  (no proratable period; guards division by zero)
  usedDays  == 0      -> 0
  usedDays  <  0      -> 0  (negative usage is treated as no usage)
  usedDays == totalDays -> fullAmount exactly

  usedDays > totalDays is NOT clamped: the result exceeds fullAmount.
  Callers that need an over-usage policy must apply it themselves.

  All edge cases resolve to a defined number; Prorate never fails.

SEE ALSO:
  - period.go: Computing totalDays/usedDays from billing periods
*/
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRORATION
// =============================================================================

// Prorate returns fullAmount x usedDays / totalDays using exact decimal
// arithmetic. See the edge-case policy in the file header.
func Prorate(fullAmount decimal.Decimal, totalDays, usedDays int) decimal.Decimal {
	if totalDays == 0 {
		return decimal.Zero
	}
	if usedDays <= 0 {
		return decimal.Zero
	}
	if usedDays == totalDays {
		// Identity case: return the amount untouched so full-period
		// proration can never drift through division.
		return fullAmount
	}
	return fullAmount.
		Mul(decimal.NewFromInt(int64(usedDays))).
		Div(decimal.NewFromInt(int64(totalDays)))
}

// ProrateForPeriod prorates fullAmount over the portion of period that
// starts at activeFrom. An activeFrom on or before the period start uses
// the full period (identity); an activeFrom after the period end yields
// zero.
func ProrateForPeriod(fullAmount decimal.Decimal, period BillingPeriod, activeFrom time.Time) decimal.Decimal {
	return Prorate(fullAmount, period.TotalDays(), period.UsedDaysFrom(activeFrom))
}
