package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/revenue-engine/pricing"
)

// =============================================================================
// EDGE-CASE POLICY
// =============================================================================

func TestProrate_ZeroTotalDays_IsZero(t *testing.T) {
	// GIVEN: A zero-length billing period
	// THEN: The result is zero regardless of amount or used days

	assert.True(t, pricing.Prorate(dec("1200"), 0, 15).IsZero())
	assert.True(t, pricing.Prorate(dec("1200"), 0, 0).IsZero())
	assert.True(t, pricing.Prorate(dec("-50"), 0, 99).IsZero())
}

func TestProrate_ZeroUsedDays_IsZero(t *testing.T) {
	assert.True(t, pricing.Prorate(dec("1200"), 30, 0).IsZero())
	assert.True(t, pricing.Prorate(dec("0.01"), 365, 0).IsZero())
}

func TestProrate_NegativeUsedDays_ClampsToZero(t *testing.T) {
	// Negative usage is treated as no usage, not as an error.
	assert.True(t, pricing.Prorate(dec("1200"), 30, -5).IsZero())
	assert.True(t, pricing.Prorate(dec("1200"), 30, -1).IsZero())
}

func TestProrate_FullPeriod_IsIdentity(t *testing.T) {
	// GIVEN: usedDays == totalDays
	// THEN: The full amount comes back exactly, no rounding drift

	cases := []struct {
		amount string
		days   int
	}{
		{"1200", 30},
		{"99.99", 30},
		{"0.01", 365},
		{"1234.5678", 7},
		{"33.333333333333", 3},
	}

	for _, tc := range cases {
		got := pricing.Prorate(dec(tc.amount), tc.days, tc.days)
		assert.Equal(t, dec(tc.amount).String(), got.String(),
			"amount=%s days=%d", tc.amount, tc.days)
	}
}

func TestProrate_OverUsage_NotClamped(t *testing.T) {
	// usedDays > totalDays deliberately exceeds the full amount; the
	// engine carries no over-usage policy.
	got := pricing.Prorate(dec("100"), 30, 45)
	assert.Equal(t, "150", got.String())
}

// =============================================================================
// DECIMAL EXACTNESS
// =============================================================================

func TestProrate_ExactDecimalArithmetic(t *testing.T) {
	// 99.99 x 15 / 30 must be exactly 49.995. A float64 pipeline would
	// produce 49.994999999999997.
	got := pricing.Prorate(dec("99.99"), 30, 15)
	assert.Equal(t, "49.995", got.String())
}

func TestProrate_SingleDayOfMonth(t *testing.T) {
	got := pricing.Prorate(dec("30"), 30, 1)
	assert.Equal(t, "1", got.String())
}

func TestProrate_AnnualAmountPartialYear(t *testing.T) {
	// 1200 x 182 / 365: a non-terminating quotient carried at full
	// decimal division precision.
	got := pricing.Prorate(dec("1200"), 365, 182)

	assert.True(t, got.Equal(dec("1200").Mul(dec("182")).Div(dec("365"))))
	assert.Equal(t, "598.3561643835616438", got.StringFixed(16))
}

func TestProrate_CentSignificantAmounts(t *testing.T) {
	cases := []struct {
		amount   string
		total    int
		used     int
		expected string
	}{
		{"10.00", 30, 15, "5"},
		{"0.03", 3, 1, "0.01"},
		{"29.99", 31, 31, "29.99"},
		{"100", 365, 73, "20"},
	}

	for _, tc := range cases {
		got := pricing.Prorate(dec(tc.amount), tc.total, tc.used)
		assert.True(t, got.Equal(dec(tc.expected)),
			"%s x %d/%d: expected %s, got %s", tc.amount, tc.used, tc.total, tc.expected, got)
	}
}

// =============================================================================
// PERIOD-BASED PRORATION
// =============================================================================

func TestProrateForPeriod_MidPeriodStart(t *testing.T) {
	// GIVEN: A 30-day period (April) and a contract active from April 16
	// THEN: 15 of 30 days are billed

	april := pricing.BillingPeriod{
		Start: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
	}
	activeFrom := time.Date(2025, time.April, 16, 0, 0, 0, 0, time.UTC)

	got := pricing.ProrateForPeriod(dec("99.99"), april, activeFrom)
	assert.Equal(t, "49.995", got.String())
}

func TestProrateForPeriod_ActiveBeforePeriod_FullAmount(t *testing.T) {
	april := pricing.BillingPeriod{
		Start: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
	}
	activeFrom := time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC)

	got := pricing.ProrateForPeriod(dec("250.00"), april, activeFrom)
	assert.Equal(t, dec("250.00").String(), got.String())
}

func TestProrateForPeriod_ActiveAfterPeriod_Zero(t *testing.T) {
	april := pricing.BillingPeriod{
		Start: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
	}
	activeFrom := time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, pricing.ProrateForPeriod(dec("250.00"), april, activeFrom).IsZero())
}
