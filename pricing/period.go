package pricing

import "time"

// =============================================================================
// BILLING PERIOD - The time boundary an invoice covers
// =============================================================================

// BillingPeriod is an inclusive day range [Start, End]. Times are
// normalized to UTC midnight; billing works at day granularity.
//
// Examples:
//   - Monthly: Mar 1 - Mar 31
//   - Quarterly: Jan 1 - Mar 31
//   - Annual: Jan 1 - Dec 31
type BillingPeriod struct {
	Start time.Time
	End   time.Time
}

// Day truncates a time to UTC midnight, the granularity all period
// arithmetic operates at.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Contains returns true if t falls within [Start, End].
func (p BillingPeriod) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(p.Start)) && !d.After(Day(p.End))
}

// TotalDays returns the inclusive day count of the period.
// A malformed period (End before Start) counts as zero days, which
// Prorate in turn resolves to a zero amount.
func (p BillingPeriod) TotalDays() int {
	days := int(Day(p.End).Sub(Day(p.Start)).Hours()/24) + 1
	if days < 0 {
		return 0
	}
	return days
}

// UsedDaysFrom returns the inclusive day count from activeFrom to the
// period end, clamped to the period: an activeFrom before Start counts
// the whole period, an activeFrom after End counts zero days.
func (p BillingPeriod) UsedDaysFrom(activeFrom time.Time) int {
	from := Day(activeFrom)
	if from.Before(Day(p.Start)) {
		from = Day(p.Start)
	}
	if from.After(Day(p.End)) {
		return 0
	}
	return int(Day(p.End).Sub(from).Hours()/24) + 1
}

// String returns a string representation of the period.
func (p BillingPeriod) String() string {
	return "[" + Day(p.Start).Format("2006-01-02") + ", " + Day(p.End).Format("2006-01-02") + "]"
}

// =============================================================================
// BILLING CYCLE - How often a contract is invoiced
// =============================================================================

type BillingCycle string

const (
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleAnnual    BillingCycle = "annual"
)

// PeriodFor returns the billing period containing the given date.
func (c BillingCycle) PeriodFor(date time.Time) BillingPeriod {
	d := Day(date)
	switch c {
	case CycleQuarterly:
		quarterStartMonth := time.Month(((int(d.Month())-1)/3)*3 + 1)
		start := time.Date(d.Year(), quarterStartMonth, 1, 0, 0, 0, 0, time.UTC)
		return BillingPeriod{Start: start, End: start.AddDate(0, 3, -1)}

	case CycleAnnual:
		start := time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return BillingPeriod{Start: start, End: start.AddDate(1, 0, -1)}

	default: // CycleMonthly or unset
		start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		return BillingPeriod{Start: start, End: start.AddDate(0, 1, -1)}
	}
}

// NextPeriodAfter returns the period following the one containing date.
func (c BillingCycle) NextPeriodAfter(date time.Time) BillingPeriod {
	current := c.PeriodFor(date)
	return c.PeriodFor(Day(current.End).AddDate(0, 0, 1))
}
