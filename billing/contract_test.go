package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/revenue-engine/billing"
	"github.com/warp/revenue-engine/pricing"
)

func TestContract_ActiveDuring(t *testing.T) {
	april := april2025()

	cases := []struct {
		name     string
		status   billing.ContractStatus
		start    time.Time
		end      *time.Time
		expected bool
	}{
		{"active spanning period", billing.ContractActive, date(2025, time.January, 1), nil, true},
		{"starts inside period", billing.ContractActive, date(2025, time.April, 20), nil, true},
		{"starts on last day", billing.ContractActive, date(2025, time.April, 30), nil, true},
		{"starts after period", billing.ContractActive, date(2025, time.May, 1), nil, false},
		{"ended before period", billing.ContractActive, date(2025, time.January, 1), timePtr(date(2025, time.March, 15)), false},
		{"ends on first day", billing.ContractActive, date(2025, time.January, 1), timePtr(date(2025, time.April, 1)), true},
		{"draft never active", billing.ContractDraft, date(2025, time.January, 1), nil, false},
		{"canceled never active", billing.ContractCanceled, date(2025, time.January, 1), nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := billing.Contract{
				Status:    tc.status,
				StartDate: tc.start,
				EndDate:   tc.end,
				Cycle:     pricing.CycleMonthly,
			}
			assert.Equal(t, tc.expected, c.ActiveDuring(april))
		})
	}
}

func TestContract_BillableDays(t *testing.T) {
	april := april2025()

	full := billing.Contract{Status: billing.ContractActive, StartDate: date(2025, time.January, 1)}
	assert.Equal(t, 30, full.BillableDays(april))

	midStart := billing.Contract{Status: billing.ContractActive, StartDate: date(2025, time.April, 16)}
	assert.Equal(t, 15, midStart.BillableDays(april))

	oneDay := billing.Contract{
		Status:    billing.ContractActive,
		StartDate: date(2025, time.April, 10),
		EndDate:   timePtr(date(2025, time.April, 10)),
	}
	assert.Equal(t, 1, oneDay.BillableDays(april))

	inactive := billing.Contract{Status: billing.ContractDraft, StartDate: date(2025, time.January, 1)}
	assert.Equal(t, 0, inactive.BillableDays(april))
}

func timePtr(t time.Time) *time.Time { return &t }
