package factory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/revenue-engine/factory"
	"github.com/warp/revenue-engine/pricing"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestParse_ThreeBandSchedule(t *testing.T) {
	f := factory.NewPricingFactory()

	schedule, err := f.Parse(`{
		"base_price_per_seat": "100",
		"currency": "USD",
		"volume_tiers": [
			{"min_seats": "1",  "max_seats": "10", "price_per_seat": "100"},
			{"min_seats": "11", "max_seats": "50", "price_per_seat": "90"},
			{"min_seats": "51", "price_per_seat": "80"}
		]
	}`)

	require.NoError(t, err)
	assert.True(t, schedule.BasePricePerSeat.Equal(dec("100")))
	assert.Equal(t, "USD", schedule.Currency)
	require.Len(t, schedule.VolumeTiers, 3)

	assert.False(t, schedule.VolumeTiers[0].Unbounded())
	assert.True(t, schedule.VolumeTiers[2].Unbounded())
	assert.True(t, schedule.VolumeTiers[1].PricePerSeat.Equal(dec("90")))
}

func TestParse_PreservesTierOrder(t *testing.T) {
	// Input order is part of the configuration: the engine's
	// first-match-wins rule depends on it.
	f := factory.NewPricingFactory()

	schedule, err := f.Parse(`{
		"base_price_per_seat": "100",
		"currency": "USD",
		"volume_tiers": [
			{"min_seats": "51", "price_per_seat": "80"},
			{"min_seats": "1", "max_seats": "10", "price_per_seat": "100"}
		]
	}`)

	require.NoError(t, err)
	require.Len(t, schedule.VolumeTiers, 2)
	assert.True(t, schedule.VolumeTiers[0].MinSeats.Equal(dec("51")))
	assert.True(t, schedule.VolumeTiers[1].MinSeats.Equal(dec("1")))
}

func TestParse_DecimalPrecisionPreserved(t *testing.T) {
	f := factory.NewPricingFactory()

	schedule, err := f.Parse(`{
		"base_price_per_seat": "33.33",
		"currency": "USD",
		"volume_tiers": [{"min_seats": "0.5", "price_per_seat": "19.995"}]
	}`)

	require.NoError(t, err)
	assert.Equal(t, "33.33", schedule.BasePricePerSeat.String())
	assert.Equal(t, "19.995", schedule.VolumeTiers[0].PricePerSeat.String())
	assert.Equal(t, "0.5", schedule.VolumeTiers[0].MinSeats.String())
}

func TestParse_InvalidInputs(t *testing.T) {
	f := factory.NewPricingFactory()

	cases := map[string]string{
		"not json":          `{`,
		"missing base":      `{"currency": "USD"}`,
		"missing currency":  `{"base_price_per_seat": "100"}`,
		"lowercase currency": `{"base_price_per_seat": "100", "currency": "usd"}`,
		"bad decimal":       `{"base_price_per_seat": "ten", "currency": "USD"}`,
		"bad tier decimal": `{"base_price_per_seat": "100", "currency": "USD",
			"volume_tiers": [{"min_seats": "x", "price_per_seat": "1"}]}`,
		"tier missing price": `{"base_price_per_seat": "100", "currency": "USD",
			"volume_tiers": [{"min_seats": "1"}]}`,
	}

	for name, config := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.Parse(config)
			assert.Error(t, err)
		})
	}
}

func TestParse_NoTiers_IsValid(t *testing.T) {
	f := factory.NewPricingFactory()

	schedule, err := f.Parse(factory.FlatRateJSON("42.50", "EUR"))

	require.NoError(t, err)
	assert.Empty(t, schedule.VolumeTiers)
	assert.True(t, schedule.BasePricePerSeat.Equal(dec("42.50")))
}

func TestThreeBandJSON_RoundTripsThroughEngine(t *testing.T) {
	f := factory.NewPricingFactory()

	schedule, err := f.Parse(factory.ThreeBandJSON("100", "90", "80", "USD"))
	require.NoError(t, err)

	result := pricing.ResolveSeatPricing(dec("25"), schedule.BasePricePerSeat, schedule.VolumeTiers)
	assert.True(t, result.PricePerSeat.Equal(dec("90")))
	assert.True(t, result.Subtotal.Equal(dec("2250")))
}
