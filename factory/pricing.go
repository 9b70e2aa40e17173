/*
Package factory provides JSON to Go pricing-schedule conversion.

PURPOSE:
  Converts JSON pricing configurations into billing.PriceSchedule values.
  This enables pricing changes without code changes - operators define a
  product's base price and volume tiers in JSON, stored on the product
  record, and the factory builds the proper Go structs for the engine.

WHY JSON?
  - Non-developers can adjust pricing
  - Easy integration with the admin UI
  - Version control for pricing definitions
  - Database storage of product configs

JSON SCHEMA:
  {
    "base_price_per_seat": "100",
    "currency": "USD",
    "volume_tiers": [
      {"min_seats": "1",  "max_seats": "10", "price_per_seat": "100"},
      {"min_seats": "11", "max_seats": "50", "price_per_seat": "90"},
      {"min_seats": "51", "price_per_seat": "80"}
    ]
  }

  Prices and seat bounds are JSON strings, not numbers: they are parsed
  as exact decimals, and a JSON number would round-trip through float64.
  Omitting max_seats makes a tier unbounded.

VALIDATION:
  Structural validation (required fields, decimal syntax) happens here,
  at the configuration boundary. The engine itself deliberately accepts
  unsorted/gapped/overlapping tier lists, so the factory does not reject
  them either - it only rejects configs it cannot parse.

USAGE:
  f := factory.NewPricingFactory()
  schedule, err := f.Parse(product.PricingConfig)
  result := pricing.ResolveSeatPricing(seats, schedule.BasePricePerSeat, schedule.VolumeTiers)

SEE ALSO:
  - billing/types.go: PriceSchedule
  - pricing/types.go: VolumeTier
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/warp/revenue-engine/billing"
	"github.com/warp/revenue-engine/pricing"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PricingConfigJSON is the JSON representation of a product's pricing.
type PricingConfigJSON struct {
	BasePricePerSeat string           `json:"base_price_per_seat" validate:"required"`
	Currency         string           `json:"currency" validate:"required,len=3,uppercase"`
	VolumeTiers      []VolumeTierJSON `json:"volume_tiers,omitempty" validate:"omitempty,dive"`
}

// VolumeTierJSON is one band of the schedule. max_seats omitted or null
// means no upper bound.
type VolumeTierJSON struct {
	MinSeats     string  `json:"min_seats" validate:"required"`
	MaxSeats     *string `json:"max_seats,omitempty"`
	PricePerSeat string  `json:"price_per_seat" validate:"required"`
}

// =============================================================================
// PRICING FACTORY
// =============================================================================

type PricingFactory struct {
	validate *validator.Validate
}

func NewPricingFactory() *PricingFactory {
	return &PricingFactory{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Parse converts a JSON pricing config into a PriceSchedule.
func (f *PricingFactory) Parse(configJSON string) (*billing.PriceSchedule, error) {
	var cfg PricingConfigJSON
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return nil, fmt.Errorf("invalid pricing config JSON: %w", err)
	}
	return f.Build(cfg)
}

// Build converts an already-decoded config into a PriceSchedule.
func (f *PricingFactory) Build(cfg PricingConfigJSON) (*billing.PriceSchedule, error) {
	if err := f.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid pricing config: %w", err)
	}

	basePrice, err := decimal.NewFromString(cfg.BasePricePerSeat)
	if err != nil {
		return nil, fmt.Errorf("invalid base_price_per_seat %q: %w", cfg.BasePricePerSeat, err)
	}

	// Tier order is preserved exactly as supplied: the engine's
	// first-match-wins rule makes input order part of the configuration.
	tiers := make([]pricing.VolumeTier, 0, len(cfg.VolumeTiers))
	for i, tj := range cfg.VolumeTiers {
		tier, err := buildTier(tj)
		if err != nil {
			return nil, fmt.Errorf("volume_tiers[%d]: %w", i, err)
		}
		tiers = append(tiers, tier)
	}

	return &billing.PriceSchedule{
		BasePricePerSeat: basePrice,
		Currency:         cfg.Currency,
		VolumeTiers:      tiers,
	}, nil
}

func buildTier(tj VolumeTierJSON) (pricing.VolumeTier, error) {
	min, err := decimal.NewFromString(tj.MinSeats)
	if err != nil {
		return pricing.VolumeTier{}, fmt.Errorf("invalid min_seats %q: %w", tj.MinSeats, err)
	}
	price, err := decimal.NewFromString(tj.PricePerSeat)
	if err != nil {
		return pricing.VolumeTier{}, fmt.Errorf("invalid price_per_seat %q: %w", tj.PricePerSeat, err)
	}
	if tj.MaxSeats == nil {
		return pricing.NewTier(min, price), nil
	}
	max, err := decimal.NewFromString(*tj.MaxSeats)
	if err != nil {
		return pricing.VolumeTier{}, fmt.Errorf("invalid max_seats %q: %w", *tj.MaxSeats, err)
	}
	return pricing.NewBoundedTier(min, max, price), nil
}

// =============================================================================
// PRESETS - Canonical configs for demos and tests
// =============================================================================

// FlatRateJSON returns a config with no volume discounts.
func FlatRateJSON(pricePerSeat, currency string) string {
	cfg := PricingConfigJSON{BasePricePerSeat: pricePerSeat, Currency: currency}
	b, _ := json.Marshal(cfg)
	return string(b)
}

// ThreeBandJSON returns the canonical three-band schedule: full price up
// to 10 seats, 10% off at 11-50, 20% off above 50.
func ThreeBandJSON(basePrice, midPrice, topPrice, currency string) string {
	cfg := PricingConfigJSON{
		BasePricePerSeat: basePrice,
		Currency:         currency,
		VolumeTiers: []VolumeTierJSON{
			{MinSeats: "1", MaxSeats: strPtr("10"), PricePerSeat: basePrice},
			{MinSeats: "11", MaxSeats: strPtr("50"), PricePerSeat: midPrice},
			{MinSeats: "51", PricePerSeat: topPrice},
		},
	}
	b, _ := json.Marshal(cfg)
	return string(b)
}

func strPtr(s string) *string { return &s }
