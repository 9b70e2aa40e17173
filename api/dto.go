/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

LIST ENVELOPE:
  Every list endpoint returns the same paginated envelope:

    {"data": [...], "total": 42, "page": 2, "limit": 20}

  total is the full match count, not the page size, so clients can
  render pagination controls.

MONEY FIELDS:
  Monetary and seat values are JSON strings ("49.995"), never numbers.
  A JSON number round-trips through float64 and loses the exactness the
  pricing engine guarantees.

VALIDATION:
  Request structs carry validate tags checked by go-playground/validator
  in the handlers. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/pricing.go: PricingConfigJSON and VolumeTierJSON
*/
package api

import (
	"github.com/warp/revenue-engine/factory"
)

// =============================================================================
// LIST ENVELOPE
// =============================================================================

// ListEnvelope is the paginated response wrapper shared by all list
// endpoints.
type ListEnvelope struct {
	Data  any `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ErrorResponse is the JSON body for all error statuses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// ACCOUNTS
// =============================================================================

type AccountDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
}

type CreateAccountRequest struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

type UpdateAccountRequest struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"omitempty,email"`
	Status string `json:"status" validate:"required,oneof=active suspended closed"`
}

// =============================================================================
// PRODUCTS
// =============================================================================

type ProductDTO struct {
	ID            string                    `json:"id"`
	Name          string                    `json:"name"`
	Currency      string                    `json:"currency"`
	PricingConfig factory.PricingConfigJSON `json:"pricing_config"`
	CreatedAt     string                    `json:"created_at,omitempty"`
}

type CreateProductRequest struct {
	ID            string                    `json:"id" validate:"required"`
	Name          string                    `json:"name" validate:"required"`
	PricingConfig factory.PricingConfigJSON `json:"pricing_config" validate:"required"`
}

// =============================================================================
// CONTRACTS
// =============================================================================

type ContractDTO struct {
	ID        string  `json:"id"`
	AccountID string  `json:"account_id"`
	ProductID string  `json:"product_id"`
	SeatCount string  `json:"seat_count"`
	Cycle     string  `json:"billing_cycle"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at,omitempty"`
}

type CreateContractRequest struct {
	ID        string  `json:"id" validate:"required"`
	AccountID string  `json:"account_id" validate:"required"`
	ProductID string  `json:"product_id" validate:"required"`
	SeatCount string  `json:"seat_count" validate:"required"`
	Cycle     string  `json:"billing_cycle" validate:"required,oneof=monthly quarterly annual"`
	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	// New contracts activate immediately unless created as drafts.
	Draft bool `json:"draft,omitempty"`
}

type UpdateContractSeatsRequest struct {
	SeatCount string `json:"seat_count" validate:"required"`
}

// GenerateInvoiceRequest selects the billing period for an on-demand
// invoice run. Empty period_date means the current period.
type GenerateInvoiceRequest struct {
	PeriodDate string `json:"period_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// =============================================================================
// INVOICES
// =============================================================================

type InvoiceDTO struct {
	ID           string  `json:"id"`
	ContractID   string  `json:"contract_id"`
	AccountID    string  `json:"account_id"`
	PeriodStart  string  `json:"period_start"`
	PeriodEnd    string  `json:"period_end"`
	SeatCount    string  `json:"seat_count"`
	PricePerSeat string  `json:"price_per_seat"`
	Subtotal     string  `json:"subtotal"`
	Total        string  `json:"total"`
	Currency     string  `json:"currency"`
	TierMinSeats *string `json:"tier_min_seats,omitempty"`
	TierMaxSeats *string `json:"tier_max_seats,omitempty"`
	TotalDays    int     `json:"total_days"`
	UsedDays     int     `json:"used_days"`
	Prorated     bool    `json:"prorated"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

// =============================================================================
// BILLING JOBS
// =============================================================================

type JobDTO struct {
	ID          string `json:"id"`
	ContractID  string `json:"contract_id"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	Status      string `json:"status"`
	Attempts    int    `json:"attempts"`
	MaxAttempts int    `json:"max_attempts"`
	LastError   string `json:"last_error,omitempty"`
	RunAt       string `json:"run_at"`
	InvoiceID   string `json:"invoice_id,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// =============================================================================
// PRICING PREVIEW
// =============================================================================

// SeatPricingRequest feeds the pricing engine directly, without touching
// any stored entity. Used by the admin UI to preview schedule changes.
type SeatPricingRequest struct {
	SeatCount        string                   `json:"seat_count" validate:"required"`
	BasePricePerSeat string                   `json:"base_price_per_seat" validate:"required"`
	VolumeTiers      []factory.VolumeTierJSON `json:"volume_tiers,omitempty" validate:"omitempty,dive"`
}

type SeatPricingResultDTO struct {
	SeatCount    string         `json:"seat_count"`
	PricePerSeat string         `json:"price_per_seat"`
	Subtotal     string         `json:"subtotal"`
	AppliedTier  *VolumeTierDTO `json:"applied_tier,omitempty"`
}

type VolumeTierDTO struct {
	MinSeats     string  `json:"min_seats"`
	MaxSeats     *string `json:"max_seats,omitempty"`
	PricePerSeat string  `json:"price_per_seat"`
}

type ProrateRequest struct {
	FullAmount string `json:"full_amount" validate:"required"`
	TotalDays  int    `json:"total_days"`
	UsedDays   int    `json:"used_days"`
}

type ProrateResultDTO struct {
	Amount string `json:"amount"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}
