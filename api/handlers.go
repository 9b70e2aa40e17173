/*
handlers.go - HTTP API handlers for the revenue engine

PURPOSE:
  Exposes the billing domain via REST. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Accounts:
    GET    /api/accounts               List accounts (paginated)
    POST   /api/accounts               Create account
    GET    /api/accounts/{id}          Get account
    PUT    /api/accounts/{id}          Update account

  Products:
    GET    /api/products               List products (paginated)
    POST   /api/products               Create product
    GET    /api/products/{id}          Get product

  Contracts:
    GET    /api/contracts              List contracts (filter: account_id, status)
    POST   /api/contracts              Create contract
    GET    /api/contracts/{id}         Get contract
    PUT    /api/contracts/{id}/seats   Change seat count
    POST   /api/contracts/{id}/cancel  Cancel contract
    POST   /api/contracts/{id}/invoice Generate invoice on demand

  Invoices:
    GET    /api/invoices               List invoices (filter: account_id, contract_id, status)
    GET    /api/invoices/{id}          Get invoice
    POST   /api/invoices/{id}/issue    Issue draft invoice
    POST   /api/invoices/{id}/pay      Mark invoice paid
    POST   /api/invoices/{id}/void     Void invoice

  Jobs:
    GET    /api/jobs                   List billing jobs (filter: status)
    GET    /api/jobs/{id}              Get job
    POST   /api/jobs/run               Trigger an immediate worker pass

  Pricing:
    POST   /api/pricing/seats          Resolve seat pricing (preview)
    POST   /api/pricing/prorate        Prorate an amount (preview)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Entity not found
  - 409: Conflict (duplicate invoice, invalid status transition)
  - 500: Internal errors

SECURITY NOTE:
  No authentication middleware. All endpoints are public; deploy behind
  an authenticating proxy.

SEE ALSO:
  - dto.go: Request/response data structures
  - worker.go: Background billing worker
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/revenue-engine/billing"
	"github.com/warp/revenue-engine/factory"
	"github.com/warp/revenue-engine/pricing"
	"github.com/warp/revenue-engine/store/sqlite"
)

const dayFormat = "2006-01-02"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Factory  *factory.PricingFactory
	Invoicer *billing.Invoicer
	Log      *zap.Logger

	validate *validator.Validate

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Factory:  factory.NewPricingFactory(),
		Invoicer: billing.NewInvoicer(),
		Log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns accounts in the paginated envelope.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	accounts, total, err := h.Store.ListAccounts(r.Context(), sqlite.AccountFilter{
		Status: r.URL.Query().Get("status"),
		Page:   page,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}

	writeList(w, lo.Map(accounts, func(a billing.Account, _ int) AccountDTO {
		return toAccountDTO(a)
	}), total, page)
}

// GetAccount returns a single account.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.Store.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get account", err)
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(*account))
}

// CreateAccount creates a new account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	account := billing.Account{
		ID:     req.ID,
		Name:   req.Name,
		Email:  req.Email,
		Status: billing.AccountActive,
	}
	if err := h.Store.SaveAccount(r.Context(), account); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(account))
}

// UpdateAccount updates name, email, and status.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateAccountRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	existing, err := h.Store.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get account", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}

	existing.Name = req.Name
	existing.Email = req.Email
	existing.Status = billing.AccountStatus(req.Status)
	if err := h.Store.SaveAccount(r.Context(), *existing); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update account", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(*existing))
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns products in the paginated envelope.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	products, total, err := h.Store.ListProducts(r.Context(), page)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products", err)
		return
	}

	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dto, err := h.toProductDTO(p)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to decode product config", err)
			return
		}
		dtos = append(dtos, dto)
	}
	writeList(w, dtos, total, page)
}

// GetProduct returns a single product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.Store.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get product", err)
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "Product not found", nil)
		return
	}
	dto, err := h.toProductDTO(*product)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to decode product config", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// CreateProduct creates a product with a validated pricing config.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	// The factory is the single authority on config validity.
	schedule, err := h.Factory.Build(req.PricingConfig)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pricing config", err)
		return
	}

	configJSON, err := json.Marshal(req.PricingConfig)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode pricing config", err)
		return
	}

	product := billing.Product{
		ID:            req.ID,
		Name:          req.Name,
		Currency:      schedule.Currency,
		PricingConfig: string(configJSON),
	}
	if err := h.Store.SaveProduct(r.Context(), product); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create product", err)
		return
	}

	dto, _ := h.toProductDTO(product)
	writeJSON(w, http.StatusCreated, dto)
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// ListContracts returns contracts filtered by account_id and status.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	contracts, total, err := h.Store.ListContracts(r.Context(), sqlite.ContractFilter{
		AccountID: r.URL.Query().Get("account_id"),
		Status:    r.URL.Query().Get("status"),
		Page:      page,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contracts", err)
		return
	}

	writeList(w, lo.Map(contracts, func(c billing.Contract, _ int) ContractDTO {
		return toContractDTO(c)
	}), total, page)
}

// GetContract returns a single contract.
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	contract, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get contract", err)
		return
	}
	if contract == nil {
		writeError(w, http.StatusNotFound, "Contract not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(*contract))
}

// CreateContract creates a contract against an existing account and product.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	seatCount, err := decimal.NewFromString(req.SeatCount)
	if err != nil || seatCount.IsNegative() {
		writeError(w, http.StatusBadRequest, "Invalid seat_count (must be a non-negative decimal)", err)
		return
	}

	ctx := r.Context()
	account, err := h.Store.GetAccount(ctx, req.AccountID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get account", err)
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}
	product, err := h.Store.GetProduct(ctx, req.ProductID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get product", err)
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, "Product not found", nil)
		return
	}

	startDate, _ := time.Parse(dayFormat, req.StartDate)
	contract := billing.Contract{
		ID:        req.ID,
		AccountID: req.AccountID,
		ProductID: req.ProductID,
		SeatCount: seatCount,
		Cycle:     pricing.BillingCycle(req.Cycle),
		StartDate: startDate,
		Status:    billing.ContractActive,
	}
	if req.Draft {
		contract.Status = billing.ContractDraft
	}
	if req.EndDate != nil {
		end, _ := time.Parse(dayFormat, *req.EndDate)
		contract.EndDate = &end
	}

	if err := h.Store.SaveContract(ctx, contract); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create contract", err)
		return
	}
	writeJSON(w, http.StatusCreated, toContractDTO(contract))
}

// UpdateContractSeats changes the seat count of a contract. The new
// count takes effect for the next billing run; already-issued invoices
// are untouched.
func (h *Handler) UpdateContractSeats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateContractSeatsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	seatCount, err := decimal.NewFromString(req.SeatCount)
	if err != nil || seatCount.IsNegative() {
		writeError(w, http.StatusBadRequest, "Invalid seat_count (must be a non-negative decimal)", err)
		return
	}

	contract, err := h.Store.GetContract(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get contract", err)
		return
	}
	if contract == nil {
		writeError(w, http.StatusNotFound, "Contract not found", nil)
		return
	}

	contract.SeatCount = seatCount
	if err := h.Store.SaveContract(r.Context(), *contract); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update contract", err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(*contract))
}

// CancelContract moves a contract to canceled, ending billing.
func (h *Handler) CancelContract(w http.ResponseWriter, r *http.Request) {
	contract, err := h.Store.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get contract", err)
		return
	}
	if contract == nil {
		writeError(w, http.StatusNotFound, "Contract not found", nil)
		return
	}
	if contract.Status != billing.ContractActive {
		writeError(w, http.StatusConflict, "Only active contracts can be canceled", nil)
		return
	}

	now := pricing.Day(time.Now().UTC())
	contract.Status = billing.ContractCanceled
	contract.EndDate = &now
	if err := h.Store.SaveContract(r.Context(), *contract); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to cancel contract", err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(*contract))
}

// GenerateContractInvoice runs an on-demand billing pass for one
// contract and period.
// POST /api/contracts/{id}/invoice
func (h *Handler) GenerateContractInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req := GenerateInvoiceRequest{}
	if r.ContentLength > 0 && !h.decodeAndValidate(w, r, &req) {
		return
	}
	at := time.Now().UTC()
	if req.PeriodDate != "" {
		at, _ = time.Parse(dayFormat, req.PeriodDate)
	}

	invoice, err := h.BillContract(r.Context(), id, at)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceDTO(*invoice))
}

// BillContract generates and persists an invoice for the contract's
// billing period containing at. Shared by the on-demand endpoint and
// the background worker.
func (h *Handler) BillContract(ctx context.Context, contractID string, at time.Time) (*billing.Invoice, error) {
	contract, err := h.Store.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, billing.ErrContractNotFound
	}

	account, err := h.Store.GetAccount(ctx, contract.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, billing.ErrAccountNotFound
	}

	product, err := h.Store.GetProduct(ctx, contract.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, billing.ErrProductNotFound
	}

	schedule, err := h.Factory.Parse(product.PricingConfig)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", product.ID, err)
	}

	period := contract.Cycle.PeriodFor(at)
	invoice, err := h.Invoicer.GenerateInvoice(billing.InvoiceInput{
		Contract: *contract,
		Account:  *account,
		Schedule: *schedule,
		Period:   period,
	})
	if err != nil {
		return nil, err
	}

	if err := h.Store.SaveInvoice(ctx, *invoice); err != nil {
		return nil, err
	}

	h.Log.Info("invoice generated",
		zap.String("invoice_id", invoice.ID),
		zap.String("contract_id", contractID),
		zap.String("period", period.String()),
		zap.String("total", invoice.Total.String()))

	return invoice, nil
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

// ListInvoices returns invoices filtered by account_id, contract_id, status.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	invoices, total, err := h.Store.ListInvoices(r.Context(), sqlite.InvoiceFilter{
		AccountID:  r.URL.Query().Get("account_id"),
		ContractID: r.URL.Query().Get("contract_id"),
		Status:     r.URL.Query().Get("status"),
		Page:       page,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list invoices", err)
		return
	}

	writeList(w, lo.Map(invoices, func(inv billing.Invoice, _ int) InvoiceDTO {
		return toInvoiceDTO(inv)
	}), total, page)
}

// GetInvoice returns a single invoice.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.Store.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get invoice", err)
		return
	}
	if invoice == nil {
		writeError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(*invoice))
}

// IssueInvoice transitions draft -> issued.
func (h *Handler) IssueInvoice(w http.ResponseWriter, r *http.Request) {
	h.transitionInvoice(w, r, func(inv *billing.Invoice) error { return inv.Issue() })
}

// PayInvoice transitions issued -> paid.
func (h *Handler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	h.transitionInvoice(w, r, func(inv *billing.Invoice) error { return inv.MarkPaid() })
}

// VoidInvoice cancels a draft or issued invoice.
func (h *Handler) VoidInvoice(w http.ResponseWriter, r *http.Request) {
	h.transitionInvoice(w, r, func(inv *billing.Invoice) error { return inv.Void() })
}

func (h *Handler) transitionInvoice(w http.ResponseWriter, r *http.Request, transition func(*billing.Invoice) error) {
	invoice, err := h.Store.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get invoice", err)
		return
	}
	if invoice == nil {
		writeError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}

	// Domain validates the transition; the store only persists it.
	if err := transition(invoice); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Store.UpdateInvoiceStatus(r.Context(), invoice.ID, invoice.Status); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(*invoice))
}

// =============================================================================
// JOB HANDLERS
// =============================================================================

// ListJobs returns billing jobs filtered by status.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	jobs, total, err := h.Store.ListJobs(r.Context(), sqlite.JobFilter{
		ContractID: r.URL.Query().Get("contract_id"),
		Status:     r.URL.Query().Get("status"),
		Page:       page,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list jobs", err)
		return
	}

	writeList(w, lo.Map(jobs, func(j billing.Job, _ int) JobDTO {
		return toJobDTO(j)
	}), total, page)
}

// GetJob returns a single billing job.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Store.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get job", err)
		return
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "Job not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(*job))
}

// =============================================================================
// PRICING PREVIEW HANDLERS
// =============================================================================

// PreviewSeatPricing runs the pricing engine on ad-hoc inputs.
// POST /api/pricing/seats
func (h *Handler) PreviewSeatPricing(w http.ResponseWriter, r *http.Request) {
	var req SeatPricingRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	seatCount, err := decimal.NewFromString(req.SeatCount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid seat_count", err)
		return
	}
	basePrice, err := decimal.NewFromString(req.BasePricePerSeat)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid base_price_per_seat", err)
		return
	}

	// Reuse the factory's tier parsing so preview and stored configs
	// agree on syntax.
	schedule, err := h.Factory.Build(factory.PricingConfigJSON{
		BasePricePerSeat: req.BasePricePerSeat,
		Currency:         "USD",
		VolumeTiers:      req.VolumeTiers,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid volume_tiers", err)
		return
	}

	result := pricing.ResolveSeatPricing(seatCount, basePrice, schedule.VolumeTiers)
	writeJSON(w, http.StatusOK, toSeatPricingResultDTO(result))
}

// PreviewProrate runs the proration engine on ad-hoc inputs.
// POST /api/pricing/prorate
func (h *Handler) PreviewProrate(w http.ResponseWriter, r *http.Request) {
	var req ProrateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	fullAmount, err := decimal.NewFromString(req.FullAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid full_amount", err)
		return
	}

	amount := pricing.Prorate(fullAmount, req.TotalDays, req.UsedDays)
	writeJSON(w, http.StatusOK, ProrateResultDTO{Amount: amount.String()})
}

// =============================================================================
// DTO CONVERSION
// =============================================================================

func toAccountDTO(a billing.Account) AccountDTO {
	return AccountDTO{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Status:    string(a.Status),
		CreatedAt: formatTime(a.CreatedAt),
	}
}

func (h *Handler) toProductDTO(p billing.Product) (ProductDTO, error) {
	var cfg factory.PricingConfigJSON
	if err := json.Unmarshal([]byte(p.PricingConfig), &cfg); err != nil {
		return ProductDTO{}, fmt.Errorf("product %s: %w", p.ID, err)
	}
	return ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Currency:      p.Currency,
		PricingConfig: cfg,
		CreatedAt:     formatTime(p.CreatedAt),
	}, nil
}

func toContractDTO(c billing.Contract) ContractDTO {
	dto := ContractDTO{
		ID:        c.ID,
		AccountID: c.AccountID,
		ProductID: c.ProductID,
		SeatCount: c.SeatCount.String(),
		Cycle:     string(c.Cycle),
		StartDate: pricing.Day(c.StartDate).Format(dayFormat),
		Status:    string(c.Status),
		CreatedAt: formatTime(c.CreatedAt),
	}
	if c.EndDate != nil {
		end := pricing.Day(*c.EndDate).Format(dayFormat)
		dto.EndDate = &end
	}
	return dto
}

func toInvoiceDTO(inv billing.Invoice) InvoiceDTO {
	dto := InvoiceDTO{
		ID:           inv.ID,
		ContractID:   inv.ContractID,
		AccountID:    inv.AccountID,
		PeriodStart:  pricing.Day(inv.PeriodStart).Format(dayFormat),
		PeriodEnd:    pricing.Day(inv.PeriodEnd).Format(dayFormat),
		SeatCount:    inv.SeatCount.String(),
		PricePerSeat: inv.PricePerSeat.String(),
		Subtotal:     inv.Subtotal.String(),
		Total:        inv.Total.String(),
		Currency:     inv.Currency,
		TotalDays:    inv.TotalDays,
		UsedDays:     inv.UsedDays,
		Prorated:     inv.Prorated(),
		Status:       string(inv.Status),
		CreatedAt:    formatTime(inv.CreatedAt),
	}
	if inv.TierMinSeats != nil {
		s := inv.TierMinSeats.String()
		dto.TierMinSeats = &s
	}
	if inv.TierMaxSeats != nil {
		s := inv.TierMaxSeats.String()
		dto.TierMaxSeats = &s
	}
	return dto
}

func toJobDTO(j billing.Job) JobDTO {
	return JobDTO{
		ID:          j.ID,
		ContractID:  j.ContractID,
		PeriodStart: pricing.Day(j.PeriodStart).Format(dayFormat),
		PeriodEnd:   pricing.Day(j.PeriodEnd).Format(dayFormat),
		Status:      string(j.Status),
		Attempts:    j.Attempts,
		MaxAttempts: j.MaxAttempts,
		LastError:   j.LastError,
		RunAt:       j.RunAt.UTC().Format(time.RFC3339),
		InvoiceID:   j.InvoiceID,
		CreatedAt:   formatTime(j.CreatedAt),
	}
}

func toSeatPricingResultDTO(result pricing.SeatPricingResult) SeatPricingResultDTO {
	dto := SeatPricingResultDTO{
		SeatCount:    result.SeatCount.String(),
		PricePerSeat: result.PricePerSeat.String(),
		Subtotal:     result.Subtotal.String(),
	}
	if result.AppliedTier != nil {
		tier := VolumeTierDTO{
			MinSeats:     result.AppliedTier.MinSeats.String(),
			PricePerSeat: result.AppliedTier.PricePerSeat.String(),
		}
		if result.AppliedTier.MaxSeats != nil {
			s := result.AppliedTier.MaxSeats.String()
			tier.MaxSeats = &s
		}
		dto.AppliedTier = &tier
	}
	return dto
}

// =============================================================================
// HELPERS
// =============================================================================

// decodeAndValidate decodes the JSON body into dst and validates it,
// writing a 400 and returning false on failure.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// parsePage reads page/limit query parameters.
func parsePage(r *http.Request) sqlite.Page {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return sqlite.Page{Number: page, Limit: limit}
}

// writeList wraps data in the paginated envelope. Page values are
// echoed back normalized (the values actually applied, not the raw
// query input).
func writeList(w http.ResponseWriter, data any, total int, page sqlite.Page) {
	applied := page.Normalize()
	writeJSON(w, http.StatusOK, ListEnvelope{
		Data:  data,
		Total: total,
		Page:  applied.Number,
		Limit: applied.Limit,
	})
}

// writeDomainError maps billing errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case billing.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case billing.IsClientError(err):
		writeError(w, http.StatusConflict, "Conflict", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
