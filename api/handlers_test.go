/*
handlers_test.go - HTTP-level tests for the API

Tests drive the real router with httptest against an in-memory store:
- CRUD round-trips and the paginated list envelope
- On-demand invoice generation (full and prorated periods)
- Duplicate invoice rejection
- Invoice lifecycle transitions
- Pricing preview endpoints
- Scenario loading
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/revenue-engine/factory"
	"github.com/warp/revenue-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *Handler) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, nil)
	srv := httptest.NewServer(NewRouter(h, nil, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, h
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func decodeInto(t *testing.T, data []byte, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, dst), "body: %s", data)
}

// seedBasics creates an account, a three-band product, and an active
// monthly contract with 15 seats starting 2025-01-01.
func seedBasics(t *testing.T, srv *httptest.Server) {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/accounts", CreateAccountRequest{
		ID: "acct-1", Name: "Acme", Email: "billing@acme.example",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

	var cfg factory.PricingConfigJSON
	decodeJSONConfig(t, factory.ThreeBandJSON("100", "90", "80", "USD"), &cfg)
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/products", CreateProductRequest{
		ID: "prod-1", Name: "Team Plan", PricingConfig: cfg,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/contracts", CreateContractRequest{
		ID: "ctr-1", AccountID: "acct-1", ProductID: "prod-1",
		SeatCount: "15", Cycle: "monthly", StartDate: "2025-01-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
}

func decodeJSONConfig(t *testing.T, raw string, dst *factory.PricingConfigJSON) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(raw), dst))
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func TestAccounts_CRUDAndEnvelope(t *testing.T) {
	srv, _ := newTestServer(t)

	// GIVEN: Three accounts
	for i := 1; i <= 3; i++ {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/accounts", CreateAccountRequest{
			ID: fmt.Sprintf("acct-%d", i), Name: fmt.Sprintf("Account %d", i),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
	}

	// WHEN: Listing with limit=2
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/accounts?limit=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// THEN: The envelope reports the full total but only one page of data
	var envelope struct {
		Data  []AccountDTO `json:"data"`
		Total int          `json:"total"`
		Page  int          `json:"page"`
		Limit int          `json:"limit"`
	}
	decodeInto(t, body, &envelope)
	assert.Equal(t, 3, envelope.Total)
	assert.Len(t, envelope.Data, 2)
	assert.Equal(t, 1, envelope.Page)
	assert.Equal(t, 2, envelope.Limit)

	// AND: Update changes status
	resp, body = doJSON(t, http.MethodPut, srv.URL+"/api/accounts/acct-1", UpdateAccountRequest{
		Name: "Account 1", Status: "suspended",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
	var acct AccountDTO
	decodeInto(t, body, &acct)
	assert.Equal(t, "suspended", acct.Status)
}

func TestAccounts_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/accounts/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAccounts_ValidationFailure(t *testing.T) {
	srv, _ := newTestServer(t)

	// Missing required name
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/accounts", CreateAccountRequest{
		ID: "acct-x",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errResp ErrorResponse
	decodeInto(t, body, &errResp)
	assert.NotEmpty(t, errResp.Error)
}

// =============================================================================
// PRODUCTS
// =============================================================================

func TestProducts_RejectsInvalidPricingConfig(t *testing.T) {
	srv, _ := newTestServer(t)

	// GIVEN: A config with a non-decimal price
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/products", CreateProductRequest{
		ID: "prod-bad", Name: "Bad",
		PricingConfig: factory.PricingConfigJSON{
			BasePricePerSeat: "not-a-number",
			Currency:         "USD",
		},
	})

	// THEN: Rejected before anything is stored
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/products/prod-bad", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProducts_RoundTripConfig(t *testing.T) {
	srv, _ := newTestServer(t)
	seedBasics(t, srv)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/products/prod-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var product ProductDTO
	decodeInto(t, body, &product)
	assert.Equal(t, "USD", product.Currency)
	require.Len(t, product.PricingConfig.VolumeTiers, 3)
	assert.Equal(t, "90", product.PricingConfig.VolumeTiers[1].PricePerSeat)
}

// =============================================================================
// CONTRACTS AND INVOICING
// =============================================================================

func TestGenerateInvoice_FullPeriodWithTier(t *testing.T) {
	srv, _ := newTestServer(t)
	seedBasics(t, srv)

	// WHEN: Billing a full month after the contract start
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/contracts/ctr-1/invoice",
		GenerateInvoiceRequest{PeriodDate: "2025-03-10"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

	// THEN: 15 seats hit the 11-50 band at 90/seat, no proration
	var invoice InvoiceDTO
	decodeInto(t, body, &invoice)
	assert.Equal(t, "15", invoice.SeatCount)
	assert.Equal(t, "90", invoice.PricePerSeat)
	assert.Equal(t, "1350", invoice.Subtotal)
	assert.Equal(t, "1350", invoice.Total)
	assert.False(t, invoice.Prorated)
	require.NotNil(t, invoice.TierMinSeats)
	assert.Equal(t, "11", *invoice.TierMinSeats)
	assert.Equal(t, "draft", invoice.Status)
}

func TestGenerateInvoice_ProratedFirstPeriod(t *testing.T) {
	srv, _ := newTestServer(t)
	seedBasics(t, srv)

	// GIVEN: A contract starting mid-January
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/contracts", CreateContractRequest{
		ID: "ctr-mid", AccountID: "acct-1", ProductID: "prod-1",
		SeatCount: "5", Cycle: "monthly", StartDate: "2025-01-17",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

	// WHEN: Billing January
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/contracts/ctr-mid/invoice",
		GenerateInvoiceRequest{PeriodDate: "2025-01-20"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

	// THEN: 15 of 31 days billed; 5 seats x 100 x 15/31
	var invoice InvoiceDTO
	decodeInto(t, body, &invoice)
	assert.Equal(t, 31, invoice.TotalDays)
	assert.Equal(t, 15, invoice.UsedDays)
	assert.True(t, invoice.Prorated)
	assert.Equal(t, "500", invoice.Subtotal)
	assert.Equal(t, "241.9354838709677419", invoice.Total)
}

func TestGenerateInvoice_DuplicateRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	seedBasics(t, srv)

	req := GenerateInvoiceRequest{PeriodDate: "2025-02-01"}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/contracts/ctr-1/invoice", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

	// Second run for the same period conflicts
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/contracts/ctr-1/invoice", req)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGenerateInvoice_SuspendedAccountRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	seedBasics(t, srv)

	resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/accounts/acct-1", UpdateAccountRequest{
		Name: "Acme", Status: "suspended",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/contracts/ctr-1/invoice",
		GenerateInvoiceRequest{PeriodDate: "2025-02-01"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCancelContract_SetsEndDate(t *testing.T) {
	srv, _ := newTestServer(t)
	seedBasics(t, srv)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/contracts/ctr-1/cancel", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	var contract ContractDTO
	decodeInto(t, body, &contract)
	assert.Equal(t, "canceled", contract.Status)
	require.NotNil(t, contract.EndDate)

	// Canceling again conflicts
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/contracts/ctr-1/cancel", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUpdateContractSeats(t *testing.T) {
	srv, _ := newTestServer(t)
	seedBasics(t, srv)

	resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/contracts/ctr-1/seats",
		UpdateContractSeatsRequest{SeatCount: "60"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	var contract ContractDTO
	decodeInto(t, body, &contract)
	assert.Equal(t, "60", contract.SeatCount)

	// Next invoice picks up the new count and the top band
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/contracts/ctr-1/invoice",
		GenerateInvoiceRequest{PeriodDate: "2025-04-01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
	var invoice InvoiceDTO
	decodeInto(t, body, &invoice)
	assert.Equal(t, "80", invoice.PricePerSeat)
	assert.Equal(t, "4800", invoice.Total)
}

// =============================================================================
// INVOICE LIFECYCLE
// =============================================================================

func TestInvoiceLifecycle_IssuePayVoid(t *testing.T) {
	srv, _ := newTestServer(t)
	seedBasics(t, srv)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/contracts/ctr-1/invoice",
		GenerateInvoiceRequest{PeriodDate: "2025-02-01"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
	var invoice InvoiceDTO
	decodeInto(t, body, &invoice)

	base := srv.URL + "/api/invoices/" + invoice.ID

	// Paying a draft invoice is rejected
	resp, _ = doJSON(t, http.MethodPost, base+"/pay", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// draft -> issued -> paid
	resp, body = doJSON(t, http.MethodPost, base+"/issue", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
	decodeInto(t, body, &invoice)
	assert.Equal(t, "issued", invoice.Status)

	resp, body = doJSON(t, http.MethodPost, base+"/pay", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
	decodeInto(t, body, &invoice)
	assert.Equal(t, "paid", invoice.Status)

	// Paid invoices cannot be voided
	resp, _ = doJSON(t, http.MethodPost, base+"/void", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestInvoiceVoid_AllowsRebilling(t *testing.T) {
	srv, _ := newTestServer(t)
	seedBasics(t, srv)

	req := GenerateInvoiceRequest{PeriodDate: "2025-02-01"}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/contracts/ctr-1/invoice", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
	var invoice InvoiceDTO
	decodeInto(t, body, &invoice)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/invoices/"+invoice.ID+"/void", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	// The period can be billed again once its invoice is void
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/contracts/ctr-1/invoice", req)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

// =============================================================================
// PRICING PREVIEWS
// =============================================================================

func TestPreviewSeatPricing(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/pricing/seats", SeatPricingRequest{
		SeatCount:        "15",
		BasePricePerSeat: "100",
		VolumeTiers: []factory.VolumeTierJSON{
			{MinSeats: "1", MaxSeats: strPtr("10"), PricePerSeat: "100"},
			{MinSeats: "11", MaxSeats: strPtr("50"), PricePerSeat: "90"},
			{MinSeats: "51", PricePerSeat: "80"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	var result SeatPricingResultDTO
	decodeInto(t, body, &result)
	assert.Equal(t, "90", result.PricePerSeat)
	assert.Equal(t, "1350", result.Subtotal)
	require.NotNil(t, result.AppliedTier)
	assert.Equal(t, "11", result.AppliedTier.MinSeats)
}

func TestPreviewSeatPricing_NoTiersUsesBasePrice(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/pricing/seats", SeatPricingRequest{
		SeatCount:        "7",
		BasePricePerSeat: "49.99",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	var result SeatPricingResultDTO
	decodeInto(t, body, &result)
	assert.Equal(t, "49.99", result.PricePerSeat)
	assert.Equal(t, "349.93", result.Subtotal)
	assert.Nil(t, result.AppliedTier)
}

func TestPreviewProrate(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/pricing/prorate", ProrateRequest{
		FullAmount: "99.99", TotalDays: 30, UsedDays: 15,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	var result ProrateResultDTO
	decodeInto(t, body, &result)
	assert.Equal(t, "49.995", result.Amount)
}

func TestPreviewProrate_ZeroDayPeriod(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/pricing/prorate", ProrateRequest{
		FullAmount: "100", TotalDays: 0, UsedDays: 5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	var result ProrateResultDTO
	decodeInto(t, body, &result)
	assert.Equal(t, "0", result.Amount)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios_LoadAndReset(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "volume-tiers"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	// The scenario seeds a contract and pre-generates an invoice
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/invoices", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var envelope struct {
		Data  []InvoiceDTO `json:"data"`
		Total int          `json:"total"`
	}
	decodeInto(t, body, &envelope)
	require.Equal(t, 1, envelope.Total)
	assert.Equal(t, "90", envelope.Data[0].PricePerSeat)

	// Current scenario is reported
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var current ScenarioDTO
	decodeInto(t, body, &current)
	assert.Equal(t, "volume-tiers", current.ID)

	// Reset clears everything
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/invoices", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, body, &envelope)
	assert.Equal(t, 0, envelope.Total)
}

func TestScenarios_UnknownID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "does-not-exist"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func strPtr(s string) *string { return &s }
