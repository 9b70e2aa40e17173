/*
Package sqlite provides the SQLite-backed persistence layer.

PURPOSE:
  Persists accounts, products, contracts, invoices, and billing jobs.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  accounts:      Billable customers
  products:      Seat-based offerings with JSON pricing configs
  contracts:     Account-to-product subscriptions
  invoices:      Computed charges (totals only, no line items)
  billing_jobs:  Queued billing work with retry state

INVOICE UNIQUENESS:
  One non-void invoice per contract+period, enforced by a partial unique
  index. SaveInvoice surfaces violations as billing.ErrDuplicateInvoice,
  which makes billing runs idempotent: re-running a period is a no-op.

DECIMAL STORAGE:
  Monetary and seat values are stored as TEXT and parsed back through
  shopspring/decimal. Storing them as SQLite REAL would reintroduce the
  binary-float rounding the pricing engine exists to avoid.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/revenue.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - billing/types.go: The domain types persisted here
  - api/handlers.go: The HTTP layer consuming the paginated queries
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/revenue-engine/billing"
	"github.com/warp/revenue-engine/pricing"
)

const (
	dayFormat = "2006-01-02"

	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Store implements persistence for all billing entities using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Accounts (billable customers)
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_status ON accounts(status);

	-- Products (seat-based offerings)
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		currency TEXT NOT NULL,
		pricing_config TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Contracts (account-to-product subscriptions)
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id),
		product_id TEXT NOT NULL REFERENCES products(id),
		seat_count TEXT NOT NULL,
		billing_cycle TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_account ON contracts(account_id);
	CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts(status);

	-- Invoices (computed totals only; no line items)
	CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id),
		account_id TEXT NOT NULL REFERENCES accounts(id),
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		seat_count TEXT NOT NULL,
		price_per_seat TEXT NOT NULL,
		subtotal TEXT NOT NULL,
		total TEXT NOT NULL,
		currency TEXT NOT NULL,
		tier_min_seats TEXT,
		tier_max_seats TEXT,
		total_days INTEGER NOT NULL,
		used_days INTEGER NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Billing runs are idempotent per contract+period: only one live
	-- (non-void) invoice may exist for a given contract and period.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_contract_period
		ON invoices(contract_id, period_start, period_end)
		WHERE status != 'void';

	CREATE INDEX IF NOT EXISTS idx_invoices_account ON invoices(account_id);
	CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices(status);

	-- Billing jobs (queued work with retry state)
	CREATE TABLE IF NOT EXISTS billing_jobs (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id),
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL,
		last_error TEXT,
		run_at TEXT NOT NULL,
		invoice_id TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Hot path for the worker: claimable jobs ordered by run_at
	CREATE INDEX IF NOT EXISTS idx_jobs_status_run_at
		ON billing_jobs(status, run_at);
	CREATE INDEX IF NOT EXISTS idx_jobs_contract
		ON billing_jobs(contract_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PAGINATION
// =============================================================================

// Page describes a pagination request. Zero values fall back to page 1
// with the default limit; limits are capped at maxPageLimit.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

func (p Page) offset() int { return (p.Number - 1) * p.Limit }

// =============================================================================
// ACCOUNTS
// =============================================================================

type AccountFilter struct {
	Status string
	Page   Page
}

func (s *Store) SaveAccount(ctx context.Context, a billing.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, email, status, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, email=excluded.email, status=excluded.status`,
		a.ID, a.Name, a.Email, string(a.Status), a.CreatedAt.Format(time.RFC3339))
	return err
}

func (s *Store) GetAccount(ctx context.Context, id string) (*billing.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, status, created_at FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (s *Store) ListAccounts(ctx context.Context, filter AccountFilter) ([]billing.Account, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := buildWhere(map[string]string{"status": filter.Status})
	page := filter.Page.Normalize()

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, status, created_at FROM accounts`+where+
			` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, page.Limit, page.offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []billing.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, total, rows.Err()
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (s *Store) SaveProduct(ctx context.Context, p billing.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, currency, pricing_config, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, currency=excluded.currency, pricing_config=excluded.pricing_config`,
		p.ID, p.Name, p.Currency, p.PricingConfig, p.CreatedAt.Format(time.RFC3339))
	return err
}

func (s *Store) GetProduct(ctx context.Context, id string) (*billing.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p billing.Product
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, currency, pricing_config, created_at FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Currency, &p.PricingConfig, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, page Page) ([]billing.Product, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page = page.Normalize()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, currency, pricing_config, created_at FROM products
		 ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, page.Limit, page.offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []billing.Product
	for rows.Next() {
		var p billing.Product
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.Currency, &p.PricingConfig, &createdAt); err != nil {
			return nil, 0, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// =============================================================================
// CONTRACTS
// =============================================================================

type ContractFilter struct {
	AccountID string
	Status    string
	Page      Page
}

func (s *Store) SaveContract(ctx context.Context, c billing.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	var endDate any
	if c.EndDate != nil {
		endDate = pricing.Day(*c.EndDate).Format(dayFormat)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts (id, account_id, product_id, seat_count, billing_cycle, start_date, end_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			seat_count=excluded.seat_count, billing_cycle=excluded.billing_cycle,
			start_date=excluded.start_date, end_date=excluded.end_date, status=excluded.status`,
		c.ID, c.AccountID, c.ProductID, c.SeatCount.String(), string(c.Cycle),
		pricing.Day(c.StartDate).Format(dayFormat), endDate, string(c.Status),
		c.CreatedAt.Format(time.RFC3339))
	return err
}

func (s *Store) GetContract(ctx context.Context, id string) (*billing.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, product_id, seat_count, billing_cycle, start_date, end_date, status, created_at
		FROM contracts WHERE id = ?`, id)
	return scanContract(row)
}

func (s *Store) ListContracts(ctx context.Context, filter ContractFilter) ([]billing.Contract, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := buildWhere(map[string]string{
		"account_id": filter.AccountID,
		"status":     filter.Status,
	})
	page := filter.Page.Normalize()

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contracts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, product_id, seat_count, billing_cycle, start_date, end_date, status, created_at
		FROM contracts`+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, page.Limit, page.offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var contracts []billing.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, 0, err
		}
		contracts = append(contracts, *c)
	}
	return contracts, total, rows.Err()
}

// ListActiveContracts returns every active contract. Used by the billing
// worker to find contracts due for invoicing.
func (s *Store) ListActiveContracts(ctx context.Context) ([]billing.Contract, error) {
	var contracts []billing.Contract
	for page := 1; ; page++ {
		batch, total, err := s.ListContracts(ctx, ContractFilter{
			Status: string(billing.ContractActive),
			Page:   Page{Number: page, Limit: maxPageLimit},
		})
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, batch...)
		if len(batch) == 0 || len(contracts) >= total {
			break
		}
	}
	return contracts, nil
}

// =============================================================================
// INVOICES
// =============================================================================

type InvoiceFilter struct {
	AccountID  string
	ContractID string
	Status     string
	Page       Page
}

// SaveInvoice inserts a new invoice. Returns billing.ErrDuplicateInvoice
// when a non-void invoice already covers the same contract and period.
func (s *Store) SaveInvoice(ctx context.Context, inv billing.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.hasInvoiceForPeriodLocked(ctx, inv.ContractID, inv.PeriodStart, inv.PeriodEnd)
	if err != nil {
		return err
	}
	if exists {
		return billing.ErrDuplicateInvoice
	}

	var tierMin, tierMax any
	if inv.TierMinSeats != nil {
		tierMin = inv.TierMinSeats.String()
	}
	if inv.TierMaxSeats != nil {
		tierMax = inv.TierMaxSeats.String()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invoices (id, contract_id, account_id, period_start, period_end,
			seat_count, price_per_seat, subtotal, total, currency,
			tier_min_seats, tier_max_seats, total_days, used_days, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.ContractID, inv.AccountID,
		pricing.Day(inv.PeriodStart).Format(dayFormat), pricing.Day(inv.PeriodEnd).Format(dayFormat),
		inv.SeatCount.String(), inv.PricePerSeat.String(), inv.Subtotal.String(), inv.Total.String(),
		inv.Currency, tierMin, tierMax, inv.TotalDays, inv.UsedDays,
		string(inv.Status), inv.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*billing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, invoiceSelect+` WHERE id = ?`, id)
	return scanInvoice(row)
}

// UpdateInvoiceStatus persists a lifecycle transition already validated
// by the domain layer.
func (s *Store) UpdateInvoiceStatus(ctx context.Context, id string, status billing.InvoiceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE invoices SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return billing.ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]billing.Invoice, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := buildWhere(map[string]string{
		"account_id":  filter.AccountID,
		"contract_id": filter.ContractID,
		"status":      filter.Status,
	})
	page := filter.Page.Normalize()

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invoices`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		invoiceSelect+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, page.Limit, page.offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []billing.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, total, rows.Err()
}

// HasInvoiceForPeriod reports whether a non-void invoice already covers
// the contract and period.
func (s *Store) HasInvoiceForPeriod(ctx context.Context, contractID string, periodStart, periodEnd time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasInvoiceForPeriodLocked(ctx, contractID, periodStart, periodEnd)
}

func (s *Store) hasInvoiceForPeriodLocked(ctx context.Context, contractID string, periodStart, periodEnd time.Time) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM invoices
		WHERE contract_id = ? AND period_start = ? AND period_end = ? AND status != 'void'`,
		contractID,
		pricing.Day(periodStart).Format(dayFormat),
		pricing.Day(periodEnd).Format(dayFormat)).Scan(&count)
	return count > 0, err
}

// =============================================================================
// BILLING JOBS
// =============================================================================

type JobFilter struct {
	ContractID string
	Status     string
	Page       Page
}

func (s *Store) SaveJob(ctx context.Context, j billing.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO billing_jobs (id, contract_id, period_start, period_end, status,
			attempts, max_attempts, last_error, run_at, invoice_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status, attempts=excluded.attempts, last_error=excluded.last_error,
			run_at=excluded.run_at, invoice_id=excluded.invoice_id, updated_at=excluded.updated_at`,
		j.ID, j.ContractID,
		pricing.Day(j.PeriodStart).Format(dayFormat), pricing.Day(j.PeriodEnd).Format(dayFormat),
		string(j.Status), j.Attempts, j.MaxAttempts, j.LastError,
		j.RunAt.UTC().Format(time.RFC3339), j.InvoiceID,
		j.CreatedAt.UTC().Format(time.RFC3339), j.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) GetJob(ctx context.Context, id string) (*billing.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, jobSelect+` WHERE id = ?`, id)
	return scanJob(row)
}

func (s *Store) ListJobs(ctx context.Context, filter JobFilter) ([]billing.Job, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := buildWhere(map[string]string{
		"contract_id": filter.ContractID,
		"status":      filter.Status,
	})
	page := filter.Page.Normalize()

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM billing_jobs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		jobSelect+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, page.Limit, page.offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var jobs []billing.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, total, rows.Err()
}

// DueJobs returns pending jobs whose run_at has passed, oldest first.
func (s *Store) DueJobs(ctx context.Context, now time.Time, limit int) ([]billing.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = maxPageLimit
	}
	rows, err := s.db.QueryContext(ctx,
		jobSelect+` WHERE status = ? AND run_at <= ? ORDER BY run_at, id LIMIT ?`,
		string(billing.JobPending), now.UTC().Format(time.RFC3339), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []billing.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// HasJobForPeriod reports whether any job already covers the contract
// and period. Failed jobs count too: a permanently broken config must
// not re-enqueue every pass, and rebilling after a fix goes through the
// on-demand endpoint.
func (s *Store) HasJobForPeriod(ctx context.Context, contractID string, periodStart, periodEnd time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM billing_jobs
		WHERE contract_id = ? AND period_start = ? AND period_end = ?`,
		contractID,
		pricing.Day(periodStart).Format(dayFormat),
		pricing.Day(periodEnd).Format(dayFormat)).Scan(&count)
	return count > 0, err
}

// =============================================================================
// RESET - Development/demo support
// =============================================================================

// Reset clears all data. Only used by the demo scenario loader; never
// exposed in production deployments.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"billing_jobs", "invoices", "contracts", "products", "accounts"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// ROW SCANNING
// =============================================================================

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(sc scanner) (*billing.Account, error) {
	var a billing.Account
	var status, createdAt string
	err := sc.Scan(&a.ID, &a.Name, &a.Email, &status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Status = billing.AccountStatus(status)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

func scanContract(sc scanner) (*billing.Contract, error) {
	var c billing.Contract
	var seatCount, cycle, startDate, status, createdAt string
	var endDate sql.NullString
	err := sc.Scan(&c.ID, &c.AccountID, &c.ProductID, &seatCount, &cycle, &startDate, &endDate, &status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.SeatCount, err = decimal.NewFromString(seatCount)
	if err != nil {
		return nil, fmt.Errorf("corrupt seat_count for contract %s: %w", c.ID, err)
	}
	c.Cycle = pricing.BillingCycle(cycle)
	c.Status = billing.ContractStatus(status)
	c.StartDate, _ = time.Parse(dayFormat, startDate)
	if endDate.Valid {
		end, _ := time.Parse(dayFormat, endDate.String)
		c.EndDate = &end
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

const invoiceSelect = `
	SELECT id, contract_id, account_id, period_start, period_end,
		seat_count, price_per_seat, subtotal, total, currency,
		tier_min_seats, tier_max_seats, total_days, used_days, status, created_at
	FROM invoices`

func scanInvoice(sc scanner) (*billing.Invoice, error) {
	var inv billing.Invoice
	var periodStart, periodEnd, seatCount, pricePerSeat, subtotal, total, status, createdAt string
	var tierMin, tierMax sql.NullString
	err := sc.Scan(&inv.ID, &inv.ContractID, &inv.AccountID, &periodStart, &periodEnd,
		&seatCount, &pricePerSeat, &subtotal, &total, &inv.Currency,
		&tierMin, &tierMax, &inv.TotalDays, &inv.UsedDays, &status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	inv.PeriodStart, _ = time.Parse(dayFormat, periodStart)
	inv.PeriodEnd, _ = time.Parse(dayFormat, periodEnd)
	if inv.SeatCount, err = decimal.NewFromString(seatCount); err != nil {
		return nil, fmt.Errorf("corrupt seat_count for invoice %s: %w", inv.ID, err)
	}
	if inv.PricePerSeat, err = decimal.NewFromString(pricePerSeat); err != nil {
		return nil, fmt.Errorf("corrupt price_per_seat for invoice %s: %w", inv.ID, err)
	}
	if inv.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("corrupt subtotal for invoice %s: %w", inv.ID, err)
	}
	if inv.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("corrupt total for invoice %s: %w", inv.ID, err)
	}
	if tierMin.Valid {
		d, err := decimal.NewFromString(tierMin.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt tier_min_seats for invoice %s: %w", inv.ID, err)
		}
		inv.TierMinSeats = &d
	}
	if tierMax.Valid {
		d, err := decimal.NewFromString(tierMax.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt tier_max_seats for invoice %s: %w", inv.ID, err)
		}
		inv.TierMaxSeats = &d
	}
	inv.Status = billing.InvoiceStatus(status)
	inv.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &inv, nil
}

const jobSelect = `
	SELECT id, contract_id, period_start, period_end, status,
		attempts, max_attempts, last_error, run_at, invoice_id, created_at, updated_at
	FROM billing_jobs`

func scanJob(sc scanner) (*billing.Job, error) {
	var j billing.Job
	var periodStart, periodEnd, status, runAt, createdAt, updatedAt string
	var lastError, invoiceID sql.NullString
	err := sc.Scan(&j.ID, &j.ContractID, &periodStart, &periodEnd, &status,
		&j.Attempts, &j.MaxAttempts, &lastError, &runAt, &invoiceID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	j.PeriodStart, _ = time.Parse(dayFormat, periodStart)
	j.PeriodEnd, _ = time.Parse(dayFormat, periodEnd)
	j.Status = billing.JobStatus(status)
	j.LastError = lastError.String
	j.InvoiceID = invoiceID.String
	j.RunAt, _ = time.Parse(time.RFC3339, runAt)
	j.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &j, nil
}

// buildWhere assembles an AND-joined WHERE clause from non-empty
// exact-match filters. Column names are fixed by the callers, never
// taken from request input.
func buildWhere(filters map[string]string) (string, []any) {
	var clauses []string
	var args []any
	// Stable order keeps queries deterministic for tests.
	for _, col := range []string{"account_id", "contract_id", "status"} {
		if v, ok := filters[col]; ok && v != "" {
			clauses = append(clauses, col+" = ?")
			args = append(args, v)
		}
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
