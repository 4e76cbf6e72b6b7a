// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"tenant-onboarding/internal/model"
)

type Storage struct {
	DB *sql.DB

	// table is the onboarding record table identifier, from config.
	table string
}

func NewStorage(dsn, table string) (*Storage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return &Storage{DB: db, table: table}, nil
}

// EnsureSchema creates the onboarding tables if they do not exist.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			tenant_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			tier TEXT NOT NULL,
			identity_pool_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (tenant_id, user_id)
		)`, s.table),
		`CREATE TABLE IF NOT EXISTS pool_claims (
			tenant_id TEXT NOT NULL,
			tier TEXT NOT NULL,
			claimed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (tenant_id, tier)
		)`,
		`CREATE TABLE IF NOT EXISTS billing_items (
			tenant_id TEXT PRIMARY KEY,
			payload BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// PutRecord upserts an onboarding record. Re-submission is last write wins,
// except that a provisional put (empty pool id) never wipes a finalized
// association: the workflow may skip re-finalizing a tenant it already
// provisioned, so the pool id must survive an identical resubmission.
func (s *Storage) PutRecord(ctx context.Context, rec *model.OnboardingRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (tenant_id, user_id, tier, identity_pool_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, user_id) DO UPDATE
		SET tier = EXCLUDED.tier,
		    identity_pool_id = COALESCE(NULLIF(EXCLUDED.identity_pool_id, ''), %s.identity_pool_id)
	`, s.table, s.table)
	_, err := s.DB.ExecContext(ctx, query,
		rec.TenantID, rec.UserID, string(rec.Tier), rec.IdentityPoolID, rec.CreatedAt)
	if err != nil {
		return &StorageError{Op: "put record", Err: err}
	}
	return nil
}

// RecordsByTenant returns all onboarding records for a tenant.
func (s *Storage) RecordsByTenant(ctx context.Context, tenantID string) ([]model.OnboardingRecord, error) {
	query := fmt.Sprintf(`
		SELECT tenant_id, user_id, tier, identity_pool_id, created_at
		FROM %s
		WHERE tenant_id = $1
		ORDER BY user_id
	`, s.table)
	rows, err := s.DB.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, &StorageError{Op: "query records", Err: err}
	}
	defer rows.Close()

	var records []model.OnboardingRecord
	for rows.Next() {
		var rec model.OnboardingRecord
		if err := rows.Scan(&rec.TenantID, &rec.UserID, &rec.Tier, &rec.IdentityPoolID, &rec.CreatedAt); err != nil {
			return nil, &StorageError{Op: "scan record", Err: err}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate records", Err: err}
	}
	return records, nil
}

// ClaimPool inserts the (tenantID, tier) claim record and reports whether
// this caller won it. Exactly one caller wins under concurrent first
// requests for the same pair; losers must not create a pool.
func (s *Storage) ClaimPool(ctx context.Context, tenantID string, tier model.Tier) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO pool_claims (tenant_id, tier)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, tenantID, string(tier))
	if err != nil {
		return false, &StorageError{Op: "claim pool", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &StorageError{Op: "claim pool", Err: err}
	}
	return n == 1, nil
}

// PutBillingItem stores the billing payload for a tenant, replacing any
// previous value.
func (s *Storage) PutBillingItem(ctx context.Context, item *model.BillingItem) error {
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now().UTC()
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO billing_items (tenant_id, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`, item.TenantID, item.Payload, item.UpdatedAt)
	if err != nil {
		return &StorageError{Op: "put billing item", Err: err}
	}
	return nil
}

// GetBillingItem returns the billing payload for a tenant, or ErrNotFound.
func (s *Storage) GetBillingItem(ctx context.Context, tenantID string) (*model.BillingItem, error) {
	item := &model.BillingItem{TenantID: tenantID}
	err := s.DB.QueryRowContext(ctx, `
		SELECT payload, updated_at FROM billing_items WHERE tenant_id = $1
	`, tenantID).Scan(&item.Payload, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "get billing item", Err: err}
	}
	return item, nil
}
