// internal/identity/registry.go
package identity

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"tenant-onboarding/internal/model"
)

// temporaryPassword is issued to every admitted user; the must-change flag
// forces a reset on first sign-in.
const temporaryPassword = "TempPassword123!"

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// Registry manages identity pools and their members. Pools are created with
// case-insensitive usernames, no attribute auto-verification, and a
// tenant-id attribute on each member.
type Registry struct {
	DB *sql.DB
}

func NewRegistry(db *sql.DB) *Registry {
	return &Registry{DB: db}
}

// EnsureSchema creates the registry tables if they do not exist.
func (r *Registry) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS identity_pools (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			scope TEXT NOT NULL,
			tenant_id TEXT NOT NULL DEFAULT '',
			tier TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS pool_users (
			pool_id TEXT NOT NULL REFERENCES identity_pools(id),
			username TEXT NOT NULL,
			tenant_id TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			must_change_password BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		// Usernames are case-insensitive within a pool.
		`CREATE UNIQUE INDEX IF NOT EXISTS pool_users_pool_username
			ON pool_users (pool_id, LOWER(username))`,
	}
	for _, q := range stmts {
		if _, err := r.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create registry schema: %w", err)
		}
	}
	return nil
}

// EnsureSharedPool creates the shared free-tier pool under the given id if
// it does not already exist. Safe to call on every startup.
func (r *Registry) EnsureSharedPool(ctx context.Context, poolID string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO identity_pools (id, name, scope)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, poolID, "SharedFreeTierUserPool", string(model.ScopeSharedFreeTier))
	if err != nil {
		return fmt.Errorf("failed to ensure shared pool: %w", err)
	}
	return nil
}

// CreatePool creates a tenant-tier pool named tenantID + tier + "UserPool"
// and returns its assigned id. The name is unique; a collision means the
// pool was already provisioned and surfaces as a ProvisioningError.
func (r *Registry) CreatePool(ctx context.Context, tenantID string, tier model.Tier) (string, error) {
	poolName := model.PoolName(tenantID, tier)
	poolID := uuid.NewString()

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO identity_pools (id, name, scope, tenant_id, tier)
		VALUES ($1, $2, $3, $4, $5)
	`, poolID, poolName, string(model.ScopeTenantTier), tenantID, string(tier))
	if err != nil {
		log.Printf("[Identity] Failed to create pool %s: %v", poolName, err)
		return "", &ProvisioningError{PoolName: poolName, Err: err}
	}

	log.Printf("[Identity] Created pool %s (%s)", poolName, poolID)
	return poolID, nil
}

// AdmitUser adds a user to the named pool with username = userID and the
// tenant id as a scoped attribute. No welcome notification is sent; the
// user receives the fixed temporary credential and must change it on first
// use. Fails with AdmissionError if the pool does not exist or the username
// is already taken.
func (r *Registry) AdmitUser(ctx context.Context, poolID, userID, tenantID string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(temporaryPassword), bcrypt.DefaultCost)
	if err != nil {
		return &AdmissionError{PoolID: poolID, Username: userID, Err: err}
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO pool_users (pool_id, username, tenant_id, password_hash, must_change_password)
		VALUES ($1, $2, $3, $4, TRUE)
	`, poolID, userID, tenantID, string(hash))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch string(pqErr.Code) {
			case pqUniqueViolation:
				err = ErrUsernameTaken
			case pqForeignKeyViolation:
				err = ErrPoolNotFound
			}
		}
		log.Printf("[Identity] Failed to admit %s into pool %s: %v", userID, poolID, err)
		return &AdmissionError{PoolID: poolID, Username: userID, Err: err}
	}

	log.Printf("[Identity] Admitted %s into pool %s", userID, poolID)
	return nil
}

// GetPool returns a pool by id, or ErrPoolNotFound.
func (r *Registry) GetPool(ctx context.Context, poolID string) (*model.IdentityPool, error) {
	pool := &model.IdentityPool{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, scope, tenant_id, tier, created_at
		FROM identity_pools WHERE id = $1
	`, poolID).Scan(&pool.ID, &pool.Name, &pool.Scope, &pool.TenantID, &pool.Tier, &pool.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPoolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pool: %w", err)
	}
	return pool, nil
}
