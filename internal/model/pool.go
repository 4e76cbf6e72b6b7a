// internal/model/pool.go
package model

import "time"

// PoolScope distinguishes the single shared free-tier pool from the
// lazily created per-(tenant, tier) pools.
type PoolScope string

const (
	ScopeSharedFreeTier PoolScope = "shared-free-tier"
	ScopeTenantTier     PoolScope = "tenant-tier"
)

// IdentityPool is a managed store of user credentials and attributes.
// At most one tenant-tier pool exists per (TenantID, Tier) pair.
type IdentityPool struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Scope     PoolScope `json:"scope" db:"scope"`
	TenantID  string    `json:"tenantId,omitempty" db:"tenant_id"`
	Tier      Tier      `json:"tier,omitempty" db:"tier"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// BillingItem is the per-tenant billing stub payload, stored and returned
// verbatim. No decision logic reads it.
type BillingItem struct {
	TenantID  string    `json:"tenantId" db:"tenant_id"`
	Payload   []byte    `json:"payload" db:"payload"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
