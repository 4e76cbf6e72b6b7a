// internal/model/record.go
package model

import (
	"fmt"
	"time"
)

// Tier is the subscription level of an onboarding request.
type Tier string

const (
	TierFree     Tier = "free"
	TierPro      Tier = "pro"
	TierBusiness Tier = "business"
)

// Valid reports whether t is one of the recognized tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPro, TierBusiness:
		return true
	}
	return false
}

// Paid reports whether t requires a tenant-scoped identity pool.
func (t Tier) Paid() bool {
	return t == TierPro || t == TierBusiness
}

// OnboardingRecord is the durable association of a user, tenant, tier and
// the identity pool the user was admitted into. IdentityPoolID is empty on
// the provisional record written by the intake and is set once the
// onboarding workflow resolves the pool.
type OnboardingRecord struct {
	TenantID       string    `json:"tenantId" db:"tenant_id"`
	UserID         string    `json:"userId" db:"user_id"`
	Tier           Tier      `json:"tier" db:"tier"`
	IdentityPoolID string    `json:"identityPoolId,omitempty" db:"identity_pool_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// PoolName returns the deterministic name of the tenant-tier pool for a
// record, e.g. "acmeproUserPool".
func PoolName(tenantID string, tier Tier) string {
	return fmt.Sprintf("%s%sUserPool", tenantID, tier)
}
