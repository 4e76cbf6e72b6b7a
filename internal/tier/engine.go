// internal/tier/engine.go
package tier

import (
	"context"
	"errors"
	"log"

	"tenant-onboarding/internal/identity"
	"tenant-onboarding/internal/metrics"
	"tenant-onboarding/internal/model"
)

// RecordStore is the slice of the record store the engine needs.
type RecordStore interface {
	PutRecord(ctx context.Context, rec *model.OnboardingRecord) error
	RecordsByTenant(ctx context.Context, tenantID string) ([]model.OnboardingRecord, error)
	ClaimPool(ctx context.Context, tenantID string, tier model.Tier) (bool, error)
}

// PoolRegistry is the slice of the identity pool registry the engine needs.
type PoolRegistry interface {
	CreatePool(ctx context.Context, tenantID string, tier model.Tier) (string, error)
	AdmitUser(ctx context.Context, poolID, userID, tenantID string) error
}

// Engine resolves the identity pool for an onboarding record and persists
// the finalized association. It is invoked at least once per record by the
// onboarding workflow and must tolerate duplicate invocations.
type Engine struct {
	store        RecordStore
	pools        PoolRegistry
	sharedPoolID string
}

func NewEngine(store RecordStore, pools PoolRegistry, sharedPoolID string) *Engine {
	return &Engine{
		store:        store,
		pools:        pools,
		sharedPoolID: sharedPoolID,
	}
}

// Resolve runs the tier decision for one onboarding record:
//
//   - free: admit into the shared free-tier pool and finalize the record.
//   - pro/business: if the tenant already has a provisioned record, return
//     the existing set untouched. Otherwise claim (tenant, tier), create the
//     pool, admit the user, and finalize the record.
//   - anything else: log and skip without error.
//
// Errors are logged here and returned to the workflow runtime; there is no
// internal retry and no rollback of partial state (a pool created before a
// failed record write stays orphaned).
func (e *Engine) Resolve(ctx context.Context, rec model.OnboardingRecord) ([]model.OnboardingRecord, error) {
	switch {
	case rec.Tier == model.TierFree:
		return e.resolveFree(ctx, rec)
	case rec.Tier.Paid():
		return e.resolvePaid(ctx, rec)
	default:
		log.Printf("[Tier] Unrecognized tier %q for %s/%s, skipping", rec.Tier, rec.TenantID, rec.UserID)
		return nil, nil
	}
}

func (e *Engine) resolveFree(ctx context.Context, rec model.OnboardingRecord) ([]model.OnboardingRecord, error) {
	err := e.pools.AdmitUser(ctx, e.sharedPoolID, rec.UserID, rec.TenantID)
	if err != nil && !errors.Is(err, identity.ErrUsernameTaken) {
		log.Printf("[Tier] Free-tier admission failed for %s/%s: %v", rec.TenantID, rec.UserID, err)
		return nil, err
	}
	// ErrUsernameTaken means a redelivered record; the user is already in.

	rec.IdentityPoolID = e.sharedPoolID
	if err := e.store.PutRecord(ctx, &rec); err != nil {
		log.Printf("[Tier] Failed to finalize record for %s/%s: %v", rec.TenantID, rec.UserID, err)
		return nil, err
	}
	return []model.OnboardingRecord{rec}, nil
}

func (e *Engine) resolvePaid(ctx context.Context, rec model.OnboardingRecord) ([]model.OnboardingRecord, error) {
	all, err := e.store.RecordsByTenant(ctx, rec.TenantID)
	if err != nil {
		log.Printf("[Tier] Record lookup failed for tenant %s: %v", rec.TenantID, err)
		return nil, err
	}

	// Only finalized records count; the intake's provisional record for
	// this very request carries no pool id yet.
	existing := provisioned(all)
	if len(existing) > 0 {
		log.Printf("[Tier] Tenant %s already provisioned, returning %d record(s)", rec.TenantID, len(existing))
		return existing, nil
	}

	won, err := e.store.ClaimPool(ctx, rec.TenantID, rec.Tier)
	if err != nil {
		return nil, err
	}
	if !won {
		// A concurrent invocation holds the claim and creates the pool.
		log.Printf("[Tier] Claim for %s/%s already held, skipping pool creation", rec.TenantID, rec.Tier)
		return existing, nil
	}

	poolID, err := e.pools.CreatePool(ctx, rec.TenantID, rec.Tier)
	if err != nil {
		return nil, err
	}
	metrics.PoolsCreated.WithLabelValues(string(rec.Tier)).Inc()

	if err := e.pools.AdmitUser(ctx, poolID, rec.UserID, rec.TenantID); err != nil {
		return nil, err
	}

	rec.IdentityPoolID = poolID
	if err := e.store.PutRecord(ctx, &rec); err != nil {
		log.Printf("[Tier] Record write failed after creating pool %s (pool is orphaned): %v", poolID, err)
		return nil, err
	}
	return []model.OnboardingRecord{rec}, nil
}

func provisioned(records []model.OnboardingRecord) []model.OnboardingRecord {
	var out []model.OnboardingRecord
	for _, rec := range records {
		if rec.IdentityPoolID != "" {
			out = append(out, rec)
		}
	}
	return out
}
