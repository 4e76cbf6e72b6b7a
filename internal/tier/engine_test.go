package tier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"tenant-onboarding/internal/identity"
	"tenant-onboarding/internal/model"
)

const sharedPoolID = "shared-pool-1"

type fakeStore struct {
	records    []model.OnboardingRecord
	puts       []model.OnboardingRecord
	claimsHeld map[string]bool
	queryErr   error
	putErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{claimsHeld: make(map[string]bool)}
}

func (s *fakeStore) PutRecord(ctx context.Context, rec *model.OnboardingRecord) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.puts = append(s.puts, *rec)
	return nil
}

func (s *fakeStore) RecordsByTenant(ctx context.Context, tenantID string) ([]model.OnboardingRecord, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	var out []model.OnboardingRecord
	for _, rec := range s.records {
		if rec.TenantID == tenantID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *fakeStore) ClaimPool(ctx context.Context, tenantID string, tier model.Tier) (bool, error) {
	key := tenantID + "/" + string(tier)
	if s.claimsHeld[key] {
		return false, nil
	}
	s.claimsHeld[key] = true
	return true, nil
}

type fakeRegistry struct {
	created   []string
	admitted  []string
	createErr error
	admitErr  error
}

func (r *fakeRegistry) CreatePool(ctx context.Context, tenantID string, tier model.Tier) (string, error) {
	if r.createErr != nil {
		return "", r.createErr
	}
	name := model.PoolName(tenantID, tier)
	r.created = append(r.created, name)
	return "pool-" + name, nil
}

func (r *fakeRegistry) AdmitUser(ctx context.Context, poolID, userID, tenantID string) error {
	if r.admitErr != nil {
		return r.admitErr
	}
	r.admitted = append(r.admitted, poolID+"/"+userID)
	return nil
}

func record(tenant, user string, tier model.Tier) model.OnboardingRecord {
	return model.OnboardingRecord{TenantID: tenant, UserID: user, Tier: tier}
}

func TestFreeTierUsesSharedPool(t *testing.T) {
	store := newFakeStore()
	pools := &fakeRegistry{}
	engine := NewEngine(store, pools, sharedPoolID)

	out, err := engine.Resolve(context.Background(), record("acme", "u1", model.TierFree))
	require.NoError(t, err)

	require.Empty(t, pools.created, "free tier must not create a pool")
	require.Equal(t, []string{sharedPoolID + "/u1"}, pools.admitted)
	require.Len(t, store.puts, 1)
	require.Equal(t, sharedPoolID, store.puts[0].IdentityPoolID)
	require.Len(t, out, 1)
	require.Equal(t, sharedPoolID, out[0].IdentityPoolID)
}

func TestFreeTierRedeliveryIsIdempotent(t *testing.T) {
	store := newFakeStore()
	pools := &fakeRegistry{
		admitErr: &identity.AdmissionError{PoolID: sharedPoolID, Username: "u1", Err: identity.ErrUsernameTaken},
	}
	engine := NewEngine(store, pools, sharedPoolID)

	_, err := engine.Resolve(context.Background(), record("acme", "u1", model.TierFree))
	require.NoError(t, err, "a redelivered free-tier record must not fail")
	require.Len(t, store.puts, 1)
	require.Equal(t, sharedPoolID, store.puts[0].IdentityPoolID)
}

func TestFirstPaidRequestCreatesPool(t *testing.T) {
	store := newFakeStore()
	pools := &fakeRegistry{}
	engine := NewEngine(store, pools, sharedPoolID)

	out, err := engine.Resolve(context.Background(), record("acme", "u1", model.TierPro))
	require.NoError(t, err)

	require.Equal(t, []string{"acmeproUserPool"}, pools.created)
	require.Equal(t, []string{"pool-acmeproUserPool/u1"}, pools.admitted)
	require.Len(t, store.puts, 1)
	require.Equal(t, "pool-acmeproUserPool", store.puts[0].IdentityPoolID)
	require.Len(t, out, 1)
}

func TestPaidRequestWithProvisionedTenantSkipsCreation(t *testing.T) {
	store := newFakeStore()
	existing := record("acme", "u1", model.TierPro)
	existing.IdentityPoolID = "pool-acmeproUserPool"
	store.records = []model.OnboardingRecord{existing}

	pools := &fakeRegistry{}
	engine := NewEngine(store, pools, sharedPoolID)

	out, err := engine.Resolve(context.Background(), record("acme", "u2", model.TierPro))
	require.NoError(t, err)

	require.Empty(t, pools.created, "existing tenant must not get a second pool")
	require.Empty(t, pools.admitted, "no new admission is performed for an existing tenant")
	require.Empty(t, store.puts)
	require.Equal(t, []model.OnboardingRecord{existing}, out)
}

func TestProvisionalRecordDoesNotBlockFirstProvisioning(t *testing.T) {
	store := newFakeStore()
	// The intake has already written this request's provisional record.
	store.records = []model.OnboardingRecord{record("acme", "u1", model.TierPro)}

	pools := &fakeRegistry{}
	engine := NewEngine(store, pools, sharedPoolID)

	_, err := engine.Resolve(context.Background(), record("acme", "u1", model.TierPro))
	require.NoError(t, err)
	require.Equal(t, []string{"acmeproUserPool"}, pools.created)
}

func TestResubmissionCreatesNoSecondPool(t *testing.T) {
	store := newFakeStore()
	pools := &fakeRegistry{}
	engine := NewEngine(store, pools, sharedPoolID)

	rec := record("acme", "u1", model.TierBusiness)
	out, err := engine.Resolve(context.Background(), rec)
	require.NoError(t, err)
	store.records = append(store.records, out...)

	_, err = engine.Resolve(context.Background(), rec)
	require.NoError(t, err)
	require.Len(t, pools.created, 1, "identical resubmission must not create a second pool")
}

// upsertStore mirrors the real store's upsert: one row per (tenant, user),
// and a provisional put never wipes a finalized pool id.
type upsertStore struct {
	fakeStore
}

func (s *upsertStore) PutRecord(ctx context.Context, rec *model.OnboardingRecord) error {
	for i := range s.records {
		if s.records[i].TenantID == rec.TenantID && s.records[i].UserID == rec.UserID {
			s.records[i].Tier = rec.Tier
			if rec.IdentityPoolID != "" {
				s.records[i].IdentityPoolID = rec.IdentityPoolID
			}
			return nil
		}
	}
	s.records = append(s.records, *rec)
	return nil
}

func TestFinalizedPoolIDSurvivesResubmission(t *testing.T) {
	store := &upsertStore{fakeStore: *newFakeStore()}
	pools := &fakeRegistry{}
	engine := NewEngine(store, pools, sharedPoolID)
	ctx := context.Background()

	// First run: intake writes the provisional record, the workflow
	// finalizes it.
	provisional := record("acme", "u1", model.TierPro)
	require.NoError(t, store.PutRecord(ctx, &provisional))
	_, err := engine.Resolve(ctx, record("acme", "u1", model.TierPro))
	require.NoError(t, err)
	require.Equal(t, "pool-acmeproUserPool", store.records[0].IdentityPoolID)

	// Identical resubmission: intake re-puts the provisional record, the
	// workflow sees a provisioned tenant and skips. The finalized pool id
	// must remain intact.
	provisional = record("acme", "u1", model.TierPro)
	require.NoError(t, store.PutRecord(ctx, &provisional))
	_, err = engine.Resolve(ctx, record("acme", "u1", model.TierPro))
	require.NoError(t, err)

	require.Len(t, pools.created, 1)
	require.Equal(t, "pool-acmeproUserPool", store.records[0].IdentityPoolID,
		"finalized pool id must survive an identical resubmission")
}

func TestLostClaimSkipsPoolCreation(t *testing.T) {
	store := newFakeStore()
	store.claimsHeld["acme/pro"] = true // concurrent invocation won the claim

	pools := &fakeRegistry{}
	engine := NewEngine(store, pools, sharedPoolID)

	out, err := engine.Resolve(context.Background(), record("acme", "u1", model.TierPro))
	require.NoError(t, err)
	require.Empty(t, pools.created)
	require.Empty(t, out)
}

func TestUnrecognizedTierIsSilentSkip(t *testing.T) {
	// Documented behavior: the engine logs and takes no action. The intake
	// rejects unknown tiers before they reach the workflow.
	store := newFakeStore()
	pools := &fakeRegistry{}
	engine := NewEngine(store, pools, sharedPoolID)

	out, err := engine.Resolve(context.Background(), record("acme", "u1", model.Tier("enterprise")))
	require.NoError(t, err)
	require.Nil(t, out)
	require.Empty(t, store.puts)
	require.Empty(t, pools.created)
	require.Empty(t, pools.admitted)
}

func TestPoolCreationFailurePropagates(t *testing.T) {
	store := newFakeStore()
	provErr := &identity.ProvisioningError{PoolName: "acmeproUserPool", Err: errors.New("quota exceeded")}
	pools := &fakeRegistry{createErr: provErr}
	engine := NewEngine(store, pools, sharedPoolID)

	_, err := engine.Resolve(context.Background(), record("acme", "u1", model.TierPro))
	require.ErrorAs(t, err, &provErr)
	require.Empty(t, store.puts, "no record is finalized when provisioning fails")
}

func TestRecordLookupFailurePropagates(t *testing.T) {
	store := newFakeStore()
	store.queryErr = errors.New("connection refused")
	engine := NewEngine(store, &fakeRegistry{}, sharedPoolID)

	_, err := engine.Resolve(context.Background(), record("acme", "u1", model.TierPro))
	require.Error(t, err)
}

func TestRecordWriteFailureAfterPoolCreation(t *testing.T) {
	// No compensation: the pool stays created and the error propagates so
	// the delivery lands in the DLQ.
	store := newFakeStore()
	store.putErr = errors.New("write timeout")
	pools := &fakeRegistry{}
	engine := NewEngine(store, pools, sharedPoolID)

	_, err := engine.Resolve(context.Background(), record("acme", "u1", model.TierPro))
	require.Error(t, err)
	require.Len(t, pools.created, 1)
}
