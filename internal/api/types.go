package api

import (
	"fmt"

	"tenant-onboarding/internal/model"
)

// ValidationError rejects a malformed request before any side effect.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// OnboardRequest is the intake body for a user/tenant registration.
type OnboardRequest struct {
	TenantID string     `json:"tenantId" example:"acme"`
	UserID   string     `json:"userId" example:"u1"`
	Tier     model.Tier `json:"tier" example:"pro"`
}

// Validate checks required fields and the tier enum.
func (r *OnboardRequest) Validate() error {
	if r.TenantID == "" {
		return &ValidationError{Field: "tenantId", Reason: "required"}
	}
	if r.UserID == "" {
		return &ValidationError{Field: "userId", Reason: "required"}
	}
	if !r.Tier.Valid() {
		return &ValidationError{Field: "tier", Reason: "must be one of free, pro, business"}
	}
	return nil
}

// ConcurrencyConfig sets the onboarding workflow worker count.
type ConcurrencyConfig struct {
	Workers int `json:"workers"`
}

// TokenRequest exchanges a tenant id for a tenant-scoped API token.
type TokenRequest struct {
	TenantID string `json:"tenantId"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
