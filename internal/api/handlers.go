package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"tenant-onboarding/internal/auth"
	"tenant-onboarding/internal/metrics"
	"tenant-onboarding/internal/model"
	"tenant-onboarding/internal/storage"
)

func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	// Public
	r.Post("/onboarding", a.Onboard)
	r.Post("/auth/token", a.IssueToken)
	r.Put("/billing/{tenantId}", a.PutBilling)
	r.Get("/billing/{tenantId}", a.GetBilling)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Secured
	r.Group(func(r chi.Router) {
		r.Use(auth.JWTAuthMiddleware)

		r.Get("/onboarding/records", a.ListRecords)
		r.Put("/workflow/concurrency", a.UpdateConcurrency)
	})

	return r
}

// @Summary Submit an onboarding request
// @Description Persists a provisional record and submits it to the onboarding workflow. The workflow outcome is not awaited.
// @Tags Onboarding
// @Accept json
// @Produce json
// @Param body body OnboardRequest true "Onboarding request"
// @Success 200 {object} model.OnboardingRecord
// @Failure 400 {string} string "validation error"
// @Router /onboarding [post]
func (a *API) Onboard(w http.ResponseWriter, r *http.Request) {
	var req OnboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Provisional record; the workflow fills in the pool id later.
	rec := &model.OnboardingRecord{
		TenantID:  req.TenantID,
		UserID:    req.UserID,
		Tier:      req.Tier,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.Store.PutRecord(r.Context(), rec); err != nil {
		log.Printf("API: Failed to persist provisional record for %s/%s: %v", req.TenantID, req.UserID, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	body, err := json.Marshal(rec)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := a.Queue.Publish(body); err != nil {
		log.Printf("API: Failed to submit onboarding for %s/%s: %v", req.TenantID, req.UserID, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.OnboardingRequests.WithLabelValues(string(req.Tier)).Inc()
	log.Printf("API: Onboarding submitted for %s/%s (%s)", req.TenantID, req.UserID, req.Tier)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// @Summary Issue a tenant-scoped API token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body TokenRequest true "Token request"
// @Success 200 {object} TokenResponse
// @Router /auth/token [post]
func (a *API) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	if req.TenantID == "" {
		http.Error(w, "tenantId is required", http.StatusBadRequest)
		return
	}

	token, err := auth.GenerateToken(req.TenantID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TokenResponse{Token: token})
}

// @Summary List onboarding records for the caller's tenant
// @Tags Onboarding
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /onboarding/records [get]
func (a *API) ListRecords(w http.ResponseWriter, r *http.Request) {
	tenantID := auth.GetTenantID(r)
	if tenantID == "" {
		http.Error(w, "unauthorized tenant", http.StatusUnauthorized)
		return
	}

	records, err := a.Store.RecordsByTenant(r.Context(), tenantID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"data": records})
}

// @Summary Update onboarding workflow concurrency
// @Tags Workflow
// @Security ApiKeyAuth
// @Accept json
// @Param body body ConcurrencyConfig true "Concurrency config"
// @Success 204
// @Router /workflow/concurrency [put]
func (a *API) UpdateConcurrency(w http.ResponseWriter, r *http.Request) {
	var body ConcurrencyConfig
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	if body.Workers <= 0 {
		http.Error(w, "workers must be positive", http.StatusBadRequest)
		return
	}

	if err := a.Workflow.SetWorkerCount(body.Workers); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("API: Workflow concurrency set to %d", body.Workers)
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Store the billing payload for a tenant
// @Tags Billing
// @Accept json
// @Param tenantId path string true "Tenant ID"
// @Success 204
// @Router /billing/{tenantId} [put]
func (a *API) PutBilling(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantId")

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	item := &model.BillingItem{TenantID: tenantID, Payload: payload}
	if err := a.Billing.PutBillingItem(r.Context(), item); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Fetch the billing payload for a tenant
// @Tags Billing
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Success 200 {string} string "stored payload"
// @Failure 404 {string} string "not found"
// @Router /billing/{tenantId} [get]
func (a *API) GetBilling(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantId")

	item, err := a.Billing.GetBillingItem(r.Context(), tenantID)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(item.Payload)
}
