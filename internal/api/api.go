package api

import (
	"context"

	"tenant-onboarding/internal/config"
	"tenant-onboarding/internal/model"
)

// RecordStore is the slice of the record store the API needs.
type RecordStore interface {
	PutRecord(ctx context.Context, rec *model.OnboardingRecord) error
	RecordsByTenant(ctx context.Context, tenantID string) ([]model.OnboardingRecord, error)
}

// BillingStore is the billing KV stub.
type BillingStore interface {
	PutBillingItem(ctx context.Context, item *model.BillingItem) error
	GetBillingItem(ctx context.Context, tenantID string) (*model.BillingItem, error)
}

// Publisher submits an onboarding record to the workflow queue.
type Publisher interface {
	Publish(body []byte) error
}

// Workflow exposes the running orchestrator's concurrency control.
type Workflow interface {
	SetWorkerCount(n int) error
}

type API struct {
	Store    RecordStore
	Billing  BillingStore
	Queue    Publisher
	Workflow Workflow
	Cfg      *config.Config
}

func NewAPI(store RecordStore, billing BillingStore, queue Publisher, workflow Workflow, cfg *config.Config) *API {
	return &API{
		Store:    store,
		Billing:  billing,
		Queue:    queue,
		Workflow: workflow,
		Cfg:      cfg,
	}
}
