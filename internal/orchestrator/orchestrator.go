// internal/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/streadway/amqp"

	"tenant-onboarding/internal/messaging"
	"tenant-onboarding/internal/model"
	"tenant-onboarding/internal/worker"
)

// deliveryTimeout bounds one workflow invocation; there is no cancellation
// once processing starts.
const deliveryTimeout = 30 * time.Second

// Resolver runs the tier decision for one onboarding record.
type Resolver interface {
	Resolve(ctx context.Context, rec model.OnboardingRecord) ([]model.OnboardingRecord, error)
}

// Orchestrator runs the single-step onboarding workflow: it consumes
// submitted records from the onboarding queue and invokes the resolver on
// each. Deliveries are at-least-once; failures go to the DLQ and nothing is
// reported back to the original caller.
type Orchestrator struct {
	engine Resolver
	pool   *worker.Pool
}

// Start begins consuming the onboarding queue with the given concurrency.
func Start(conn *amqp.Connection, engine Resolver, workers int) (*Orchestrator, error) {
	o := &Orchestrator{engine: engine}
	o.pool = worker.NewPool(conn, messaging.OnboardingQueue, workers, o.handleDelivery)
	if err := o.pool.Start(); err != nil {
		return nil, fmt.Errorf("failed to start onboarding workflow: %w", err)
	}
	log.Printf("Onboarding workflow started with %d worker(s)", workers)
	return o, nil
}

func (o *Orchestrator) handleDelivery(msg amqp.Delivery) error {
	var rec model.OnboardingRecord
	if err := json.Unmarshal(msg.Body, &rec); err != nil {
		log.Printf("[Workflow] Malformed delivery payload: %v", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	if _, err := o.engine.Resolve(ctx, rec); err != nil {
		return err
	}
	return nil
}

// SetWorkerCount rescales the workflow's worker pool.
func (o *Orchestrator) SetWorkerCount(n int) error {
	return o.pool.SetWorkerCount(n)
}

// Stop drains the worker pool.
func (o *Orchestrator) Stop() {
	o.pool.Stop()
	log.Printf("Onboarding workflow stopped")
}
