package worker

import (
	"fmt"
	"log"
	"sync"

	"github.com/streadway/amqp"

	"tenant-onboarding/internal/metrics"
)

// HandlerFunc processes one delivery. A non-nil error sends the delivery to
// the DLQ; nil acks it.
type HandlerFunc func(delivery amqp.Delivery) error

// Pool drains the onboarding queue with a fixed number of goroutines. Each
// delivery is handled exactly once per receipt; redelivery is the queue's
// concern.
type Pool struct {
	queue   string
	conn    *amqp.Connection
	handler HandlerFunc

	mu      sync.Mutex
	ch      *amqp.Channel
	stopCh  chan struct{}
	stopped bool
	workers int
}

func NewPool(conn *amqp.Connection, queue string, workerCount int, handler HandlerFunc) *Pool {
	return &Pool{
		queue:   queue,
		conn:    conn,
		stopCh:  make(chan struct{}),
		handler: handler,
		workers: workerCount,
	}
}

func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.start()
}

func (p *Pool) start() error {
	log.Printf("[Worker] Starting pool with %d worker(s) on %s", p.workers, p.queue)

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.Qos(p.workers, 0, false); err != nil {
		ch.Close()
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		p.queue,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		return fmt.Errorf("failed to register consumer: %w", err)
	}
	p.ch = ch

	stopCh := p.stopCh
	for i := 0; i < p.workers; i++ {
		go p.runWorker(msgs, stopCh)
	}
	return nil
}

func (p *Pool) runWorker(msgs <-chan amqp.Delivery, stopCh <-chan struct{}) {
	metrics.WorkerActive.Inc()
	defer metrics.WorkerActive.Dec()

	for {
		select {
		case <-stopCh:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			if err := p.handler(msg); err != nil {
				log.Printf("[Worker] Failed to process delivery: %v", err)
				_ = msg.Nack(false, false) // send to DLQ
				metrics.WorkerProcessed.WithLabelValues("error").Inc()
				continue
			}

			_ = msg.Ack(false)
			metrics.WorkerProcessed.WithLabelValues("ok").Inc()
		}
	}
}

func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stop()
}

func (p *Pool) stop() {
	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stopCh)
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	log.Printf("[Worker] Pool stopped")
}

// SetWorkerCount updates the pool to a new concurrency level
func (p *Pool) SetWorkerCount(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n <= 0 || n == p.workers {
		return nil
	}

	log.Printf("[Worker] Rescaling pool: %d → %d", p.workers, n)

	// Stop existing workers
	p.stop()

	// Update count and restart
	p.workers = n
	p.stopCh = make(chan struct{}) // recreate stop channel
	p.stopped = false
	return p.start()
}
