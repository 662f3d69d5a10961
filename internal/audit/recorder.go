package audit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OldStager01/decision-brain/internal/logger"
	"github.com/OldStager01/decision-brain/internal/resilience"
	"github.com/OldStager01/decision-brain/pkg/models"
)

// Store persists decision records.
type Store interface {
	Insert(ctx context.Context, rec *models.DecisionRecord) error
}

// Recorder drains decision_made events into a Store from a single goroutine.
type Recorder struct {
	store        Store
	eventChan    <-chan *models.Event
	writeTimeout time.Duration
	breaker      *resilience.CircuitBreaker
	shed         atomic.Int64

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

type Option func(*Recorder)

// WithBreaker replaces the default circuit breaker around store writes.
func WithBreaker(cb *resilience.CircuitBreaker) Option {
	return func(r *Recorder) { r.breaker = cb }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.writeTimeout = d
		}
	}
}

func NewRecorder(store Store, eventChan <-chan *models.Event, opts ...Option) *Recorder {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Recorder{
		store:        store,
		eventChan:    eventChan,
		writeTimeout: 5 * time.Second,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.breaker == nil {
		r.breaker = NewBreaker(0, 0)
	}
	return r
}

// NewBreaker builds the breaker that guards audit writes and logs its
// state changes. Zero values take the resilience defaults.
func NewBreaker(maxFailures int, cooldown time.Duration) *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:        "decision-audit",
		MaxFailures: maxFailures,
		Cooldown:    cooldown,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.WithField("breaker", name).Warnf("Circuit breaker %s -> %s", from, to)
		},
	})
}

// Shed is the number of records dropped while the breaker was open.
func (r *Recorder) Shed() int64 {
	return r.shed.Load()
}

func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}
	r.running = true
	r.wg.Add(1)
	go r.run()

	logger.Info("Decision audit recorder started")
}

// Stop waits for the in-flight write to finish.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()

	logger.Info("Decision audit recorder stopped")
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case event, ok := <-r.eventChan:
			if !ok {
				return
			}
			r.processEvent(event)
		}
	}
}

func (r *Recorder) processEvent(event *models.Event) {
	if event.Type != models.EventTypeDecisionMade {
		return
	}
	resp, ok := event.Decision()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.writeTimeout)
	defer cancel()

	record := models.NewDecisionRecord(event, resp)
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		return r.store.Insert(ctx, record)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		r.shed.Add(1)
		logger.WithField("event_id", event.ID).Debug("Audit circuit open, decision record shed")
		return
	}
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"event_id":    event.ID,
			"trace_id":    event.TraceID,
			"environment": event.Environment,
		}).Errorf("Failed to persist decision: %v", err)
	}
}
