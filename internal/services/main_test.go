package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"eden_passes_backend/internal/events"
	"eden_passes_backend/internal/metrics"
	"eden_passes_backend/internal/repositories"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.Type)
	}
	return types
}

// countingRecorder counts metric calls.
type countingRecorder struct {
	mu        sync.Mutex
	passes    int
	customers map[string]int
}

func (r *countingRecorder) PassCreated(bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.passes++
}

func (r *countingRecorder) CustomerCreated(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.customers == nil {
		r.customers = map[string]int{}
	}
	r.customers[source]++
}

func (r *countingRecorder) ObserveRequest(string, string, int, time.Duration) {}

var _ metrics.Recorder = (*countingRecorder)(nil)

type fixture struct {
	store     repositories.Store
	passes    *passService
	customers *customerService
	events    *recordingPublisher
	metrics   *countingRecorder
}

var fixedNow = time.Date(2024, 1, 17, 10, 30, 0, 0, time.UTC)

func newFixture(t *testing.T, store repositories.Store) *fixture {
	t.Helper()
	publisher := &recordingPublisher{}
	recorder := &countingRecorder{}
	passes := NewPassService(store, recorder, publisher).(*passService)
	customers := NewCustomerService(store, recorder, publisher).(*customerService)
	clock := func() time.Time { return fixedNow }
	passes.now = clock
	customers.now = clock
	return &fixture{store: store, passes: passes, customers: customers, events: publisher, metrics: recorder}
}
