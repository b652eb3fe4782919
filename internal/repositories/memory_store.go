package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"eden_passes_backend/internal/models"
	"eden_passes_backend/pkg/utils"
)

// memoryData is the state shared by a MemoryStore and its transactional views.
type memoryData struct {
	mu        sync.RWMutex
	customers map[string]models.Customer
	nameKeys  map[string]string // name_key -> customer ID
	passes    map[string]models.Pass
}

// MemoryStore keeps customers and passes in process memory.
//
// Writers are expected to go through WithTx: transactions are serialized and
// undone on failure. Reads and writes outside a transaction may observe
// uncommitted writes, including names held by a transaction that rolls back.
type MemoryStore struct {
	data    *memoryData
	txMu    *sync.Mutex
	journal *[]func() // undo log, set on transactional views
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: &memoryData{
			customers: make(map[string]models.Customer),
			nameKeys:  make(map[string]string),
			passes:    make(map[string]models.Pass),
		},
		txMu: &sync.Mutex{},
	}
}

func (s *MemoryStore) Customers() CustomerRepository { return memoryCustomers{s} }
func (s *MemoryStore) Passes() PassRepository { return memoryPasses{s} }

func (s *MemoryStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.journal != nil {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	journal := []func(){}
	tx := &MemoryStore{data: s.data, txMu: s.txMu, journal: &journal}
	if err := fn(tx); err != nil {
		s.data.mu.Lock()
		for i := len(journal) - 1; i >= 0; i-- {
			journal[i]()
		}
		s.data.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }
func (s *MemoryStore) Close() error { return nil }
func (s *MemoryStore) Driver() string { return "memory" }

// record appends an undo step. Callers hold data.mu.
func (s *MemoryStore) record(undo func()) {
	if s.journal != nil {
		*s.journal = append(*s.journal, undo)
	}
}

type memoryCustomers struct{ s *MemoryStore }

func (r memoryCustomers) InsertIfAbsent(ctx context.Context, customer *models.Customer) (bool, error) {
	d := r.s.data
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, taken := d.nameKeys[customer.NameKey]; taken {
		return false, nil
	}
	if _, taken := d.customers[customer.ID]; taken {
		return false, fmt.Errorf("%w: customer ID %s", ErrDuplicateKey, customer.ID)
	}
	d.customers[customer.ID] = *customer
	d.nameKeys[customer.NameKey] = customer.ID

	id, key := customer.ID, customer.NameKey
	r.s.record(func() {
		delete(d.customers, id)
		delete(d.nameKeys, key)
	})
	return true, nil
}

func (r memoryCustomers) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	d := r.s.data
	d.mu.RLock()
	defer d.mu.RUnlock()

	customer, ok := d.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &customer, nil
}

func (r memoryCustomers) GetByNameKey(ctx context.Context, nameKey string) (*models.Customer, error) {
	d := r.s.data
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.nameKeys[nameKey]
	if !ok {
		return nil, ErrNotFound
	}
	customer := d.customers[id]
	return &customer, nil
}

func (r memoryCustomers) Search(ctx context.Context, term string, limit int) ([]models.Customer, error) {
	d := r.s.data
	d.mu.RLock()
	matches := []models.Customer{}
	for _, customer := range d.customers {
		if utils.ContainsFold(customer.NameKey, term) {
			matches = append(matches, customer)
		}
	}
	d.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].NameKey != matches[j].NameKey {
			return matches[i].NameKey < matches[j].NameKey
		}
		return matches[i].ID < matches[j].ID
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r memoryCustomers) Update(ctx context.Context, customer *models.Customer) error {
	d := r.s.data
	d.mu.Lock()
	defer d.mu.Unlock()

	previous, ok := d.customers[customer.ID]
	if !ok {
		return ErrNotFound
	}
	if owner, taken := d.nameKeys[customer.NameKey]; taken && owner != customer.ID {
		return fmt.Errorf("%w: customer name %q", ErrDuplicateKey, customer.NameKey)
	}
	delete(d.nameKeys, previous.NameKey)
	d.nameKeys[customer.NameKey] = customer.ID
	updated := previous
	updated.Name, updated.NameKey, updated.Email = customer.Name, customer.NameKey, customer.Email
	d.customers[customer.ID] = updated

	r.s.record(func() {
		delete(d.nameKeys, updated.NameKey)
		d.nameKeys[previous.NameKey] = previous.ID
		d.customers[previous.ID] = previous
	})
	return nil
}

func (r memoryCustomers) Stats(ctx context.Context, today string, since time.Time) (*models.CustomerStats, error) {
	d := r.s.data
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := &models.CustomerStats{Total: len(d.customers)}
	for _, customer := range d.customers {
		if !customer.CreatedAt.Before(since) {
			stats.NewThisMonth++
		}
	}
	active := make(map[string]struct{})
	for _, pass := range d.passes {
		if pass.StatusOn(today) == models.PassStatusActive {
			active[pass.CustomerID] = struct{}{}
		}
	}
	stats.WithActivePasses = len(active)
	return stats, nil
}

func (r memoryCustomers) Delete(ctx context.Context, id string) error {
	d := r.s.data
	d.mu.Lock()
	defer d.mu.Unlock()

	customer, ok := d.customers[id]
	if !ok {
		return ErrNotFound
	}
	for _, pass := range d.passes {
		if pass.CustomerID == id {
			return fmt.Errorf("%w: customer ID %s is referenced by passes", ErrReferenced, id)
		}
	}
	delete(d.customers, id)
	delete(d.nameKeys, customer.NameKey)

	r.s.record(func() {
		d.customers[customer.ID] = customer
		d.nameKeys[customer.NameKey] = customer.ID
	})
	return nil
}

type memoryPasses struct{ s *MemoryStore }

// join attaches the customer projection. Callers hold data.mu.
func (r memoryPasses) join(pass models.Pass) models.PassWithCustomer {
	customer := r.s.data.customers[pass.CustomerID]
	return models.PassWithCustomer{Pass: pass, Customer: customer.Ref()}
}

func (r memoryPasses) Create(ctx context.Context, pass *models.Pass) error {
	d := r.s.data
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.customers[pass.CustomerID]; !ok {
		return fmt.Errorf("%w: customer ID %s", ErrNotFound, pass.CustomerID)
	}
	if _, taken := d.passes[pass.ID]; taken {
		return fmt.Errorf("%w: pass ID %s", ErrDuplicateKey, pass.ID)
	}
	d.passes[pass.ID] = *pass

	id := pass.ID
	r.s.record(func() { delete(d.passes, id) })
	return nil
}

func (r memoryPasses) GetByID(ctx context.Context, id string) (*models.PassWithCustomer, error) {
	d := r.s.data
	d.mu.RLock()
	defer d.mu.RUnlock()

	pass, ok := d.passes[id]
	if !ok {
		return nil, ErrNotFound
	}
	joined := r.join(pass)
	return &joined, nil
}

func (r memoryPasses) List(ctx context.Context, filters models.PassFilters) ([]models.PassWithCustomer, error) {
	d := r.s.data
	d.mu.RLock()
	passes := []models.PassWithCustomer{}
	for _, pass := range d.passes {
		if filters.CustomerID != "" && pass.CustomerID != filters.CustomerID {
			continue
		}
		if filters.Search != "" && !utils.ContainsFold(d.customers[pass.CustomerID].NameKey, filters.Search) {
			continue
		}
		passes = append(passes, r.join(pass))
	}
	d.mu.RUnlock()

	sort.Slice(passes, func(i, j int) bool {
		if !passes[i].CreatedAt.Equal(passes[j].CreatedAt) {
			return passes[i].CreatedAt.After(passes[j].CreatedAt)
		}
		return passes[i].ID > passes[j].ID
	})

	limit := filters.Limit
	if limit <= 0 || limit > MaxPassListSize {
		limit = MaxPassListSize
	}
	if len(passes) > limit {
		passes = passes[:limit]
	}
	return passes, nil
}

func (r memoryPasses) Update(ctx context.Context, pass *models.Pass) error {
	d := r.s.data
	d.mu.Lock()
	defer d.mu.Unlock()

	previous, ok := d.passes[pass.ID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := d.customers[pass.CustomerID]; !ok {
		return fmt.Errorf("%w: customer ID %s", ErrNotFound, pass.CustomerID)
	}
	updated := *pass
	updated.CreatedAt = previous.CreatedAt
	d.passes[pass.ID] = updated

	r.s.record(func() { d.passes[previous.ID] = previous })
	return nil
}

func (r memoryPasses) Stats(ctx context.Context, today string) (*models.PassStats, error) {
	d := r.s.data
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := &models.PassStats{}
	for _, pass := range d.passes {
		stats.Add(&pass, today)
	}
	return stats, nil
}

func (r memoryPasses) CountByCustomer(ctx context.Context, customerID string) (int, error) {
	d := r.s.data
	d.mu.RLock()
	defer d.mu.RUnlock()

	count := 0
	for _, pass := range d.passes {
		if pass.CustomerID == customerID {
			count++
		}
	}
	return count, nil
}

func (r memoryPasses) Delete(ctx context.Context, id string) error {
	d := r.s.data
	d.mu.Lock()
	defer d.mu.Unlock()

	pass, ok := d.passes[id]
	if !ok {
		return ErrNotFound
	}
	delete(d.passes, id)
	r.s.record(func() { d.passes[pass.ID] = pass })
	return nil
}
