package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eden_passes_backend/internal/events"
	"eden_passes_backend/internal/metrics"
	"eden_passes_backend/internal/models"
	"eden_passes_backend/internal/repositories"
	"eden_passes_backend/pkg/utils"

	"github.com/google/uuid"
)

// MaxCustomerSearchResults caps a customer search.
const MaxCustomerSearchResults = 10

// --- Customer DTOs ---
type CreateCustomerRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

// UpdateCustomerRequest changes a customer. Absent or blank fields keep
// their stored value.
type UpdateCustomerRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// --- CustomerService Interface ---
type CustomerService interface {
	FindOrCreateCustomer(ctx context.Context, name string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*models.Customer, error)
	SearchCustomers(ctx context.Context, search string) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id string) (*models.CustomerDetails, error)
	UpdateCustomer(ctx context.Context, id string, req UpdateCustomerRequest) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	CustomerStats(ctx context.Context) (*models.CustomerStats, error)
}

// --- customerService Implementation ---
type customerService struct {
	store     repositories.Store
	metrics   metrics.Recorder
	publisher events.Publisher
	now       func() time.Time
}

// NewCustomerService creates a new instance of CustomerService.
func NewCustomerService(store repositories.Store, recorder metrics.Recorder, publisher events.Publisher) CustomerService {
	return &customerService{
		store:     store,
		metrics:   recorder,
		publisher: publisher,
		now:       time.Now,
	}
}

// findOrCreate resolves a customer by normalized name, creating it when absent.
// The store's unique name key arbitrates concurrent creators: a losing insert
// re-reads and returns the winner. The bool reports whether a row was created.
func findOrCreate(ctx context.Context, customers repositories.CustomerRepository, name string, createdAt time.Time) (*models.Customer, bool, error) {
	key := utils.NameKey(name)
	existing, err := customers.GetByNameKey(ctx, key)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up customer by name: %w", err)
	}

	customer := &models.Customer{
		ID:        uuid.NewString(),
		Name:      displayName(name),
		NameKey:   key,
		CreatedAt: createdAt,
	}
	inserted, err := customers.InsertIfAbsent(ctx, customer)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create customer: %w", err)
	}
	if inserted {
		return customer, true, nil
	}

	existing, err = customers.GetByNameKey(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to re-read customer after conflict: %w", err)
	}
	return existing, false, nil
}

func (s *customerService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *customerService) FindOrCreateCustomer(ctx context.Context, name string) (*models.Customer, error) {
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}

	var (
		customer *models.Customer
		created  bool
	)
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		customer, created, err = findOrCreate(ctx, tx.Customers(), name, s.timestamp())
		return err
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.customerCreated(ctx, customer, metrics.SourceImplicit)
	}
	return customer, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*models.Customer, error) {
	if err := validateCustomerName(req.Name); err != nil {
		return nil, err
	}
	var email *string
	if req.Email != nil {
		email = utils.NewNullString(*req.Email)
		if email != nil && !utils.IsValidEmail(*email) {
			return nil, ErrInvalidEmail
		}
	}

	customer := &models.Customer{
		ID:        uuid.NewString(),
		Name:      displayName(req.Name),
		NameKey:   utils.NameKey(req.Name),
		Email:     email,
		CreatedAt: s.timestamp(),
	}
	// Serialized with pass registration so a name held by a transaction that
	// later rolls back is not reported as taken.
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		inserted, err := tx.Customers().InsertIfAbsent(ctx, customer)
		if err != nil {
			return fmt.Errorf("failed to create customer in repository: %w", err)
		}
		if !inserted {
			return ErrCustomerExists
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.customerCreated(ctx, customer, metrics.SourceExplicit)
	return customer, nil
}

func (s *customerService) SearchCustomers(ctx context.Context, search string) ([]models.Customer, error) {
	customers, err := s.store.Customers().Search(ctx, utils.NameKey(search), MaxCustomerSearchResults)
	if err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	return customers, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*models.CustomerDetails, error) {
	customer, err := s.store.Customers().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer by ID: %w", err)
	}

	passes, err := s.store.Passes().List(ctx, models.PassFilters{CustomerID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to list passes of customer: %w", err)
	}
	withStatus(passes, s.now())

	return &models.CustomerDetails{Customer: *customer, Passes: passes}, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id string, req UpdateCustomerRequest) (*models.Customer, error) {
	name := trimmed(req.Name)
	if name != "" {
		if err := validateCustomerName(name); err != nil {
			return nil, err
		}
	}
	email := trimmed(req.Email)
	if email != "" && !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	var customer *models.Customer
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		customer, err = tx.Customers().GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrCustomerNotFound
			}
			return fmt.Errorf("failed to get customer for update: %w", err)
		}

		if name != "" {
			customer.Name = displayName(name)
			customer.NameKey = utils.NameKey(name)
		}
		if email != "" {
			customer.Email = &email
		}
		if err := tx.Customers().Update(ctx, customer); err != nil {
			switch {
			case errors.Is(err, repositories.ErrDuplicateKey):
				return ErrCustomerExists
			case errors.Is(err, repositories.ErrNotFound):
				return ErrCustomerNotFound
			}
			return fmt.Errorf("failed to update customer in repository: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.Event{
		Type:       events.TypeCustomerUpdated,
		Key:        customer.ID,
		OccurredAt: s.now().UTC(),
		Payload:    customer,
	})
	utils.LogInfo("Customer updated", map[string]interface{}{"customer_id": customer.ID})
	return customer, nil
}

// CustomerStats summarizes customers for today and the current month (UTC).
func (s *customerService) CustomerStats(ctx context.Context) (*models.CustomerStats, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	stats, err := s.store.Customers().Stats(ctx, now.Format(models.DateLayout), monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	return stats, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Customers().GetByID(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrCustomerNotFound
			}
			return fmt.Errorf("failed to find customer for deletion: %w", err)
		}

		count, err := tx.Passes().CountByCustomer(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count passes of customer: %w", err)
		}
		if count > 0 {
			return ErrCustomerHasPasses
		}

		if err := tx.Customers().Delete(ctx, id); err != nil {
			switch {
			case errors.Is(err, repositories.ErrNotFound):
				return ErrCustomerNotFound
			case errors.Is(err, repositories.ErrReferenced):
				return ErrCustomerHasPasses
			}
			return fmt.Errorf("failed to delete customer: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	publish(ctx, s.publisher, events.Event{
		Type:       events.TypeCustomerDeleted,
		Key:        id,
		OccurredAt: s.now().UTC(),
		Payload:    map[string]string{"id": id},
	})
	return nil
}

// customerCreated records a committed customer creation.
func (s *customerService) customerCreated(ctx context.Context, customer *models.Customer, source string) {
	s.metrics.CustomerCreated(source)
	publish(ctx, s.publisher, customerCreatedEvent(customer, source))
	utils.LogInfo("Customer created", map[string]interface{}{"customer_id": customer.ID, "source": source})
}

func customerCreatedEvent(customer *models.Customer, source string) events.Event {
	return events.Event{
		Type:       events.TypeCustomerCreated,
		Key:        customer.ID,
		OccurredAt: customer.CreatedAt,
		Payload: map[string]interface{}{
			"customer": customer,
			"source":   source,
		},
	}
}

// publish delivers an event for an already committed write. Delivery
// failures are logged and never undo the write.
func publish(ctx context.Context, publisher events.Publisher, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		utils.LogError(err, "Failed to publish event", map[string]interface{}{"type": event.Type, "key": event.Key})
	}
}

// withStatus fills the derived status of each pass for the day of now.
func withStatus(passes []models.PassWithCustomer, now time.Time) {
	today := now.UTC().Format(models.DateLayout)
	for i := range passes {
		passes[i].Status = passes[i].StatusOn(today)
	}
}
