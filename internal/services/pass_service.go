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

// --- PassService Interface ---
type PassService interface {
	CreatePass(ctx context.Context, req CreatePassRequest) (*models.PassWithCustomer, error)
	ListPasses(ctx context.Context, filters models.PassFilters) ([]models.PassWithCustomer, error)
	GetPass(ctx context.Context, id string) (*models.PassWithCustomer, error)
	UpdatePass(ctx context.Context, id string, req UpdatePassRequest) (*models.PassWithCustomer, error)
	DeletePass(ctx context.Context, id string) error
	PassStats(ctx context.Context) (*models.PassStats, error)
}

// --- passService Implementation ---
type passService struct {
	store     repositories.Store
	metrics   metrics.Recorder
	publisher events.Publisher
	now       func() time.Time
}

// NewPassService creates a new instance of PassService.
func NewPassService(store repositories.Store, recorder metrics.Recorder, publisher events.Publisher) PassService {
	return &passService{
		store:     store,
		metrics:   recorder,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreatePass validates the request, resolves the customer and stores the pass.
// Customer resolution and the pass insert share one transaction, so a
// customer created on the way is discarded if the pass cannot be stored.
func (s *passService) CreatePass(ctx context.Context, req CreatePassRequest) (*models.PassWithCustomer, error) {
	in, err := validateCreatePass(req)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	var (
		customer        *models.Customer
		customerCreated bool
		pass            *models.Pass
	)
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		if in.customerID != "" {
			found, err := tx.Customers().GetByID(ctx, in.customerID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return ErrCustomerNotFound
				}
				return fmt.Errorf("failed to get customer by ID: %w", err)
			}
			customer = found
		} else {
			resolved, created, err := findOrCreate(ctx, tx.Customers(), in.customerName, now)
			if err != nil {
				return err
			}
			customer, customerCreated = resolved, created
		}

		pass = buildPass(in, uuid.NewString(), customer.ID, now)
		if err := tx.Passes().Create(ctx, pass); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrCustomerNotFound
			}
			return fmt.Errorf("failed to create pass in repository: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if customerCreated {
		s.metrics.CustomerCreated(metrics.SourceImplicit)
		publish(ctx, s.publisher, customerCreatedEvent(customer, metrics.SourceImplicit))
	}
	s.metrics.PassCreated(pass.IsSingleDay())

	created := &models.PassWithCustomer{
		Pass:     *pass,
		Status:   pass.StatusOn(now.Format(models.DateLayout)),
		Customer: customer.Ref(),
	}
	publish(ctx, s.publisher, events.Event{
		Type:       events.TypePassCreated,
		Key:        customer.ID,
		OccurredAt: now,
		Payload:    created,
	})
	utils.LogInfo("Pass created", map[string]interface{}{
		"pass_id":          pass.ID,
		"customer_id":      customer.ID,
		"customer_created": customerCreated,
	})
	return created, nil
}

func (s *passService) ListPasses(ctx context.Context, filters models.PassFilters) ([]models.PassWithCustomer, error) {
	filters.Search = utils.NameKey(filters.Search)
	passes, err := s.store.Passes().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list passes: %w", err)
	}
	withStatus(passes, s.now())
	return passes, nil
}

func (s *passService) GetPass(ctx context.Context, id string) (*models.PassWithCustomer, error) {
	pass, err := s.store.Passes().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPassNotFound
		}
		return nil, fmt.Errorf("failed to get pass by ID: %w", err)
	}
	pass.Status = pass.StatusOn(s.now().UTC().Format(models.DateLayout))
	return pass, nil
}

// UpdatePass merges the request into a stored pass. The merged record is
// validated like a new pass and its date shape normalized again.
func (s *passService) UpdatePass(ctx context.Context, id string, req UpdatePassRequest) (*models.PassWithCustomer, error) {
	var updated *models.PassWithCustomer
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		existing, err := tx.Passes().GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrPassNotFound
			}
			return fmt.Errorf("failed to get pass for update: %w", err)
		}

		in, err := validateUpdatePass(existing.Pass, req)
		if err != nil {
			return err
		}
		if in.customerID != existing.CustomerID {
			if _, err := tx.Customers().GetByID(ctx, in.customerID); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return ErrCustomerNotFound
				}
				return fmt.Errorf("failed to get customer by ID: %w", err)
			}
		}

		pass := buildPass(in, existing.ID, in.customerID, existing.CreatedAt)
		if err := tx.Passes().Update(ctx, pass); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrPassNotFound
			}
			return fmt.Errorf("failed to update pass in repository: %w", err)
		}

		updated, err = tx.Passes().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to re-read updated pass: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	updated.Status = updated.StatusOn(now.Format(models.DateLayout))
	publish(ctx, s.publisher, events.Event{
		Type:       events.TypePassUpdated,
		Key:        updated.CustomerID,
		OccurredAt: now,
		Payload:    updated,
	})
	utils.LogInfo("Pass updated", map[string]interface{}{"pass_id": updated.ID, "customer_id": updated.CustomerID})
	return updated, nil
}

// PassStats counts passes by their status today.
func (s *passService) PassStats(ctx context.Context) (*models.PassStats, error) {
	stats, err := s.store.Passes().Stats(ctx, s.now().UTC().Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to count passes: %w", err)
	}
	return stats, nil
}

func (s *passService) DeletePass(ctx context.Context, id string) error {
	pass, err := s.GetPass(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Passes().Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPassNotFound
		}
		return fmt.Errorf("failed to delete pass: %w", err)
	}

	publish(ctx, s.publisher, events.Event{
		Type:       events.TypePassDeleted,
		Key:        pass.CustomerID,
		OccurredAt: s.now().UTC(),
		Payload:    map[string]string{"id": id, "customerId": pass.CustomerID},
	})
	return nil
}
