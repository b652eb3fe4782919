package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"eden_passes_backend/internal/events"
	"eden_passes_backend/internal/models"
	"eden_passes_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCustomer(t *testing.T) {
	f := newFixture(t, repositories.NewMemoryStore())
	ctx := context.Background()

	customer, err := f.customers.CreateCustomer(ctx, CreateCustomerRequest{Name: "  Jane   Smith ", Email: str(" jane@example.com ")})
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", customer.Name)
	require.NotNil(t, customer.Email)
	assert.Equal(t, "jane@example.com", *customer.Email)
	assert.Equal(t, fixedNow, customer.CreatedAt)
	assert.Equal(t, 1, f.metrics.customers["explicit"])
	assert.Equal(t, []string{events.TypeCustomerCreated}, f.events.types())

	_, err = f.customers.CreateCustomer(ctx, CreateCustomerRequest{Name: "JANE SMITH"})
	assert.ErrorIs(t, err, ErrCustomerExists)

	noEmail, err := f.customers.CreateCustomer(ctx, CreateCustomerRequest{Name: "Bob", Email: str("  ")})
	require.NoError(t, err)
	assert.Nil(t, noEmail.Email)
}

func TestCreateCustomerValidation(t *testing.T) {
	f := newFixture(t, repositories.NewMemoryStore())
	ctx := context.Background()

	_, err := f.customers.CreateCustomer(ctx, CreateCustomerRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = f.customers.CreateCustomer(ctx, CreateCustomerRequest{Name: strings.Repeat("x", MaxCustomerNameLength+1)})
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = f.customers.CreateCustomer(ctx, CreateCustomerRequest{Name: "Eve", Email: str("not-an-email")})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	assert.Zero(t, countCustomers(t, f.store))
}

func TestFindOrCreateCustomer(t *testing.T) {
	f := newFixture(t, repositories.NewMemoryStore())
	ctx := context.Background()

	first, err := f.customers.FindOrCreateCustomer(ctx, " Alice ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", first.Name)

	second, err := f.customers.FindOrCreateCustomer(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, countCustomers(t, f.store))

	_, err = f.customers.FindOrCreateCustomer(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestFindOrCreateReReadsAfterLostRace(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	winner, _, err := findOrCreate(ctx, store.Customers(), "Race", fixedNow)
	require.NoError(t, err)

	// A repository whose first lookup misses behaves like a concurrent insert
	// landing between the lookup and the insert.
	loser := &missOnceCustomers{CustomerRepository: store.Customers()}
	got, created, err := findOrCreate(ctx, loser, "race", fixedNow)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner.ID, got.ID)
	assert.Equal(t, 1, countCustomers(t, store))
}

type missOnceCustomers struct {
	repositories.CustomerRepository
	missed bool
}

func (r *missOnceCustomers) GetByNameKey(ctx context.Context, nameKey string) (*models.Customer, error) {
	if !r.missed {
		r.missed = true
		return nil, repositories.ErrNotFound
	}
	return r.CustomerRepository.GetByNameKey(ctx, nameKey)
}

func TestSearchCustomers(t *testing.T) {
	f := newFixture(t, repositories.NewMemoryStore())
	ctx := context.Background()

	for _, name := range []string{"Charlie", "alice", "Bob", "Alicia"} {
		_, err := f.customers.CreateCustomer(ctx, CreateCustomerRequest{Name: name})
		require.NoError(t, err)
	}

	found, err := f.customers.SearchCustomers(ctx, " ALI")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "alice", found[0].Name)
	assert.Equal(t, "Alicia", found[1].Name)

	for i := 0; i < 12; i++ {
		_, err := f.customers.CreateCustomer(ctx, CreateCustomerRequest{Name: "Member " + strings.Repeat("z", i+1)})
		require.NoError(t, err)
	}
	capped, err := f.customers.SearchCustomers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, capped, MaxCustomerSearchResults)
}

func TestGetCustomerWithPasses(t *testing.T) {
	f := newFixture(t, repositories.NewMemoryStore())
	ctx := context.Background()

	pass, err := f.passes.CreatePass(ctx, CreatePassRequest{Type: "weekly", Date: str("2024-01-15"), CustomerName: str("Jane Smith")})
	require.NoError(t, err)

	details, err := f.customers.GetCustomer(ctx, pass.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", details.Name)
	require.Len(t, details.Passes, 1)
	assert.Equal(t, pass.ID, details.Passes[0].ID)
	assert.NotEmpty(t, details.Passes[0].Status)

	_, err = f.customers.GetCustomer(ctx, "missing")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestDeleteCustomer(t *testing.T) {
	f := newFixture(t, repositories.NewMemoryStore())
	ctx := context.Background()

	pass, err := f.passes.CreatePass(ctx, CreatePassRequest{Type: "weekly", Date: str("2024-01-15"), CustomerName: str("Holder")})
	require.NoError(t, err)

	assert.ErrorIs(t, f.customers.DeleteCustomer(ctx, pass.CustomerID), ErrCustomerHasPasses)

	require.NoError(t, f.passes.DeletePass(ctx, pass.ID))
	require.NoError(t, f.customers.DeleteCustomer(ctx, pass.CustomerID))
	assert.ErrorIs(t, f.customers.DeleteCustomer(ctx, pass.CustomerID), ErrCustomerNotFound)
	assert.Zero(t, countCustomers(t, f.store))
}

func TestSeedDemoData(t *testing.T) {
	f := newFixture(t, repositories.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, SeedDemoData(ctx, f.customers, f.passes))
	assert.Equal(t, 3, countCustomers(t, f.store))
	assert.Equal(t, 2, countPasses(t, f.store))

	require.NoError(t, SeedDemoData(ctx, f.customers, f.passes))
	assert.Equal(t, 3, countCustomers(t, f.store), "seeding twice adds nothing")
}

func TestUpdateCustomer(t *testing.T) {
	f := newFixture(t, repositories.NewMemoryStore())
	ctx := context.Background()

	jane, err := f.customers.CreateCustomer(ctx, CreateCustomerRequest{Name: "Jane Smith"})
	require.NoError(t, err)
	_, err = f.customers.CreateCustomer(ctx, CreateCustomerRequest{Name: "Bob Johnson"})
	require.NoError(t, err)
	pass, err := f.passes.CreatePass(ctx, CreatePassRequest{Type: "weekly", Date: str("2024-01-15"), CustomerID: str(jane.ID)})
	require.NoError(t, err)

	updated, err := f.customers.UpdateCustomer(ctx, jane.ID, UpdateCustomerRequest{Name: str(" Jane   Doe "), Email: str("jane@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", updated.Name)
	require.NotNil(t, updated.Email)
	assert.Equal(t, "jane@example.com", *updated.Email)
	assert.Equal(t, jane.CreatedAt, updated.CreatedAt)

	byName, err := f.store.Customers().GetByNameKey(ctx, "jane doe")
	require.NoError(t, err)
	assert.Equal(t, jane.ID, byName.ID)
	_, err = f.store.Customers().GetByNameKey(ctx, "jane smith")
	assert.ErrorIs(t, err, repositories.ErrNotFound, "old name is released")

	joined, err := f.passes.GetPass(ctx, pass.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", joined.Customer.Name)

	emailOnly, err := f.customers.UpdateCustomer(ctx, jane.ID, UpdateCustomerRequest{Email: str("doe@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", emailOnly.Name)

	assert.Equal(t, events.TypeCustomerUpdated, f.events.types()[len(f.events.types())-1])
}

func TestUpdateCustomerErrors(t *testing.T) {
	f := newFixture(t, repositories.NewMemoryStore())
	ctx := context.Background()

	jane, err := f.customers.CreateCustomer(ctx, CreateCustomerRequest{Name: "Jane Smith"})
	require.NoError(t, err)
	_, err = f.customers.CreateCustomer(ctx, CreateCustomerRequest{Name: "Bob Johnson"})
	require.NoError(t, err)

	_, err = f.customers.UpdateCustomer(ctx, jane.ID, UpdateCustomerRequest{Name: str("BOB johnson")})
	assert.ErrorIs(t, err, ErrCustomerExists)

	_, err = f.customers.UpdateCustomer(ctx, jane.ID, UpdateCustomerRequest{Email: str("nope")})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = f.customers.UpdateCustomer(ctx, jane.ID, UpdateCustomerRequest{Name: str(strings.Repeat("x", MaxCustomerNameLength+1))})
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = f.customers.UpdateCustomer(ctx, "missing", UpdateCustomerRequest{Name: str("Ghost")})
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	stored, err := f.store.Customers().GetByID(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", stored.Name)
}

func TestCustomerStats(t *testing.T) {
	f := newFixture(t, repositories.NewMemoryStore())
	ctx := context.Background()

	f.customers.now = func() time.Time { return fixedNow.AddDate(0, -1, 0) }
	_, err := f.customers.CreateCustomer(ctx, CreateCustomerRequest{Name: "Last Month"})
	require.NoError(t, err)
	f.customers.now = func() time.Time { return fixedNow }

	for _, req := range []CreatePassRequest{
		{Type: "weekly", StartDate: str("2024-01-15"), EndDate: str("2024-01-21"), CustomerName: str("Jane Smith")},
		{Type: "daily", Date: str("2024-01-17"), CustomerName: str("Jane Smith")},
		{Type: "daily", Date: str("2024-01-10"), CustomerName: str("John Doe")},
		{Type: "daily", Date: str("2024-01-17"), CustomerName: str("Last Month")},
	} {
		_, err := f.passes.CreatePass(ctx, req)
		require.NoError(t, err)
	}

	stats, err := f.customers.CustomerStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.CustomerStats{Total: 3, WithActivePasses: 2, NewThisMonth: 2}, *stats)
}

func TestCreateCustomerWaitsForPendingRegistration(t *testing.T) {
	store := repositories.NewMemoryStore()
	f := newFixture(t, store)
	ctx := context.Background()

	inserted := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- store.WithTx(ctx, func(tx repositories.Store) error {
			_, _, err := findOrCreate(ctx, tx.Customers(), "Ada Lovelace", fixedNow)
			assert.NoError(t, err)
			close(inserted)
			<-release
			return errors.New("pass insert failed")
		})
	}()
	<-inserted

	created := make(chan error, 1)
	go func() {
		_, err := f.customers.CreateCustomer(ctx, CreateCustomerRequest{Name: "ada lovelace"})
		created <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	assert.Error(t, <-txDone)
	assert.NoError(t, <-created, "a name held by a rolled back registration is free")
	assert.Equal(t, 1, countCustomers(t, store))
}
