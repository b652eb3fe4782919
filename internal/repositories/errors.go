package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eden_passes_backend/internal/models"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected database errors.
	// It can be used to wrap more specific driver errors.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrReferenced is returned when a delete would orphan referencing rows.
	ErrReferenced = errors.New("record is referenced by other records")
)

// SQLExecutor defines an interface that can be satisfied by *sql.DB or *sql.Tx
// This allows repository methods to be used within transactions or with a direct DB connection.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// scanner is an interface satisfied by *sql.Row and *sql.Rows.
// This allows for generic scanning helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

// CustomerRepository defines the customer operations every store provides.
type CustomerRepository interface {
	// InsertIfAbsent stores the customer unless one with the same NameKey exists.
	// It reports whether the row was inserted; uniqueness is enforced by the store itself.
	InsertIfAbsent(ctx context.Context, customer *models.Customer) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	GetByNameKey(ctx context.Context, nameKey string) (*models.Customer, error)
	Search(ctx context.Context, term string, limit int) ([]models.Customer, error)
	// Update rewrites name, name key and email. A name key held by another
	// customer yields ErrDuplicateKey.
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id string) error
	// Stats counts customers, those holding a pass active on today, and
	// those created at or after since.
	Stats(ctx context.Context, today string, since time.Time) (*models.CustomerStats, error)
}

// PassRepository defines the pass operations every store provides.
// Read methods return passes joined with their customer.
type PassRepository interface {
	Create(ctx context.Context, pass *models.Pass) error
	GetByID(ctx context.Context, id string) (*models.PassWithCustomer, error)
	List(ctx context.Context, filters models.PassFilters) ([]models.PassWithCustomer, error)
	// Update rewrites every mutable column of an existing pass.
	Update(ctx context.Context, pass *models.Pass) error
	CountByCustomer(ctx context.Context, customerID string) (int, error)
	Delete(ctx context.Context, id string) error
	// Stats counts passes by their status on today (models.DateLayout).
	Stats(ctx context.Context, today string) (*models.PassStats, error)
}

// Store groups the repositories of one backend.
type Store interface {
	Customers() CustomerRepository
	Passes() PassRepository
	// WithTx runs fn against a transactional view of the store. Writes made
	// through tx are committed when fn returns nil and discarded otherwise.
	// Calling WithTx on a transactional view runs fn inside the same transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
	Close() error
	// Driver names the backend ("memory", "sqlite", "postgres").
	Driver() string
}
