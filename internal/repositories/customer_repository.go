package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eden_passes_backend/internal/models"

	"github.com/google/uuid"
)

type customerRepository struct {
	executor SQLExecutor
	dialect  dialect
}

const customerColumns = `id, name, name_key, email, created_at`

func scanCustomer(row scanner) (*models.Customer, error) {
	customer := &models.Customer{}
	var email sql.NullString
	if err := row.Scan(&customer.ID, &customer.Name, &customer.NameKey, &email, &customer.CreatedAt); err != nil {
		return nil, err
	}
	if email.Valid {
		customer.Email = &email.String
	}
	return customer, nil
}

// InsertIfAbsent inserts the customer unless its name_key is taken.
// The unique index on name_key arbitrates concurrent inserts.
func (r *customerRepository) InsertIfAbsent(ctx context.Context, customer *models.Customer) (bool, error) {
	query := `INSERT INTO customers (` + customerColumns + `)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (name_key) DO NOTHING`

	result, err := r.executor.ExecContext(ctx, r.dialect.rebind(query),
		customer.ID, customer.Name, customer.NameKey, customer.Email, customer.CreatedAt,
	)
	if err != nil {
		if r.dialect.uniqueViolation(err) {
			return false, fmt.Errorf("%w: customer ID %s: %v", ErrDuplicateKey, customer.ID, err)
		}
		return false, fmt.Errorf("%w: creating customer: %v", ErrDatabaseError, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: getting rows affected for creating customer: %v", ErrDatabaseError, err)
	}
	return rowsAffected == 1, nil
}

// GetByID retrieves a customer by ID.
func (r *customerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	customer, err := scanCustomer(r.executor.QueryRowContext(ctx, r.dialect.rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting customer by ID %s: %v", ErrDatabaseError, id, err)
	}
	return customer, nil
}

// GetByNameKey retrieves a customer by normalized name.
func (r *customerRepository) GetByNameKey(ctx context.Context, nameKey string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE name_key = $1`
	customer, err := scanCustomer(r.executor.QueryRowContext(ctx, r.dialect.rebind(query), nameKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting customer by name %q: %v", ErrDatabaseError, nameKey, err)
	}
	return customer, nil
}

// Search lists customers whose name contains term, ordered by name.
func (r *customerRepository) Search(ctx context.Context, term string, limit int) ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
	          WHERE name_key LIKE $1 ESCAPE '\'
	          ORDER BY name_key ASC, id ASC
	          LIMIT $2`

	rows, err := r.executor.QueryContext(ctx, r.dialect.rebind(query), likePattern(term), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying customers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning customer: %v", ErrDatabaseError, err)
		}
		customers = append(customers, *customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating customer rows: %v", ErrDatabaseError, err)
	}
	return customers, nil
}

// Update rewrites a customer's name, name key and email.
func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	if _, err := uuid.Parse(customer.ID); err != nil {
		return ErrNotFound
	}
	query := `UPDATE customers SET name = $1, name_key = $2, email = $3 WHERE id = $4`
	result, err := r.executor.ExecContext(ctx, r.dialect.rebind(query),
		customer.Name, customer.NameKey, customer.Email, customer.ID,
	)
	if err != nil {
		if r.dialect.uniqueViolation(err) {
			return fmt.Errorf("%w: customer name %q", ErrDuplicateKey, customer.NameKey)
		}
		return fmt.Errorf("%w: updating customer ID %s: %v", ErrDatabaseError, customer.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating customer ID %s: %v", ErrDatabaseError, customer.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats counts all customers, the ones with a pass active on today and the
// ones created since the given instant.
func (r *customerRepository) Stats(ctx context.Context, today string, since time.Time) (*models.CustomerStats, error) {
	stats := &models.CustomerStats{}
	query := `SELECT COUNT(*), COALESCE(SUM(CASE WHEN created_at >= $1 THEN 1 ELSE 0 END), 0) FROM customers`
	if err := r.executor.QueryRowContext(ctx, r.dialect.rebind(query), since).Scan(&stats.Total, &stats.NewThisMonth); err != nil {
		return nil, fmt.Errorf("%w: counting customers: %v", ErrDatabaseError, err)
	}

	query = `SELECT COUNT(DISTINCT customer_id) FROM passes WHERE start_date <= $1 AND end_date >= $2`
	if err := r.executor.QueryRowContext(ctx, r.dialect.rebind(query), today, today).Scan(&stats.WithActivePasses); err != nil {
		return nil, fmt.Errorf("%w: counting customers with active passes: %v", ErrDatabaseError, err)
	}
	return stats, nil
}

// Delete removes a customer from the database.
func (r *customerRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	query := `DELETE FROM customers WHERE id = $1`
	result, err := r.executor.ExecContext(ctx, r.dialect.rebind(query), id)
	if err != nil {
		if r.dialect.foreignKeyFailure(err) {
			return fmt.Errorf("%w: customer ID %s is referenced by passes", ErrReferenced, id)
		}
		return fmt.Errorf("%w: deleting customer ID %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting customer ID %s: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
