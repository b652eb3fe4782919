package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eden_passes_backend/internal/models"

	"github.com/google/uuid"
)

// MaxPassListSize caps a single ListPasses page.
const MaxPassListSize = 100

type passRepository struct {
	executor SQLExecutor
	dialect  dialect
}

func (r *passRepository) selectJoined() string {
	d := r.dialect
	return `SELECT p.id, p.type, ` + d.dateExpr("p.date") + `, ` + d.dateExpr("p.start_date") + `, ` + d.dateExpr("p.end_date") + `,
	               p.customer_id, p.created_at, c.name, c.email
	        FROM passes p
	        JOIN customers c ON c.id = p.customer_id`
}

func scanPassRow(row scanner) (*models.PassWithCustomer, error) {
	pass := &models.PassWithCustomer{}
	var date, email sql.NullString
	err := row.Scan(
		&pass.ID, &pass.Type, &date, &pass.StartDate, &pass.EndDate,
		&pass.CustomerID, &pass.CreatedAt, &pass.Customer.Name, &email,
	)
	if err != nil {
		return nil, err
	}
	if date.Valid {
		pass.Date = &date.String
	}
	pass.Customer.ID = pass.CustomerID
	if email.Valid {
		pass.Customer.Email = &email.String
	}
	return pass, nil
}

// Create inserts a new pass. The referenced customer must exist.
func (r *passRepository) Create(ctx context.Context, pass *models.Pass) error {
	query := `INSERT INTO passes (id, type, date, start_date, end_date, customer_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.executor.ExecContext(ctx, r.dialect.rebind(query),
		pass.ID, pass.Type, pass.Date, pass.StartDate, pass.EndDate, pass.CustomerID, pass.CreatedAt,
	)
	if err != nil {
		if r.dialect.foreignKeyFailure(err) {
			return fmt.Errorf("%w: customer ID %s", ErrNotFound, pass.CustomerID)
		}
		if r.dialect.uniqueViolation(err) {
			return fmt.Errorf("%w: pass ID %s", ErrDuplicateKey, pass.ID)
		}
		return fmt.Errorf("%w: creating pass: %v", ErrDatabaseError, err)
	}
	return nil
}

// GetByID retrieves a pass joined with its customer.
func (r *passRepository) GetByID(ctx context.Context, id string) (*models.PassWithCustomer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query := r.selectJoined() + ` WHERE p.id = $1`
	pass, err := scanPassRow(r.executor.QueryRowContext(ctx, r.dialect.rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting pass by ID %s: %v", ErrDatabaseError, id, err)
	}
	return pass, nil
}

// List retrieves passes newest first, optionally narrowed by customer.
func (r *passRepository) List(ctx context.Context, filters models.PassFilters) ([]models.PassWithCustomer, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(r.selectJoined())

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.CustomerID != "" {
		if _, err := uuid.Parse(filters.CustomerID); err != nil {
			return []models.PassWithCustomer{}, nil
		}
		conditions = append(conditions, "p.customer_id = "+placeholder(argCount))
		args = append(args, filters.CustomerID)
		argCount++
	}
	if filters.Search != "" {
		conditions = append(conditions, "c.name_key LIKE "+placeholder(argCount)+` ESCAPE '\'`)
		args = append(args, likePattern(filters.Search))
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY p.created_at DESC, p.id DESC")

	limit := filters.Limit
	if limit <= 0 || limit > MaxPassListSize {
		limit = MaxPassListSize
	}
	queryBuilder.WriteString(" LIMIT " + placeholder(argCount))
	args = append(args, limit)

	rows, err := r.executor.QueryContext(ctx, r.dialect.rebind(queryBuilder.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying passes: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	passes := []models.PassWithCustomer{}
	for rows.Next() {
		pass, err := scanPassRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning pass: %v", ErrDatabaseError, err)
		}
		passes = append(passes, *pass)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating pass rows: %v", ErrDatabaseError, err)
	}
	return passes, nil
}

// Update rewrites type, dates and owner of an existing pass.
func (r *passRepository) Update(ctx context.Context, pass *models.Pass) error {
	if _, err := uuid.Parse(pass.ID); err != nil {
		return ErrNotFound
	}
	query := `UPDATE passes SET type = $1, date = $2, start_date = $3, end_date = $4, customer_id = $5
	          WHERE id = $6`
	result, err := r.executor.ExecContext(ctx, r.dialect.rebind(query),
		pass.Type, pass.Date, pass.StartDate, pass.EndDate, pass.CustomerID, pass.ID,
	)
	if err != nil {
		if r.dialect.foreignKeyFailure(err) {
			return fmt.Errorf("%w: customer ID %s", ErrNotFound, pass.CustomerID)
		}
		return fmt.Errorf("%w: updating pass ID %s: %v", ErrDatabaseError, pass.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating pass ID %s: %v", ErrDatabaseError, pass.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats counts passes by status on today. The comparisons mirror
// models.Pass.StatusOn.
func (r *passRepository) Stats(ctx context.Context, today string) (*models.PassStats, error) {
	stats := &models.PassStats{}
	query := `SELECT COUNT(*),
	                 COALESCE(SUM(CASE WHEN start_date > $1 THEN 1 ELSE 0 END), 0),
	                 COALESCE(SUM(CASE WHEN end_date < $2 THEN 1 ELSE 0 END), 0)
	          FROM passes`
	err := r.executor.QueryRowContext(ctx, r.dialect.rebind(query), today, today).
		Scan(&stats.Total, &stats.Upcoming, &stats.Expired)
	if err != nil {
		return nil, fmt.Errorf("%w: counting passes by status: %v", ErrDatabaseError, err)
	}
	stats.Active = stats.Total - stats.Upcoming - stats.Expired
	return stats, nil
}

// CountByCustomer counts the passes referencing a customer.
func (r *passRepository) CountByCustomer(ctx context.Context, customerID string) (int, error) {
	if _, err := uuid.Parse(customerID); err != nil {
		return 0, nil
	}
	var count int
	query := `SELECT COUNT(*) FROM passes WHERE customer_id = $1`
	if err := r.executor.QueryRowContext(ctx, r.dialect.rebind(query), customerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting passes for customer ID %s: %v", ErrDatabaseError, customerID, err)
	}
	return count, nil
}

// Delete removes a pass.
func (r *passRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	query := `DELETE FROM passes WHERE id = $1`
	result, err := r.executor.ExecContext(ctx, r.dialect.rebind(query), id)
	if err != nil {
		return fmt.Errorf("%w: deleting pass ID %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting pass ID %s: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
