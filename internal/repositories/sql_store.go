package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// sqlStore implements Store over database/sql for PostgreSQL and SQLite.
type sqlStore struct {
	db      *sql.DB
	tx      *sql.Tx // set on transactional views
	dialect dialect
}

// NewPostgresStore wraps a lib/pq connection pool.
func NewPostgresStore(db *sql.DB) Store {
	return &sqlStore{db: db, dialect: postgresDialect}
}

// NewSQLiteStore wraps a modernc.org/sqlite connection pool.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqlStore{db: db, dialect: sqliteDialect}
}

func (s *sqlStore) executor() SQLExecutor {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *sqlStore) Customers() CustomerRepository {
	return &customerRepository{executor: s.executor(), dialect: s.dialect}
}

func (s *sqlStore) Passes() PassRepository {
	return &passRepository{executor: s.executor(), dialect: s.dialect}
}

func (s *sqlStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: starting transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if err := fn(&sqlStore{db: s.db, tx: tx, dialect: s.dialect}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", ErrDatabaseError, err)
	}
	return nil
}

func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) Driver() string {
	return s.dialect.name
}
