// internal/store/store.go
package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// RepositoryManager bundles all repositories over one database handle.
type RepositoryManager struct {
	db          *sqlx.DB
	CompanyRepo CompanyRepository
	ScanRepo    ScanRepository
}

// New connects to Postgres and wires the repositories.
func New(databaseURL string) (*RepositoryManager, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)

	return &RepositoryManager{
		db:          db,
		CompanyRepo: NewCompanyRepository(db),
		ScanRepo:    NewScanRepository(db),
	}, nil
}

// Close releases the underlying database handle.
func (m *RepositoryManager) Close() error {
	return m.db.Close()
}

// Ping verifies the database connection, used by the health endpoint.
func (m *RepositoryManager) Ping() error {
	return m.db.Ping()
}
