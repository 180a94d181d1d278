// internal/store/company_repo.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CompanyRepository persists scanned companies.
type CompanyRepository interface {
	Create(ctx context.Context, company *Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
	GetByDomain(ctx context.Context, domain string) (*Company, error)
	List(ctx context.Context, limit, offset int) ([]*Company, error)
}

type companyRepository struct {
	db *sqlx.DB
}

func NewCompanyRepository(db *sqlx.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *Company) error {
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	now := time.Now().UTC()
	company.CreatedAt = now
	company.UpdatedAt = now

	query := `
		INSERT INTO companies (id, name, domain, description, location, industry_id, created_at, updated_at)
		VALUES (:id, :name, :domain, :description, :location, :industry_id, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, company); err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	var company Company
	err := r.db.GetContext(ctx, &company, `SELECT * FROM companies WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company %s: %w", id, err)
	}
	return &company, nil
}

func (r *companyRepository) GetByDomain(ctx context.Context, domain string) (*Company, error) {
	var company Company
	err := r.db.GetContext(ctx, &company, `SELECT * FROM companies WHERE domain = $1`, domain)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company by domain %s: %w", domain, err)
	}
	return &company, nil
}

func (r *companyRepository) List(ctx context.Context, limit, offset int) ([]*Company, error) {
	companies := []*Company{}
	err := r.db.SelectContext(ctx, &companies,
		`SELECT * FROM companies ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}
