// internal/store/scan_repo.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/geo-intelligence/geo-workflows/internal/models"
)

// ScanRepository persists scan runs and their result payloads.
type ScanRepository interface {
	Create(ctx context.Context, scan *Scan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Scan, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]*Scan, error)
	MarkRunning(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
	SaveResult(ctx context.Context, id uuid.UUID, queryVersion string, result *models.ScanResult) error
}

type scanRepository struct {
	db *sqlx.DB
}

func NewScanRepository(db *sqlx.DB) ScanRepository {
	return &scanRepository{db: db}
}

func (r *scanRepository) Create(ctx context.Context, scan *Scan) error {
	if scan.ID == uuid.Nil {
		scan.ID = uuid.New()
	}
	if scan.Status == "" {
		scan.Status = ScanStatusPending
	}
	scan.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO scans (id, company_id, status, created_at)
		VALUES (:id, :company_id, :status, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, scan); err != nil {
		return fmt.Errorf("failed to create scan: %w", err)
	}
	return nil
}

func (r *scanRepository) GetByID(ctx context.Context, id uuid.UUID) (*Scan, error) {
	var scan Scan
	err := r.db.GetContext(ctx, &scan, `SELECT * FROM scans WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get scan %s: %w", id, err)
	}
	return &scan, nil
}

func (r *scanRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, limit int) ([]*Scan, error) {
	scans := []*Scan{}
	err := r.db.SelectContext(ctx, &scans,
		`SELECT * FROM scans WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2`, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans for company %s: %w", companyID, err)
	}
	return scans, nil
}

func (r *scanRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE scans SET status = $1, started_at = $2 WHERE id = $3 AND status = $4`,
		ScanStatusRunning, time.Now().UTC(), id, ScanStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark scan %s running: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check scan %s update: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("scan %s is not pending", id)
	}
	return nil
}

func (r *scanRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE scans SET status = $1, error_message = $2, completed_at = $3 WHERE id = $4`,
		ScanStatusFailed, errorMessage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark scan %s failed: %w", id, err)
	}
	return nil
}

// SaveResult stores the completed scan payload and flips the status.
func (r *scanRepository) SaveResult(ctx context.Context, id uuid.UUID, queryVersion string, result *models.ScanResult) error {
	platformScores, err := json.Marshal(result.PlatformScores)
	if err != nil {
		return fmt.Errorf("failed to marshal platform scores: %w", err)
	}
	analysis, err := json.Marshal(result.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	queryResults, err := json.Marshal(result.QueryResults)
	if err != nil {
		return fmt.Errorf("failed to marshal query results: %w", err)
	}
	recommendations, err := json.Marshal(result.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE scans SET
			status = $1,
			query_version = $2,
			overall_score = $3,
			platform_scores = $4,
			analysis = $5,
			query_results = $6,
			recommendations = $7,
			report_html = $8,
			total_cost = $9,
			completed_at = $10
		WHERE id = $11`,
		ScanStatusCompleted, queryVersion, result.OverallScore,
		platformScores, analysis, queryResults, recommendations,
		result.ReportHTML, result.TotalCost, result.CompletedAt, id)
	if err != nil {
		return fmt.Errorf("failed to save scan %s result: %w", id, err)
	}
	return nil
}
